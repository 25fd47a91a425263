package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const DefaultISO8601Message = "Datetime has wrong format. Use one of these formats instead: YYYY-MM-DDThh:mm[:ss[.uuuuuu]][+HH:MM|-HH:MM|Z]."

// DefaultMessage renders a field error the way REST clients of this API
// expect to read it.
func DefaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case TagNotBlank:
		return "This field may not be blank."
	case "email":
		return "Enter a valid email address."
	case "min":
		if isNumeric(fe) {
			return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		if isNumeric(fe) {
			return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
		}
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("\"%v\" is not a valid choice.", fe.Value())
	case "uuid", "uuid4":
		return "Must be a valid UUID."
	case "numeric":
		return "A valid integer is required."
	case TagISO8601:
		return DefaultISO8601Message
	default:
		return "Invalid value."
	}
}

func isNumeric(fe validator.FieldError) bool {
	switch fe.Kind().String() {
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64":
		return true
	}
	return false
}
