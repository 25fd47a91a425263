package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/Payphone-Digital/customer-service/internal/constants"
	"github.com/go-playground/validator/v10"
)

const (
	TagUsername = "username"
	TagISO8601  = "iso8601"
	TagNotBlank = "notblank"
)

// MsgInvalidInteger is reported when a JSON number field carries another type.
const (
	MsgInvalidInteger = "A valid integer is required."
	MsgInvalidString  = "Not a valid string."
	MsgInvalidObject  = "Invalid data. Expected a dictionary."
)

var (
	usernameRegex = regexp.MustCompile(constants.UsernamePattern)

	// accepted birth_date / created_at layouts, most specific first
	dateTimeLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	defaultOnce      sync.Once
	defaultValidator *Validator
)

// ErrMalformedJSON matches every *SyntaxError returned by Decode.
var ErrMalformedJSON = errors.New("malformed JSON body")

// SyntaxError is returned by Decode when the body is not valid JSON.
type SyntaxError struct {
	Err error
}

func (e *SyntaxError) Error() string { return e.Err.Error() }

func (e *SyntaxError) Unwrap() error { return e.Err }

func (e *SyntaxError) Is(target error) bool { return target == ErrMalformedJSON }

// Validator wraps validator.Validate with the tag name function and the
// custom tags used by request DTOs.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.SetTagName("binding")
	RegisterCustom(v)
	return &Validator{validate: v}
}

// Default returns a process wide Validator.
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// RegisterCustom installs the json tag name function and custom tags on v.
func RegisterCustom(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation(TagUsername, func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation(TagNotBlank, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation(TagISO8601, func(fl validator.FieldLevel) bool {
		_, err := ParseDateTime(fl.Field().String())
		return err == nil
	})
}

// Struct validates obj and returns field errors keyed by json name, or nil.
// Top-level and nested messages are lists, e.g.
// {"dni": ["..."], "user": {"email": ["..."]}}.
func (v *Validator) Struct(obj interface{}) map[string]any {
	err := v.validate.Struct(obj)
	if err == nil {
		return nil
	}
	return FieldErrors(err)
}

// FieldErrors converts validator.ValidationErrors to a nested field map.
func FieldErrors(err error) map[string]any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]any{"non_field_errors": []string{err.Error()}}
	}

	fields := make(map[string]any)
	for _, fe := range verrs {
		path := strings.Split(fe.Namespace(), ".")
		if len(path) > 1 {
			// drop the root struct name
			path = path[1:]
		}
		msg := messageFor(fe)
		addAt(fields, path, msg)
	}
	return fields
}

func messageFor(fe validator.FieldError) string {
	if custom := CustomMessage(fe.Field()); custom != nil {
		if msg, ok := custom[fe.Tag()]; ok {
			return msg
		}
	}
	return DefaultMessage(fe)
}

func addAt(fields map[string]any, path []string, msg string) {
	if len(path) == 1 {
		list, _ := fields[path[0]].([]string)
		fields[path[0]] = append(list, msg)
		return
	}
	child, ok := fields[path[0]].(map[string]any)
	if !ok {
		child = make(map[string]any)
		fields[path[0]] = child
	}
	addAt(child, path[1:], msg)
}

// Decode reads a JSON body into obj. An empty body decodes as {} so that
// required-field checks still report. Type mismatches are returned as field
// errors; anything else unparseable yields ErrMalformedJSON.
func Decode(r io.Reader, obj interface{}) (map[string]any, error) {
	dec := json.NewDecoder(r)
	err := dec.Decode(obj)
	if err == nil || errors.Is(err, io.EOF) {
		return nil, nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields := make(map[string]any)
		addAt(fields, strings.Split(typeErr.Field, "."), typeMessage(typeErr.Type))
		return fields, nil
	}

	return nil, &SyntaxError{Err: err}
}

func typeMessage(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return MsgInvalidInteger
	case reflect.String:
		return MsgInvalidString
	case reflect.Struct, reflect.Map:
		return MsgInvalidObject
	default:
		return "Invalid value."
	}
}

// ParseDateTime accepts RFC 3339 timestamps, naive timestamps (taken as
// UTC) and plain dates.
func ParseDateTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
