package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Payphone-Digital/customer-service/internal/constants"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code so wrapped copies compare equal to the
// predefined values.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors. Messages are returned to clients verbatim.
var (
	// Authentication errors
	ErrNotAuthenticated   = NewDomainError("NOT_AUTHENTICATED", "Authentication credentials were not provided.")
	ErrInvalidTokenHeader = NewDomainError("INVALID_TOKEN_HEADER", "Invalid token header. No credentials provided.")
	ErrInvalidTokenSpaces = NewDomainError("INVALID_TOKEN_SPACES", "Invalid token header. Token string should not contain spaces.")
	ErrInvalidToken       = NewDomainError("INVALID_TOKEN", "Invalid token")
	ErrTokenExpired       = NewDomainError("TOKEN_EXPIRED", "Expired Token")
	ErrUserInactive       = NewDomainError("USER_INACTIVE", "User inactive or deleted")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "Unable to log in with provided credentials.")

	// Resource errors
	ErrNotFound    = NewDomainError("NOT_FOUND", "Not found.")
	ErrInvalidPage = NewDomainError("INVALID_PAGE", "Invalid page.")

	// Request errors
	ErrMalformedRequest = NewDomainError("PARSE_ERROR", constants.MsgMalformedJSON)

	// System errors
	ErrInternal           = NewDomainError("INTERNAL_ERROR", constants.MsgInternalError)
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "Service unavailable")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest
	}

	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "INVALID_CREDENTIALS", "PARSE_ERROR":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "NOT_AUTHENTICATED", "INVALID_TOKEN_HEADER", "INVALID_TOKEN_SPACES",
		"INVALID_TOKEN", "TOKEN_EXPIRED", "USER_INACTIVE":
		return http.StatusUnauthorized

	// 404 Not Found
	case "NOT_FOUND", "INVALID_PAGE":
		return http.StatusNotFound

	// 503 Service Unavailable
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// ToResponse renders err as a response body. Validation errors become the
// field map, invalid credentials a non_field_errors list and everything else
// a {"detail": ...} object. Internal error details never leak.
func ToResponse(err error) map[string]any {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Fields
	}

	if domainErr := GetDomainError(err); domainErr != nil {
		switch domainErr.Code {
		case ErrInvalidCredentials.Code:
			return constants.BuildNonFieldErrorResponse(domainErr.Message)
		case ErrMalformedRequest.Code:
			if domainErr.Err != nil {
				return constants.BuildErrorResponse(fmt.Sprintf("%s - %v", domainErr.Message, domainErr.Err))
			}
		}
		if domainErrorToHTTPStatus(domainErr) != http.StatusInternalServerError {
			return constants.BuildErrorResponse(domainErr.Message)
		}
	}

	return constants.BuildErrorResponse(ErrInternal.Message)
}
