// File: internal/common/errors.go
package common

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// APIError represents a standard structure for API errors.
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("APIError: StatusCode=%d, Code=%s, Message=%s", e.StatusCode, e.Code, e.Message)
}

func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// WithDetails returns a copy of the error carrying extra detail. Copying keeps
// the package-level sentinels immutable when handlers decorate them.
func (e *APIError) WithDetails(details interface{}) *APIError {
	clone := *e
	clone.Details = details
	return &clone
}

var (
	ErrBadRequest     = NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "The request is invalid.")
	ErrUnauthorized   = NewAPIError(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication is required and has failed or has not yet been provided.")
	ErrForbidden      = NewAPIError(http.StatusForbidden, "FORBIDDEN", "You do not have permission to access this resource.")
	ErrNotFound       = NewAPIError(http.StatusNotFound, "NOT_FOUND", "The requested resource could not be found.")
	ErrConflict       = NewAPIError(http.StatusConflict, "CONFLICT", "A conflict occurred with the current state of the resource.")
	ErrInternalServer = NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "An unexpected error occurred on the server.")

	// Session and identity error taxonomy. Validation failures never reach the
	// network layer; remote rejections are normalized to these shapes at the
	// credential gateway boundary.
	ErrValidation       = NewAPIError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Input validation failed.")
	ErrAuth             = NewAPIError(http.StatusUnauthorized, "AUTH_FAILED", "Invalid credentials or the identity provider rejected the request.")
	ErrNotAuthenticated = NewAPIError(http.StatusUnauthorized, "NOT_AUTHENTICATED", "This operation requires an active session.")
	ErrProfileCreation  = NewAPIError(http.StatusBadGateway, "PROFILE_CREATION_FAILED", "The account was created but its profile could not be populated.")
	ErrPersistence      = NewAPIError(http.StatusBadGateway, "PERSISTENCE_FAILED", "The remote write failed; local state was left unchanged.")
)

func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// NewValidationAPIError builds a field-addressable validation error.
func NewValidationAPIError(details interface{}) *APIError {
	return ErrValidation.WithDetails(details)
}

// FormatValidationErrors converts validator.ValidationErrors into a field->message map.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMap := make(map[string]string)
	for _, e := range errs {
		field := e.Field()
		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("The %s field is required.", strings.ToLower(field))
		case "email":
			message = fmt.Sprintf("The %s field must be a valid email address.", strings.ToLower(field))
		case "min":
			message = fmt.Sprintf("The %s field must be at least %s characters long.", strings.ToLower(field), e.Param())
		case "max":
			message = fmt.Sprintf("The %s field may not be greater than %s characters.", strings.ToLower(field), e.Param())
		case "oneof":
			message = fmt.Sprintf("The %s field must be one of the following values: %s.", strings.ToLower(field), e.Param())
		case "e164":
			message = fmt.Sprintf("The %s field must be a valid international phone number.", strings.ToLower(field))
		case "eqfield":
			message = fmt.Sprintf("The %s field must match the %s field.", strings.ToLower(field), strings.ToLower(e.Param()))
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag.", field, e.Tag())
		}
		errorMap[field] = message
	}
	return errorMap
}
