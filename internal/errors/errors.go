package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"blogapi/internal/validation"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string            `json:"message"`
	Code    string            `json:"code,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     map[string]string
	// Err is the underlying cause, only ever shown in debug mode.
	Err error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
		Errors:  e.Fields,
	}
}

func BadRequest(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, "BAD_REQUEST")
}

func Unauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, "UNAUTHORIZED")
}

func Forbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, "FORBIDDEN")
}

func NotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, "NOT_FOUND")
}

func Conflict(message string) *HTTPError {
	return NewHTTPError(http.StatusConflict, message, "CONFLICT")
}

// Validation builds a 422 carrying one message per offending field.
func Validation(fields map[string]string) *HTTPError {
	e := NewHTTPError(http.StatusUnprocessableEntity, "Validation failed", "VALIDATION_ERROR")
	e.Fields = fields
	return e
}

// FieldError is Validation for a single field.
func FieldError(field, message string) *HTTPError {
	return Validation(map[string]string{field: message})
}

// Internal wraps an unexpected failure. The message is replaced for clients unless debugging.
func Internal(err error) *HTTPError {
	e := NewHTTPError(http.StatusInternalServerError, "Something went wrong", "INTERNAL_ERROR")
	e.Err = err
	return e
}

// MapErrorToHTTP normalizes any error raised while serving a request into an HTTPError.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Validation(validation.Messages(validationErrs))
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound("Record not found")
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		msg := http.StatusText(echoErr.Code)
		if m, ok := echoErr.Message.(string); ok && m != "" {
			msg = m
		}
		e := NewHTTPError(echoErr.Code, msg, "")
		if echoErr.Code >= http.StatusInternalServerError {
			e = Internal(err)
		}
		return e
	}

	return Internal(err)
}

// Public returns the response a client may see. Internal details are kept out
// of 5xx responses unless showInternal is set.
func (e *HTTPError) Public(showInternal bool) ErrorResponse {
	resp := e.ToErrorResponse()
	if e.StatusCode >= http.StatusInternalServerError && showInternal && e.Err != nil {
		resp.Message = e.Err.Error()
	}
	return resp
}
