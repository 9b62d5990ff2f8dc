// Package validation wires go-playground/validator with JSON field names,
// the custom tags used by request payloads, and human-readable messages.
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // timezone names must resolve on hosts without zoneinfo

	"github.com/go-playground/validator/v10"
)

var passwordCharset = regexp.MustCompile(`^[A-Za-z\d!@#$%]+$`)

// New returns a validator that reports JSON field names and knows the custom tags.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
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
	_ = v.RegisterValidation("timezone", validTimezone)
	_ = v.RegisterValidation("password", strongPassword)
	return v
}

// EchoValidator adapts a validator to echo.Validator.
type EchoValidator struct {
	validator *validator.Validate
}

// NewEchoValidator creates the validator installed on the echo instance.
func NewEchoValidator() *EchoValidator {
	return &EchoValidator{validator: New()}
}

// Validate implements echo.Validator interface.
func (cv *EchoValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// validTimezone accepts IANA zone names. Empty strings are left to omitempty.
func validTimezone(fl validator.FieldLevel) bool {
	tz := fl.Field().String()
	if tz == "" {
		return true
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// strongPassword requires lower, upper, digit and one of !@#$%.
func strongPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !passwordCharset.MatchString(s) {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			special = true
		}
	}
	return lower && upper && digit && special
}

// Messages flattens validation errors into field path -> message.
// Nested fields use dotted JSON paths, e.g. "settings.timezone".
func Messages(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		key := fe.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}
		if _, seen := out[key]; !seen {
			out[key] = message(fe)
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please enter a valid email"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must contain at least %s items", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Must contain at most %s items", fe.Param())
		}
		return fmt.Sprintf("Must be less than %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid", "uuid4":
		return fmt.Sprintf("Invalid %s", fe.Field())
	case "timezone":
		return "Please select a valid timezone"
	case "password":
		return "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character (!@#$%)"
	default:
		return fmt.Sprintf("Invalid %s", fe.Field())
	}
}
