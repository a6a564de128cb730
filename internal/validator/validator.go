package validator

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	ErrRequired       = "is required"
	ErrMinLength      = "must contain at least %s items"
	ErrMaxLength      = "must contain at most %s items"
	ErrGreaterThan    = "must be greater than %s"
	ErrDefaultInvalid = "is invalid"
)

func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "min":
		return fmt.Sprintf(ErrMinLength, err.Param())
	case "max":
		return fmt.Sprintf(ErrMaxLength, err.Param())
	case "gt":
		return fmt.Sprintf(ErrGreaterThan, err.Param())
	default:
		return ErrDefaultInvalid
	}
}
