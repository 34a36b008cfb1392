package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/citizenportal/internal/common"
	"github.com/go-playground/validator/v10"
)

// ErrValidation marks input rejected before any state change.
var ErrValidation = common.ErrorValidation

type mobileForm struct {
	Mobile string `validate:"required,numeric,len=10"`
}

type aadhaarForm struct {
	Aadhaar string `validate:"required,numeric,len=12"`
}

type codeForm struct {
	Code string `validate:"required,numeric,min=4,max=8"`
}

// Profile is the citizen-supplied part of the user record. Mobile and
// Aadhaar come from the verified flow, never from this form.
type Profile struct {
	Name        string `validate:"required,max=100"`
	Email       string `validate:"omitempty,email"`
	Address     string `validate:"omitempty,max=300"`
	DateOfBirth string `validate:"omitempty,datetime=2006-01-02"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// check validates form and converts validator errors into ErrValidation
// with a readable reason.
func check(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		reasons = append(reasons, describe(fe))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(reasons, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "numeric":
		return field + " must contain digits only"
	case "len":
		return fmt.Sprintf("%s must be %s digits", field, fe.Param())
	case "min", "max":
		return fmt.Sprintf("%s has invalid length", field)
	case "email":
		return field + " is not a valid email address"
	case "datetime":
		return field + " must be in YYYY-MM-DD format"
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
