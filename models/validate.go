package models

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rpupo63/project-showcase/errs"
)

// emailPattern matches local@domain.tld with no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(jsonFieldName)
	return v
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email looks like local@domain.tld once trimmed.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// validationError converts the first validator failure into an ApiErr.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewBadRequestError(err.Error())
	}
	return tagError(fieldErrs[0].Field(), fieldErrs[0].Tag())
}

// fieldError is validationError for a single validate.Var call, where the
// validator does not know the field name.
func fieldError(field string, err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errs.NewInvalidFieldError(field, err.Error())
	}
	return tagError(field, fieldErrs[0].Tag())
}

func tagError(field, tag string) error {
	switch tag {
	case "required":
		return errs.NewMissingRequiredFieldError(field)
	case "basic_email":
		return errs.NewInvalidFieldError(field, "expected an address like name@example.com")
	default:
		return errs.NewInvalidFieldError(field, "failed "+tag+" check")
	}
}

func jsonFieldName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}
