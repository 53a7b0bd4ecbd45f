package viewstate

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type BookingForm struct {
	CustomerName  string `validate:"required"`
	CustomerEmail string `validate:"required,email"`
}

// ValidateCustomer checks the customer fields before a booking is attempted.
func ValidateCustomer(name string, email string) error {
	form := BookingForm{
		CustomerName:  strings.TrimSpace(name),
		CustomerEmail: strings.TrimSpace(email),
	}
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(err, "validate booking form")
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return errors.New(strings.Join(messages, "; "))
}

// ValidateField checks a single customer field, "name" or "email", with the
// same rules as ValidateCustomer.
func ValidateField(field string, value string) error {
	tag := "required"
	if field == "email" {
		tag = "required,email"
	}
	err := validate.Var(strings.TrimSpace(value), tag)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrapf(err, "validate %s", field)
	}
	return errors.New(tagMessage(field, fieldErrs[0].Tag()))
}

func fieldMessage(fe validator.FieldError) string {
	field := "name"
	if fe.Field() == "CustomerEmail" {
		field = "email"
	}
	return tagMessage(field, fe.Tag())
}

func tagMessage(field string, tag string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid address"
	default:
		return field + " is invalid"
	}
}
