package contact

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/cmda-chisinau/site/internal/database"
)

// Request types offered by the contact form
var RequestTypes = []string{"consultanta", "startup", "incubator", "parteneriate", "altele"}

// Form is a contact form submission as posted by the site
type Form struct {
	Name        string `form:"name" validate:"required,max=200"`
	Email       string `form:"email" validate:"required,email"`
	Phone       string `form:"phone" validate:"max=20"`
	RequestType string `form:"request_type" validate:"omitempty,oneof=consultanta startup incubator parteneriate altele"`
	Message     string `form:"message" validate:"required"`
}

// Errors maps form field names to their error messages
type Errors map[string][]string

// FormFromValues reads a Form from posted values, trimming whitespace
func FormFromValues(values url.Values) Form {
	get := func(key string) string {
		return strings.TrimSpace(values.Get(key))
	}
	return Form{
		Name:        get("name"),
		Email:       get("email"),
		Phone:       get("phone"),
		RequestType: get("request_type"),
		Message:     get("message"),
	}
}

// Submission converts a valid form into a record
func (f Form) Submission() *database.ContactSubmission {
	return &database.ContactSubmission{
		Name:        f.Name,
		Email:       f.Email,
		Phone:       f.Phone,
		RequestType: f.RequestType,
		Message:     f.Message,
	}
}

// Validator checks contact forms
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator reporting errors under the form field names
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate returns nil for a valid form, else the errors per field
func (v *Validator) Validate(f Form) (Errors, error) {
	err := v.validate.Struct(f)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("failed to validate form: %w", err)
	}

	errs := make(Errors)
	for _, fe := range fieldErrs {
		errs[fe.Field()] = append(errs[fe.Field()], message(fe))
	}
	return errs, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		value, _ := fe.Value().(string)
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).",
			fe.Param(), utf8.RuneCountInString(value))
	case "oneof":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	default:
		return "Enter a valid value."
	}
}
