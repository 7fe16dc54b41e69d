package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their form names so errors line up with the inputs.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" {
			return strings.ToLower(fld.Name)
		}
		return name
	})
	return v
}

// FieldError describes one failed rule on one form field.
type FieldError struct {
	Field   string
	Rule    string
	Message string
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, " ")
}

// Has reports whether field has at least one error.
func (e *ValidationError) Has(field string) bool {
	return e.First(field) != ""
}

// First returns the first message recorded for field.
func (e *ValidationError) First(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// FieldNames returns the failing fields in order, without duplicates.
func (e *ValidationError) FieldNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range e.Fields {
		if !seen[f.Field] {
			seen[f.Field] = true
			names = append(names, f.Field)
		}
	}
	return names
}

func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The %s field must be a file of type: jpeg, jpg, png.", field)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %d kilobytes.", field, MaxImageSize/1024)
	default:
		return fmt.Sprintf("The %s field is invalid.", field)
	}
}
