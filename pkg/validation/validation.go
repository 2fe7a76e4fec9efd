// Package validation wraps go-playground/validator and turns its errors into
// the {field, message} pairs returned to API clients.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single client-facing validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors is returned by Check when one or more fields fail validation.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, 0, len(e))
	for _, fe := range e {
		parts = append(parts, fe.Message)
	}
	return strings.Join(parts, "; ")
}

// Add appends a field error.
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Err returns nil for an empty set, which keeps call sites from returning a
// typed nil inside a non-nil error interface.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Validator is safe for concurrent use once registration is done.
type Validator struct {
	v        *validator.Validate
	messages map[string]string
}

// New returns a Validator that reports fields by their json name.
func New() *Validator {
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
	return &Validator{v: v, messages: map[string]string{}}
}

// RegisterStructValidation adds a struct-level rule. message is the text used
// when the rule reports the given tag.
func (val *Validator) RegisterStructValidation(fn validator.StructLevelFunc, tag, message string, types ...interface{}) {
	val.v.RegisterStructValidation(fn, types...)
	val.messages[tag] = message
}

// Check validates s and returns Errors, or nil.
func (val *Validator) Check(s interface{}) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out.Add(fe.Field(), val.message(fe))
	}
	return out
}

func (val *Validator) message(fe validator.FieldError) string {
	if m, ok := val.messages[fe.Tag()]; ok {
		return m
	}
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	}
	return field + " is invalid"
}
