package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"blogposts/internal/post/model"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationError reports why a request body was rejected.
type ValidationError struct {
	Details []model.FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Details))
	for i, d := range e.Details {
		parts[i] = d.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Details: []model.FieldError{{Rule: "invalid", Message: err.Error()}}}
	}

	details := make([]model.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		details = append(details, model.FieldError{
			Field:   field,
			Rule:    fe.Tag(),
			Message: fieldMessage(field, fe),
		})
	}
	return &ValidationError{Details: details}
}

// DecodeError turns a JSON decoding failure into a ValidationError so that
// malformed and mistyped bodies are reported the same way as missing fields.
func DecodeError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{Details: []model.FieldError{{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: fmt.Sprintf("%s must be of type %s", typeErr.Field, jsonTypeName(typeErr.Type)),
		}}}
	}

	msg := err.Error()
	if field, ok := strings.CutPrefix(msg, "json: unknown field "); ok {
		field = strings.Trim(field, `"`)
		return &ValidationError{Details: []model.FieldError{{
			Field:   field,
			Rule:    "unknown",
			Message: fmt.Sprintf("%s is not an updatable field", field),
		}}}
	}

	return &ValidationError{Details: []model.FieldError{{Rule: "json", Message: "request body must be valid JSON: " + msg}}}
}

// fieldPath drops the struct name from the namespace, e.g.
// "CreatePostRequest.tags[0]" becomes "tags[0]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed the %s rule", field, fe.Tag())
	}
}

func jsonTypeName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Ptr:
		return jsonTypeName(t.Elem())
	default:
		return t.Kind().String()
	}
}
