package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields under their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct checks s against its validate tags and returns a
// *ValidationError describing each failing field.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		field := fe.Field()
		var msg string
		switch fe.Tag() {
		case "required":
			msg = field + " is required"
		case "min":
			msg = field + " must be at least " + fe.Param() + " characters"
		case "max":
			msg = field + " must be at most " + fe.Param() + " characters"
		case "email":
			msg = field + " must be a valid email"
		case "oneof":
			msg = field + " must be one of: " + fe.Param()
		default:
			msg = field + " is invalid"
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Msg: msg})
	}
	return out
}
