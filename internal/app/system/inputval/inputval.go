// internal/app/system/inputval/inputval.go

// Package inputval validates request payloads using struct tags.
// Fields declare rules with `validate:"..."` and a human-readable
// `label:"..."` used in error messages.
package inputval

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
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})
	return v
}

// Result collects validation failures for one input struct.
type Result struct {
	errs []string
}

// HasErrors reports whether any rule failed.
func (r Result) HasErrors() bool { return len(r.errs) > 0 }

// First returns the first failure message, or "".
func (r Result) First() string {
	if len(r.errs) == 0 {
		return ""
	}
	return r.errs[0]
}

// All returns every failure message.
func (r Result) All() []string { return r.errs }

// Validate checks v against its struct tags.
func Validate(v interface{}) Result {
	err := validate.Struct(v)
	if err == nil {
		return Result{}
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Result{errs: []string{"invalid input"}}
	}

	var out Result
	for _, fe := range ve {
		out.errs = append(out.errs, message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", label)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", label)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s.", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}
