// Package validator runs ozzo-validation rules and converts failures to layered errors
package validator

import (
	"errors"
	"sort"
	"strings"

	"github.com/KOMKZ/go-yogan-classevent/errcode"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrValidation is the common code for rejected input (module 1, business 1010)
var ErrValidation = errcode.Register(errcode.New(
	1, 1010, "common", "error.common.validation_failed", "validation failed",
))

// Validatable is implemented by config sections and requests
type Validatable interface {
	Validate() error
}

// Validate runs v.Validate. Field errors become ErrValidation carrying a
// "fields" map (field -> message); other errors are returned unchanged.
func Validate(v Validatable) error {
	err := v.Validate()
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return ConvertValidationError(fieldErrs)
	}
	return err
}

// ConvertValidationError flattens ozzo field errors into ErrValidation
func ConvertValidationError(errs validation.Errors) error {
	fields := make(map[string]string, len(errs))
	names := make([]string, 0, len(errs))
	for field, fieldErr := range errs {
		if fieldErr == nil {
			continue
		}
		fields[field] = fieldErr.Error()
		names = append(names, field)
	}
	sort.Strings(names)

	return ErrValidation.
		WithMsgf("validation failed: %s", strings.Join(names, ", ")).
		WithData("fields", fields)
}
