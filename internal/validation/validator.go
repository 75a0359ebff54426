// Package validation wraps go-playground/validator with a shared instance
// that reports failures keyed by JSON field path.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"foodgram/models"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldErrors maps a JSON field path such as "ingredients[0].amount" to its
// messages.
type FieldErrors map[string][]string

// Error joins every message in field order.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(fe[field], ", "))
	}
	return strings.Join(parts, "; ")
}

// GetValidator returns the process-wide validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		_ = validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return models.ValidUsername(fl.Field().String())
		})
	})
	return validate
}

// Struct validates s and returns nil or the failures keyed by field path.
func Struct(s any) FieldErrors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return FieldErrors{"non_field_errors": {err.Error()}}
	}

	out := make(FieldErrors, len(invalid))
	for _, fe := range invalid {
		path := fe.Namespace()
		if idx := strings.Index(path, "."); idx >= 0 {
			path = path[idx+1:]
		}
		out[path] = append(out[path], message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters.", name, fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("%s must contain at least %s items.", name, fe.Param())
		}
		return fmt.Sprintf("%s must be ≥ %s.", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("%s must be ≤ %s.", name, fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Username may contain only letters, digits and @/./+/-/_ characters."
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates.", name)
	default:
		return fmt.Sprintf("%s failed the %s check.", name, fe.Tag())
	}
}
