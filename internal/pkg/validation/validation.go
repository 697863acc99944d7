// Package validation wraps go-playground/validator with json field names and
// human-readable messages shared by the API server and the web forms.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// Error carries one message per invalid field, keyed by json name.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}

		return name
	})

	// trimmedmin counts runes after trimming surrounding whitespace.
	_ = v.RegisterValidation("trimmedmin", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}

		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
	})

	return &Validator{v: v}
}

// Validate returns *Error when s violates its validate tags.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate error: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if _, ok := fields[name]; ok {
			continue
		}

		fields[name] = message(fe)
	}

	return &Error{Fields: fields}
}

func message(fe validator.FieldError) string {
	isSlice := fe.Kind() == reflect.Slice

	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isSlice {
			return fmt.Sprintf("must have at least %s entries", fe.Param())
		}

		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		if isSlice {
			return fmt.Sprintf("must have at most %s entries", fe.Param())
		}

		return fmt.Sprintf("must be less than %s characters", fe.Param())
	case "trimmedmin":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}
