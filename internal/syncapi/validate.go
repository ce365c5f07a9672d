package syncapi

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
	v.RegisterTagNameFunc(JSONTagName)
	return v
}

// JSONTagName reports a struct field by its JSON name in validation errors.
func JSONTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

// FormatValidationError renders validator errors as one readable line using
// JSON field names. Non-validation errors are returned as-is.
func FormatValidationError(err error) string {
	if err == nil {
		return ""
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}

	out := make([]string, 0, len(ve))
	for _, fe := range ve {
		out = append(out, formatFieldError(fe))
	}
	return strings.Join(out, ", ")
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("field '%s' is required", field)
	case "uuid4":
		return fmt.Sprintf("field '%s' must be a version 4 UUID", field)
	case "alphanum":
		return fmt.Sprintf("field '%s' must be alphanumeric", field)
	case "min":
		return fmt.Sprintf("field '%s' must be at least %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("field '%s' must be greater than %s", field, fe.Param())
	case "datetime":
		return fmt.Sprintf("field '%s' must be a date in format %s", field, fe.Param())
	}
	return fmt.Sprintf("field '%s' failed validation '%s'", field, fe.Tag())
}
