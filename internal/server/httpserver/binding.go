package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/secrimpo/internal/syncapi"
)

var errEmptyBody = errors.New("request body is empty")

var registerOnce sync.Once

// useJSONFieldNames makes gin's binding validator report JSON field names.
func useJSONFieldNames() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterTagNameFunc(syncapi.JSONTagName)
		}
	})
}

// FormatBindingError renders a ShouldBindJSON error as a single line.
func FormatBindingError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, io.EOF) {
		return errEmptyBody.Error()
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("invalid JSON at byte offset %d", syntaxErr.Offset)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("field '%s' should be of type %s", typeErr.Field, typeErr.Type.String())
	}

	return syncapi.FormatValidationError(err)
}
