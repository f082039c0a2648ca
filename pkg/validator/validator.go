package validator

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/freee021022/onconet/pkg/errors"
)

var registerOnce sync.Once

// Register configures gin's validator engine to report JSON field names.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// BindJSON decodes and validates the request body into obj. Any failure is
// returned as a validation AppError listing the offending fields.
func BindJSON(c *gin.Context, obj interface{}) error {
	Register()
	if err := c.ShouldBindJSON(obj); err != nil {
		return errors.NewValidation(Violations(err)...)
	}
	return nil
}

// Violations converts binding errors into field violations.
func Violations(err error) []errors.FieldViolation {
	var (
		verrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)

	switch {
	case stderrors.As(err, &verrs):
		out := make([]errors.FieldViolation, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, errors.FieldViolation{
				Field:   fieldPath(fe),
				Message: message(fe),
			})
		}
		return out
	case stderrors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return []errors.FieldViolation{{
			Field:   field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
		}}
	case stderrors.As(err, &syntaxErr):
		return []errors.FieldViolation{{Field: "body", Message: "malformed JSON"}}
	case stderrors.Is(err, io.EOF):
		return []errors.FieldViolation{{Field: "body", Message: "request body is required"}}
	default:
		return []errors.FieldViolation{{Field: "body", Message: err.Error()}}
	}
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "gt", "gte", "lt", "lte":
		return fmt.Sprintf("must be %s %s", comparison[fe.Tag()], fe.Param())
	case "url", "http_url":
		return "must be a valid URL"
	case "datetime":
		return "must be a date in the format " + fe.Param()
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

var comparison = map[string]string{
	"gt":  "greater than",
	"gte": "at least",
	"lt":  "less than",
	"lte": "at most",
}
