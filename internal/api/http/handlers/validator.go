package handlers

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/issue-tracker/pkg/util/errorutil"
)

// NewValidator builds a validator that reports JSON field names so clients
// see the names they sent.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct runs tag validation and converts failures into a single
// Validation error enumerating every violated field.
func validateStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	fields := make([]string, 0, len(verrs))
	reasons := map[string]any{}
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
		reasons[fe.Field()] = "failed on '" + fe.Tag() + "' validation"
	}
	return apperrors.NewValidationError("validation error", map[string]any{
		"fields":  fields,
		"reasons": reasons,
	})
}
