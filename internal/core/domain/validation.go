package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate checks struct tags on domain types.
var validate = validator.New(validator.WithRequiredStructEnabled())

// validateStruct runs tag validation and folds the failures into a single
// validation error naming each offending field.
func validateStruct(what string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Invalid("%s: %v", what, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return Invalid("%s: %s", what, strings.Join(fields, ", "))
}
