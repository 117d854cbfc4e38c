package service

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Category names are lowercase-at-rest but creation input allows any case;
// only letters, digits and hyphens are permitted.
var categoryNameRE = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("categoryname", func(fl validator.FieldLevel) bool {
		return categoryNameRE.MatchString(fl.Field().String())
	})
}

// ValidateStruct validates a struct using validation tags
func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}
