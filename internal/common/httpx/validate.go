package httpx

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// V returns the shared validator used for request payloads.
func V() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterValidation("noSpaces", noSpacesValidator)
		validate.RegisterValidation("notBlank", notBlankValidator)
	})
	return validate
}

func noSpacesValidator(fl validator.FieldLevel) bool {
	return !strings.ContainsAny(fl.Field().String(), " \t\n")
}

func notBlankValidator(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
