package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var titleRegexp = regexp.MustCompile(`^[A-Za-z0-9 ]*$`)

// registerCustomRules подключает доменные правила валидации.
func registerCustomRules(v *validator.Validate) error {
	// Название проекта: только буквы, цифры и пробелы.
	return v.RegisterValidation("project_title", func(fl validator.FieldLevel) bool {
		return titleRegexp.MatchString(fl.Field().String())
	})
}
