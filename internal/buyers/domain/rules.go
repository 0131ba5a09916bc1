package domain

import (
	playground "github.com/go-playground/validator/v10"

	"buyer_portal_backend/platform/validator"
)

// RegisterRules installs the custom tag validators the buyer DTOs rely on.
// Must be called once on the shared validator instance before validating.
func RegisterRules(val *validator.Validator) error {
	return val.RegisterValidation("digits", func(fl playground.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return false
		}
		for _, r := range value {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})
}
