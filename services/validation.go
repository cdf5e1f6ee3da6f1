package services

import (
	"errors"
	"fmt"
	"strings"

	"imposter/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.Category(fl.Field().String()).Valid()
	})
	v.RegisterValidation("difficulty", func(fl validator.FieldLevel) bool {
		return models.Difficulty(fl.Field().String()).Valid()
	})
	v.RegisterValidation("roomcode", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if len(code) != RoomCodeLength {
			return false
		}
		for _, c := range code {
			if !strings.ContainsRune(RoomCodeChars, c) {
				return false
			}
		}
		return true
	})
	return v
}

// validatePayload runs struct tags and converts the first failure into a MALFORMED error.
func validatePayload(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%w: invalid %s", ErrMalformed, lowerFirst(fe.Field()))
	}
	return fmt.Errorf("%w: %v", ErrMalformed, err)
}

func ValidateSettings(settings models.Settings) error {
	return validatePayload(settings)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
