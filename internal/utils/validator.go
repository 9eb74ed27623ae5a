// internal/utils/validator.go
package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/javajoker/beatmarket/internal/models"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("musical_key", validateMusicalKey)
	validate.RegisterValidation("currency", validateCurrency)
	validate.RegisterValidation("signup_role", validateSignupRole)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateMusicalKey(fl validator.FieldLevel) bool {
	return models.IsMusicalKey(fl.Field().String())
}

func validateCurrency(fl validator.FieldLevel) bool {
	return models.Currency(fl.Field().String()).Valid()
}

// Admin accounts cannot be self-registered.
func validateSignupRole(fl validator.FieldLevel) bool {
	role := models.UserRole(fl.Field().String())
	return role == models.RoleBuyer || role == models.RoleSeller
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "musical_key":
		return "Key must be a musical key such as C, Am or F#m"
	case "currency":
		return "Currency must be RUB or USD"
	case "signup_role":
		return "Role must be buyer or seller"
	default:
		return e.Field() + " is invalid"
	}
}
