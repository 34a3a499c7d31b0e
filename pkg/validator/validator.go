package validator

import (
	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/interview-coach/internal/domain/entities"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance with the project's custom tags registered
func New() *CustomValidator {
	v := validator.New()
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("utterance_role", validateUtteranceRole)
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

func validateUtteranceRole(fl validator.FieldLevel) bool {
	return entities.Role(fl.Field().String()).IsValid()
}
