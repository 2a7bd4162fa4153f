package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"cardledger/internal/domain"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

// Global validator instance
var validate *Validator

// InitValidator initializes the global validator
func InitValidator() {
	v := validator.New()

	// Register custom validations for catalog enums
	_ = v.RegisterValidation("package", validatePackage)
	_ = v.RegisterValidation("visibility", validateVisibility)

	validate = &Validator{validate: v}
}

// GetValidator returns the global validator instance
func GetValidator() *Validator {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationError formats validation errors into a user-friendly map
// This prevents leaking internal struct names and provides cleaner error messages
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "package":
			errs[field] = "Invalid package"
		case "visibility":
			errs[field] = "Invalid visibility"
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "gt":
			errs[field] = fmt.Sprintf("Must be greater than %s", e.Param())
		case "uuid4":
			errs[field] = "Must be a valid UUID"
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

// validatePackage accepts a known card package name. Empty values pass so
// the required tag stays in control of presence.
func validatePackage(fl validator.FieldLevel) bool {
	pkg := fl.Field().String()
	if pkg == "" {
		return true
	}
	return domain.Package(pkg).Valid()
}

func validateVisibility(fl validator.FieldLevel) bool {
	visibility := fl.Field().String()
	if visibility == "" {
		return true
	}
	return domain.Visibility(visibility).Valid()
}
