package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/nidrosoft/rizzer-sub001/internal/models"
	"github.com/ulule/limiter/v3"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("ratelimit_rate", validateRatelimitRate); err != nil {
		panic(fmt.Sprintf("failed to register ratelimit_rate validator: %v", err))
	}
	if err := Validate.RegisterValidation("suggestion_status", validateSuggestionStatus); err != nil {
		panic(fmt.Sprintf("failed to register suggestion_status validator: %v", err))
	}
}

// validateRatelimitRate accepts limiter formatted rates such as "10-M"
func validateRatelimitRate(fl validator.FieldLevel) bool {
	return ValidateRatelimitRate(fl.Field().String()) == nil
}

func validateSuggestionStatus(fl validator.FieldLevel) bool {
	return ValidateSuggestionStatus(fl.Field().String()) == nil
}

// ValidateRatelimitRate checks that value parses as a limiter rate
func ValidateRatelimitRate(value string) error {
	if _, err := limiter.NewRateFromFormatted(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid rate: %s (expected forms like '10-M' or '1000-H')", value)
	}
	return nil
}

// ValidateSuggestionStatus validates a SuggestionStatus string value
func ValidateSuggestionStatus(value string) error {
	switch models.SuggestionStatus(value) {
	case models.SuggestionStatusPending, models.SuggestionStatusSaved, models.SuggestionStatusExpired,
		models.SuggestionStatusPurchased, models.SuggestionStatusDismissed:
		return nil
	default:
		return fmt.Errorf("invalid status: %s (must be 'pending', 'saved', 'expired', 'purchased', or 'dismissed')", value)
	}
}

// Message turns a validator error into a single client-facing sentence.
// Errors that are not validation errors are returned as-is.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldMessage(fe))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "required_without":
		return fmt.Sprintf("%s is required when %s is not set", field, fe.Param())
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", field, fe.Param())
	case "uuid":
		return field + " must be a UUID"
	case "ratelimit_rate":
		return field + " must be a rate such as 10-M"
	case "suggestion_status":
		return field + " is not a valid suggestion status"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
