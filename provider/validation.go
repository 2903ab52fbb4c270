package provider

import (
	"fmt"
	"regexp"
	"strings"
)

// ConfigField describes one setting a payment method needs before it can run
type ConfigField struct {
	Key         string `json:"key"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // "string", "number", "boolean", "decimal"
	Description string `json:"description"`
	Example     string `json:"example,omitempty"`
	Pattern     string `json:"pattern,omitempty"`
	MinLength   int    `json:"minLength,omitempty"`
	MaxLength   int    `json:"maxLength,omitempty"`
}

// ValidateConfigFields validates settings against the field definitions.
// Failures are returned as *ConfigurationError.
func ValidateConfigFields(providerName string, config map[string]string, fields []ConfigField) error {
	for _, field := range fields {
		value, exists := config[field.Key]
		if !exists || strings.TrimSpace(value) == "" {
			if field.Required {
				return NewConfigurationError("%s: required field '%s' is missing", providerName, field.Key)
			}
			continue
		}

		if err := validateFieldType(field, value); err != nil {
			return NewConfigurationError("%s: %v", providerName, err)
		}

		if err := validateFieldPattern(field, value); err != nil {
			return NewConfigurationError("%s: %v", providerName, err)
		}

		if err := validateFieldLength(field, value); err != nil {
			return NewConfigurationError("%s: %v", providerName, err)
		}
	}

	return nil
}

var (
	numberPattern  = regexp.MustCompile(`^[0-9]+$`)
	decimalPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)
)

func validateFieldType(field ConfigField, value string) error {
	switch field.Type {
	case "boolean":
		if value != "true" && value != "false" {
			return fmt.Errorf("field '%s' must be 'true' or 'false'", field.Key)
		}
	case "number":
		if !numberPattern.MatchString(value) {
			return fmt.Errorf("field '%s' must be a whole number", field.Key)
		}
	case "decimal":
		if !decimalPattern.MatchString(value) {
			return fmt.Errorf("field '%s' must be a decimal number", field.Key)
		}
	}
	return nil
}

func validateFieldPattern(field ConfigField, value string) error {
	if field.Pattern == "" {
		return nil
	}

	matched, err := regexp.MatchString(field.Pattern, value)
	if err != nil {
		return fmt.Errorf("invalid pattern for field '%s': %v", field.Key, err)
	}

	if !matched {
		return fmt.Errorf("field '%s' does not match required pattern", field.Key)
	}

	return nil
}

func validateFieldLength(field ConfigField, value string) error {
	if field.MinLength > 0 && len(value) < field.MinLength {
		return fmt.Errorf("field '%s' must be at least %d characters", field.Key, field.MinLength)
	}

	if field.MaxLength > 0 && len(value) > field.MaxLength {
		return fmt.Errorf("field '%s' must not exceed %d characters", field.Key, field.MaxLength)
	}

	return nil
}
