package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfigFields(t *testing.T) {
	fields := []ConfigField{
		{Key: "accountId", Required: true, Type: "number", MaxLength: 12},
		{Key: "secretKey", Required: true, Type: "string", MinLength: 8},
		{Key: "sandbox", Type: "boolean"},
		{Key: "fee", Type: "decimal"},
		{Key: "code", Type: "string", Pattern: `^[A-Z]{3}$`},
	}

	valid := map[string]string{
		"accountId": "100012345678",
		"secretKey": "ABCDEFGH",
		"sandbox":   "true",
		"fee":       "1.25",
		"code":      "USD",
	}

	tests := []struct {
		name    string
		change  map[string]string
		wantErr string
	}{
		{"valid", nil, ""},
		{"optional_empty", map[string]string{"sandbox": "", "fee": "", "code": ""}, ""},
		{"missing_required", map[string]string{"accountId": " "}, "required field 'accountId' is missing"},
		{"not_a_number", map[string]string{"accountId": "12ab"}, "must be a whole number"},
		{"too_long", map[string]string{"accountId": "1234567890123"}, "must not exceed 12 characters"},
		{"too_short", map[string]string{"secretKey": "short"}, "at least 8 characters"},
		{"bad_boolean", map[string]string{"sandbox": "yes"}, "must be 'true' or 'false'"},
		{"bad_decimal", map[string]string{"fee": "1,25"}, "must be a decimal number"},
		{"pattern_mismatch", map[string]string{"code": "usd"}, "does not match required pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := make(map[string]string, len(valid))
			for k, v := range valid {
				config[k] = v
			}
			for k, v := range tt.change {
				config[k] = v
			}

			err := ValidateConfigFields("Payments.Test", config, fields)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsConfigurationError(err))
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "Payments.Test")
		})
	}
}
