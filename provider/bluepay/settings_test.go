package bluepay

import (
	"context"
	"testing"

	"github.com/mstgnz/bluepay/provider"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()

	settings := testSettings()
	settings.TransactMode = TransactModeAuthorizeAndCapture
	settings.AdditionalFee = decimal.RequireFromString("2.5")
	settings.AdditionalFeePercentage = true

	require.NoError(t, settings.Save(ctx, store))
	assert.Len(t, store.values, len(settingKeys))
	assert.Equal(t, "2", store.values[keyTransactMode])

	loaded, err := LoadSettings(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, settings.AccountID, loaded.AccountID)
	assert.Equal(t, settings.UserID, loaded.UserID)
	assert.Equal(t, settings.SecretKey, loaded.SecretKey)
	assert.True(t, loaded.UseSandbox)
	assert.Equal(t, TransactModeAuthorizeAndCapture, loaded.TransactMode)
	assert.True(t, loaded.AdditionalFee.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, loaded.AdditionalFeePercentage)

	require.NoError(t, DeleteSettings(ctx, store))
	assert.Empty(t, store.values)
}

func TestLoadSettings_EmptyStore(t *testing.T) {
	settings, err := LoadSettings(context.Background(), newMemoryStore())
	require.NoError(t, err)
	assert.Equal(t, Settings{}, settings)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{keyUseSandbox, "maybe"},
		{keyTransactMode, "capture"},
		{keyAdditionalFee, "one dollar"},
		{keyAdditionalFeePercentage, "yes please"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			store := newMemoryStore()
			store.values[tt.key] = tt.value

			_, err := LoadSettings(context.Background(), store)
			assert.True(t, provider.IsConfigurationError(err))
		})
	}
}

func TestLoadSettings_StoreError(t *testing.T) {
	store := newMemoryStore()
	store.failOn = keySecretKey

	_, err := LoadSettings(context.Background(), store)
	assert.ErrorIs(t, err, errStore)
}

func TestSettings_Validate(t *testing.T) {
	assert.NoError(t, testSettings().Validate())

	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"missing_account", func(s *Settings) { s.AccountID = "" }},
		{"non_numeric_account", func(s *Settings) { s.AccountID = "ACME" }},
		{"account_too_long", func(s *Settings) { s.AccountID = "1000123456789" }},
		{"missing_user", func(s *Settings) { s.UserID = "" }},
		{"short_secret", func(s *Settings) { s.SecretKey = "abc" }},
		{"unknown_mode", func(s *Settings) { s.TransactMode = 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			tt.mutate(&s)
			assert.True(t, provider.IsConfigurationError(s.Validate()))
		})
	}
}

func TestTransactModeString(t *testing.T) {
	assert.Equal(t, "Authorize", TransactModeAuthorize.String())
	assert.Equal(t, "AuthorizeAndCapture", TransactModeAuthorizeAndCapture.String())
	assert.Equal(t, "TransactMode(5)", TransactMode(5).String())
}
