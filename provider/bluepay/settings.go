package bluepay

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mstgnz/bluepay/provider"
	"github.com/shopspring/decimal"
)

// TransactMode selects whether a new payment is only authorized or also captured
type TransactMode int

const (
	TransactModeAuthorize           TransactMode = 0
	TransactModeAuthorizeAndCapture TransactMode = 2
)

func (m TransactMode) String() string {
	switch m {
	case TransactModeAuthorize:
		return "Authorize"
	case TransactModeAuthorizeAndCapture:
		return "AuthorizeAndCapture"
	default:
		return "TransactMode(" + strconv.Itoa(int(m)) + ")"
	}
}

const settingPrefix = "bluepaypaymentsettings."

const (
	keyAccountID               = settingPrefix + "accountid"
	keyUserID                  = settingPrefix + "userid"
	keySecretKey               = settingPrefix + "secretkey"
	keyUseSandbox              = settingPrefix + "usesandbox"
	keyTransactMode            = settingPrefix + "transactmode"
	keyAdditionalFee           = settingPrefix + "additionalfee"
	keyAdditionalFeePercentage = settingPrefix + "additionalfeepercentage"
)

var settingKeys = []string{
	keyAccountID,
	keyUserID,
	keySecretKey,
	keyUseSandbox,
	keyTransactMode,
	keyAdditionalFee,
	keyAdditionalFeePercentage,
}

// Settings is the persisted plugin configuration
type Settings struct {
	AccountID               string
	UserID                  string
	SecretKey               string
	UseSandbox              bool
	TransactMode            TransactMode
	AdditionalFee           decimal.Decimal
	AdditionalFeePercentage bool
}

// DefaultSettings are written on install
func DefaultSettings() Settings {
	return Settings{
		TransactMode: TransactModeAuthorize,
		UseSandbox:   true,
	}
}

// RequiredConfig returns the settings needed before the gateway can be called
func RequiredConfig() []provider.ConfigField {
	return []provider.ConfigField{
		{
			Key:         keyAccountID,
			Required:    true,
			Type:        "number",
			Description: "BluePay account number",
			Example:     "100012345678",
			MaxLength:   12,
		},
		{
			Key:         keyUserID,
			Required:    true,
			Type:        "number",
			Description: "BluePay user number",
			Example:     "100098765432",
			MaxLength:   12,
		},
		{
			Key:         keySecretKey,
			Required:    true,
			Type:        "string",
			Description: "API secret key used for the tamper proof seal",
			MinLength:   8,
			MaxLength:   64,
		},
		{
			Key:         keyUseSandbox,
			Type:        "boolean",
			Description: "Send transactions in TEST mode",
			Example:     "true",
		},
		{
			Key:         keyAdditionalFee,
			Type:        "decimal",
			Description: "Additional handling fee",
			Example:     "1.50",
		},
		{
			Key:         keyAdditionalFeePercentage,
			Type:        "boolean",
			Description: "Treat the additional fee as a percentage of the cart subtotal",
			Example:     "false",
		},
	}
}

// Validate checks that the gateway credentials are present and well formed
func (s Settings) Validate() error {
	if s.TransactMode != TransactModeAuthorize && s.TransactMode != TransactModeAuthorizeAndCapture {
		return provider.NewConfigurationError("%s: unsupported transact mode %d", SystemName, s.TransactMode)
	}
	return provider.ValidateConfigFields(SystemName, s.values(), RequiredConfig())
}

// Credentials returns the gateway credentials of the settings
func (s Settings) Credentials() Credentials {
	return Credentials{
		AccountID: s.AccountID,
		UserID:    s.UserID,
		SecretKey: s.SecretKey,
		Sandbox:   s.UseSandbox,
	}
}

func (s Settings) values() map[string]string {
	return map[string]string{
		keyAccountID:               s.AccountID,
		keyUserID:                  s.UserID,
		keySecretKey:               s.SecretKey,
		keyUseSandbox:              strconv.FormatBool(s.UseSandbox),
		keyTransactMode:            strconv.Itoa(int(s.TransactMode)),
		keyAdditionalFee:           s.AdditionalFee.String(),
		keyAdditionalFeePercentage: strconv.FormatBool(s.AdditionalFeePercentage),
	}
}

// Save writes every setting to store
func (s Settings) Save(ctx context.Context, store provider.SettingStore) error {
	values := s.values()
	for _, key := range settingKeys {
		if err := store.SaveSetting(ctx, key, values[key]); err != nil {
			return fmt.Errorf("save setting %s: %w", key, err)
		}
	}
	return nil
}

// LoadSettings reads the settings from store. Missing keys keep their zero value.
func LoadSettings(ctx context.Context, store provider.SettingStore) (Settings, error) {
	var s Settings

	get := func(key string) (string, bool, error) {
		value, ok, err := store.GetSetting(ctx, key)
		if err != nil {
			return "", false, fmt.Errorf("load setting %s: %w", key, err)
		}
		return value, ok && value != "", nil
	}

	var err error
	if s.AccountID, _, err = get(keyAccountID); err != nil {
		return s, err
	}
	if s.UserID, _, err = get(keyUserID); err != nil {
		return s, err
	}
	if s.SecretKey, _, err = get(keySecretKey); err != nil {
		return s, err
	}

	if value, ok, err := get(keyUseSandbox); err != nil {
		return s, err
	} else if ok {
		if s.UseSandbox, err = strconv.ParseBool(value); err != nil {
			return s, provider.NewConfigurationError("%s: invalid %s %q", SystemName, keyUseSandbox, value)
		}
	}

	if value, ok, err := get(keyTransactMode); err != nil {
		return s, err
	} else if ok {
		mode, convErr := strconv.Atoi(value)
		if convErr != nil {
			return s, provider.NewConfigurationError("%s: invalid %s %q", SystemName, keyTransactMode, value)
		}
		s.TransactMode = TransactMode(mode)
	}

	if value, ok, err := get(keyAdditionalFee); err != nil {
		return s, err
	} else if ok {
		if s.AdditionalFee, err = decimal.NewFromString(value); err != nil {
			return s, provider.NewConfigurationError("%s: invalid %s %q", SystemName, keyAdditionalFee, value)
		}
	}

	if value, ok, err := get(keyAdditionalFeePercentage); err != nil {
		return s, err
	} else if ok {
		if s.AdditionalFeePercentage, err = strconv.ParseBool(value); err != nil {
			return s, provider.NewConfigurationError("%s: invalid %s %q", SystemName, keyAdditionalFeePercentage, value)
		}
	}

	return s, nil
}

// DeleteSettings removes every setting from store
func DeleteSettings(ctx context.Context, store provider.SettingStore) error {
	for _, key := range settingKeys {
		if err := store.DeleteSetting(ctx, key); err != nil {
			return fmt.Errorf("delete setting %s: %w", key, err)
		}
	}
	return nil
}
