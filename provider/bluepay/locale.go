package bluepay

import (
	"context"
	"fmt"

	"github.com/mstgnz/bluepay/provider"
)

const resourceDescription = "Plugins.Payments.BluePay.PaymentMethodDescription"

type localeResource struct {
	key   string
	value string
}

// localeResources are installed with the plugin and removed on uninstall
var localeResources = []localeResource{
	{"Plugins.Payments.BluePay.Fields.AccountId", "Account ID"},
	{"Plugins.Payments.BluePay.Fields.AccountId.Hint", "Specify BluePay account number."},
	{"Plugins.Payments.BluePay.Fields.AdditionalFee", "Additional fee"},
	{"Plugins.Payments.BluePay.Fields.AdditionalFee.Hint", "Enter additional fee to charge your customers."},
	{"Plugins.Payments.BluePay.Fields.AdditionalFeePercentage", "Additional fee. Use percentage"},
	{"Plugins.Payments.BluePay.Fields.AdditionalFeePercentage.Hint", "Determines whether to apply a percentage additional fee to the order total. If not enabled, a fixed value is used."},
	{"Plugins.Payments.BluePay.Fields.SecretKey", "Secret key"},
	{"Plugins.Payments.BluePay.Fields.SecretKey.Hint", "Specify API secret key."},
	{"Plugins.Payments.BluePay.Fields.TransactMode", "Transaction mode"},
	{"Plugins.Payments.BluePay.Fields.TransactMode.Hint", "Specify transaction mode."},
	{"Plugins.Payments.BluePay.Fields.UserId", "User ID"},
	{"Plugins.Payments.BluePay.Fields.UserId.Hint", "Specify BluePay user number."},
	{"Plugins.Payments.BluePay.Fields.UseSandbox", "Use sandbox"},
	{"Plugins.Payments.BluePay.Fields.UseSandbox.Hint", "Check to enable sandbox (testing environment)."},
	{resourceDescription, "Pay by credit / debit card"},
}

func installLocales(ctx context.Context, locales provider.LocaleStore) error {
	for _, r := range localeResources {
		if err := locales.AddOrUpdateResource(ctx, r.key, r.value); err != nil {
			return fmt.Errorf("add locale resource %s: %w", r.key, err)
		}
	}
	return nil
}

func uninstallLocales(ctx context.Context, locales provider.LocaleStore) error {
	for _, r := range localeResources {
		if err := locales.DeleteResource(ctx, r.key); err != nil {
			return fmt.Errorf("delete locale resource %s: %w", r.key, err)
		}
	}
	return nil
}
