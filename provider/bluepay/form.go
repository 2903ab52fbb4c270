package bluepay

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/mstgnz/bluepay/provider"
)

// Checkout form field names
const (
	FormCardNumber  = "CardNumber"
	FormExpireMonth = "ExpireMonth"
	FormExpireYear  = "ExpireYear"
	FormCardCode    = "CardCode"
)

var cardCodePattern = regexp.MustCompile(`^[0-9]{3,4}$`)

type paymentInfoForm struct {
	CardNumber  string `validate:"credit_card"`
	ExpireMonth string `validate:"required"`
	ExpireYear  string `validate:"required"`
	CardCode    string `validate:"cvv"`
}

// formMessages maps a form field to its locale resource key and English fallback
var formMessages = map[string]struct {
	resource string
	fallback string
}{
	"CardNumber":  {"Payment.CardNumber.Wrong", "Wrong card number"},
	"ExpireMonth": {"Payment.ExpireMonth.Required", "Expire month is required"},
	"ExpireYear":  {"Payment.ExpireYear.Required", "Expire year is required"},
	"CardCode":    {"Payment.CardCode.Wrong", "Wrong card code"},
}

var (
	formValidator     *validator.Validate
	formValidatorOnce sync.Once
)

func getFormValidator() *validator.Validate {
	formValidatorOnce.Do(func() {
		v := validator.New()
		_ = v.RegisterValidation("cvv", func(fl validator.FieldLevel) bool {
			return cardCodePattern.MatchString(fl.Field().String())
		})
		formValidator = v
	})
	return formValidator
}

// validateForm returns one localized warning per failing field, in field order
func validateForm(ctx context.Context, locales provider.LocaleStore, form url.Values) ([]string, error) {
	model := paymentInfoForm{
		CardNumber:  cardNumber(form),
		ExpireMonth: strings.TrimSpace(form.Get(FormExpireMonth)),
		ExpireYear:  strings.TrimSpace(form.Get(FormExpireYear)),
		CardCode:    strings.TrimSpace(form.Get(FormCardCode)),
	}

	err := getFormValidator().Struct(model)
	if err == nil {
		return nil, nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return nil, fmt.Errorf("validate payment form: %w", err)
	}

	warnings := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		msg, ok := formMessages[fe.Field()]
		if !ok {
			warnings = append(warnings, fe.Error())
			continue
		}
		text, err := localize(ctx, locales, msg.resource, msg.fallback)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, text)
	}

	return warnings, nil
}

func localize(ctx context.Context, locales provider.LocaleStore, key, fallback string) (string, error) {
	if locales == nil {
		return fallback, nil
	}
	text, err := locales.GetResource(ctx, key)
	if err != nil {
		return "", fmt.Errorf("load locale resource %s: %w", key, err)
	}
	if text == "" {
		return fallback, nil
	}
	return text, nil
}

var cardSeparators = strings.NewReplacer(" ", "", "-", "")

// cardNumber drops the grouping customers type into the card number field
func cardNumber(form url.Values) string {
	return cardSeparators.Replace(strings.TrimSpace(form.Get(FormCardNumber)))
}

// extractPaymentInfo reads the card fields of a submitted checkout form
func extractPaymentInfo(form url.Values) (*provider.ProcessPaymentRequest, error) {
	month, err := strconv.Atoi(strings.TrimSpace(form.Get(FormExpireMonth)))
	if err != nil {
		return nil, provider.ValidationErrors{"expire month must be a number"}
	}
	year, err := strconv.Atoi(strings.TrimSpace(form.Get(FormExpireYear)))
	if err != nil {
		return nil, provider.ValidationErrors{"expire year must be a number"}
	}

	return &provider.ProcessPaymentRequest{
		Card: provider.CardInfo{
			CardNumber:  cardNumber(form),
			ExpireMonth: month,
			ExpireYear:  year,
			CVV2:        strings.TrimSpace(form.Get(FormCardCode)),
		},
	}, nil
}
