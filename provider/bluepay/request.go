package bluepay

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
)

// TransactionType is the BluePay TRANS_TYPE value
type TransactionType string

const (
	TransSale    TransactionType = "SALE"
	TransAuth    TransactionType = "AUTH"
	TransCapture TransactionType = "CAPTURE"
	TransRefund  TransactionType = "REFUND"
	TransVoid    TransactionType = "VOID"

	// transSet updates a rebilling schedule through the rebill admin interface
	transSet TransactionType = "SET"
)

// Mode is the BluePay MODE value
type Mode string

const (
	ModeTest Mode = "TEST"
	ModeLive Mode = "LIVE"
)

const (
	paymentTypeCredit = "CREDIT"
	rebillStopped     = "stopped"
)

// Credentials identify the merchant account on the gateway
type Credentials struct {
	AccountID string
	UserID    string
	SecretKey string
	Sandbox   bool
}

// Mode returns TEST for sandbox accounts and LIVE otherwise
func (c Credentials) Mode() Mode {
	if c.Sandbox {
		return ModeTest
	}
	return ModeLive
}

// Billing holds the payer fields of a request. Empty values are not sent.
type Billing struct {
	FirstName string
	LastName  string
	Email     string
	Address1  string
	Address2  string
	City      string
	State     string
	Zip       string
	Country   string
	Phone     string
}

// Card holds the card fields of a request; Expire is MMYY
type Card struct {
	Number string
	Expire string
	CVV2   string
}

// Rebill holds the recurring billing fields of a request
type Rebill struct {
	Amount     string
	FirstDate  string
	Expression string
	Cycles     string
}

// Request is one bp20post call. It is built once and passed by value.
type Request struct {
	Credentials Credentials
	Type        TransactionType
	MasterID    string
	CustomerIP  string
	CustomID1   string
	CustomID2   string
	OrderID     string
	InvoiceID   string
	Amount      string
	Billing     Billing
	Card        Card
	Rebill      *Rebill
}

// Values encodes the request as bp20post form fields including the tamper proof seal
func (r Request) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}

	set("ACCOUNT_ID", r.Credentials.AccountID)
	set("USER_ID", r.Credentials.UserID)
	set("TRANS_TYPE", string(r.Type))
	set("PAYMENT_TYPE", paymentTypeCredit)
	set("MODE", string(r.Credentials.Mode()))
	set("MASTER_ID", r.MasterID)
	set("CUSTOMER_IP", r.CustomerIP)
	set("CUSTOM_ID", r.CustomID1)
	set("CUSTOM_ID2", r.CustomID2)
	set("ORDER_ID", r.OrderID)
	set("INVOICE_ID", r.InvoiceID)
	set("AMOUNT", r.Amount)

	set("NAME1", r.Billing.FirstName)
	set("NAME2", r.Billing.LastName)
	set("EMAIL", r.Billing.Email)
	set("ADDR1", r.Billing.Address1)
	set("ADDR2", r.Billing.Address2)
	set("CITY", r.Billing.City)
	set("STATE", r.Billing.State)
	set("ZIP", r.Billing.Zip)
	set("COUNTRY", r.Billing.Country)
	set("PHONE", r.Billing.Phone)

	set("PAYMENT_ACCOUNT", r.Card.Number)
	set("CARD_EXPIRE", r.Card.Expire)
	set("CARD_CVV2", r.Card.CVV2)

	if r.Rebill != nil {
		set("DO_REBILL", "1")
		set("REB_AMOUNT", r.Rebill.Amount)
		set("REB_FIRST_DATE", r.Rebill.FirstDate)
		set("REB_EXPR", r.Rebill.Expression)
		set("REB_CYCLES", r.Rebill.Cycles)
	}

	v.Set("TAMPER_PROOF_SEAL", r.Seal())
	return v
}

// Seal is md5(SECRET_KEY + ACCOUNT_ID + TRANS_TYPE + AMOUNT + MASTER_ID + NAME1 + PAYMENT_ACCOUNT) in hex
func (r Request) Seal() string {
	return seal(r.Credentials.SecretKey, r.Credentials.AccountID, string(r.Type), r.Amount, r.MasterID, r.Billing.FirstName, r.Card.Number)
}

// String renders the request without card data or the secret key
func (r Request) String() string {
	return fmt.Sprintf("bluepay.Request{Type:%s Mode:%s MasterID:%q OrderID:%q Amount:%q Card:%s Rebill:%t}",
		r.Type, r.Credentials.Mode(), r.MasterID, r.OrderID, r.Amount, maskCardNumber(r.Card.Number), r.Rebill != nil)
}

// GoString keeps card data out of %#v output
func (r Request) GoString() string {
	return r.String()
}

// CancelRebillRequest stops a rebilling schedule through bp20rebadmin
type CancelRebillRequest struct {
	Credentials Credentials
	RebillID    string
}

// Values encodes the request as bp20rebadmin form fields including the tamper proof seal
func (r CancelRebillRequest) Values() url.Values {
	v := url.Values{}
	v.Set("ACCOUNT_ID", r.Credentials.AccountID)
	v.Set("USER_ID", r.Credentials.UserID)
	v.Set("TRANS_TYPE", string(transSet))
	v.Set("REBILL_ID", r.RebillID)
	v.Set("STATUS", rebillStopped)
	v.Set("TAMPER_PROOF_SEAL", r.Seal())
	return v
}

// Seal is md5(SECRET_KEY + ACCOUNT_ID + TRANS_TYPE + REBILL_ID) in hex
func (r CancelRebillRequest) Seal() string {
	return seal(r.Credentials.SecretKey, r.Credentials.AccountID, string(transSet), r.RebillID)
}

func seal(parts ...string) string {
	h := md5.New()
	for _, p := range parts {
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func maskCardNumber(number string) string {
	if number == "" {
		return ""
	}
	if len(number) <= 4 {
		return "****"
	}
	return "************" + number[len(number)-4:]
}
