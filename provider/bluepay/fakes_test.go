package bluepay

import (
	"context"
	"errors"
	"sync"

	"github.com/mstgnz/bluepay/provider"
	"github.com/shopspring/decimal"
)

// fakeGateway records requests and answers with canned results
type fakeGateway struct {
	mu sync.Mutex

	result       Result
	err          error
	cancelResult CancelResult
	cancelErr    error

	requests       []Request
	cancelRequests []CancelRebillRequest
}

func (g *fakeGateway) Post(_ context.Context, request Request) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, request)
	return g.result, g.err
}

func (g *fakeGateway) CancelRebill(_ context.Context, request CancelRebillRequest) (CancelResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelRequests = append(g.cancelRequests, request)
	return g.cancelResult, g.cancelErr
}

func (g *fakeGateway) last() Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

func approved(transID string) Result {
	return Result{Status: "1", Message: "Approved Sale", TransactionID: transID, AVS: "Y", CVV2: "M", AuthCode: "AUTH01"}
}

func declined(message string) Result {
	return Result{Status: "0", Message: message}
}

// fakeCurrency converts with a fixed rate; a nil usd simulates a missing currency
type fakeCurrency struct {
	usd *provider.Currency
	err error
}

func usdCurrency(rate string) *fakeCurrency {
	return &fakeCurrency{usd: &provider.Currency{ID: 1, Code: "USD", Rate: decimal.RequireFromString(rate)}}
}

func (c *fakeCurrency) GetCurrencyByCode(_ context.Context, code string) (*provider.Currency, error) {
	if c.err != nil {
		return nil, c.err
	}
	if c.usd != nil && c.usd.Code == code {
		return c.usd, nil
	}
	return nil, nil
}

func (c *fakeCurrency) ConvertFromPrimaryStoreCurrency(_ context.Context, amount decimal.Decimal, target *provider.Currency) (decimal.Decimal, error) {
	return amount.Mul(target.Rate), nil
}

type fakeDirectory struct {
	customers map[int64]*provider.Customer
	addresses map[int64]*provider.Address
	countries map[int64]*provider.Country
	states    map[int64]*provider.StateProvince
}

func (d *fakeDirectory) GetCustomerByID(_ context.Context, id int64) (*provider.Customer, error) {
	return d.customers[id], nil
}

func (d *fakeDirectory) GetAddressByID(_ context.Context, id int64) (*provider.Address, error) {
	return d.addresses[id], nil
}

func (d *fakeDirectory) GetCountryByID(_ context.Context, id int64) (*provider.Country, error) {
	return d.countries[id], nil
}

func (d *fakeDirectory) GetStateProvinceByID(_ context.Context, id int64) (*provider.StateProvince, error) {
	return d.states[id], nil
}

func newDirectory() *fakeDirectory {
	return &fakeDirectory{
		customers: map[int64]*provider.Customer{
			7: {ID: 7, GUID: "6f1c2b1e-9a57-4d38-b0a4-2c8d7f3e9a10", BillingAddressID: 70},
		},
		addresses: map[int64]*provider.Address{
			70: {
				ID: 70, FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
				Address1: "1 Main St", City: "Springfield", ZipPostalCode: "12345",
				PhoneNumber: "555-0100", CountryID: 1, StateProvinceID: 10,
			},
		},
		countries: map[int64]*provider.Country{1: {ID: 1, Name: "United States", ThreeLetterISOCode: "USA"}},
		states:    map[int64]*provider.StateProvince{10: {ID: 10, CountryID: 1, Name: "Illinois", Abbreviation: "IL"}},
	}
}

func newServices(currency provider.CurrencyService) provider.Services {
	dir := newDirectory()
	return provider.Services{
		Currency:  currency,
		Customers: dir,
		Addresses: dir,
		Countries: dir,
		States:    dir,
	}
}

// memoryStore implements SettingStore and LocaleStore
type memoryStore struct {
	mu     sync.Mutex
	values map[string]string
	failOn string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{values: map[string]string{}}
}

var errStore = errors.New("store unavailable")

func (m *memoryStore) GetSetting(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == m.failOn {
		return "", false, errStore
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryStore) SaveSetting(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == m.failOn {
		return errStore
	}
	m.values[key] = value
	return nil
}

func (m *memoryStore) DeleteSetting(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memoryStore) GetResource(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == m.failOn {
		return "", errStore
	}
	return m.values[key], nil
}

func (m *memoryStore) AddOrUpdateResource(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryStore) DeleteResource(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// fakeOrders implements provider.OrderService
type fakeOrders struct {
	mu        sync.Mutex
	orders    map[int64]*provider.Order
	histories []provider.RecurringPaymentHistory
}

func (f *fakeOrders) GetOrderByID(_ context.Context, id int64) (*provider.Order, error) {
	return f.orders[id], nil
}

func (f *fakeOrders) CountRecurringPaymentHistory(_ context.Context, recurringPaymentID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, h := range f.histories {
		if h.RecurringPaymentID == recurringPaymentID {
			n++
		}
	}
	return n, nil
}

func (f *fakeOrders) InsertRecurringPaymentHistory(_ context.Context, history provider.RecurringPaymentHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.histories = append(f.histories, history)
	return nil
}

func testSettings() Settings {
	return Settings{
		AccountID:    "100012345678",
		UserID:       "100098765432",
		SecretKey:    "ABCDEFGH12345678",
		UseSandbox:   true,
		TransactMode: TransactModeAuthorize,
	}
}

func testCard() provider.CardInfo {
	return provider.CardInfo{CardNumber: "4111111111111111", ExpireMonth: 3, ExpireYear: 2027, CVV2: "123"}
}
