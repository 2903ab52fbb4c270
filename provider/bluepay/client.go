package bluepay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mstgnz/bluepay/provider"
)

const (
	defaultBaseURL = "https://secure.bluepay.com/interfaces"

	endpointPost        = "bp20post"
	endpointRebillAdmin = "bp20rebadmin"

	statusApproved = "1"
)

// Result is the parsed bp20post response
type Result struct {
	Status        string
	Message       string
	TransactionID string
	AVS           string
	CVV2          string
	AuthCode      string
	RebillID      string
}

// Approved reports whether the gateway approved the transaction
func (r Result) Approved() bool {
	return r.Status == statusApproved
}

// CancelResult is the parsed bp20rebadmin response
type CancelResult struct {
	RebillID string
	Status   string
	Message  string
}

// Stopped reports whether the schedule is now stopped
func (r CancelResult) Stopped() bool {
	return strings.EqualFold(r.Status, rebillStopped)
}

// Gateway sends requests to BluePay. Declines are results, not errors.
type Gateway interface {
	Post(ctx context.Context, request Request) (Result, error)
	CancelRebill(ctx context.Context, request CancelRebillRequest) (CancelResult, error)
}

// HTTPClient is the stateless BluePay gateway client
type HTTPClient struct {
	http *provider.ProviderHTTPClient
}

// NewHTTPClient creates a client for baseURL, defaulting to the production BluePay interfaces
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &HTTPClient{
		http: provider.NewProviderHTTPClient(provider.CreateHTTPClientConfig(baseURL, timeout)),
	}
}

// Post sends a bp20post transaction
func (c *HTTPClient) Post(ctx context.Context, request Request) (Result, error) {
	values, err := c.send(ctx, endpointPost, request.Values())
	if err != nil {
		return Result{}, fmt.Errorf("bluepay: %s: %w", strings.ToLower(string(request.Type)), err)
	}

	return Result{
		Status:        field(values, "STATUS"),
		Message:       field(values, "MESSAGE"),
		TransactionID: field(values, "TRANS_ID"),
		AVS:           field(values, "AVS"),
		CVV2:          field(values, "CVV2"),
		AuthCode:      field(values, "AUTH_CODE"),
		RebillID:      field(values, "REBID"),
	}, nil
}

// CancelRebill stops a rebilling schedule
func (c *HTTPClient) CancelRebill(ctx context.Context, request CancelRebillRequest) (CancelResult, error) {
	values, err := c.send(ctx, endpointRebillAdmin, request.Values())
	if err != nil {
		return CancelResult{}, fmt.Errorf("bluepay: cancel rebill: %w", err)
	}

	return CancelResult{
		RebillID: field(values, "REBILL_ID"),
		Status:   field(values, "STATUS"),
		Message:  field(values, "MESSAGE"),
	}, nil
}

// send posts the form and parses the URL-encoded body. BluePay answers declines
// with a 4xx status and a regular body, so such bodies are parsed rather than failed.
func (c *HTTPClient) send(ctx context.Context, endpoint string, form url.Values) (url.Values, error) {
	resp, err := c.http.SendForm(ctx, endpoint, form)
	if resp == nil {
		return nil, err
	}
	if err != nil && (resp.StatusCode < http.StatusBadRequest || resp.StatusCode >= http.StatusInternalServerError) {
		return nil, err
	}

	values, parseErr := url.ParseQuery(strings.TrimSpace(string(resp.Body)))
	if parseErr != nil {
		return nil, errors.Join(err, fmt.Errorf("malformed response: %w", parseErr))
	}
	if err != nil && field(values, "STATUS") == "" {
		return nil, err
	}

	return values, nil
}

// field looks a response key up in upper then lower case
func field(values url.Values, key string) string {
	if v := values.Get(key); v != "" {
		return v
	}
	return values.Get(strings.ToLower(key))
}
