package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mstgnz/bluepay/infra/logger"
	"github.com/mstgnz/bluepay/infra/opensearch"
)

const defaultHTTPTimeout = 30 * time.Second

// maxResponseBytes caps how much of a gateway response body is read
const maxResponseBytes = 1 << 20

// HTTPClientConfig represents configuration for a gateway HTTP client
type HTTPClientConfig struct {
	BaseURL        string
	Timeout        time.Duration
	DefaultHeaders map[string]string
	// Transport overrides the round tripper, used by tests
	Transport http.RoundTripper
}

// HTTPResponse represents a gateway HTTP response
type HTTPResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// ProviderHTTPClient posts form-encoded requests to payment gateways
type ProviderHTTPClient struct {
	config *HTTPClientConfig
	client *http.Client
}

// NewProviderHTTPClient creates a new provider HTTP client
func NewProviderHTTPClient(config *HTTPClientConfig) *ProviderHTTPClient {
	if config.Timeout == 0 {
		config.Timeout = defaultHTTPTimeout
	}

	client := &http.Client{
		Timeout:   config.Timeout,
		Transport: config.Transport,
	}

	return &ProviderHTTPClient{
		config: config,
		client: client,
	}
}

// BaseURL returns the configured base URL
func (c *ProviderHTTPClient) BaseURL() string {
	return c.config.BaseURL
}

// SendForm posts form values to endpoint. Non-2xx responses are returned together with an error.
func (c *ProviderHTTPClient) SendForm(ctx context.Context, endpoint string, form url.Values) (*HTTPResponse, error) {
	fullURL := joinURL(c.config.BaseURL, endpoint)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range c.config.DefaultHeaders {
		httpReq.Header.Set(key, value)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	response := &HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Debug("Gateway returned a non-2xx response", logger.LogContext{Fields: map[string]any{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
			"body":     opensearch.SanitizeForLog(string(respBody)),
		}})
		return response, fmt.Errorf("HTTP error %d", resp.StatusCode)
	}

	return response, nil
}

func joinURL(base, endpoint string) string {
	if endpoint == "" {
		return base
	}
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if strings.HasSuffix(base, "/") && strings.HasPrefix(endpoint, "/") {
		return base + endpoint[1:]
	}
	if !strings.HasSuffix(base, "/") && !strings.HasPrefix(endpoint, "/") {
		return base + "/" + endpoint
	}
	return base + endpoint
}

// CreateHTTPClientConfig creates a standard HTTP client configuration for a form gateway
func CreateHTTPClientConfig(baseURL string, timeout time.Duration) *HTTPClientConfig {
	if timeout == 0 {
		timeout = defaultHTTPTimeout
	}

	return &HTTPClientConfig{
		BaseURL: baseURL,
		Timeout: timeout,
		DefaultHeaders: map[string]string{
			"Accept":     "application/x-www-form-urlencoded, text/plain",
			"User-Agent": "BluePayPlugin/1.0",
		},
	}
}
