package opensearch

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mstgnz/bluepay/infra/config"
	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

const indexPrefix = "bluepay"

// Client wraps the OpenSearch client
type Client struct {
	client  *opensearch.Client
	enabled bool
}

// NewClient creates a new OpenSearch client and makes sure the log indices exist
func NewClient(cfg *config.AppConfig, providers ...string) (*Client, error) {
	opensearchConfig := opensearch.Config{
		Addresses:     []string{cfg.OpenSearchURL},
		Transport:     http.DefaultTransport,
		MaxRetries:    3,
		RetryOnStatus: []int{502, 503, 504, 429},
		RetryBackoff: func(i int) time.Duration {
			return time.Duration(i) * 100 * time.Millisecond
		},
	}

	if cfg.OpenSearchUser != "" && cfg.OpenSearchPass != "" {
		opensearchConfig.Username = cfg.OpenSearchUser
		opensearchConfig.Password = cfg.OpenSearchPass
	}

	client, err := opensearch.NewClient(opensearchConfig)
	if err != nil {
		return nil, err
	}

	osClient := &Client{
		client:  client,
		enabled: cfg.EnableLogging,
	}

	if osClient.enabled {
		if err := osClient.setupIndices(context.Background(), providers); err != nil {
			log.Printf("Warning: Failed to setup OpenSearch indices: %v", err)
		}
	}

	return osClient, nil
}

// GetClient returns the underlying OpenSearch client
func (c *Client) GetClient() *opensearch.Client {
	return c.client
}

func (c *Client) setupIndices(ctx context.Context, providers []string) error {
	for _, provider := range providers {
		indexName := c.GetLogIndexName(provider)

		exists, err := c.indexExists(ctx, indexName)
		if err != nil {
			return fmt.Errorf("checking index %s: %w", indexName, err)
		}
		if exists {
			continue
		}

		if err := c.createLogIndex(ctx, indexName); err != nil {
			return fmt.Errorf("creating index %s: %w", indexName, err)
		}
		log.Printf("Created OpenSearch index: %s", indexName)
	}

	return nil
}

func (c *Client) indexExists(ctx context.Context, indexName string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{
		Index: []string{indexName},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return false, err
	}
	defer res.Body.Close()

	return res.StatusCode == http.StatusOK, nil
}

const transactionLogMapping = `{
	"mappings": {
		"properties": {
			"timestamp": {"type": "date", "format": "strict_date_optional_time||epoch_millis"},
			"provider": {"type": "keyword"},
			"operation": {"type": "keyword"},
			"request_id": {"type": "keyword"},
			"order_id": {"type": "long"},
			"order_guid": {"type": "keyword"},
			"amount": {"type": "keyword"},
			"card": {"type": "keyword"},
			"outcome": {"type": "keyword"},
			"payment_status": {"type": "keyword"},
			"transaction_id": {"type": "keyword"},
			"messages": {"type": "text"},
			"processing_time_ms": {"type": "integer"},
			"error": {
				"type": "object",
				"properties": {
					"code": {"type": "keyword"},
					"message": {"type": "text"}
				}
			}
		}
	},
	"settings": {
		"number_of_shards": 1,
		"number_of_replicas": 0
	}
}`

func (c *Client) createLogIndex(ctx context.Context, indexName string) error {
	req := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(transactionLogMapping),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index creation error: %s", res.String())
	}

	return nil
}

// GetLogIndexName returns the index name holding a provider's transaction logs
func (c *Client) GetLogIndexName(provider string) string {
	return indexPrefix + "-" + strings.ToLower(strings.ReplaceAll(provider, ".", "-")) + "-logs"
}

// SystemIndexName is where system log events are written
func (c *Client) SystemIndexName() string {
	return indexPrefix + "-system-logs"
}

// IsEnabled returns whether OpenSearch logging is enabled
func (c *Client) IsEnabled() bool {
	return c.enabled
}
