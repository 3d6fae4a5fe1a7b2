package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/tcg-price-bot/app/models"
)

// RemoteFetchError is returned when the catalog endpoint answers with a
// non-2xx status or the transport fails.
type RemoteFetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *RemoteFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog fetch %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("catalog fetch %s failed with status %d", e.URL, e.Status)
}

func (e *RemoteFetchError) Unwrap() error { return e.Err }

// MalformedResponseError is returned when a response body is neither a bare
// JSON array nor a {"results": [...]} wrapper.
type MalformedResponseError struct {
	URL string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("catalog response from %s has unexpected shape", e.URL)
}

// Config holds the fixed base URL and category the client is scoped to.
type Config struct {
	BaseURL    string
	CategoryID int
	Timeout    time.Duration
}

// Client fetches groups, products and prices from the remote catalog mirror.
// It performs no retries: per-group failures are isolated by the snapshot
// rebuild, not papered over here.
type Client struct {
	http       *retryablehttp.Client
	baseURL    string
	categoryID int
	logger     *zap.Logger
}

// NewClient builds a catalog client. The retryable client is kept for its
// connection pooling and timeout handling but configured with RetryMax 0.
func NewClient(config Config, logger *zap.Logger) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.Logger = nil
	if config.Timeout > 0 {
		httpClient.HTTPClient.Timeout = config.Timeout
	}

	return &Client{
		http:       httpClient,
		baseURL:    config.BaseURL,
		categoryID: config.CategoryID,
		logger:     logger,
	}
}

// FetchGroups retrieves every group (set/release) in the category.
func (c *Client) FetchGroups(ctx context.Context) ([]models.Group, error) {
	url := fmt.Sprintf("%s/%d/groups", c.baseURL, c.categoryID)

	var groups []models.Group
	if err := c.getCollection(ctx, url, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// FetchProducts retrieves all products belonging to one group.
func (c *Client) FetchProducts(ctx context.Context, groupID int) ([]models.Product, error) {
	url := fmt.Sprintf("%s/%d/%d/products", c.baseURL, c.categoryID, groupID)

	var products []models.Product
	if err := c.getCollection(ctx, url, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FetchPrices retrieves all price rows for one group.
func (c *Client) FetchPrices(ctx context.Context, groupID int) ([]models.Price, error) {
	url := fmt.Sprintf("%s/%d/%d/prices", c.baseURL, c.categoryID, groupID)

	var prices []models.Price
	if err := c.getCollection(ctx, url, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// getCollection performs one GET and decodes the result collection. The
// endpoint may return the array bare or wrapped in a "results" field, both
// shapes are accepted.
func (c *Client) getCollection(ctx context.Context, url string, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &RemoteFetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &RemoteFetchError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteFetchError{URL: url, Err: err}
	}

	root := gjson.ParseBytes(body)
	collection := root
	if !root.IsArray() {
		collection = root.Get("results")
		if !collection.IsArray() {
			return &MalformedResponseError{URL: url}
		}
	}

	if err := json.Unmarshal([]byte(collection.Raw), out); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}

	c.logger.Debug("Fetched catalog collection", zap.String("url", url))
	return nil
}
