package existdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config contains configuration for the eXist-db REST client.
//
// Example configuration (HCL):
//
//	store {
//	  base_url = "http://existdb:8080/exist/rest/db"
//	  username = "admin"
//	  password = "..."
//	  timeout  = "20s"
//	}
type Config struct {
	// BaseURL is the base URL of the store's REST interface, including the
	// root collection. Example: "http://existdb:8080/exist/rest/db"
	BaseURL string `hcl:"base_url"`

	// Username for HTTP basic authentication.
	Username string `hcl:"username"`

	// Password for HTTP basic authentication. Required, no default.
	Password string `hcl:"password"`

	// Timeout for each request to the store.
	// Default: 20 seconds.
	Timeout time.Duration `hcl:"timeout,optional"`
}

// DefaultTimeout bounds each network call to the store when the
// configuration does not say otherwise.
const DefaultTimeout = 20 * time.Second

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	parsedURL, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https scheme, got: %s", parsedURL.Scheme)
	}

	if c.Username == "" {
		return fmt.Errorf("username is required")
	}
	if c.Password == "" {
		return fmt.Errorf("password is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative, got: %v", c.Timeout)
	}

	return nil
}

// NewHTTPClient creates a configured HTTP client for the store.
func (c *Config) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	timeout := c.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// Response is the raw outcome of a single request to the store: the status
// code and body exactly as received, with no interpretation.
type Response struct {
	StatusCode int
	Body       []byte
}

// Client performs single HTTP requests against path-addressed resources
// under one base URL with one set of basic-auth credentials. One shared
// connection-pooling http.Client is reused across all operations.
//
// The client returns a Response for any answer the remote end produces and
// an error only when no response is obtainable (connection refused, timeout,
// malformed response). It performs no retries and attaches no meaning to
// status codes; that is delegated upward.
type Client struct {
	config *Config
	client *http.Client
}

// NewClient creates a client bound to the configured store.
func NewClient(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	return &Client{
		config: cfg,
		client: cfg.NewHTTPClient(),
	}, nil
}

// BaseURL returns the base URL the client is bound to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Get issues a GET against {base}/{path}.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, "")
}

// Put issues a PUT against {base}/{path} with the given body and content type.
func (c *Client) Put(ctx context.Context, path string, body []byte, contentType string) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body, contentType)
}

// Delete issues a DELETE against {base}/{path}.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, nil, "")
}

// Head issues a HEAD against {base}/{path}. The response body is always
// empty; only the status code is meaningful.
func (c *Client) Head(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodHead, path, nil, "")
}

// Post issues a POST against {base}/{path} with the given body and content type.
func (c *Client) Post(ctx context.Context, path string, body []byte, contentType string) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body, contentType)
}

// do executes a single request. No retries: a failed call is returned to the
// caller as-is.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string) (*Response, error) {
	endpoint := c.config.BaseURL
	if path != "" {
		endpoint = fmt.Sprintf("%s/%s", strings.TrimSuffix(c.config.BaseURL, "/"), strings.TrimPrefix(path, "/"))
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.SetBasicAuth(c.config.Username, c.config.Password)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}

// documentPath builds the resource path for a document within a collection.
func documentPath(collection, name string) string {
	return fmt.Sprintf("%s/%s", collection, name)
}
