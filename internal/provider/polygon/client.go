package polygon

import (
	"net/http"
	"net/url"

	"optiontracker/internal/httpx"
)

const baseURL = "https://api.polygon.io"

// Client is a client for the Polygon reference news API.
type Client struct {
	baseURL    string
	httpClient httpx.HTTPClient
	header     http.Header
	query      url.Values
}

// Option is a configuration option for the Polygon client.
type Option func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient httpx.HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// NewClient creates a new Polygon client.
func NewClient(key string, options ...Option) (*Client, error) {
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		query:      url.Values{},
	}
	if key != "" {
		client.query.Add("apiKey", key)
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}
