package coingecko

import (
	"net/http"
	"strings"

	"optiontracker/internal/httpx"
)

const baseURL = "https://api.coingecko.com/api/v3"

// ids maps ticker symbols to CoinGecko coin ids.
var ids = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"XRP":  "ripple",
	"SOL":  "solana",
	"DOGE": "dogecoin",
	"ADA":  "cardano",
}

// CoinID returns the CoinGecko id for symbol. Unknown symbols are assumed to
// already be ids.
func CoinID(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if id, ok := ids[s]; ok {
		return id
	}
	return strings.ToLower(s)
}

// Client is a client for the CoinGecko simple price API.
type Client struct {
	baseURL    string
	httpClient httpx.HTTPClient
	header     http.Header
}

// Option is a configuration option for the CoinGecko client.
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

// WithAPIKey sends a demo API key with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if key != "" {
			c.header.Set("x-cg-demo-api-key", key)
		}
	}
}

// NewClient creates a new CoinGecko client. The public API works without a key.
func NewClient(options ...Option) (*Client, error) {
	var client = &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}
