package openai

import (
	"net/http"

	"optiontracker/internal/httpx"
)

const (
	baseURL      = "https://api.openai.com/v1"
	defaultModel = "gpt-4o-mini"
)

// Client is a client for the OpenAI chat completions API.
type Client struct {
	baseURL    string
	model      string
	httpClient httpx.HTTPClient
	header     http.Header
}

// Option is a configuration option for the OpenAI client.
type Option func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithModel sets the completion model.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient httpx.HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new OpenAI client.
func NewClient(key string, options ...Option) (*Client, error) {
	var client = &Client{
		baseURL:    baseURL,
		model:      defaultModel,
		httpClient: http.DefaultClient,
		header:     http.Header{},
	}
	client.header.Set("Content-Type", "application/json")
	if key != "" {
		client.header.Set("Authorization", "Bearer "+key)
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}
