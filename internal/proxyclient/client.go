// Package proxyclient talks to the aggregation proxy on behalf of the tracker.
package proxyclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"optiontracker/internal/aggregate"
	"optiontracker/internal/httpx"
	"optiontracker/internal/provider"
)

// StatusError is a non-2xx proxy response. Message is the proxy's error text.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("proxy status %d", e.Code)
	}
	return fmt.Sprintf("proxy status %d: %s", e.Code, e.Message)
}

// Client is a client for the proxy routes.
type Client struct {
	baseURL    string
	httpClient httpx.HTTPClient
	header     http.Header
}

// Option is a configuration option for the proxy client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
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

// New creates a client for the proxy at baseURL.
func New(baseURL string, options ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		header:     http.Header{"Accept": []string{"application/json"}},
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// Price returns the quote for ticker. An unknown ticker is provider.ErrNotFound.
func (c *Client) Price(ctx context.Context, ticker string) (provider.Quote, error) {
	var q provider.Quote
	err := c.get(ctx, "/api/price/"+url.PathEscape(ticker), &q)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return provider.Quote{}, fmt.Errorf("price %s: %w", ticker, provider.ErrNotFound)
	}
	if err != nil {
		return provider.Quote{}, err
	}
	return q, nil
}

// News returns the latest headline for ticker, nil when there is none.
func (c *Client) News(ctx context.Context, ticker string) (*provider.Article, error) {
	var body struct {
		Article *provider.Article `json:"article"`
	}
	if err := c.get(ctx, "/api/news/"+url.PathEscape(ticker), &body); err != nil {
		return nil, err
	}
	return body.Article, nil
}

// Sentiment returns the model's take on ticker.
func (c *Client) Sentiment(ctx context.Context, ticker string) (string, error) {
	var body struct {
		Sentiment string `json:"sentiment"`
	}
	if err := c.get(ctx, "/api/sentiment/"+url.PathEscape(ticker), &body); err != nil {
		return "", err
	}
	return body.Sentiment, nil
}

func (c *Client) GlobalNews(ctx context.Context) ([]provider.Article, error) {
	var articles []provider.Article
	if err := c.get(ctx, "/api/global-news", &articles); err != nil {
		return nil, err
	}
	return articles, nil
}

func (c *Client) Markets(ctx context.Context) (aggregate.Snapshot, error) {
	var snap aggregate.Snapshot
	if err := c.get(ctx, "/api/markets", &snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (c *Client) MarketBar(ctx context.Context) ([]aggregate.BarEntry, error) {
	var bar []aggregate.BarEntry
	if err := c.get(ctx, "/api/crypto/marketbar", &bar); err != nil {
		return nil, err
	}
	return bar, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(res.Body, 2<<10)).Decode(&body)
		return &StatusError{Code: res.StatusCode, Message: body.Error}
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
