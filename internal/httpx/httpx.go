package httpx

import (
    "fmt"
    "io"
    "net"
    "net/http"
    "strings"
    "time"
)

// HTTPClient describes an HTTP client. Every upstream client depends on this
// instead of *http.Client so tests can substitute a mock.
//
//go:generate mockgen -destination=httpxmock/mock_http_client.go -package=httpxmock . HTTPClient
type HTTPClient interface {
    Do(req *http.Request) (*http.Response, error)
}

// Client wraps http.Client with pooled transport settings and default headers.
type Client struct {
    HTTP      *http.Client
    UserAgent string
    Headers   map[string]string
}

func New(timeout time.Duration) *Client {
    transport := &http.Transport{
        Proxy:                 http.ProxyFromEnvironment,
        DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
        MaxIdleConns:          50,
        MaxIdleConnsPerHost:   10,
        ForceAttemptHTTP2:     true,
        IdleConnTimeout:       90 * time.Second,
        TLSHandshakeTimeout:   3 * time.Second,
        ExpectContinueTimeout: 1 * time.Second,
    }
    return &Client{HTTP: &http.Client{Timeout: timeout, Transport: transport}, UserAgent: "option-tracker/1.0"}
}

// Do sends req after filling in the user agent and default headers the
// request did not set itself.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
    if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
        req.Header.Set("User-Agent", c.UserAgent)
    }
    for k, v := range c.Headers {
        if req.Header.Get(k) == "" {
            req.Header.Set(k, v)
        }
    }
    return c.HTTP.Do(req)
}

// StatusError reports an upstream response outside 2xx.
type StatusError struct {
    Code int
    Body string
}

func (e *StatusError) Error() string {
    if e.Body == "" {
        return fmt.Sprintf("unexpected status code: %d", e.Code)
    }
    return fmt.Sprintf("unexpected status code: %d: %s", e.Code, e.Body)
}

// CheckStatus returns nil for 2xx responses. Otherwise it reads a short
// prefix of the body for context; the caller still owns closing it.
func CheckStatus(res *http.Response) error {
    if res.StatusCode >= 200 && res.StatusCode < 300 {
        return nil
    }
    b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
    return &StatusError{Code: res.StatusCode, Body: strings.TrimSpace(string(b))}
}
