package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"optiontracker/internal/provider"
)

// quoteResponse mirrors GET /quote.
//
//	{"c":417.2,"d":7.2,"dp":1.756,"h":418,"l":414,"o":415,"pc":410,"t":1718000000}
type quoteResponse struct {
	Current       *float64 `json:"c"`
	Open          float64  `json:"o"`
	High          float64  `json:"h"`
	Low           float64  `json:"l"`
	PreviousClose float64  `json:"pc"`
	Time          int64    `json:"t"`
}

// Quote fetches the latest quote for ticker. Finnhub answers unknown symbols
// with a zeroed body, which is reported as provider.ErrNotFound.
func (c *Client) Quote(ctx context.Context, ticker string) (provider.Quote, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return provider.Quote{}, fmt.Errorf("empty ticker: %w", provider.ErrNotFound)
	}

	query := maps.Clone(c.query)
	query.Set("symbol", ticker)

	url := fmt.Sprintf("%s/quote?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return provider.Quote{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return provider.Quote{}, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusUnauthorized, http.StatusForbidden:
		return provider.Quote{}, fmt.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return provider.Quote{}, fmt.Errorf("rate limited")

	default:
		return provider.Quote{}, fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	var body quoteResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return provider.Quote{}, fmt.Errorf("decoding quote response: %w", err)
	}
	if body.Current == nil || *body.Current == 0 {
		return provider.Quote{}, fmt.Errorf("quote %s: %w", ticker, provider.ErrNotFound)
	}

	ts := c.now().UnixMilli()
	if body.Time > 0 {
		ts = body.Time * 1000
	}

	return provider.Quote{
		Ticker:        ticker,
		Close:         *body.Current,
		Open:          body.Open,
		High:          body.High,
		Low:           body.Low,
		PreviousClose: body.PreviousClose,
		PercentChange: provider.PercentChange(*body.Current, body.PreviousClose),
		Timestamp:     ts,
	}, nil
}
