package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"optiontracker/internal/httpx"
	"optiontracker/internal/provider"
)

// simplePrice mirrors one entry of GET /simple/price.
//
//	{"bitcoin":{"usd":67000.12,"usd_24h_change":-1.23}}
type simplePrice struct {
	USD       *float64 `json:"usd"`
	Change24h float64  `json:"usd_24h_change"`
}

// Prices fetches USD spot prices for symbols in one request. The result keeps
// the request order; symbols the upstream does not know are left out.
func (c *Client) Prices(ctx context.Context, symbols []string) ([]provider.CryptoPrice, error) {
	if len(symbols) == 0 {
		return []provider.CryptoPrice{}, nil
	}

	coinIDs := make([]string, 0, len(symbols))
	for _, s := range symbols {
		coinIDs = append(coinIDs, CoinID(s))
	}

	query := url.Values{}
	query.Set("ids", strings.Join(coinIDs, ","))
	query.Set("vs_currencies", "usd")
	query.Set("include_24hr_change", "true")

	endpoint := fmt.Sprintf("%s/simple/price?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited")

	default:
		return nil, httpx.CheckStatus(res)
	}

	var body map[string]simplePrice
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding price response: %w", err)
	}

	out := make([]provider.CryptoPrice, 0, len(symbols))
	for i, s := range symbols {
		p, ok := body[coinIDs[i]]
		if !ok || p.USD == nil {
			continue
		}
		out = append(out, provider.CryptoPrice{
			Symbol:    strings.ToUpper(strings.TrimSpace(s)),
			Price:     *p.USD,
			Change24h: p.Change24h,
		})
	}
	return out, nil
}
