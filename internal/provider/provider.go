package provider

import (
    "context"
    "errors"
    "fmt"

    "github.com/shopspring/decimal"
)

// ErrNotFound means the upstream answered but had no usable data for the
// request, e.g. an unknown ticker.
var ErrNotFound = errors.New("not found")

// Quote is the normalized shape returned by the quote fetcher.
type Quote struct {
    Ticker        string  `json:"ticker"`
    Close         float64 `json:"close"`
    Open          float64 `json:"open"`
    High          float64 `json:"high"`
    Low           float64 `json:"low"`
    PreviousClose float64 `json:"previousClose"`
    PercentChange Percent `json:"percentChange"`
    // Timestamp is unix milliseconds.
    Timestamp int64 `json:"timestamp"`
}

// Article is a single news headline.
type Article struct {
    Title     string `json:"title"`
    URL       string `json:"url"`
    Source    string `json:"source"`
    Published string `json:"published"`
}

// CryptoPrice is a spot price in USD with its 24h percent change.
type CryptoPrice struct {
    Symbol    string  `json:"symbol"`
    Price     float64 `json:"price"`
    Change24h float64 `json:"change"`
}

type QuoteFetcher interface {
    Quote(ctx context.Context, ticker string) (Quote, error)
}

type NewsFetcher interface {
    // LatestNews returns nil without error when the ticker has no news.
    LatestNews(ctx context.Context, ticker string) (*Article, error)
    GlobalNews(ctx context.Context, limit int) ([]Article, error)
}

type SentimentFetcher interface {
    Sentiment(ctx context.Context, ticker string) (string, error)
}

type CryptoFetcher interface {
    Prices(ctx context.Context, symbols []string) ([]CryptoPrice, error)
}

// Percent is a percentage kept as a decimal. It always encodes as a JSON
// string with two decimals ("1.76") and decodes from a string or a number.
type Percent struct {
    decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// PercentChange returns (current - previous) / previous * 100. A zero
// previous value yields 0.00.
func PercentChange(current, previous float64) Percent {
    prev := decimal.NewFromFloat(previous)
    if prev.IsZero() {
        return Percent{}
    }
    cur := decimal.NewFromFloat(current)
    return Percent{cur.Sub(prev).Div(prev).Mul(hundred).Round(2)}
}

func (p Percent) String() string { return p.StringFixed(2) }

func (p Percent) MarshalJSON() ([]byte, error) {
    return []byte(`"` + p.StringFixed(2) + `"`), nil
}

func (p *Percent) UnmarshalJSON(b []byte) error {
    if string(b) == "null" {
        p.Decimal = decimal.Zero
        return nil
    }
    if err := p.Decimal.UnmarshalJSON(b); err != nil {
        return fmt.Errorf("decoding percent: %w", err)
    }
    return nil
}
