// Package tracker keeps the user's short-option positions and enriches them
// with quotes, headlines and sentiment fetched through the proxy.
package tracker

import (
	"strings"

	"optiontracker/internal/provider"
)

// Position is one short-option record. Strike, Breakeven, Exp and Premium are
// kept exactly as entered. The enrichment fields are nil until fetched.
type Position struct {
	ID        string `json:"id"`
	Ticker    string `json:"ticker"`
	Strike    string `json:"strike"`
	Breakeven string `json:"breakeven"`
	Exp       string `json:"exp"`
	Premium   string `json:"premium"`

	LivePrice     *float64          `json:"livePrice"`
	PercentChange *provider.Percent `json:"percentChange"`
	Article       *provider.Article `json:"article"`
	Sentiment     *string           `json:"sentiment"`
}

// Draft holds the user-entered fields of a new Position.
type Draft struct {
	Ticker    string
	Strike    string
	Breakeven string
	Exp       string
	Premium   string
}

// Patch overwrites the non-nil fields of a Position.
type Patch struct {
	Ticker    *string
	Strike    *string
	Breakeven *string
	Exp       *string
	Premium   *string
}

func normalizeTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Clone returns a deep copy of p.
func (p Position) Clone() Position {
	out := p
	if p.LivePrice != nil {
		v := *p.LivePrice
		out.LivePrice = &v
	}
	if p.PercentChange != nil {
		v := *p.PercentChange
		out.PercentChange = &v
	}
	if p.Article != nil {
		v := *p.Article
		out.Article = &v
	}
	if p.Sentiment != nil {
		v := *p.Sentiment
		out.Sentiment = &v
	}
	return out
}

// ClonePositions deep-copies a slice of positions. A nil input stays nil.
func ClonePositions(in []Position) []Position {
	if in == nil {
		return nil
	}
	out := make([]Position, len(in))
	for i, p := range in {
		out[i] = p.Clone()
	}
	return out
}

// PriceUpdate is a completed price fetch. Nil fields mean the upstream had no
// quote, e.g. an unknown ticker.
type PriceUpdate struct {
	LivePrice     *float64
	PercentChange *provider.Percent
}

// NewsUpdate is a completed news fetch. A nil Article means no headline.
type NewsUpdate struct {
	Article *provider.Article
}

// SentimentUpdate is a completed sentiment fetch.
type SentimentUpdate struct {
	Text *string
}

// Enrichment is the outcome of one enrichment round for a ticker. A nil
// member was either not requested or failed, and leaves the Position as is.
type Enrichment struct {
	Price     *PriceUpdate
	News      *NewsUpdate
	Sentiment *SentimentUpdate
}

// ApplyEnrichment merges e into p and returns the result. p is not modified.
func ApplyEnrichment(p Position, e Enrichment) Position {
	out := p.Clone()
	if e.Price != nil {
		out.LivePrice = nil
		out.PercentChange = nil
		if e.Price.LivePrice != nil {
			v := *e.Price.LivePrice
			out.LivePrice = &v
		}
		if e.Price.PercentChange != nil {
			v := *e.Price.PercentChange
			out.PercentChange = &v
		}
	}
	if e.News != nil {
		out.Article = nil
		if e.News.Article != nil {
			v := *e.News.Article
			out.Article = &v
		}
	}
	if e.Sentiment != nil {
		out.Sentiment = nil
		if e.Sentiment.Text != nil {
			v := *e.Sentiment.Text
			out.Sentiment = &v
		}
	}
	return out
}
