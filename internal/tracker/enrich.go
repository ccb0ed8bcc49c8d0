package tracker

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"optiontracker/internal/provider"
)

// Enricher fetches fresh data for a ticker. It never fails; anything it could
// not fetch is left nil in the Enrichment.
type Enricher interface {
	Enrich(ctx context.Context, ticker string) Enrichment
}

// ProxyAPI is the subset of the proxy client the enricher uses.
type ProxyAPI interface {
	Price(ctx context.Context, ticker string) (provider.Quote, error)
	News(ctx context.Context, ticker string) (*provider.Article, error)
	Sentiment(ctx context.Context, ticker string) (string, error)
}

// ProxyEnricher enriches through the proxy. Price is always fetched; News and
// Sentiment are opt-in. The calls run concurrently and Enrich waits for all.
type ProxyEnricher struct {
	API       ProxyAPI
	News      bool
	Sentiment bool
	Log       logrus.FieldLogger
}

func (e *ProxyEnricher) Enrich(ctx context.Context, ticker string) Enrichment {
	var (
		out Enrichment
		g   errgroup.Group
	)
	var log logrus.FieldLogger = logrus.StandardLogger()
	if e.Log != nil {
		log = e.Log
	}
	log = log.WithField("ticker", ticker)

	g.Go(func() error {
		q, err := e.API.Price(ctx, ticker)
		switch {
		case errors.Is(err, provider.ErrNotFound):
			out.Price = &PriceUpdate{}
		case err != nil:
			log.Warnf("tracker - Enrich - Price: %v", err)
		default:
			price, pct := q.Close, q.PercentChange
			out.Price = &PriceUpdate{LivePrice: &price, PercentChange: &pct}
		}
		return nil
	})
	if e.News {
		g.Go(func() error {
			a, err := e.API.News(ctx, ticker)
			if err != nil {
				log.Warnf("tracker - Enrich - News: %v", err)
				return nil
			}
			out.News = &NewsUpdate{Article: a}
			return nil
		})
	}
	if e.Sentiment {
		g.Go(func() error {
			s, err := e.API.Sentiment(ctx, ticker)
			if err != nil {
				log.Warnf("tracker - Enrich - Sentiment: %v", err)
				return nil
			}
			out.Sentiment = &SentimentUpdate{Text: &s}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
