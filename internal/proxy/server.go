// Package proxy exposes the upstream fetchers as JSON HTTP routes.
package proxy

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"optiontracker/internal/aggregate"
	"optiontracker/internal/config"
	"optiontracker/internal/provider"
)

// Deps are the upstream fetchers the routes forward to.
type Deps struct {
	Quotes    provider.QuoteFetcher
	News      provider.NewsFetcher
	Sentiment provider.SentimentFetcher
	Crypto    provider.CryptoFetcher
}

// Server is the aggregation proxy. It holds no state across requests.
type Server struct {
	cfg  config.Config
	deps Deps
	log  logrus.FieldLogger
	mux  *http.ServeMux
}

type newsResponse struct {
	Article *provider.Article `json:"article"`
}

type sentimentResponse struct {
	Ticker    string `json:"ticker"`
	Sentiment string `json:"sentiment"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// New builds the proxy from cfg. Handlers only read cfg and deps captured here.
func New(cfg config.Config, deps Deps, log logrus.FieldLogger) *Server {
	s := &Server{cfg: cfg, deps: deps, log: log, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/price/{ticker}", get(s.handlePrice))
	s.mux.HandleFunc("/api/news/{ticker}", get(s.handleNews))
	s.mux.HandleFunc("/api/news", get(s.handleGlobalNews))
	s.mux.HandleFunc("/api/global-news", get(s.handleGlobalNews))
	s.mux.HandleFunc("/api/sentiment/{ticker}", get(s.handleSentiment))
	s.mux.HandleFunc("/api/markets", get(s.handleMarkets))
	s.mux.HandleFunc("/api/crypto/marketbar", get(s.handleMarketBar))
	s.mux.HandleFunc("/api/test", get(s.handleTest))
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return withRequestLog(s.log, withCORS(s.cfg.Server.AllowedOrigins, withJSONHeaders(withGzip(recoverPanic(s.log, limitBody(s.mux))))))
}

func get(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h(w, r)
	}
}

func tickerParam(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(r.PathValue("ticker")))
}

func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	ticker := tickerParam(r)
	q, err := s.deps.Quotes.Quote(r.Context(), ticker)
	switch {
	case errors.Is(err, provider.ErrNotFound):
		s.log.WithFields(logrus.Fields{"route": "price", "ticker": ticker}).Infof("proxy - handlePrice - Quote: %v", err)
		writeError(w, http.StatusNotFound, "Ticker not found")
	case err != nil:
		s.log.WithFields(logrus.Fields{"route": "price", "ticker": ticker}).Errorf("proxy - handlePrice - Quote: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch price")
	default:
		writeJSON(w, http.StatusOK, q)
	}
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	ticker := tickerParam(r)
	article, err := s.deps.News.LatestNews(r.Context(), ticker)
	if err != nil {
		s.log.WithFields(logrus.Fields{"route": "news", "ticker": ticker}).Errorf("proxy - handleNews - LatestNews: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch news")
		return
	}
	writeJSON(w, http.StatusOK, newsResponse{Article: article})
}

func (s *Server) handleGlobalNews(w http.ResponseWriter, r *http.Request) {
	articles, err := s.deps.News.GlobalNews(r.Context(), s.cfg.Polygon.GlobalNewsLimit)
	if err != nil {
		s.log.WithField("route", "global-news").Errorf("proxy - handleGlobalNews - GlobalNews: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch global market news")
		return
	}
	if articles == nil {
		articles = []provider.Article{}
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	ticker := tickerParam(r)
	text, err := s.deps.Sentiment.Sentiment(r.Context(), ticker)
	if err != nil {
		s.log.WithFields(logrus.Fields{"route": "sentiment", "ticker": ticker}).Errorf("proxy - handleSentiment - Sentiment: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch sentiment")
		return
	}
	writeJSON(w, http.StatusOK, sentimentResponse{Ticker: ticker, Sentiment: text})
}

func (s *Server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	snap, err := aggregate.BuildSnapshot(r.Context(), s.deps.Quotes, s.deps.Crypto, s.cfg.Markets.Equities, s.cfg.Markets.Crypto)
	if errors.Is(err, aggregate.ErrSnapshotUnavailable) {
		s.log.WithField("route", "markets").Errorf("proxy - handleMarkets - BuildSnapshot: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch markets")
		return
	}
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"route":  "markets",
			"filled": snap.Filled(),
			"total":  len(snap),
		}).Warnf("proxy - handleMarkets - BuildSnapshot: partial: %v", err)
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleMarketBar(w http.ResponseWriter, r *http.Request) {
	bar, err := aggregate.MarketBar(r.Context(), s.deps.Crypto, s.cfg.Markets.Crypto)
	if err != nil {
		s.log.WithField("route", "marketbar").Errorf("proxy - handleMarketBar - MarketBar: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch crypto prices")
		return
	}
	writeJSON(w, http.StatusOK, bar)
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: "Backend is live and CORS headers are active."})
}
