package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/sirupsen/logrus"

    "optiontracker/internal/config"
    "optiontracker/internal/httpx"
    "optiontracker/internal/provider/coingecko"
    "optiontracker/internal/provider/finnhub"
    "optiontracker/internal/provider/openai"
    "optiontracker/internal/provider/polygon"
    "optiontracker/internal/proxy"
)

func main() {
    // Config
    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil { logrus.Fatalf("config: %v", err) }
    log, err := cfg.Log.Logger()
    if err != nil { logrus.Fatalf("config: %v", err) }

    warnMissingKeys(log, cfg)

    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)
    deps, err := newDeps(cfg, httpClient)
    if err != nil { log.Fatalf("clients: %v", err) }

    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           proxy.New(cfg, deps, log).Handler(),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        log.WithField("addr", srv.Addr).Info("proxy listening")
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            log.Fatalf("listen: %v", err)
        }
    }()

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        log.Errorf("shutdown: %v", err)
    }
    log.Info("proxy stopped")
}

// newDeps builds the upstream clients over one shared pooled transport.
func newDeps(cfg config.Config, hc httpx.HTTPClient) (proxy.Deps, error) {
    quotes, err := finnhub.NewClient(cfg.Finnhub.APIKey,
        finnhub.WithBaseURL(cfg.Finnhub.Endpoint),
        finnhub.WithHTTPClient(hc),
    )
    if err != nil { return proxy.Deps{}, err }
    news, err := polygon.NewClient(cfg.Polygon.APIKey,
        polygon.WithBaseURL(cfg.Polygon.Endpoint),
        polygon.WithHTTPClient(hc),
    )
    if err != nil { return proxy.Deps{}, err }
    sentiment, err := openai.NewClient(cfg.OpenAI.APIKey,
        openai.WithBaseURL(cfg.OpenAI.Endpoint),
        openai.WithModel(cfg.OpenAI.Model),
        openai.WithHTTPClient(hc),
    )
    if err != nil { return proxy.Deps{}, err }
    crypto, err := coingecko.NewClient(
        coingecko.WithBaseURL(cfg.CoinGecko.Endpoint),
        coingecko.WithAPIKey(cfg.CoinGecko.APIKey),
        coingecko.WithHTTPClient(hc),
    )
    if err != nil { return proxy.Deps{}, err }
    return proxy.Deps{Quotes: quotes, News: news, Sentiment: sentiment, Crypto: crypto}, nil
}

// warnMissingKeys logs every upstream that will answer 401 without a key.
// The proxy still starts; the affected routes return 500.
func warnMissingKeys(log logrus.FieldLogger, cfg config.Config) {
    if cfg.Finnhub.APIKey == "" {
        log.Warn("FINNHUB_API_KEY not set; /api/price and /api/markets will fail")
    }
    if cfg.Polygon.APIKey == "" {
        log.Warn("POLYGON_API_KEY not set; news routes will fail")
    }
    if cfg.OpenAI.APIKey == "" {
        log.Warn("OPENAI_API_KEY not set; /api/sentiment will fail")
    }
}
