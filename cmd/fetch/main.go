package main

import (
    "context"
    "encoding/json"
    "flag"
    "fmt"
    "log"
    "os"
    "strings"
    "time"

    "optiontracker/internal/aggregate"
    "optiontracker/internal/config"
    "optiontracker/internal/httpx"
    "optiontracker/internal/provider/coingecko"
    "optiontracker/internal/provider/finnhub"
    "optiontracker/internal/provider/openai"
    "optiontracker/internal/provider/polygon"
)

// fetch calls the upstream APIs directly, without the proxy, and prints the
// normalized result as JSON. Keys come from config.json or the environment.
func main() {
    var kind, ticker, configPath string
    var timeout int

    flag.StringVar(&kind, "kind", "price", "price | news | global-news | sentiment | crypto | markets")
    flag.StringVar(&ticker, "ticker", getenv("TICKER", "MSFT"), "ticker for price, news and sentiment")
    flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (default from config)")
    flag.StringVar(&configPath, "config", getenv("CONFIG_FILE", ""), "path to config.json (optional)")
    flag.Parse()

    cfg, err := config.Load(configPath)
    if err != nil { log.Fatalf("config: %v", err) }
    if timeout > 0 { cfg.Server.RequestTimeoutSec = timeout }
    d := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second
    hc := httpx.New(d)

    ctx, cancel := context.WithTimeout(context.Background(), d)
    defer cancel()

    var out any
    switch strings.ToLower(kind) {
    case "price":
        c, _ := finnhub.NewClient(cfg.Finnhub.APIKey, finnhub.WithBaseURL(cfg.Finnhub.Endpoint), finnhub.WithHTTPClient(hc))
        out, err = c.Quote(ctx, ticker)
    case "news":
        c, _ := polygon.NewClient(cfg.Polygon.APIKey, polygon.WithBaseURL(cfg.Polygon.Endpoint), polygon.WithHTTPClient(hc))
        out, err = c.LatestNews(ctx, ticker)
    case "global-news":
        c, _ := polygon.NewClient(cfg.Polygon.APIKey, polygon.WithBaseURL(cfg.Polygon.Endpoint), polygon.WithHTTPClient(hc))
        out, err = c.GlobalNews(ctx, cfg.Polygon.GlobalNewsLimit)
    case "sentiment":
        c, _ := openai.NewClient(cfg.OpenAI.APIKey, openai.WithBaseURL(cfg.OpenAI.Endpoint), openai.WithModel(cfg.OpenAI.Model), openai.WithHTTPClient(hc))
        out, err = c.Sentiment(ctx, ticker)
    case "crypto":
        c, _ := coingecko.NewClient(coingecko.WithBaseURL(cfg.CoinGecko.Endpoint), coingecko.WithAPIKey(cfg.CoinGecko.APIKey), coingecko.WithHTTPClient(hc))
        out, err = c.Prices(ctx, cfg.Markets.Crypto)
    case "markets":
        q, _ := finnhub.NewClient(cfg.Finnhub.APIKey, finnhub.WithBaseURL(cfg.Finnhub.Endpoint), finnhub.WithHTTPClient(hc))
        c, _ := coingecko.NewClient(coingecko.WithBaseURL(cfg.CoinGecko.Endpoint), coingecko.WithAPIKey(cfg.CoinGecko.APIKey), coingecko.WithHTTPClient(hc))
        var snap aggregate.Snapshot
        snap, err = aggregate.BuildSnapshot(ctx, q, c, cfg.Markets.Equities, cfg.Markets.Crypto)
        if err != nil {
            log.Printf("markets: %v", err)
            err = nil
        }
        out = snap
    default:
        log.Fatalf("unknown kind %q", kind)
    }
    if err != nil { log.Fatalf("%s: %v", kind, err) }

    b, _ := json.MarshalIndent(out, "", "  ")
    fmt.Println(string(b))
}

func getenv(key, def string) string { if v := os.Getenv(key); v != "" { return v }; return def }
