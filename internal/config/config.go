package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "strings"

    "github.com/caarlos0/env/v7"
    "github.com/sirupsen/logrus"
)

type Server struct {
    Port              string   `json:"port" env:"PORT"`
    RequestTimeoutSec int      `json:"request_timeout_sec" env:"REQUEST_TIMEOUT_SEC"`
    AllowedOrigins    []string `json:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

type Log struct {
    Level  string `json:"level" env:"LOG_LEVEL"`
    Format string `json:"format" env:"LOG_FORMAT"` // text | json
}

// Logger builds a logrus logger at the configured level and format.
func (l Log) Logger() (*logrus.Logger, error) {
    log := logrus.New()
    level, err := logrus.ParseLevel(l.Level)
    if err != nil {
        return log, fmt.Errorf("log level: %w", err)
    }
    log.SetLevel(level)
    switch l.Format {
    case "", "text":
        log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
    case "json":
        log.SetFormatter(&logrus.JSONFormatter{})
    default:
        return log, fmt.Errorf("log format %q: want text or json", l.Format)
    }
    return log, nil
}

type Finnhub struct {
    APIKey   string `json:"api_key" env:"FINNHUB_API_KEY"`
    Endpoint string `json:"endpoint" env:"FINNHUB_ENDPOINT"`
}

type Polygon struct {
    APIKey          string `json:"api_key" env:"POLYGON_API_KEY"`
    Endpoint        string `json:"endpoint" env:"POLYGON_ENDPOINT"`
    GlobalNewsLimit int    `json:"global_news_limit" env:"GLOBAL_NEWS_LIMIT"`
}

type OpenAI struct {
    APIKey   string `json:"api_key" env:"OPENAI_API_KEY"`
    Endpoint string `json:"endpoint" env:"OPENAI_ENDPOINT"`
    Model    string `json:"model" env:"OPENAI_MODEL"`
}

type CoinGecko struct {
    APIKey   string `json:"api_key" env:"COINGECKO_API_KEY"`
    Endpoint string `json:"endpoint" env:"COINGECKO_ENDPOINT"`
}

// Markets lists the symbols of the market snapshot and the crypto bar.
type Markets struct {
    Equities []string `json:"equities" env:"MARKET_EQUITIES" envSeparator:","`
    Crypto   []string `json:"crypto" env:"MARKET_CRYPTO" envSeparator:","`
}

// Tracker configures the client side: where the proxy lives, where positions
// are stored and which enrichments run on add/refresh.
type Tracker struct {
    APIURL         string `json:"api_url" env:"TRACKER_API_URL"`
    StorePath      string `json:"store_path" env:"TRACKER_STORE_PATH"`
    News           bool   `json:"news" env:"TRACKER_NEWS"`
    Sentiment      bool   `json:"sentiment" env:"TRACKER_SENTIMENT"`
    MaxConcurrency int    `json:"max_concurrency" env:"TRACKER_MAX_CONCURRENCY"`
}

type Config struct {
    Server    Server    `json:"server"`
    Log       Log       `json:"log"`
    Finnhub   Finnhub   `json:"finnhub"`
    Polygon   Polygon   `json:"polygon"`
    OpenAI    OpenAI    `json:"openai"`
    CoinGecko CoinGecko `json:"coingecko"`
    Markets   Markets   `json:"markets"`
    Tracker   Tracker   `json:"tracker"`
}

func Default() Config {
    return Config{
        Server: Server{
            Port:              "5050",
            RequestTimeoutSec: 10,
            AllowedOrigins:    []string{"http://localhost:3000"},
        },
        Log:     Log{Level: "info", Format: "text"},
        Finnhub: Finnhub{Endpoint: "https://finnhub.io/api/v1"},
        Polygon: Polygon{Endpoint: "https://api.polygon.io", GlobalNewsLimit: 10},
        OpenAI: OpenAI{
            Endpoint: "https://api.openai.com/v1",
            Model:    "gpt-4o-mini",
        },
        CoinGecko: CoinGecko{Endpoint: "https://api.coingecko.com/api/v3"},
        Markets: Markets{
            Equities: []string{"SPY", "QQQ", "DIA"},
            Crypto:   []string{"BTC", "ETH", "XRP"},
        },
        Tracker: Tracker{
            APIURL:         "http://localhost:5050",
            StorePath:      "data/positions.json",
            News:           true,
            Sentiment:      false,
            MaxConcurrency: 4,
        },
    }
}

// Load reads JSON config from path. If path is empty it falls back to
// ./config.json when present, otherwise defaults. Environment variables
// override the file so keys never have to live on disk.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    if err := env.Parse(&cfg); err != nil {
        return cfg, fmt.Errorf("parse env: %w", err)
    }
    normalize(&cfg)
    return cfg, nil
}

func normalize(cfg *Config) {
    if cfg.Server.RequestTimeoutSec <= 0 { cfg.Server.RequestTimeoutSec = 10 }
    if cfg.Polygon.GlobalNewsLimit <= 0 { cfg.Polygon.GlobalNewsLimit = 10 }
    if cfg.Tracker.MaxConcurrency <= 0 { cfg.Tracker.MaxConcurrency = 1 }
    cfg.Server.AllowedOrigins = trimAll(cfg.Server.AllowedOrigins, false)
    cfg.Markets.Equities = trimAll(cfg.Markets.Equities, true)
    cfg.Markets.Crypto = trimAll(cfg.Markets.Crypto, true)
}

func trimAll(in []string, upper bool) []string {
    out := make([]string, 0, len(in))
    for _, s := range in {
        s = strings.TrimSpace(s)
        if s == "" { continue }
        if upper { s = strings.ToUpper(s) }
        out = append(out, s)
    }
    return out
}
