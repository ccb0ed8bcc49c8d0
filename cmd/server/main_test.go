package main

import (
    "encoding/json"
    "io"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/sirupsen/logrus"
    "github.com/sirupsen/logrus/hooks/test"

    "optiontracker/internal/config"
    "optiontracker/internal/httpx"
    "optiontracker/internal/proxy"
)

func TestNewDeps_WiresConfiguredEndpoints(t *testing.T) {
    var gotUA, gotToken string
    upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotUA = r.Header.Get("User-Agent")
        gotToken = r.URL.Query().Get("token")
        _, _ = io.WriteString(w, `{"c":417.2,"o":415,"h":418,"l":414,"pc":410,"t":1718000000}`)
    }))
    defer upstream.Close()

    cfg := config.Default()
    cfg.Finnhub.APIKey = "fh-key"
    cfg.Finnhub.Endpoint = upstream.URL
    deps, err := newDeps(cfg, httpx.New(2*time.Second))
    if err != nil { t.Fatalf("newDeps: %v", err) }

    log, _ := test.NewNullLogger()
    rr := httptest.NewRecorder()
    proxy.New(cfg, deps, log).Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/price/MSFT", nil))

    if rr.Code != http.StatusOK { t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String()) }
    var body map[string]any
    if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil { t.Fatalf("decode: %v", err) }
    if body["percentChange"] != "1.76" { t.Fatalf("unexpected body: %v", body) }
    if gotToken != "fh-key" { t.Fatalf("token not forwarded: %q", gotToken) }
    if gotUA != "option-tracker/1.0" { t.Fatalf("user agent not set: %q", gotUA) }
}

func TestWarnMissingKeys(t *testing.T) {
    log, hook := test.NewNullLogger()
    warnMissingKeys(log, config.Default())
    if n := len(hook.AllEntries()); n != 3 { t.Fatalf("want 3 warnings, got %d", n) }
    for _, e := range hook.AllEntries() {
        if e.Level != logrus.WarnLevel { t.Fatalf("unexpected level %v", e.Level) }
    }

    hook.Reset()
    cfg := config.Default()
    cfg.Finnhub.APIKey, cfg.Polygon.APIKey, cfg.OpenAI.APIKey = "a", "b", "c"
    warnMissingKeys(log, cfg)
    if n := len(hook.AllEntries()); n != 0 { t.Fatalf("want no warnings, got %d", n) }
}
