package main

import (
    "context"
    "errors"
    "flag"
    "fmt"
    "io"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/sirupsen/logrus"

    "optiontracker/internal/config"
    "optiontracker/internal/httpx"
    "optiontracker/internal/proxyclient"
    "optiontracker/internal/tracker"
    "optiontracker/internal/tracker/storage/file"
)

const usage = `usage: tracker [-config path] <command> [flags]

commands:
  add      -ticker T [-strike S] [-breakeven B] [-exp E] [-premium P]
  list
  refresh
  edit     -i N [-ticker T] [-strike S] [-breakeven B] [-exp E] [-premium P]
  delete   -i N
  markets  market snapshot and crypto bar
  news     latest global headlines
`

func main() {
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

type app struct {
    cfg config.Config
    log logrus.FieldLogger
    api *proxyclient.Client
    out io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
    fs := flag.NewFlagSet("tracker", flag.ContinueOnError)
    fs.SetOutput(stderr)
    fs.Usage = func() { fmt.Fprint(stderr, usage) }
    configPath := fs.String("config", os.Getenv("CONFIG_FILE"), "path to config.json (optional)")
    if err := fs.Parse(args); err != nil { return 2 }
    if fs.NArg() == 0 {
        fs.Usage()
        return 2
    }

    cfg, err := config.Load(*configPath)
    if err != nil {
        fmt.Fprintf(stderr, "config: %v\n", err)
        return 1
    }
    log, err := cfg.Log.Logger()
    if err != nil {
        fmt.Fprintf(stderr, "config: %v\n", err)
        return 1
    }
    log.SetOutput(stderr)

    api, err := proxyclient.New(cfg.Tracker.APIURL,
        proxyclient.WithHTTPClient(httpx.New(time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)))
    if err != nil {
        fmt.Fprintf(stderr, "proxy client: %v\n", err)
        return 1
    }
    a := &app{cfg: cfg, log: log, api: api, out: stdout}

    cmd, rest := fs.Arg(0), fs.Args()[1:]
    switch cmd {
    case "markets":
        err = a.markets(ctx)
    case "news":
        err = a.news(ctx)
    case "add", "list", "refresh", "edit", "delete":
        err = a.positions(ctx, cmd, rest, stderr)
    default:
        fmt.Fprintf(stderr, "unknown command %q\n", cmd)
        fs.Usage()
        return 2
    }
    if errors.Is(err, flag.ErrHelp) { return 2 }
    if err != nil {
        fmt.Fprintf(stderr, "%s: %v\n", cmd, err)
        return 1
    }
    return 0
}

func (a *app) store(ctx context.Context) (*tracker.Store, error) {
    enricher := &tracker.ProxyEnricher{
        API:       a.api,
        News:      a.cfg.Tracker.News,
        Sentiment: a.cfg.Tracker.Sentiment,
        Log:       a.log,
    }
    return tracker.NewStore(ctx, file.New(a.cfg.Tracker.StorePath), enricher, tracker.Options{
        MaxConcurrency: a.cfg.Tracker.MaxConcurrency,
        Log:            a.log,
    })
}

func (a *app) positions(ctx context.Context, cmd string, args []string, stderr io.Writer) error {
    fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
    fs.SetOutput(stderr)
    index := fs.Int("i", -1, "position index as shown by list")
    f := fieldFlags(fs)
    if err := fs.Parse(args); err != nil { return err }

    s, err := a.store(ctx)
    if err != nil { return err }

    switch cmd {
    case "add":
        p, err := s.Add(ctx, f.draft())
        if err != nil { return err }
        return tracker.RenderCard(a.out, len(s.List())-1, p)
    case "list":
        return a.render(s.List())
    case "refresh":
        ps, err := s.Refresh(ctx)
        if err != nil { return err }
        if err := a.render(ps); err != nil { return err }
        _, err = fmt.Fprintf(a.out, "refreshed %d position(s)\n", len(ps))
        return err
    case "edit":
        p, err := s.Edit(ctx, *index, f.patch(fs))
        if err != nil { return err }
        return tracker.RenderCard(a.out, *index, p)
    case "delete":
        if err := s.Delete(ctx, *index); err != nil { return err }
        _, err := fmt.Fprintf(a.out, "deleted position %d\n", *index)
        return err
    }
    return nil
}

func (a *app) render(ps []tracker.Position) error {
    if len(ps) == 0 {
        _, err := fmt.Fprintln(a.out, "no positions")
        return err
    }
    for i, p := range ps {
        if err := tracker.RenderCard(a.out, i, p); err != nil { return err }
    }
    return nil
}

func (a *app) markets(ctx context.Context) error {
    symbols := append(append([]string{}, a.cfg.Markets.Equities...), a.cfg.Markets.Crypto...)
    snap, err := a.api.Markets(ctx)
    if err != nil { return err }
    if err := tracker.RenderMarkets(a.out, symbols, snap); err != nil { return err }

    bar, err := a.api.MarketBar(ctx)
    if err != nil {
        // the snapshot already printed; the bar is optional
        a.log.Warnf("tracker - markets - MarketBar: %v", err)
        return nil
    }
    return tracker.RenderMarketBar(a.out, bar)
}

func (a *app) news(ctx context.Context) error {
    articles, err := a.api.GlobalNews(ctx)
    if err != nil { return err }
    if len(articles) == 0 {
        _, err := fmt.Fprintln(a.out, "No data available")
        return err
    }
    for _, art := range articles {
        if _, err := fmt.Fprintf(a.out, "%s (%s) %s\n", art.Title, art.Source, art.URL); err != nil { return err }
    }
    return nil
}

type fields struct {
    ticker, strike, breakeven, exp, premium *string
}

func fieldFlags(fs *flag.FlagSet) fields {
    return fields{
        ticker:    fs.String("ticker", "", "underlying ticker"),
        strike:    fs.String("strike", "", "strike price"),
        breakeven: fs.String("breakeven", "", "breakeven price"),
        exp:       fs.String("exp", "", "expiration label"),
        premium:   fs.String("premium", "", "premium collected"),
    }
}

func (f fields) draft() tracker.Draft {
    return tracker.Draft{Ticker: *f.ticker, Strike: *f.strike, Breakeven: *f.breakeven, Exp: *f.exp, Premium: *f.premium}
}

// patch only carries flags given on the command line, so "-strike=" clears
// a field while an absent flag keeps it.
func (f fields) patch(fs *flag.FlagSet) tracker.Patch {
    var p tracker.Patch
    fs.Visit(func(fl *flag.Flag) {
        v := fl.Value.String()
        switch fl.Name {
        case "ticker":
            p.Ticker = &v
        case "strike":
            p.Strike = &v
        case "breakeven":
            p.Breakeven = &v
        case "exp":
            p.Exp = &v
        case "premium":
            p.Premium = &v
        }
    })
    return p
}
