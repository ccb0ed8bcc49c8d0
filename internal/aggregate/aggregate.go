package aggregate

import (
    "context"
    "errors"
    "fmt"
    "strings"

    "optiontracker/internal/provider"
)

// Snapshot maps each requested symbol to its latest price. A nil value means
// the upstream call that should have filled it failed or had no data.
type Snapshot map[string]*float64

// Filled counts non-nil entries.
func (s Snapshot) Filled() int {
    n := 0
    for _, v := range s {
        if v != nil { n++ }
    }
    return n
}

// BarEntry is one cell of the crypto market bar.
type BarEntry struct {
    Name   string  `json:"name"`
    Price  float64 `json:"price"`
    Change float64 `json:"change"`
}

// ErrSnapshotUnavailable is returned when every entry of a snapshot failed.
var ErrSnapshotUnavailable = errors.New("market snapshot unavailable")

// BuildSnapshot queries each equity symbol in turn through quotes, then all
// crypto symbols through one crypto call, and merges both into one map.
//
// Failures are isolated: a failed call nulls only the entries it would have
// filled. The joined errors are returned next to the partial snapshot. When
// nothing could be filled and at least one call failed, the error wraps
// ErrSnapshotUnavailable and the caller should treat the snapshot as failed.
func BuildSnapshot(ctx context.Context, quotes provider.QuoteFetcher, crypto provider.CryptoFetcher, equities, cryptos []string) (Snapshot, error) {
    snap := make(Snapshot, len(equities)+len(cryptos))
    var errs []error

    for _, sym := range equities {
        sym = strings.ToUpper(strings.TrimSpace(sym))
        if sym == "" { continue }
        snap[sym] = nil
        q, err := quotes.Quote(ctx, sym)
        if err != nil {
            errs = append(errs, fmt.Errorf("%s: %w", sym, err))
            continue
        }
        v := q.Close
        snap[sym] = &v
    }

    wanted := make([]string, 0, len(cryptos))
    for _, sym := range cryptos {
        sym = strings.ToUpper(strings.TrimSpace(sym))
        if sym == "" { continue }
        snap[sym] = nil
        wanted = append(wanted, sym)
    }
    if len(wanted) > 0 {
        prices, err := crypto.Prices(ctx, wanted)
        if err != nil {
            errs = append(errs, fmt.Errorf("%s: %w", strings.Join(wanted, ","), err))
        }
        for _, p := range prices {
            if _, ok := snap[p.Symbol]; !ok { continue }
            v := p.Price
            snap[p.Symbol] = &v
        }
    }

    if len(errs) == 0 {
        return snap, nil
    }
    err := errors.Join(errs...)
    if snap.Filled() == 0 {
        return snap, fmt.Errorf("%w: %w", ErrSnapshotUnavailable, err)
    }
    return snap, err
}

// MarketBar returns one entry per crypto symbol the upstream priced, in
// request order. It is a single upstream call, so any failure fails the bar.
func MarketBar(ctx context.Context, crypto provider.CryptoFetcher, symbols []string) ([]BarEntry, error) {
    prices, err := crypto.Prices(ctx, symbols)
    if err != nil {
        return nil, err
    }
    out := make([]BarEntry, 0, len(prices))
    for _, p := range prices {
        out = append(out, BarEntry{Name: p.Symbol, Price: p.Price, Change: p.Change24h})
    }
    return out, nil
}
