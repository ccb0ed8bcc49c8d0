package tracker_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"optiontracker/internal/provider"
	"optiontracker/internal/tracker"
	"optiontracker/internal/tracker/storage/file"
	"optiontracker/internal/tracker/storage/memory"
)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newStore(t *testing.T, api *fakeAPI, p tracker.Persister) *tracker.Store {
	t.Helper()
	log, _ := test.NewNullLogger()
	s, err := tracker.NewStore(t.Context(), p, &tracker.ProxyEnricher{API: api, News: true, Log: log}, tracker.Options{
		MaxConcurrency: 4,
		Log:            log,
		NewID:          sequentialIDs(),
	})
	require.NoError(t, err)
	return s
}

var aaplDraft = tracker.Draft{Ticker: "aapl", Strike: "150", Breakeven: "148", Exp: "11/21", Premium: "2.10"}

func TestAdd_WithoutNetwork(t *testing.T) {
	api := newFakeAPI()
	api.setDown(true)
	mem := memory.New()
	s := newStore(t, api, mem)

	p, err := s.Add(t.Context(), aaplDraft)
	require.NoError(t, err)

	require.Equal(t, tracker.Position{
		ID: "id-1", Ticker: "AAPL", Strike: "150", Breakeven: "148", Exp: "11/21", Premium: "2.10",
	}, p)
	require.Equal(t, 1, mem.Saves())

	stored, err := mem.Load(t.Context())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	b, err := json.Marshal(stored[0])
	require.NoError(t, err)
	require.JSONEq(t, `{
		"id":"id-1","ticker":"AAPL","strike":"150","breakeven":"148","exp":"11/21","premium":"2.10",
		"livePrice":null,"percentChange":null,"article":null,"sentiment":null
	}`, string(b))
}

func TestAdd_Enriches(t *testing.T) {
	api := newFakeAPI()
	s := newStore(t, api, memory.New())

	p, err := s.Add(t.Context(), aaplDraft)
	require.NoError(t, err)
	require.Equal(t, 152.3, *p.LivePrice)
	require.Equal(t, "1.53", p.PercentChange.String())
	require.Equal(t, "Apple ships", p.Article.Title)
	require.Nil(t, p.Sentiment)
}

func TestAdd_TickerRequired(t *testing.T) {
	api := newFakeAPI()
	mem := memory.New()
	s := newStore(t, api, mem)

	_, err := s.Add(t.Context(), tracker.Draft{Ticker: "   ", Strike: "150"})
	require.ErrorIs(t, err, tracker.ErrTickerRequired)
	require.Empty(t, s.List())
	require.Equal(t, 0, mem.Saves())
	require.Empty(t, api.calls, "no enrichment without a ticker")
}

func TestAdd_DuplicateTickersAllowed(t *testing.T) {
	s := newStore(t, newFakeAPI(), memory.New())

	_, err := s.Add(t.Context(), aaplDraft)
	require.NoError(t, err)
	_, err = s.Add(t.Context(), aaplDraft)
	require.NoError(t, err)

	list := s.List()
	require.Len(t, list, 2)
	require.NotEqual(t, list[0].ID, list[1].ID)
}

func TestAdd_SaveFailureKeepsState(t *testing.T) {
	mem := memory.New()
	s := newStore(t, newFakeAPI(), mem)
	mem.Err = errors.New("disk full")

	_, err := s.Add(t.Context(), aaplDraft)
	require.ErrorContains(t, err, "disk full")
	require.Empty(t, s.List())
}

func TestRefresh_TwiceIsByteIdentical(t *testing.T) {
	api := newFakeAPI()
	path := filepath.Join(t.TempDir(), "positions.json")
	s := newStore(t, api, file.New(path))

	for _, d := range []tracker.Draft{aaplDraft, {Ticker: "MSFT", Strike: "400"}, {Ticker: "ZZZZ"}} {
		_, err := s.Add(t.Context(), d)
		require.NoError(t, err)
	}

	first, err := s.Refresh(t.Context())
	require.NoError(t, err)
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)

	second, err := s.Refresh(t.Context())
	require.NoError(t, err)
	again, err := os.ReadFile(path)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
	require.Equal(t, string(onDisk), string(again))
}

func TestRefresh_MergesByIndex(t *testing.T) {
	api := newFakeAPI()
	s := newStore(t, api, memory.New())
	tickers := []string{"MSFT", "AAPL", "ZZZZ", "MSFT", "AAPL", "MSFT"}
	for _, tk := range tickers {
		_, err := s.Add(t.Context(), tracker.Draft{Ticker: tk})
		require.NoError(t, err)
	}

	api.closes["MSFT"] = 420
	got, err := s.Refresh(t.Context())
	require.NoError(t, err)

	require.Len(t, got, len(tickers))
	for i, p := range got {
		require.Equal(t, tickers[i], p.Ticker)
		require.Equal(t, fmt.Sprintf("id-%d", i+1), p.ID)
		switch p.Ticker {
		case "MSFT":
			require.Equal(t, 420.0, *p.LivePrice)
		case "AAPL":
			require.Equal(t, 152.3, *p.LivePrice)
		default:
			require.Nil(t, p.LivePrice)
		}
	}
	require.Equal(t, got, s.List())
}

func TestRefresh_FailureKeepsPriorValues(t *testing.T) {
	api := newFakeAPI()
	s := newStore(t, api, memory.New())
	_, err := s.Add(t.Context(), aaplDraft)
	require.NoError(t, err)

	api.setDown(true)
	got, err := s.Refresh(t.Context())
	require.NoError(t, err)
	require.Equal(t, 152.3, *got[0].LivePrice)
	require.Equal(t, "Apple ships", got[0].Article.Title)
}

func TestRefresh_Empty(t *testing.T) {
	api := newFakeAPI()
	s := newStore(t, api, memory.New())

	got, err := s.Refresh(t.Context())
	require.NoError(t, err)
	require.Empty(t, got)
	require.Empty(t, api.calls)
}

func TestEdit(t *testing.T) {
	api := newFakeAPI()
	mem := memory.New()
	s := newStore(t, api, mem)
	_, err := s.Add(t.Context(), aaplDraft)
	require.NoError(t, err)
	priceCalls := api.count("price:")

	got, err := s.Edit(t.Context(), 0, tracker.Patch{Strike: ptr("145"), Exp: ptr("12/19")})
	require.NoError(t, err)

	require.Equal(t, "145", got.Strike)
	require.Equal(t, "12/19", got.Exp)
	require.Equal(t, "148", got.Breakeven)
	require.Equal(t, 152.3, *got.LivePrice, "edit keeps enrichment")
	require.Equal(t, priceCalls, api.count("price:"), "edit must not fetch")
	require.Equal(t, 2, mem.Saves())
	require.Equal(t, got, s.List()[0])
}

func TestEdit_TickerIsNormalized(t *testing.T) {
	s := newStore(t, newFakeAPI(), memory.New())
	_, err := s.Add(t.Context(), aaplDraft)
	require.NoError(t, err)

	got, err := s.Edit(t.Context(), 0, tracker.Patch{Ticker: ptr(" msft ")})
	require.NoError(t, err)
	require.Equal(t, "MSFT", got.Ticker)

	_, err = s.Edit(t.Context(), 0, tracker.Patch{Ticker: ptr("")})
	require.ErrorIs(t, err, tracker.ErrTickerRequired)
}

func TestDelete(t *testing.T) {
	mem := memory.New()
	s := newStore(t, newFakeAPI(), mem)
	for _, tk := range []string{"AAPL", "MSFT", "SPY"} {
		_, err := s.Add(t.Context(), tracker.Draft{Ticker: tk})
		require.NoError(t, err)
	}

	require.NoError(t, s.Delete(t.Context(), 1))

	list := s.List()
	require.Len(t, list, 2)
	require.Equal(t, "AAPL", list[0].Ticker)
	require.Equal(t, "SPY", list[1].Ticker)

	stored, err := mem.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, list, stored)
}

func TestIndexOutOfRange(t *testing.T) {
	s := newStore(t, newFakeAPI(), memory.New())
	_, err := s.Add(t.Context(), aaplDraft)
	require.NoError(t, err)

	for _, i := range []int{-1, 1, 7} {
		_, err := s.Edit(t.Context(), i, tracker.Patch{Strike: ptr("1")})
		require.ErrorIs(t, err, tracker.ErrIndexOutOfRange)
		require.ErrorIs(t, s.Delete(t.Context(), i), tracker.ErrIndexOutOfRange)
	}
	require.Len(t, s.List(), 1)
}

func TestNewStore_LoadsPersisted(t *testing.T) {
	seed := tracker.Position{ID: "seed", Ticker: "AAPL", Strike: "150", Article: &provider.Article{Title: "kept"}}
	s := newStore(t, newFakeAPI(), memory.New(seed))

	list := s.List()
	require.Equal(t, []tracker.Position{seed}, list)

	list[0].Article.Title = "mutated"
	require.Equal(t, "kept", s.List()[0].Article.Title)
}

type brokenPersister struct{}

func (brokenPersister) Load(context.Context) ([]tracker.Position, error) {
	return nil, errors.New("corrupt")
}
func (brokenPersister) Save(context.Context, []tracker.Position) error { return nil }

func TestNewStore_LoadError(t *testing.T) {
	_, err := tracker.NewStore(t.Context(), brokenPersister{}, &tracker.ProxyEnricher{API: newFakeAPI()}, tracker.Options{})
	require.ErrorContains(t, err, "corrupt")
}
