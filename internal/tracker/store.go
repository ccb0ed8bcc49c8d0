package tracker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrTickerRequired  = errors.New("ticker is required")
	ErrIndexOutOfRange = errors.New("position index out of range")
)

// Persister loads and saves the whole collection.
type Persister interface {
	Load(ctx context.Context) ([]Position, error)
	Save(ctx context.Context, positions []Position) error
}

type Options struct {
	// MaxConcurrency bounds the enrichment calls of one Refresh. Values below
	// one mean one at a time.
	MaxConcurrency int
	Log            logrus.FieldLogger
	// NewID overrides uuid.NewString.
	NewID func() string
}

// Store is the ordered list of positions. Every mutation is written through
// to the Persister before it returns.
type Store struct {
	mu        sync.Mutex
	positions []Position
	persister Persister
	enricher  Enricher
	opts      Options
}

// NewStore loads the persisted positions once.
func NewStore(ctx context.Context, persister Persister, enricher Enricher, opts Options) (*Store, error) {
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	positions, err := persister.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading positions: %w", err)
	}
	if positions == nil {
		positions = []Position{}
	}
	return &Store{positions: positions, persister: persister, enricher: enricher, opts: opts}, nil
}

// List returns a copy of the positions in display order.
func (s *Store) List() []Position {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ClonePositions(s.positions)
}

// Add enriches the draft's ticker, then appends it. Enrichment failures leave
// the new Position with nil enrichment fields.
func (s *Store) Add(ctx context.Context, d Draft) (Position, error) {
	ticker := normalizeTicker(d.Ticker)
	if ticker == "" {
		return Position{}, ErrTickerRequired
	}
	p := Position{
		ID:        s.opts.NewID(),
		Ticker:    ticker,
		Strike:    d.Strike,
		Breakeven: d.Breakeven,
		Exp:       d.Exp,
		Premium:   d.Premium,
	}
	p = ApplyEnrichment(p, s.enricher.Enrich(ctx, ticker))

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(ClonePositions(s.positions), p)
	if err := s.save(ctx, next); err != nil {
		return Position{}, err
	}
	return p.Clone(), nil
}

// Refresh re-enriches every position. Calls run concurrently up to
// MaxConcurrency and are merged back by index, so the result does not depend
// on completion order.
func (s *Store) Refresh(ctx context.Context) ([]Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]Enrichment, len(s.positions))
	var g errgroup.Group
	g.SetLimit(s.opts.MaxConcurrency)
	for i, p := range s.positions {
		g.Go(func() error {
			results[i] = s.enricher.Enrich(ctx, p.Ticker)
			return nil
		})
	}
	_ = g.Wait()

	next := make([]Position, len(s.positions))
	for i, p := range s.positions {
		next[i] = ApplyEnrichment(p, results[i])
	}
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	s.opts.Log.WithField("positions", len(next)).Info("tracker - Refresh: done")
	return ClonePositions(next), nil
}

// Edit applies patch to the position at index without fetching anything.
func (s *Store) Edit(ctx context.Context, index int, patch Patch) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.positions) {
		return Position{}, fmt.Errorf("edit %d: %w", index, ErrIndexOutOfRange)
	}

	p := s.positions[index].Clone()
	if patch.Ticker != nil {
		t := normalizeTicker(*patch.Ticker)
		if t == "" {
			return Position{}, ErrTickerRequired
		}
		p.Ticker = t
	}
	if patch.Strike != nil {
		p.Strike = *patch.Strike
	}
	if patch.Breakeven != nil {
		p.Breakeven = *patch.Breakeven
	}
	if patch.Exp != nil {
		p.Exp = *patch.Exp
	}
	if patch.Premium != nil {
		p.Premium = *patch.Premium
	}

	next := ClonePositions(s.positions)
	next[index] = p
	if err := s.save(ctx, next); err != nil {
		return Position{}, err
	}
	return p.Clone(), nil
}

// Delete removes the position at index.
func (s *Store) Delete(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.positions) {
		return fmt.Errorf("delete %d: %w", index, ErrIndexOutOfRange)
	}
	next := make([]Position, 0, len(s.positions)-1)
	next = append(next, ClonePositions(s.positions[:index])...)
	next = append(next, ClonePositions(s.positions[index+1:])...)
	return s.save(ctx, next)
}

// save persists next and only then makes it current. Callers hold mu.
func (s *Store) save(ctx context.Context, next []Position) error {
	if err := s.persister.Save(ctx, next); err != nil {
		s.opts.Log.Errorf("tracker - save - Save: %v", err)
		return fmt.Errorf("saving positions: %w", err)
	}
	s.positions = next
	return nil
}
