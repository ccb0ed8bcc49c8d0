// Package file persists positions as a JSON snapshot on local disk.
package file

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"optiontracker/internal/tracker"
)

const DefaultPath = "data/positions.json"

// Store keeps the whole collection in one file and rewrites it on Save.
type Store struct {
	path string
	now  func() time.Time

	mu   sync.Mutex
	last []byte // encoded positions of the file as last read or written
}

type snapshot struct {
	UpdatedAt time.Time          `json:"updated_at"`
	Positions []tracker.Position `json:"positions"`
}

func New(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path, now: time.Now}
}

func (s *Store) Path() string { return s.path }

// Load reads the snapshot. A missing file is an empty collection.
func (s *Store) Load(ctx context.Context) ([]tracker.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.last = nil
			return []tracker.Position{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var snap snapshot
	if err := sonic.ConfigStd.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if snap.Positions == nil {
		snap.Positions = []tracker.Position{}
	}
	if s.last, err = sonic.ConfigStd.Marshal(snap.Positions); err != nil {
		return nil, fmt.Errorf("encode positions: %w", err)
	}
	return tracker.ClonePositions(snap.Positions), nil
}

// Save overwrites the file atomically. Saving the positions the file already
// holds leaves it untouched.
func (s *Store) Save(ctx context.Context, positions []tracker.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if positions == nil {
		positions = []tracker.Position{}
	}
	enc, err := sonic.ConfigStd.Marshal(positions)
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	if s.last != nil && bytes.Equal(enc, s.last) {
		if _, err := os.Stat(s.path); err == nil {
			return nil
		}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	b, err := sonic.ConfigStd.MarshalIndent(snapshot{UpdatedAt: s.now().UTC(), Positions: positions}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	s.last = enc
	return nil
}
