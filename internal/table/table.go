package table

import (
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/xtding233/refine-backend/internal/refine"
)

var ErrNoFallback = errors.New("level table has no fallback entry")

// FallbackLevel is the key the fallback entry is reported under.
const FallbackLevel = -1

// Table is an immutable, validated level table.
type Table struct {
	version  string
	fallback refine.LevelEntry
	levels   map[int]refine.LevelEntry
}

// Build validates raw and converts it into a Table.
func Build(raw RawConfig) (*Table, error) {
	if raw.Fallback == nil {
		return nil, ErrNoFallback
	}
	if err := ValidateRaw(raw); err != nil {
		return nil, err
	}
	t := &Table{
		version:  raw.Version,
		fallback: toEntry(raw.Fallback),
		levels:   make(map[int]refine.LevelEntry, len(raw.Levels)),
	}
	for lvl, e := range raw.Levels {
		t.levels[lvl] = toEntry(e)
	}
	return t, nil
}

func toEntry(e *RawEntry) refine.LevelEntry {
	out := refine.LevelEntry{SuccessProbability: *e.Chance}
	if e.Protection != nil {
		out.ProtectionCount = *e.Protection
	}
	for k, v := range e.Price {
		if c, err := refine.ParseCategory(k); err == nil {
			out.Price[c] = v
		}
	}
	return out
}

// EntryFor returns the entry for level, or the fallback entry when the level
// has none.
func (t *Table) EntryFor(level int) refine.LevelEntry {
	if e, ok := t.levels[level]; ok {
		return e
	}
	return t.fallback
}

// Has reports whether level has an explicit entry.
func (t *Table) Has(level int) bool {
	_, ok := t.levels[level]
	return ok
}

// Levels returns the explicit levels in ascending order.
func (t *Table) Levels() []int {
	out := make([]int, 0, len(t.levels))
	for lvl := range t.levels {
		out = append(out, lvl)
	}
	sort.Ints(out)
	return out
}

func (t *Table) Fallback() refine.LevelEntry { return t.fallback }

func (t *Table) Version() string { return t.version }

// Store serves the current table and swaps it on reload. Readers holding a
// *Table keep a consistent snapshot while a reload happens.
type Store struct {
	loader *Loader
	server string
	cur    atomic.Pointer[Table]
}

// NewStore loads the table for server and fails if it does not validate.
func NewStore(loader *Loader, server string) (*Store, error) {
	s := &Store{loader: loader, server: server}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the active table snapshot.
func (s *Store) Current() *Table { return s.cur.Load() }

// EntryFor resolves against the active table.
func (s *Store) EntryFor(level int) refine.LevelEntry { return s.Current().EntryFor(level) }

// Files lists the files backing this store, for watching.
func (s *Store) Files() []string { return s.loader.Paths().Files(s.server) }

// Reload re-reads the table files. On error the previous table stays active.
func (s *Store) Reload() error {
	s.loader.Invalidate()
	raw, err := s.loader.LoadMerged(s.server)
	if err != nil {
		return err
	}
	t, err := Build(raw)
	if err != nil {
		return fmt.Errorf("table %q: %w", s.server, err)
	}
	s.cur.Store(t)
	return nil
}
