package table

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/server table files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/refine/configs
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "tables", "default.yaml")
}
func (p Paths) ServerPath(server string) string {
	return filepath.Join(p.BaseDir, "tables", server+".yaml")
}

// Files lists the files that make up the table for server.
func (p Paths) Files(server string) []string {
	if server == "" {
		return []string{p.DefaultPath()}
	}
	return []string{p.DefaultPath(), p.ServerPath(server)}
}

// Loader reads YAML tables and merges default → server.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: server name, "" for default only
}

// NewLoader creates a table loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → server (server optional).
// It returns the merged RawConfig without validation.
func (l *Loader) LoadMerged(server string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[server]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default table: %w", err)
	}
	merged := defCfg
	if server != "" {
		srvCfg, err := readYAML(l.paths.ServerPath(server))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read %s table: %w", server, err)
		}
		merged = mergeRaw(defCfg, srvCfg)
	}

	l.mu.Lock()
	l.cache[server] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw overlays b on a. Entries merge field by field; a price map in b
// overrides single categories and leaves the others alone.
func mergeRaw(a, b RawConfig) RawConfig {
	out := RawConfig{
		Version:  a.Version,
		Notes:    a.Notes,
		Fallback: mergeEntry(a.Fallback, b.Fallback),
		Levels:   make(map[int]*RawEntry, len(a.Levels)+len(b.Levels)),
	}
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	for lvl, e := range a.Levels {
		out.Levels[lvl] = mergeEntry(e, nil)
	}
	for lvl, e := range b.Levels {
		out.Levels[lvl] = mergeEntry(out.Levels[lvl], e)
	}
	return out
}

// mergeEntry returns a fresh entry so merged configs never alias cached ones.
func mergeEntry(a, b *RawEntry) *RawEntry {
	if a == nil && b == nil {
		return nil
	}
	out := &RawEntry{}
	for _, src := range []*RawEntry{a, b} {
		if src == nil {
			continue
		}
		if src.Chance != nil {
			c := *src.Chance
			out.Chance = &c
		}
		if src.Protection != nil {
			p := *src.Protection
			out.Protection = &p
		}
		for k, v := range src.Price {
			if out.Price == nil {
				out.Price = make(map[string]int64, len(src.Price))
			}
			out.Price[k] = v
		}
	}
	return out
}
