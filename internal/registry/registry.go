// Package registry discovers scripts in the configured directory and keeps
// an immutable snapshot of what it found. Discovery is flat: only top-level
// .py files count, names starting with "__" or "." are skipped, and
// .gitignore patterns in the directory are honored.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ZacheryGlass/scriptdeck/internal/analyzer"
)

// Descriptor is one discovered script.
type Descriptor struct {
	// Name is the file name within the scripts directory, e.g. "backup.py".
	Name string `json:"name"`

	// Info is the analyzer's classification. Info.Err is set for scripts
	// that cannot be executed; they stay listed so the problem is visible.
	Info analyzer.ScriptInfo `json:"info"`

	// Disabled marks scripts excluded by configuration.
	Disabled bool `json:"disabled,omitempty"`
}

// Options configures a Registry.
type Options struct {
	// Dir is the scripts directory. Created if missing.
	Dir string

	// Disabled lists file names excluded from execution.
	Disabled []string

	Logger *slog.Logger
}

// Registry scans for scripts on Refresh and serves the latest snapshot.
// Safe for concurrent use.
type Registry struct {
	dir      string
	disabled map[string]struct{}
	log      *slog.Logger

	mu   sync.RWMutex
	snap Snapshot
}

func New(opts Options) *Registry {
	disabled := make(map[string]struct{}, len(opts.Disabled))
	for _, name := range opts.Disabled {
		disabled[name] = struct{}{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Registry{dir: opts.Dir, disabled: disabled, log: log}
}

// Dir returns the scripts directory.
func (r *Registry) Dir() string { return r.dir }

// Refresh rescans the directory, analyzes every script found and replaces
// the current snapshot.
func (r *Registry) Refresh(ctx context.Context) (Snapshot, error) {
	names, err := r.listScripts()
	if err != nil {
		return Snapshot{}, err
	}

	scripts := make([]Descriptor, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return Snapshot{}, err
		}
		info := analyzer.Analyze(filepath.Join(r.dir, name))
		_, disabled := r.disabled[name]
		if info.Err != "" {
			r.log.Warn("script not executable", "script", name, "reason", info.Err)
		}
		scripts = append(scripts, Descriptor{Name: name, Info: info, Disabled: disabled})
	}

	snap := newSnapshot(scripts)
	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()
	r.log.Debug("registry refreshed", "dir", r.dir, "scripts", len(scripts))
	return snap, nil
}

// Snapshot returns the result of the most recent Refresh. The zero
// snapshot is returned before the first Refresh.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

func (r *Registry) listScripts() ([]string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return nil, fmt.Errorf("scripts directory: %w", err)
	}
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("scripts directory: %w", err)
	}
	ignored := ignoreMatcher(r.dir)

	var names []string
	for _, ent := range entries {
		name := ent.Name()
		if ent.IsDir() {
			continue
		}
		if !strings.HasSuffix(name, ".py") {
			continue
		}
		if strings.HasPrefix(name, "__") || strings.HasPrefix(name, ".") {
			continue
		}
		if ignored(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Snapshot is an immutable view of the scripts found by one Refresh.
type Snapshot struct {
	scripts []Descriptor
	byName  map[string]int
}

func newSnapshot(scripts []Descriptor) Snapshot {
	byName := make(map[string]int, len(scripts))
	for i, d := range scripts {
		byName[d.Name] = i
	}
	return Snapshot{scripts: scripts, byName: byName}
}

// All returns every discovered script, disabled and broken ones included,
// sorted by name.
func (s Snapshot) All() []Descriptor {
	out := make([]Descriptor, len(s.scripts))
	copy(out, s.scripts)
	return out
}

// Available returns only the scripts that can actually be run.
func (s Snapshot) Available() []Descriptor {
	out := make([]Descriptor, 0, len(s.scripts))
	for _, d := range s.scripts {
		if d.Disabled || !d.Info.Executable() {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Lookup finds a script by file name; the ".py" suffix may be omitted.
func (s Snapshot) Lookup(name string) (Descriptor, bool) {
	if i, ok := s.byName[name]; ok {
		return s.scripts[i], true
	}
	if !strings.HasSuffix(name, ".py") {
		if i, ok := s.byName[name+".py"]; ok {
			return s.scripts[i], true
		}
	}
	return Descriptor{}, false
}

// Len reports the number of discovered scripts.
func (s Snapshot) Len() int { return len(s.scripts) }
