package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZacheryGlass/scriptdeck/internal/analyzer"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestRefreshDiscoversTopLevelScripts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "backup_files.py", "def main():\n    pass\n")
	writeFile(t, dir, "notes.txt", "not a script")
	writeFile(t, dir, "__init__.py", "")
	writeFile(t, dir, ".hidden.py", "print('x')\n")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "nested"), "deep.py", "print('x')\n")

	r := New(Options{Dir: dir})
	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if snap.Len() != 1 {
		t.Fatalf("discovered %d scripts, want 1: %+v", snap.Len(), snap.All())
	}
	d, ok := snap.Lookup("backup_files.py")
	if !ok {
		t.Fatal("backup_files.py not found")
	}
	if d.Info.DisplayName != "Backup Files" {
		t.Fatalf("display name = %q", d.Info.DisplayName)
	}
	if d.Info.Strategy != analyzer.StrategyEntryCall {
		t.Fatalf("strategy = %s", d.Info.Strategy)
	}
}

func TestRefreshSortsByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zeta.py", "print('z')\n")
	writeFile(t, dir, "alpha.py", "print('a')\n")
	r := New(Options{Dir: dir})
	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	all := snap.All()
	if len(all) != 2 || all[0].Name != "alpha.py" || all[1].Name != "zeta.py" {
		t.Fatalf("order = %v", all)
	}
}

func TestDisabledScriptsListedButNotAvailable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "risky.py", "print('x')\n")
	writeFile(t, dir, "safe.py", "print('x')\n")
	r := New(Options{Dir: dir, Disabled: []string{"risky.py"}})
	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Len() != 2 {
		t.Fatalf("len = %d", snap.Len())
	}
	avail := snap.Available()
	if len(avail) != 1 || avail[0].Name != "safe.py" {
		t.Fatalf("available = %v", avail)
	}
	d, _ := snap.Lookup("risky.py")
	if !d.Disabled {
		t.Fatal("risky.py not marked disabled")
	}
}

func TestBrokenScriptListedButNotAvailable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "broken.py", "def main(:\n")
	r := New(Options{Dir: dir})
	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	d, ok := snap.Lookup("broken.py")
	if !ok {
		t.Fatal("broken.py not listed")
	}
	if d.Info.Executable() {
		t.Fatal("broken script reported executable")
	}
	if len(snap.Available()) != 0 {
		t.Fatalf("available = %v", snap.Available())
	}
}

func TestGitignoreRespected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.py", "print('x')\n")
	writeFile(t, dir, "scratch.py", "print('x')\n")
	writeFile(t, dir, ".gitignore", "scratch.py\n# comment\n")
	r := New(Options{Dir: dir})
	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := snap.Lookup("scratch.py"); ok {
		t.Fatal("ignored script was listed")
	}
	if _, ok := snap.Lookup("keep.py"); !ok {
		t.Fatal("keep.py missing")
	}
}

func TestLookupWithoutSuffix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "toggle_audio.py", "print('x')\n")
	r := New(Options{Dir: dir})
	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := snap.Lookup("toggle_audio"); !ok {
		t.Fatal("lookup without .py failed")
	}
}

func TestRefreshCreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does-not-exist-yet")
	r := New(Options{Dir: dir})
	snap, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if snap.Len() != 0 {
		t.Fatalf("len = %d", snap.Len())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("directory not created: %v", err)
	}
}

func TestSnapshotBeforeRefreshIsEmpty(t *testing.T) {
	r := New(Options{Dir: t.TempDir()})
	if r.Snapshot().Len() != 0 {
		t.Fatal("zero snapshot not empty")
	}
}
