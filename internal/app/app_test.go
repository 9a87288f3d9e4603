package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(wd) }()

	a, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer a.Close()
	if a.Config.Python != "python3" {
		t.Fatalf("config = %+v", a.Config)
	}
	if a.Registry == nil || a.Engine == nil {
		t.Fatal("components not wired")
	}
	if a.History == nil {
		t.Fatal("history enabled by default but store is nil")
	}
}

func TestLoadFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "deck.yaml")
	body := "scripts_dir: " + filepath.Join(dir, "scripts") + "\n" +
		"history:\n  enabled: false\n" +
		"execution:\n  default_timeout: 5s\n"
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	a, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer a.Close()
	if a.History != nil {
		t.Fatal("history store opened despite enabled: false")
	}
	if a.Config.Execution.DefaultTimeout.Std() != 5*time.Second {
		t.Fatalf("timeout = %s", a.Config.Execution.DefaultTimeout.Std())
	}
}

func TestLoadBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "deck.yaml")
	if err := os.WriteFile(cfgPath, []byte("log_level: shouty\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Fatal("expected config error")
	}
}
