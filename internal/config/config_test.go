package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromPath_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
session_id: exp-7
backend: sqlite
storage_path: /tmp/sessions.db
max_rounds: 3
max_matches: 4
log_level: debug
`)
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	want := Default()
	want.SessionID = "exp-7"
	want.Backend = "sqlite"
	want.StoragePath = "/tmp/sessions.db"
	want.MaxRounds = 3
	want.MaxMatches = 4
	want.LogLevel = "debug"
	if diff := cmp.Diff(&want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_JSONDetectedByContent(t *testing.T) {
	cfg, err := Load([]byte(`{"backend": "file", "max_rounds": 2}`), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != "file" || cfg.MaxRounds != 2 {
		t.Fatalf("json not detected: %+v", cfg)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load([]byte("max_rounds: 1\n"), ".yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.MaxRounds != 1 {
		t.Errorf("max_rounds: %d", cfg.MaxRounds)
	}
	if cfg.Backend != def.Backend || cfg.MaxMatches != def.MaxMatches ||
		cfg.CallTimeoutSec != def.CallTimeoutSec || cfg.LogLevel != def.LogLevel {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	if _, err := Load([]byte("backend: redis\n"), ".yaml"); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestOpenStore_FileBackend(t *testing.T) {
	cfg := Default()
	cfg.StoragePath = t.TempDir()

	store, err := cfg.OpenStore("s1")
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	env, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if env.SessionID != "s1" {
		t.Fatalf("session id: %q", env.SessionID)
	}
}
