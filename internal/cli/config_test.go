package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	// Run in a directory with no mapforge.toml.
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Grid.CellWidth != 120 {
		t.Errorf("grid defaults missing: %+v", cfg.Grid)
	}
	if cfg.Force.Iterations != 400 {
		t.Errorf("force defaults missing: %+v", cfg.Force)
	}
	if cfg.Server.Addr() != "127.0.0.1:8420" {
		t.Errorf("server addr = %q", cfg.Server.Addr())
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("store backend = %q, want file", cfg.Store.Backend)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapforge.toml")
	content := `
world_dir = "/srv/worlds"
theme = "dark"

[grid]
cell_width = 200.0
cell_height = 160.0

[server]
host = "0.0.0.0"
port = 9000

[store]
backend = "redis"

[store.redis]
addr = "cache.internal:6379"
key_prefix = "maps:"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.WorldDir != "/srv/worlds" || cfg.Theme != "dark" {
		t.Errorf("top-level = %q %q", cfg.WorldDir, cfg.Theme)
	}
	if cfg.Grid.CellWidth != 200 || cfg.Grid.CellHeight != 160 {
		t.Errorf("grid = %+v", cfg.Grid)
	}
	// Untouched sections keep their defaults.
	if cfg.Force.Iterations != 400 {
		t.Errorf("force defaults lost: %+v", cfg.Force)
	}
	if cfg.Server.Addr() != "0.0.0.0:9000" {
		t.Errorf("server addr = %q", cfg.Server.Addr())
	}
	if cfg.Store.Backend != "redis" || cfg.Store.Redis.Addr != "cache.internal:6379" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Store.Redis.KeyPrefix != "maps:" {
		t.Errorf("key prefix = %q", cfg.Store.Redis.KeyPrefix)
	}
}

func TestLoadConfigMissingExplicitPath(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestOpenStoreRejectsUnknownBackend(t *testing.T) {
	_, err := StoreConfig{Backend: "dynamo"}.OpenStore(t.Context())
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestOpenStoreFileBackend(t *testing.T) {
	dir := t.TempDir()
	st, err := StoreConfig{Backend: "file", Dir: dir}.OpenStore(t.Context())
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}
	defer st.Close()

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("store dir missing: %v", err)
	}
}
