package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gridfall.toml")
	body := `
[server]
name = "duel-arena"

[sim]
tick_rate = "50ms"
workers = 2

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Name != "duel-arena" {
		t.Errorf("server name = %q, want duel-arena", cfg.Server.Name)
	}
	if cfg.Sim.TickRate != 50*time.Millisecond {
		t.Errorf("tick rate = %v, want 50ms", cfg.Sim.TickRate)
	}
	if cfg.Sim.Workers != 2 {
		t.Errorf("workers = %d, want 2", cfg.Sim.Workers)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("logging format = %q, want json", cfg.Logging.Format)
	}
	// Untouched sections keep their defaults.
	if cfg.Sim.IntentQueueSize != 128 {
		t.Errorf("intent queue size = %d, want default 128", cfg.Sim.IntentQueueSize)
	}
	if cfg.Paths.Data != "data" {
		t.Errorf("data path = %q, want default data", cfg.Paths.Data)
	}
	if cfg.Server.StartTime == 0 {
		t.Error("start time not stamped at load")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("want error for missing config file")
	}
}
