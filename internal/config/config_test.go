package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "server.toml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadOverridesDefaults(t *testing.T) {
	p := writeConfig(t, `
[simulation]
tick_rate = "100ms"
stun_duration = "2s"

[database]
dsn = "postgres://localhost/isle"

[debug]
fail_fast = true
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Simulation.TickRate != 100*time.Millisecond || cfg.Simulation.StunDuration != 2*time.Second {
		t.Fatalf("simulation = %+v", cfg.Simulation)
	}
	if !cfg.Debug.FailFast || cfg.Database.DSN == "" {
		t.Fatalf("overrides not applied")
	}
	// untouched keys keep their defaults
	if cfg.Simulation.PlayerHP != 100 || cfg.Simulation.MaxPathNodes != 4096 {
		t.Fatalf("defaults lost: %+v", cfg.Simulation)
	}
	if cfg.Server.StartTime == 0 {
		t.Fatalf("start time not stamped")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	p := writeConfig(t, "[simulation]\ntick_rate = \"0s\"\n")
	if _, err := Load(p); err == nil || !strings.Contains(err.Error(), "tick_rate") {
		t.Fatalf("err = %v", err)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestShippedConfigParses(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "server.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database.DSN != "" {
		t.Fatalf("shipped config should run without a ledger")
	}
	if cfg.Data.Attacks == "" || cfg.Data.ScriptsDir == "" {
		t.Fatalf("data paths missing: %+v", cfg.Data)
	}
}
