package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	raw := `
[server]
seed = 42
max_rounds = 5

[logging]
format = "json"

[options]
individual_initiative = true
vehicles_per_turn = 4
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Seed != 42 || cfg.Server.MaxRounds != 5 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.Name != "hexline" {
		t.Errorf("default name lost: %q", cfg.Server.Name)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if !cfg.Options.IndividualInitiative || cfg.Options.VehiclesPerTurn != 4 {
		t.Errorf("options = %+v", cfg.Options)
	}
	if cfg.Options.GroupRemovalRemainder != 1 || cfg.Options.InfantryPerTurn != 1 {
		t.Errorf("option defaults lost: %+v", cfg.Options)
	}
	if cfg.Database.ConnMaxLifetime != 30*time.Minute {
		t.Errorf("conn lifetime = %v", cfg.Database.ConnMaxLifetime)
	}
	if cfg.Server.StartTime == 0 {
		t.Error("start time not stamped")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[server\nname="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}
