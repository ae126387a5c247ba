package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Logging   LoggingConfig   `toml:"logging"`
	Scripting ScriptingConfig `toml:"scripting"`
	Options   Options         `toml:"options"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	Scenario  string `toml:"scenario"`   // path to the scenario yaml
	Seed      int64  `toml:"seed"`       // 0 = seed from the clock
	MaxRounds int    `toml:"max_rounds"` // 0 = play until victory
	StartTime int64  // set at boot, not from config
}

// DatabaseConfig configures the post-game archive. An empty DSN disables it.
type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type ScriptingConfig struct {
	Dir string `toml:"dir"` // root holding combat/*.lua
}

// Options are the game rules that change how turns are built and how the
// game may end. Grouping sizes of 1 or less disable that grouping.
type Options struct {
	IndividualInitiative   bool `toml:"individual_initiative"`
	InitStreakCompensation bool `toml:"init_streak_compensation"`
	InfantryMoveLater      bool `toml:"infantry_move_later"`
	InfantryPerTurn        int  `toml:"infantry_per_turn"`
	ProtosPerTurn          int  `toml:"protos_per_turn"`
	VehiclesPerTurn        int  `toml:"vehicles_per_turn"`
	MeksPerTurn            int  `toml:"meks_per_turn"`
	// GroupRemovalRemainder is the remaining-count remainder (modulo group
	// size, counting the unit being removed) at which a grouped turn is dropped.
	GroupRemovalRemainder int  `toml:"group_removal_remainder"`
	AllowEarlyTermination bool `toml:"allow_early_termination"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	cfg := defaults()
	cfg.Server.StartTime = time.Now().Unix()
	return cfg
}

// DefaultOptions returns the rules used when a config file leaves them out.
func DefaultOptions() Options {
	return defaults().Options
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name:      "hexline",
			Scenario:  "data/scenario.yaml",
			MaxRounds: 20,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scripting: ScriptingConfig{
			Dir: "scripts",
		},
		Options: Options{
			InfantryPerTurn:       1,
			ProtosPerTurn:         1,
			VehiclesPerTurn:       1,
			MeksPerTurn:           1,
			GroupRemovalRemainder: 1,
			AllowEarlyTermination: true,
		},
	}
}
