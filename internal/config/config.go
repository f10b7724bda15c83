package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Simulation SimulationConfig `toml:"simulation"`
	Network    NetworkConfig    `toml:"network"`
	Database   DatabaseConfig   `toml:"database"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Logging    LoggingConfig    `toml:"logging"`
	Debug      DebugConfig      `toml:"debug"`
	Data       DataConfig       `toml:"data"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	ID        int    `toml:"id"`
	StartTime int64  // set at boot, not from config
}

type SimulationConfig struct {
	TickRate          time.Duration `toml:"tick_rate"`
	StunDuration      time.Duration `toml:"stun_duration"`       // fallback when an attack has no stun of its own
	MaxPathNodes      int           `toml:"max_path_nodes"`      // A* expansion cap per search
	SpawnLift         int32         `toml:"spawn_lift"`          // arrival height above the leave position
	EnemyMoveInterval time.Duration `toml:"enemy_move_interval"` // used when a template has none
	AggroRange        int32         `toml:"aggro_range"`         // used when a template has none
	PlayerHP          int32         `toml:"player_hp"`
}

type NetworkConfig struct {
	InQueueSize       int     `toml:"in_queue_size"`
	OutQueueSize      int     `toml:"out_queue_size"`
	MaxPacketsPerTick int     `toml:"max_packets_per_tick"`
	IntentsPerSecond  float64 `toml:"intents_per_second"` // 0 = unlimited
	IntentBurst       int     `toml:"intent_burst"`
}

// DatabaseConfig configures the event ledger. An empty DSN disables it.
type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	BatchSize       int           `toml:"batch_size"`
	FlushInterval   time.Duration `toml:"flush_interval"`
}

type MetricsConfig struct {
	Enabled     bool     `toml:"enabled"`
	BindAddress string   `toml:"bind_address"`
	CORSOrigins []string `toml:"cors_origins"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type DebugConfig struct {
	FailFast bool `toml:"fail_fast"` // panic on invariant violations
}

type DataConfig struct {
	Attacks    string `toml:"attacks"`
	Enemies    string `toml:"enemies"`
	MoveRules  string `toml:"move_rules"`
	Islands    string `toml:"islands"`
	ScriptsDir string `toml:"scripts_dir"`
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
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

// Default returns the built-in configuration, used when no file is present.
func Default() *Config {
	cfg := defaults()
	cfg.Server.StartTime = time.Now().Unix()
	return cfg
}

func (c *Config) validate() error {
	if c.Simulation.TickRate <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive, got %s", c.Simulation.TickRate)
	}
	if c.Simulation.PlayerHP <= 0 {
		return fmt.Errorf("simulation.player_hp must be positive, got %d", c.Simulation.PlayerHP)
	}
	if c.Network.InQueueSize <= 0 || c.Network.OutQueueSize <= 0 {
		return fmt.Errorf("network queue sizes must be positive")
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "IsleClash",
			ID:   1,
		},
		Simulation: SimulationConfig{
			TickRate:          50 * time.Millisecond,
			StunDuration:      1500 * time.Millisecond,
			MaxPathNodes:      4096,
			SpawnLift:         2,
			EnemyMoveInterval: 700 * time.Millisecond,
			AggroRange:        8,
			PlayerHP:          100,
		},
		Network: NetworkConfig{
			InQueueSize:       128,
			OutQueueSize:      256,
			MaxPacketsPerTick: 32,
			IntentsPerSecond:  60,
			IntentBurst:       20,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
			BatchSize:       256,
			FlushInterval:   5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			BindAddress: "127.0.0.1:9090",
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Data: DataConfig{
			Attacks:    "data/yaml/attack_list.yaml",
			Enemies:    "data/yaml/enemy_list.yaml",
			MoveRules:  "data/yaml/move_rules.yaml",
			Islands:    "data/yaml/island_list.yaml",
			ScriptsDir: "scripts",
		},
	}
}
