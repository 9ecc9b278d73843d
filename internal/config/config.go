package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Sim     SimConfig     `toml:"sim"`
	Paths   PathsConfig   `toml:"paths"`
	Logging LoggingConfig `toml:"logging"`
}

type ServerConfig struct {
	Name      string `toml:"name"`
	StartTime int64  // set at boot, not from config
}

type SimConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	// Workers caps how many systems of one stage run at once; 0 means one
	// per available CPU.
	Workers int `toml:"workers"`
	// IntentQueueSize bounds the cast intent channel; 0 means unbounded.
	IntentQueueSize int `toml:"intent_queue_size"`
}

type PathsConfig struct {
	Data    string `toml:"data"`
	Scripts string `toml:"scripts"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Server.StartTime = time.Now().Unix()
	return cfg, nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "Gridfall",
		},
		Sim: SimConfig{
			TickRate:        200 * time.Millisecond,
			Workers:         0,
			IntentQueueSize: 128,
		},
		Paths: PathsConfig{
			Data:    "data",
			Scripts: "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
