package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Sim holds all configuration for the interactive simulator.
type Sim struct {
	// Logging
	LogLevel string `yaml:"log_level"`

	// Loop
	TickRate int `yaml:"tick_rate"` // frames per second

	// Effect definitions
	Defs string `yaml:"defs"`

	// Scenario
	Scenario Scenario `yaml:"scenario"`
}

// Scenario describes the practice target the simulator spawns.
type Scenario struct {
	Health int32 `yaml:"health"`
}

// DefaultSim returns Sim config with sensible defaults.
func DefaultSim() Sim {
	return Sim{
		LogLevel: "info",
		TickRate: 60,
		Defs:     "configs/effects.yaml",
		Scenario: Scenario{
			Health: 100,
		},
	}
}

// LoadSim loads simulator config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadSim(path string) (Sim, error) {
	cfg := DefaultSim()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.TickRate <= 0 {
		return cfg, fmt.Errorf("config %s: tick_rate must be positive, got %d", path, cfg.TickRate)
	}
	if cfg.Scenario.Health <= 0 {
		return cfg, fmt.Errorf("config %s: scenario health must be positive, got %d", path, cfg.Scenario.Health)
	}

	return cfg, nil
}

// SlogLevel maps the configured log level string to a slog.Level,
// defaulting to info for unknown values.
func (c Sim) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
