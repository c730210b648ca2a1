// Package config loads the lattice.yaml settings shared by the CLI commands.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/ids"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "lattice.yaml"

// Config is the root of lattice.yaml.
type Config struct {
	Server ServerConfig `mapstructure:"server" yaml:"server"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	IDs    IDConfig     `mapstructure:"ids" yaml:"ids"`
	Tree   TreeConfig   `mapstructure:"tree" yaml:"tree"`
	Redis  RedisConfig  `mapstructure:"redis" yaml:"redis"`
}

type ServerConfig struct {
	Port    int  `mapstructure:"port" yaml:"port"`
	Metrics bool `mapstructure:"metrics" yaml:"metrics"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// IDConfig selects how element IDs are generated: "counter" (c1, t1, ...) or "uuid".
type IDConfig struct {
	Strategy string `mapstructure:"strategy" yaml:"strategy"`
}

// TreeConfig holds the nesting policy. Zero means unlimited nesting.
type TreeConfig struct {
	MaxContainerDepth int `mapstructure:"max_container_depth" yaml:"max_container_depth"`
}

// RedisConfig enables snapshot publishing over Redis when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// Default returns the settings used when lattice.yaml is absent.
func Default() Config {
	return Config{
		Server: ServerConfig{Port: 8080, Metrics: true},
		Log:    LogConfig{Level: "info"},
		IDs:    IDConfig{Strategy: "counter"},
		Redis:  RedisConfig{Prefix: "lattice:snapshots:"},
	}
}

// Load reads path over the defaults. A missing file yields the defaults, unless
// required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := Merge(&cfg, raw); err != nil {
		return cfg, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Merge decodes raw over cfg. Keys absent from raw keep their current values.
func Merge(cfg *Config, raw map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// Validate rejects settings the commands cannot honour.
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, ok := ids.New(c.IDs.Strategy); !ok {
		return fmt.Errorf("ids.strategy: unknown strategy %q", c.IDs.Strategy)
	}
	if c.Tree.MaxContainerDepth < 0 {
		return fmt.Errorf("tree.max_container_depth must not be negative")
	}
	return nil
}
