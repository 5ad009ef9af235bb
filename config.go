package jtv

import (
	"errors"
	"fmt"
	"io"
	"log"

	"gopkg.in/yaml.v3"
)

// Config is the YAML form of interpreter settings:
//
//	max_steps: 10000
//	embed_steps: 500
//	max_depth: 50000
//	max_range: 100000
//	trace: true
//
// Omitted fields take their defaults.
type Config struct {
	MaxSteps   int  `yaml:"max_steps"`
	EmbedSteps int  `yaml:"embed_steps"`
	MaxDepth   int  `yaml:"max_depth"`
	MaxRange   int  `yaml:"max_range"`
	Trace      bool `yaml:"trace"`
}

// LoadConfig decodes a Config from r, rejecting unknown fields. An empty
// document yields the default Config.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := Config{MaxSteps: DefaultMaxSteps, EmbedSteps: DefaultEmbedSteps}
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Budget().validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Budget returns the configured step budget and resource limits.
func (cfg Config) Budget() Budget {
	return Budget{
		MaxSteps:   cfg.MaxSteps,
		EmbedSteps: cfg.EmbedSteps,
		MaxDepth:   cfg.MaxDepth,
		MaxRange:   cfg.MaxRange,
	}
}

// Options returns interpreter options for cfg; tracing goes to the standard
// logger.
func (cfg Config) Options() Option {
	opts := []Option{WithBudget(cfg.Budget())}
	if cfg.Trace {
		opts = append(opts, WithLogf(log.Printf))
	}
	return Options(opts...)
}
