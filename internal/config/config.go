// Package config loads the devswarm.yaml configuration file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "800ms" or "2m" parse.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the process configuration.
type Config struct {
	Port   int    `yaml:"port"`
	DBPath string `yaml:"db_path"`

	// Agent simulation knobs.
	AgentLatency   Duration `yaml:"agent_latency"`
	BuildFileDelay Duration `yaml:"build_file_delay"`
	FixLatency     Duration `yaml:"fix_latency"`
	StageTimeout   Duration `yaml:"stage_timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:           3000,
		DBPath:         "devswarm.db",
		AgentLatency:   Duration(2500 * time.Millisecond),
		BuildFileDelay: Duration(800 * time.Millisecond),
		FixLatency:     Duration(1200 * time.Millisecond),
		StageTimeout:   Duration(2 * time.Minute),
	}
}

// Load reads the YAML file at path, layered over defaults. A missing file is
// not an error; the defaults are returned. PORT and DB_PATH environment
// variables override both.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Port = p
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}

	return cfg, nil
}
