package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/netviz/internal/topology"
	"github.com/ziadkadry99/netviz/internal/validation"
)

// EnvPrefix prefixes environment overrides. A double underscore descends
// into a section: NETVIZ_TRAINING__EPOCHS sets training.epochs.
const EnvPrefix = "NETVIZ_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (NETVIZ_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Categories))
	for _, label := range c.Categories {
		key := strings.TrimSpace(label)
		if seen[key] {
			return fmt.Errorf("duplicate category %q", key)
		}
		seen[key] = true
	}
	return nil
}

// Layout returns the default diagram layout stretched to the configured
// canvas. Column positions keep their proportions.
func (c *Config) Layout() topology.Layout {
	l := topology.DefaultLayout()
	if c.Canvas.Width > 0 && c.Canvas.Width != l.Width {
		scale := c.Canvas.Width / l.Width
		l.InputX *= scale
		l.HiddenX *= scale
		l.OutputX *= scale
		l.Width = c.Canvas.Width
	}
	if c.Canvas.Height > 0 {
		l.Height = c.Canvas.Height
	}
	return l
}

// DBPath returns the location of the history database.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "netviz.db")
}
