package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tajtiattila/pixelmap/scatter"
)

// Config is the configuration file of the program.
type Config struct {
	// HTTP listen address
	Addr string `yaml:"addr"`

	// render cache location, empty means the user cache dir
	CacheDir string `yaml:"cacheDir"`
	NoCache  bool   `yaml:"noCache"`

	// default render settings, requests may override them
	Render scatter.Config `yaml:"render"`

	Datasets []DatasetConfig `yaml:"datasets"`
}

// DatasetConfig names a dataset opened with source.Open(Source, Arg).
type DatasetConfig struct {
	Name   string `yaml:"name" json:"name"`
	Source string `yaml:"source" json:"source"`
	Arg    string `yaml:"arg" json:"arg"`
}

func defaultConfig() Config {
	return Config{
		Addr:   "localhost:8080",
		Render: scatter.DefaultConfig(),
	}
}

// loadConfig reads the YAML file fn over the defaults.
// An empty fn yields the defaults.
func loadConfig(fn string) (Config, error) {
	cfg := defaultConfig()
	if fn == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(fn)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", fn, err)
	}
	if err := cfg.check(); err != nil {
		return cfg, fmt.Errorf("%s: %w", fn, err)
	}
	return cfg, nil
}

func (cfg *Config) check() error {
	seen := make(map[string]bool)
	for i, ds := range cfg.Datasets {
		switch {
		case ds.Name == "":
			return fmt.Errorf("dataset %d has no name", i)
		case ds.Source == "":
			return fmt.Errorf("dataset %q has no source", ds.Name)
		case seen[ds.Name]:
			return fmt.Errorf("dataset %q defined twice", ds.Name)
		}
		seen[ds.Name] = true
	}
	return cfg.Render.Validate()
}
