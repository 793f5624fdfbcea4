package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultStep     = 0.001
	DefaultDuration = 10.0
	DefaultChecker  = "aabbsphere"
	DefaultEngine   = "basicphysics"
	DefaultGravityZ = -9.80665
	DefaultViewer   = "127.0.0.1:8750"
)

type Config struct {
	Scene      string       `yaml:"scene"`
	Step       float64      `yaml:"step"`
	Duration   float64      `yaml:"duration"`
	RealTime   bool         `yaml:"real_time"`
	Checker    string       `yaml:"checker"`
	Engine     string       `yaml:"engine"`
	Gravity    [3]float64   `yaml:"gravity"`
	Track      string       `yaml:"track"`
	ViewerAddr string       `yaml:"viewer_addr"`
	Modules    []ModuleSpec `yaml:"modules"`
}

// ModuleSpec names a module to load into the environment at startup,
// with the argument string passed to its Init.
type ModuleSpec struct {
	Type string `yaml:"type"`
	Args string `yaml:"args"`
}

func DefaultConfig() *Config {
	return &Config{
		Step:       DefaultStep,
		Duration:   DefaultDuration,
		Checker:    DefaultChecker,
		Engine:     DefaultEngine,
		Gravity:    [3]float64{0, 0, DefaultGravityZ},
		ViewerAddr: DefaultViewer,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Steps returns the number of fixed steps covering Duration.
func (c *Config) Steps() int {
	if c.Step <= 0 {
		return 0
	}
	return int(c.Duration / c.Step)
}
