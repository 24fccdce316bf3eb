package nxtvk

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFatalLog is where the default fatal handler appends before exiting.
const DefaultFatalLog = "fatal_log.txt"

// Config holds the device-level settings that are not native handles.
// It is usually loaded from a YAML file:
//
//	log_level: debug
//	fatal_log: /var/log/vkreplay/fatal.txt
//	trace: true
//	queue_family: 0
//	layers: [VK_LAYER_KHRONOS_validation]
type Config struct {
	LogLevel    string `yaml:"log_level"`
	FatalLog    string `yaml:"fatal_log"`
	Trace       bool   `yaml:"trace"`
	QueueFamily uint32 `yaml:"queue_family"`
	// Layers are enabled by NewInstance when installed.
	Layers []string `yaml:"layers"`
}

func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		FatalLog: DefaultFatalLog,
	}
}

// LoadConfig reads a YAML config file. Missing keys keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.FatalLog == "" {
		return fmt.Errorf("fatal_log must not be empty")
	}
	return nil
}

// Level parses LogLevel. An empty level means info.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
