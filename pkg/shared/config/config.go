package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the configuration file at configPath. A missing file is
// not an error: the tool runs with defaults so CI does not have to ship a
// config just to scan a tree.
func LoadConfig(configPath string) (*Config, error) {
	config := NewDefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return config, nil
	}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
	}

	return config, nil
}

// NewDefaultConfig returns the configuration used when no config file is present.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: Logger{
			Level: "info",
		},
		Scanner: Scanner{
			Threads:    1,
			Extensions: []string{".py", ".pyw"},
		},
		Verdict: Verdict{
			HighThreshold: 0,
		},
	}
}
