package config

import (
	"fmt"
	"strings"
)

var validLogLevels = []string{"trace", "debug", "info", "warn", "error"}

// ValidateConfig checks the loaded configuration for values that would make
// a scan behave in a surprising way.
func ValidateConfig(cfg *Config) error {
	if cfg.Logger.Level != "" {
		valid := false
		for _, level := range validLogLevels {
			if strings.EqualFold(cfg.Logger.Level, level) {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid logger level %q, must be one of: %s", cfg.Logger.Level, strings.Join(validLogLevels, ", "))
		}
	}

	if cfg.Scanner.Threads < 0 {
		return fmt.Errorf("scanner threads must not be negative, got %d", cfg.Scanner.Threads)
	}

	if cfg.Verdict.HighThreshold < 0 {
		return fmt.Errorf("verdict high_threshold must not be negative, got %d", cfg.Verdict.HighThreshold)
	}

	return nil
}
