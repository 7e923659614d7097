package config

import (
	"os"
	"path/filepath"
)

// GetProvscanHome returns the base folder for provscan state. The
// PROVSCAN_HOME environment variable takes priority over the default
// ~/.provscan location.
func GetProvscanHome() string {
	envHome := os.Getenv("PROVSCAN_HOME")
	if envHome != "" {
		return envHome
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".provscan"
	}
	return filepath.Join(home, ".provscan")
}

// GetArtifactsHome returns the folder where scan report artifacts are saved.
func GetArtifactsHome() string {
	return filepath.Join(GetProvscanHome(), "reports")
}

// SetThenInt returns value unless it is zero, in which case fallback is used.
func SetThenInt(value, fallback int) int {
	if value != 0 {
		return value
	}
	return fallback
}

// SetThenString returns value unless it is empty, in which case fallback is used.
func SetThenString(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
