package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrSourcesNotFound is returned when the source-list file does not exist.
var ErrSourcesNotFound = errors.New("sources file not found")

// LoadSourcesFile loads the source list from a YAML file.
// If the file does not exist, it returns ErrSourcesNotFound. Callers should
// handle this error based on whether the path was explicitly specified by
// the user.
func LoadSourcesFile(path string) (*SourcesFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSourcesNotFound
		}
		return nil, err
	}

	var sf SourcesFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, err
	}

	return &sf, nil
}

// FindSourcesFile searches for the source-list file in the following order:
// 1. If path is specified, use it directly
// 2. Look for .proxyvet in the current directory
// 3. Look for .proxyvet in the user's home directory
//
// Returns the path if found, or empty string if not found.
func FindSourcesFile(path string) string {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdFile := filepath.Join(cwd, DefaultSourcesFile)
		if _, err := os.Stat(cwdFile); err == nil {
			return cwdFile
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeFile := filepath.Join(home, DefaultSourcesFile)
		if _, err := os.Stat(homeFile); err == nil {
			return homeFile
		}
	}

	return ""
}
