package storage

import (
	"fmt"
	"os"
	"strings"
)

// Config selects where session state lives and which project to open
type Config struct {
	DataDir string
	// ProjectRoot empty means the project persisted by the last session
	ProjectRoot string
}

// DefaultConfig keeps state under ./data and reopens the last project
func DefaultConfig() *Config {
	return &Config{DataDir: "./data"}
}

// ConfigError names the offending setting
type ConfigError struct {
	Field  string
	Reason string
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("storage config %s: %s", e.Field, e.Reason)
}

// Validate checks the data dir is set and, when given, the project root is
// an existing folder
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return ConfigError{Field: "DataDir", Reason: "is required"}
	}
	if c.ProjectRoot == "" {
		return nil
	}
	info, err := os.Stat(c.ProjectRoot)
	switch {
	case err != nil:
		return ConfigError{Field: "ProjectRoot", Reason: err.Error()}
	case !info.IsDir():
		return ConfigError{Field: "ProjectRoot", Reason: "is not a folder"}
	}
	return nil
}
