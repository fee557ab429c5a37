// Package config provides configuration management for Kindred.
// It loads settings from environment variables with the KINDRED_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration settings for the Kindred application.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Directory DirectoryConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 6464)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains database configuration.
type StorageConfig struct {
	// Engine selects the backend: sqlite or postgres (default: sqlite).
	Engine string

	// DataPath is the directory holding the SQLite database file
	// (default: ./data).
	DataPath string

	// PostgresDSN is the connection string used when Engine is postgres.
	PostgresDSN string
}

// DirectoryConfig selects where person identity lives.
type DirectoryConfig struct {
	// Mode is "local" (people table in the same database) or "remote"
	// (external directory service). Default: local.
	Mode string

	// RemoteURL is the base URL of the remote directory service.
	RemoteURL string
}

// LoadConfig loads configuration from environment variables with sensible
// defaults. All environment variables use the KINDRED_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("KINDRED_PORT", 6464),
			Host: getEnv("KINDRED_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			Engine:      getEnv("KINDRED_STORAGE_ENGINE", "sqlite"),
			DataPath:    getEnv("KINDRED_DATA_PATH", "./data"),
			PostgresDSN: getEnv("KINDRED_POSTGRES_DSN", ""),
		},
		Directory: DirectoryConfig{
			Mode:      getEnv("KINDRED_DIRECTORY_MODE", "local"),
			RemoteURL: getEnv("KINDRED_DIRECTORY_URL", ""),
		},
	}, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default
// value. If the environment variable exists but cannot be parsed as an
// integer, it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
