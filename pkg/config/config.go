// Package config holds all configuration for the application.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Server configuration
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Engine configuration
	Engine EngineConfig `mapstructure:"engine" yaml:"engine"`

	// CircuitBreaker configuration for the remote engine client
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker" yaml:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
	Mode string `mapstructure:"mode" yaml:"mode"` // gin mode: debug, release, test
}

// EngineConfig holds search engine configuration
type EngineConfig struct {
	// Kind selects the engine implementation: http or badger
	Kind string `mapstructure:"kind" yaml:"kind"`

	// URL of the remote engine (http kind)
	URL string `mapstructure:"url" yaml:"url"`

	// Path of the embedded store (badger kind); empty means in-memory
	Path string `mapstructure:"path" yaml:"path"`

	// Collection the plugin documents live in
	Collection string `mapstructure:"collection" yaml:"collection"`

	// Timeout per engine request, in seconds (http kind)
	Timeout int `mapstructure:"timeout" yaml:"timeout"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled" yaml:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests" yaml:"max_requests"`
	Interval         int     `mapstructure:"interval" yaml:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout" yaml:"timeout"`   // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio" yaml:"ready_to_trip_ratio"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	setDefaults()

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	overrideWithEnv(config)

	return config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.mode", "release")

	// Engine defaults
	viper.SetDefault("engine.kind", "http")
	viper.SetDefault("engine.url", "http://localhost:9200")
	viper.SetDefault("engine.collection", "plugins")
	viper.SetDefault("engine.timeout", 30)

	// Circuit breaker defaults
	viper.SetDefault("circuit_breaker.enabled", false)
	viper.SetDefault("circuit_breaker.max_requests", 3)
	viper.SetDefault("circuit_breaker.interval", 60)
	viper.SetDefault("circuit_breaker.timeout", 30)
	viper.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// overrideWithEnv overrides config with environment variables
func overrideWithEnv(config *Config) {
	if kind := os.Getenv("ENGINE_KIND"); kind != "" {
		config.Engine.Kind = kind
	}
	if url := os.Getenv("ENGINE_URL"); url != "" {
		config.Engine.URL = url
	}
	if path := os.Getenv("ENGINE_PATH"); path != "" {
		config.Engine.Path = path
	}
	if collection := os.Getenv("ENGINE_COLLECTION"); collection != "" {
		config.Engine.Collection = collection
	}

	if host := os.Getenv("SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		viper.Set("server.port", port)
		config.Server.Port = viper.GetInt("server.port")
	}
}

// WriteDefault writes a starter configuration file to path.
func WriteDefault(path string) error {
	setDefaults()
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("unable to decode config: %w", err)
	}

	out, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
