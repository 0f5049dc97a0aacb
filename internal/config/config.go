package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds the settings for both the server and the predict CLI.
type Config struct {
	LogLevel string       `yaml:"log_level"`
	Server   ServerConfig `yaml:"server"`
	Model    ModelConfig  `yaml:"model"`
	Client   ClientConfig `yaml:"client"`
}

type ServerConfig struct {
	Port           string `yaml:"port"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

type ModelConfig struct {
	Path         string `yaml:"path"`
	MetadataPath string `yaml:"metadata_path"`
	// RuntimeLibrary points at libonnxruntime when it is not on the default
	// search path.
	RuntimeLibrary string      `yaml:"runtime_library"`
	Drive          DriveConfig `yaml:"drive"`
}

// DriveConfig names Google Drive files to fetch when the model artifacts are
// missing locally. CredentialsJSON is a service account key and is only read
// from the environment.
type DriveConfig struct {
	ModelID         string `yaml:"model_id"`
	MetadataID      string `yaml:"metadata_id"`
	CredentialsJSON string `yaml:"-"`
}

func (d DriveConfig) Enabled() bool {
	return d.ModelID != "" || d.MetadataID != ""
}

type ClientConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout of zero leaves the HTTP client default in place.
	Timeout time.Duration `yaml:"timeout"`
	Locale  string        `yaml:"locale"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:           "8080",
			MaxUploadBytes: 10 << 20,
		},
		Model: ModelConfig{
			Path:         "models/model.onnx",
			MetadataPath: "models/model_metadata.json",
		},
		Client: ClientConfig{
			BaseURL: "http://localhost:8080",
			Locale:  "en",
		},
	}
}

// LoadFromFile overlays a YAML file onto the defaults.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Load builds the effective configuration: defaults, then the YAML file if
// path is non-empty, then a .env file if present, then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	// The .env file is optional.
	_ = godotenv.Load()

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("LOG_LEVEL", &c.LogLevel)
	str("PORT", &c.Server.Port)
	str("MODEL_PATH", &c.Model.Path)
	str("METADATA_PATH", &c.Model.MetadataPath)
	str("ONNXRUNTIME_LIB", &c.Model.RuntimeLibrary)
	str("DRIVE_MODEL_ID", &c.Model.Drive.ModelID)
	str("DRIVE_METADATA_ID", &c.Model.Drive.MetadataID)
	str("GOOGLE_APPLICATION_CREDENTIALS_CONTENT", &c.Model.Drive.CredentialsJSON)
	str("PREDICT_URL", &c.Client.BaseURL)
	str("PREDICT_LOCALE", &c.Client.Locale)

	if v, ok := lookup("MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_UPLOAD_BYTES: %w", err)
		}
		c.Server.MaxUploadBytes = n
	}
	if v, ok := lookup("PREDICT_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PREDICT_TIMEOUT: %w", err)
		}
		c.Client.Timeout = d
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port cannot be empty")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout cannot be negative")
	}
	if c.Model.Drive.Enabled() && c.Model.Drive.CredentialsJSON == "" {
		return fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS_CONTENT is required to fetch models from drive")
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
