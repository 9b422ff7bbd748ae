// Package config provides configuration loading and validation for the
// career data quality service and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config is the service configuration. Values can be loaded from a JSON
// file, then overridden by environment variables; missing values fall back
// to defaults.
type Config struct {
	// Backing services
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	RedisURL    string `json:"redis_url,omitempty"`    // optional; enables the shared operation registry

	// Embeddings
	GeminiAPIKey   string `json:"gemini_api_key,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`

	// HTTP
	Port int `json:"port,omitempty"`

	// Logging
	LogLevel string `json:"log_level,omitempty"` // debug|info|warn|error
	LogJSON  bool   `json:"log_json,omitempty"`

	// Engine
	RetentionMinutes int `json:"retention_minutes,omitempty"` // terminal operation retention
	ScanParallelism  int `json:"scan_parallelism,omitempty"`  // duplicate scan worker count

	// Similarity tuning. Zero values keep the built-in defaults.
	CompanyWeight float64 `json:"company_weight,omitempty"`
	TitleWeight   float64 `json:"title_weight,omitempty"`
	DatesWeight   float64 `json:"dates_weight,omitempty"`
	SkillsWeight  float64 `json:"skills_weight,omitempty"`
	ContentWeight float64 `json:"content_weight,omitempty"`
}

// Load reads configuration from an optional JSON file and applies
// environment overrides. An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string) (*Config, error) {
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.RedisURL, "REDIS_URL")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.EmbeddingModel, "EMBEDDING_MODEL")
	setString(&c.LogLevel, "LOG_LEVEL")
	setInt(&c.Port, "PORT")
	setInt(&c.RetentionMinutes, "OPERATION_RETENTION_MINUTES")
	setInt(&c.ScanParallelism, "SCAN_PARALLELISM")
	if v := os.Getenv("LOG_JSON"); v == "true" || v == "1" {
		c.LogJSON = true
	}
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RetentionMinutes == 0 {
		c.RetentionMinutes = 30
	}
	if c.ScanParallelism == 0 {
		c.ScanParallelism = 4
	}
}

// Validate checks numeric ranges. Required fields are checked by the
// commands that need them, after flag merging.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	if c.RetentionMinutes < 0 {
		return fmt.Errorf("config error: 'retention_minutes' must be non-negative")
	}
	if c.ScanParallelism < 0 {
		return fmt.Errorf("config error: 'scan_parallelism' must be non-negative")
	}
	for name, w := range map[string]float64{
		"company_weight": c.CompanyWeight,
		"title_weight":   c.TitleWeight,
		"dates_weight":   c.DatesWeight,
		"skills_weight":  c.SkillsWeight,
		"content_weight": c.ContentWeight,
	} {
		if w < 0 || w > 1 {
			return fmt.Errorf("config error: '%s' must be in [0,1], got %v", name, w)
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
