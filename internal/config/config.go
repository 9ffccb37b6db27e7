package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
// Values are process-wide defaults; per-request overrides are layered on top
// of them by the provider package.
type Config struct {
	APIPort   string     `yaml:"api_port"`
	LogLevel  slog.Level `yaml:"-"`
	LogFormat string     `yaml:"log_format"`

	LLMBaseURL   string        `yaml:"llm_base_url"`
	LLMAPIKey    string        `yaml:"llm_api_key"`
	LLMModelName string        `yaml:"llm_model"`
	LLMTimeout   time.Duration `yaml:"llm_timeout"`

	OllamaBaseURL      string `yaml:"ollama_base_url"`
	EmbeddingModelName string `yaml:"embedding_model_name"`
	EmbeddingDimension int    `yaml:"embedding_dimension"`

	TurnConcurrency int `yaml:"turn_concurrency"`

	// DBPath is the sqlite file for the analysis-run log. Empty disables it.
	DBPath string `yaml:"db_path"`
}

// fileConfig mirrors Config for YAML decoding.
type fileConfig struct {
	Config   `yaml:",inline"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration before any file or environment
// overrides are applied.
func Default() *Config {
	return &Config{
		APIPort:            "9000",
		LogLevel:           slog.LevelInfo,
		LogFormat:          "text",
		LLMBaseURL:         "https://integrate.api.nvidia.com/v1",
		LLMModelName:       "meta/llama-3.1-8b-instruct",
		LLMTimeout:         120 * time.Second,
		OllamaBaseURL:      "http://127.0.0.1:11434",
		EmbeddingModelName: "nomic-embed-text:latest",
		EmbeddingDimension: 768,
		TurnConcurrency:    4,
		DBPath:             "./data/deviation-analyzer.db",
	}
}

// Load reads configuration and returns a Config struct.
// Precedence, lowest first: built-in defaults, an optional YAML file
// (CONFIG_FILE, config.yaml or configs/config.yaml), then environment
// variables. If a .env file exists in the current directory or one of its
// parents, it is loaded first; variables already set take precedence over it.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := Default()

	if err := loadFile(cfg); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DBPath != "" {
		dataDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks value ranges that cannot be defaulted.
func (c *Config) Validate() error {
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSION must be greater than 0")
	}
	if c.TurnConcurrency <= 0 {
		return fmt.Errorf("ANALYSIS_TURN_CONCURRENCY must be greater than 0")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be greater than 0")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// loadDotEnv loads .env from the working directory or the closest parent.
func loadDotEnv() {
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

// loadFile decodes the first YAML config file found over cfg.
// An explicit CONFIG_FILE that cannot be read is an error; the implicit
// search paths are optional.
func loadFile(cfg *Config) error {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read CONFIG_FILE: %w", err)
		}
		return decodeYAML(cfg, data, path)
	}

	for _, path := range []string{"config.yaml", "configs/config.yaml"} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		return decodeYAML(cfg, data, path)
	}
	return nil
}

func decodeYAML(cfg *Config, data []byte, path string) error {
	fc := fileConfig{Config: *cfg}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	*cfg = fc.Config
	if fc.LogLevel != "" {
		level, err := parseLogLevel(fc.LogLevel)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}
	return nil
}

// applyEnv overrides cfg with any environment variables that are set.
func applyEnv(cfg *Config) error {
	cfg.APIPort = getEnv("API_PORT", cfg.APIPort)
	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", cfg.LogFormat))
	cfg.LLMBaseURL = getEnv("LLM_BASE_URL", cfg.LLMBaseURL)
	cfg.LLMAPIKey = getEnv("LLM_API_KEY", getEnv("NVIDIA_API_KEY", cfg.LLMAPIKey))
	cfg.LLMModelName = getEnv("LLM_MODEL", cfg.LLMModelName)
	cfg.OllamaBaseURL = getEnv("OLLAMA_BASE_URL", cfg.OllamaBaseURL)
	cfg.EmbeddingModelName = getEnv("EMBEDDING_MODEL_NAME", cfg.EmbeddingModelName)

	if v, ok := os.LookupEnv("DB_PATH"); ok {
		cfg.DBPath = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
	}

	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LLM_TIMEOUT must be a valid duration: %w", err)
		}
		cfg.LLMTimeout = d
	}

	if v := os.Getenv("EMBEDDING_DIMENSION"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EMBEDDING_DIMENSION must be a valid integer: %w", err)
		}
		cfg.EmbeddingDimension = n
	}

	if v := os.Getenv("ANALYSIS_TURN_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ANALYSIS_TURN_CONCURRENCY must be a valid integer: %w", err)
		}
		cfg.TurnConcurrency = n
	}

	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
