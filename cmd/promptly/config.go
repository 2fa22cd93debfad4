package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"promptly/internal/analysis"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppConfig holds all configuration for the service, loaded from the
// environment and config.yaml.
type AppConfig struct {
	APIKey          string
	ModelID         string
	LogLevel        string
	CacheTTL        time.Duration
	MaxPromptLength int
	PerMinuteQuota  int
	PerDayQuota     int
	AITimeout       time.Duration
	RedisAddr       string
	Port            string
	HTTPRateRPS     float64
	HTTPRateBurst   int
	Generation      GenerationConfig
	Heuristics      analysis.RulesConfig
}

// GenerationConfig carries the model tuning read from config.yaml. Low
// temperature keeps scoring output consistent between runs.
type GenerationConfig struct {
	Temperature     float32 `yaml:"temperature"`
	TopP            float32 `yaml:"top_p"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

// yamlConfig mirrors the layout of config.yaml.
type yamlConfig struct {
	Model      string               `yaml:"model"`
	Generation GenerationConfig     `yaml:"generation"`
	Heuristics analysis.RulesConfig `yaml:"heuristics"`
}

var validLogLevels = map[string]bool{
	"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true,
}

// LoadConfig loads all configuration from a .env file, environment variables,
// and config.yaml. Only attempt to load a .env file in local development; in
// release mode configuration is provided directly as environment variables.
func LoadConfig() (*AppConfig, error) {
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := &AppConfig{
		APIKey:    os.Getenv("GEMINI_API_KEY"),
		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
		RedisAddr: os.Getenv("REDIS_ADDR"),
		Port:      getEnv("PORT", "8080"),
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	if !validLogLevels[cfg.LogLevel] {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q, must be one of DEBUG/INFO/WARN/ERROR", cfg.LogLevel)
	}

	ttlHours, err := positiveIntEnv("CACHE_TTL_HOURS", 24)
	if err != nil {
		return nil, err
	}
	cfg.CacheTTL = time.Duration(ttlHours) * time.Hour

	if cfg.MaxPromptLength, err = positiveIntEnv("MAX_PROMPT_LENGTH", analysis.DefaultMaxPromptLength); err != nil {
		return nil, err
	}
	if cfg.PerMinuteQuota, err = positiveIntEnv("RATE_LIMIT_PER_MINUTE", 10); err != nil {
		return nil, err
	}
	if cfg.PerDayQuota, err = positiveIntEnv("RATE_LIMIT_PER_DAY", 500); err != nil {
		return nil, err
	}

	timeoutSecs, err := positiveIntEnv("AI_TIMEOUT_SECONDS", 20)
	if err != nil {
		return nil, err
	}
	cfg.AITimeout = time.Duration(timeoutSecs) * time.Second

	cfg.HTTPRateRPS = floatEnv("HTTP_RATE_RPS", 5)
	if cfg.HTTPRateBurst, err = positiveIntEnv("HTTP_RATE_BURST", 10); err != nil {
		return nil, err
	}

	if err := loadYAML(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadYAML overlays model and tuning values from config.yaml. The file is
// optional; built-in defaults apply when it is absent.
func loadYAML(cfg *AppConfig) error {
	cfg.ModelID = "gemini-1.5-flash"
	cfg.Generation = GenerationConfig{Temperature: 0.1, TopP: 0.8, MaxOutputTokens: 1000}
	cfg.Heuristics = analysis.DefaultRulesConfig()

	data, err := os.ReadFile("config.yaml")
	if os.IsNotExist(err) {
		log.Println("WARNING: No config.yaml found, using built-in tuning defaults.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config.yaml: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("failed to parse config.yaml: %w", err)
	}
	if yc.Model != "" {
		cfg.ModelID = yc.Model
	}
	if yc.Generation.MaxOutputTokens > 0 {
		cfg.Generation = yc.Generation
	}
	if yc.Heuristics != (analysis.RulesConfig{}) {
		cfg.Heuristics = yc.Heuristics
	}
	return nil
}

// getEnv reads an env var or returns a default.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func positiveIntEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return v, nil
}

func floatEnv(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v > 0 {
		return v
	}
	return fallback
}
