package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath       = "config.yaml"
	defaultTokenPath        = "./youtube_token.json"
	defaultCategory         = "22"
	defaultPrivacyStatus    = "private"
	defaultGroqModel        = "llama-3.1-8b-instant"
	defaultMaxTags          = 10
	defaultClientSecretName = "youtube-client-secret"
)

type Config struct {
	YouTubeClientID     string
	YouTubeClientSecret string
	YouTubeTokenPath    string
	GroqAPIKey          string
	GCPProject          string

	YouTube YouTubeConfig `yaml:"youtube"`
	Groq    GroqConfig    `yaml:"groq"`
	GCS     GCSConfig     `yaml:"gcs"`
	Secrets SecretsConfig `yaml:"secrets"`
}

type YouTubeConfig struct {
	Category           string   `yaml:"category"`
	PrivacyStatus      string   `yaml:"privacy_status"`
	DefaultTags        []string `yaml:"default_tags"`
	ApplicationDefault bool     `yaml:"application_default"`
}

type GroqConfig struct {
	Model   string `yaml:"model"`
	MaxTags int    `yaml:"max_tags"`
}

type GCSConfig struct {
	Enabled bool `yaml:"enabled"`
}

type SecretsConfig struct {
	ClientSecretName string `yaml:"client_secret_name"`
}

// Load reads .env, the process environment and an optional config.yaml from
// the working directory. The YouTube client secret may still be empty; see
// ClientSecret.
func Load() (*Config, error) {
	return LoadFrom(defaultConfigPath)
}

func LoadFrom(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeTokenPath:    getEnvOrDefault("YOUTUBE_TOKEN_PATH", defaultTokenPath),
		GroqAPIKey:          os.Getenv("GROQ_API_KEY"),
		GCPProject:          os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}

	if err := loadYAMLConfig(cfg, path); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	return cfg, nil
}

func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("No config file found, using defaults", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyYouTubeDefaults(cfg)
	applyGroqDefaults(cfg)
	applySecretsDefaults(cfg)
}

func applyYouTubeDefaults(cfg *Config) {
	if cfg.YouTube.Category == "" {
		cfg.YouTube.Category = defaultCategory
	}
	if cfg.YouTube.PrivacyStatus == "" {
		cfg.YouTube.PrivacyStatus = defaultPrivacyStatus
	}
}

func applyGroqDefaults(cfg *Config) {
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
	if cfg.Groq.MaxTags == 0 {
		cfg.Groq.MaxTags = defaultMaxTags
	}
}

func applySecretsDefaults(cfg *Config) {
	if cfg.Secrets.ClientSecretName == "" {
		cfg.Secrets.ClientSecretName = defaultClientSecretName
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
