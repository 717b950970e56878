package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full application configuration. Values come from an
// optional config.yaml overlaid with environment variables; secrets are
// env-only.
type Config struct {
	AppPort int `yaml:"app_port"`

	// Embedding service (text-embeddings-inference).
	TEIURL       string `yaml:"tei_url"`
	EmbeddingDim int    `yaml:"embedding_dim"`

	// Vector backend: "qdrant" or "memory".
	VectorBackend string `yaml:"vector_backend"`
	QdrantHost    string `yaml:"qdrant_host"`
	QdrantPort    int    `yaml:"qdrant_port"`

	// Generation backend.
	GeminiAPIKey string `yaml:"-"`
	GeminiModel  string `yaml:"gemini_model"`

	RegistryPath       string `yaml:"registry_path"`
	ArxivBaseURL       string `yaml:"arxiv_base_url"`
	ContextTokenBudget int    `yaml:"context_token_budget"`

	// Bearer token -> owner id. Injected auth for single-node runs; a
	// real identity provider replaces this verifier at the API layer.
	AuthTokens map[string]string `yaml:"auth_tokens"`
}

// Load reads .env (best effort), then config.yaml if present, then
// environment overrides. Missing generation credentials are a fatal
// configuration error, not a degraded mode.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyEnv(cfg)

	if cfg.TEIURL == "" {
		return nil, fmt.Errorf("TEI_URL is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		AppPort:            8080,
		EmbeddingDim:       384,
		VectorBackend:      "qdrant",
		QdrantHost:         "localhost",
		QdrantPort:         6334,
		GeminiModel:        "gemini-2.5-flash",
		RegistryPath:       "data/registry.db",
		ContextTokenBudget: 6000,
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.TEIURL, "TEI_URL")
	setString(&cfg.VectorBackend, "VECTOR_BACKEND")
	setString(&cfg.QdrantHost, "QDRANT_HOST")
	setString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&cfg.GeminiModel, "GEMINI_MODEL")
	setString(&cfg.RegistryPath, "REGISTRY_PATH")
	setString(&cfg.ArxivBaseURL, "ARXIV_BASE_URL")
	setInt(&cfg.AppPort, "APP_PORT")
	setInt(&cfg.QdrantPort, "QDRANT_PORT")
	setInt(&cfg.EmbeddingDim, "EMBEDDING_DIM")
	setInt(&cfg.ContextTokenBudget, "CONTEXT_TOKEN_BUDGET")
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
