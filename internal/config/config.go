// Package config provides configuration loading and structs for the medirag server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Corpus     CorpusConfig     `yaml:"corpus"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// EmbeddingConfig holds embedding provider settings.
// Provider is "openai", "mock", or "auto"; auto resolves to openai when the
// API key environment variable is set and to mock otherwise.
type EmbeddingConfig struct {
	Provider       string `yaml:"provider"`
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	Model          string `yaml:"model"`
	Dimensions     int    `yaml:"dimensions"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
	CacheSize      int    `yaml:"cache_size"`
}

// CompletionConfig holds generative completion settings. Completion is
// optional; the extractive synthesizer works without it.
type CompletionConfig struct {
	Enabled        bool    `yaml:"enabled"`
	BaseURL        string  `yaml:"base_url"`
	APIKeyEnv      string  `yaml:"api_key_env"`
	Model          string  `yaml:"model"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
}

// RetrievalConfig holds chunking and search settings.
type RetrievalConfig struct {
	ChunkSize               int     `yaml:"chunk_size"`
	ChunkOverlap            int     `yaml:"chunk_overlap"`
	TopK                    int     `yaml:"top_k"`
	SimilarityThreshold     float64 `yaml:"similarity_threshold"`
	MockSimilarityThreshold float64 `yaml:"mock_similarity_threshold"`
	MinVisibleSimilarity    float64 `yaml:"min_visible_similarity"`
	MaxConditions           int     `yaml:"max_conditions"`
}

// EffectiveThreshold returns the similarity threshold to apply. Mock
// embeddings are low fidelity, so mock mode uses the lower threshold.
func (r *RetrievalConfig) EffectiveThreshold(mockMode bool) float64 {
	if mockMode {
		return r.MockSimilarityThreshold
	}
	return r.SimilarityThreshold
}

// CorpusConfig holds reference-document watch settings.
type CorpusConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (c *CorpusConfig) RecursiveOrDefault() bool {
	if c.Recursive != nil {
		return *c.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	for i := range cfg.Corpus.Directories {
		cfg.Corpus.Directories[i] = expandPath(cfg.Corpus.Directories[i], configDir)
	}

	return &cfg, nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
