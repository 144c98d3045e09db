package config

// Embedding provider names accepted in config.
const (
	ProviderAuto   = "auto"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderAuto
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}
	if cfg.Embedding.MaxRetries == 0 {
		cfg.Embedding.MaxRetries = 2
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Completion.BaseURL == "" {
		cfg.Completion.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Completion.APIKeyEnv == "" {
		cfg.Completion.APIKeyEnv = cfg.Embedding.APIKeyEnv
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = "gpt-4o-mini"
	}
	if cfg.Completion.TimeoutSeconds == 0 {
		cfg.Completion.TimeoutSeconds = 60
	}
	if cfg.Completion.MaxTokens == 0 {
		cfg.Completion.MaxTokens = 500
	}
	if cfg.Completion.Temperature == 0 {
		cfg.Completion.Temperature = 0.3
	}
	if cfg.Retrieval.ChunkSize == 0 {
		cfg.Retrieval.ChunkSize = 500
	}
	if cfg.Retrieval.ChunkOverlap == 0 {
		cfg.Retrieval.ChunkOverlap = 100
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.SimilarityThreshold == 0 {
		cfg.Retrieval.SimilarityThreshold = 0.7
	}
	if cfg.Retrieval.MockSimilarityThreshold == 0 {
		cfg.Retrieval.MockSimilarityThreshold = 0.1
	}
	if cfg.Retrieval.MinVisibleSimilarity == 0 {
		cfg.Retrieval.MinVisibleSimilarity = 0.2
	}
	if cfg.Retrieval.MaxConditions == 0 {
		cfg.Retrieval.MaxConditions = 5
	}
	if cfg.Corpus.Extensions == nil {
		cfg.Corpus.Extensions = []string{".txt", ".md", ".rst", ".pdf", ".docx", ".xlsx", ".pptx", ".odt", ".odp", ".ods"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Corpus.Directories) > 0 && cfg.Corpus.Recursive == nil {
		t := true
		cfg.Corpus.Recursive = &t
	}
}

// Default returns a fully defaulted config without reading a file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
