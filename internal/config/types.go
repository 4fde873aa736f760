package config

import "time"

// ProviderType identifies an embedding or generation provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderGoogle    ProviderType = "google"
	ProviderOllama    ProviderType = "ollama"
)

// VectorStoreType identifies a vector index backend.
type VectorStoreType string

const (
	VectorStorePinecone VectorStoreType = "pinecone"
	VectorStoreQdrant   VectorStoreType = "qdrant"
	VectorStoreChromem  VectorStoreType = "chromem"
)

// Config is the top-level tutor configuration, corresponding to .tutor.yml.
type Config struct {
	Provider          ProviderType      `yaml:"provider" koanf:"provider"`
	Model             string            `yaml:"model" koanf:"model"`
	EmbeddingProvider ProviderType      `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string            `yaml:"embedding_model" koanf:"embedding_model"`
	EmbeddingRetries  int               `yaml:"embedding_retries" koanf:"embedding_retries"`
	EmbeddingBackoff  time.Duration     `yaml:"embedding_backoff" koanf:"embedding_backoff"`
	OllamaHost        string            `yaml:"ollama_host" koanf:"ollama_host"`
	GenerationRPM     int               `yaml:"generation_rpm" koanf:"generation_rpm"`
	NamespaceFile     string            `yaml:"namespace_file" koanf:"namespace_file"`
	Search            SearchConfig      `yaml:"search" koanf:"search"`
	VectorStore       VectorStoreConfig `yaml:"vector_store" koanf:"vector_store"`
	RateLimit         RateLimitConfig   `yaml:"rate_limit" koanf:"rate_limit"`
	Server            ServerConfig      `yaml:"server" koanf:"server"`
	Overrides         []OverrideRule    `yaml:"overrides" koanf:"overrides"`
}

// SearchConfig holds the default retrieval parameters.
type SearchConfig struct {
	TopK     int     `yaml:"top_k" koanf:"top_k"`
	MinScore float64 `yaml:"min_score" koanf:"min_score"`
}

// VectorStoreConfig selects and configures the vector index backend.
type VectorStoreConfig struct {
	Type     VectorStoreType `yaml:"type" koanf:"type"`
	Pinecone PineconeConfig  `yaml:"pinecone" koanf:"pinecone"`
	Qdrant   QdrantConfig    `yaml:"qdrant" koanf:"qdrant"`
	Chromem  ChromemConfig   `yaml:"chromem" koanf:"chromem"`
}

// PineconeConfig identifies a Pinecone index. The API key is read from
// PINECONE_API_KEY.
type PineconeConfig struct {
	IndexName string `yaml:"index_name" koanf:"index_name"`
	IndexHost string `yaml:"index_host" koanf:"index_host"`
}

// QdrantConfig identifies a Qdrant collection. The optional API key is read
// from QDRANT_API_KEY.
type QdrantConfig struct {
	URL        string `yaml:"url" koanf:"url"`
	Collection string `yaml:"collection" koanf:"collection"`
}

// ChromemConfig points at a chromem-go export produced by the indexing flow.
type ChromemConfig struct {
	Path       string `yaml:"path" koanf:"path"`
	Collection string `yaml:"collection" koanf:"collection"`
}

// RateLimitConfig configures the per-client fixed window limiter.
type RateLimitConfig struct {
	Requests      int           `yaml:"requests" koanf:"requests"`
	Window        time.Duration `yaml:"window" koanf:"window"`
	SweepInterval time.Duration `yaml:"sweep_interval" koanf:"sweep_interval"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int  `yaml:"port" koanf:"port"`
	AllowAllCORS bool `yaml:"allow_all_cors" koanf:"allow_all_cors"`
}

// OverrideRule maps a normalized query to retrieval overrides and/or a
// canned answer.
type OverrideRule struct {
	Name     string  `yaml:"name" koanf:"name"`
	Query    string  `yaml:"query" koanf:"query"`
	TopK     int     `yaml:"top_k,omitempty" koanf:"top_k"`
	MinScore float64 `yaml:"min_score,omitempty" koanf:"min_score"`
	Answer   string  `yaml:"answer,omitempty" koanf:"answer"`
}
