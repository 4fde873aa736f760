package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "TUTOR_"

// ErrMissingCredentials is returned by CheckCredentials when a required API
// key is not present in the environment.
var ErrMissingCredentials = errors.New("missing required credentials")

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (TUTOR_*). A double underscore descends
// into nested sections: TUTOR_VECTOR_STORE__TYPE -> vector_store.type.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	// A configured rule list replaces the defaults instead of merging into them.
	if k.Exists("overrides") {
		cfg.Overrides = nil
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// The upload flow publishes the Pinecone index identity in the environment.
	if cfg.VectorStore.Pinecone.IndexName == "" {
		cfg.VectorStore.Pinecone.IndexName = os.Getenv(PineconeIndexNameEnv)
	}
	if cfg.VectorStore.Pinecone.IndexHost == "" {
		cfg.VectorStore.Pinecone.IndexHost = os.Getenv(PineconeIndexHostEnv)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validProviders is the set of recognized provider values.
var validProviders = map[ProviderType]bool{
	ProviderAnthropic: true,
	ProviderOpenAI:    true,
	ProviderGoogle:    true,
	ProviderOllama:    true,
}

// validEmbeddingProviders lists providers that can produce embeddings.
var validEmbeddingProviders = map[ProviderType]bool{
	ProviderOpenAI: true,
	ProviderGoogle: true,
	ProviderOllama: true,
}

var validVectorStores = map[VectorStoreType]bool{
	VectorStorePinecone: true,
	VectorStoreQdrant:   true,
	VectorStoreChromem:  true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of anthropic, openai, google, ollama", c.Provider)
	}

	if c.Model == "" {
		return fmt.Errorf("model is required")
	}

	if c.EmbeddingProvider != "" && !validEmbeddingProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q: must be one of openai, google, ollama", c.EmbeddingProvider)
	}

	if c.EmbeddingRetries < 1 {
		return fmt.Errorf("embedding_retries must be at least 1")
	}
	if c.EmbeddingBackoff < 0 {
		return fmt.Errorf("embedding_backoff must be non-negative")
	}

	if c.GenerationRPM < 0 {
		return fmt.Errorf("generation_rpm must be non-negative")
	}

	if c.Search.TopK <= 0 {
		return fmt.Errorf("search.top_k must be positive")
	}
	if c.Search.MinScore < 0 || c.Search.MinScore > 1 {
		return fmt.Errorf("search.min_score must be within [0, 1]")
	}

	if !validVectorStores[c.VectorStore.Type] {
		return fmt.Errorf("invalid vector_store.type %q: must be one of pinecone, qdrant, chromem", c.VectorStore.Type)
	}
	switch c.VectorStore.Type {
	case VectorStorePinecone:
		if c.VectorStore.Pinecone.IndexHost == "" {
			return fmt.Errorf("vector_store.pinecone.index_host is required")
		}
	case VectorStoreQdrant:
		if c.VectorStore.Qdrant.URL == "" || c.VectorStore.Qdrant.Collection == "" {
			return fmt.Errorf("vector_store.qdrant.url and collection are required")
		}
	case VectorStoreChromem:
		if c.VectorStore.Chromem.Collection == "" {
			return fmt.Errorf("vector_store.chromem.collection is required")
		}
	}

	if c.RateLimit.Requests <= 0 {
		return fmt.Errorf("rate_limit.requests must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate_limit.window must be positive")
	}

	for i, rule := range c.Overrides {
		if strings.TrimSpace(rule.Query) == "" {
			return fmt.Errorf("overrides[%d]: query is required", i)
		}
		if rule.TopK < 0 {
			return fmt.Errorf("overrides[%d]: top_k must be non-negative", i)
		}
		if rule.MinScore < 0 || rule.MinScore > 1 {
			return fmt.Errorf("overrides[%d]: min_score must be within [0, 1]", i)
		}
	}

	return nil
}

// EffectiveEmbeddingProvider returns the provider used for embeddings.
// Providers without native embeddings fall back to OpenAI.
func (c *Config) EffectiveEmbeddingProvider() ProviderType {
	p := c.EmbeddingProvider
	if p == "" {
		p = c.Provider
	}
	if !validEmbeddingProviders[p] {
		return ProviderOpenAI
	}
	return p
}

// RequiredCredentials lists the environment variables that must be set for
// the configured providers and vector store.
func (c *Config) RequiredCredentials() []string {
	seen := make(map[string]bool)
	var vars []string
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			vars = append(vars, v)
		}
	}

	add(APIKeyEnvVar(c.Provider))
	add(APIKeyEnvVar(c.EffectiveEmbeddingProvider()))
	if c.VectorStore.Type == VectorStorePinecone {
		add(PineconeAPIKeyEnv)
	}
	return vars
}

// CheckCredentials reports which required API keys are missing from the
// environment. It reads the environment on every call.
func (c *Config) CheckCredentials() error {
	var missing []string
	for _, v := range c.RequiredCredentials() {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// Environment variables holding vector store credentials.
const (
	PineconeAPIKeyEnv    = "PINECONE_API_KEY"
	PineconeIndexNameEnv = "PINECONE_INDEX_NAME"
	PineconeIndexHostEnv = "PINECONE_INDEX_HOST"
	QdrantAPIKeyEnv      = "QDRANT_API_KEY"
)

// APIKeyEnvVar returns the conventional environment variable name for
// the API key of the given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderGoogle:
		return "GOOGLE_API_KEY"
	default:
		return ""
	}
}

// APIKey returns the API key for the given provider from the environment.
func APIKey(provider ProviderType) string {
	v := APIKeyEnvVar(provider)
	if v == "" {
		return ""
	}
	return os.Getenv(v)
}
