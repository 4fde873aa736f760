package config

import "time"

// DefaultNamespaceFile is where the indexing flow records the active namespace.
const DefaultNamespaceFile = "data/active-namespace.json"

// modelPresets maps each provider to its default generation and embedding models.
var modelPresets = map[ProviderType]ModelPreset{
	ProviderGoogle:    {Model: "gemini-2.0-flash", EmbeddingModel: "gemini-embedding-001"},
	ProviderOpenAI:    {Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
	ProviderAnthropic: {Model: "claude-haiku-4-5-20251001", EmbeddingModel: "text-embedding-3-small"},
	ProviderOllama:    {Model: "llama3", EmbeddingModel: "nomic-embed-text"},
}

// ModelPreset describes the models to use for a given provider.
type ModelPreset struct {
	Model          string
	EmbeddingModel string
}

// DefaultOverrides is the rule table shipped with the default configuration.
var DefaultOverrides = []OverrideRule{
	{
		Name:     "quarter-vacation-order",
		Query:    "who is asked to do what",
		TopK:     10,
		MinScore: 0.5,
		Answer: "Sri P. K. Hatibaruah, Ex-SIFCS (Retd) is directed to vacate the Government Quarter " +
			"bearing Number-T-III/SP/18 immediately which is being allotted to PRO of the Hon'ble Minister " +
			"(Agriculture, Horticulture, Animal Husbandry, Veterinary & Dairy Development, Fisheries, " +
			"Food & Civil Supplies and Legal Metrology).",
	},
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderGoogle,
		Model:             "gemini-2.0-flash",
		EmbeddingProvider: ProviderGoogle,
		EmbeddingModel:    "gemini-embedding-001",
		EmbeddingRetries:  3,
		EmbeddingBackoff:  time.Second,
		NamespaceFile:     DefaultNamespaceFile,
		Search: SearchConfig{
			TopK:     5,
			MinScore: 0.6,
		},
		VectorStore: VectorStoreConfig{
			Type: VectorStorePinecone,
			Qdrant: QdrantConfig{
				URL:        "http://localhost:6333",
				Collection: "documents",
			},
			Chromem: ChromemConfig{
				Path:       "data/vectordb",
				Collection: "default",
			},
		},
		RateLimit: RateLimitConfig{
			Requests:      10,
			Window:        time.Minute,
			SweepInterval: 5 * time.Minute,
		},
		Server: ServerConfig{
			Port: 3000,
		},
		Overrides: append([]OverrideRule(nil), DefaultOverrides...),
	}
}

// GetPreset returns the model preset for the given provider.
// Returns the Google preset if the provider is not known.
func GetPreset(provider ProviderType) ModelPreset {
	if preset, ok := modelPresets[provider]; ok {
		return preset
	}
	return modelPresets[ProviderGoogle]
}
