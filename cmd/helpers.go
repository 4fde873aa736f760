package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/ziadkadry99/ai-tutor/internal/answer"
	"github.com/ziadkadry99/ai-tutor/internal/config"
	"github.com/ziadkadry99/ai-tutor/internal/embeddings"
	"github.com/ziadkadry99/ai-tutor/internal/llm"
	"github.com/ziadkadry99/ai-tutor/internal/namespace"
	"github.com/ziadkadry99/ai-tutor/internal/ratelimit"
	"github.com/ziadkadry99/ai-tutor/internal/retrieval"
	"github.com/ziadkadry99/ai-tutor/internal/rules"
	"github.com/ziadkadry99/ai-tutor/internal/tutor"
	"github.com/ziadkadry99/ai-tutor/internal/vectordb"
)

// ollamaEmbeddingDims matches nomic-embed-text, the default Ollama embedding model.
const ollamaEmbeddingDims = 768

// app is the assembled question pipeline shared by every command.
type app struct {
	cfg        *config.Config
	namespaces *namespace.Store
	limiter    *ratelimit.Limiter
	index      vectordb.Index
	service    *tutor.Service
}

// createEmbedderFromConfig creates the query embedder, wrapped with retries.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EffectiveEmbeddingProvider()
	model := cfg.EmbeddingModel
	if model == "" || (cfg.EmbeddingProvider != "" && provider != cfg.EmbeddingProvider) {
		model = config.GetPreset(provider).EmbeddingModel
	}

	var e embeddings.Embedder
	switch provider {
	case config.ProviderGoogle:
		e = embeddings.NewGoogleEmbedder(config.APIKey(config.ProviderGoogle), embeddings.GoogleModel(model))
	case config.ProviderOpenAI:
		e = embeddings.NewOpenAIEmbedder(config.APIKey(config.ProviderOpenAI), embeddings.OpenAIModel(model))
	case config.ProviderOllama:
		e = embeddings.NewOllamaEmbedder(model, ollamaEmbeddingDims, cfg.OllamaHost)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", provider)
	}
	return embeddings.NewRetrying(e, cfg.EmbeddingRetries, cfg.EmbeddingBackoff), nil
}

// createIndexFromConfig opens the configured vector index backend.
func createIndexFromConfig(cfg *config.Config, embedder embeddings.Embedder) (vectordb.Index, error) {
	vs := cfg.VectorStore
	switch vs.Type {
	case config.VectorStorePinecone:
		return vectordb.NewPineconeIndex(vs.Pinecone.IndexHost, os.Getenv(config.PineconeAPIKeyEnv)), nil
	case config.VectorStoreQdrant:
		return vectordb.NewQdrantIndex(vs.Qdrant.URL, vs.Qdrant.Collection, os.Getenv(config.QdrantAPIKeyEnv)), nil
	case config.VectorStoreChromem:
		db, err := vectordb.LoadChromem(vs.Chromem.Path)
		if err != nil {
			return nil, fmt.Errorf("loading chromem export from %s: %w", vs.Chromem.Path, err)
		}
		return vectordb.NewChromemIndex(db, vs.Chromem.Collection, embeddings.ToChromemFunc(embedder)), nil
	default:
		return nil, fmt.Errorf("unsupported vector store %q", vs.Type)
	}
}

// createLLMProviderFromConfig creates the generation provider.
func createLLMProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	llmCfg := llm.Config{
		Provider: string(cfg.Provider),
		Model:    cfg.Model,
		APIKey:   config.APIKey(cfg.Provider),
		RPM:      cfg.GenerationRPM,
	}
	if cfg.Provider == config.ProviderOllama {
		llmCfg.BaseURL = cfg.OllamaHost
	}
	return llm.NewProvider(llmCfg)
}

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `tutor init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// quietLogs silences pipeline logging for one-shot commands unless --verbose is set.
func quietLogs() {
	if !verbose {
		log.SetOutput(io.Discard)
	}
}

// buildApp loads the config and wires the question pipeline.
func buildApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	index, err := createIndexFromConfig(cfg, embedder)
	if err != nil {
		return nil, fmt.Errorf("creating vector index: %w", err)
	}
	provider, err := createLLMProviderFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}

	table := rules.FromConfig(cfg.Overrides)
	namespaces := namespace.NewStore(cfg.NamespaceFile)
	limiter := ratelimit.New(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	searcher := retrieval.NewSearcher(embedder, index, namespaces, table, retrieval.Params{
		TopK:     cfg.Search.TopK,
		MinScore: cfg.Search.MinScore,
	})
	generator := answer.NewGenerator(provider, table)

	return &app{
		cfg:        cfg,
		namespaces: namespaces,
		limiter:    limiter,
		index:      index,
		service:    tutor.New(searcher, generator, limiter, cfg.CheckCredentials),
	}, nil
}

// close releases index connections held by backends that keep them.
func (a *app) close() {
	if c, ok := a.index.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Printf("cmd: closing vector index: %v", err)
		}
	}
}
