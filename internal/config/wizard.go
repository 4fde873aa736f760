package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to tutor! Let's configure the document Q&A service.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Generation provider.
	providerPrompt := promptui.Select{
		Label: "Select answer generation provider",
		Items: []string{"google", "openai", "anthropic", "ollama"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	preset := GetPreset(cfg.Provider)
	cfg.Model = preset.Model
	cfg.EmbeddingProvider = embeddingProviderFor(cfg.Provider)
	cfg.EmbeddingModel = GetPreset(cfg.EmbeddingProvider).EmbeddingModel

	// 2. Vector index backend.
	storePrompt := promptui.Select{
		Label: "Select vector index",
		Items: []string{
			"pinecone: hosted index, namespaces per document",
			"qdrant  : self-hosted, namespace stored in payload",
			"chromem : local export, one collection per namespace",
		},
	}
	storeIdx, _, err := storePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("vector index selection: %w", err)
	}
	stores := []VectorStoreType{VectorStorePinecone, VectorStoreQdrant, VectorStoreChromem}
	cfg.VectorStore.Type = stores[storeIdx]

	// 3. Index identity.
	switch cfg.VectorStore.Type {
	case VectorStorePinecone:
		name, err := ask("Pinecone index name", os.Getenv(PineconeIndexNameEnv))
		if err != nil {
			return nil, err
		}
		host, err := ask("Pinecone index host", os.Getenv(PineconeIndexHostEnv))
		if err != nil {
			return nil, err
		}
		cfg.VectorStore.Pinecone = PineconeConfig{IndexName: name, IndexHost: host}
	case VectorStoreQdrant:
		url, err := ask("Qdrant URL", cfg.VectorStore.Qdrant.URL)
		if err != nil {
			return nil, err
		}
		collection, err := ask("Qdrant collection", cfg.VectorStore.Qdrant.Collection)
		if err != nil {
			return nil, err
		}
		cfg.VectorStore.Qdrant = QdrantConfig{URL: url, Collection: collection}
	case VectorStoreChromem:
		path, err := ask("chromem export directory", cfg.VectorStore.Chromem.Path)
		if err != nil {
			return nil, err
		}
		cfg.VectorStore.Chromem.Path = path
	}

	// 4. Namespace pointer location.
	nsFile, err := ask("Active namespace file", cfg.NamespaceFile)
	if err != nil {
		return nil, err
	}
	cfg.NamespaceFile = nsFile

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Check for API keys.
	var missing []string
	for _, v := range cfg.RequiredCredentials() {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		fmt.Printf("\nNote: Set %s in your environment (or .env) before running tutor server.\n", strings.Join(missing, ", "))
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func ask(label, def string) (string, error) {
	p := promptui.Prompt{Label: label, Default: def}
	v, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(v), nil
}

// embeddingProviderFor returns the default embedding provider for a given
// generation provider. Anthropic has no embeddings API, so OpenAI is used.
func embeddingProviderFor(p ProviderType) ProviderType {
	if p == ProviderAnthropic {
		return ProviderOpenAI
	}
	return p
}
