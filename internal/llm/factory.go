package llm

import "fmt"

const defaultOllamaHost = "http://localhost:11434"

// Config selects and configures a generation provider.
type Config struct {
	// Provider is one of "google", "openai", "anthropic" or "ollama".
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the API root. For ollama it is the host and
	// defaults to http://localhost:11434.
	BaseURL string
	// RPM throttles outbound calls when positive.
	RPM int
}

// NewProvider creates the provider named by cfg. A missing API key is not an
// error here; the upstream rejects the call and the caller decides how to
// degrade.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required for provider %q", cfg.Provider)
	}

	var p Provider
	switch cfg.Provider {
	case "google":
		gp := NewGoogleProvider(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			gp.baseURL = trimBase(cfg.BaseURL)
		}
		p = gp
	case "openai":
		p = NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL)
	case "anthropic":
		ap := NewAnthropicProvider(cfg.APIKey, cfg.Model)
		if cfg.BaseURL != "" {
			ap.baseURL = trimBase(cfg.BaseURL)
		}
		p = ap
	case "ollama":
		host := cfg.BaseURL
		if host == "" {
			host = defaultOllamaHost
		}
		p = NewOllamaProvider(host, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider)
	}

	if cfg.RPM > 0 {
		p = NewRateLimitedProvider(p, cfg.RPM)
	}
	return p, nil
}
