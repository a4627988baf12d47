package embedder

import (
	"fmt"
	"os"
)

// EnvProvider selects the embedding provider: "openai", "jina", or
// "local". When unset the factory falls back to credential detection.
const EnvProvider = "DOCCHUNK_EMBEDDING_PROVIDER"

// Config configures embedder creation.
type Config struct {
	Provider  string
	APIKey    string
	Model     string // Optional: override the provider default
	CacheSize int    // 0 uses the default cache size
}

// New creates an embedder for the given configuration.
func New(cfg Config) (Embedder, error) {
	cache := NewCache(cfg.CacheSize)

	switch cfg.Provider {
	case ProviderOpenAI:
		p, err := NewOpenAIProvider(cfg.APIKey, cache)
		if err != nil {
			return nil, err
		}
		if cfg.Model != "" {
			p.model = cfg.Model
		}
		return p, nil
	case ProviderJina:
		p, err := NewJinaProvider(cfg.APIKey, cache)
		if err != nil {
			return nil, err
		}
		if cfg.Model != "" {
			p.model = cfg.Model
		}
		return p, nil
	case ProviderLocal:
		return NewLocalProvider(cache)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrNoProviderEnabled, cfg.Provider)
	}
}

// NewFromEnv creates an embedder from environment configuration.
// DOCCHUNK_EMBEDDING_PROVIDER picks the provider explicitly; otherwise
// the first available API key wins, and with no credentials at all the
// deterministic local provider is used.
func NewFromEnv() (Embedder, error) {
	provider := os.Getenv(EnvProvider)
	if provider == "" {
		provider = DetectProvider()
	}

	cfg := Config{Provider: provider}
	switch provider {
	case ProviderOpenAI:
		cfg.APIKey = os.Getenv(EnvOpenAIAPIKey)
	case ProviderJina:
		cfg.APIKey = os.Getenv(EnvJinaAPIKey)
	}

	return New(cfg)
}

// DetectProvider returns the provider implied by available credentials.
func DetectProvider() string {
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	if os.Getenv(EnvJinaAPIKey) != "" {
		return ProviderJina
	}
	return ProviderLocal
}
