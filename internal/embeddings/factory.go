package embeddings

import (
	"fmt"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/config"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/contracts"
)

// New builds the embedding driver selected by configuration.
func New(cfg config.EmbeddingsConfig) (contracts.EmbeddingDriver, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("embeddings: openai requires an API key")
		}
		return NewOpenAIDriver(cfg.APIKey, cfg.Model, WithOpenAIEndpoint(cfg.Endpoint)), nil
	case "ollama":
		return NewOllamaDriver(cfg.Endpoint, cfg.Model), nil
	default:
		return nil, fmt.Errorf("embeddings: unknown provider %q", cfg.Provider)
	}
}
