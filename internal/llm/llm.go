// Package llm provides the single-turn completion clients used for intent
// classification and response generation. Conversation history never lives
// here; the workflow threads it into the prompt.
package llm

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/internal/config"
	"github.com/sagar-sharma-adobe/assurance-ai-agent-sub000/pkg/contracts"
)

// chatMessage is the OpenAI/Anthropic-style wire message.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 120 * time.Second}
}

// New builds the completion client selected by configuration.
func New(cfg config.LLMConfig) (contracts.LanguageModel, error) {
	switch cfg.Provider {
	case "openai", "azure-openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm: %s requires an API key", cfg.Provider)
		}
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.Endpoint, cfg.Provider == "azure-openai"), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm: anthropic requires an API key")
		}
		return NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.Endpoint), nil
	case "ollama":
		return NewOllamaClient(cfg.Endpoint, cfg.Model), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
