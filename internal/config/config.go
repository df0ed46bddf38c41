package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the Assurance AI agent service.
type Config struct {
	Port        int
	Version     string
	Telemetry   TelemetryConfig
	LLM         LLMConfig
	Embeddings  EmbeddingsConfig
	VectorStore VectorStoreConfig
	Workflow    WorkflowConfig
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// LLMConfig selects the completion provider used for intent classification
// and response generation.
type LLMConfig struct {
	Provider string // openai | azure-openai | anthropic | ollama
	Model    string
	APIKey   string
	Endpoint string
}

type EmbeddingsConfig struct {
	Provider string // openai | ollama
	Model    string
	APIKey   string
	Endpoint string
}

type VectorStoreConfig struct {
	Kind string // embedded | pgvector
	URL  string // pgvector connection URL
}

// WorkflowConfig carries the context-budget constants. The defaults encode
// the intended shape (intent-conditioned allocation, reserves subtracted
// up front); the exact numbers are tunable per deployment.
type WorkflowConfig struct {
	TotalBudget         int
	SystemPromptReserve int
	ResponseReserve     int
	DebugEventK         int
	DefaultEventK       int
	DocCap              int
	// ErrorRules are optional expr-lang expressions evaluated against event
	// fields to flag error events, separated by ";". Empty means built-in
	// heuristics only.
	ErrorRules []string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("ASSURANCE_PORT", 8080),
		Version: envStr("ASSURANCE_VERSION", "0.2.0"),
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "assurance-ai-agent"),
		},
		LLM: LLMConfig{
			Provider: envStr("ASSURANCE_LLM_PROVIDER", "openai"),
			Model:    envStr("ASSURANCE_LLM_MODEL", "gpt-4o-mini"),
			APIKey:   envStr("ASSURANCE_LLM_API_KEY", os.Getenv("OPENAI_API_KEY")),
			Endpoint: envStr("ASSURANCE_LLM_ENDPOINT", ""),
		},
		Embeddings: EmbeddingsConfig{
			Provider: envStr("ASSURANCE_EMBEDDINGS_PROVIDER", "openai"),
			Model:    envStr("ASSURANCE_EMBEDDINGS_MODEL", "text-embedding-3-small"),
			APIKey:   envStr("ASSURANCE_EMBEDDINGS_API_KEY", os.Getenv("OPENAI_API_KEY")),
			Endpoint: envStr("ASSURANCE_EMBEDDINGS_ENDPOINT", ""),
		},
		VectorStore: VectorStoreConfig{
			Kind: envStr("ASSURANCE_VECTORSTORE", "embedded"),
			URL:  envStr("ASSURANCE_PGVECTOR_URL", ""),
		},
		Workflow: WorkflowConfig{
			TotalBudget:         envInt("ASSURANCE_TOKEN_BUDGET", 8000),
			SystemPromptReserve: envInt("ASSURANCE_SYSTEM_RESERVE", 500),
			ResponseReserve:     envInt("ASSURANCE_RESPONSE_RESERVE", 1000),
			DebugEventK:         envInt("ASSURANCE_DEBUG_EVENT_K", 15),
			DefaultEventK:       envInt("ASSURANCE_DEFAULT_EVENT_K", 5),
			DocCap:              envInt("ASSURANCE_DOC_CAP", 3),
			ErrorRules:          envList("ASSURANCE_ERROR_RULES", ";"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key, sep string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
