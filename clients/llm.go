package clients

import (
	"context"
	"fmt"
	"strings"
)

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	System string
	User   string
	// Schema, when set, asks backends that support it for structured output.
	Schema      any
	SchemaName  string
	MaxTokens   int
	Temperature *float64 // nil = model default
}

// Completer is a language model backend returning the raw text of the first
// choice.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Name() string
}

// LLMConfig selects and configures one backend.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
}

// Providers lists every backend name NewCompleter accepts.
var Providers = []string{"openai", "openai-compat", "anthropic", "gemini", "ollama", "deepseek", "mistral", "groq", "llamacpp"}

// KnownProvider reports whether name is one of Providers, ignoring case.
func KnownProvider(name string) bool {
	for _, p := range Providers {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// NewCompleter builds the backend named by cfg.Provider. "openai" uses the
// OpenAI SDK directly (structured output); every other name goes through
// any-llm.
func NewCompleter(cfg LLMConfig) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "":
		return nil, fmt.Errorf("llm: provider must not be empty")
	case "openai":
		return NewOpenAI(cfg)
	default:
		return NewAnyLLM(cfg)
	}
}

// Temp returns a pointer to t for CompletionRequest.Temperature.
func Temp(t float64) *float64 { return &t }
