package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"
)

// AnyLLM is a Completer over any-llm-go. It covers the hosted Gemini model
// and a local Ollama model among others.
type AnyLLM struct {
	backend  anyllmlib.Provider
	provider string
	model    string
}

// NewAnyLLM builds the any-llm backend for cfg. Without an API key the
// backend falls back to its usual environment variable (GEMINI_API_KEY, ...).
func NewAnyLLM(cfg LLMConfig) (*AnyLLM, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("anyllm: model must not be empty")
	}
	var opts []anyllmlib.Option
	if cfg.APIKey != "" {
		opts = append(opts, anyllmlib.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anyllmlib.WithBaseURL(cfg.BaseURL))
	}
	backend, err := createBackend(cfg.Provider, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm: create %q backend: %w", cfg.Provider, err)
	}
	return &AnyLLM{backend: backend, provider: strings.ToLower(cfg.Provider), model: cfg.Model}, nil
}

func createBackend(name string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(name) {
	case "openai-compat":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: %s", name, strings.Join(Providers, ", "))
	}
}

func (a *AnyLLM) Name() string { return a.provider + "/" + a.model }

// Complete sends req and returns the first choice. A request schema becomes
// the backend's response format.
func (a *AnyLLM) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var messages []anyllmlib.Message
	if req.System != "" {
		messages = append(messages, anyllmlib.Message{Role: anyllmlib.RoleSystem, Content: req.System})
	}
	messages = append(messages, anyllmlib.Message{Role: anyllmlib.RoleUser, Content: req.User})

	format, err := a.responseFormat(req)
	if err != nil {
		return "", err
	}
	params := anyllmlib.CompletionParams{
		Model:          a.model,
		Messages:       messages,
		Temperature:    req.Temperature,
		ResponseFormat: format,
	}
	if req.MaxTokens > 0 {
		mt := req.MaxTokens
		params.MaxTokens = &mt
	}

	resp, err := a.backend.Completion(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anyllm: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("anyllm: empty choices in response")
	}
	return resp.Choices[0].Message.ContentString(), nil
}

// responseFormat maps req.Schema onto any-llm. Gemini only understands plain
// JSON mode; the other backends take the schema itself.
func (a *AnyLLM) responseFormat(req CompletionRequest) (*anyllmlib.ResponseFormat, error) {
	if req.Schema == nil {
		return nil, nil
	}
	if a.provider == "gemini" {
		return &anyllmlib.ResponseFormat{Type: "json_object"}, nil
	}
	b, err := json.Marshal(req.Schema)
	if err != nil {
		return nil, fmt.Errorf("anyllm: encode schema: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(b, &schema); err != nil {
		return nil, fmt.Errorf("anyllm: schema must be a JSON object: %w", err)
	}
	name := req.SchemaName
	if name == "" {
		name = "response"
	}
	strict := true
	return &anyllmlib.ResponseFormat{
		Type: "json_schema",
		JSONSchema: &anyllmlib.JSONSchema{
			Name:   name,
			Schema: schema,
			Strict: &strict,
		},
	}, nil
}
