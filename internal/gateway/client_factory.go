package gateway

import (
	"context"
	"fmt"
	"os"
	"time"

	"dossier/internal/config"
)

// Provider identifies an LLM provider.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ProviderConfig holds the resolved provider and API key.
type ProviderConfig struct {
	Provider   Provider
	APIKey     string
	Model      string // Optional model override
	BaseURL    string // OpenAI-compatible endpoints only
	Timeout    string
	MaxRetries int
}

// DetectProvider resolves a provider from the environment.
// Priority: GEMINI_API_KEY > OPENAI_API_KEY.
func DetectProvider() (*ProviderConfig, error) {
	providers := []struct {
		envVar   string
		provider Provider
	}{
		{"GEMINI_API_KEY", ProviderGemini},
		{"OPENAI_API_KEY", ProviderOpenAI},
	}

	for _, p := range providers {
		if key := os.Getenv(p.envVar); key != "" {
			return &ProviderConfig{
				Provider: p.provider,
				APIKey:   key,
			}, nil
		}
	}

	return nil, fmt.Errorf("no API key found; set GEMINI_API_KEY or OPENAI_API_KEY")
}

// NewClientFromConfig creates a gateway client from application config.
// An unset provider falls back to environment detection.
func NewClientFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	pc := &ProviderConfig{
		Provider:   Provider(cfg.LLM.Provider),
		APIKey:     cfg.LLM.APIKey,
		Model:      cfg.LLM.Model,
		BaseURL:    cfg.LLM.BaseURL,
		MaxRetries: cfg.LLM.MaxRetries,
	}
	if pc.APIKey == "" {
		detected, err := DetectProvider()
		if err != nil {
			return nil, err
		}
		pc.Provider = detected.Provider
		pc.APIKey = detected.APIKey
	}
	return NewClient(ctx, pc, cfg.GatewayTimeout())
}

// NewClient creates a gateway client from a resolved provider config.
func NewClient(ctx context.Context, pc *ProviderConfig, timeout time.Duration) (Client, error) {
	switch pc.Provider {
	case ProviderGemini:
		gc := DefaultGeminiConfig(pc.APIKey)
		if pc.Model != "" {
			gc.Model = pc.Model
		}
		if timeout > 0 {
			gc.Timeout = timeout
		}
		if pc.MaxRetries > 0 {
			gc.MaxRetries = pc.MaxRetries
		}
		return NewGeminiClientWithConfig(ctx, gc)

	case ProviderOpenAI:
		oc := DefaultOpenAIConfig(pc.APIKey)
		if pc.Model != "" {
			oc.Model = pc.Model
		}
		if pc.BaseURL != "" {
			oc.BaseURL = pc.BaseURL
		}
		if timeout > 0 {
			oc.Timeout = timeout
		}
		if pc.MaxRetries > 0 {
			oc.MaxRetries = pc.MaxRetries
		}
		return NewOpenAIClientWithConfig(oc), nil

	default:
		return nil, fmt.Errorf("unknown provider: %s", pc.Provider)
	}
}
