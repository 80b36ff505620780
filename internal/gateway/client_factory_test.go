package gateway

import (
	"context"
	"testing"
	"time"

	"dossier/internal/config"
)

func TestDetectProvider_PrefersGemini(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("OPENAI_API_KEY", "oai-key")

	pc, err := DetectProvider()
	if err != nil {
		t.Fatalf("DetectProvider failed: %v", err)
	}
	if pc.Provider != ProviderGemini {
		t.Errorf("Expected gemini, got %s", pc.Provider)
	}
	if pc.APIKey != "gem-key" {
		t.Errorf("Expected gem-key, got %s", pc.APIKey)
	}
}

func TestDetectProvider_FallsBackToOpenAI(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "oai-key")

	pc, err := DetectProvider()
	if err != nil {
		t.Fatalf("DetectProvider failed: %v", err)
	}
	if pc.Provider != ProviderOpenAI {
		t.Errorf("Expected openai, got %s", pc.Provider)
	}
}

func TestDetectProvider_NoKeys(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := DetectProvider(); err == nil {
		t.Fatal("Expected error with no keys set")
	}
}

func TestNewClient_OpenAIOverrides(t *testing.T) {
	client, err := NewClient(context.Background(), &ProviderConfig{
		Provider: ProviderOpenAI,
		APIKey:   "test-key",
		Model:    "gpt-4o",
		BaseURL:  "http://localhost:9999/v1",
	}, 30*time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	oc, ok := client.(*OpenAIClient)
	if !ok {
		t.Fatalf("Expected *OpenAIClient, got %T", client)
	}
	if oc.GetModel() != "gpt-4o" {
		t.Errorf("Model override not applied: %s", oc.GetModel())
	}
	if oc.baseURL != "http://localhost:9999/v1" {
		t.Errorf("BaseURL override not applied: %s", oc.baseURL)
	}
}

func TestNewClient_UnknownProvider(t *testing.T) {
	if _, err := NewClient(context.Background(), &ProviderConfig{
		Provider: "mystery",
		APIKey:   "k",
	}, 0); err == nil {
		t.Fatal("Expected error for unknown provider")
	}
}

func TestNewClientFromConfig_UsesEnvWhenUnconfigured(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "oai-key")

	cfg := config.DefaultConfig()
	cfg.LLM.APIKey = ""
	cfg.LLM.Model = ""

	client, err := NewClientFromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewClientFromConfig failed: %v", err)
	}
	if _, ok := client.(*OpenAIClient); !ok {
		t.Fatalf("Expected *OpenAIClient from env fallback, got %T", client)
	}
}
