package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"

	"dossier/internal/logging"
)

// GeminiClient implements Client on the Google Gemini API. Research
// calls enable the GoogleSearch built-in tool and harvest grounding
// sources from the response metadata.
type GeminiClient struct {
	client          *genai.Client
	model           string
	maxOutputTokens int32
	maxRetries      int
	backoffUnit     time.Duration
	timeout         time.Duration
	mu              sync.Mutex
	lastRequest     time.Time
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int32
	MaxRetries      int
}

// DefaultGeminiConfig returns sensible defaults. The large-context
// preview model needs an extended timeout.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		Model:           "gemini-3-flash-preview",
		Timeout:         10 * time.Minute,
		MaxOutputTokens: 65536,
		MaxRetries:      3,
	}
}

// NewGeminiClient creates a Gemini client with default config.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	return NewGeminiClientWithConfig(ctx, DefaultGeminiConfig(apiKey))
}

// NewGeminiClientWithConfig creates a Gemini client with custom config.
func NewGeminiClientWithConfig(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}

	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-3-flash-preview"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Minute
	}
	if config.MaxOutputTokens <= 0 {
		config.MaxOutputTokens = 65536
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:          client,
		model:           model,
		maxOutputTokens: config.MaxOutputTokens,
		maxRetries:      config.MaxRetries,
		backoffUnit:     time.Second,
		timeout:         config.Timeout,
	}, nil
}

// Generate sends a prompt and returns the completion.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.GenerateWithSystem(ctx, "", prompt)
}

// GenerateWithSystem sends a prompt with a system message.
func (c *GeminiClient) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	text, _, err := c.generate(ctx, systemPrompt, userPrompt, nil)
	return text, err
}

// Research investigates a topic with Google Search grounding. The
// returned sources are the grounding URIs, deduplicated in order.
func (c *GeminiClient) Research(ctx context.Context, topic string, queries []string) (*Research, error) {
	tools := []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	summary, sources, err := c.generate(ctx, researchSystemPrompt, researchUserPrompt(topic, queries), tools)
	if err != nil {
		return nil, fmt.Errorf("research failed: %w", err)
	}
	return &Research{
		Summary:   summary,
		Sources:   dedupe(sources),
		Queries:   queries,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func (c *GeminiClient) generate(ctx context.Context, systemPrompt, userPrompt string, tools []*genai.Tool) (string, []string, error) {
	// Auto-apply timeout if the context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.GatewayDebug("[Gemini] generate: model=%s system_len=%d user_len=%d tools=%d",
		c.model, len(systemPrompt), len(userPrompt), len(tools))

	// Rate limiting
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < minRequestInterval {
		time.Sleep(minRequestInterval - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.3),
		MaxOutputTokens: c.maxOutputTokens,
		Tools:           tools,
	}
	if systemPrompt != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}
	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	var lastErr error
	for i := 0; i <= c.maxRetries; i++ {
		if i > 0 {
			// Exponential backoff: 1s, 2s, 4s
			time.Sleep(time.Duration(1<<uint(i-1)) * c.backoffUnit)
		}

		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, genConfig)
		if err != nil {
			if retryable(err) {
				lastErr = err
				continue
			}
			logging.GatewayError("[Gemini] generate failed after %v: %v", time.Since(startTime), err)
			return "", nil, fmt.Errorf("generate content: %w", err)
		}

		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			return "", nil, ErrEmptyResponse
		}

		var result strings.Builder
		for _, part := range resp.Candidates[0].Content.Parts {
			if part != nil {
				result.WriteString(part.Text)
			}
		}
		text := strings.TrimSpace(result.String())
		if text == "" {
			return "", nil, ErrEmptyResponse
		}

		var sources []string
		if gm := resp.Candidates[0].GroundingMetadata; gm != nil {
			for _, chunk := range gm.GroundingChunks {
				if chunk != nil && chunk.Web != nil && chunk.Web.URI != "" {
					sources = append(sources, chunk.Web.URI)
				}
			}
			if len(sources) > 0 {
				logging.GatewayDebug("[Gemini] generate: grounding sources=%d queries=%v",
					len(sources), gm.WebSearchQueries)
			}
		}

		logging.Gateway("[Gemini] generate: completed in %v response_len=%d grounding_sources=%d",
			time.Since(startTime), len(text), len(sources))
		return text, sources, nil
	}

	logging.GatewayError("[Gemini] generate: max retries exceeded after %v: %v", time.Since(startTime), lastErr)
	return "", nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// SetModel changes the model used for completions.
func (c *GeminiClient) SetModel(model string) {
	c.model = model
}

// GetModel returns the current model.
func (c *GeminiClient) GetModel() string {
	return c.model
}
