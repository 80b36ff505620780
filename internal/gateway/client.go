// Package gateway is the AI gateway: a uniform interface over text
// generation and web-search-grounded research. Providers are treated as
// unreliable (output may be malformed) and rate/latency sensitive, so
// every client paces requests and retries transient failures with
// exponential backoff. Interpretation of model output lives upstream in
// internal/prompt; this package only moves text and harvests sources.
package gateway

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Client is the uniform interface to a text-generation model and a
// web-search-augmented research call.
type Client interface {
	// Generate sends a prompt and returns the raw completion text.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateWithSystem sends a prompt with a system message.
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Research runs a search-grounded investigation of a topic and
	// returns the summary plus the sources it was grounded on.
	Research(ctx context.Context, topic string, queries []string) (*Research, error)
}

// Research is the result of one research call.
type Research struct {
	Summary   string    `json:"summary"`
	Sources   []string  `json:"sources"`
	Queries   []string  `json:"queries"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("gateway: empty model response")

// minRequestInterval spaces consecutive requests per client to stay
// under provider rate limits during a sweep.
const minRequestInterval = 500 * time.Millisecond

// retryable reports whether an error is worth a backoff-and-retry:
// rate limits (429 / RESOURCE_EXHAUSTED) and transient server or
// transport failures. Anything else fails the call immediately.
func retryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"429", "rate limit", "resource_exhausted",
		"500", "502", "503", "unavailable", "overloaded",
		"connection reset", "connection refused", "eof",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// dedupe removes duplicate sources preserving first-seen order.
func dedupe(sources []string) []string {
	if len(sources) == 0 {
		return sources
	}
	seen := make(map[string]struct{}, len(sources))
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// researchUserPrompt builds the investigation request both providers use.
func researchUserPrompt(topic string, queries []string) string {
	var b strings.Builder
	b.WriteString("Investigate the current market reality around this business idea:\n\n")
	b.WriteString(topic)
	b.WriteString("\n\nWork through each of these angles and report concrete, recent findings (companies, launches, funding, regulation, technology shifts) with enough specificity to act on:\n")
	for _, q := range queries {
		b.WriteString("- ")
		b.WriteString(strings.TrimSpace(q))
		b.WriteString("\n")
	}
	b.WriteString("\nPrefer developments from the last 12 months. Name names; avoid generic market commentary.")
	return b.String()
}

const researchSystemPrompt = "You are a competitive-intelligence researcher. You ground every claim in real, current sources and clearly separate facts from interpretation."
