package gateway

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit status", fmt.Errorf("API returned status 429"), true},
		{"rate limit text", errors.New("Rate limit exceeded, slow down"), true},
		{"resource exhausted", errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{"server error", fmt.Errorf("API returned status 503"), true},
		{"overloaded", errors.New("model is overloaded, try again"), true},
		{"connection reset", errors.New("read tcp: connection reset by peer"), true},
		{"bad request", fmt.Errorf("API request failed with status 400: bad prompt"), false},
		{"auth failure", errors.New("invalid API key"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := retryable(tt.err); got != tt.want {
				t.Errorf("retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	in := []string{
		"https://a.example/one",
		"",
		"https://b.example/two",
		"https://a.example/one",
		"https://c.example/three",
		"https://b.example/two",
	}
	got := dedupe(in)
	want := []string{
		"https://a.example/one",
		"https://b.example/two",
		"https://c.example/three",
	}
	if len(got) != len(want) {
		t.Fatalf("dedupe returned %d sources, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dedupe[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestResearchUserPrompt(t *testing.T) {
	prompt := researchUserPrompt("AI meal planner for diabetics", []string{
		"diabetic meal planning apps market",
		"  CGM integration startups ",
	})

	if !strings.Contains(prompt, "AI meal planner for diabetics") {
		t.Error("prompt missing topic")
	}
	if !strings.Contains(prompt, "- diabetic meal planning apps market\n") {
		t.Error("prompt missing first query bullet")
	}
	if !strings.Contains(prompt, "- CGM integration startups\n") {
		t.Error("query not trimmed into bullet")
	}
}
