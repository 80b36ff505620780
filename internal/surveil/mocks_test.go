package surveil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"dossier/internal/gateway"
	"dossier/internal/idea"
)

var (
	_ Gateway     = (*mockGateway)(nil)
	_ ObjectStore = (*memObjects)(nil)
	_ IdeaStore   = (*mockIdeas)(nil)
)

// --- mockGateway ---

type mockGateway struct {
	mu                     sync.Mutex
	GenerateWithSystemFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	ResearchFunc           func(ctx context.Context, topic string, queries []string) (*gateway.Research, error)
	generateCalls          int
	researchCalls          int
}

func (m *mockGateway) GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	m.generateCalls++
	m.mu.Unlock()
	if m.GenerateWithSystemFunc != nil {
		return m.GenerateWithSystemFunc(ctx, systemPrompt, userPrompt)
	}
	return "{}", nil
}

func (m *mockGateway) Research(ctx context.Context, topic string, queries []string) (*gateway.Research, error) {
	m.mu.Lock()
	m.researchCalls++
	m.mu.Unlock()
	if m.ResearchFunc != nil {
		return m.ResearchFunc(ctx, topic, queries)
	}
	return &gateway.Research{Summary: "nothing notable", Sources: []string{"https://example.com/a"}}, nil
}

func (m *mockGateway) calls() (generate, research int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls, m.researchCalls
}

// --- memObjects ---

// memObjects is an in-memory object store. Latest and snapshot copies
// are written concurrently by the engine, so access is locked.
type memObjects struct {
	mu     sync.Mutex
	data   map[string][]byte
	putErr error
}

func newMemObjects() *memObjects {
	return &memObjects{data: make(map[string][]byte)}
}

func (m *memObjects) Put(ctx context.Context, key string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memObjects) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *memObjects) PutJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.Put(ctx, key, data)
}

func (m *memObjects) GetJSON(ctx context.Context, key string, v any) (bool, error) {
	data, ok, err := m.Get(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	return true, json.Unmarshal(data, v)
}

func (m *memObjects) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *memObjects) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// --- mockIdeas ---

type savedCommit struct {
	idea  *idea.Idea
	event *idea.Event
}

type mockIdeas struct {
	mu                sync.Mutex
	IdeasByStatusFunc func(ctx context.Context, statuses ...idea.Status) ([]*idea.Idea, error)
	IdeaFunc          func(ctx context.Context, ownerID, ideaID string) (*idea.Idea, error)
	saveErr           error
	saved             []savedCommit
}

func (m *mockIdeas) IdeasByStatus(ctx context.Context, statuses ...idea.Status) ([]*idea.Idea, error) {
	if m.IdeasByStatusFunc != nil {
		return m.IdeasByStatusFunc(ctx, statuses...)
	}
	return nil, nil
}

func (m *mockIdeas) Idea(ctx context.Context, ownerID, ideaID string) (*idea.Idea, error) {
	if m.IdeaFunc != nil {
		return m.IdeaFunc(ctx, ownerID, ideaID)
	}
	return nil, fmt.Errorf("no idea %s/%s", ownerID, ideaID)
}

func (m *mockIdeas) SaveIdeaWithEvent(ctx context.Context, it *idea.Idea, ev *idea.Event) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, savedCommit{idea: it, event: ev})
	return nil
}

func (m *mockIdeas) commits() []savedCommit {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]savedCommit, len(m.saved))
	copy(out, m.saved)
	return out
}
