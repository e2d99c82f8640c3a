package orchestration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"visionboard/internal/provider"
	"visionboard/internal/registry"
	"visionboard/internal/store"
	"visionboard/internal/types"
)

// --- fakeClient ---

// fakeClient implements provider.Client with canned responses and call
// recording.
type fakeClient struct {
	response      string
	err           error
	systemPrompts []string
	userPrompts   []string
}

func (f *fakeClient) GenerateText(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.systemPrompts = append(f.systemPrompts, systemPrompt)
	f.userPrompts = append(f.userPrompts, userPrompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) GenerateStructured(ctx context.Context, systemPrompt, userPrompt, _ string) (string, error) {
	return f.GenerateText(ctx, systemPrompt, userPrompt)
}

// --- fakeChatClient ---

// fakeChatClient adds native session support on top of fakeClient.
type fakeChatClient struct {
	fakeClient
	sessionsStarted int
	sessionPrompts  []string
}

func (f *fakeChatClient) StartChat(systemPrompt string) provider.ChatSession {
	f.sessionsStarted++
	f.sessionPrompts = append(f.sessionPrompts, systemPrompt)
	return &fakeChatSession{client: f}
}

type fakeChatSession struct {
	client *fakeChatClient
	sent   []string
}

func (s *fakeChatSession) SendMessage(_ context.Context, text string) (string, error) {
	s.sent = append(s.sent, text)
	if s.client.err != nil {
		return "", s.client.err
	}
	return s.client.response, nil
}

// --- fakeConvClient ---

// fakeConvClient is a stateless backend that records replayed histories.
type fakeConvClient struct {
	fakeClient
	histories [][]provider.Turn
}

func (f *fakeConvClient) GenerateConversation(_ context.Context, systemPrompt string, history []provider.Turn, message string) (string, error) {
	f.systemPrompts = append(f.systemPrompts, systemPrompt)
	f.userPrompts = append(f.userPrompts, message)
	replay := make([]provider.Turn, len(history))
	copy(replay, history)
	f.histories = append(f.histories, replay)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// --- fakeBoard ---

type fakeBoard struct {
	items []types.VisionItem
}

func (f *fakeBoard) Items() []types.VisionItem {
	return f.items
}

// --- helpers ---

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testRegistry() *registry.Registry {
	return registry.Default()
}

func mustResolve(t *testing.T, reg *registry.Registry, name string) types.Persona {
	t.Helper()
	persona, err := reg.Resolve(name)
	require.NoError(t, err)
	return persona
}
