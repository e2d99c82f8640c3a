package orchestration

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"visionboard/internal/provider"
	"visionboard/internal/types"
)

func TestMain(m *testing.M) {
	// The genai import starts an opencensus worker at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func newTestEngine(t *testing.T, primary, fallback provider.Client) *ChatEngine {
	t.Helper()
	st := newTestStore(t)
	reg := testRegistry()
	providers := &provider.Providers{Primary: primary, Fallback: fallback}
	delegator := NewDelegator(reg, providers, &fakeBoard{}, NewLog())
	return NewChatEngine(reg, providers, st, delegator, nil)
}

func TestChatEngine_GreetingSeed(t *testing.T) {
	e := newTestEngine(t, &fakeChatClient{}, &fakeClient{})
	lyra := mustResolve(t, testRegistry(), "Lyra")

	history := e.History(lyra)
	require.Len(t, history, 1)
	assert.Equal(t, types.RoleModel, history[0].Role)
	assert.Equal(t, "You are now chatting with Lyra, the Lead UI/UX Designer.", history[0].Text)
}

func TestChatEngine_StoredHistorySkipsGreeting(t *testing.T) {
	st := newTestStore(t)
	stored := []types.ChatMessage{
		{Role: types.RoleModel, Text: "You are now chatting with Lyra, the Lead UI/UX Designer."},
		{Role: types.RoleUser, Text: "earlier question"},
		{Role: types.RoleModel, Text: "earlier answer"},
	}
	require.NoError(t, st.PutChatHistory("Lyra", stored))

	reg := testRegistry()
	providers := &provider.Providers{Primary: &fakeChatClient{}, Fallback: &fakeClient{}}
	e := NewChatEngine(reg, providers, st, NewDelegator(reg, providers, &fakeBoard{}, NewLog()), nil)

	history := e.History(mustResolve(t, reg, "Lyra"))
	assert.Len(t, history, 3, "existing history is loaded, not re-seeded")
}

func TestChatEngine_SendAppendsTurn(t *testing.T) {
	primary := &fakeChatClient{}
	primary.response = "Happy to help with the design."
	e := newTestEngine(t, primary, &fakeClient{})
	lyra := mustResolve(t, testRegistry(), "Lyra")

	appended := e.Send(context.Background(), lyra, "How should the board look?")
	require.Len(t, appended, 2)
	assert.Equal(t, types.RoleUser, appended[0].Role)
	assert.Equal(t, "How should the board look?", appended[0].Text)
	assert.Equal(t, types.RoleModel, appended[1].Role)
	assert.Equal(t, "Happy to help with the design.", appended[1].Text)

	history := e.History(lyra)
	assert.Len(t, history, 3, "greeting + user + model")
}

func TestChatEngine_SessionCreatedOncePerPersona(t *testing.T) {
	primary := &fakeChatClient{}
	primary.response = "ok"
	e := newTestEngine(t, primary, &fakeClient{})
	lyra := mustResolve(t, testRegistry(), "Lyra")

	e.Send(context.Background(), lyra, "first")
	e.Send(context.Background(), lyra, "second")

	assert.Equal(t, 1, primary.sessionsStarted)
	require.Len(t, primary.sessionPrompts, 1)
	assert.Contains(t, primary.sessionPrompts[0], "You are Lyra")
}

func TestChatEngine_ErrorTurn(t *testing.T) {
	primary := &fakeChatClient{}
	primary.err = errors.New("connection reset")
	e := newTestEngine(t, primary, &fakeClient{})
	lyra := mustResolve(t, testRegistry(), "Lyra")

	appended := e.Send(context.Background(), lyra, "hello?")
	require.Len(t, appended, 2)
	assert.Equal(t, types.RoleUser, appended[0].Role)
	assert.Equal(t, "A critical error occurred: connection reset", appended[1].Text)

	// The failed exchange stays in the history.
	assert.Len(t, e.History(lyra), 3)
}

func TestChatEngine_StatelessReplayFiltersGreeting(t *testing.T) {
	fallback := &fakeConvClient{}
	fallback.response = "pragmatic answer"
	e := newTestEngine(t, &fakeChatClient{}, fallback)
	kara := mustResolve(t, testRegistry(), "Kara")

	e.Send(context.Background(), kara, "first question")
	e.Send(context.Background(), kara, "second question")

	require.Len(t, fallback.histories, 2)
	assert.Empty(t, fallback.histories[0], "greeting never reaches the backend")

	second := fallback.histories[1]
	require.Len(t, second, 2)
	assert.True(t, second[0].FromUser)
	assert.Equal(t, "first question", second[0].Text)
	assert.False(t, second[1].FromUser)
	assert.Equal(t, "pragmatic answer", second[1].Text)

	require.Len(t, fallback.systemPrompts, 2)
	assert.Contains(t, fallback.systemPrompts[0], "You are Kara")
}

func TestChatEngine_MentionDelegatesInsteadOfChatting(t *testing.T) {
	primary := &fakeChatClient{}
	primary.response = "report body"
	e := newTestEngine(t, primary, &fakeClient{})
	lyra := mustResolve(t, testRegistry(), "Lyra")

	appended := e.Send(context.Background(), lyra, "@Andoy summarize the board")
	require.Len(t, appended, 2)
	assert.Contains(t, appended[0].Text, "Contacting @Andoy")
	assert.Contains(t, appended[1].Text, "[Report from @Andoy]:")

	// The raw @mention message is not recorded as a user turn.
	for _, msg := range e.History(lyra) {
		assert.NotEqual(t, types.RoleUser, msg.Role)
	}
	// Delegation runs stateless; no chat session is created.
	assert.Zero(t, primary.sessionsStarted)
}

func TestChatEngine_BlankInputIgnored(t *testing.T) {
	e := newTestEngine(t, &fakeChatClient{}, &fakeClient{})
	lyra := mustResolve(t, testRegistry(), "Lyra")

	assert.Nil(t, e.Send(context.Background(), lyra, "   "))
	assert.Len(t, e.History(lyra), 1)
}

func TestChatEngine_HistoriesPersist(t *testing.T) {
	st := newTestStore(t)
	reg := testRegistry()
	primary := &fakeChatClient{}
	primary.response = "persisted answer"
	providers := &provider.Providers{Primary: primary, Fallback: &fakeClient{}}
	e := NewChatEngine(reg, providers, st, NewDelegator(reg, providers, &fakeBoard{}, NewLog()), nil)
	lyra := mustResolve(t, reg, "Lyra")

	e.Send(context.Background(), lyra, "remember this")

	// A fresh engine over the same store sees the full exchange.
	e2 := NewChatEngine(reg, providers, st, NewDelegator(reg, providers, &fakeBoard{}, NewLog()), nil)
	history := e2.History(lyra)
	require.Len(t, history, 3)
	assert.Equal(t, "remember this", history[1].Text)
	assert.Equal(t, "persisted answer", history[2].Text)
}
