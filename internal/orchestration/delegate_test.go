package orchestration

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visionboard/internal/provider"
	"visionboard/internal/types"
)

func TestParseMention(t *testing.T) {
	t.Run("mention with task", func(t *testing.T) {
		target, task, ok := ParseMention("@Andoy summarize the board")
		require.True(t, ok)
		assert.Equal(t, "Andoy", target)
		assert.Equal(t, "summarize the board", task)
	})

	t.Run("mention mid-message", func(t *testing.T) {
		target, task, ok := ParseMention("hey @Stan ship the release")
		require.True(t, ok)
		assert.Equal(t, "Stan", target)
		assert.Equal(t, "ship the release", task)
	})

	t.Run("task may contain further mentions", func(t *testing.T) {
		target, task, ok := ParseMention("@Andoy ask @Stan about the pipeline")
		require.True(t, ok)
		assert.Equal(t, "Andoy", target)
		assert.Equal(t, "ask @Stan about the pipeline", task)
	})

	t.Run("no mention", func(t *testing.T) {
		_, _, ok := ParseMention("just a normal message")
		assert.False(t, ok)
	})

	t.Run("bare mention without task", func(t *testing.T) {
		_, _, ok := ParseMention("@Andoy")
		assert.False(t, ok)
	})
}

func collectMessages() (func(types.ChatMessage), *[]types.ChatMessage) {
	var messages []types.ChatMessage
	return func(msg types.ChatMessage) { messages = append(messages, msg) }, &messages
}

func newTestDelegator(primary, fallback provider.Client, items []types.VisionItem) *Delegator {
	providers := &provider.Providers{Primary: primary, Fallback: fallback}
	return NewDelegator(testRegistry(), providers, &fakeBoard{items: items}, NewLog())
}

func TestDelegate_TwoRowProtocol(t *testing.T) {
	primary := &fakeClient{response: "The board looks healthy."}
	d := newTestDelegator(primary, &fakeClient{}, nil)
	source := mustResolve(t, testRegistry(), "Lyra")

	post, messages := collectMessages()
	d.Delegate(context.Background(), source, "Andoy", "summarize the board", post)

	entries := d.Log().Entries()
	require.Len(t, entries, 2)

	assert.Equal(t, types.StatusInitiated, entries[0].Status)
	assert.Equal(t, "Lyra", entries[0].SourceAgent)
	assert.Equal(t, "Andoy", entries[0].TargetAgent)
	assert.Equal(t, "summarize the board", entries[0].Task)
	assert.Equal(t, "Task: summarize the board", entries[0].Details)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)

	assert.Equal(t, types.StatusCompleted, entries[1].Status)
	assert.Equal(t, "The board looks healthy....", entries[1].Details)

	require.Len(t, *messages, 2)
	assert.Contains(t, (*messages)[0].Text, "Contacting @Andoy")
	assert.Equal(t, "[Report from @Andoy]:\n\nThe board looks healthy.", (*messages)[1].Text)
	assert.Equal(t, types.RoleModel, (*messages)[1].Role)

	// The target persona's personality drives the call.
	require.Len(t, primary.systemPrompts, 1)
	assert.Contains(t, primary.systemPrompts[0], "You are Andoy")
}

func TestDelegate_UnknownTarget(t *testing.T) {
	primary := &fakeClient{response: "unused"}
	d := newTestDelegator(primary, &fakeClient{}, nil)
	source := mustResolve(t, testRegistry(), "Lyra")

	post, messages := collectMessages()
	d.Delegate(context.Background(), source, "Zorp", "do anything", post)

	// Exactly one message, zero log rows, no backend call.
	require.Len(t, *messages, 1)
	assert.Equal(t, "Couldn't find an agent named @Zorp.", (*messages)[0].Text)
	assert.Zero(t, d.Log().Len())
	assert.Empty(t, primary.userPrompts)
}

func TestDelegate_TargetResolvesCaseInsensitively(t *testing.T) {
	primary := &fakeClient{response: "done"}
	d := newTestDelegator(primary, &fakeClient{}, nil)
	source := mustResolve(t, testRegistry(), "Lyra")

	post, messages := collectMessages()
	d.Delegate(context.Background(), source, "andoy", "plan the release", post)

	entries := d.Log().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Andoy", entries[0].TargetAgent, "log records the canonical name")
	assert.Contains(t, (*messages)[0].Text, "@Andoy")
}

func TestDelegate_FailurePath(t *testing.T) {
	primary := &fakeClient{err: errors.New("rate limit exceeded")}
	d := newTestDelegator(primary, &fakeClient{}, nil)
	source := mustResolve(t, testRegistry(), "Lyra")

	post, messages := collectMessages()
	d.Delegate(context.Background(), source, "Andoy", "summarize everything", post)

	entries := d.Log().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, types.StatusInitiated, entries[0].Status)
	assert.Equal(t, types.StatusFailed, entries[1].Status)
	assert.Equal(t, "rate limit exceeded", entries[1].Details)

	require.Len(t, *messages, 2)
	assert.Equal(t, "@Andoy encountered an error: rate limit exceeded", (*messages)[1].Text)
}

func TestDelegate_FallbackEngine(t *testing.T) {
	primary := &fakeClient{response: "from gemini"}
	fallback := &fakeClient{response: "from openai"}
	d := newTestDelegator(primary, fallback, nil)
	source := mustResolve(t, testRegistry(), "Andoy")

	// Kara is the only fallback-engine persona.
	post, messages := collectMessages()
	d.Delegate(context.Background(), source, "Kara", "review the components", post)

	assert.Empty(t, primary.userPrompts)
	require.Len(t, fallback.userPrompts, 1)
	assert.Contains(t, (*messages)[1].Text, "from openai")
}

func TestDelegate_FallbackNotConfigured(t *testing.T) {
	fallback := &fakeClient{err: provider.ErrNotConfigured}
	d := newTestDelegator(&fakeClient{}, fallback, nil)
	source := mustResolve(t, testRegistry(), "Andoy")

	post, messages := collectMessages()
	d.Delegate(context.Background(), source, "Kara", "review the components", post)

	entries := d.Log().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, types.StatusFailed, entries[1].Status)
	assert.Contains(t, (*messages)[1].Text, "@Kara encountered an error")
}

func TestDelegate_DetailsTruncation(t *testing.T) {
	long := strings.Repeat("x", 250)
	d := newTestDelegator(&fakeClient{response: long}, &fakeClient{}, nil)
	source := mustResolve(t, testRegistry(), "Lyra")

	post, _ := collectMessages()
	d.Delegate(context.Background(), source, "Andoy", "summarize", post)

	entries := d.Log().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, strings.Repeat("x", 100)+"...", entries[1].Details)
}

func TestDelegate_DetailsTruncationMultiByte(t *testing.T) {
	long := strings.Repeat("日", 120)
	d := newTestDelegator(&fakeClient{response: long}, &fakeClient{}, nil)
	source := mustResolve(t, testRegistry(), "Lyra")

	post, _ := collectMessages()
	d.Delegate(context.Background(), source, "Andoy", "summarize", post)

	entries := d.Log().Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, strings.Repeat("日", 100)+"...", entries[1].Details)
	assert.True(t, utf8.ValidString(entries[1].Details))
}

func TestBuildTaskPrompt_Buckets(t *testing.T) {
	items := []types.VisionItem{
		{ID: "i1", Type: types.ItemIdea, Content: types.TextContent{Text: "idea one"}, AcceptanceCriteria: []string{}, Priority: types.PriorityMVP},
		{ID: "i2", Type: types.ItemIdea, Content: types.TextContent{Text: "idea two"}, AcceptanceCriteria: []string{}, Priority: types.PriorityNone},
		{ID: "s1", Type: types.ItemUserStory, Content: types.UserStory{AsA: "a", IWantTo: "b", SoThat: "c"}, AcceptanceCriteria: []string{}, Priority: types.PriorityMVP},
	}

	t.Run("summarize", func(t *testing.T) {
		prompt, err := buildTaskPrompt("please summarize the board", items)
		require.NoError(t, err)
		assert.Contains(t, prompt, "inspiring project vision summary")
		assert.Contains(t, prompt, "idea two", "summarize sees the whole board")
	})

	t.Run("summary keyword matches the summarize bucket", func(t *testing.T) {
		prompt, err := buildTaskPrompt("give me a summary", items)
		require.NoError(t, err)
		assert.Contains(t, prompt, "inspiring project vision summary")
	})

	t.Run("analyze", func(t *testing.T) {
		prompt, err := buildTaskPrompt("analyze our priorities", items)
		require.NoError(t, err)
		assert.Contains(t, prompt, "distribution of priorities")
	})

	t.Run("plan sees only MVP items", func(t *testing.T) {
		prompt, err := buildTaskPrompt("plan the next phase", items)
		require.NoError(t, err)
		assert.Contains(t, prompt, "high-level project plan")
		assert.Contains(t, prompt, "i1")
		assert.NotContains(t, prompt, "idea two")
	})

	t.Run("vision sees only ideas", func(t *testing.T) {
		prompt, err := buildTaskPrompt("craft a new vision statement", items)
		require.NoError(t, err)
		assert.Contains(t, prompt, "new vision statement")
		assert.Contains(t, prompt, "idea one")
		assert.NotContains(t, prompt, "s1")
	})

	t.Run("generic carries the raw task and whole board", func(t *testing.T) {
		prompt, err := buildTaskPrompt("audit the dependencies", items)
		require.NoError(t, err)
		assert.Contains(t, prompt, `"audit the dependencies"`)
		assert.Contains(t, prompt, "i2")
	})

	t.Run("first matching bucket wins", func(t *testing.T) {
		// Contains both "plan" and "summarize"; summarize is checked first.
		prompt, err := buildTaskPrompt("plan and also summarize the board", items)
		require.NoError(t, err)
		assert.Contains(t, prompt, "inspiring project vision summary")
		assert.NotContains(t, prompt, "high-level project plan")
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		prompt, err := buildTaskPrompt("ANALYZE the board", items)
		require.NoError(t, err)
		assert.Contains(t, prompt, "distribution of priorities")
	})
}
