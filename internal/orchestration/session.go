package orchestration

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"visionboard/internal/logging"
	"visionboard/internal/provider"
	"visionboard/internal/registry"
	"visionboard/internal/store"
	"visionboard/internal/types"
)

const greetingPrefix = "You are now chatting with"

// agentState is the runtime chat state for one persona: the displayed
// history plus, for session-capable backends, the lazily created session.
type agentState struct {
	mu      sync.Mutex
	history []types.ChatMessage
	session provider.ChatSession
}

// ChatEngine runs the per-persona chats and routes @mentions through the
// delegator. Histories are append-only and persisted after every change;
// a persist failure is a notice, never a rollback.
type ChatEngine struct {
	registry  *registry.Registry
	providers *provider.Providers
	store     *store.Store
	delegator *Delegator
	notify    func(message string)

	mu     sync.Mutex
	agents map[string]*agentState
}

// NewChatEngine wires a chat engine.
func NewChatEngine(reg *registry.Registry, providers *provider.Providers, st *store.Store, delegator *Delegator, notify func(string)) *ChatEngine {
	return &ChatEngine{
		registry:  reg,
		providers: providers,
		store:     st,
		delegator: delegator,
		notify:    notify,
		agents:    make(map[string]*agentState),
	}
}

func (e *ChatEngine) post(message string) {
	if e.notify != nil {
		e.notify(message)
	}
}

// stateFor returns (or lazily builds) the runtime state for a persona.
// First access loads the stored history; an empty or unloadable history
// is seeded with the greeting.
func (e *ChatEngine) stateFor(persona types.Persona) *agentState {
	e.mu.Lock()
	defer e.mu.Unlock()

	if state, ok := e.agents[persona.Name]; ok {
		return state
	}

	history, err := e.store.GetChatHistory(persona.Name)
	if err != nil {
		logging.ChatError("Failed to load chat history for %s: %v", persona.Name, err)
		history = nil
	}
	if len(history) == 0 {
		history = []types.ChatMessage{{
			Role: types.RoleModel,
			Text: fmt.Sprintf("%s %s, the %s.", greetingPrefix, persona.Name, persona.Role),
		}}
	}

	state := &agentState{history: history}
	e.agents[persona.Name] = state
	logging.Chat("Opened chat with %s (%d messages)", persona.Name, len(history))
	return state
}

// History returns a snapshot of a persona's chat history.
func (e *ChatEngine) History(persona types.Persona) []types.ChatMessage {
	state := e.stateFor(persona)
	state.mu.Lock()
	defer state.mu.Unlock()
	out := make([]types.ChatMessage, len(state.history))
	copy(out, state.history)
	return out
}

// appendLocked adds a message to the history and persists the whole
// history. Callers hold state.mu.
func (e *ChatEngine) appendLocked(persona types.Persona, state *agentState, msg types.ChatMessage) {
	state.history = append(state.history, msg)
	if err := e.store.PutChatHistory(persona.Name, state.history); err != nil {
		logging.ChatError("Failed to persist chat history for %s: %v", persona.Name, err)
		e.post("Could not save the conversation. It will be lost on refresh.")
	}
}

// replayHistory converts the displayed history into provider turns for
// stateless backends, dropping the synthetic greeting.
func replayHistory(history []types.ChatMessage) []provider.Turn {
	turns := make([]provider.Turn, 0, len(history))
	for _, msg := range history {
		if strings.HasPrefix(msg.Text, greetingPrefix) {
			continue
		}
		turns = append(turns, provider.Turn{FromUser: msg.Role == types.RoleUser, Text: msg.Text})
	}
	return turns
}

// reply generates the model's answer to text using the persona's backend.
// Session-capable backends keep their own conversation state; stateless
// ones get the prior displayed history replayed.
func (e *ChatEngine) reply(ctx context.Context, persona types.Persona, state *agentState, prior []types.ChatMessage, text string) (string, error) {
	client, err := e.providers.ForEngine(persona.Engine)
	if err != nil {
		return "", err
	}

	if chatCapable, ok := client.(provider.ChatCapable); ok {
		if state.session == nil {
			state.session = chatCapable.StartChat(persona.PersonalityPrompt)
			logging.ChatDebug("Started session for %s", persona.Name)
		}
		return state.session.SendMessage(ctx, text)
	}

	if conv, ok := client.(provider.ConversationClient); ok {
		return conv.GenerateConversation(ctx, persona.PersonalityPrompt, replayHistory(prior), text)
	}

	return client.GenerateText(ctx, persona.PersonalityPrompt, text)
}

// Send handles one user input to a persona. A message starting with an
// @mention is delegated instead of chatted; everything else is a normal
// turn. The returned messages are the ones appended by this call.
func (e *ChatEngine) Send(ctx context.Context, persona types.Persona, text string) []types.ChatMessage {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	state := e.stateFor(persona)
	state.mu.Lock()
	defer state.mu.Unlock()

	var appended []types.ChatMessage
	record := func(msg types.ChatMessage) {
		e.appendLocked(persona, state, msg)
		appended = append(appended, msg)
	}

	if targetName, task, ok := ParseMention(text); ok {
		e.delegator.Delegate(ctx, persona, targetName, task, record)
		return appended
	}

	// The user turn lands in the history before the model is called, so
	// a failed reply still shows what was asked.
	prior := make([]types.ChatMessage, len(state.history))
	copy(prior, state.history)
	record(types.ChatMessage{Role: types.RoleUser, Text: text})

	replyText, err := e.reply(ctx, persona, state, prior, text)
	if err != nil {
		logging.ChatError("Chat with %s failed: %v", persona.Name, err)
		record(types.ChatMessage{Role: types.RoleModel, Text: fmt.Sprintf("A critical error occurred: %s", err.Error())})
		return appended
	}

	record(types.ChatMessage{Role: types.RoleModel, Text: replyText})
	logging.Chat("Chat turn with %s completed (%d chars)", persona.Name, len(replyText))
	return appended
}
