package orchestration

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"visionboard/internal/logging"
	"visionboard/internal/provider"
	"visionboard/internal/registry"
	"visionboard/internal/types"
)

// mentionRegex splits "@Name task..." into target and task. The task may
// itself contain further @ characters; only the first mention delegates.
var mentionRegex = regexp.MustCompile(`@(\w+)\s+(.*)`)

// ParseMention extracts a delegation target and task from a message.
// Returns ok=false when the message contains no mention.
func ParseMention(message string) (target, task string, ok bool) {
	m := mentionRegex.FindStringSubmatch(message)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// BoardProvider supplies the board snapshot a delegated task runs against.
type BoardProvider interface {
	Items() []types.VisionItem
}

// Delegator routes delegated tasks to target personas and records the
// outcome in the orchestration log.
type Delegator struct {
	registry  *registry.Registry
	providers *provider.Providers
	board     BoardProvider
	log       *Log
}

// NewDelegator wires a delegator over the persona catalog, the backends,
// and the board.
func NewDelegator(reg *registry.Registry, providers *provider.Providers, board BoardProvider, log *Log) *Delegator {
	return &Delegator{registry: reg, providers: providers, board: board, log: log}
}

// Log returns the audit log.
func (d *Delegator) Log() *Log {
	return d.log
}

// buildTaskPrompt classifies the task into a keyword bucket and renders
// the prompt it runs with. First matching bucket wins; keywords are
// matched as substrings, case-insensitively.
func buildTaskPrompt(task string, items []types.VisionItem) (string, error) {
	lower := strings.ToLower(task)

	switch {
	case strings.Contains(lower, "summarize") || strings.Contains(lower, "summary"):
		itemsJSON, err := json.Marshal(items)
		if err != nil {
			return "", fmt.Errorf("failed to encode board items: %w", err)
		}
		return fmt.Sprintf("The following is a list of items from a vision board: %s. Synthesize these points into a short, inspiring project vision summary. Focus on the MVP items first.", itemsJSON), nil

	case strings.Contains(lower, "analyze"):
		itemsJSON, err := json.Marshal(items)
		if err != nil {
			return "", fmt.Errorf("failed to encode board items: %w", err)
		}
		return fmt.Sprintf("Analyze the following vision board items and provide a summary of the distribution of priorities (MVP, Future, etc.) and item types (Idea, User Story, etc.). Provide some key insights. Items: %s", itemsJSON), nil

	case strings.Contains(lower, "plan"):
		var mvp []types.VisionItem
		for _, item := range items {
			if item.Priority == types.PriorityMVP {
				mvp = append(mvp, item)
			}
		}
		mvpJSON, err := json.Marshal(mvp)
		if err != nil {
			return "", fmt.Errorf("failed to encode MVP items: %w", err)
		}
		return fmt.Sprintf("Create a high-level project plan based on these MVP items: %s. Outline the key phases and deliverables.", mvpJSON), nil

	case strings.Contains(lower, "vision"):
		var ideas []types.VisionItem
		for _, item := range items {
			if item.Type == types.ItemIdea {
				ideas = append(ideas, item)
			}
		}
		ideasJSON, err := json.Marshal(ideas)
		if err != nil {
			return "", fmt.Errorf("failed to encode idea items: %w", err)
		}
		return fmt.Sprintf("Based on these raw ideas, craft an inspiring and powerful new vision statement for the project: %s", ideasJSON), nil

	default:
		itemsJSON, err := json.Marshal(items)
		if err != nil {
			return "", fmt.Errorf("failed to encode board items: %w", err)
		}
		return fmt.Sprintf("I have been asked by the user to perform the following task: %q. Please execute this based on your role and capabilities. For context, here is the current vision board data: %s", task, itemsJSON), nil
	}
}

// Delegate runs one delegation from sourceAgent against the mentioned
// target. Every message produced lands in the source agent's chat via
// post. An unknown target yields exactly one message and no log rows; a
// resolved delegation yields an initiated row and exactly one terminal
// row.
func (d *Delegator) Delegate(ctx context.Context, sourceAgent types.Persona, targetName, task string, post func(types.ChatMessage)) {
	logging.Delegation("Delegation from %s to @%s: %q", sourceAgent.Name, targetName, task)

	target, err := d.registry.Resolve(targetName)
	if err != nil {
		logging.DelegationError("Unknown delegation target @%s", targetName)
		post(types.ChatMessage{Role: types.RoleModel, Text: fmt.Sprintf("Couldn't find an agent named @%s.", targetName)})
		return
	}

	post(types.ChatMessage{Role: types.RoleModel, Text: fmt.Sprintf("Contacting @%s to action: %q...", target.Name, task)})

	d.log.Append(sourceAgent.Name, target.Name, task, types.StatusInitiated, "Task: "+task)

	result, err := d.execute(ctx, target, task)
	if err != nil {
		logging.DelegationError("Delegation to @%s failed: %v", target.Name, err)
		d.log.Append(sourceAgent.Name, target.Name, task, types.StatusFailed, err.Error())
		post(types.ChatMessage{Role: types.RoleModel, Text: fmt.Sprintf("@%s encountered an error: %s", target.Name, err.Error())})
		return
	}

	d.log.Append(sourceAgent.Name, target.Name, task, types.StatusCompleted, truncateDetails(result))
	post(types.ChatMessage{Role: types.RoleModel, Text: fmt.Sprintf("[Report from @%s]:\n\n%s", target.Name, result)})
	logging.Delegation("Delegation to @%s completed (%d chars)", target.Name, len(result))
}

// execute classifies the task, picks the target's backend, and runs the
// prompt under the target's personality.
func (d *Delegator) execute(ctx context.Context, target types.Persona, task string) (string, error) {
	userPrompt, err := buildTaskPrompt(task, d.board.Items())
	if err != nil {
		return "", err
	}
	client, err := d.providers.ForEngine(target.Engine)
	if err != nil {
		return "", err
	}
	return client.GenerateText(ctx, target.PersonalityPrompt, userPrompt)
}

// truncateDetails shortens a result for the log's details column.
// Truncation counts runes so a multi-byte result stays valid UTF-8.
func truncateDetails(result string) string {
	runes := []rune(result)
	if len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return result + "..."
}
