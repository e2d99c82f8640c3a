package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"visionboard/internal/types"
)

// Typed enrichment helpers. Each wraps a structured or free-text
// generation call with its prompt and schema, then decodes the result.
// A response that fails to decode is an error; there is no salvage pass.

const userStorySchema = `{
  "type": "object",
  "properties": {
    "asA": {"type": "string", "description": "The user persona or role. Example: 'a project manager'"},
    "iWantTo": {"type": "string", "description": "The action the user wants to perform. Example: 'track task progress visually'"},
    "soThat": {"type": "string", "description": "The benefit or goal the user achieves. Example: 'I can understand the project status at a glance'"}
  },
  "required": ["asA", "iWantTo", "soThat"]
}`

const ideasSchema = `{
  "type": "object",
  "properties": {
    "ideas": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["ideas"]
}`

const criteriaSchema = `{
  "type": "object",
  "properties": {
    "criteria": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["criteria"]
}`

const styleSuggestionsSchema = `{
  "type": "object",
  "properties": {
    "suggestions": {
      "type": "array",
      "description": "An array of 3 style suggestions.",
      "items": {
        "type": "object",
        "properties": {
          "styleName": {"type": "string", "description": "A catchy name for the art style, e.g., 'Cinematic Noir'."},
          "promptHint": {"type": "string", "description": "A detailed hint to be appended to a prompt for image generation, e.g., 'ultra-realistic, dramatic shadows, film grain, 8k'."}
        },
        "required": ["styleName", "promptHint"]
      }
    }
  },
  "required": ["suggestions"]
}`

// StyleSuggestion is one art-style proposal for visualizing an item.
type StyleSuggestion struct {
	StyleName  string `json:"styleName"`
	PromptHint string `json:"promptHint"`
}

// GenerateIdeas brainstorms a short list of ideas for a topic.
func GenerateIdeas(ctx context.Context, client Client, topic string) ([]string, error) {
	prompt := fmt.Sprintf("Brainstorm 5 concise, actionable ideas related to the following topic: %q. Present them as a simple list.", topic)
	raw, err := client.GenerateStructured(ctx, "", prompt, ideasSchema)
	if err != nil {
		return nil, err
	}
	var out struct {
		Ideas []string `json:"ideas"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to decode ideas: %w", err)
	}
	return out.Ideas, nil
}

// GenerateUserStory turns an idea into a structured user story.
func GenerateUserStory(ctx context.Context, client Client, idea string) (types.UserStory, error) {
	prompt := fmt.Sprintf("Based on this idea: %q, create a user story with the format: 'As a [user type], I want to [action], so that [benefit].'", idea)
	raw, err := client.GenerateStructured(ctx, "", prompt, userStorySchema)
	if err != nil {
		return types.UserStory{}, err
	}
	var story types.UserStory
	if err := json.Unmarshal([]byte(raw), &story); err != nil {
		return types.UserStory{}, fmt.Errorf("failed to decode user story: %w", err)
	}
	return story, nil
}

// GenerateAcceptanceCriteria produces 3-5 acceptance criteria for a story.
func GenerateAcceptanceCriteria(ctx context.Context, client Client, story types.UserStory) ([]string, error) {
	prompt := fmt.Sprintf("Generate a list of 3-5 acceptance criteria for the following user story: %q.", story.Sentence())
	raw, err := client.GenerateStructured(ctx, "", prompt, criteriaSchema)
	if err != nil {
		return nil, err
	}
	var out struct {
		Criteria []string `json:"criteria"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to decode criteria: %w", err)
	}
	return out.Criteria, nil
}

// priorityContext phrases a priority for style-suggestion prompts.
func priorityContext(p types.Priority) string {
	switch p {
	case types.PriorityMVP:
		return "This is a critical, core feature for the Minimum Viable Product."
	case types.PriorityFuture:
		return "This is a feature planned for a future release, good for aspirational visuals."
	case types.PriorityParkingLot:
		return "This is an idea that is currently on hold, but worth exploring visually."
	default:
		return "This item has no specific priority."
	}
}

// GenerateStyleSuggestions proposes three art styles for visualizing an
// item, weighted by its priority.
func GenerateStyleSuggestions(ctx context.Context, client Client, content string, priority types.Priority) ([]StyleSuggestion, error) {
	prompt := fmt.Sprintf("For the project idea: %q, which has a priority context of %q, suggest 3 distinct photorealistic art styles for a promotional or conceptual image. For each style, provide a name and a detailed prompt hint.", content, priorityContext(priority))
	raw, err := client.GenerateStructured(ctx, "", prompt, styleSuggestionsSchema)
	if err != nil {
		return nil, err
	}
	var out struct {
		Suggestions []StyleSuggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("failed to decode style suggestions: %w", err)
	}
	return out.Suggestions, nil
}

// SummarizeVision synthesizes board items into a project vision summary.
// Items are flattened to type/content/priority JSON before prompting.
func SummarizeVision(ctx context.Context, client Client, items []types.VisionItem) (string, error) {
	type flatItem struct {
		Type     types.ItemType `json:"type"`
		Content  interface{}    `json:"content"`
		Priority types.Priority `json:"priority"`
	}
	flat := make([]flatItem, 0, len(items))
	for _, item := range items {
		var content interface{} = item.Content
		if text, ok := item.Content.(types.TextContent); ok {
			content = text.Text
		}
		flat = append(flat, flatItem{Type: item.Type, Content: content, Priority: item.Priority})
	}
	itemsJSON, err := json.Marshal(flat)
	if err != nil {
		return "", fmt.Errorf("failed to encode board items: %w", err)
	}
	prompt := fmt.Sprintf("The following is a list of items from a vision board: %s. Synthesize these points into a short, actionable project vision summary, in the style of a seasoned lead architect. Focus on the MVP items first, and outline the core tech stack implications.", itemsJSON)
	return client.GenerateText(ctx, "", prompt)
}

// SummarizePrompt produces a one-sentence poetic summary of an image prompt.
func SummarizePrompt(ctx context.Context, client Client, prompt string) (string, error) {
	p := fmt.Sprintf("Analyze this prompt and provide a one-sentence, poetic summary of the visual it describes: %q", prompt)
	return client.GenerateText(ctx, "", p)
}

// GenerateHaiku writes a haiku on a theme.
func GenerateHaiku(ctx context.Context, client Client, theme string) (string, error) {
	prompt := fmt.Sprintf("Based on the following theme, write a haiku (5-7-5 syllables): %q", theme)
	return client.GenerateText(ctx, "", prompt)
}

// GenerateStoryFromInference invents a user story from an image's summary
// and a genre.
func GenerateStoryFromInference(ctx context.Context, client Client, summary, genre string) (types.UserStory, error) {
	prompt := fmt.Sprintf("Based on the visual concept of %q and the genre %q, create a compelling user story. The story must be in the format: 'As a [character], I want to [action/plot point], so that [goal/outcome]'. Be creative and ensure the character, action, and goal are fitting for the specified genre.", summary, genre)
	raw, err := client.GenerateStructured(ctx, "", prompt, userStorySchema)
	if err != nil {
		return types.UserStory{}, err
	}
	var story types.UserStory
	if err := json.Unmarshal([]byte(raw), &story); err != nil {
		return types.UserStory{}, fmt.Errorf("failed to decode user story: %w", err)
	}
	return story, nil
}
