// Package types defines the shared data model for the vision board:
// board items, chat messages, personas, and the orchestration log.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// ItemType identifies the kind of a board item. It is fixed at creation,
// with one exception: an IDEA may become a USER_STORY (content and type
// replaced together, id preserved).
type ItemType string

const (
	ItemVisionStatement ItemType = "VISION_STATEMENT"
	ItemIdea            ItemType = "IDEA"
	ItemUserStory       ItemType = "USER_STORY"
	ItemVisionImage     ItemType = "VISION_IMAGE"
)

// Priority is mutable at any time. New items default to PriorityNone.
type Priority string

const (
	PriorityNone       Priority = "NONE"
	PriorityMVP        Priority = "MVP"
	PriorityFuture     Priority = "FUTURE"
	PriorityParkingLot Priority = "PARKING_LOT"
)

// ItemContent is the tagged union behind VisionItem.Content. The active
// variant is fully determined by the item's Type; consumers switch on the
// concrete type rather than inspecting field shapes.
type ItemContent interface {
	isItemContent()
}

// TextContent backs VISION_STATEMENT and IDEA items.
type TextContent struct {
	Text string
}

func (TextContent) isItemContent() {}

// UserStory backs USER_STORY items.
type UserStory struct {
	AsA     string `json:"asA"`
	IWantTo string `json:"iWantTo"`
	SoThat  string `json:"soThat"`
}

func (UserStory) isItemContent() {}

// Sentence renders the story in the canonical one-line form used in
// prompts and display.
func (s UserStory) Sentence() string {
	return fmt.Sprintf("As a %s, I want to %s so that %s.", s.AsA, s.IWantTo, s.SoThat)
}

// VisionImage backs VISION_IMAGE items. ImageURL is a data URI holding the
// generated image bytes.
type VisionImage struct {
	Prompt   string `json:"prompt"`
	ImageURL string `json:"imageUrl"`
	Summary  string `json:"summary"`
	Haiku    string `json:"haiku,omitempty"`
}

func (VisionImage) isItemContent() {}

// VisionItem is one unit of board content.
//
// SourceItemID and SourceImageID are weak back-references (idea/statement
// that was visualized, image a story was inferred from). They are
// lookup-only and may dangle after the referent is deleted.
type VisionItem struct {
	ID                 string      `json:"id"`
	Type               ItemType    `json:"type"`
	Content            ItemContent `json:"content"`
	AcceptanceCriteria []string    `json:"acceptanceCriteria"`
	Priority           Priority    `json:"priority"`
	SourceItemID       string      `json:"sourceItemId,omitempty"`
	SourceImageID      string      `json:"sourceImageId,omitempty"`
}

// visionItemWire mirrors VisionItem with the content as raw JSON so the
// union can be encoded per the type tag.
type visionItemWire struct {
	ID                 string          `json:"id"`
	Type               ItemType        `json:"type"`
	Content            json.RawMessage `json:"content"`
	AcceptanceCriteria []string        `json:"acceptanceCriteria"`
	Priority           Priority        `json:"priority"`
	SourceItemID       string          `json:"sourceItemId,omitempty"`
	SourceImageID      string          `json:"sourceImageId,omitempty"`
}

// MarshalJSON encodes text content as a bare JSON string and structured
// content as an object, keeping the wire format of the stored records.
func (v VisionItem) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage
	var err error
	switch c := v.Content.(type) {
	case TextContent:
		raw, err = json.Marshal(c.Text)
	case UserStory:
		raw, err = json.Marshal(c)
	case VisionImage:
		raw, err = json.Marshal(c)
	case nil:
		raw, err = json.Marshal("")
	default:
		return nil, fmt.Errorf("unknown content variant %T", v.Content)
	}
	if err != nil {
		return nil, err
	}
	criteria := v.AcceptanceCriteria
	if criteria == nil {
		criteria = []string{}
	}
	return json.Marshal(visionItemWire{
		ID:                 v.ID,
		Type:               v.Type,
		Content:            raw,
		AcceptanceCriteria: criteria,
		Priority:           v.Priority,
		SourceItemID:       v.SourceItemID,
		SourceImageID:      v.SourceImageID,
	})
}

// UnmarshalJSON decodes the content variant selected by the type tag.
func (v *VisionItem) UnmarshalJSON(data []byte) error {
	var w visionItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v.ID = w.ID
	v.Type = w.Type
	v.AcceptanceCriteria = w.AcceptanceCriteria
	v.Priority = w.Priority
	v.SourceItemID = w.SourceItemID
	v.SourceImageID = w.SourceImageID

	switch w.Type {
	case ItemVisionStatement, ItemIdea:
		var text string
		if err := json.Unmarshal(w.Content, &text); err != nil {
			return fmt.Errorf("decode text content for %s: %w", w.ID, err)
		}
		v.Content = TextContent{Text: text}
	case ItemUserStory:
		var story UserStory
		if err := json.Unmarshal(w.Content, &story); err != nil {
			return fmt.Errorf("decode user story for %s: %w", w.ID, err)
		}
		v.Content = story
	case ItemVisionImage:
		var img VisionImage
		if err := json.Unmarshal(w.Content, &img); err != nil {
			return fmt.Errorf("decode image content for %s: %w", w.ID, err)
		}
		v.Content = img
	default:
		return fmt.Errorf("unknown item type %q for %s", w.Type, w.ID)
	}
	return nil
}

// Role distinguishes the two sides of a chat exchange.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is one entry in a persona's ordered, append-only history.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// LogStatus is the lifecycle state of a delegation attempt.
type LogStatus string

const (
	StatusInitiated LogStatus = "initiated"
	StatusCompleted LogStatus = "completed"
	StatusFailed    LogStatus = "failed"
)

// OrchestrationLogEntry is one row of the append-only delegation audit
// trail. Rows are never edited; a delegation produces an initiated row and
// exactly one terminal row.
type OrchestrationLogEntry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	SourceAgent string    `json:"sourceAgent"`
	TargetAgent string    `json:"targetAgent"`
	Task        string    `json:"task"`
	Status      LogStatus `json:"status"`
	Details     string    `json:"details"`
}

// Engine selects the generation backend a persona dispatches to.
type Engine string

const (
	EngineGemini Engine = "gemini"
	EngineOpenAI Engine = "openai"
)

// Persona is a static catalog entry: a named agent with a role, a backend
// engine, and a fixed personality system prompt. Never mutated at runtime.
type Persona struct {
	Name              string   `json:"name" yaml:"name"`
	Role              string   `json:"role" yaml:"role"`
	Engine            Engine   `json:"engine" yaml:"engine"`
	Skills            []string `json:"skills" yaml:"skills"`
	Personality       string   `json:"personality" yaml:"personality"`
	PersonalityPrompt string   `json:"personality_prompt" yaml:"personality_prompt"`
}
