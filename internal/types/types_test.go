package types

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisionItemJSON_TextContent(t *testing.T) {
	item := VisionItem{
		ID:                 "idea-1",
		Type:               ItemIdea,
		Content:            TextContent{Text: "A new brilliant idea..."},
		AcceptanceCriteria: []string{},
		Priority:           PriorityNone,
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	// Text content is a bare JSON string on the wire.
	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, `"A new brilliant idea..."`, string(wire["content"]))

	var decoded VisionItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Empty(t, cmp.Diff(item, decoded))
}

func TestVisionItemJSON_UserStory(t *testing.T) {
	item := VisionItem{
		ID:   "story-1",
		Type: ItemUserStory,
		Content: UserStory{
			AsA:     "project manager",
			IWantTo: "track task progress visually",
			SoThat:  "I can understand the project status at a glance",
		},
		AcceptanceCriteria: []string{"Progress bar updates in real time"},
		Priority:           PriorityMVP,
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded VisionItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Empty(t, cmp.Diff(item, decoded))
}

func TestVisionItemJSON_VisionImage(t *testing.T) {
	item := VisionItem{
		ID:   "img-1",
		Type: ItemVisionImage,
		Content: VisionImage{
			Prompt:   "a city in the clouds",
			ImageURL: "data:image/jpeg;base64,abcd",
			Summary:  "A gleaming city drifts above the morning haze.",
			Haiku:    "clouds hold the city",
		},
		AcceptanceCriteria: []string{},
		Priority:           PriorityFuture,
		SourceItemID:       "idea-1",
	}

	data, err := json.Marshal(item)
	require.NoError(t, err)

	var decoded VisionItem
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Empty(t, cmp.Diff(item, decoded))
	assert.Equal(t, "idea-1", decoded.SourceItemID)
}

func TestVisionItemUnmarshal_UnknownType(t *testing.T) {
	var item VisionItem
	err := json.Unmarshal([]byte(`{"id":"x","type":"BANNER","content":"hi","acceptanceCriteria":[],"priority":"NONE"}`), &item)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown item type")
}

func TestVisionItemUnmarshal_ContentShapeMismatch(t *testing.T) {
	// USER_STORY with a bare string content must fail, not silently coerce.
	var item VisionItem
	err := json.Unmarshal([]byte(`{"id":"x","type":"USER_STORY","content":"oops","acceptanceCriteria":[],"priority":"NONE"}`), &item)
	require.Error(t, err)
}

func TestVisionItemMarshal_NilCriteriaEncodesEmptyArray(t *testing.T) {
	item := VisionItem{
		ID:       "idea-2",
		Type:     ItemIdea,
		Content:  TextContent{Text: "x"},
		Priority: PriorityNone,
	}
	data, err := json.Marshal(item)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"acceptanceCriteria":[]`)
}

func TestUserStorySentence(t *testing.T) {
	story := UserStory{AsA: "designer", IWantTo: "preview themes", SoThat: "I can iterate quickly"}
	assert.Equal(t, "As a designer, I want to preview themes so that I can iterate quickly.", story.Sentence())
}
