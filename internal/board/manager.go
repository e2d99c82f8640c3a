// Package board holds the in-memory board state and the operations that
// mutate it. Writes are optimistic: memory is updated first, then the
// store; a failed persist surfaces as a notice, never as a rollback.
package board

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"visionboard/internal/logging"
	"visionboard/internal/provider"
	"visionboard/internal/store"
	"visionboard/internal/types"
)

const visualizePromptPrefix = "Photorealistic, cinematic, high-detail, epic lighting: "

// NotifyFunc receives user-facing notices (persist failures, batch
// visualize shortfalls). Nil disables notices.
type NotifyFunc func(message string)

// Manager owns the board items and applies operations to them.
type Manager struct {
	mu        sync.RWMutex
	items     []types.VisionItem
	store     *store.Store
	providers *provider.Providers
	notify    NotifyFunc
}

// NewManager loads board state from the store. A load failure starts a
// fresh board with a notice rather than failing.
func NewManager(st *store.Store, providers *provider.Providers, notify NotifyFunc) *Manager {
	m := &Manager{store: st, providers: providers, notify: notify}
	items, err := st.GetAllItems()
	if err != nil {
		logging.BoardWarn("Failed to load items: %v", err)
		m.post("Could not load saved data. Working with a fresh board.")
	} else {
		m.items = items
	}
	logging.Board("Board loaded with %d items", len(m.items))
	return m
}

func (m *Manager) post(message string) {
	if m.notify != nil {
		m.notify(message)
	}
}

// persist writes one item through to the store. Failures are reported and
// swallowed; the in-memory write stands.
func (m *Manager) persist(item types.VisionItem, failureNotice string) {
	if err := m.store.PutItem(item); err != nil {
		logging.BoardWarn("Persist failed for %s: %v", item.ID, err)
		m.post(failureNotice)
	}
}

// Items returns a snapshot of the board.
func (m *Manager) Items() []types.VisionItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.VisionItem, len(m.items))
	copy(out, m.items)
	return out
}

// Get returns the item with the given id.
func (m *Manager) Get(id string) (types.VisionItem, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if item.ID == id {
			return item, true
		}
	}
	return types.VisionItem{}, false
}

// AddItem creates a statement or idea with placeholder content and
// prepends it to the board.
func (m *Manager) AddItem(itemType types.ItemType) (types.VisionItem, error) {
	var text string
	switch itemType {
	case types.ItemVisionStatement:
		text = "My vision is to..."
	case types.ItemIdea:
		text = "A new brilliant idea..."
	default:
		return types.VisionItem{}, fmt.Errorf("cannot add item of type %s", itemType)
	}

	item := types.VisionItem{
		ID:                 uuid.NewString(),
		Type:               itemType,
		Content:            types.TextContent{Text: text},
		AcceptanceCriteria: []string{},
		Priority:           types.PriorityNone,
	}

	m.mu.Lock()
	m.items = append([]types.VisionItem{item}, m.items...)
	m.mu.Unlock()

	logging.Board("Added %s item %s", itemType, item.ID)
	m.persist(item, "Could not save the new item. It will be lost on refresh.")
	return item, nil
}

// UpdateItem replaces an existing item wholesale.
func (m *Manager) UpdateItem(updated types.VisionItem) error {
	m.mu.Lock()
	found := false
	for i, item := range m.items {
		if item.ID == updated.ID {
			m.items[i] = updated
			found = true
			break
		}
	}
	m.mu.Unlock()
	if !found {
		return fmt.Errorf("item %s not found", updated.ID)
	}

	logging.BoardDebug("Updated item %s", updated.ID)
	m.persist(updated, "Could not save your changes. They will be lost on refresh.")
	return nil
}

// DeleteItem removes an item. Deleting an unknown id is a no-op.
func (m *Manager) DeleteItem(id string) {
	m.mu.Lock()
	filtered := m.items[:0]
	for _, item := range m.items {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	m.items = filtered
	m.mu.Unlock()

	logging.Board("Deleted item %s", id)
	if err := m.store.DeleteItem(id); err != nil {
		logging.BoardWarn("Delete persist failed for %s: %v", id, err)
		m.post("Could not delete the item from storage.")
	}
}

// SetPriority changes an item's priority.
func (m *Manager) SetPriority(id string, priority types.Priority) error {
	item, ok := m.Get(id)
	if !ok {
		return fmt.Errorf("item %s not found", id)
	}
	item.Priority = priority
	return m.UpdateItem(item)
}

// ConvertToStory turns an idea into a user story in place: same id, new
// type and content. Only ideas convert.
func (m *Manager) ConvertToStory(ctx context.Context, id string) (types.VisionItem, error) {
	item, ok := m.Get(id)
	if !ok {
		return types.VisionItem{}, fmt.Errorf("item %s not found", id)
	}
	text, ok := item.Content.(types.TextContent)
	if !ok || item.Type != types.ItemIdea {
		return types.VisionItem{}, fmt.Errorf("item %s is not a convertible idea", id)
	}

	story, err := provider.GenerateUserStory(ctx, m.providers.Primary, text.Text)
	if err != nil {
		return types.VisionItem{}, fmt.Errorf("failed to convert to a user story: %w", err)
	}

	item.Type = types.ItemUserStory
	item.Content = story
	if err := m.UpdateItem(item); err != nil {
		return types.VisionItem{}, err
	}
	return item, nil
}

// AppendCriteria generates acceptance criteria for a story and appends
// them to whatever criteria the item already carries.
func (m *Manager) AppendCriteria(ctx context.Context, id string) (types.VisionItem, error) {
	item, ok := m.Get(id)
	if !ok {
		return types.VisionItem{}, fmt.Errorf("item %s not found", id)
	}
	story, ok := item.Content.(types.UserStory)
	if !ok {
		return types.VisionItem{}, fmt.Errorf("item %s is not a user story", id)
	}

	criteria, err := provider.GenerateAcceptanceCriteria(ctx, m.providers.Primary, story)
	if err != nil {
		return types.VisionItem{}, fmt.Errorf("could not generate acceptance criteria: %w", err)
	}
	if len(criteria) == 0 {
		return types.VisionItem{}, fmt.Errorf("could not generate acceptance criteria")
	}

	item.AcceptanceCriteria = append(item.AcceptanceCriteria, criteria...)
	if err := m.UpdateItem(item); err != nil {
		return types.VisionItem{}, err
	}
	return item, nil
}

// visualizeItem generates an image and a poetic summary for a prompt
// concurrently and assembles the resulting image item. The image inherits
// the source item's priority and records it as sourceItemId.
func (m *Manager) visualizeItem(ctx context.Context, source types.VisionItem, prompt string) (types.VisionItem, error) {
	if m.providers.Images == nil {
		return types.VisionItem{}, provider.ErrNotConfigured
	}

	var imageData []byte
	var summary string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := m.providers.Images.GenerateImage(gctx, visualizePromptPrefix+prompt)
		if err != nil {
			return err
		}
		imageData = data
		return nil
	})
	g.Go(func() error {
		s, err := provider.SummarizePrompt(gctx, m.providers.Primary, prompt)
		if err != nil {
			return err
		}
		summary = s
		return nil
	})
	if err := g.Wait(); err != nil {
		return types.VisionItem{}, err
	}

	return types.VisionItem{
		ID:   uuid.NewString(),
		Type: types.ItemVisionImage,
		Content: types.VisionImage{
			Prompt:   prompt,
			ImageURL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData),
			Summary:  summary,
		},
		AcceptanceCriteria: []string{},
		Priority:           source.Priority,
		SourceItemID:       source.ID,
	}, nil
}

// Visualize creates an image item from a statement or idea. An empty
// promptOverride uses the item's own text.
func (m *Manager) Visualize(ctx context.Context, id, promptOverride string) (types.VisionItem, error) {
	item, ok := m.Get(id)
	if !ok {
		return types.VisionItem{}, fmt.Errorf("item %s not found", id)
	}
	text, isText := item.Content.(types.TextContent)
	if !isText || (item.Type != types.ItemVisionStatement && item.Type != types.ItemIdea) {
		return types.VisionItem{}, fmt.Errorf("item %s cannot be visualized", id)
	}

	prompt := promptOverride
	if prompt == "" {
		prompt = text.Text
	}

	imageItem, err := m.visualizeItem(ctx, item, prompt)
	if err != nil {
		return types.VisionItem{}, fmt.Errorf("failed to generate visualization: %w", err)
	}

	m.mu.Lock()
	m.items = append([]types.VisionItem{imageItem}, m.items...)
	m.mu.Unlock()

	logging.Board("Visualized item %s as %s", id, imageItem.ID)
	m.persist(imageItem, "Could not save the new item. It will be lost on refresh.")
	return imageItem, nil
}

// VisualizedSourceIDs returns the ids of items that already have an image
// derived from them.
func (m *Manager) VisualizedSourceIDs() map[string]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make(map[string]bool)
	for _, item := range m.items {
		if item.Type == types.ItemVisionImage && item.SourceItemID != "" {
			ids[item.SourceItemID] = true
		}
	}
	return ids
}

// VisualizeAllIdeas fans out image generation over every idea that has no
// image yet. Individual failures are tolerated; the successes land on the
// board and a shortfall is reported as a notice.
func (m *Manager) VisualizeAllIdeas(ctx context.Context) ([]types.VisionItem, error) {
	visualized := m.VisualizedSourceIDs()

	var pending []types.VisionItem
	for _, item := range m.Items() {
		if item.Type != types.ItemIdea || visualized[item.ID] {
			continue
		}
		if _, ok := item.Content.(types.TextContent); !ok {
			continue
		}
		pending = append(pending, item)
	}
	if len(pending) == 0 {
		m.post("All ideas have already been visualized, or there are no ideas to visualize.")
		return nil, nil
	}

	logging.Board("Batch visualizing %d ideas", len(pending))

	results := make([]*types.VisionItem, len(pending))
	var g errgroup.Group
	for i, idea := range pending {
		i, idea := i, idea
		g.Go(func() error {
			prompt := idea.Content.(types.TextContent).Text
			imageItem, err := m.visualizeItem(ctx, idea, prompt)
			if err != nil {
				logging.BoardWarn("Failed to visualize idea %s: %v", idea.ID, err)
				return nil
			}
			results[i] = &imageItem
			return nil
		})
	}
	g.Wait()

	var created []types.VisionItem
	for _, r := range results {
		if r != nil {
			created = append(created, *r)
		}
	}

	if len(created) > 0 {
		m.mu.Lock()
		m.items = append(append([]types.VisionItem{}, created...), m.items...)
		m.mu.Unlock()
		for _, item := range created {
			m.persist(item, "Could not save the new item. It will be lost on refresh.")
		}
	}

	if len(created) < len(pending) {
		m.post(fmt.Sprintf("Successfully visualized %d of %d ideas. Some failed.", len(created), len(pending)))
	}
	return created, nil
}

// GenerateIdeas brainstorms ideas on a topic and adds each as an idea
// item.
func (m *Manager) GenerateIdeas(ctx context.Context, topic string) ([]types.VisionItem, error) {
	ideas, err := provider.GenerateIdeas(ctx, m.providers.Primary, topic)
	if err != nil {
		return nil, fmt.Errorf("an error occurred while generating ideas: %w", err)
	}

	created := make([]types.VisionItem, 0, len(ideas))
	for _, idea := range ideas {
		created = append(created, types.VisionItem{
			ID:                 uuid.NewString(),
			Type:               types.ItemIdea,
			Content:            types.TextContent{Text: idea},
			AcceptanceCriteria: []string{},
			Priority:           types.PriorityNone,
		})
	}

	if len(created) > 0 {
		m.mu.Lock()
		m.items = append(append([]types.VisionItem{}, created...), m.items...)
		m.mu.Unlock()
		for _, item := range created {
			m.persist(item, "Could not save generated ideas. They will be lost on refresh.")
		}
	}

	logging.Board("Generated %d ideas for topic %q", len(created), topic)
	return created, nil
}

// SummarizeVision synthesizes the whole board into a vision summary.
func (m *Manager) SummarizeVision(ctx context.Context) (string, error) {
	return provider.SummarizeVision(ctx, m.providers.Primary, m.Items())
}

// StyleSuggestions proposes art styles for visualizing an item.
func (m *Manager) StyleSuggestions(ctx context.Context, id string) ([]provider.StyleSuggestion, error) {
	item, ok := m.Get(id)
	if !ok {
		return nil, fmt.Errorf("item %s not found", id)
	}
	text, isText := item.Content.(types.TextContent)
	if !isText {
		return nil, fmt.Errorf("item %s has no text to style", id)
	}
	return provider.GenerateStyleSuggestions(ctx, m.providers.Primary, text.Text, item.Priority)
}

// GenerateHaiku writes a haiku from an image's summary and stores it on
// the image.
func (m *Manager) GenerateHaiku(ctx context.Context, id string) (types.VisionItem, error) {
	item, ok := m.Get(id)
	if !ok {
		return types.VisionItem{}, fmt.Errorf("item %s not found", id)
	}
	img, isImage := item.Content.(types.VisionImage)
	if !isImage {
		return types.VisionItem{}, fmt.Errorf("item %s is not an image", id)
	}

	haiku, err := provider.GenerateHaiku(ctx, m.providers.Primary, img.Summary)
	if err != nil {
		return types.VisionItem{}, fmt.Errorf("failed to generate haiku: %w", err)
	}

	img.Haiku = haiku
	item.Content = img
	if err := m.UpdateItem(item); err != nil {
		return types.VisionItem{}, err
	}
	return item, nil
}

// StoryFromInference invents a user story from an image's summary and a
// genre, creating a new story item that records the image as its source.
func (m *Manager) StoryFromInference(ctx context.Context, id, genre string) (types.VisionItem, error) {
	source, ok := m.Get(id)
	if !ok {
		return types.VisionItem{}, fmt.Errorf("item %s not found", id)
	}
	img, isImage := source.Content.(types.VisionImage)
	if !isImage {
		return types.VisionItem{}, fmt.Errorf("item %s is not an image", id)
	}

	story, err := provider.GenerateStoryFromInference(ctx, m.providers.Primary, img.Summary, genre)
	if err != nil {
		return types.VisionItem{}, fmt.Errorf("failed to generate story from inference: %w", err)
	}

	item := types.VisionItem{
		ID:                 uuid.NewString(),
		Type:               types.ItemUserStory,
		Content:            story,
		AcceptanceCriteria: []string{},
		Priority:           source.Priority,
		SourceImageID:      source.ID,
	}

	m.mu.Lock()
	m.items = append([]types.VisionItem{item}, m.items...)
	m.mu.Unlock()

	logging.Board("Inferred story %s from image %s", item.ID, source.ID)
	m.persist(item, "Could not save the new item. It will be lost on refresh.")
	return item, nil
}
