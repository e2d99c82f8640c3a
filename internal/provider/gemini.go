package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"visionboard/internal/logging"
)

// GeminiClient is the primary backend: Google Gemini over the v1beta REST
// API. Calls are single-attempt; a failed call surfaces immediately to the
// delegation or chat layer that made it.
type GeminiClient struct {
	apiKey          string
	baseURL         string
	model           string
	maxOutputTokens int
	httpClient      *http.Client

	// Spaces consecutive requests. Not a retry mechanism.
	mu          sync.Mutex
	lastRequest time.Time
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
		Model:           "gemini-2.5-flash",
		Timeout:         2 * time.Minute,
		MaxOutputTokens: 8192,
	}
}

// NewGeminiClient creates a Gemini client with default config.
func NewGeminiClient(apiKey string) *GeminiClient {
	return NewGeminiClientWithConfig(DefaultGeminiConfig(apiKey))
}

// NewGeminiClientWithConfig creates a Gemini client with custom config.
func NewGeminiClientWithConfig(config GeminiConfig) *GeminiClient {
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	maxOutputTokens := config.MaxOutputTokens
	if maxOutputTokens <= 0 {
		maxOutputTokens = 8192
	}
	return &GeminiClient{
		apiKey:          config.APIKey,
		baseURL:         baseURL,
		model:           model,
		maxOutputTokens: maxOutputTokens,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

// Model returns the configured model name.
func (c *GeminiClient) Model() string {
	return c.model
}

func (c *GeminiClient) spaceRequests() {
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()
}

// generate posts one generateContent request and returns the concatenated
// candidate text.
func (c *GeminiClient) generate(ctx context.Context, reqBody GeminiRequest) (string, error) {
	if c.apiKey == "" {
		logging.ProviderError("[Gemini] generate: API key not configured")
		return "", ErrNotConfigured
	}

	ctx, cancel := ensureDeadline(ctx, c.httpClient.Timeout)
	defer cancel()

	c.spaceRequests()

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp GeminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if geminiResp.Error != nil {
		return "", fmt.Errorf("API error: %s", geminiResp.Error.Message)
	}
	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no completion returned")
	}

	var result strings.Builder
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		result.WriteString(part.Text)
	}
	return strings.TrimSpace(result.String()), nil
}

// GenerateText sends a system+user prompt pair and returns the completion.
func (c *GeminiClient) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	startTime := time.Now()
	logging.ProviderDebug("[Gemini] GenerateText: model=%s system_len=%d user_len=%d", c.model, len(systemPrompt), len(userPrompt))

	reqBody := GeminiRequest{
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: userPrompt}}},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     1.0,
			MaxOutputTokens: c.maxOutputTokens,
		},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		reqBody.SystemInstruction = &GeminiContent{Parts: []GeminiPart{{Text: systemPrompt}}}
	}

	response, err := c.generate(ctx, reqBody)
	if err != nil {
		logging.ProviderError("[Gemini] GenerateText: failed after %v: %v", time.Since(startTime), err)
		return "", err
	}
	logging.Provider("[Gemini] GenerateText: completed in %v response_len=%d", time.Since(startTime), len(response))
	return response, nil
}

// GenerateStructured sends a prompt pair with a response schema and returns
// the raw JSON text the model produced.
func (c *GeminiClient) GenerateStructured(ctx context.Context, systemPrompt, userPrompt, jsonSchema string) (string, error) {
	startTime := time.Now()
	logging.ProviderDebug("[Gemini] GenerateStructured: model=%s schema_len=%d", c.model, len(jsonSchema))

	schemaText := strings.TrimSpace(jsonSchema)
	if schemaText == "" {
		return "", fmt.Errorf("json schema is empty")
	}
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(schemaText), &schema); err != nil {
		return "", fmt.Errorf("invalid json schema: %w", err)
	}

	reqBody := GeminiRequest{
		Contents: []GeminiContent{
			{Role: "user", Parts: []GeminiPart{{Text: userPrompt}}},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:      1.0,
			MaxOutputTokens:  c.maxOutputTokens,
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		reqBody.SystemInstruction = &GeminiContent{Parts: []GeminiPart{{Text: systemPrompt}}}
	}

	response, err := c.generate(ctx, reqBody)
	if err != nil {
		logging.ProviderError("[Gemini] GenerateStructured: failed after %v: %v", time.Since(startTime), err)
		return "", err
	}
	logging.Provider("[Gemini] GenerateStructured: completed in %v response_len=%d", time.Since(startTime), len(response))
	return response, nil
}

// StartChat opens a multi-turn session. The session accumulates its own
// contents history; the displayed chat history is never replayed to it.
func (c *GeminiClient) StartChat(systemPrompt string) ChatSession {
	return &geminiChatSession{client: c, systemPrompt: systemPrompt}
}

// geminiChatSession carries the server-side conversation state for one
// persona. Sends are serialized by the caller.
type geminiChatSession struct {
	client       *GeminiClient
	systemPrompt string
	contents     []GeminiContent
}

// SendMessage appends the user turn, calls the model, and appends the model
// turn. On error the user turn is rolled back so a failed send leaves the
// session history unchanged.
func (s *geminiChatSession) SendMessage(ctx context.Context, text string) (string, error) {
	s.contents = append(s.contents, GeminiContent{
		Role:  "user",
		Parts: []GeminiPart{{Text: text}},
	})

	reqBody := GeminiRequest{
		Contents: s.contents,
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     1.0,
			MaxOutputTokens: s.client.maxOutputTokens,
		},
	}
	if strings.TrimSpace(s.systemPrompt) != "" {
		reqBody.SystemInstruction = &GeminiContent{Parts: []GeminiPart{{Text: s.systemPrompt}}}
	}

	response, err := s.client.generate(ctx, reqBody)
	if err != nil {
		s.contents = s.contents[:len(s.contents)-1]
		return "", err
	}

	s.contents = append(s.contents, GeminiContent{
		Role:  "model",
		Parts: []GeminiPart{{Text: response}},
	})
	return response, nil
}
