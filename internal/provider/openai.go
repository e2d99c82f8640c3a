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

// OpenAIClient is the fallback backend over the chat/completions API. It is
// stateless: multi-turn chats replay the displayed history on every call.
// Without an API key every call fails fast with ErrNotConfigured and no
// request is issued.
type OpenAIClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client

	mu          sync.Mutex
	lastRequest time.Time
}

// DefaultOpenAIConfig returns sensible defaults.
func DefaultOpenAIConfig(apiKey string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:    apiKey,
		BaseURL:   "https://api.openai.com/v1",
		Model:     "gpt-4o",
		Timeout:   2 * time.Minute,
		MaxTokens: 4096,
	}
}

// NewOpenAIClient creates an OpenAI client with default config.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return NewOpenAIClientWithConfig(DefaultOpenAIConfig(apiKey))
}

// NewOpenAIClientWithConfig creates an OpenAI client with custom config.
func NewOpenAIClientWithConfig(config OpenAIConfig) *OpenAIClient {
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gpt-4o"
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &OpenAIClient{
		apiKey:     config.APIKey,
		baseURL:    baseURL,
		model:      model,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.model
}

func (c *OpenAIClient) spaceRequests() {
	c.mu.Lock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < 100*time.Millisecond {
		time.Sleep(100*time.Millisecond - elapsed)
	}
	c.lastRequest = time.Now()
	c.mu.Unlock()
}

// complete posts one chat/completions request and returns the first choice.
func (c *OpenAIClient) complete(ctx context.Context, reqBody OpenAIRequest) (string, error) {
	if c.apiKey == "" {
		logging.ProviderError("[OpenAI] complete: API key not configured")
		return "", ErrNotConfigured
	}

	ctx, cancel := ensureDeadline(ctx, c.httpClient.Timeout)
	defer cancel()

	c.spaceRequests()

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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

	var openaiResp OpenAIResponse
	if err := json.Unmarshal(body, &openaiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if openaiResp.Error != nil {
		return "", fmt.Errorf("API error: %s", openaiResp.Error.Message)
	}
	if len(openaiResp.Choices) == 0 {
		return "", fmt.Errorf("no completion returned")
	}
	return strings.TrimSpace(openaiResp.Choices[0].Message.Content), nil
}

// GenerateText sends a system+user prompt pair and returns the completion.
func (c *OpenAIClient) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	startTime := time.Now()
	logging.ProviderDebug("[OpenAI] GenerateText: model=%s system_len=%d user_len=%d", c.model, len(systemPrompt), len(userPrompt))

	messages := []OpenAIMessage{}
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, OpenAIMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, OpenAIMessage{Role: "user", Content: userPrompt})

	response, err := c.complete(ctx, OpenAIRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		logging.ProviderError("[OpenAI] GenerateText: failed after %v: %v", time.Since(startTime), err)
		return "", err
	}
	logging.Provider("[OpenAI] GenerateText: completed in %v response_len=%d", time.Since(startTime), len(response))
	return response, nil
}

// GenerateStructured sends a prompt pair in JSON mode. The schema is
// embedded in the system prompt since chat/completions json_object mode
// does not take a schema parameter.
func (c *OpenAIClient) GenerateStructured(ctx context.Context, systemPrompt, userPrompt, jsonSchema string) (string, error) {
	startTime := time.Now()
	logging.ProviderDebug("[OpenAI] GenerateStructured: model=%s schema_len=%d", c.model, len(jsonSchema))

	system := systemPrompt
	if strings.TrimSpace(jsonSchema) != "" {
		system = fmt.Sprintf("%s\n\nRespond with a single JSON object conforming to this schema:\n%s", systemPrompt, jsonSchema)
	}
	messages := []OpenAIMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: userPrompt},
	}

	response, err := c.complete(ctx, OpenAIRequest{
		Model:          c.model,
		Messages:       messages,
		MaxTokens:      c.maxTokens,
		Temperature:    0.7,
		ResponseFormat: &OpenAIResponseFormat{Type: "json_object"},
	})
	if err != nil {
		logging.ProviderError("[OpenAI] GenerateStructured: failed after %v: %v", time.Since(startTime), err)
		return "", err
	}
	logging.Provider("[OpenAI] GenerateStructured: completed in %v response_len=%d", time.Since(startTime), len(response))
	return response, nil
}

// GenerateConversation replays a history alongside the new message and
// returns the reply. Turns are mapped to user/assistant roles in order.
func (c *OpenAIClient) GenerateConversation(ctx context.Context, systemPrompt string, history []Turn, message string) (string, error) {
	startTime := time.Now()
	logging.ProviderDebug("[OpenAI] GenerateConversation: model=%s history=%d", c.model, len(history))

	messages := make([]OpenAIMessage, 0, len(history)+2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, OpenAIMessage{Role: "system", Content: systemPrompt})
	}
	for _, turn := range history {
		role := "assistant"
		if turn.FromUser {
			role = "user"
		}
		messages = append(messages, OpenAIMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, OpenAIMessage{Role: "user", Content: message})

	response, err := c.complete(ctx, OpenAIRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
	})
	if err != nil {
		logging.ProviderError("[OpenAI] GenerateConversation: failed after %v: %v", time.Since(startTime), err)
		return "", err
	}
	logging.Provider("[OpenAI] GenerateConversation: completed in %v response_len=%d", time.Since(startTime), len(response))
	return response, nil
}
