package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openaiHandler(t *testing.T, reply string, captured *[]OpenAIRequest) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var req OpenAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*captured = append(*captured, req)

		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func newTestOpenAIClient(t *testing.T, handler http.Handler) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOpenAIClientWithConfig(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o",
	})
}

func TestOpenAIMissingKey_FailsFast(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(server.Close)

	client := NewOpenAIClientWithConfig(OpenAIConfig{APIKey: "", BaseURL: server.URL})

	_, err := client.GenerateText(context.Background(), "", "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = client.GenerateConversation(context.Background(), "", nil, "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)

	assert.False(t, called, "no request is issued without a key")
}

func TestOpenAIGenerateText(t *testing.T) {
	var captured []OpenAIRequest
	client := newTestOpenAIClient(t, openaiHandler(t, "hello from openai", &captured))

	result, err := client.GenerateText(context.Background(), "be terse", "say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello from openai", result)

	require.Len(t, captured, 1)
	req := captured[0]
	assert.Equal(t, "gpt-4o", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "be terse", req.Messages[0].Content)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Nil(t, req.ResponseFormat)
}

func TestOpenAIGenerateStructured_JSONMode(t *testing.T) {
	var captured []OpenAIRequest
	client := newTestOpenAIClient(t, openaiHandler(t, `{"ideas":["a"]}`, &captured))

	result, err := client.GenerateStructured(context.Background(), "be helpful", "brainstorm", ideasSchema)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ideas":["a"]}`, result)

	require.Len(t, captured, 1)
	req := captured[0]
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, "json_object", req.ResponseFormat.Type)
	assert.Contains(t, req.Messages[0].Content, "ideas", "schema is embedded in the system prompt")
}

func TestOpenAIGenerateConversation_RoleMapping(t *testing.T) {
	var captured []OpenAIRequest
	client := newTestOpenAIClient(t, openaiHandler(t, "reply", &captured))

	history := []Turn{
		{FromUser: true, Text: "earlier question"},
		{FromUser: false, Text: "earlier answer"},
	}
	_, err := client.GenerateConversation(context.Background(), "persona prompt", history, "new question")
	require.NoError(t, err)

	require.Len(t, captured, 1)
	msgs := captured[0].Messages
	require.Len(t, msgs, 4)
	assert.Equal(t, OpenAIMessage{Role: "system", Content: "persona prompt"}, msgs[0])
	assert.Equal(t, OpenAIMessage{Role: "user", Content: "earlier question"}, msgs[1])
	assert.Equal(t, OpenAIMessage{Role: "assistant", Content: "earlier answer"}, msgs[2])
	assert.Equal(t, OpenAIMessage{Role: "user", Content: "new question"}, msgs[3])
}

func TestOpenAIAPIErrorSurfaces(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	})
	client := newTestOpenAIClient(t, handler)

	_, err := client.GenerateText(context.Background(), "", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestOpenAINoChoices(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})
	client := newTestOpenAIClient(t, handler)

	_, err := client.GenerateText(context.Background(), "", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no completion returned")
}
