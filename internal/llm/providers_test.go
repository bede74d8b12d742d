package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaComplete(t *testing.T) {
	var got ollamaGenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"model":"llama3","response":"Mountains at dusk.","done":true,"done_reason":"stop","prompt_eval_count":12,"eval_count":4}`)
	}))
	defer srv.Close()

	temp := 0.2
	client := NewOllamaAPIClient(srv.URL+"/", "")
	resp, err := client.Complete(context.Background(), CompletionRequest{
		System:      "Be brief.",
		Messages:    []Message{{Role: RoleUser, Content: "Describe a wallpaper"}},
		MaxTokens:   64,
		Temperature: &temp,
	})
	require.NoError(t, err)

	assert.Equal(t, "llama3", got.Model)
	assert.False(t, got.Stream)
	assert.Contains(t, got.Prompt, "System: Be brief.")
	assert.Contains(t, got.Prompt, "Describe a wallpaper")
	assert.InDelta(t, 0.2, got.Options["temperature"], 1e-9)
	assert.EqualValues(t, 64, got.Options["num_predict"])

	assert.Equal(t, "Mountains at dusk.", resp.Content)
	assert.Equal(t, "ollama", resp.Provider)
	assert.Equal(t, 12, resp.Usage.InputTokens)
	assert.Equal(t, 4, resp.Usage.OutputTokens)
}

func TestOllamaCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewOllamaAPIClient(srv.URL, "missing").Complete(context.Background(), CompletionRequest{})
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusNotFound, provErr.Code)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(CompletionRequest{
		Messages: []Message{
			{Role: RoleUser, Content: "hi"},
			{Role: RoleAssistant, Content: "hello"},
		},
	})
	assert.Equal(t, "hi\n\nassistant: hello\n\n", prompt)
}

func TestOpenAIComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "A calm ocean."}}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 3, "total_tokens": 12}
		}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient(OpenAIOptions{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	resp, err := client.Complete(context.Background(), CompletionRequest{
		System:   "You are helpful.",
		Messages: []Message{{Role: RoleUser, Content: "ocean"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", body["model"])
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)

	assert.Equal(t, "A calm ocean.", resp.Content)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, 9, resp.Usage.InputTokens)
	assert.Equal(t, 3, resp.Usage.OutputTokens)
	assert.Equal(t, "openai", resp.Provider)
}

func TestOpenAICompleteRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error": {"message": "bad key", "type": "invalid_request_error"}}`)
	}))
	defer srv.Close()

	client := NewOpenAIClient(OpenAIOptions{APIKey: "sk-bad", BaseURL: srv.URL + "/"})
	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.Error(t, err)

	var provErr *ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, "openai", provErr.Provider)
	assert.Equal(t, http.StatusUnauthorized, provErr.Code)
}

func TestOpenAIImageGenerate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"created": 1700000000, "data": [{"url": "https://cdn.example.com/wall.png", "revised_prompt": "a misty forest"}]}`)
	}))
	defer srv.Close()

	gen := NewOpenAIImageGenerator(OpenAIOptions{APIKey: "sk-test", BaseURL: srv.URL + "/"}, "")
	res, err := gen.Generate(context.Background(), ImageRequest{Prompt: "forest"})
	require.NoError(t, err)

	assert.Equal(t, "forest", body["prompt"])
	assert.Equal(t, "dall-e-3", body["model"])
	assert.Equal(t, "1024x1792", body["size"])
	assert.Equal(t, "url", body["response_format"])
	assert.Equal(t, "https://cdn.example.com/wall.png", res.URL)
	assert.Equal(t, "a misty forest", res.RevisedPrompt)
}

func TestAnthropicComplete(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "Snowy peaks."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 7, "output_tokens": 2}
		}`)
	}))
	defer srv.Close()

	client := NewAnthropicClient(AnthropicOptions{APIKey: "sk-ant", BaseURL: srv.URL})
	resp, err := client.Complete(context.Background(), CompletionRequest{
		System:   "Be vivid.",
		Messages: []Message{{Role: RoleUser, Content: "mountain"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "claude-3-5-haiku-latest", body["model"])
	assert.EqualValues(t, defaultAnthropicMaxTokens, body["max_tokens"])
	assert.NotNil(t, body["system"])

	assert.Equal(t, "Snowy peaks.", resp.Content)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, 7, resp.Usage.InputTokens)
	assert.Equal(t, "anthropic", resp.Provider)
}
