package textback

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newCompletionServer emulates the chat completion endpoint and records request bodies
func newCompletionServer(t *testing.T, status int, body string) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	var requests []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		requests = append(requests, req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func testModelConfig(url string) ModelConfig {
	cfg := DefaultModelConfig()
	cfg.APIKey = "test"
	cfg.BaseURL = url + "/v1"
	return cfg
}

func TestModelProviderToolCall(t *testing.T) {
	srv, requests := newCompletionServer(t, http.StatusOK, `{
		"id": "chatcmpl-1", "object": "chat.completion", "model": "gpt-4o",
		"choices": [{"index": 0, "finish_reason": "tool_calls", "message": {
			"role": "assistant", "content": "",
			"tool_calls": [{"id": "call_1", "type": "function",
				"function": {"name": "submit_alternative", "arguments": "{\"alternative\": \"see you soon\"}"}}]
		}}]
	}`)

	logPath := filepath.Join(t.TempDir(), "llm.log")
	logger, err := NewLLMLogger(logPath)
	require.NoError(t, err)
	defer logger.Close()

	provider := NewModelProvider(testModelConfig(srv.URL), logger)
	alt, err := provider.Alternative(context.Background(), 42, "<messages>\nA: hi\n</messages>")
	require.NoError(t, err)
	assert.Equal(t, "see you soon", alt)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, float64(42), req["seed"])
	assert.Equal(t, openai.GPT4o, req["model"])
	choice, ok := req["tool_choice"].(map[string]any)
	require.True(t, ok, "tool choice is forced")
	assert.Equal(t, alternativeTool, choice["function"].(map[string]any)["name"])

	transcript, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(transcript), "LLM REQUEST (seed 42)")
	assert.Contains(t, string(transcript), `"see you soon"`)
}

func TestModelProviderContentFallback(t *testing.T) {
	srv, requests := newCompletionServer(t, http.StatusOK, `{
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "  maybe tomorrow \n"}}]
	}`)

	cfg := testModelConfig(srv.URL)
	cfg.UseTools = false
	alt, err := NewModelProvider(cfg, nil).Alternative(context.Background(), 7, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "maybe tomorrow", alt)

	require.Len(t, *requests, 1)
	assert.NotContains(t, (*requests)[0], "tools")
}

func TestModelProviderMalformedResponse(t *testing.T) {
	srv, _ := newCompletionServer(t, http.StatusOK, `{
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "",
			"tool_calls": [{"id": "call_1", "type": "function",
				"function": {"name": "submit_alternative", "arguments": "not json"}}]}}]
	}`)

	alt, err := NewModelProvider(testModelConfig(srv.URL), nil).Alternative(context.Background(), 1, "prompt")
	require.NoError(t, err, "an unreadable answer is retried, not fatal")
	assert.Empty(t, alt)
}

func TestModelProviderTransportError(t *testing.T) {
	srv, _ := newCompletionServer(t, http.StatusInternalServerError,
		`{"error": {"message": "overloaded", "type": "server_error"}}`)

	_, err := NewModelProvider(testModelConfig(srv.URL), nil).Alternative(context.Background(), 1, "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get model completion")

	var apiErr *openai.APIError
	assert.ErrorAs(t, err, &apiErr)
}

func TestModelConfigEnabled(t *testing.T) {
	assert.False(t, DefaultModelConfig().Enabled())
	assert.True(t, ModelConfig{BaseURL: "http://localhost:11434/v1"}.Enabled())
	assert.True(t, ModelConfig{APIKey: "sk"}.Enabled())
}

func TestLLMLoggerClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "llm.log")
	logger, err := NewLLMLogger(path)
	require.NoError(t, err)

	logger.LogQuestionResult("abc", VariantWho, "retry", "no anchor")
	require.NoError(t, logger.Close())
	require.NoError(t, logger.Close())
	logger.Logf("after close\n")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, "Session started")
	assert.Contains(t, s, "Question abc/who: retry - no anchor")
	assert.Contains(t, s, "Session closed")
	assert.NotContains(t, s, "after close")
}
