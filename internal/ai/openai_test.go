package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"browser-pilot/internal/config"
	"browser-pilot/internal/entity"
	"browser-pilot/pkg/apperr"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sseChunk(delta string, finish string) string {
	finishJSON := "null"
	if finish != "" {
		finishJSON = fmt.Sprintf("%q", finish)
	}

	return fmt.Sprintf(`data: {"id":"chatcmpl-1","object":"chat.completion.chunk","created":1,"model":"gpt-test","choices":[{"index":0,"delta":%s,"finish_reason":%s}]}`+"\n\n", delta, finishJSON)
}

func TestOpenAI_StreamsTextAndToolCalls(t *testing.T) {
	var body map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "text/event-stream")

		events := []string{
			sseChunk(`{"role":"assistant","content":"Open"}`, ""),
			sseChunk(`{"content":"ing."}`, ""),
			sseChunk(`{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"new_browser_tab","arguments":""}}]}`, ""),
			sseChunk(`{"tool_calls":[{"index":0,"function":{"arguments":"{\"query\":"}}]}`, ""),
			sseChunk(`{"tool_calls":[{"index":0,"function":{"arguments":"\"https://example.com\"}"}}]}`, ""),
			sseChunk(`{}`, "tool_calls"),
			"data: [DONE]\n\n",
		}

		for _, e := range events {
			_, _ = w.Write([]byte(e))
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
	defer srv.Close()

	model := NewOpenAI(&config.AIConfig{
		APIKey:    "test-key",
		Model:     "gpt-test",
		BaseURL:   srv.URL + "/v1/",
		MaxTokens: 256,
	}, zap.NewNop(), option.WithMaxRetries(0))

	var streamed []string
	completion, err := model.Complete(context.Background(), "be brief",
		[]Message{{Role: entity.RoleUser, Content: "open example.com"}},
		[]entity.ToolSpec{{Name: "new_browser_tab", Description: "open", Parameters: map[string]any{"type": "object"}}},
		func(s string) { streamed = append(streamed, s) },
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"Open", "ing."}, streamed)
	assert.Equal(t, "Opening.", completion.Text)
	require.Len(t, completion.ToolCalls, 1)
	assert.Equal(t, "call_1", completion.ToolCalls[0].ID)
	assert.Equal(t, "new_browser_tab", completion.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"https://example.com"}`, completion.ToolCalls[0].Arguments)

	assert.Equal(t, "gpt-test", body["model"])
	assert.Equal(t, true, body["stream"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Len(t, body["tools"], 1)
}

func TestOpenAI_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	model := NewOpenAI(&config.AIConfig{APIKey: "bad", Model: "gpt-test", BaseURL: srv.URL + "/v1/"},
		zap.NewNop(), option.WithMaxRetries(0))

	_, err := model.Complete(context.Background(), "", []Message{{Role: entity.RoleUser, Content: "hi"}}, nil, func(string) {})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeAIError, apperr.CodeOf(err))
}

func TestToOpenAIMessages_ToolRoundTrip(t *testing.T) {
	msgs := toOpenAIMessages("", []Message{
		{Role: entity.RoleUser, Content: "go"},
		{Role: entity.RoleAssistant, ToolCalls: []entity.ToolCall{{ID: "c1", Name: "extract_page_content", Arguments: "{}"}}},
		{Role: entity.RoleTool, ToolCallID: "c1", Content: "text"},
	})

	require.Len(t, msgs, 3)
	require.NotNil(t, msgs[1].OfAssistant)
	assert.Equal(t, "c1", msgs[1].OfAssistant.ToolCalls[0].ID)
	require.NotNil(t, msgs[2].OfTool)
	assert.Equal(t, "c1", msgs[2].OfTool.ToolCallID)
}
