package ai

import (
	"browser-pilot/internal/config"
	"browser-pilot/internal/entity"
	"browser-pilot/pkg/apperr"
	"browser-pilot/pkg/logg"
	"browser-pilot/pkg/tracing"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	anthropicName    = "AnthropicModel"
	anthropicTracer  = "ai.anthropic"
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion = "2023-06-01"
)

// Anthropic talks to the Messages API. Responses are not streamed, so onText
// fires once per model call.
type Anthropic struct {
	config     *config.AIConfig
	baseURL    string
	logger     *zap.Logger
	tracer     trace.Tracer
	httpClient *http.Client
}

func NewAnthropic(conf *config.AIConfig, logger *zap.Logger) *Anthropic {
	baseURL := strings.TrimRight(conf.BaseURL, "/")
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}

	return &Anthropic{
		config:     conf,
		baseURL:    baseURL,
		logger:     logger.With(zap.String(logg.Layer, anthropicName), zap.String(logg.Provider, ProviderAnthropic)),
		tracer:     otel.Tracer(anthropicTracer),
		httpClient: &http.Client{},
	}
}

type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []claudeMessage `json:"messages"`
	Tools     []claudeTool    `json:"tools,omitempty"`
}

type claudeMessage struct {
	Role    string        `json:"role"`
	Content []claudeBlock `json:"content"`
}

type claudeBlock struct {
	Type      string          `json:"type"`
	Text      string          `json:"text,omitempty"`
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Input     json.RawMessage `json:"input,omitempty"`
	ToolUseID string          `json:"tool_use_id,omitempty"`
	Content   string          `json:"content,omitempty"`
}

type claudeTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type claudeResponse struct {
	Content    []claudeBlock `json:"content"`
	StopReason string        `json:"stop_reason"`
}

func (c *Anthropic) Complete(ctx context.Context, system string, messages []Message, tools []entity.ToolSpec, onText func(string)) (completion *Completion, err error) {
	const op = "Complete"
	logger := c.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, c.tracer, logger, op,
		attribute.Int("messages_count", len(messages)))
	defer func() {
		step.End(err)
	}()

	reqBody := claudeRequest{
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
		System:    system,
		Messages:  toClaudeMessages(messages),
		Tools:     toClaudeTools(tools),
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "marshal_failed",
			apperr.MetaStage:  apperr.StageAI,
		})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(jsonData))
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "request_create_failed",
			apperr.MetaStage:  apperr.StageAI,
		})
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	step.AddEvent("sending HTTP request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeAIError, err, map[string]any{
			apperr.MetaReason: "http_request_failed",
			apperr.MetaStage:  apperr.StageAI,
		})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeAIError, err, map[string]any{
			apperr.MetaReason: "read_body_failed",
			apperr.MetaStage:  apperr.StageAI,
		})
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Wrap(op, apperr.CodeAIError, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body)), map[string]any{
			apperr.MetaReason: "api_error",
			apperr.MetaStage:  apperr.StageAI,
			"status_code":     resp.StatusCode,
		})
	}

	var claudeResp claudeResponse
	if err = json.Unmarshal(body, &claudeResp); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeAIError, err, map[string]any{
			apperr.MetaReason: "unmarshal_failed",
			apperr.MetaStage:  apperr.StageAI,
		})
	}

	completion = parseClaudeResponse(&claudeResp)

	if completion.Text != "" {
		onText(completion.Text)
	}

	logger.Debug("Model answered",
		zap.String("stop_reason", claudeResp.StopReason),
		zap.Int("tool_calls", len(completion.ToolCalls)))

	return completion, nil
}

func parseClaudeResponse(resp *claudeResponse) *Completion {
	completion := &Completion{}

	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			args := string(block.Input)
			if args == "" {
				args = "{}"
			}

			completion.ToolCalls = append(completion.ToolCalls, entity.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: args,
			})
		}
	}

	completion.Text = text.String()

	return completion
}

// toClaudeMessages maps the conversation onto the Messages API shape. Tool
// results travel as user messages and consecutive messages of one role are
// merged, since the API requires alternating roles.
func toClaudeMessages(messages []Message) []claudeMessage {
	out := make([]claudeMessage, 0, len(messages))

	appendBlocks := func(role string, blocks ...claudeBlock) {
		if len(blocks) == 0 {
			return
		}

		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content = append(out[n-1].Content, blocks...)
			return
		}

		out = append(out, claudeMessage{Role: role, Content: blocks})
	}

	for _, m := range messages {
		switch m.Role {
		case entity.RoleUser:
			if m.Content != "" {
				appendBlocks("user", claudeBlock{Type: "text", Text: m.Content})
			}
		case entity.RoleAssistant:
			blocks := make([]claudeBlock, 0, len(m.ToolCalls)+1)
			if m.Content != "" {
				blocks = append(blocks, claudeBlock{Type: "text", Text: m.Content})
			}

			for _, call := range m.ToolCalls {
				input := json.RawMessage(call.Arguments)
				if !json.Valid(input) {
					input = json.RawMessage("{}")
				}

				blocks = append(blocks, claudeBlock{Type: "tool_use", ID: call.ID, Name: call.Name, Input: input})
			}

			appendBlocks("assistant", blocks...)
		case entity.RoleTool:
			appendBlocks("user", claudeBlock{Type: "tool_result", ToolUseID: m.ToolCallID, Content: m.Content})
		}
	}

	return out
}

func toClaudeTools(specs []entity.ToolSpec) []claudeTool {
	tools := make([]claudeTool, 0, len(specs))
	for _, s := range specs {
		tools = append(tools, claudeTool{
			Name:        s.Name,
			Description: s.Description,
			InputSchema: s.Parameters,
		})
	}

	return tools
}
