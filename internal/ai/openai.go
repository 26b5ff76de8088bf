package ai

import (
	"browser-pilot/internal/config"
	"browser-pilot/internal/entity"
	"browser-pilot/pkg/apperr"
	"browser-pilot/pkg/logg"
	"browser-pilot/pkg/tracing"
	"context"
	"sort"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	openAIName   = "OpenAIModel"
	openAITracer = "ai.openai"
)

// OpenAI drives any OpenAI-compatible chat completions endpoint with
// streaming, so answer text reaches onText as it is generated.
type OpenAI struct {
	config *config.AIConfig
	client openai.Client
	logger *zap.Logger
	tracer trace.Tracer
}

func NewOpenAI(conf *config.AIConfig, logger *zap.Logger, opts ...option.RequestOption) *OpenAI {
	clientOpts := []option.RequestOption{option.WithAPIKey(conf.APIKey)}
	if conf.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(conf.BaseURL))
	}
	clientOpts = append(clientOpts, opts...)

	return &OpenAI{
		config: conf,
		client: openai.NewClient(clientOpts...),
		logger: logger.With(zap.String(logg.Layer, openAIName), zap.String(logg.Provider, ProviderOpenAI)),
		tracer: otel.Tracer(openAITracer),
	}
}

type pendingToolCall struct {
	id        string
	name      string
	arguments strings.Builder
}

func (c *OpenAI) Complete(ctx context.Context, system string, messages []Message, tools []entity.ToolSpec, onText func(string)) (completion *Completion, err error) {
	const op = "Complete"
	logger := c.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, c.tracer, logger, op,
		attribute.Int("messages_count", len(messages)))
	defer func() {
		step.End(err)
	}()

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.config.Model),
		Messages: toOpenAIMessages(system, messages),
		Tools:    toOpenAITools(tools),
	}
	if c.config.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.config.MaxTokens))
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	defer stream.Close()

	var text strings.Builder
	calls := make(map[int64]*pendingToolCall)

	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 {
			continue
		}

		delta := chunk.Choices[0].Delta

		if delta.Content != "" {
			text.WriteString(delta.Content)
			onText(delta.Content)
		}

		for _, tc := range delta.ToolCalls {
			pending, ok := calls[tc.Index]
			if !ok {
				pending = &pendingToolCall{}
				calls[tc.Index] = pending
			}

			if tc.ID != "" {
				pending.id = tc.ID
			}
			if tc.Function.Name != "" {
				pending.name = tc.Function.Name
			}
			pending.arguments.WriteString(tc.Function.Arguments)
		}
	}

	if err = stream.Err(); err != nil {
		return nil, apperr.Wrap(op, apperr.CodeAIError, err, map[string]any{
			apperr.MetaReason: "stream_failed",
			apperr.MetaStage:  apperr.StageAI,
		})
	}

	completion = &Completion{Text: text.String()}

	indexes := make([]int64, 0, len(calls))
	for idx := range calls {
		indexes = append(indexes, idx)
	}
	sort.Slice(indexes, func(i, j int) bool { return indexes[i] < indexes[j] })

	for _, idx := range indexes {
		pending := calls[idx]

		args := pending.arguments.String()
		if args == "" {
			args = "{}"
		}

		completion.ToolCalls = append(completion.ToolCalls, entity.ToolCall{
			ID:        pending.id,
			Name:      pending.name,
			Arguments: args,
		})
	}

	logger.Debug("Model answered", zap.Int("tool_calls", len(completion.ToolCalls)))

	return completion, nil
}

func toOpenAIMessages(system string, messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)

	if system != "" {
		out = append(out, openai.SystemMessage(system))
	}

	for _, m := range messages {
		switch m.Role {
		case entity.RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case entity.RoleAssistant:
			assistant := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				assistant.Content.OfString = openai.String(m.Content)
			}

			for _, call := range m.ToolCalls {
				assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
					ID: call.ID,
					Function: openai.ChatCompletionMessageToolCallFunctionParam{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}

			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant})
		case entity.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}

	return out
}

func toOpenAITools(specs []entity.ToolSpec) []openai.ChatCompletionToolParam {
	if len(specs) == 0 {
		return nil
	}

	tools := make([]openai.ChatCompletionToolParam, 0, len(specs))
	for _, s := range specs {
		tools = append(tools, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        s.Name,
				Description: openai.String(s.Description),
				Parameters:  openai.FunctionParameters(s.Parameters),
			},
		})
	}

	return tools
}
