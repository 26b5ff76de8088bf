package ai

import (
	"browser-pilot/internal/config"
	"browser-pilot/internal/entity"
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Message is one entry of the model-level conversation. Assistant messages
// may carry tool calls; tool messages answer exactly one of them.
type Message struct {
	Role       entity.Role
	Content    string
	ToolCalls  []entity.ToolCall
	ToolCallID string
}

type Completion struct {
	Text      string
	ToolCalls []entity.ToolCall
}

// Model is one round trip to an LLM. onText receives answer text as it
// becomes available; back-ends that do not stream call it once.
type Model interface {
	Complete(ctx context.Context, system string, messages []Message, tools []entity.ToolSpec, onText func(string)) (*Completion, error)
}

type ModelParams struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewModel(params ModelParams) (Model, error) {
	switch params.Config.AIConfig.Provider {
	case ProviderAnthropic:
		return NewAnthropic(params.Config.AIConfig, params.Logger), nil
	case ProviderOpenAI:
		return NewOpenAI(params.Config.AIConfig, params.Logger), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", params.Config.AIConfig.Provider)
	}
}
