package ai

import (
	"browser-pilot/internal/config"
	"browser-pilot/internal/entity"
	"browser-pilot/internal/ports"
	"browser-pilot/pkg/apperr"
	"browser-pilot/pkg/logg"
	"browser-pilot/pkg/tracing"
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	agentName   = "Agent"
	agentTracer = "ai.agent"
)

// Agent is the tool-calling loop: ask the model, run the tools it asks for,
// feed the results back, until it answers without tool calls or the step
// budget runs out.
type Agent struct {
	model    Model
	system   string
	maxSteps int
	logger   *zap.Logger
	tracer   trace.Tracer
}

type AgentParams struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
	Model  Model
}

func NewAgent(params AgentParams) *Agent {
	return &Agent{
		model:    params.Model,
		system:   SystemPrompt,
		maxSteps: params.Config.AIConfig.MaxSteps,
		logger:   params.Logger.With(zap.String(logg.Layer, agentName)),
		tracer:   otel.Tracer(agentTracer),
	}
}

// RunTurn streams the turn's output. The channel is closed once the turn is
// over; a failed turn ends with exactly one ChunkError. Cancelling ctx stops
// delivery.
func (a *Agent) RunTurn(ctx context.Context, history []entity.ChatMessage, catalog ports.ToolCatalog) <-chan entity.TurnChunk {
	out := make(chan entity.TurnChunk)

	go func() {
		defer close(out)

		emit := func(chunk entity.TurnChunk) bool {
			select {
			case out <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		defer func() {
			if r := recover(); r != nil {
				a.logger.Error("Agent loop panicked", zap.Any("panic", r))
				emit(entity.TurnChunk{
					Kind: entity.ChunkError,
					Err:  apperr.WrapErrorWithReason("RunTurn", apperr.CodeTurnFailed, fmt.Sprintf("agent panic: %v", r)),
				})
			}
		}()

		if err := a.run(ctx, history, catalog, emit); err != nil {
			emit(entity.TurnChunk{Kind: entity.ChunkError, Err: err})
		}
	}()

	return out
}

func (a *Agent) run(ctx context.Context, history []entity.ChatMessage, catalog ports.ToolCatalog, emit func(entity.TurnChunk) bool) (err error) {
	const op = "RunTurn"
	logger := a.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, a.tracer, logger, op, attribute.Int("history.len", len(history)))
	defer func() {
		step.End(err)
	}()

	messages := toModelMessages(history)
	specs := catalog.Specs()

	for n := 1; n <= a.maxSteps; n++ {
		if err = ctx.Err(); err != nil {
			return apperr.Wrap(op, apperr.CodeTurnFailed, err, map[string]any{
				apperr.MetaReason: "context_done",
				apperr.MetaStep:   n,
			})
		}

		step.AddEvent("model call", attribute.Int("step", n))

		var completion *Completion
		completion, err = a.model.Complete(ctx, a.system, messages, specs, func(text string) {
			if text != "" {
				emit(entity.TurnChunk{Kind: entity.ChunkText, Text: text})
			}
		})
		if err != nil {
			logger.Warn("Model call failed", zap.Int(logg.Step, n), zap.Error(err))

			return apperr.Wrap(op, apperr.CodeAIError, err, map[string]any{
				apperr.MetaReason: "model_call_failed",
				apperr.MetaStage:  apperr.StageAI,
				apperr.MetaStep:   n,
			})
		}

		messages = append(messages, Message{
			Role:      entity.RoleAssistant,
			Content:   completion.Text,
			ToolCalls: completion.ToolCalls,
		})

		if len(completion.ToolCalls) == 0 {
			logger.Debug("Turn answered", zap.Int(logg.Step, n))
			return nil
		}

		for _, call := range completion.ToolCalls {
			logger.Debug("Invoking tool", zap.String(logg.Tool, call.Name), zap.Int(logg.Step, n))

			result := catalog.Invoke(ctx, call.Name, call.Arguments)

			if !emit(entity.TurnChunk{Kind: entity.ChunkToolResult, ToolName: call.Name, Text: result}) {
				return apperr.Wrap(op, apperr.CodeTurnFailed, ctx.Err(), map[string]any{
					apperr.MetaReason: "context_done",
					apperr.MetaTool:   call.Name,
				})
			}

			messages = append(messages, Message{
				Role:       entity.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}

	logger.Warn("Step budget exhausted", zap.Int("max_steps", a.maxSteps))

	return apperr.Wrap(op, apperr.CodeMaxSteps, fmt.Errorf("no final answer after %d steps", a.maxSteps), map[string]any{
		apperr.MetaReason: "max_steps_exceeded",
		apperr.MetaStage:  apperr.StageTurn,
	})
}

func toModelMessages(history []entity.ChatMessage) []Message {
	messages := make([]Message, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case entity.RoleUser, entity.RoleAssistant:
			if m.Content == "" {
				continue
			}
			messages = append(messages, Message{Role: m.Role, Content: m.Content})
		}
	}

	return messages
}
