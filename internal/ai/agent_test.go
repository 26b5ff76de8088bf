package ai

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"browser-pilot/internal/config"
	"browser-pilot/internal/entity"
	"browser-pilot/internal/ports/mocks"
	"browser-pilot/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type stepFunc func(messages []Message, onText func(string)) (*Completion, error)

type scriptedModel struct {
	mu    sync.Mutex
	steps []stepFunc
	seen  [][]Message
}

func (m *scriptedModel) Complete(_ context.Context, _ string, messages []Message, _ []entity.ToolSpec, onText func(string)) (*Completion, error) {
	m.mu.Lock()
	idx := len(m.seen)
	m.seen = append(m.seen, append([]Message(nil), messages...))
	m.mu.Unlock()

	if idx >= len(m.steps) {
		return m.steps[len(m.steps)-1](messages, onText)
	}

	return m.steps[idx](messages, onText)
}

func newTestAgent(model Model, maxSteps int) *Agent {
	return NewAgent(AgentParams{
		Config: &config.Config{AIConfig: &config.AIConfig{MaxSteps: maxSteps}},
		Logger: zap.NewNop(),
		Model:  model,
	})
}

func collect(t *testing.T, ch <-chan entity.TurnChunk) []entity.TurnChunk {
	t.Helper()

	var chunks []entity.TurnChunk

	timeout := time.After(5 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			if !ok {
				return chunks
			}
			chunks = append(chunks, c)
		case <-timeout:
			t.Fatal("turn did not finish")
			return nil
		}
	}
}

func TestAgent_ToolThenAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockToolCatalog(ctrl)

	catalog.EXPECT().Specs().Return([]entity.ToolSpec{{Name: "new_browser_tab"}})
	catalog.EXPECT().
		Invoke(gomock.Any(), "new_browser_tab", `{"query":"https://example.com"}`).
		Return("New Tab opened for the query: https://example.com")

	model := &scriptedModel{steps: []stepFunc{
		func(_ []Message, _ func(string)) (*Completion, error) {
			return &Completion{ToolCalls: []entity.ToolCall{
				{ID: "call_1", Name: "new_browser_tab", Arguments: `{"query":"https://example.com"}`},
			}}, nil
		},
		func(_ []Message, onText func(string)) (*Completion, error) {
			onText("Opened ")
			onText("example.com")
			return &Completion{Text: "Opened example.com"}, nil
		},
	}}

	agent := newTestAgent(model, 10)
	history := []entity.ChatMessage{{Role: entity.RoleUser, Content: "open example.com"}}

	chunks := collect(t, agent.RunTurn(context.Background(), history, catalog))
	require.Len(t, chunks, 3)

	assert.Equal(t, entity.ChunkToolResult, chunks[0].Kind)
	assert.Equal(t, "new_browser_tab", chunks[0].ToolName)
	assert.Equal(t, entity.TurnChunk{Kind: entity.ChunkText, Text: "Opened "}, chunks[1])
	assert.Equal(t, entity.TurnChunk{Kind: entity.ChunkText, Text: "example.com"}, chunks[2])

	require.Len(t, model.seen, 2)
	second := model.seen[1]
	require.Len(t, second, 3)
	assert.Equal(t, entity.RoleUser, second[0].Role)
	assert.Equal(t, entity.RoleAssistant, second[1].Role)
	assert.Len(t, second[1].ToolCalls, 1)
	assert.Equal(t, entity.RoleTool, second[2].Role)
	assert.Equal(t, "call_1", second[2].ToolCallID)
}

func TestAgent_StepBound(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockToolCatalog(ctrl)

	catalog.EXPECT().Specs().Return(nil)
	catalog.EXPECT().Invoke(gomock.Any(), "list_interactive_elements", "{}").Return("[]").Times(3)

	model := &scriptedModel{steps: []stepFunc{
		func(_ []Message, _ func(string)) (*Completion, error) {
			return &Completion{ToolCalls: []entity.ToolCall{{ID: "x", Name: "list_interactive_elements", Arguments: "{}"}}}, nil
		},
	}}

	chunks := collect(t, newTestAgent(model, 3).RunTurn(context.Background(), nil, catalog))
	require.Len(t, chunks, 4)

	last := chunks[3]
	assert.Equal(t, entity.ChunkError, last.Kind)
	assert.True(t, apperr.HasCode(last.Err, apperr.CodeMaxSteps))
}

func TestAgent_ModelError(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockToolCatalog(ctrl)
	catalog.EXPECT().Specs().Return(nil)

	model := &scriptedModel{steps: []stepFunc{
		func(_ []Message, _ func(string)) (*Completion, error) {
			return nil, errors.New("overloaded")
		},
	}}

	chunks := collect(t, newTestAgent(model, 5).RunTurn(context.Background(), nil, catalog))
	require.Len(t, chunks, 1)
	assert.Equal(t, entity.ChunkError, chunks[0].Kind)
	assert.Equal(t, apperr.CodeAIError, apperr.CodeOf(chunks[0].Err))
}

func TestAgent_PanicBecomesErrorChunk(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockToolCatalog(ctrl)
	catalog.EXPECT().Specs().Return(nil)

	model := &scriptedModel{steps: []stepFunc{
		func(_ []Message, _ func(string)) (*Completion, error) {
			panic("boom")
		},
	}}

	chunks := collect(t, newTestAgent(model, 5).RunTurn(context.Background(), nil, catalog))
	require.Len(t, chunks, 1)
	assert.True(t, apperr.HasCode(chunks[0].Err, apperr.CodeTurnFailed))
}

func TestAgent_CancelStopsDelivery(t *testing.T) {
	ctrl := gomock.NewController(t)
	catalog := mocks.NewMockToolCatalog(ctrl)
	catalog.EXPECT().Specs().Return(nil)

	ctx, cancel := context.WithCancel(context.Background())

	model := &scriptedModel{steps: []stepFunc{
		func(_ []Message, onText func(string)) (*Completion, error) {
			cancel()
			onText("never read")
			return &Completion{Text: "never read"}, nil
		},
	}}

	ch := newTestAgent(model, 5).RunTurn(ctx, nil, catalog)

	select {
	case _, ok := <-ch:
		if ok {
			// A chunk may win the race with cancellation; the channel must
			// still close right after.
			_, ok = <-ch
		}
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestToModelMessages_SkipsSystemAndEmpty(t *testing.T) {
	got := toModelMessages([]entity.ChatMessage{
		{Role: entity.RoleSystem, Content: "sys"},
		{Role: entity.RoleUser, Content: "hi"},
		{Role: entity.RoleAssistant, Content: ""},
		{Role: entity.RoleAssistant, Content: "hello"},
	})

	assert.Equal(t, []Message{
		{Role: entity.RoleUser, Content: "hi"},
		{Role: entity.RoleAssistant, Content: "hello"},
	}, got)
}
