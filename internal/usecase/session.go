package usecase

import (
	"browser-pilot/internal/config"
	"browser-pilot/internal/entity"
	"browser-pilot/internal/metrics"
	"browser-pilot/internal/ports"
	"browser-pilot/pkg/apperr"
	"browser-pilot/pkg/logg"
	"browser-pilot/pkg/tracing"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const outboundBuffer = 64

var errClientGone = errors.New("client connection closed")

// AgentSession serves one client connection: one browser, one conversation,
// one screenshot ticker. Outbound events from every producer go through out
// and are written by a single goroutine.
type AgentSession struct {
	id          string
	remote      string
	connectedAt time.Time

	conn     ports.ClientConn
	browser  ports.BrowserSession
	catalog  ports.ToolCatalog
	engine   ports.ReasoningEngine
	registry *Registry
	metrics  *metrics.Metrics
	conf     *config.ServerConfig
	logger   *zap.Logger
	tracer   trace.Tracer
	limiter  *rate.Limiter

	out   chan entity.OutboundEvent
	turns chan string

	// pending counts turns queued or running. Only the reader increments it.
	pending atomic.Int32

	// history is only touched by the turn worker.
	history []entity.ChatMessage

	cancel    context.CancelFunc
	closeOnce sync.Once

	mu        sync.Mutex
	state     entity.SessionState
	turnCount int
}

func newLimiter(conf *config.ServerConfig) *rate.Limiter {
	if conf.MessagesPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}

	burst := conf.MessageBurst
	if burst <= 0 {
		burst = 1
	}

	return rate.NewLimiter(rate.Limit(conf.MessagesPerSecond), burst)
}

func (s *AgentSession) ID() string {
	return s.id
}

func (s *AgentSession) Info() entity.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return entity.SessionInfo{
		ID:          s.id,
		State:       s.state,
		Remote:      s.remote,
		ConnectedAt: s.connectedAt,
		Turns:       s.turnCount,
	}
}

// setState moves the state machine forward. Once closing starts, only the
// final CLOSED transition is accepted.
func (s *AgentSession) setState(state entity.SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case entity.SessionClosed:
		return
	case entity.SessionClosing:
		if state != entity.SessionClosed {
			return
		}
	}

	if s.state != state {
		s.logger.Debug("Session state changed",
			zap.String("from", string(s.state)),
			zap.String(logg.State, string(state)))
	}

	s.state = state
}

// Close cancels the session. Teardown happens on the serving goroutine.
func (s *AgentSession) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

// run blocks until the client goes away or ctx is cancelled, then tears the
// session down. A client disconnect is not an error.
func (s *AgentSession) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	tickerDone := make(chan struct{})
	writerDone := make(chan struct{})

	s.setState(entity.SessionActive)

	g.Go(func() error {
		return s.readLoop(gctx)
	})

	g.Go(func() error {
		defer close(writerDone)
		return s.writeLoop(gctx)
	})

	g.Go(func() error {
		return s.turnLoop(gctx)
	})

	g.Go(func() error {
		defer close(tickerDone)
		return s.screenshotLoop(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		s.teardown(context.WithoutCancel(gctx), tickerDone, writerDone)

		return nil
	})

	err := g.Wait()
	if errors.Is(err, errClientGone) || errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// teardown waits for the ticker and the writer to stop, then kills the
// browser and releases the connection. It runs at most once.
func (s *AgentSession) teardown(ctx context.Context, tickerDone, writerDone <-chan struct{}) {
	s.closeOnce.Do(func() {
		s.setState(entity.SessionClosing)

		<-tickerDone
		<-writerDone

		status := s.browser.Close(ctx)
		s.logger.Info("Browser session closed", zap.String("status", status))

		if err := s.conn.Close(); err != nil {
			s.logger.Debug("Connection close failed", zap.Error(err))
		}

		s.registry.remove(s.id)
		s.setState(entity.SessionClosed)
	})
}

func (s *AgentSession) readLoop(ctx context.Context) error {
	for {
		data, err := s.conn.Read(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Info("Client disconnected", zap.Error(err))
			}

			return fmt.Errorf("%w: %v", errClientGone, err)
		}

		text, err := decodeInbound(data)
		if err != nil {
			s.logger.Warn("Ignoring malformed client message", zap.Error(err))
			s.metrics.InboundDrop("decode_failed")

			continue
		}

		if text == "" {
			s.metrics.InboundDrop("blank")
			continue
		}

		if !s.limiter.Allow() {
			s.dropMessage(ctx, "rate_limited", "Too many messages, slow down. The last message was dropped.")
			continue
		}

		s.pending.Add(1)

		select {
		case s.turns <- text:
		default:
			s.pending.Add(-1)
			s.dropMessage(ctx, "queue_full", "Too many pending messages. The last message was dropped.")
		}
	}
}

// dropMessage records a message that will not become a turn. The client is
// told only when no turn is queued or running: an error event between a
// turn's chunks would read as that turn's terminal event.
func (s *AgentSession) dropMessage(ctx context.Context, reason, notice string) {
	s.metrics.InboundDrop(reason)

	if s.pending.Load() > 0 {
		s.logger.Info("Dropped client message while a turn is in progress", zap.String("reason", reason))
		return
	}

	s.logger.Info("Dropped client message", zap.String("reason", reason))
	s.emit(ctx, entity.ErrorEvent(notice))
}

func decodeInbound(data []byte) (string, error) {
	const op = "decodeInbound"

	var msg entity.InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return "", apperr.Wrap(op, apperr.CodeProtocolDecode, err, map[string]any{
			apperr.MetaReason: "invalid_json",
			apperr.MetaStage:  apperr.StageProtocol,
		})
	}

	return strings.TrimSpace(msg.Message), nil
}

func (s *AgentSession) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.out:
			if ctx.Err() != nil {
				return nil
			}

			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("Failed to encode event", zap.String("type", string(ev.Type)), zap.Error(err))
				continue
			}

			if err := s.conn.Write(ctx, data); err != nil {
				if ctx.Err() == nil {
					s.logger.Info("Write to client failed", zap.Error(err))
				}

				return fmt.Errorf("%w: %v", errClientGone, err)
			}

			if ev.Type == entity.EventScreenshot {
				s.metrics.ScreenshotSent()
			}
		}
	}
}

// emit queues an event for the writer. It reports false once the session is
// going away.
func (s *AgentSession) emit(ctx context.Context, ev entity.OutboundEvent) bool {
	select {
	case s.out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *AgentSession) screenshotLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.conf.ScreenshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			shot, err := s.browser.CaptureScreenshot(ctx)
			if err != nil {
				s.logger.Debug("Screenshot failed", zap.Error(err))
				continue
			}

			if shot.Empty() {
				continue
			}

			// Screenshots are dropped rather than queued behind a slow client.
			select {
			case s.out <- entity.ScreenshotEvent(shot.DataURI()):
			case <-ctx.Done():
				return nil
			default:
			}
		}
	}
}

func (s *AgentSession) turnLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case text := <-s.turns:
			s.runTurn(ctx, text)
			s.pending.Add(-1)
		}
	}
}

func (s *AgentSession) runTurn(ctx context.Context, text string) {
	const op = "runTurn"
	turnID := ulid.Make().String()
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.TurnID, turnID))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("turn.id", turnID))

	s.setState(entity.SessionTurnRunning)
	s.history = append(s.history, entity.ChatMessage{Role: entity.RoleUser, Content: text})

	var answer strings.Builder
	err := s.streamTurn(ctx, &answer)

	step.End(err)

	if answer.Len() > 0 {
		s.history = append(s.history, entity.ChatMessage{Role: entity.RoleAssistant, Content: answer.String()})
	}

	if ctx.Err() != nil {
		logger.Info("Turn abandoned, session closing")
		return
	}

	if err != nil {
		logger.Warn("Turn failed", zap.Error(err))
		s.metrics.ObserveTurn(metrics.OutcomeError)
		s.emit(ctx, entity.ErrorEvent(turnErrorMessage(err)))
	} else {
		logger.Debug("Turn finished", zap.Int("answer_len", answer.Len()))
		s.metrics.ObserveTurn(metrics.OutcomeOK)
		s.emit(ctx, entity.EndEvent())
	}

	s.mu.Lock()
	s.turnCount++
	s.mu.Unlock()

	s.setState(entity.SessionTurnIdle)
}

// streamTurn relays engine output until the engine is done. A panicking
// engine fails the turn, not the session.
func (s *AgentSession) streamTurn(ctx context.Context, answer *strings.Builder) (err error) {
	const op = "streamTurn"

	turnCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Reasoning engine panicked", zap.Any("panic", r))
			err = apperr.WrapErrorWithReason(op, apperr.CodeTurnFailed, fmt.Sprintf("reasoning engine panic: %v", r))
		}
	}()

	history := make([]entity.ChatMessage, len(s.history))
	copy(history, s.history)

	chunks := s.engine.RunTurn(turnCtx, history, s.catalog)
	if chunks == nil {
		return apperr.WrapErrorWithReason(op, apperr.CodeTurnFailed, "reasoning engine returned no output")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-chunks:
			if !ok {
				return nil
			}

			switch chunk.Kind {
			case entity.ChunkText:
				if chunk.Text == "" {
					continue
				}

				answer.WriteString(chunk.Text)
				s.emit(ctx, entity.AIEvent(chunk.Text))
			case entity.ChunkToolResult:
				s.emit(ctx, entity.ToolEvent(chunk.ToolName, chunk.Text))
			case entity.ChunkError:
				if chunk.Err == nil {
					chunk.Err = errors.New("reasoning engine failed")
				}

				return apperr.Wrap(op, apperr.CodeTurnFailed, chunk.Err, map[string]any{
					apperr.MetaReason: "engine_error",
					apperr.MetaStage:  apperr.StageTurn,
				})
			}
		}
	}
}

func turnErrorMessage(err error) string {
	switch {
	case apperr.HasCode(err, apperr.CodeMaxSteps):
		return "The agent stopped after reaching its step limit without a final answer."
	case apperr.HasCode(err, apperr.CodeAIError):
		return fmt.Sprintf("The AI request failed: %v", errors.Unwrap(err))
	default:
		return fmt.Sprintf("The turn failed: %v", err)
	}
}
