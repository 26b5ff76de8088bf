package usecase

import (
	"browser-pilot/internal/config"
	"browser-pilot/internal/entity"
	"browser-pilot/internal/metrics"
	"browser-pilot/internal/ports"
	"browser-pilot/pkg/logg"
	"browser-pilot/pkg/tracing"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	orchestratorName   = "Orchestrator"
	orchestratorTracer = "usecase.orchestrator"
)

// CatalogFactory binds a tool catalog to a freshly launched browser.
type CatalogFactory func(browser ports.BrowserSession, logger *zap.Logger) ports.ToolCatalog

type Orchestrator struct {
	config     *config.Config
	launcher   ports.BrowserLauncher
	engine     ports.ReasoningEngine
	newCatalog CatalogFactory
	registry   *Registry
	metrics    *metrics.Metrics
	logger     *zap.Logger
	tracer     trace.Tracer
}

func NewOrchestrator(
	conf *config.Config,
	launcher ports.BrowserLauncher,
	engine ports.ReasoningEngine,
	newCatalog CatalogFactory,
	registry *Registry,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		config:     conf,
		launcher:   launcher,
		engine:     engine,
		newCatalog: newCatalog,
		registry:   registry,
		metrics:    m,
		logger:     logger.With(zap.String(logg.Layer, orchestratorName)),
		tracer:     otel.Tracer(orchestratorTracer),
	}
}

// Serve runs one client session to completion. Each call gets its own
// browser; nothing is shared with other connections. It returns once the
// session has been torn down.
func (o *Orchestrator) Serve(ctx context.Context, conn ports.ClientConn) (err error) {
	const op = "Serve"

	id := uuid.NewString()
	logger := o.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.SessionID, id),
		zap.String(logg.Remote, conn.RemoteAddr()),
	)

	ctx, step := tracing.StartSpan(ctx, o.tracer, logger, op, attribute.String("session.id", id))
	defer func() {
		step.End(err)
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serverConf := o.config.ServerConfig

	session := &AgentSession{
		id:          id,
		remote:      conn.RemoteAddr(),
		connectedAt: time.Now(),
		conn:        conn,
		engine:      o.engine,
		registry:    o.registry,
		metrics:     o.metrics,
		conf:        serverConf,
		logger:      o.logger.With(zap.String(logg.SessionID, id)),
		tracer:      o.tracer,
		limiter:     newLimiter(serverConf),
		out:         make(chan entity.OutboundEvent, outboundBuffer),
		turns:       make(chan string, serverConf.TurnQueue),
		cancel:      cancel,
		state:       entity.SessionConnecting,
	}

	o.registry.add(session)
	logger.Info("Client connected")

	browser, err := o.launcher.NewSession(ctx, id)
	if err != nil {
		o.metrics.SessionLaunch(metrics.OutcomeError)
		logger.Error("Failed to launch browser for session", zap.Error(err))

		o.rejectSession(ctx, session, fmt.Sprintf("Failed to start a browser for this session: %v", err))

		return err
	}

	o.metrics.SessionLaunch(metrics.OutcomeOK)

	session.browser = browser
	session.catalog = o.newCatalog(browser, session.logger)

	err = session.run(ctx)

	logger.Info("Client session finished", zap.Int("turns", session.Info().Turns))

	return err
}

func (o *Orchestrator) rejectSession(ctx context.Context, session *AgentSession, message string) {
	defer func() {
		if err := session.conn.Close(); err != nil {
			session.logger.Debug("Connection close failed", zap.Error(err))
		}

		o.registry.remove(session.id)
		session.setState(entity.SessionClosed)
	}()

	data, err := json.Marshal(entity.ErrorEvent(message))
	if err != nil {
		return
	}

	if err := session.conn.Write(ctx, data); err != nil {
		session.logger.Debug("Failed to report launch failure", zap.Error(err))
	}
}

func (o *Orchestrator) Active() int {
	return o.registry.Len()
}

// Shutdown asks every live session to close.
func (o *Orchestrator) Shutdown() {
	o.registry.CloseAll()
}
