package server

import (
	"browser-pilot/internal/config"
	"browser-pilot/internal/usecase"
	"browser-pilot/pkg/logg"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const readHeaderTimeout = 10 * time.Second

// Server exposes the agent over a websocket endpoint plus health and
// metrics routes.
type Server struct {
	config   *config.ServerConfig
	logger   *zap.Logger
	usecase  *usecase.Service
	gatherer prometheus.Gatherer

	allowedOrigins map[string]bool
	upgrader       websocket.Upgrader

	httpServer *http.Server
	listener   net.Listener

	// baseCtx outlives individual requests; sessions are cancelled through
	// it on shutdown.
	baseCtx    context.Context
	baseCancel context.CancelFunc

	// mu orders session registration against Stop so that no Add happens
	// once Stop has started waiting.
	mu       sync.Mutex
	stopping bool
	sessions sync.WaitGroup
}

type Params struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Usecase  *usecase.Service
	Gatherer prometheus.Gatherer
}

func NewServer(params Params) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:         params.Config.ServerConfig,
		logger:         params.Logger.With(zap.String(logg.Layer, "Server")),
		usecase:        params.Usecase,
		gatherer:       params.Gatherer,
		allowedOrigins: make(map[string]bool),
		baseCtx:        ctx,
		baseCancel:     cancel,
	}

	for _, origin := range s.config.AllowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			s.allowedOrigins[trimmed] = true
		}
	}

	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.httpServer = &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s
}

func (s *Server) Routes() http.Handler {
	router := chi.NewRouter()

	router.Get("/ws", s.handleWS)
	router.Get("/healthz", s.handleHealth)
	router.Get("/sessions", s.handleSessions)

	if s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return router
}

// Start binds the listener synchronously so that a bad address fails the
// app start, then serves in the background.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}

	s.listener = ln
	s.logger.Info("Listening", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	return nil
}

// Stop closes every session, waits for their teardown and then shuts the
// HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down", zap.Int("sessions", s.usecase.Sessions.Active()))

	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	s.baseCancel()
	s.usecase.Sessions.Shutdown()

	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Sessions did not finish before shutdown deadline")
	}

	return s.httpServer.Shutdown(ctx)
}

// Addr is the bound listener address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.allowedOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if s.allowedOrigins[origin] {
		return true
	}

	parsed, err := url.Parse(origin)

	return err == nil && s.allowedOrigins[parsed.Scheme+"://"+parsed.Host]
}

// acquireSession reserves a slot in the shutdown wait group. It fails once
// Stop has begun.
func (s *Server) acquireSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		return false
	}

	s.sessions.Add(1)

	return true
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if !s.acquireSession() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.sessions.Done()

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.String(logg.Remote, r.RemoteAddr), zap.Error(err))
		return
	}

	conn := newConn(ws, s.config.WriteTimeout)

	if err := s.usecase.Sessions.Serve(s.baseCtx, conn); err != nil {
		s.logger.Warn("Session ended with error", zap.String(logg.Remote, conn.RemoteAddr()), zap.Error(err))
	}
}

type healthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Sessions: s.usecase.Registry.Len()})
}

type sessionView struct {
	ID          string    `json:"id"`
	State       string    `json:"state"`
	Remote      string    `json:"remote"`
	ConnectedAt time.Time `json:"connectedAt"`
	Turns       int       `json:"turns"`
}

func (s *Server) handleSessions(w http.ResponseWriter, _ *http.Request) {
	infos := s.usecase.Registry.List()

	views := make([]sessionView, 0, len(infos))
	for _, info := range infos {
		views = append(views, sessionView{
			ID:          info.ID,
			State:       string(info.State),
			Remote:      info.Remote,
			ConnectedAt: info.ConnectedAt,
			Turns:       info.Turns,
		})
	}

	writeJSON(w, http.StatusOK, views)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
