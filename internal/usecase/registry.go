package usecase

import (
	"browser-pilot/internal/entity"
	"browser-pilot/internal/metrics"
	"sort"
	"sync"
)

// Registry tracks live sessions by id. Each entry is owned by the goroutine
// serving its connection; the registry only reads snapshots and can ask a
// session to close.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*AgentSession
	metrics  *metrics.Metrics
}

func NewRegistry(m *metrics.Metrics) *Registry {
	return &Registry{
		sessions: make(map[string]*AgentSession),
		metrics:  m,
	}
}

func (r *Registry) add(s *AgentSession) {
	r.mu.Lock()
	r.sessions[s.id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetSessions(n)
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetSessions(n)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

func (r *Registry) Get(id string) (entity.SessionInfo, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return entity.SessionInfo{}, false
	}

	return s.Info(), true
}

// List returns session snapshots, oldest first.
func (r *Registry) List() []entity.SessionInfo {
	r.mu.RLock()
	infos := make([]entity.SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		infos = append(infos, s.Info())
	}
	r.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ConnectedAt.Before(infos[j].ConnectedAt)
	})

	return infos
}

// CloseAll asks every session to shut down. It does not wait for teardown.
func (r *Registry) CloseAll() {
	r.mu.RLock()
	sessions := make([]*AgentSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		s.Close()
	}
}
