package usecase

import (
	"context"
	"testing"
	"time"

	"browser-pilot/internal/entity"
	"browser-pilot/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistry_TracksSessions(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	r := NewRegistry(m)

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	older := &AgentSession{id: "a", connectedAt: base, state: entity.SessionActive}
	newer := &AgentSession{id: "b", connectedAt: base.Add(time.Minute), state: entity.SessionConnecting}

	r.add(newer)
	r.add(older)

	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsActive))

	infos := r.List()
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].ID)
	assert.Equal(t, "b", infos[1].ID)

	info, ok := r.Get("b")
	require.True(t, ok)
	assert.Equal(t, entity.SessionConnecting, info.State)

	r.remove("a")
	_, ok = r.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsActive))
}

func TestRegistry_CloseAllCancelsSessions(t *testing.T) {
	r := NewRegistry(nil)

	ctx, cancel := context.WithCancel(context.Background())
	r.add(&AgentSession{id: "a", cancel: cancel})

	r.CloseAll()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestAgentSession_StateAfterClosing(t *testing.T) {
	s := &AgentSession{state: entity.SessionActive, logger: zap.NewNop()}

	s.setState(entity.SessionClosing)
	s.setState(entity.SessionTurnIdle)
	assert.Equal(t, entity.SessionClosing, s.Info().State)

	s.setState(entity.SessionClosed)
	s.setState(entity.SessionActive)
	assert.Equal(t, entity.SessionClosed, s.Info().State)
}
