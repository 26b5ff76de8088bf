package browser

import (
	"context"
	"testing"

	"browser-pilot/internal/config"
	"browser-pilot/pkg/logg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLauncher_SessionLogsCarryOneLayer(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	l := NewLauncher(Params{
		Config: &config.Config{BrowserConfig: &config.BrowserConfig{Timeout: 1000}},
		Logger: zap.New(core),
	})

	s := l.bindSession("session-1", nil, nil)

	_, err := s.UpdateURL(context.Background(), "https://example.com")
	require.Error(t, err)

	entries := logs.All()
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		var layers []string
		for _, field := range entry.Context {
			if field.Key == logg.Layer {
				layers = append(layers, field.String)
			}
		}

		assert.Equal(t, []string{sessionName}, layers, entry.Message)
	}
}

func TestLauncher_NewSessionWithoutDriver(t *testing.T) {
	l := NewLauncher(Params{
		Config: &config.Config{BrowserConfig: &config.BrowserConfig{}},
		Logger: zap.NewNop(),
	})

	_, err := l.NewSession(context.Background(), "session-1")
	assert.ErrorIs(t, err, errDriverNotRunning)
}
