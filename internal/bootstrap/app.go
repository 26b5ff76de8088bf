package bootstrap

import (
	"browser-pilot/internal/ai"
	"browser-pilot/internal/browser"
	"browser-pilot/internal/config"
	"browser-pilot/internal/console"
	"browser-pilot/internal/metrics"
	"browser-pilot/internal/ports"
	"browser-pilot/internal/server"
	"browser-pilot/internal/usecase"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// NewApp wires the agent server: browser launcher, reasoning engine,
// session orchestrator and the HTTP/websocket front.
func NewApp() *fx.App {
	return fx.New(serverOptions())
}

// NewChatApp wires the terminal client that talks to a running server.
func NewChatApp() *fx.App {
	return fx.New(chatOptions(), fx.NopLogger)
}

func serverOptions() fx.Option {
	return fx.Options(
		fx.Provide(
			config.GetConfig,
			newLogger,
			newTraceProvider,

			fx.Annotate(metrics.NewRegistry, fx.As(new(prometheus.Registerer), new(prometheus.Gatherer))),
			metrics.NewMetrics,

			browser.NewLauncher,
			func(l *browser.Launcher) ports.BrowserLauncher { return l },

			ai.NewModel,
			fx.Annotate(ai.NewAgent, fx.As(new(ports.ReasoningEngine))),
			newCatalogFactory,

			usecase.NewUsecase,

			server.NewServer,
		),

		fx.Invoke(
			installTracing,
			runBrowser,
			runServer,
		),

		fx.StartTimeout(5*time.Minute),
		fx.StopTimeout(30*time.Second),
	)
}

func chatOptions() fx.Option {
	return fx.Options(
		fx.Provide(
			config.GetClientConfig,
			newClientLogger,
			newWSClient,

			console.NewInterface,
		),

		fx.Invoke(
			runConsole,
		),
	)
}
