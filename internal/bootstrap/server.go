package bootstrap

import (
	"browser-pilot/internal/browser"
	"browser-pilot/internal/config"
	"browser-pilot/internal/metrics"
	"browser-pilot/internal/ports"
	"browser-pilot/internal/server"
	"browser-pilot/internal/tools"
	"browser-pilot/internal/usecase"
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newCatalogFactory(conf *config.Config, m *metrics.Metrics) usecase.CatalogFactory {
	return func(b ports.BrowserSession, logger *zap.Logger) ports.ToolCatalog {
		return tools.NewCatalog(b, conf.BrowserConfig.ToolTimeout, logger, m)
	}
}

// runBrowser starts the Playwright driver. A driver that cannot start is
// fatal for the process; per-session browsers are launched on connect.
func runBrowser(lc fx.Lifecycle, launcher *browser.Launcher, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting browser driver...")

			if err := launcher.Start(ctx); err != nil {
				logger.Error("Failed to start browser driver", zap.Error(err))

				return err
			}

			logger.Info("Browser driver started")

			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := launcher.Stop(ctx); err != nil {
				logger.Error("Failed to stop browser driver", zap.Error(err))
			}

			return nil
		},
	})
}

func runServer(lc fx.Lifecycle, srv *server.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting browser-pilot server...")

			return srv.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down browser-pilot server...")

			if err := srv.Stop(ctx); err != nil {
				logger.Error("Failed to stop server cleanly", zap.Error(err))
			}

			return nil
		},
	})
}
