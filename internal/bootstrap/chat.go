package bootstrap

import (
	"browser-pilot/internal/config"
	"browser-pilot/internal/console"
	"browser-pilot/pkg/wsclient"
	"context"
	"errors"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func newWSClient(lc fx.Lifecycle, conf *config.ClientConfig, logger *zap.Logger) *wsclient.Client {
	client := wsclient.New(conf.URL,
		wsclient.WithReconnectInterval(conf.ReconnectInterval),
		wsclient.WithLogger(logger.Named("wsclient")),
	)

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)

				if err := client.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("Websocket client stopped", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			_ = client.Close()
			cancel()

			select {
			case <-done:
			case <-ctx.Done():
			}

			return nil
		},
	})

	return client
}

// runConsole reads from the terminal until the user exits or stdin ends,
// then stops the app.
func runConsole(lc fx.Lifecycle, iface *console.Interface, shutdowner fx.Shutdowner, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := iface.Run(ctx); err != nil {
					logger.Error("Console interface error", zap.Error(err))
				}

				if err := shutdowner.Shutdown(); err != nil {
					logger.Error("Failed to request shutdown", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(context.Context) error {
			cancel()

			return nil
		},
	})
}
