package browser

import (
	"browser-pilot/internal/config"
	"browser-pilot/internal/ports"
	"browser-pilot/pkg/apperr"
	"browser-pilot/pkg/logg"
	"browser-pilot/pkg/tracing"
	"context"
	"errors"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	launcherName  = "BrowserLauncher"
	browserTracer = "browser.session"
)

var errDriverNotRunning = errors.New("playwright driver is not running")

// Launcher owns the Playwright driver process. Every session gets its own
// Chromium process launched through it.
type Launcher struct {
	config *config.BrowserConfig
	logger *zap.Logger
	// base carries no layer field; sessions add their own.
	base   *zap.Logger
	tracer trace.Tracer

	mu sync.Mutex
	pw *playwright.Playwright
}

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
}

func NewLauncher(params Params) *Launcher {
	return &Launcher{
		config: params.Config.BrowserConfig,
		logger: params.Logger.With(zap.String(logg.Layer, launcherName)),
		base:   params.Logger,
		tracer: otel.Tracer(browserTracer),
	}
}

// Start installs (unless disabled) and runs the Playwright driver. A failure
// here means no session can ever start.
func (l *Launcher) Start(ctx context.Context) (err error) {
	const op = "Start"
	logger := l.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, l.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	runOptions := &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
	}

	if !l.config.SkipInstall {
		step.AddEvent("installing playwright")
		logger.Info("Installing playwright driver and chromium...")

		if err = playwright.Install(runOptions); err != nil {
			return apperr.Wrap(op, apperr.CodeLaunchFailed, err, map[string]any{
				apperr.MetaReason: "playwright_install_failed",
				apperr.MetaStage:  apperr.StageLaunch,
			})
		}
	}

	step.AddEvent("starting playwright")

	pw, err := playwright.Run(runOptions)
	if err != nil {
		return apperr.Wrap(op, apperr.CodeLaunchFailed, err, map[string]any{
			apperr.MetaReason: "playwright_start_failed",
			apperr.MetaStage:  apperr.StageLaunch,
		})
	}

	l.mu.Lock()
	l.pw = pw
	l.mu.Unlock()

	logger.Info("Playwright driver started")

	return nil
}

func (l *Launcher) Stop(ctx context.Context) (err error) {
	const op = "Stop"
	logger := l.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, l.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	l.mu.Lock()
	pw := l.pw
	l.pw = nil
	l.mu.Unlock()

	if pw == nil {
		return nil
	}

	if err = pw.Stop(); err != nil {
		return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "playwright_stop_failed",
		})
	}

	logger.Info("Playwright driver stopped")

	return nil
}

// NewSession launches a dedicated browser process for one client session.
func (l *Launcher) NewSession(ctx context.Context, sessionID string) (_ ports.BrowserSession, err error) {
	const op = "NewSession"
	logger := l.logger.With(zap.String(logg.Operation, op), zap.String(logg.SessionID, sessionID))

	_, step := tracing.StartSpan(ctx, l.tracer, logger, op, attribute.String("session.id", sessionID))
	defer func() {
		step.End(err)
	}()

	l.mu.Lock()
	pw := l.pw
	l.mu.Unlock()

	if pw == nil {
		return nil, apperr.Wrap(op, apperr.CodeLaunchFailed, errDriverNotRunning, map[string]any{
			apperr.MetaReason:    "driver_not_running",
			apperr.MetaStage:     apperr.StageLaunch,
			apperr.MetaSessionID: sessionID,
		})
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.config.Headless),
		SlowMo:   playwright.Float(float64(l.config.SlowMo)),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
		},
	})
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeLaunchFailed, err, map[string]any{
			apperr.MetaReason:    "browser_launch_failed",
			apperr.MetaStage:     apperr.StageLaunch,
			apperr.MetaSessionID: sessionID,
		})
	}

	browserContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		UserAgent:         playwright.String("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"),
		JavaScriptEnabled: playwright.Bool(true),
	})
	if err != nil {
		if closeErr := browser.Close(); closeErr != nil {
			logger.Warn("Failed to close browser after context failure", zap.Error(closeErr))
		}

		return nil, apperr.Wrap(op, apperr.CodeLaunchFailed, err, map[string]any{
			apperr.MetaReason:    "context_create_failed",
			apperr.MetaStage:     apperr.StageLaunch,
			apperr.MetaSessionID: sessionID,
		})
	}

	logger.Info("Browser launched for session")

	return l.bindSession(sessionID, browser, browserContext), nil
}

func (l *Launcher) bindSession(sessionID string, browser playwright.Browser, browserContext playwright.BrowserContext) *Session {
	return newSession(sessionID, l.config, l.base, l.tracer, browser, browserContext)
}
