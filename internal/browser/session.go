package browser

import (
	"browser-pilot/internal/config"
	"browser-pilot/internal/entity"
	"browser-pilot/pkg/apperr"
	"browser-pilot/pkg/logg"
	"browser-pilot/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	sessionName       = "BrowserSession"
	screenshotQuality = 60
)

var (
	errNoActiveTab   = errors.New("no active tab")
	errSessionClosed = errors.New("browser session is closed")
)

// Session is one browser process and the single page it tracks. Pages the
// site opens on its own (popups, target=_blank) are never picked up.
//
// Tool operations are serialised by opMu. Screenshots and teardown only take
// mu, so a slow typing operation does not hold them back.
type Session struct {
	id     string
	config *config.BrowserConfig
	logger *zap.Logger
	tracer trace.Tracer

	opMu sync.Mutex

	mu             sync.RWMutex
	browser        playwright.Browser
	browserContext playwright.BrowserContext
	tab            playwright.Page
	elements       []entity.InteractiveElement
	closed         bool
}

func newSession(
	id string,
	cfg *config.BrowserConfig,
	logger *zap.Logger,
	tracer trace.Tracer,
	browser playwright.Browser,
	browserContext playwright.BrowserContext,
) *Session {
	return &Session{
		id:             id,
		config:         cfg,
		logger:         logger.With(zap.String(logg.Layer, sessionName), zap.String(logg.SessionID, id)),
		tracer:         tracer,
		browser:        browser,
		browserContext: browserContext,
	}
}

func (s *Session) activeTab() playwright.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed || s.tab == nil || s.tab.IsClosed() {
		return nil
	}

	return s.tab
}

// ensureTab returns the tracked page, creating it when there is none yet or
// the previous one was closed.
func (s *Session) ensureTab() (playwright.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errSessionClosed
	}

	if s.tab != nil && !s.tab.IsClosed() {
		return s.tab, nil
	}

	if s.browserContext == nil {
		return nil, errSessionClosed
	}

	page, err := s.browserContext.NewPage()
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	s.tab = page
	s.elements = nil

	return page, nil
}

func (s *Session) navigationTimeout() *float64 {
	return playwright.Float(float64(s.config.Timeout))
}

func (s *Session) OpenTab(ctx context.Context, url string) (err error) {
	const op = "OpenTab"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	_, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err = ctx.Err(); err != nil {
		return apperr.Wrap(op, apperr.CodeNavigationFailed, err, map[string]any{
			apperr.MetaReason: "context_done",
			apperr.MetaURL:    url,
		})
	}

	tab, err := s.ensureTab()
	if err != nil {
		code := apperr.CodeNavigationFailed
		if errors.Is(err, errSessionClosed) {
			code = apperr.CodeSessionClosed
		}

		return apperr.Wrap(op, code, err, map[string]any{
			apperr.MetaReason: "tab_unavailable",
			apperr.MetaStage:  apperr.StageBrowser,
			apperr.MetaURL:    url,
		})
	}

	step.AddEvent("navigating to URL")

	_, err = tab.Goto(url, playwright.PageGotoOptions{
		Timeout:   s.navigationTimeout(),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return apperr.Wrap(op, apperr.CodeNavigationFailed, err, map[string]any{
			apperr.MetaReason: "goto_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    url,
		})
	}

	logger.Debug("Tab opened", zap.String("current_url", tab.URL()))

	return nil
}

func (s *Session) UpdateURL(ctx context.Context, newURL string) (change *entity.URLChange, err error) {
	const op = "UpdateURL"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, newURL))

	_, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("url", newURL))
	defer func() {
		step.End(err)
	}()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	tab := s.activeTab()
	if tab == nil {
		return nil, apperr.Wrap(op, apperr.CodeNoActiveTab, errNoActiveTab, map[string]any{
			apperr.MetaReason: "no_active_tab",
			apperr.MetaStage:  apperr.StageNavigation,
		})
	}

	previous := tab.URL()

	_, err = tab.Goto(newURL, playwright.PageGotoOptions{
		Timeout:   s.navigationTimeout(),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeNavigationFailed, err, map[string]any{
			apperr.MetaReason: "goto_failed",
			apperr.MetaStage:  apperr.StageNavigation,
			apperr.MetaURL:    newURL,
		})
	}

	return &entity.URLChange{
		Previous: previous,
		Current:  newURL,
		Message:  fmt.Sprintf("Changed tab URL to %s", newURL),
	}, nil
}

func (s *Session) DiscoverInteractiveElements(ctx context.Context) (elements []entity.InteractiveElement, err error) {
	const op = "DiscoverInteractiveElements"
	logger := s.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	tab := s.activeTab()
	if tab == nil {
		return nil, apperr.Wrap(op, apperr.CodeNoActiveTab, errNoActiveTab, map[string]any{
			apperr.MetaReason: "no_active_tab",
			apperr.MetaStage:  apperr.StageDiscovery,
		})
	}

	html, err := tab.Content()
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "page_content_failed",
			apperr.MetaStage:  apperr.StageDiscovery,
		})
	}

	elements, err = parseInteractiveElements(html, tab.URL())
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "parse_failed",
			apperr.MetaStage:  apperr.StageDiscovery,
		})
	}

	s.mu.Lock()
	s.elements = elements
	s.mu.Unlock()

	step.SetAttributes(attribute.Int("elements.count", len(elements)))
	logger.Debug("Interactive elements discovered", zap.Int("count", len(elements)))

	return elements, nil
}

// Interact waits for selector and either clicks it or replaces its content
// with inputData, typed key by key, followed by Enter.
func (s *Session) Interact(ctx context.Context, selector string, clickable bool, inputData string) (err error) {
	const op = "Interact"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Selector, selector))

	_, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("selector", selector),
		attribute.Bool("clickable", clickable),
	)
	defer func() {
		step.End(err)
	}()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	tab := s.activeTab()
	if tab == nil {
		return apperr.Wrap(op, apperr.CodeNoActiveTab, errNoActiveTab, map[string]any{
			apperr.MetaReason:   "no_active_tab",
			apperr.MetaStage:    apperr.StageInteraction,
			apperr.MetaSelector: selector,
		})
	}

	_, err = tab.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(s.config.ElementTimeout)),
	})
	if err != nil {
		code := apperr.CodeInteractionFailed
		if errors.Is(err, playwright.ErrTimeout) {
			code = apperr.CodeElementNotFound
		}

		return apperr.Wrap(op, code, err, map[string]any{
			apperr.MetaReason:   "wait_selector_failed",
			apperr.MetaStage:    apperr.StageInteraction,
			apperr.MetaSelector: selector,
		})
	}

	if clickable {
		step.AddEvent("click")
		err = tab.Click(selector)
	} else {
		step.AddEvent("type")
		err = s.replaceText(tab, selector, inputData)
	}

	if err != nil {
		return apperr.Wrap(op, apperr.CodeInteractionFailed, err, map[string]any{
			apperr.MetaReason:   "interaction_failed",
			apperr.MetaStage:    apperr.StageInteraction,
			apperr.MetaSelector: selector,
		})
	}

	return nil
}

func (s *Session) replaceText(tab playwright.Page, selector, text string) error {
	if err := tab.Focus(selector); err != nil {
		return fmt.Errorf("focus: %w", err)
	}

	keyboard := tab.Keyboard()

	if err := keyboard.Down("Control"); err != nil {
		return fmt.Errorf("select all: %w", err)
	}
	if err := keyboard.Press("A"); err != nil {
		return fmt.Errorf("select all: %w", err)
	}
	if err := keyboard.Up("Control"); err != nil {
		return fmt.Errorf("select all: %w", err)
	}
	if err := keyboard.Press("Backspace"); err != nil {
		return fmt.Errorf("clear: %w", err)
	}

	if err := tab.Type(selector, text, playwright.PageTypeOptions{
		Delay: playwright.Float(float64(s.config.TypingDelay)),
	}); err != nil {
		return fmt.Errorf("type: %w", err)
	}

	if err := keyboard.Press("Enter"); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	return nil
}

// ExtractText returns the visible text of the page body. An empty body
// yields a placeholder naming the page title instead of an error.
func (s *Session) ExtractText(ctx context.Context) (text string, err error) {
	const op = "ExtractText"
	logger := s.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	s.opMu.Lock()
	defer s.opMu.Unlock()

	tab := s.activeTab()
	if tab == nil {
		return "", apperr.Wrap(op, apperr.CodeNoActiveTab, errNoActiveTab, map[string]any{
			apperr.MetaReason: "no_active_tab",
		})
	}

	title, err := tab.Title()
	if err != nil {
		logger.Debug("Failed to read page title", zap.Error(err))
	}

	text, err = tab.InnerText("body")
	if err != nil {
		return "", apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "inner_text_failed",
		})
	}

	if text == "" {
		return fmt.Sprintf("Failed to extract text content for page: %s", title), nil
	}

	return text, nil
}

// CaptureScreenshot returns the zero Screenshot when there is nothing to
// capture.
func (s *Session) CaptureScreenshot(ctx context.Context) (shot entity.Screenshot, err error) {
	const op = "CaptureScreenshot"

	tab := s.activeTab()
	if tab == nil {
		return entity.Screenshot{}, nil
	}

	logger := s.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, s.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	data, err := tab.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(false),
		Type:     playwright.ScreenshotTypeJpeg,
		Quality:  playwright.Int(screenshotQuality),
	})
	if err != nil {
		return entity.Screenshot{}, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "screenshot_failed",
			apperr.MetaStage:  apperr.StageScreenshot,
		})
	}

	return entity.Screenshot{Data: data, MimeType: "image/jpeg"}, nil
}

func (s *Session) CurrentURL() string {
	if tab := s.activeTab(); tab != nil {
		return tab.URL()
	}

	return ""
}

// Elements returns the last discovery snapshot.
func (s *Session) Elements() []entity.InteractiveElement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.elements
}

func (s *Session) CloseTab(ctx context.Context) string {
	const op = "CloseTab"
	logger := s.logger.With(zap.String(logg.Operation, op))

	s.mu.Lock()
	tab := s.tab
	s.tab = nil
	s.elements = nil
	s.mu.Unlock()

	if tab == nil || tab.IsClosed() {
		return "No open tab to close"
	}

	if err := tab.Close(); err != nil {
		logger.Warn("Failed to close tab", zap.Error(err))
		return fmt.Sprintf("Failed to close tab: %v", err)
	}

	return "Tab closed successfully"
}

// Close kills the browser process. Only the first call does any work.
func (s *Session) Close(ctx context.Context) string {
	const op = "Close"
	logger := s.logger.With(zap.String(logg.Operation, op))

	_, step := tracing.StartSpan(ctx, s.tracer, logger, op)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		step.End(nil)

		return "Browser already closed"
	}

	s.closed = true
	browser := s.browser
	browserContext := s.browserContext
	s.browser = nil
	s.browserContext = nil
	s.tab = nil
	s.elements = nil
	s.mu.Unlock()

	if browser == nil {
		step.End(nil)
		return "Browser not initialized"
	}

	if browserContext != nil {
		if err := browserContext.Close(); err != nil {
			logger.Warn("Failed to close context", zap.Error(err))
		}
	}

	if err := browser.Close(); err != nil {
		step.End(err)
		logger.Warn("Failed to close browser", zap.Error(err))

		return fmt.Sprintf("Failed to close browser: %v", err)
	}

	step.End(nil)
	logger.Info("Browser closed")

	return "Browser closed successfully"
}
