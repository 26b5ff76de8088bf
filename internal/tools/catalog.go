package tools

import (
	"browser-pilot/internal/entity"
	"browser-pilot/internal/metrics"
	"browser-pilot/internal/ports"
	"browser-pilot/pkg/logg"
	"browser-pilot/pkg/tracing"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	catalogName   = "ToolCatalog"
	catalogTracer = "tools.catalog"

	NewBrowserTab           = "new_browser_tab"
	UpdateTabURL            = "update_tab_url"
	ExtractPageContent      = "extract_page_content"
	ListInteractiveElements = "list_interactive_elements"
	InteractWithPage        = "interact_with_page"
)

type handler func(ctx context.Context, args Args) (string, error)

// Tool is one named operation the reasoning engine can call.
type Tool struct {
	Name        string
	Description string
	Schema      Schema
	handle      handler

	validator *Validator
}

// Catalog binds the browser tools to one Browser Session. Invoke always
// returns text; failures are folded into the result.
type Catalog struct {
	tools   []*Tool
	byName  map[string]*Tool
	timeout time.Duration
	logger  *zap.Logger
	tracer  trace.Tracer
	metrics *metrics.Metrics
}

func NewCatalog(browser ports.BrowserSession, timeout time.Duration, logger *zap.Logger, m *metrics.Metrics) *Catalog {
	c := &Catalog{
		byName:  make(map[string]*Tool),
		timeout: timeout,
		logger:  logger.With(zap.String(logg.Layer, catalogName)),
		tracer:  otel.Tracer(catalogTracer),
		metrics: m,
	}

	for _, t := range browserTools(browser) {
		t.validator = t.Schema.MustCompile(t.Name)
		c.tools = append(c.tools, t)
		c.byName[t.Name] = t
	}

	return c
}

func (c *Catalog) Specs() []entity.ToolSpec {
	specs := make([]entity.ToolSpec, 0, len(c.tools))
	for _, t := range c.tools {
		specs = append(specs, entity.ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.Schema.JSONSchema(),
		})
	}

	return specs
}

func (c *Catalog) Invoke(ctx context.Context, name string, arguments string) (result string) {
	const op = "Invoke"
	logger := c.logger.With(zap.String(logg.Operation, op), zap.String(logg.Tool, name))

	ctx, step := tracing.StartSpan(ctx, c.tracer, logger, op, attribute.String("tool.name", name))

	started := time.Now()
	outcome := metrics.OutcomeOK

	var err error
	defer func() {
		c.metrics.ObserveTool(name, outcome, time.Since(started))
		step.End(err)
	}()

	t, ok := c.byName[name]
	if !ok {
		outcome = metrics.OutcomeInvalid
		err = fmt.Errorf("unknown tool %q", name)
		logger.Warn("Unknown tool requested")

		return fmt.Sprintf("Unknown tool: %s", name)
	}

	args, err := t.validator.Validate(arguments)
	if err != nil {
		outcome = metrics.OutcomeInvalid
		logger.Info("Rejected tool arguments", zap.Error(err))

		return fmt.Sprintf("Invalid arguments for %s: %v", name, err)
	}

	result, err = c.run(ctx, t, args)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		outcome = metrics.OutcomeTimeout
		logger.Warn("Tool call timed out", zap.Duration("timeout", c.timeout))
	case err != nil:
		outcome = metrics.OutcomeError
		logger.Info("Tool call failed", zap.Error(err))
	default:
		logger.Debug("Tool call finished", zap.Duration("elapsed", time.Since(started)))
	}

	return result
}

type callResult struct {
	text string
	err  error
}

// run bounds a tool call by the catalog timeout. The handler keeps running in
// the background after a timeout; its late result is dropped.
func (c *Catalog) run(ctx context.Context, t *Tool, args Args) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	done := make(chan callResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{
					text: fmt.Sprintf("Tool %s failed: %v", t.Name, r),
					err:  fmt.Errorf("tool panic: %v", r),
				}
			}
		}()

		text, err := t.handle(ctx, args)
		done <- callResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Sprintf("Tool %s timed out after %s", t.Name, c.timeout), ctx.Err()
		}

		return fmt.Sprintf("Tool %s cancelled", t.Name), ctx.Err()
	}
}

func browserTools(browser ports.BrowserSession) []*Tool {
	return []*Tool{
		{
			Name:        NewBrowserTab,
			Description: "Opens a new tab in the browser with the specified URL. The query must be a complete URL (e.g., https://example.com). If you have keywords instead of a URL, use https://google.com and type your query in the search box.",
			Schema: Schema{
				{Name: "query", Type: TypeString, Required: true, Description: "The URL to open in the new tab. Must be a complete URL with protocol (e.g., https://example.com)"},
			},
			handle: func(ctx context.Context, args Args) (string, error) {
				query := args.String("query")

				if err := browser.OpenTab(ctx, query); err != nil {
					return fmt.Sprintf("Failed to navigate to %s: %v", query, err), err
				}

				return fmt.Sprintf("New Tab opened for the query: %s", query), nil
			},
		},
		{
			Name:        UpdateTabURL,
			Description: "Updates the current page URL to a new URL. This is particularly useful for quickly navigating to different pages using known href values.",
			Schema: Schema{
				{Name: "newUrl", Type: TypeString, Required: true, Description: "The new URL to navigate the current tab to. This strictly has to be a URL."},
			},
			handle: func(ctx context.Context, args Args) (string, error) {
				change, err := browser.UpdateURL(ctx, args.String("newUrl"))
				if err != nil {
					change = &entity.URLChange{Message: fmt.Sprintf("Failed to update URL: %v", err)}
				}

				data, mErr := json.Marshal(change)
				if mErr != nil {
					return fmt.Sprintf("Failed to update URL: %v", mErr), mErr
				}

				return string(data), err
			},
		},
		{
			Name:        ExtractPageContent,
			Description: "Extracts the human readable visible text of the current page. Useful for getting an idea of the page; returns plain text, not HTML.",
			handle: func(ctx context.Context, _ Args) (string, error) {
				text, err := browser.ExtractText(ctx)
				if err != nil {
					return fmt.Sprintf("Error extracting text content: %v", err), err
				}

				return text, nil
			},
		},
		{
			Name:        ListInteractiveElements,
			Description: "Returns a JSON array of the interactive elements (inputs, buttons, links) on the current page with their tag, id, class name, text and href. Use it to build CSS selectors for interact_with_page.",
			handle: func(ctx context.Context, _ Args) (string, error) {
				elements, err := browser.DiscoverInteractiveElements(ctx)
				if err != nil {
					return fmt.Sprintf("Error finding interactive elements: %v", err), err
				}

				data, err := json.MarshalIndent(elements, "", "  ")
				if err != nil {
					return fmt.Sprintf("Error finding interactive elements: %v", err), err
				}

				return string(data), nil
			},
		},
		{
			Name:        InteractWithPage,
			Description: "Interacts with an HTML element on the page using a CSS selector. If the element is clickable, it is clicked. If it is an input field, its content is replaced with the provided data and Enter is pressed.",
			Schema: Schema{
				{Name: "html_selector", Type: TypeString, Required: true, Description: "CSS selector of the HTML element to interact with. Should be as specific as possible"},
				{Name: "clickable", Type: TypeBoolean, Description: "Indicates whether the element is clickable (e.g., a button or a link). Defaults to false."},
				{Name: "input_data", Type: TypeString, Description: "If the element is an input field, the data to fill in. Leave empty if not applicable."},
			},
			handle: func(ctx context.Context, args Args) (string, error) {
				selector := args.String("html_selector")

				if err := browser.Interact(ctx, selector, args.Bool("clickable"), args.String("input_data")); err != nil {
					return fmt.Sprintf("Failed to interact with %s: %v", selector, err), err
				}

				return fmt.Sprintf("Successfully interacted with element: %s", selector), nil
			},
		},
	}
}
