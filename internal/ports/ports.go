package ports

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

import (
	"browser-pilot/internal/entity"
	"context"
)

// BrowserSession is the control surface over one browser process and its
// single tracked tab.
type BrowserSession interface {
	OpenTab(ctx context.Context, url string) error
	UpdateURL(ctx context.Context, newURL string) (*entity.URLChange, error)
	DiscoverInteractiveElements(ctx context.Context) ([]entity.InteractiveElement, error)
	Interact(ctx context.Context, selector string, clickable bool, inputData string) error
	ExtractText(ctx context.Context) (string, error)
	CaptureScreenshot(ctx context.Context) (entity.Screenshot, error)
	CloseTab(ctx context.Context) string
	Close(ctx context.Context) string
}

// BrowserLauncher starts one dedicated browser process per session.
type BrowserLauncher interface {
	NewSession(ctx context.Context, sessionID string) (BrowserSession, error)
}

// ToolCatalog is what a reasoning engine sees of the browser: tool
// descriptions and a string-in, string-out invocation.
type ToolCatalog interface {
	Specs() []entity.ToolSpec
	Invoke(ctx context.Context, name string, arguments string) string
}

// ReasoningEngine runs one turn. The returned channel is closed when the
// turn is over; a failed turn ends with a single ChunkError.
type ReasoningEngine interface {
	RunTurn(ctx context.Context, history []entity.ChatMessage, catalog ToolCatalog) <-chan entity.TurnChunk
}

// ClientConn is one accepted client connection. Write is only ever called
// from a single goroutine.
type ClientConn interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
	RemoteAddr() string
}
