package console

import (
	"browser-pilot/internal/config"
	"browser-pilot/pkg/logg"
	"browser-pilot/pkg/wsclient"
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// toolPreviewLimit is counted in characters.
const toolPreviewLimit = 300

var errExit = errors.New("exit")

// chatClient is the part of wsclient.Client the console needs.
type chatClient interface {
	Subscribe(h wsclient.Handler) func()
	Send(text string) error
	Connected() bool
}

type Interface struct {
	config *config.ClientConfig
	logger *zap.Logger
	client chatClient
	in     io.Reader
	out    io.Writer

	mu          sync.Mutex
	streaming   bool
	screenshots int
}

type Params struct {
	fx.In

	Config *config.ClientConfig
	Logger *zap.Logger
	Client *wsclient.Client
}

func NewInterface(params Params) *Interface {
	return newInterface(params.Config, params.Logger, params.Client, os.Stdin, os.Stdout)
}

func newInterface(conf *config.ClientConfig, logger *zap.Logger, client chatClient, in io.Reader, out io.Writer) *Interface {
	return &Interface{
		config: conf,
		logger: logger.With(zap.String(logg.Layer, "Console")),
		client: client,
		in:     in,
		out:    out,
	}
}

// Run prints server events as they arrive and sends every input line as a
// chat message. It returns on exit, end of input or ctx cancellation.
func (i *Interface) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	unsubscribe := i.client.Subscribe(i.render)
	defer unsubscribe()

	i.printBanner()
	i.printHelp()

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(i.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}

		scanErr <- scanner.Err()
	}()

	for {
		i.prompt()

		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}

			input := strings.TrimSpace(line)
			if input == "" {
				continue
			}

			if err := i.handleCommand(input); err != nil {
				if errors.Is(err, errExit) {
					return nil
				}

				i.logger.Warn("Command error", zap.Error(err))
				i.printf("Error: %v\n", err)
			}
		}
	}
}

func (i *Interface) handleCommand(input string) error {
	switch input {
	case "help", "h":
		i.printHelp()

		return nil
	case "status":
		if i.client.Connected() {
			i.printf("Connected to %s\n", i.config.URL)
		} else {
			i.printf("Not connected, retrying every %s\n", i.config.ReconnectInterval)
		}

		return nil
	case "exit", "quit", "q":
		i.printf("Shutting down...\n")

		return errExit
	default:
		return i.send(input)
	}
}

func (i *Interface) send(text string) error {
	err := i.client.Send(text)
	if errors.Is(err, wsclient.ErrNotConnected) {
		i.printf("Not connected to the server yet, message not sent.\n")
		return nil
	}

	return err
}

func (i *Interface) render(ev wsclient.Event) {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch ev.Type {
	case "ai":
		if !i.streaming {
			fmt.Fprint(i.out, "\nAgent: ")
			i.streaming = true
		}

		fmt.Fprint(i.out, ev.Content)
	case "tool":
		i.streaming = false
		fmt.Fprintf(i.out, "\n[%s] %s\n", ev.Name, preview(ev.Content))
	case "end":
		i.streaming = false
		fmt.Fprintf(i.out, "\n--- done (%d screenshots so far)\n", i.screenshots)
	case "error":
		i.streaming = false
		fmt.Fprintf(i.out, "\nError: %s\n", ev.Message)
	case "screenshot":
		i.screenshots++
		if i.config.Debug {
			fmt.Fprintf(i.out, "\n[screenshot %d, %d bytes]\n", i.screenshots, len(ev.Content))
		}
	default:
		i.logger.Debug("Ignoring unknown event", zap.String("type", ev.Type))
	}
}

func preview(s string) string {
	s = strings.TrimSpace(s)

	runes := []rune(s)
	if len(runes) <= toolPreviewLimit {
		return s
	}

	return string(runes[:toolPreviewLimit]) + "..."
}

func (i *Interface) prompt() {
	i.mu.Lock()
	defer i.mu.Unlock()

	fmt.Fprint(i.out, "\n> ")
}

func (i *Interface) printf(format string, args ...any) {
	i.mu.Lock()
	defer i.mu.Unlock()

	fmt.Fprintf(i.out, format, args...)
}

func (i *Interface) printBanner() {
	banner := `
+-----------------------------------------------------------+
|                                                           |
|                  browser-pilot chat                       |
|                                                           |
|   Ask the agent to browse the web on your behalf.         |
|                                                           |
+-----------------------------------------------------------+
`
	i.printf("%s\n", banner)
}

func (i *Interface) printHelp() {
	help := `
Available commands:
  help, h       - Show this help message
  status        - Show the connection state
  exit, quit, q - Exit the chat

Anything else is sent to the agent, for example:
    - Open example.com and tell me what the page is about
    - Search for the weather in Berlin
`
	i.printf("%s\n", help)
}
