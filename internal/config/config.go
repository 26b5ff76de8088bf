package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppConfig     *AppConfig
	ServerConfig  *ServerConfig
	AIConfig      *AIConfig
	BrowserConfig *BrowserConfig
}

type AppConfig struct {
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"browser-pilot"`
	TraceStdout bool   `envconfig:"TRACE_STDOUT" default:"false"`
}

type ServerConfig struct {
	Addr               string        `envconfig:"SERVER_ADDR" default:":8080"`
	ScreenshotInterval time.Duration `envconfig:"SERVER_SCREENSHOT_INTERVAL" default:"1s"`
	WriteTimeout       time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
	MessagesPerSecond  float64       `envconfig:"SERVER_MESSAGES_PER_SECOND" default:"2"`
	MessageBurst       int           `envconfig:"SERVER_MESSAGE_BURST" default:"4"`
	TurnQueue          int           `envconfig:"SERVER_TURN_QUEUE" default:"8"`
	AllowedOrigins     []string      `envconfig:"SERVER_ALLOWED_ORIGINS"`
}

type AIConfig struct {
	Provider  string `envconfig:"AI_PROVIDER" default:"anthropic"`
	APIKey    string `envconfig:"AI_API_KEY" required:"true"`
	Model     string `envconfig:"AI_MODEL" default:"claude-sonnet-4-20250514"`
	BaseURL   string `envconfig:"AI_BASE_URL"`
	MaxTokens int    `envconfig:"AI_MAX_TOKENS" default:"2048"`
	MaxSteps  int    `envconfig:"AI_MAX_STEPS" default:"50"`
}

type BrowserConfig struct {
	Headless       bool          `envconfig:"BROWSER_HEADLESS" default:"false"`
	SlowMo         int           `envconfig:"BROWSER_SLOW_MO" default:"0"`
	Timeout        int           `envconfig:"BROWSER_TIMEOUT" default:"30000"`
	ElementTimeout int           `envconfig:"BROWSER_ELEMENT_TIMEOUT" default:"5000"`
	TypingDelay    int           `envconfig:"BROWSER_TYPING_DELAY" default:"300"`
	ToolTimeout    time.Duration `envconfig:"BROWSER_TOOL_TIMEOUT" default:"60s"`
	SkipInstall    bool          `envconfig:"BROWSER_SKIP_INSTALL" default:"false"`
}

// ClientConfig configures the terminal chat client. It is loaded separately
// so that the client does not require server-side secrets.
type ClientConfig struct {
	URL               string        `envconfig:"CLIENT_URL" default:"ws://localhost:8080/ws"`
	ReconnectInterval time.Duration `envconfig:"CLIENT_RECONNECT_INTERVAL" default:"3s"`
	LogLevel          string        `envconfig:"LOG_LEVEL" default:"warn"`
	Debug             bool          `envconfig:"DEBUG" default:"false"`
}

func GetConfig() (*Config, error) {
	_ = godotenv.Load()

	var conf Config

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read config from env vars: %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return &conf, nil
}

func GetClientConfig() (*ClientConfig, error) {
	_ = godotenv.Load()

	var conf ClientConfig

	if err := envconfig.Process("", &conf); err != nil {
		return nil, fmt.Errorf("read client config from env vars: %w", err)
	}

	if conf.ReconnectInterval <= 0 {
		return nil, fmt.Errorf("CLIENT_RECONNECT_INTERVAL must be positive, got %s", conf.ReconnectInterval)
	}

	return &conf, nil
}

func (c *Config) validate() error {
	if c.AIConfig.APIKey == "" {
		return fmt.Errorf("AI_API_KEY must not be empty")
	}

	switch c.AIConfig.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q (want anthropic or openai)", c.AIConfig.Provider)
	}

	if c.AIConfig.MaxSteps <= 0 {
		return fmt.Errorf("AI_MAX_STEPS must be positive, got %d", c.AIConfig.MaxSteps)
	}

	if c.ServerConfig.ScreenshotInterval <= 0 {
		return fmt.Errorf("SERVER_SCREENSHOT_INTERVAL must be positive, got %s", c.ServerConfig.ScreenshotInterval)
	}

	if c.ServerConfig.TurnQueue <= 0 {
		return fmt.Errorf("SERVER_TURN_QUEUE must be positive, got %d", c.ServerConfig.TurnQueue)
	}

	return nil
}
