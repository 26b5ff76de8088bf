package bootstrap

import (
	"browser-pilot/internal/config"

	"go.uber.org/zap"
)

func newLogger(config *config.Config) (*zap.Logger, error) {
	return buildLogger(config.AppConfig.LogLevel, config.AppConfig.Debug)
}

func newClientLogger(config *config.ClientConfig) (*zap.Logger, error) {
	return buildLogger(config.LogLevel, config.Debug)
}

func buildLogger(level string, debug bool) (*zap.Logger, error) {
	var zapConfig zap.Config

	if debug {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	zapConfig.DisableStacktrace = true

	switch level {
	case "debug":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapConfig.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	return logger, nil
}
