package usecase

import (
	"browser-pilot/internal/config"
	"browser-pilot/internal/metrics"
	"browser-pilot/internal/ports"
	"browser-pilot/internal/usecase/adapters"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	Sessions adapters.SessionService
	Registry adapters.RegistryService
}

type Params struct {
	fx.In

	Logger   *zap.Logger
	Config   *config.Config
	Metrics  *metrics.Metrics
	Launcher ports.BrowserLauncher
	Engine   ports.ReasoningEngine
	Catalog  CatalogFactory
}

func NewUsecase(params Params) *Service {
	factory := newServiceFactory(params)

	return &Service{
		Sessions: factory.CreateSessionService(),
		Registry: factory.CreateRegistryService(),
	}
}
