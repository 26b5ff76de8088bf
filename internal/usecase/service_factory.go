package usecase

import (
	"browser-pilot/internal/usecase/adapters"
)

type serviceFactory struct {
	deps     Params
	registry *Registry
}

func newServiceFactory(deps Params) *serviceFactory {
	return &serviceFactory{
		deps:     deps,
		registry: NewRegistry(deps.Metrics),
	}
}

func (f *serviceFactory) CreateSessionService() adapters.SessionService {
	return NewOrchestrator(
		f.deps.Config,
		f.deps.Launcher,
		f.deps.Engine,
		f.deps.Catalog,
		f.registry,
		f.deps.Metrics,
		f.deps.Logger,
	)
}

func (f *serviceFactory) CreateRegistryService() adapters.RegistryService {
	return f.registry
}
