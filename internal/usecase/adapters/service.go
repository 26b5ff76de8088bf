package adapters

import (
	"browser-pilot/internal/entity"
	"browser-pilot/internal/ports"
	"context"
)

type SessionService interface {
	Serve(ctx context.Context, conn ports.ClientConn) error
	Active() int
	Shutdown()
}

type RegistryService interface {
	Len() int
	Get(id string) (entity.SessionInfo, bool)
	List() []entity.SessionInfo
}
