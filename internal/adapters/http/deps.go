package http

import (
	"github.com/nats-io/nats.go"

	"github.com/okpanku/ministry-api/internal/adapters/postgres"
	"github.com/okpanku/ministry-api/internal/adapters/valkey"
	"github.com/okpanku/ministry-api/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Plots        *usecases.PlotService
	Applications *usecases.ApplicationService
	Auth         *usecases.AuthService
	NATS         *nats.Conn
	DB           *postgres.DB
	Cache        *valkey.Cache
}
