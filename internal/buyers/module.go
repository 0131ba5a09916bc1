// Package buyers provides the buyer lead bounded context module.
// This file defines the module that encapsulates all buyers setup and route registration.
package buyers

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"buyer_portal_backend/internal/buyers/domain"
	"buyer_portal_backend/internal/buyers/handler"
	"buyer_portal_backend/internal/buyers/repository"
	"buyer_portal_backend/internal/buyers/service"
	apphttp "buyer_portal_backend/internal/http"
	"buyer_portal_backend/platform/config"
	"buyer_portal_backend/platform/logger"
	"buyer_portal_backend/platform/ratelimit"
	"buyer_portal_backend/platform/validator"
)

// Module is the buyers bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the buyers module with all its dependencies.
// The create-path limiter is built here, not at package level, so tests and
// future multi-tenant setups can run independent instances.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, cfg config.RateLimitConfig, log *logger.Logger) (*Module, error) {
	if err := domain.RegisterRules(val); err != nil {
		return nil, err
	}

	repo := repository.New(pool)
	limiter := ratelimit.NewWindowLimiter(cfg.GetCreateRateLimit(), cfg.GetCreateRateWindow())
	svc := service.New(repo, limiter, val, log)

	return &Module{
		handler: handler.New(svc),
		service: svc,
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "buyers"
}

// Service returns the buyer service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts buyers routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/buyers"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
