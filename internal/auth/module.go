// Package auth provides the demo identity bounded context module.
package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"buyer_portal_backend/internal/auth/handler"
	"buyer_portal_backend/internal/auth/repository"
	"buyer_portal_backend/internal/auth/service"
	apphttp "buyer_portal_backend/internal/http"
	"buyer_portal_backend/platform/httpkit"
	"buyer_portal_backend/platform/validator"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	repo *repository.Repository
	svc  *service.Service
	val  *validator.Validator
}

// NewModule creates and initializes the auth module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	return &Module{
		repo: repo,
		svc:  service.New(repo),
		val:  val,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// RoleResolver exposes the repository for identity middleware wiring.
func (m *Module) RoleResolver() httpkit.RoleResolver {
	return m.repo
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	h := handler.New(m.svc, m.val, ctx.Cookie)
	h.RegisterRoutes(ctx.V1.Group("/auth"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
