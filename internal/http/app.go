// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"buyer_portal_backend/platform/config"
	"buyer_portal_backend/platform/httpkit"
	"buyer_portal_backend/platform/logger"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.CookieConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and cookie settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Health is used for readiness/health checks (DB ping).
	Health HealthChecker
	// Roles resolves stored roles for cookie-identified callers.
	Roles httpkit.RoleResolver
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
