// Package router registers the account API routes.
package router

import (
	"accounts/internal/delivery/api/middleware"
	"accounts/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// HealthPath is the liveness probe path.
const HealthPath = "/healthz"

type RouterParams struct {
	fx.In

	AccountHandler *handler.AccountHandler
	HealthHandler  *handler.HealthHandler
	BasicAuth      *middleware.BasicAuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	accountHandler *handler.AccountHandler
	healthHandler  *handler.HealthHandler
	basicAuth      *middleware.BasicAuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		accountHandler: params.AccountHandler,
		healthHandler:  params.HealthHandler,
		basicAuth:      params.BasicAuth,
	}
}

// RegisterRoutes sets up all the API routes for the application.
// Authenticated routes take the Basic middleware per route; a root group with
// middleware would answer unknown paths with 401 instead of 404.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET(HealthPath, r.healthHandler.Check)

	e.POST("/signup/", r.accountHandler.Signup)

	e.GET("/login/", r.accountHandler.Login, r.basicAuth.RequireCredentials)
	e.GET("/me", r.accountHandler.GetMe, r.basicAuth.RequireCredentials)
	e.PUT("/me", r.accountHandler.UpdateMe, r.basicAuth.RequireCredentials)
}
