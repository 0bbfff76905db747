package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auth-session-service/internal/handler"
	"github.com/iliyamo/auth-session-service/internal/middleware"
	"github.com/iliyamo/auth-session-service/internal/model"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the auth and session endpoints.  Token-granting
// operations live under /v1/auth and need no access token; session
// management and /v1/me require one and run through the JWT and role
// middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, s *handler.SessionHandler, o *handler.OAuthHandler, jwtSecret string) {
	// Unauthenticated: these endpoints create or exchange tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout takes the refresh token in the body; it deliberately does
	// not require a live access token so an expired client can still
	// clean up after itself.
	g.POST("/logout", a.Logout)

	// Federated login: consent-screen redirect plus provider callback.
	g.GET("/:provider", o.Begin)
	g.GET("/:provider/callback", o.Callback)

	// Protected: everything here needs a valid access token.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleModerator, model.RoleAdmin))
	auth.GET("/me", a.Me)
	auth.GET("/sessions", s.List)
	auth.DELETE("/sessions/:id", s.Terminate)
	auth.DELETE("/sessions", s.TerminateAll)
}
