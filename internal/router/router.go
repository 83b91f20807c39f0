package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4" // Echo web framework used for routing
	"github.com/redis/go-redis/v9"

	"github.com/emergid/emergency-medical-id/internal/config"
	"github.com/emergid/emergency-medical-id/internal/handler"
	"github.com/emergid/emergency-medical-id/internal/middleware"
	"github.com/emergid/emergency-medical-id/internal/model"
	"github.com/emergid/emergency-medical-id/internal/repository"
)

// RegisterRoutes registers routes that require no authentication. At the
// moment that is only the health check, which reports liveness and database
// connectivity to load balancers and the dashboards.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/api/health", handler.Health(db))
}

// RegisterAuth registers the authentication endpoints and their middleware.
// Register and login are unauthenticated but rate limited; logout and me
// run behind the access control gate so the verified identity (and the
// token's jti, needed for revocation) is present in the context.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, users *repository.UserRepo, rdb *redis.Client, rlCfg config.RateLimitConfig) {
	limited := e.Group("/api/auth")
	limited.Use(middleware.NewTokenBucket(rlCfg, rdb))
	limited.POST("/register", a.Register)
	limited.POST("/login", a.Login)

	authed := e.Group("/api/auth")
	authed.Use(middleware.JWTAuth(a.Cfg.JWTSecret, users, rdb))
	authed.POST("/logout", a.Logout)
	authed.GET("/me", a.Me)
}

// RegisterPatient registers the patient-role endpoints. The whole group
// runs behind JWTAuth plus a patient-only role gate: doctors cannot read or
// write patient profiles through these routes.
func RegisterPatient(e *echo.Echo, p *handler.PatientHandler, users *repository.UserRepo, rdb *redis.Client, jwtSecret string) {
	g := e.Group("/api/patient")
	g.Use(middleware.JWTAuth(jwtSecret, users, rdb))
	g.Use(middleware.RequireRole(model.RolePatient))
	g.GET("/profile", p.GetProfile)
	g.POST("/profile", p.SaveProfile)
	g.GET("/access-logs", p.ListAccessLogs)
}

// RegisterDoctor registers the emergency lookup endpoint behind a
// doctor-only role gate. Patient-role tokens are rejected with 403 before
// the handler runs, so no audit entry is written for them.
func RegisterDoctor(e *echo.Echo, d *handler.DoctorHandler, users *repository.UserRepo, rdb *redis.Client, jwtSecret string) {
	g := e.Group("/api/doctor")
	g.Use(middleware.JWTAuth(jwtSecret, users, rdb))
	g.Use(middleware.RequireRole(model.RoleDoctor))
	g.GET("/patient/:patientId", d.LookupPatient)
}
