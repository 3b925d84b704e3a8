package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/testtrack/scheduling-system/internal/api/handler"
	"github.com/testtrack/scheduling-system/internal/api/middleware"
	"github.com/testtrack/scheduling-system/internal/core/service"
	mongodb "github.com/testtrack/scheduling-system/internal/infrastructure/db/mongo"
	redisdb "github.com/testtrack/scheduling-system/internal/infrastructure/db/redis"
	"github.com/testtrack/scheduling-system/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log, cfg.Env == "development")

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("scheduling"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	hasher := service.NewPasswordHasher()
	authService := service.NewAuthService(userRepo, hasher, log)
	sessionIssuer := service.NewSessionIssuer(cfg.SessionSecret)
	loginLimiter := redisdb.NewLoginLimiter(rdb)
	authHandler := handler.NewAuthHandler(authService, sessionIssuer, loginLimiter, log)

	// Session decoding runs on every request; the guard gates protected
	// paths at the edge before any handler is reached.
	e.Use(middleware.Session(sessionIssuer))
	e.Use(middleware.Guard())

	// --- Auth routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/logout", authHandler.Logout)
	e.GET("/api/auth/check-email", authHandler.CheckEmail)

	// --- Protected API (guard enforces authentication on the prefix) ---
	protected := e.Group("/api/protected")
	protected.GET("/me", authHandler.Me)
	protected.GET("/permissions", authHandler.Permissions)
	protected.GET("/users/lookup", authHandler.LookupUser, middleware.RequireAdmin())

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
