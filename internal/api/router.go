package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/userhive/account-api/internal/api/handler"
	"github.com/userhive/account-api/internal/api/middleware"
	"github.com/userhive/account-api/internal/core/auth"
	"github.com/userhive/account-api/internal/core/authz"
	"github.com/userhive/account-api/internal/core/ports"
)

// Deps bundles everything the router needs wired in.
type Deps struct {
	Identity    *auth.Identity
	Policy      *authz.Policy
	AuthService ports.AuthService
	UserService ports.UserService
	Mongo       *mongo.Database
	Redis       *redis.Client
	Logger      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("account"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	userHandler := handler.NewUserHandler(deps.UserService, deps.Policy)
	identity := middleware.Identity(deps.Identity)

	// --- Auth routes ---
	e.POST("/auth/signin", authHandler.SignIn)
	e.POST("/auth/refresh", authHandler.Refresh)

	// --- User routes (identity extraction on every call) ---
	users := e.Group("/users", identity)
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/me", userHandler.GetMe)
	users.GET("/lookup", userHandler.Lookup)
	users.GET("/:name", userHandler.Get)
	users.PATCH("/:name", userHandler.Update)
	users.DELETE("/:name", userHandler.Delete)
	users.GET("/:name/versions", userHandler.Versions)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
