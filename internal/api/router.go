package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/zebtan/courier-backoffice/internal/api/handler"
	"github.com/zebtan/courier-backoffice/internal/api/middleware"
)

// Deps carries everything the router needs wired in.
type Deps struct {
	Mongo     *mongo.Database
	Redis     *redis.Client
	Applier   handler.StatusApplier
	Trigger   handler.PassTrigger
	JWTSecret string
	Log       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("backoffice"))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Authenticated operator surface ---
	webhookHandler := handler.NewWebhookHandler(deps.Applier)
	reconcileHandler := handler.NewReconcileHandler(deps.Trigger)

	v1 := e.Group("/v1", middleware.Auth(deps.JWTSecret))
	v1.POST("/webhooks/status", webhookHandler.Receive)
	v1.POST("/reconcile/run", reconcileHandler.Run)

	return e
}
