package http

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/storefront/commerce/internal/infrastructure/http/handlers"
)

// Options configures the shared HTTP surface of every service.
type Options struct {
	// Service names the process in health responses and metrics.
	Service       string
	Logger        zerolog.Logger
	ErrorHandler  echo.HTTPErrorHandler
	Validator     echo.Validator
	EnableSwagger bool
	Dependencies  []handlers.Dependency
}

// NewRouter builds the Echo instance with global middleware, health probes,
// the metrics endpoint and optionally Swagger. Callers register their own
// routes on the result.
func NewRouter(opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if opts.ErrorHandler != nil {
		e.HTTPErrorHandler = opts.ErrorHandler
	}
	if opts.Validator != nil {
		e.Validator = opts.Validator
	}

	// --- Global middleware ---
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(opts.Logger))
	e.Use(echoprometheus.NewMiddleware(opts.Service))

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler(opts.Service)
	healthDepsHandler := handlers.NewHealthDependenciesHandler(opts.Dependencies...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	if opts.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
