package httpserver

import (
	"log/slog"

	"github.com/cleroux/pi-xmas-hat/internal/adapter/metrics"
	"github.com/cleroux/pi-xmas-hat/internal/platform/correlation"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// unmeteredRoutes are left out of the HTTP request metrics.
var unmeteredRoutes = []string{"/metrics", "/health/", "/image/updates"}

func (s *Server) registerRoutes() {
	s.echo.Use(correlation.Middleware())
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	if s.httpMetrics != nil {
		s.echo.Use(s.httpMetrics.Middleware(unmeteredRoutes...))
	}
	s.echo.Use(ErrorHandlingMiddleware())

	// One limiter shared by both mutation routes.
	limiter := newRateLimiter(s.config.MutationRateLimit, s.config.MutationRateBurst)

	s.registerHealthRoutes()
	s.registerImageRoutes(limiter)
	s.registerMessageRoutes(limiter)
	s.registerUpdateRoutes()

	if s.registry != nil {
		s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))
	}
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}
