// Package httpapi exposes the engine's single external entry point over
// HTTP: POST a trigger against a topic code and the cascade runs,
// synchronously or in the background, returning the id of the record that
// started it.
package httpapi

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/evalgo-labs/pipeflow/common"
	"github.com/evalgo-labs/pipeflow/executor"
	"github.com/evalgo-labs/pipeflow/schema"
)

// ServerConfig carries the handful of server knobs this module owns.
// Authentication, CORS, and rate limiting are the deploying service's
// concern and are deliberately not configured here.
type ServerConfig struct {
	Port            int
	Debug           bool
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns sensible defaults for local/dev use.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Deps bundles what the trigger handler needs to validate a request and
// hand it to the executor.
type Deps struct {
	Catalog     schema.Catalog
	ExecDeps    executor.Deps
	ServiceName string
	Version     string
}

// NewEchoServer wires the routes this module serves: a health check and the
// trigger entry point.
func NewEchoServer(cfg ServerConfig, deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogMiddleware(deps.ServiceName))

	e.GET("/healthz", healthHandler(deps.ServiceName, deps.Version))
	e.POST("/topics/:code/trigger", triggerHandler(deps))

	return e
}

// StartServer starts e with read/write timeouts applied, blocking until the
// listener stops.
func StartServer(e *echo.Echo, cfg ServerConfig) error {
	s := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	log.Printf("pipeflow httpapi listening on port %d", cfg.Port)
	return e.StartServer(s)
}

// GracefulShutdown drains in-flight requests within cfg.ShutdownTimeout.
func GracefulShutdown(e *echo.Echo, cfg ServerConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(ctx)
}

// requestLogMiddleware logs every request through a per-request
// ContextLogger scoped with the echo request id, independent of the access
// log middleware.LoggerWithConfig already writes.
func requestLogMiddleware(serviceName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Response().Header().Get(echo.HeaderXRequestID)
			reqLog := common.RequestLogger(serviceName, c.Request().Method, c.Request().URL.Path, requestID)
			err := next(c)
			if err != nil {
				reqLog.WithError(err).Error("request failed")
			} else {
				reqLog.WithField("status", c.Response().Status).Debug("request handled")
			}
			return err
		}
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
}

func healthHandler(service, version string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Status: "healthy", Service: service, Version: version})
	}
}
