package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	echo "github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/database"
	"github.com/Additional-Code/buyerdesk/internal/observability"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/middleware"
	"github.com/Additional-Code/buyerdesk/internal/presentation/http/response"
	"github.com/Additional-Code/buyerdesk/internal/validation"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

const healthTimeout = 2 * time.Second

// Module exposes the HTTP server lifecycle to Fx.
var Module = fx.Module("http_server",
	fx.Provide(NewEcho),
	fx.Invoke(Run),
)

// Params defines dependencies for constructing the router.
type Params struct {
	fx.In

	Config        config.Config
	Observability *observability.Manager
	Connections   *database.Connections `optional:"true"`
	Logger        *zap.Logger
}

// NewEcho configures the Echo router, its error boundary and the shared
// middleware chain.
func NewEcho(p Params) (*echo.Echo, error) {
	cfg, obs, logger := p.Config, p.Observability, p.Logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = ErrorHandler(logger)

	e.Use(middleware.RequestID())
	if obs != nil && obs.TracingEnabled() {
		e.Use(otelecho.Middleware(cfg.Observability.ServiceName))
	}
	if obs != nil && obs.MetricsEnabled() {
		metrics, err := middleware.NewMetrics(obs.Registerer(), cfg.Observability.PrometheusPath)
		if err != nil {
			return nil, fmt.Errorf("register http metrics: %w", err)
		}
		e.Use(metrics.Handler())
	}
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{DisablePrintStack: true}))

	e.GET("/health", func(c echo.Context) error {
		status := map[string]string{"status": "ok", "mongo": "skipped"}
		if p.Connections != nil {
			ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
			defer cancel()
			if err := database.Ping(ctx, p.Connections.Client); err != nil {
				logger.Warn("health check: mongo unreachable", zap.Error(err))
				status["status"], status["mongo"] = "degraded", "down"
				return c.JSON(http.StatusServiceUnavailable, status)
			}
			status["mongo"] = "up"
		}
		return c.JSON(http.StatusOK, status)
	})

	if obs != nil && obs.MetricsEnabled() && obs.MetricsHandler() != nil {
		e.GET(cfg.Observability.PrometheusPath, echo.WrapHandler(obs.MetricsHandler()))
	}

	return e, nil
}

// ErrorHandler renders every unhandled error, router errors and recovered
// panics included, as a response envelope.
func ErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		appErr := errorbank.From(response.FromHTTPError(err))
		if appErr.Kind() == errorbank.KindInternal {
			logger.Error("http request failed",
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err),
			)
		}
		if rerr := response.New(c).WithError(appErr).Build(); rerr != nil {
			logger.Error("write error response", zap.Error(rerr))
		}
	}
}

// Run starts the HTTP server and ties it to the Fx lifecycle.
func Run(lc fx.Lifecycle, cfg config.Config, e *echo.Echo, logger *zap.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)

	server := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("starting HTTP server", zap.String("addr", addr))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return server.Shutdown(ctx)
		},
	})
}
