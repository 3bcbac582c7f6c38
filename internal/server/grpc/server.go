package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/Additional-Code/buyerdesk/internal/config"
	"github.com/Additional-Code/buyerdesk/internal/database"
	"github.com/Additional-Code/buyerdesk/pkg/errorbank"
)

const probeInterval = 15 * time.Second

// Module exposes the gRPC server and lifecycle hooks to Fx.
var Module = fx.Module("grpc_server",
	fx.Provide(NewServer, health.NewServer),
	fx.Invoke(Run),
)

// NewServer builds a gRPC server with logging interceptors and the standard
// health service registered.
func NewServer(logger *zap.Logger, hs *health.Server) *grpc.Server {
	unary := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)
		if err != nil {
			logger.Warn("grpc unary call finished", zap.String("method", info.FullMethod), zap.Duration("duration", duration), zap.Error(err))
			return resp, toStatus(err)
		}
		logger.Debug("grpc unary call finished", zap.String("method", info.FullMethod), zap.Duration("duration", duration))
		return resp, nil
	}

	stream := func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		start := time.Now()
		err := handler(srv, ss)
		duration := time.Since(start)
		if err != nil {
			logger.Warn("grpc stream call finished", zap.String("method", info.FullMethod), zap.Duration("duration", duration), zap.Error(err))
			return toStatus(err)
		}
		logger.Debug("grpc stream call finished", zap.String("method", info.FullMethod), zap.Duration("duration", duration))
		return nil
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(unary),
		grpc.ChainStreamInterceptor(stream),
	)
	healthpb.RegisterHealthServer(server, hs)
	return server
}

// toStatus leaves gRPC statuses untouched and maps application errors onto
// their gRPC code.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	var appErr *errorbank.AppError
	if errors.As(err, &appErr) {
		return status.Error(appErr.GRPCCode(), appErr.Message())
	}
	return status.Error(errorbank.From(err).GRPCCode(), "internal error")
}

// ProbeParams carries what the health probe watches.
type ProbeParams struct {
	fx.In

	Health      *health.Server
	Connections *database.Connections `optional:"true"`
	Logger      *zap.Logger
}

// Probe keeps the overall serving status in line with mongo reachability
// until ctx is cancelled.
func Probe(ctx context.Context, p ProbeParams) {
	check := func() {
		if p.Connections == nil {
			p.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
			return
		}
		if err := database.Ping(ctx, p.Connections.Client); err != nil {
			if ctx.Err() == nil {
				p.Logger.Warn("grpc health: mongo unreachable", zap.Error(err))
				p.Health.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			}
			return
		}
		p.Health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	}

	check()
	ticker := time.NewTicker(probeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}

// Run binds the gRPC server to the configured host/port and manages lifecycle.
func Run(lc fx.Lifecycle, cfg config.Config, server *grpc.Server, probe ProbeParams, logger *zap.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.GRPC.Host, cfg.GRPC.Port)
	var listener net.Listener
	probeCtx, stopProbe := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				stopProbe()
				return fmt.Errorf("listen grpc: %w", err)
			}
			listener = ln
			logger.Info("starting gRPC server", zap.String("addr", addr))
			go Probe(probeCtx, probe)
			go func() {
				if err := server.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
					logger.Fatal("grpc server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping gRPC server")
			stopProbe()
			probe.Health.Shutdown()

			stopped := make(chan struct{})
			go func() {
				server.GracefulStop()
				close(stopped)
			}()

			select {
			case <-ctx.Done():
				server.Stop()
				return ctx.Err()
			case <-stopped:
				if listener != nil {
					_ = listener.Close()
				}
				return nil
			}
		},
	})
}
