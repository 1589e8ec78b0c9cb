package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/oggyb/muzz-matchmaker/internal/config"
	"github.com/oggyb/muzz-matchmaker/internal/metrics"
)

// Options configures NewGRPCServer.
type Options struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	AdminTokenHash string
}

// NewGRPCServer builds a server with recovery, logging/metrics and admin
// auth interceptors, and registers all provided services.
func NewGRPCServer(opts Options, registrars ...Registrar) *grpc.Server {
	var admin []string
	for _, r := range registrars {
		if ar, ok := r.(AdminRegistrar); ok {
			admin = append(admin, ar.AdminMethods()...)
		}
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recoveryInterceptor(opts.Logger),
			observeInterceptor(opts.Logger, opts.Metrics),
			AdminAuthInterceptor(opts.AdminTokenHash, admin),
		),
	)

	// register all services
	for _, r := range registrars {
		r.Register(grpcServer)
	}
	return grpcServer
}

// StartGRPCServer listens on the configured address and serves until ctx is
// done, then drains in-flight calls.
func StartGRPCServer(ctx context.Context, cfg *config.Config, grpcServer *grpc.Server) error {
	addr := fmt.Sprintf("%s:%s", cfg.GRPC.Host, cfg.GRPC.Port)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		grpcServer.GracefulStop()
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

func recoveryInterceptor(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if p := recover(); p != nil {
				log.Error("grpc handler panic", "method", info.FullMethod, "panic", p, "stack", string(debug.Stack()))
				err = status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

func observeInterceptor(log *slog.Logger, m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		elapsed := time.Since(start)
		code := status.Code(err)

		m.ObserveRPC(info.FullMethod, code.String(), elapsed)

		switch code {
		case codes.Internal, codes.Unavailable, codes.Unknown:
			log.Error("rpc failed", "method", info.FullMethod, "code", code.String(), "duration", elapsed, "err", err)
		default:
			log.Debug("rpc", "method", info.FullMethod, "code", code.String(), "duration", elapsed)
		}
		return resp, err
	}
}
