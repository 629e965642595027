// Package grpc exposes the standard health service and reflection alongside
// the HTTP API.
package grpc

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"bikerental-backend/internal/api/grpc/interceptor"
	"bikerental-backend/internal/logger"
	"bikerental-backend/internal/security"
)

// ServiceName is the health check name for the rental backend as a whole.
const ServiceName = "bikerental.Backend"

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewServer builds a gRPC server with health and reflection registered.
func NewServer(auth security.Authenticator) (*grpc.Server, *health.Server) {
	authInterceptor := interceptor.NewAuthInterceptor(auth)
	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptor.Logging(), authInterceptor.Unary()),
		grpc.StreamInterceptor(authInterceptor.Stream()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	// Register reflection service for grpcurl
	reflection.Register(s)
	return s, hs
}

// WatchHealth pings the database every interval and publishes the result
// until ctx is done.
func WatchHealth(ctx context.Context, hs *health.Server, db Pinger, interval time.Duration) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval/2)
		defer cancel()
		st := healthpb.HealthCheckResponse_SERVING
		if err := db.Ping(pingCtx); err != nil {
			logger.Warn("Database health check failed", "error", err)
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", st)
		hs.SetServingStatus(ServiceName, st)
	}

	check()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			check()
		}
	}
}
