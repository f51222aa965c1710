// Package grpcx exposes the standard gRPC health service for orchestrators,
// reporting SERVING only while the order store answers pings.
package grpcx

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is reported next to the overall ("") status.
const ServiceName = "checkout"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Health struct {
	srv    *health.Server
	store  Pinger
	log    *slog.Logger
	period time.Duration
}

func NewHealth(store Pinger, period time.Duration, log *slog.Logger) *Health {
	if period <= 0 {
		period = 10 * time.Second
	}
	return &Health{srv: health.NewServer(), store: store, log: log, period: period}
}

// Register mounts health and reflection on s.
func (h *Health) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.srv)
	reflection.Register(s)
}

// Probe pings the store once and publishes the result.
func (h *Health) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("health probe failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(ServiceName, status)
	return status
}

// Run probes until ctx ends, then marks everything NOT_SERVING.
func (h *Health) Run(ctx context.Context) {
	t := time.NewTicker(h.period)
	defer t.Stop()

	h.Probe(ctx)
	for {
		select {
		case <-ctx.Done():
			h.srv.Shutdown()
			return
		case <-t.C:
			h.Probe(ctx)
		}
	}
}
