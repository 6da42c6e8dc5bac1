package simd

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthService is the gRPC health service name reporting whether at least
// one scenario has been built
const HealthService = "mecsim.ScenarioService"

// Health wraps the standard gRPC health server. The overall status is
// SERVING from the start; HealthService turns SERVING after the first
// successful build.
type Health struct {
	srv *health.Server
}

func NewHealth() *Health {
	hs := health.NewServer()
	hs.SetServingStatus(HealthService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Health{srv: hs}
}

// Register exposes the health service on a gRPC server
func (h *Health) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.srv)
}

// ScenarioBuilt marks HealthService as serving
func (h *Health) ScenarioBuilt() {
	h.srv.SetServingStatus(HealthService, healthpb.HealthCheckResponse_SERVING)
}

// Shutdown sets every service to NOT_SERVING
func (h *Health) Shutdown() {
	h.srv.Shutdown()
}

// Server returns the underlying health server
func (h *Health) Server() healthpb.HealthServer {
	return h.srv
}
