package grpc

import (
	"context"

	"github.com/viralforge/referral-rewards/internal/application"
	"google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RewardsInternalServer exposes the internal gRPC surface. Only the standard
// health protocol is served for now; platform probes rely on it.
type RewardsInternalServer struct {
	grpc_health_v1.UnimplementedHealthServer
	service *application.Service
}

func NewRewardsInternalServer(service *application.Service) *RewardsInternalServer {
	return &RewardsInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc *RewardsInternalServer) {
	grpc_health_v1.RegisterHealthServer(server, svc)
}

func (s *RewardsInternalServer) Check(ctx context.Context, req *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	_ = s.service
	_ = ctx
	_ = req
	return &grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING}, nil
}

func (s *RewardsInternalServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	_ = s.service
	_ = req
	return stream.Send(&grpc_health_v1.HealthCheckResponse{Status: grpc_health_v1.HealthCheckResponse_SERVING})
}
