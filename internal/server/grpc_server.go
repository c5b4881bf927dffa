package server

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// GRPCServer is the ops endpoint: grpc.health.v1 plus reflection.
type GRPCServer struct {
	srv    *grpc.Server
	health *health.Server
	lis    net.Listener
}

// NewGRPCServer listens on addr. The health status starts as NOT_SERVING.
func NewGRPCServer(addr string) (*GRPCServer, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	grpcServer := grpc.NewServer()

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return &GRPCServer{srv: grpcServer, health: hs, lis: lis}, nil
}

// Addr is the bound listen address.
func (g *GRPCServer) Addr() string { return g.lis.Addr().String() }

// SetServing flips the overall health status.
func (g *GRPCServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus("", status)
}

// Serve blocks until Stop.
func (g *GRPCServer) Serve() error {
	if err := g.srv.Serve(g.lis); err != nil && err != grpc.ErrServerStopped {
		return fmt.Errorf("grpc server: %w", err)
	}
	return nil
}

// Stop reports NOT_SERVING and drains in-flight calls.
func (g *GRPCServer) Stop() {
	g.health.Shutdown()
	g.srv.GracefulStop()
}
