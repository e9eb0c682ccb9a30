// Package handlers provides the HTTP surface of the back-office and the
// process's gRPC health endpoint, bridging the transport layer and business
// logic.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	health       *health.Server
	httpServer   *http.Server
	logger       *zap.Logger
	grpcEndpoint string
	httpEndpoint string

	stopping chan struct{}
	stopOnce sync.Once
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
// The gRPC side serves the standard health service.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	s := &Server{
		grpcServer: grpc.NewServer(grpcOpts...),
		health:     health.NewServer(),
		httpServer: &http.Server{
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		logger:       logger,
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
		stopping:     make(chan struct{}),
	}
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	return s
}

// RegisterHTTPHandler sets the handler served on the HTTP endpoint.
func (s *Server) RegisterHTTPHandler(h http.Handler) {
	s.httpServer.Handler = h
	s.httpServer.Addr = s.httpEndpoint
}

// Start serves gRPC and HTTP until Stop is called. If either listener fails,
// the other is closed and the first error is returned.
func (s *Server) Start() error {
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			return fmt.Errorf("gRPC listen error: %w", err)
		}
		s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
		if err := s.grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("gRPC serve error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP serve error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		select {
		case <-ctx.Done():
			s.grpcServer.Stop()
			_ = s.httpServer.Close()
		case <-s.stopping:
		}
		return nil
	})

	return g.Wait()
}

// Stop gracefully shuts down both servers. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Shutting down servers...")
		close(s.stopping)

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}

		s.logger.Info("Servers stopped")
	})
}
