// Package grpc предоставляет gRPC сервер проверки состояния сервиса учетных записей.
package grpc

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	healthcheck "goaccounts/internal/accounts/adapters/health"
	"goaccounts/internal/accounts/config"
	"goaccounts/pkg/logger"
)

// ServiceName - имя сервиса в протоколе grpc.health.v1.
const ServiceName = "goaccounts.Accounts"

// Константы для логирования.
const (
	LogServerStarting = "Starting gRPC server"
	LogServerStarted  = "gRPC server started"
	LogServerStopping = "Stopping gRPC server"
	LogServerStopped  = "gRPC server stopped"
	LogHealthChanged  = "health status changed"
	ErrServerStart    = "failed to start gRPC server"
)

// Server представляет gRPC сервер со службой grpc.health.v1.Health.
type Server struct {
	cfg      *config.GRPCConfig
	server   *grpc.Server
	health   *health.Server
	listener net.Listener
}

// New создает новый экземпляр gRPC сервера. До первой проверки сервис считается NOT_SERVING.
func New(cfg *config.GRPCConfig) *Server {
	server := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return &Server{
		cfg:    cfg,
		server: server,
		health: healthServer,
	}
}

// Start запускает gRPC сервер.
func (s *Server) Start(ctx context.Context) error {
	log := logger.Log(ctx)
	address := s.cfg.GetAddress()

	log.Info(ctx, LogServerStarting, zap.String("address", address))

	listener, err := net.Listen("tcp", address)
	if err != nil {
		log.Error(ctx, ErrServerStart, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrServerStart, err)
	}
	s.listener = listener

	reflection.Register(s.server)

	go func() {
		if err := s.server.Serve(listener); err != nil {
			log.Error(ctx, ErrServerStart, zap.Error(err))
		}
	}()

	log.Info(ctx, LogServerStarted, zap.String("address", listener.Addr().String()))
	return nil
}

// Addr возвращает фактический адрес после Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// SetServing выставляет статус сервиса.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

// WatchHealth периодически опрашивает checker и обновляет статус до отмены ctx.
func (s *Server) WatchHealth(ctx context.Context, checker *healthcheck.Checker, interval time.Duration) {
	log := logger.Log(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := false
	for {
		healthy := checker.Check(ctx).Healthy
		if healthy != serving {
			log.Info(ctx, LogHealthChanged, zap.Bool("serving", healthy))
			serving = healthy
		}
		s.SetServing(healthy)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop переводит сервис в NOT_SERVING и останавливает gRPC сервер.
func (s *Server) Stop(ctx context.Context) {
	log := logger.Log(ctx)

	log.Info(ctx, LogServerStopping)
	s.health.Shutdown()
	s.server.GracefulStop()
	log.Info(ctx, LogServerStopped)
}
