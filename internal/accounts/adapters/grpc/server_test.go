package grpc_test

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	accountsgrpc "goaccounts/internal/accounts/adapters/grpc"
	"goaccounts/internal/accounts/adapters/health"
	"goaccounts/internal/accounts/config"
	"goaccounts/pkg/logger"
)

func testContext(t *testing.T) context.Context {
	t.Helper()
	testLogger, err := logger.NewLogger(logger.Development, "debug")
	require.NoError(t, err)
	return logger.NewContext(context.Background(), testLogger)
}

func startServer(t *testing.T) (*accountsgrpc.Server, healthpb.HealthClient) {
	t.Helper()
	ctx := testContext(t)

	server := accountsgrpc.New(&config.GRPCConfig{Host: "localhost", Port: 0})
	require.NoError(t, server.Start(ctx))
	t.Cleanup(func() { server.Stop(ctx) })

	conn, err := grpc.NewClient(server.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return server, healthpb.NewHealthClient(conn)
}

func status(t *testing.T, client healthpb.HealthClient) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: accountsgrpc.ServiceName})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestServer_HealthStatus(t *testing.T) {
	server, client := startServer(t)

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client))

	server.SetServing(true)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(t, client))

	server.SetServing(false)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(t, client))
}

func TestServer_WatchHealth(t *testing.T) {
	server, client := startServer(t)

	var down atomic.Bool
	checker := health.NewChecker(time.Second).Register("redis", health.PingFunc(func(context.Context) error {
		if down.Load() {
			return errors.New("down")
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(testContext(t))
	done := make(chan struct{})
	go func() {
		server.WatchHealth(ctx, checker, 10*time.Millisecond)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		return status(t, client) == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	down.Store(true)

	require.Eventually(t, func() bool {
		return status(t, client) == healthpb.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_StartAddressInUse(t *testing.T) {
	listener, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	port := listener.Addr().(*net.TCPAddr).Port
	server := accountsgrpc.New(&config.GRPCConfig{Host: "localhost", Port: port})

	err = server.Start(testContext(t))

	require.Error(t, err)
	assert.Contains(t, err.Error(), accountsgrpc.ErrServerStart)
	assert.Empty(t, server.Addr())
}
