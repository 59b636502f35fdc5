package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().String()
	require.NoError(t, lis.Close())
	return addr
}

func testRunConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.HTTPAddr = freeAddr(t)
	cfg.GRPCAddr = freeAddr(t)
	cfg.MetricsAddr = freeAddr(t)
	cfg.IdempotencyCleanupInterval = time.Hour
	return cfg
}

func TestRun_ServesSeededCatalogAndShutsDown(t *testing.T) {
	cfg := testRunConfig(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	client := &http.Client{Timeout: time.Second}
	var body struct {
		OK   bool              `json:"ok"`
		Data []json.RawMessage `json:"data"`
	}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + cfg.HTTPAddr + "/api/dishes")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK && json.NewDecoder(resp.Body).Decode(&body) == nil
	}, 3*time.Second, 20*time.Millisecond)
	require.True(t, body.OK)
	require.NotEmpty(t, body.Data)

	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + cfg.MetricsAddr + "/readyz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_InvalidStorageDriver(t *testing.T) {
	cfg := testRunConfig(t)
	cfg.StorageDriver = "invalid-driver"

	require.ErrorContains(t, Run(context.Background(), cfg), "unsupported storage driver")
}

func TestRun_InvalidHTTPAddr(t *testing.T) {
	cfg := testRunConfig(t)
	cfg.HTTPAddr = "256.0.0.1:0"

	require.ErrorContains(t, Run(context.Background(), cfg), "listen http")
}
