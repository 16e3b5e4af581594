package main

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/myrjola/plottwist/internal/e2etest"
	"github.com/stretchr/testify/require"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "PLOTTWIST_ADDR":
		return "localhost:0", true
	case "PLOTTWIST_SQLITE_URL":
		return ":memory:", true
	default:
		return "", false
	}
}

func TestRun_WithoutCredentials(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, testLookupEnv, run)
	require.NoError(t, err)
	client := server.Client()

	resp, err := client.Get(ctx, "/api/healthy")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	// Without model credentials the mystery cannot be generated.
	resp, err = client.Get(ctx, "/api/v1/mysteries/today")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	resp, err = client.Get(ctx, "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `plottwist_ai_requests_total{backend="none",outcome="unavailable"} 1`)
}
