package node

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chainrequest/blockchain-api/jsonrpc"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPCOverHTTP(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { listener.Close() })

	log := utils.NewNopZapLogger()
	service := makeRPCOverHTTP(listener, jsonrpc.NewServer(1, log), nil, []string{"https://app.example.com"}, log)

	t.Run("health", func(t *testing.T) {
		rr := httptest.NewRecorder()
		service.srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", http.NoBody))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("preflight allows the api key header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", http.NoBody)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", jsonrpc.APIKeyHeader)

		rr := httptest.NewRecorder()
		service.srv.Handler.ServeHTTP(rr, req)
		assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/", http.NoBody)
		req.Header.Set("Origin", "https://evil.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)

		rr := httptest.NewRecorder()
		service.srv.Handler.ServeHTTP(rr, req)
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRPCMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	listener := makeRPCMetrics(registry)

	listener.OnNewRequest("project_get")
	listener.OnRequestFailed("project_get", &jsonrpc.Error{Code: 1})
	listener.OnMethodNotFound("project_steal")
	makeHTTPMetrics(registry).OnHTTPRequest(true)

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "rpc_server_requests")
	assert.Contains(t, names, "rpc_server_failed_requests")
	assert.Contains(t, names, "rpc_server_unknown_method_requests")
	assert.Contains(t, names, "rpc_http_requests")
}
