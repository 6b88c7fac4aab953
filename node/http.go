package node

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/chainrequest/blockchain-api/jsonrpc"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sourcegraph/conc"
)

type httpService struct {
	srv      *http.Server
	listener net.Listener
}

var _ Service = (*httpService)(nil)

func (h *httpService) Run(ctx context.Context) error {
	errCh := make(chan error)
	defer close(errCh)

	var wg conc.WaitGroup
	defer wg.Wait()
	wg.Go(func() {
		if err := h.srv.Serve(h.listener); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	})

	select {
	case <-ctx.Done():
		return h.srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

func makeRPCOverHTTP(listener net.Listener, jsonrpcServer *jsonrpc.Server, reqListener jsonrpc.HTTPListener,
	corsOrigins []string, log utils.SimpleLogger,
) *httpService {
	httpHandler := jsonrpc.NewHTTP(jsonrpcServer, log)
	if reqListener != nil {
		httpHandler = httpHandler.WithListener(reqListener)
	}
	mux := http.NewServeMux()
	mux.Handle("/", httpHandler)
	mux.Handle("/v1", httpHandler)

	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}
	handler := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", jsonrpc.APIKeyHeader},
	}).Handler(mux)

	return &httpService{
		srv: &http.Server{
			Addr:    listener.Addr().String(),
			Handler: handler,
			// ReadTimeout also sets ReadHeaderTimeout and IdleTimeout.
			ReadTimeout: 30 * time.Second,
		},
		listener: listener,
	}
}

func makeMetrics(listener net.Listener, registry *prometheus.Registry) *httpService {
	return &httpService{
		srv: &http.Server{
			Addr:    listener.Addr().String(),
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
			// ReadTimeout also sets ReadHeaderTimeout and IdleTimeout.
			ReadTimeout: 30 * time.Second,
		},
		listener: listener,
	}
}
