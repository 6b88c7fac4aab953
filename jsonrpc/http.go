package jsonrpc

import (
	"context"
	"net/http"

	"github.com/chainrequest/blockchain-api/utils"
)

const (
	APIKeyHeader       = "X-API-KEY"
	MaxRequestBodySize = 10 << 20
)

type apiKeyContextKey struct{}

// WithAPIKey returns a context carrying the api key a request was sent with.
func WithAPIKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, apiKeyContextKey{}, key)
}

// APIKey returns the api key of the request being served, if any.
func APIKey(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(apiKeyContextKey{}).(string)
	return key, ok && key != ""
}

type HTTP struct {
	rpc      *Server
	log      utils.SimpleLogger
	listener HTTPListener
}

func NewHTTP(rpc *Server, log utils.SimpleLogger) *HTTP {
	return &HTTP{
		rpc:      rpc,
		log:      log,
		listener: &SelectiveListener{},
	}
}

// WithListener registers an HTTPListener
func (h *HTTP) WithListener(listener HTTPListener) *HTTP {
	h.listener = listener
	return h
}

// ServeHTTP processes an incoming HTTP request
func (h *HTTP) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodGet {
		status := http.StatusNotFound
		if req.URL.Path == "/" {
			status = http.StatusOK
		}
		writer.WriteHeader(status)
		return
	} else if req.Method != http.MethodPost {
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req.Body = http.MaxBytesReader(writer, req.Body, MaxRequestBodySize)
	ctx := req.Context()
	key := req.Header.Get(APIKeyHeader)
	if key != "" {
		ctx = WithAPIKey(ctx, key)
	}
	h.listener.OnHTTPRequest(key != "")

	resp, err := h.rpc.HandleReader(ctx, req.Body)
	writer.Header().Set("Content-Type", "application/json")
	if err != nil {
		h.log.Errorw("Handler failure", "err", err)
		writer.WriteHeader(http.StatusInternalServerError)
	}
	if resp != nil {
		if _, err = writer.Write(resp); err != nil {
			h.log.Warnw("Failed writing response", "err", err)
		}
	}
}
