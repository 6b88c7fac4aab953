package blockchain

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/chainrequest/blockchain-api/utils"
)

var ErrUnsupportedChain = errors.New("unsupported chain")

type Dialer func(ctx context.Context, url string) (Client, error)

// EthereumDialer dials EthereumClients reporting to listener.
func EthereumDialer(listener EventListener) Dialer {
	return func(ctx context.Context, url string) (Client, error) {
		return NewEthereumClient(ctx, url, listener)
	}
}

// Registry hands out chain clients by chain id. Clients are dialled on first use and
// shared afterwards.
type Registry struct {
	urls    map[uint64]string
	dial    Dialer
	log     utils.SimpleLogger
	mu      sync.Mutex
	clients map[string]Client
}

func NewRegistry(urls map[uint64]string, dial Dialer, log utils.SimpleLogger) *Registry {
	return &Registry{
		urls:    urls,
		dial:    dial,
		log:     log,
		clients: make(map[string]Client),
	}
}

// ParseChainURLs parses "<chain id>=<rpc url>" entries.
func ParseChainURLs(entries []string) (map[uint64]string, error) {
	urls := make(map[uint64]string, len(entries))
	for _, entry := range entries {
		id, url, found := strings.Cut(entry, "=")
		if !found || url == "" {
			return nil, fmt.Errorf("invalid chain entry %q, expected <chain id>=<rpc url>", entry)
		}
		chainID, err := strconv.ParseUint(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid chain id in %q: %w", entry, err)
		}
		urls[chainID] = strings.TrimSpace(url)
	}
	return urls, nil
}

func (r *Registry) Supported(chainID uint64) bool {
	_, found := r.urls[chainID]
	return found
}

// Client returns the client for chainID. A non-empty customURL takes precedence over
// the configured endpoint.
func (r *Registry) Client(ctx context.Context, chainID uint64, customURL string) (Client, error) {
	url := customURL
	if url == "" {
		var found bool
		if url, found = r.urls[chainID]; !found {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if client, found := r.clients[url]; found {
		return client, nil
	}

	client, err := r.dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("dial chain %d: %w", chainID, err)
	}
	r.log.Debugw("Connected to chain", "chainID", chainID)
	r.clients[url] = client
	return client, nil
}

func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for url, client := range r.clients {
		client.Close()
		delete(r.clients, url)
	}
}
