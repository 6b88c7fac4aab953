package blockchain_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/chainrequest/blockchain-api/blockchain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newNode serves canned JSON-RPC results keyed by method name.
func newNode(t *testing.T, results map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if result, found := results[req.Method]; found {
			resp["result"] = result
		} else {
			resp["error"] = map[string]any{"code": -32601, "message": "method not found"}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestEthereumClient(t *testing.T) {
	node := newNode(t, map[string]any{
		"eth_chainId":     "0xaa36a7",
		"eth_blockNumber": "0x10",
		"eth_getBalance":  "0x3e8",
		"eth_call":        "0x000000000000000000000000000000000000000000000000000000000000002a",
	})

	var (
		mu    sync.Mutex
		calls = map[string]int{}
		fails = map[string]int{}
	)
	listener := &blockchain.SelectiveListener{
		OnCallCb: func(method string, _ time.Duration, failed bool) {
			mu.Lock()
			defer mu.Unlock()
			calls[method]++
			if failed {
				fails[method]++
			}
		},
	}

	ctx := context.Background()
	client, err := blockchain.NewEthereumClient(ctx, node.URL, listener)
	require.NoError(t, err)
	t.Cleanup(client.Close)

	chainID, err := client.ChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(11155111), chainID)

	latest, err := client.LatestBlockNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(16), latest)

	account := common.HexToAddress("0x1111111111111111111111111111111111111111")
	balance, err := client.NativeBalance(ctx, account, nil)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), balance)

	token := common.HexToAddress("0x3333333333333333333333333333333333333333")
	tokens, err := client.ERC20Balance(ctx, token, account, big.NewInt(10))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), tokens)

	_, err = client.TransactionInfo(ctx, common.HexToHash("0x01"))
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{
		"eth_chainId":              1,
		"eth_blockNumber":          1,
		"eth_getBalance":           1,
		"eth_call":                 1,
		"eth_getTransactionByHash": 1,
	}, calls)
	assert.Equal(t, map[string]int{"eth_getTransactionByHash": 1}, fails)
}
