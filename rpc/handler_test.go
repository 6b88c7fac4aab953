package rpc_test

import (
	"context"
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/chainrequest/blockchain-api/blockchain"
	"github.com/chainrequest/blockchain-api/db/memory"
	"github.com/chainrequest/blockchain-api/jsonrpc"
	"github.com/chainrequest/blockchain-api/mocks"
	"github.com/chainrequest/blockchain-api/rpc"
	"github.com/chainrequest/blockchain-api/service"
	"github.com/chainrequest/blockchain-api/store"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/chainrequest/blockchain-api/validator"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	chainID = uint64(11155111)

	storageArtifact = `{
		"contractName": "Storage",
		"abi": [
			{"type": "constructor", "stateMutability": "nonpayable", "inputs": []},
			{"type": "function", "name": "store", "stateMutability": "nonpayable",
				"inputs": [{"name": "number", "type": "uint256"}], "outputs": []},
			{"type": "function", "name": "retrieve", "stateMutability": "view",
				"inputs": [], "outputs": [{"name": "", "type": "uint256"}]}
		],
		"bytecode": "0x6080"
	}`
	storageManifest = `{
		"name": "Storage",
		"tags": ["tags.storage"],
		"implements": [],
		"constructorDecorators": [],
		"functionDecorators": [],
		"eventDecorators": []
	}`
)

var (
	owner    = common.HexToAddress("0x1111111111111111111111111111111111111111")
	deployed = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

type chains struct {
	client blockchain.Client
}

func (c *chains) Supported(id uint64) bool {
	return id == chainID
}

func (c *chains) Client(context.Context, uint64, string) (blockchain.Client, error) {
	return c.client, nil
}

type fixture struct {
	server *jsonrpc.Server
	client *mocks.MockClient
	apiKey string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := mocks.NewMockClient(gomock.NewController(t))

	log := utils.NewNopZapLogger()
	st, err := store.New(memory.New(), 16, log)
	require.NoError(t, err)
	svc, err := service.New(st, &chains{client: client}, 16, log)
	require.NoError(t, err)

	server := jsonrpc.NewServer(1, log).WithValidator(validator.Validator())
	require.NoError(t, server.RegisterMethods(rpc.New(svc, "v0.1.0", log).Methods()...))

	f := &fixture{server: server, client: client}
	var created rpc.ProjectWithKey
	f.call(t, "project_create", map[string]any{"project": map[string]any{
		"owner_address":     owner.Hex(),
		"base_redirect_url": "https://app.example.com",
		"chain_id":          chainID,
	}}, &created)
	require.NotEmpty(t, created.APIKey)
	f.apiKey = created.APIKey
	return f
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *jsonrpc.Error  `json:"error"`
}

func (f *fixture) send(t *testing.T, apiKey, method string, params any) rpcResponse {
	t.Helper()
	body, err := json.Marshal(map[string]any{"jsonrpc": "2.0", "id": 1, "method": method, "params": params})
	require.NoError(t, err)

	ctx := context.Background()
	if apiKey != "" {
		ctx = jsonrpc.WithAPIKey(ctx, apiKey)
	}
	raw, err := f.server.HandleReader(ctx, strings.NewReader(string(body)))
	require.NoError(t, err)

	var res rpcResponse
	require.NoError(t, json.Unmarshal(raw, &res))
	return res
}

func (f *fixture) call(t *testing.T, method string, params, result any) {
	t.Helper()
	res := f.send(t, f.apiKey, method, params)
	require.Nil(t, res.Error, "%s: %v", method, res.Error)
	if result != nil {
		require.NoError(t, json.Unmarshal(res.Result, result))
	}
}

func (f *fixture) fail(t *testing.T, method string, params any) *jsonrpc.Error {
	t.Helper()
	res := f.send(t, f.apiKey, method, params)
	require.NotNil(t, res.Error, method)
	return res.Error
}

func (f *fixture) storeDecorator(t *testing.T) {
	t.Helper()
	f.call(t, "contract_storeDecorator", map[string]any{"decorator": map[string]any{
		"id":       "examples.storage",
		"artifact": json.RawMessage(storageArtifact),
		"manifest": json.RawMessage(storageManifest),
	}}, nil)
}

func TestMethodsRegister(t *testing.T) {
	svc, err := service.New(nil, &chains{}, 1, utils.NewNopZapLogger())
	require.NoError(t, err)
	handler := rpc.New(svc, "", utils.NewNopZapLogger())

	names := make(map[string]bool)
	for _, method := range handler.Methods() {
		assert.False(t, names[method.Name], "duplicate method %s", method.Name)
		names[method.Name] = true
	}
	server := jsonrpc.NewServer(1, utils.NewNopZapLogger())
	require.NoError(t, server.RegisterMethods(handler.Methods()...))
}

func TestVersion(t *testing.T) {
	svc, err := service.New(nil, &chains{}, 1, utils.NewNopZapLogger())
	require.NoError(t, err)

	version, rpcErr := rpc.New(svc, "v0.4.2-rc.1", utils.NewNopZapLogger()).Version()
	require.Nil(t, rpcErr)
	assert.Equal(t, &rpc.APIVersion{Version: "v0.4.2-rc.1", Major: 0, Minor: 4, Patch: 2}, version)

	version, rpcErr = rpc.New(svc, "dev", utils.NewNopZapLogger()).Version()
	require.Nil(t, rpcErr)
	assert.Equal(t, &rpc.APIVersion{Version: "dev"}, version)
}

func TestProjects(t *testing.T) {
	f := newFixture(t)

	t.Run("authenticated", func(t *testing.T) {
		var project map[string]any
		f.call(t, "project_get", nil, &project)
		assert.Equal(t, "https://app.example.com", project["base_redirect_url"])
	})

	t.Run("missing api key", func(t *testing.T) {
		res := f.send(t, "", "project_get", nil)
		require.NotNil(t, res.Error)
		assert.Equal(t, rpc.ErrUnauthorized.Code, res.Error.Code)
	})

	t.Run("wrong api key", func(t *testing.T) {
		res := f.send(t, "deadbeef.cafe", "project_get", nil)
		require.NotNil(t, res.Error)
		assert.Equal(t, rpc.ErrUnauthorized.Code, res.Error.Code)
	})

	t.Run("api keys", func(t *testing.T) {
		var key rpc.APIKeyWithSecret
		f.call(t, "project_createApiKey", nil, &key)
		require.NotEmpty(t, key.Key)

		var keys []map[string]any
		f.call(t, "project_listApiKeys", nil, &keys)
		assert.Len(t, keys, 2)
		for _, k := range keys {
			assert.NotContains(t, k, "hash")
		}

		f.call(t, "project_deleteApiKey", []any{key.Prefix}, nil)
		res := f.send(t, key.Key, "project_get", nil)
		require.NotNil(t, res.Error)
		assert.Equal(t, rpc.ErrUnauthorized.Code, res.Error.Code)
	})

	t.Run("unsupported chain", func(t *testing.T) {
		rpcErr := f.fail(t, "project_create", map[string]any{"project": map[string]any{
			"owner_address":     owner.Hex(),
			"base_redirect_url": "https://app.example.com",
			"chain_id":          1,
		}})
		assert.Equal(t, rpc.ErrUnsupportedChain.Code, rpcErr.Code)
	})

	t.Run("invalid redirect url", func(t *testing.T) {
		rpcErr := f.fail(t, "project_create", map[string]any{"project": map[string]any{
			"owner_address":     owner.Hex(),
			"base_redirect_url": "ftp://app.example.com",
			"chain_id":          chainID,
		}})
		assert.Equal(t, jsonrpc.InvalidParams, rpcErr.Code)
	})
}

func TestDecorators(t *testing.T) {
	f := newFixture(t)
	f.storeDecorator(t)

	var decorator map[string]any
	f.call(t, "contract_getDecorator", []any{"examples.storage"}, &decorator)
	assert.Equal(t, "Storage", decorator["name"])

	var listed []map[string]any
	f.call(t, "contract_listDecorators", map[string]any{"filter": map[string]any{"tags": []string{"tags.storage"}}}, &listed)
	assert.Len(t, listed, 1)
	f.call(t, "contract_listDecorators", map[string]any{"filter": map[string]any{"tags": []string{"tags.other"}}}, &listed)
	assert.Empty(t, listed)

	t.Run("duplicate", func(t *testing.T) {
		rpcErr := f.fail(t, "contract_storeDecorator", map[string]any{"decorator": map[string]any{
			"id":       "examples.storage",
			"artifact": json.RawMessage(storageArtifact),
			"manifest": json.RawMessage(storageManifest),
		}})
		assert.Equal(t, rpc.ErrContractDecoratorExists.Code, rpcErr.Code)
	})

	t.Run("missing interface", func(t *testing.T) {
		rpcErr := f.fail(t, "contract_storeDecorator", map[string]any{"decorator": map[string]any{
			"id":       "examples.ownable",
			"artifact": json.RawMessage(storageArtifact),
			"manifest": json.RawMessage(`{"implements": ["traits.ownable"]}`),
		}})
		assert.Equal(t, rpc.ErrInvalidContractDecorator.Code, rpcErr.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rpcErr := f.fail(t, "contract_storeDecorator", map[string]any{"decorator": map[string]any{
			"id":       "Examples Storage",
			"artifact": json.RawMessage(storageArtifact),
			"manifest": json.RawMessage(storageManifest),
		}})
		assert.Equal(t, jsonrpc.InvalidParams, rpcErr.Code)
	})

	t.Run("interfaces", func(t *testing.T) {
		f.call(t, "contract_storeInterface", map[string]any{"interface": map[string]any{
			"id":       "traits.empty",
			"manifest": json.RawMessage(`{"name": "Empty"}`),
		}}, nil)

		var interfaces []rpc.Interface
		f.call(t, "contract_listInterfaces", nil, &interfaces)
		require.Len(t, interfaces, 1)
		assert.Equal(t, "Empty", interfaces[0].Manifest.Name)

		f.call(t, "contract_deleteInterface", []any{"traits.empty"}, nil)
		rpcErr := f.fail(t, "contract_getInterface", []any{"traits.empty"})
		assert.Equal(t, rpc.ErrInterfaceNotFound.Code, rpcErr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		f.call(t, "contract_deleteDecorator", []any{"examples.storage"}, nil)
		rpcErr := f.fail(t, "contract_getDecorator", []any{"examples.storage"})
		assert.Equal(t, rpc.ErrContractDecoratorNotFound.Code, rpcErr.Code)
	})
}

func TestSendRequests(t *testing.T) {
	f := newFixture(t)

	var created map[string]any
	f.call(t, "request_createSend", map[string]any{"request": map[string]any{
		"asset_amount":      "1000",
		"recipient_address": deployed.Hex(),
	}}, &created)
	id := created["id"].(string)
	assert.Equal(t, "https://app.example.com/asset-send/"+id+"/action", created["redirect_url"])

	var got struct {
		Request map[string]any  `json:"request"`
		Result  *service.Result `json:"result"`
	}
	f.call(t, "request_getSend", []any{id}, &got)
	assert.Equal(t, "PENDING", string(got.Result.Status))

	var listed []map[string]any
	f.call(t, "request_listSends", nil, &listed)
	assert.Len(t, listed, 1)

	hash := common.HexToHash("0xabc")
	f.call(t, "request_attachSendTxHash", []any{id, hash.Hex()}, nil)
	rpcErr := f.fail(t, "request_attachSendTxHash", []any{id, hash.Hex()})
	assert.Equal(t, rpc.ErrAlreadyAttached.Code, rpcErr.Code)

	t.Run("negative amount", func(t *testing.T) {
		rpcErr := f.fail(t, "request_createSend", map[string]any{"request": map[string]any{
			"asset_amount":      "-1",
			"recipient_address": deployed.Hex(),
		}})
		assert.Equal(t, rpc.ErrInvalidArgument.Code, rpcErr.Code)
	})

	t.Run("unknown request", func(t *testing.T) {
		rpcErr := f.fail(t, "request_getSend", []any{uuid.New().String()})
		assert.Equal(t, rpc.ErrRequestNotFound.Code, rpcErr.Code)
	})
}

func TestFunctionCallRequests(t *testing.T) {
	f := newFixture(t)
	f.storeDecorator(t)

	var created map[string]any
	f.call(t, "request_createFunctionCall", map[string]any{"request": map[string]any{
		"contract_id":      "examples.storage",
		"contract_address": deployed.Hex(),
		"function_name":    "store",
		"function_params":  []map[string]any{{"type": "uint256", "value": "7"}},
	}}, &created)
	assert.NotEmpty(t, created["function_data"])

	rpcErr := f.fail(t, "request_createFunctionCall", map[string]any{"request": map[string]any{
		"contract_id":      "examples.storage",
		"contract_address": deployed.Hex(),
		"function_name":    "retrieve",
	}})
	assert.Equal(t, rpc.ErrReadOnlyFunction.Code, rpcErr.Code)

	rpcErr = f.fail(t, "request_createFunctionCall", map[string]any{"request": map[string]any{
		"contract_id":      "examples.storage",
		"contract_address": deployed.Hex(),
		"function_name":    "missing",
	}})
	assert.Equal(t, rpc.ErrFunctionNotFound.Code, rpcErr.Code)
}

func TestReadOnlyCall(t *testing.T) {
	f := newFixture(t)
	f.storeDecorator(t)

	selector := crypto.Keccak256([]byte("retrieve()"))[:4]
	f.client.EXPECT().CallContract(gomock.Any(), deployed, selector, big.NewInt(3)).
		Return(common.LeftPadBytes([]byte{7}, 32), nil)

	var result service.ReadOnlyResult
	f.call(t, "contract_readonlyCall", map[string]any{"call": map[string]any{
		"contract_id":      "examples.storage",
		"contract_address": deployed.Hex(),
		"function_name":    "retrieve",
		"block_number":     3,
	}}, &result)
	assert.Equal(t, uint64(3), result.BlockNumber)
	require.Len(t, result.Outputs, 1)
	assert.Equal(t, "7", result.Outputs[0].Value)

	rpcErr := f.fail(t, "contract_readonlyCall", map[string]any{"call": map[string]any{
		"contract_id":      "examples.storage",
		"contract_address": deployed.Hex(),
		"function_name":    "store",
		"function_params":  []map[string]any{{"type": "uint256", "value": "7"}},
	}})
	assert.Equal(t, rpc.ErrNotReadOnly.Code, rpcErr.Code)
}
