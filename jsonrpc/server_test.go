package jsonrpc_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/chainrequest/blockchain-api/jsonrpc"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/chainrequest/blockchain-api/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_RegisterMethods(t *testing.T) {
	server := jsonrpc.NewServer(1, utils.NewNopZapLogger())
	tests := map[string]struct {
		handler    any
		paramNames []jsonrpc.Parameter
		want       string
	}{
		"not a func handler": {
			handler: 44,
			want:    "handler must be a function",
		},
		"excess param names": {
			handler:    func() {},
			paramNames: []jsonrpc.Parameter{{Name: "param1"}},
			want:       "number of non-context function params and param names must match",
		},
		"missing param names": {
			handler:    func(param1, param2 int) {},
			paramNames: []jsonrpc.Parameter{{Name: "param1"}},
			want:       "number of non-context function params and param names must match",
		},
		"no return": {
			handler:    func(param1, param2 int) {},
			paramNames: []jsonrpc.Parameter{{Name: "param1"}, {Name: "param2"}},
			want:       "handler must return 2 values",
		},
		"int return": {
			handler:    func(param1, param2 int) (int, int) { return 0, 0 },
			paramNames: []jsonrpc.Parameter{{Name: "param1"}, {Name: "param2"}},
			want:       "second return value must be a *jsonrpc.Error",
		},
	}

	for desc, test := range tests {
		t.Run(desc, func(t *testing.T) {
			err := server.RegisterMethods(jsonrpc.Method{Name: "method", Params: test.paramNames, Handler: test.handler})
			assert.EqualError(t, err, test.want, desc)
		})
	}

	t.Run("should not fail", func(t *testing.T) {
		err := server.RegisterMethods(jsonrpc.Method{
			Name:    "method",
			Params:  []jsonrpc.Parameter{{Name: "param1"}, {Name: "param2"}},
			Handler: func(ctx context.Context, param1, param2 int) (int, *jsonrpc.Error) { return 0, nil },
		})
		assert.NoError(t, err)
	})
}

type validatedParams struct {
	ContractID string `json:"contract_id" validate:"required,identifier"`
}

func TestHandle(t *testing.T) {
	methods := []jsonrpc.Method{
		{
			Name:   "method",
			Params: []jsonrpc.Parameter{{Name: "num"}, {Name: "shouldError", Optional: true}, {Name: "msg", Optional: true}},
			Handler: func(num *int, shouldError bool, data any) (any, *jsonrpc.Error) {
				if shouldError {
					return nil, &jsonrpc.Error{Code: 44, Message: "Expected Error", Data: data}
				}
				return struct {
					Doubled int `json:"doubled"`
				}{*num * 2}, nil
			},
		},
		{
			Name:   "subtract",
			Params: []jsonrpc.Parameter{{Name: "minuend"}, {Name: "subtrahend"}},
			Handler: func(a, b int) (int, *jsonrpc.Error) {
				return a - b, nil
			},
		},
		{
			Name:    "foobar",
			Handler: func() (int, *jsonrpc.Error) { return 0, nil },
		},
		{
			Name:   "validated",
			Params: []jsonrpc.Parameter{{Name: "params"}},
			Handler: func(p validatedParams) (string, *jsonrpc.Error) {
				return p.ContractID, nil
			},
		},
	}

	listener := &recordingListener{}
	server := jsonrpc.NewServer(4, utils.NewNopZapLogger()).
		WithValidator(validator.Validator()).
		WithListener(listener)
	require.NoError(t, server.RegisterMethods(methods...))

	tests := map[string]struct {
		req string
		res string
	}{
		"invalid json": {
			req: `{]`,
			res: `{"jsonrpc":"2.0","error":{"code":-32700,"message":"Parse error","data":"invalid character ']' looking for beginning of object key string"},"id":null}`,
		},
		"wrong version": {
			req: `{"jsonrpc" : "1.0", "id" : 1}`,
			res: `{"jsonrpc":"2.0","error":{"code":-32600,"message":"Invalid Request","data":"unsupported RPC request version"},"id":1}`,
		},
		"empty method": {
			req: `{"jsonrpc" : "2.0", "id" : 1}`,
			res: `{"jsonrpc":"2.0","error":{"code":-32600,"message":"Invalid Request","data":"no method specified"},"id":1}`,
		},
		"invalid id": {
			req: `{"jsonrpc" : "2.0", "method": "foobar", "id" : 1.5}`,
			res: `{"jsonrpc":"2.0","error":{"code":-32600,"message":"Invalid Request","data":"id should be a string or an integer"},"id":null}`,
		},
		"method not found": {
			req: `{"jsonrpc" : "2.0", "method" : "unknown", "id" : 1}`,
			res: `{"jsonrpc":"2.0","error":{"code":-32601,"message":"Method Not Found"},"id":1}`,
		},
		"named params": {
			req: `{"jsonrpc" : "2.0", "method" : "method", "params" : { "num" : 5 }, "id" : 1}`,
			res: `{"jsonrpc":"2.0","result":{"doubled":10},"id":1}`,
		},
		"positional params with optional tail": {
			req: `{"jsonrpc" : "2.0", "method" : "method", "params" : [ 3 ], "id" : 2}`,
			res: `{"jsonrpc":"2.0","result":{"doubled":6},"id":2}`,
		},
		"handler error": {
			req: `{"jsonrpc" : "2.0", "method" : "method", "params" : { "num" : 5, "shouldError" : true, "msg" : "boom" }, "id" : 3}`,
			res: `{"jsonrpc":"2.0","error":{"code":44,"message":"Expected Error","data":"boom"},"id":3}`,
		},
		"missing param": {
			req: `{"jsonrpc" : "2.0", "method" : "subtract", "params" : { "minuend" : 5 }, "id" : 4}`,
			res: `{"jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid Params","data":"missing non-optional param: subtrahend"},"id":4}`,
		},
		"too many params": {
			req: `{"jsonrpc" : "2.0", "method" : "subtract", "params" : [ 1, 2, 3 ], "id" : 5}`,
			res: `{"jsonrpc":"2.0","error":{"code":-32602,"message":"Invalid Params","data":"too many params in list"},"id":5}`,
		},
		"notification": {
			req: `{"jsonrpc" : "2.0", "method" : "subtract", "params" : [ 5, 3 ]}`,
			res: ``,
		},
		"valid struct param": {
			req: `{"jsonrpc" : "2.0", "method" : "validated", "params" : [ { "contract_id" : "examples.token" } ], "id" : 6}`,
			res: `{"jsonrpc":"2.0","result":"examples.token","id":6}`,
		},
		"empty batch": {
			req: `[]`,
			res: `{"jsonrpc":"2.0","error":{"code":-32600,"message":"Invalid Request","data":"empty batch"},"id":null}`,
		},
		"batch of notifications": {
			req: `[{"jsonrpc" : "2.0", "method" : "foobar"}, {"jsonrpc" : "2.0", "method" : "foobar"}]`,
			res: ``,
		},
	}

	for desc, test := range tests {
		t.Run(desc, func(t *testing.T) {
			res, err := server.HandleReader(context.Background(), bytes.NewReader([]byte(test.req)))
			require.NoError(t, err)
			assert.Equal(t, test.res, string(res))
		})
	}

	t.Run("invalid struct param", func(t *testing.T) {
		res, err := server.HandleReader(context.Background(), bytes.NewReader([]byte(
			`{"jsonrpc" : "2.0", "method" : "validated", "params" : [ { "contract_id" : "Not Valid" } ], "id" : 7}`)))
		require.NoError(t, err)

		var resp struct {
			Error *jsonrpc.Error `json:"error"`
		}
		require.NoError(t, json.Unmarshal(res, &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, jsonrpc.InvalidParams, resp.Error.Code)
	})

	t.Run("batch", func(t *testing.T) {
		res, err := server.HandleReader(context.Background(), bytes.NewReader([]byte(`[
			{"jsonrpc" : "2.0", "method" : "subtract", "params" : [ 5, 3 ], "id" : 1},
			{"jsonrpc" : "2.0", "method" : "subtract", "params" : [ 9, 3 ], "id" : 2},
			{"jsonrpc" : "2.0", "method" : "unknown", "id" : 3}
		]`)))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			`{"jsonrpc":"2.0","result":2,"id":1}`,
			`{"jsonrpc":"2.0","result":6,"id":2}`,
			`{"jsonrpc":"2.0","error":{"code":-32601,"message":"Method Not Found"},"id":3}`,
		}, splitBatch(t, res))
	})

	t.Run("listener", func(t *testing.T) {
		listener.mu.Lock()
		defer listener.mu.Unlock()
		assert.Contains(t, listener.requests, "subtract")
		assert.NotContains(t, listener.requests, "unknown")
		assert.Contains(t, listener.notFound, "unknown")
		assert.NotEmpty(t, listener.handled)
		assert.NotEmpty(t, listener.failed)
	})
}

func splitBatch(t *testing.T, res []byte) []string {
	t.Helper()
	var raw []json.RawMessage
	require.NoError(t, json.Unmarshal(res, &raw))
	items := make([]string, len(raw))
	for i, item := range raw {
		items[i] = string(item)
	}
	return items
}
