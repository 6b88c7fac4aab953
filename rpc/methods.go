package rpc

import "github.com/chainrequest/blockchain-api/jsonrpc"

// Methods lists every method served by the handler. Methods reading or creating
// project data authenticate with the api key sent alongside the call; request lookups
// and attachments are keyed by the unguessable request id alone.
func (h *Handler) Methods() []jsonrpc.Method { //nolint:funlen
	return []jsonrpc.Method{
		{
			Name:    "api_version",
			Handler: h.Version,
		},
		{
			Name:    "project_create",
			Params:  []jsonrpc.Parameter{{Name: "project"}},
			Handler: h.CreateProject,
		},
		{
			Name:    "project_get",
			Handler: h.Project,
		},
		{
			Name:    "project_createApiKey",
			Handler: h.CreateAPIKey,
		},
		{
			Name:    "project_listApiKeys",
			Handler: h.APIKeys,
		},
		{
			Name:    "project_deleteApiKey",
			Params:  []jsonrpc.Parameter{{Name: "prefix"}},
			Handler: h.DeleteAPIKey,
		},
		{
			Name:    "contract_storeDecorator",
			Params:  []jsonrpc.Parameter{{Name: "decorator"}},
			Handler: h.StoreDecorator,
		},
		{
			Name:    "contract_getDecorator",
			Params:  []jsonrpc.Parameter{{Name: "id"}},
			Handler: h.Decorator,
		},
		{
			Name:    "contract_listDecorators",
			Params:  []jsonrpc.Parameter{{Name: "filter", Optional: true}},
			Handler: h.Decorators,
		},
		{
			Name:    "contract_deleteDecorator",
			Params:  []jsonrpc.Parameter{{Name: "id"}},
			Handler: h.DeleteDecorator,
		},
		{
			Name:    "contract_storeInterface",
			Params:  []jsonrpc.Parameter{{Name: "interface"}},
			Handler: h.StoreInterface,
		},
		{
			Name:    "contract_getInterface",
			Params:  []jsonrpc.Parameter{{Name: "id"}},
			Handler: h.Interface,
		},
		{
			Name:    "contract_listInterfaces",
			Handler: h.Interfaces,
		},
		{
			Name:    "contract_deleteInterface",
			Params:  []jsonrpc.Parameter{{Name: "id"}},
			Handler: h.DeleteInterface,
		},
		{
			Name:    "contract_readonlyCall",
			Params:  []jsonrpc.Parameter{{Name: "call"}},
			Handler: h.ReadOnlyCall,
		},
		{
			Name:    "request_createBalance",
			Params:  []jsonrpc.Parameter{{Name: "request"}},
			Handler: h.CreateBalance,
		},
		{
			Name:    "request_getBalance",
			Params:  []jsonrpc.Parameter{{Name: "id"}},
			Handler: h.Balance,
		},
		{
			Name:    "request_listBalances",
			Handler: h.Balances,
		},
		{
			Name:    "request_attachBalanceSignature",
			Params:  []jsonrpc.Parameter{{Name: "id"}, {Name: "wallet_address"}, {Name: "signature"}},
			Handler: h.AttachBalanceSignature,
		},
		{
			Name:    "request_createSend",
			Params:  []jsonrpc.Parameter{{Name: "request"}},
			Handler: h.CreateSend,
		},
		{
			Name:    "request_getSend",
			Params:  []jsonrpc.Parameter{{Name: "id"}},
			Handler: h.Send,
		},
		{
			Name:    "request_listSends",
			Handler: h.Sends,
		},
		{
			Name:    "request_attachSendTxHash",
			Params:  []jsonrpc.Parameter{{Name: "id"}, {Name: "tx_hash"}, {Name: "sender_address", Optional: true}},
			Handler: h.AttachSendTxHash,
		},
		{
			Name:    "request_createDeployment",
			Params:  []jsonrpc.Parameter{{Name: "request"}},
			Handler: h.CreateDeployment,
		},
		{
			Name:    "request_getDeployment",
			Params:  []jsonrpc.Parameter{{Name: "id"}},
			Handler: h.Deployment,
		},
		{
			Name:    "request_listDeployments",
			Handler: h.Deployments,
		},
		{
			Name:    "request_attachDeploymentTxHash",
			Params:  []jsonrpc.Parameter{{Name: "id"}, {Name: "tx_hash"}, {Name: "deployer_address", Optional: true}},
			Handler: h.AttachDeploymentTxHash,
		},
		{
			Name:    "request_createFunctionCall",
			Params:  []jsonrpc.Parameter{{Name: "request"}},
			Handler: h.CreateFunctionCall,
		},
		{
			Name:    "request_getFunctionCall",
			Params:  []jsonrpc.Parameter{{Name: "id"}},
			Handler: h.FunctionCall,
		},
		{
			Name:    "request_listFunctionCalls",
			Handler: h.FunctionCalls,
		},
		{
			Name:    "request_attachFunctionCallTxHash",
			Params:  []jsonrpc.Parameter{{Name: "id"}, {Name: "tx_hash"}, {Name: "caller_address", Optional: true}},
			Handler: h.AttachFunctionCallTxHash,
		},
		{
			Name:    "request_createAuthorization",
			Params:  []jsonrpc.Parameter{{Name: "request"}},
			Handler: h.CreateAuthorization,
		},
		{
			Name:    "request_getAuthorization",
			Params:  []jsonrpc.Parameter{{Name: "id"}},
			Handler: h.Authorization,
		},
		{
			Name:    "request_listAuthorizations",
			Handler: h.Authorizations,
		},
		{
			Name:    "request_attachAuthorizationSignature",
			Params:  []jsonrpc.Parameter{{Name: "id"}, {Name: "wallet_address"}, {Name: "signature"}},
			Handler: h.AttachAuthorizationSignature,
		},
	}
}
