package rpc

import (
	"context"
	"encoding/json"

	"github.com/chainrequest/blockchain-api/contract"
	"github.com/chainrequest/blockchain-api/core"
	"github.com/chainrequest/blockchain-api/jsonrpc"
	"github.com/chainrequest/blockchain-api/service"
	"github.com/chainrequest/blockchain-api/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/google/uuid"
)

// RequestParams are accepted by every request_create* method.
type RequestParams struct {
	ChainID       uint64            `json:"chain_id,omitempty"`
	RedirectURL   string            `json:"redirect_url,omitempty" validate:"redirect_url"`
	ScreenConfig  core.ScreenConfig `json:"screen_config"`
	ArbitraryData json.RawMessage   `json:"arbitrary_data,omitempty"`
}

func (p *RequestParams) base() core.RequestBase {
	return core.RequestBase{
		ChainID:       p.ChainID,
		RedirectURL:   p.RedirectURL,
		ScreenConfig:  p.ScreenConfig,
		ArbitraryData: p.ArbitraryData,
	}
}

type CreateBalanceParams struct {
	RequestParams
	TokenAddress *common.Address `json:"token_address,omitempty"`
	BlockNumber  *uint64         `json:"block_number,omitempty"`
}

type CreateSendParams struct {
	RequestParams
	TokenAddress     *common.Address       `json:"token_address,omitempty"`
	AssetAmount      *math.HexOrDecimal256 `json:"asset_amount" validate:"required"`
	SenderAddress    *common.Address       `json:"sender_address,omitempty"`
	RecipientAddress common.Address        `json:"recipient_address" validate:"required"`
}

type CreateDeploymentParams struct {
	RequestParams
	ContractID        contract.ID                 `json:"contract_id" validate:"required"`
	ConstructorParams []contract.FunctionArgument `json:"constructor_params" validate:"dive"`
	InitialEthAmount  *math.HexOrDecimal256       `json:"initial_eth_amount,omitempty"`
	DeployerAddress   *common.Address             `json:"deployer_address,omitempty"`
	Imported          bool                        `json:"imported"`
	ContractAddress   *common.Address             `json:"contract_address,omitempty"`
}

type CreateFunctionCallParams struct {
	RequestParams
	ContractID      contract.ID                 `json:"contract_id" validate:"required"`
	ContractAddress common.Address              `json:"contract_address" validate:"required"`
	FunctionName    string                      `json:"function_name" validate:"required"`
	FunctionParams  []contract.FunctionArgument `json:"function_params" validate:"dive"`
	EthAmount       *math.HexOrDecimal256       `json:"eth_amount,omitempty"`
	CallerAddress   *common.Address             `json:"caller_address,omitempty"`
}

type CreateAuthorizationParams struct {
	RequestParams
	MessageToSign string          `json:"message_to_sign,omitempty"`
	WalletAddress *common.Address `json:"wallet_address,omitempty"`
}

// RequestResponse is a stored request together with its current status.
type RequestResponse[T core.Request] struct {
	Request T               `json:"request"`
	Result  *service.Result `json:"result"`
}

func (h *Handler) CreateBalance(ctx context.Context, params CreateBalanceParams) (*core.AssetBalanceRequest, *jsonrpc.Error) {
	request := &core.AssetBalanceRequest{
		RequestBase:  params.base(),
		TokenAddress: params.TokenAddress,
		BlockNumber:  params.BlockNumber,
	}
	return create(ctx, h, "request_createBalance", request, h.service.CreateBalance)
}

func (h *Handler) CreateSend(ctx context.Context, params CreateSendParams) (*core.AssetSendRequest, *jsonrpc.Error) {
	assetAmount, rpcErr := amount(params.AssetAmount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	request := &core.AssetSendRequest{
		RequestBase:      params.base(),
		TokenAddress:     params.TokenAddress,
		AssetAmount:      assetAmount,
		SenderAddress:    params.SenderAddress,
		RecipientAddress: params.RecipientAddress,
	}
	return create(ctx, h, "request_createSend", request, h.service.CreateSend)
}

func (h *Handler) CreateDeployment(ctx context.Context, params CreateDeploymentParams) (*core.ContractDeploymentRequest, *jsonrpc.Error) {
	initialEthAmount, rpcErr := amount(params.InitialEthAmount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	request := &core.ContractDeploymentRequest{
		RequestBase:       params.base(),
		ContractID:        params.ContractID,
		ConstructorParams: params.ConstructorParams,
		InitialEthAmount:  initialEthAmount,
		DeployerAddress:   params.DeployerAddress,
		Imported:          params.Imported,
		ContractAddress:   params.ContractAddress,
	}
	return create(ctx, h, "request_createDeployment", request, h.service.CreateDeployment)
}

func (h *Handler) CreateFunctionCall(ctx context.Context, params CreateFunctionCallParams) (*core.ContractFunctionCallRequest, *jsonrpc.Error) {
	ethAmount, rpcErr := amount(params.EthAmount)
	if rpcErr != nil {
		return nil, rpcErr
	}
	request := &core.ContractFunctionCallRequest{
		RequestBase:     params.base(),
		ContractID:      params.ContractID,
		ContractAddress: params.ContractAddress,
		FunctionName:    params.FunctionName,
		FunctionParams:  params.FunctionParams,
		EthAmount:       ethAmount,
		CallerAddress:   params.CallerAddress,
	}
	return create(ctx, h, "request_createFunctionCall", request, h.service.CreateFunctionCall)
}

func (h *Handler) CreateAuthorization(ctx context.Context, params CreateAuthorizationParams) (*core.AuthorizationRequest, *jsonrpc.Error) {
	request := &core.AuthorizationRequest{
		RequestBase:   params.base(),
		MessageToSign: params.MessageToSign,
		WalletAddress: params.WalletAddress,
	}
	return create(ctx, h, "request_createAuthorization", request, h.service.CreateAuthorization)
}

func (h *Handler) Balance(ctx context.Context, id uuid.UUID) (*RequestResponse[*core.AssetBalanceRequest], *jsonrpc.Error) {
	return get(ctx, h, "request_getBalance", h.service.Store().Balances, id, h.service.BalanceStatus)
}

func (h *Handler) Send(ctx context.Context, id uuid.UUID) (*RequestResponse[*core.AssetSendRequest], *jsonrpc.Error) {
	return get(ctx, h, "request_getSend", h.service.Store().Sends, id, h.service.SendStatus)
}

func (h *Handler) Deployment(ctx context.Context, id uuid.UUID) (*RequestResponse[*core.ContractDeploymentRequest], *jsonrpc.Error) {
	return get(ctx, h, "request_getDeployment", h.service.Store().Deployments, id, h.service.DeploymentStatus)
}

func (h *Handler) FunctionCall(ctx context.Context, id uuid.UUID) (*RequestResponse[*core.ContractFunctionCallRequest], *jsonrpc.Error) {
	return get(ctx, h, "request_getFunctionCall", h.service.Store().FunctionCalls, id, h.service.FunctionCallStatus)
}

func (h *Handler) Authorization(ctx context.Context, id uuid.UUID) (*RequestResponse[*core.AuthorizationRequest], *jsonrpc.Error) {
	status := func(_ context.Context, request *core.AuthorizationRequest) (*service.Result, error) {
		return h.service.AuthorizationStatus(request), nil
	}
	return get(ctx, h, "request_getAuthorization", h.service.Store().Authorizations, id, status)
}

func (h *Handler) Balances(ctx context.Context) ([]*core.AssetBalanceRequest, *jsonrpc.Error) {
	return list(ctx, h, "request_listBalances", h.service.Store().Balances)
}

func (h *Handler) Sends(ctx context.Context) ([]*core.AssetSendRequest, *jsonrpc.Error) {
	return list(ctx, h, "request_listSends", h.service.Store().Sends)
}

func (h *Handler) Deployments(ctx context.Context) ([]*core.ContractDeploymentRequest, *jsonrpc.Error) {
	return list(ctx, h, "request_listDeployments", h.service.Store().Deployments)
}

func (h *Handler) FunctionCalls(ctx context.Context) ([]*core.ContractFunctionCallRequest, *jsonrpc.Error) {
	return list(ctx, h, "request_listFunctionCalls", h.service.Store().FunctionCalls)
}

func (h *Handler) Authorizations(ctx context.Context) ([]*core.AuthorizationRequest, *jsonrpc.Error) {
	return list(ctx, h, "request_listAuthorizations", h.service.Store().Authorizations)
}

func (h *Handler) AttachBalanceSignature(id uuid.UUID, wallet common.Address, signature hexutil.Bytes) (
	*core.AssetBalanceRequest, *jsonrpc.Error,
) {
	request, err := h.service.AttachBalanceSignature(id, wallet, signature)
	if err != nil {
		return nil, h.toRPCError("request_attachBalanceSignature", err)
	}
	return request, nil
}

func (h *Handler) AttachSendTxHash(id uuid.UUID, hash common.Hash, sender *common.Address) (*core.AssetSendRequest, *jsonrpc.Error) {
	request, err := h.service.AttachSendTxHash(id, hash, sender)
	if err != nil {
		return nil, h.toRPCError("request_attachSendTxHash", err)
	}
	return request, nil
}

func (h *Handler) AttachDeploymentTxHash(id uuid.UUID, hash common.Hash, deployer *common.Address) (
	*core.ContractDeploymentRequest, *jsonrpc.Error,
) {
	request, err := h.service.AttachDeploymentTxHash(id, hash, deployer)
	if err != nil {
		return nil, h.toRPCError("request_attachDeploymentTxHash", err)
	}
	return request, nil
}

func (h *Handler) AttachFunctionCallTxHash(id uuid.UUID, hash common.Hash, caller *common.Address) (
	*core.ContractFunctionCallRequest, *jsonrpc.Error,
) {
	request, err := h.service.AttachFunctionCallTxHash(id, hash, caller)
	if err != nil {
		return nil, h.toRPCError("request_attachFunctionCallTxHash", err)
	}
	return request, nil
}

func (h *Handler) AttachAuthorizationSignature(id uuid.UUID, wallet common.Address, signature hexutil.Bytes) (
	*core.AuthorizationRequest, *jsonrpc.Error,
) {
	request, err := h.service.AttachAuthorizationSignature(id, wallet, signature)
	if err != nil {
		return nil, h.toRPCError("request_attachAuthorizationSignature", err)
	}
	return request, nil
}

func create[T core.Request](ctx context.Context, h *Handler, method string, request T,
	createFn func(*core.Project, T) error,
) (T, *jsonrpc.Error) {
	var zero T
	project, rpcErr := h.project(ctx)
	if rpcErr != nil {
		return zero, rpcErr
	}
	if err := createFn(project, request); err != nil {
		return zero, h.toRPCError(method, err)
	}
	return request, nil
}

func get[T core.Request](ctx context.Context, h *Handler, method string, requests *store.RequestStore[T], id uuid.UUID,
	status func(context.Context, T) (*service.Result, error),
) (*RequestResponse[T], *jsonrpc.Error) {
	request, err := requests.ByID(id)
	if err != nil {
		return nil, h.toRPCError(method, err)
	}
	result, err := status(ctx, request)
	if err != nil {
		return nil, h.toRPCError(method, err)
	}
	return &RequestResponse[T]{Request: request, Result: result}, nil
}

func list[T core.Request](ctx context.Context, h *Handler, method string, requests *store.RequestStore[T]) ([]T, *jsonrpc.Error) {
	project, rpcErr := h.project(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	result, err := requests.ListByProject(project.ID)
	if err != nil {
		return nil, h.toRPCError(method, err)
	}
	if result == nil {
		result = []T{}
	}
	return result, nil
}
