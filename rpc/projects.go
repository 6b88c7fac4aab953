package rpc

import (
	"context"

	"github.com/chainrequest/blockchain-api/core"
	"github.com/chainrequest/blockchain-api/jsonrpc"
	"github.com/ethereum/go-ethereum/common"
)

type CreateProjectParams struct {
	OwnerAddress          common.Address  `json:"owner_address" validate:"required"`
	IssuerContractAddress *common.Address `json:"issuer_contract_address,omitempty"`
	BaseRedirectURL       string          `json:"base_redirect_url" validate:"required,redirect_url"`
	ChainID               uint64          `json:"chain_id" validate:"required"`
	CustomRPCURL          string          `json:"custom_rpc_url,omitempty" validate:"omitempty,url"`
}

type ProjectWithKey struct {
	Project *core.Project `json:"project"`
	APIKey  string        `json:"api_key"`
}

type APIKeyWithSecret struct {
	*core.APIKey
	Key string `json:"key"`
}

// CreateProject stores a project and returns it with its first api key. The key is
// only ever shown here.
func (h *Handler) CreateProject(params CreateProjectParams) (*ProjectWithKey, *jsonrpc.Error) {
	project := &core.Project{
		OwnerAddress:          params.OwnerAddress,
		IssuerContractAddress: params.IssuerContractAddress,
		BaseRedirectURL:       params.BaseRedirectURL,
		ChainID:               params.ChainID,
		CustomRPCURL:          params.CustomRPCURL,
	}
	key, _, err := h.service.CreateProject(project)
	if err != nil {
		return nil, h.toRPCError("project_create", err)
	}
	return &ProjectWithKey{Project: project, APIKey: key}, nil
}

func (h *Handler) Project(ctx context.Context) (*core.Project, *jsonrpc.Error) {
	return h.project(ctx)
}

func (h *Handler) CreateAPIKey(ctx context.Context) (*APIKeyWithSecret, *jsonrpc.Error) {
	project, rpcErr := h.project(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	plain, key, err := h.service.Store().Projects.CreateAPIKey(project.ID)
	if err != nil {
		return nil, h.toRPCError("project_createApiKey", err)
	}
	return &APIKeyWithSecret{APIKey: key, Key: plain}, nil
}

func (h *Handler) APIKeys(ctx context.Context) ([]*core.APIKey, *jsonrpc.Error) {
	project, rpcErr := h.project(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}
	keys, err := h.service.Store().Projects.ListAPIKeys(project.ID)
	if err != nil {
		return nil, h.toRPCError("project_listApiKeys", err)
	}
	return keys, nil
}

func (h *Handler) DeleteAPIKey(ctx context.Context, prefix string) (bool, *jsonrpc.Error) {
	project, rpcErr := h.project(ctx)
	if rpcErr != nil {
		return false, rpcErr
	}
	if err := h.service.Store().Projects.DeleteAPIKey(project.ID, prefix); err != nil {
		return false, h.toRPCError("project_deleteApiKey", err)
	}
	return true, nil
}
