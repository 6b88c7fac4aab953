package rpc

import (
	"context"
	"encoding/json"

	"github.com/chainrequest/blockchain-api/contract"
	"github.com/chainrequest/blockchain-api/jsonrpc"
	"github.com/chainrequest/blockchain-api/service"
	"github.com/chainrequest/blockchain-api/store"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/ethereum/go-ethereum/common"
)

type StoreDecoratorParams struct {
	ID            contract.ID     `json:"id" validate:"required,identifier"`
	Artifact      json.RawMessage `json:"artifact" validate:"required"`
	Manifest      json.RawMessage `json:"manifest" validate:"required"`
	Imported      bool            `json:"imported"`
	ProjectScoped bool            `json:"project_scoped"`
}

type DecoratorFilterParams struct {
	Tags       []string               `json:"tags,omitempty"`
	Implements []contract.InterfaceID `json:"implements,omitempty"`
}

type StoreInterfaceParams struct {
	ID       contract.InterfaceID `json:"id" validate:"required,identifier"`
	Manifest json.RawMessage      `json:"manifest" validate:"required"`
}

type Interface struct {
	ID       contract.InterfaceID            `json:"id"`
	Manifest *contract.InterfaceManifestJSON `json:"manifest"`
}

type ReadOnlyCallParams struct {
	ContractID      contract.ID                 `json:"contract_id" validate:"required"`
	ContractAddress common.Address              `json:"contract_address" validate:"required"`
	ChainID         uint64                      `json:"chain_id,omitempty"`
	FunctionName    string                      `json:"function_name" validate:"required"`
	FunctionParams  []contract.FunctionArgument `json:"function_params" validate:"dive"`
	BlockNumber     *uint64                     `json:"block_number,omitempty"`
}

// StoreDecorator resolves and stores a contract decorator. Project scoped decorators
// are only listed for the project which stored them.
func (h *Handler) StoreDecorator(ctx context.Context, params StoreDecoratorParams) (*contract.ContractDecorator, *jsonrpc.Error) {
	project, rpcErr := h.project(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}

	stored := &store.StoredDecorator{
		ID:       params.ID,
		Artifact: params.Artifact,
		Manifest: params.Manifest,
		Imported: params.Imported,
	}
	if params.ProjectScoped {
		stored.ProjectID = &project.ID
	}
	decorator, err := h.service.Store().Decorators.StoreDecorator(stored)
	if err != nil {
		return nil, h.toRPCError("contract_storeDecorator", err)
	}
	return decorator, nil
}

func (h *Handler) Decorator(id contract.ID) (*contract.ContractDecorator, *jsonrpc.Error) {
	decorator, err := h.service.Store().Decorators.DecoratorByID(id)
	if err != nil {
		return nil, h.toRPCError("contract_getDecorator", err)
	}
	return decorator, nil
}

func (h *Handler) Decorators(ctx context.Context, filter *DecoratorFilterParams) ([]*contract.ContractDecorator, *jsonrpc.Error) {
	project, rpcErr := h.project(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}

	storeFilter := store.DecoratorFilter{ProjectID: &project.ID}
	if filter != nil {
		storeFilter.Tags = filter.Tags
		storeFilter.Implements = filter.Implements
	}
	decorators, err := h.service.Store().Decorators.ListDecorators(storeFilter)
	if err != nil {
		return nil, h.toRPCError("contract_listDecorators", err)
	}
	if decorators == nil {
		decorators = []*contract.ContractDecorator{}
	}
	return decorators, nil
}

func (h *Handler) DeleteDecorator(ctx context.Context, id contract.ID) (bool, *jsonrpc.Error) {
	if _, rpcErr := h.project(ctx); rpcErr != nil {
		return false, rpcErr
	}
	if err := h.service.Store().Decorators.DeleteDecorator(id); err != nil {
		return false, h.toRPCError("contract_deleteDecorator", err)
	}
	return true, nil
}

func (h *Handler) StoreInterface(ctx context.Context, params StoreInterfaceParams) (*Interface, *jsonrpc.Error) {
	if _, rpcErr := h.project(ctx); rpcErr != nil {
		return nil, rpcErr
	}

	manifest, err := h.service.Store().Decorators.StoreInterface(&store.StoredInterface{
		ID:       params.ID,
		Manifest: params.Manifest,
	})
	if err != nil {
		return nil, h.toRPCError("contract_storeInterface", err)
	}
	return &Interface{ID: params.ID, Manifest: manifest}, nil
}

func (h *Handler) Interface(id contract.InterfaceID) (*Interface, *jsonrpc.Error) {
	manifest, err := h.service.Store().Decorators.InterfaceByID(id)
	if err != nil {
		return nil, h.toRPCError("contract_getInterface", err)
	}
	return &Interface{ID: id, Manifest: manifest}, nil
}

func (h *Handler) Interfaces() ([]*Interface, *jsonrpc.Error) {
	interfaces, err := h.service.Store().Decorators.ListInterfaces()
	if err != nil {
		return nil, h.toRPCError("contract_listInterfaces", err)
	}

	result := make([]*Interface, 0, len(interfaces))
	for _, id := range utils.SortedKeys(interfaces) {
		result = append(result, &Interface{ID: id, Manifest: interfaces[id]})
	}
	return result, nil
}

func (h *Handler) DeleteInterface(ctx context.Context, id contract.InterfaceID) (bool, *jsonrpc.Error) {
	if _, rpcErr := h.project(ctx); rpcErr != nil {
		return false, rpcErr
	}
	if err := h.service.Store().Decorators.DeleteInterface(id); err != nil {
		return false, h.toRPCError("contract_deleteInterface", err)
	}
	return true, nil
}

func (h *Handler) ReadOnlyCall(ctx context.Context, params ReadOnlyCallParams) (*service.ReadOnlyResult, *jsonrpc.Error) {
	project, rpcErr := h.project(ctx)
	if rpcErr != nil {
		return nil, rpcErr
	}

	result, err := h.service.ReadOnlyCall(ctx, project, &service.ReadOnlyCall{
		ContractID:      params.ContractID,
		ContractAddress: params.ContractAddress,
		ChainID:         params.ChainID,
		FunctionName:    params.FunctionName,
		FunctionParams:  params.FunctionParams,
		BlockNumber:     params.BlockNumber,
	})
	if err != nil {
		return nil, h.toRPCError("contract_readonlyCall", err)
	}
	return result, nil
}
