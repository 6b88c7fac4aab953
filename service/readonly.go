package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/chainrequest/blockchain-api/contract"
	"github.com/chainrequest/blockchain-api/core"
	"github.com/ethereum/go-ethereum/common"
)

type ReadOnlyCall struct {
	ContractID      contract.ID
	ContractAddress common.Address
	ChainID         uint64
	FunctionName    string
	FunctionParams  []contract.FunctionArgument
	BlockNumber     *uint64
}

type ReadOnlyResult struct {
	Signature   string           `json:"signature"`
	BlockNumber uint64           `json:"block_number"`
	Outputs     []ReadOnlyOutput `json:"outputs"`
}

type ReadOnlyOutput struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// ReadOnlyCall executes a view or pure function of a deployed contract and decodes its
// return values.
func (s *Service) ReadOnlyCall(ctx context.Context, project *core.Project, call *ReadOnlyCall) (*ReadOnlyResult, error) {
	decorator, err := s.store.Decorators.DecoratorByID(call.ContractID)
	if err != nil {
		return nil, err
	}
	data, function, err := decorator.EncodeFunctionCall(call.FunctionName, call.FunctionParams)
	if err != nil {
		return nil, err
	}
	if !function.ReadOnly {
		return nil, fmt.Errorf("%w: %s", contract.ErrNotReadOnly, function.Signature)
	}

	base := core.RequestBase{ProjectID: project.ID, ChainID: call.ChainID}
	if base.ChainID == 0 {
		base.ChainID = project.ChainID
	}
	client, err := s.client(ctx, &base)
	if err != nil {
		return nil, err
	}

	var blockNumber uint64
	if call.BlockNumber != nil {
		blockNumber = *call.BlockNumber
	} else if blockNumber, err = client.LatestBlockNumber(ctx); err != nil {
		return nil, err
	}

	returned, err := client.CallContract(ctx, call.ContractAddress, data, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return nil, err
	}
	values, err := decorator.DecodeFunctionOutputs(function, returned)
	if err != nil {
		return nil, err
	}

	outputs := make([]ReadOnlyOutput, len(values))
	for i, value := range values {
		outputs[i] = ReadOnlyOutput{Value: value}
		if i < len(function.Outputs) {
			outputs[i].Name = function.Outputs[i].Name
			if outputs[i].Name == "" {
				outputs[i].Name = function.Outputs[i].SolidityName
			}
			outputs[i].Type = function.Outputs[i].SolidityType
		}
	}
	return &ReadOnlyResult{Signature: function.Signature, BlockNumber: blockNumber, Outputs: outputs}, nil
}
