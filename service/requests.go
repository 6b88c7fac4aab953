package service

import (
	"context"
	"fmt"
	"math/big"

	"github.com/chainrequest/blockchain-api/contract"
	"github.com/chainrequest/blockchain-api/core"
	"github.com/chainrequest/blockchain-api/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

func (s *Service) CreateBalance(project *core.Project, request *core.AssetBalanceRequest) error {
	if err := s.prepare(project, &request.RequestBase, request.Kind()); err != nil {
		return err
	}
	return s.store.Balances.Create(request)
}

func (s *Service) CreateSend(project *core.Project, request *core.AssetSendRequest) error {
	if err := s.prepare(project, &request.RequestBase, request.Kind()); err != nil {
		return err
	}
	return s.store.Sends.Create(request)
}

// CreateDeployment encodes the deployment data of the referenced contract decorator.
// Imported deployments skip encoding and must name the deployed contract.
func (s *Service) CreateDeployment(project *core.Project, request *core.ContractDeploymentRequest) error {
	decorator, err := s.store.Decorators.DecoratorByID(request.ContractID)
	if err != nil {
		return err
	}

	if request.Imported {
		if request.ContractAddress == nil {
			return ErrMissingContractAddr
		}
	} else {
		data, err := decorator.EncodeConstructor(request.ConstructorParams)
		if err != nil {
			return err
		}
		if positive(request.InitialEthAmount) && !constructorPayable(decorator, request.ConstructorParams) {
			return fmt.Errorf("%w: constructor of %s", ErrNotPayable, decorator.ID)
		}
		request.DeploymentData = data
	}

	if err := s.prepare(project, &request.RequestBase, request.Kind()); err != nil {
		return err
	}
	return s.store.Deployments.Create(request)
}

func constructorPayable(decorator *contract.ContractDecorator, args []contract.FunctionArgument) bool {
	if len(decorator.Constructors) == 0 {
		return false
	}
	signature, err := contract.ArgumentSignature(contract.EntryConstructor, args)
	if err != nil {
		return false
	}
	constructor, found := decorator.Constructor(signature)
	return found && constructor.Payable
}

// CreateFunctionCall encodes the call data of a state changing function.
func (s *Service) CreateFunctionCall(project *core.Project, request *core.ContractFunctionCallRequest) error {
	decorator, err := s.store.Decorators.DecoratorByID(request.ContractID)
	if err != nil {
		return err
	}
	data, function, err := decorator.EncodeFunctionCall(request.FunctionName, request.FunctionParams)
	if err != nil {
		return err
	}
	if function.ReadOnly {
		return fmt.Errorf("%w: %s", ErrReadOnlyFunction, function.Signature)
	}
	request.FunctionData = data

	if err := s.prepare(project, &request.RequestBase, request.Kind()); err != nil {
		return err
	}
	return s.store.FunctionCalls.Create(request)
}

func (s *Service) CreateAuthorization(project *core.Project, request *core.AuthorizationRequest) error {
	if err := s.prepare(project, &request.RequestBase, request.Kind()); err != nil {
		return err
	}
	if request.MessageToSign == "" {
		request.MessageToSign = "Authorize request " + request.ID.String()
	}
	return s.store.Authorizations.Create(request)
}

func (s *Service) AttachBalanceSignature(id uuid.UUID, wallet common.Address, signature hexutil.Bytes) (*core.AssetBalanceRequest, error) {
	defer s.statuses.OnRequestUpdated(id)
	return s.store.Balances.Update(id, func(request *core.AssetBalanceRequest) error {
		if request.Signature != nil {
			return store.ErrAlreadyAttached
		}
		if err := attachWallet(&request.WalletAddress, &wallet); err != nil {
			return err
		}
		request.Signature = signature
		return nil
	})
}

func (s *Service) AttachSendTxHash(id uuid.UUID, hash common.Hash, sender *common.Address) (*core.AssetSendRequest, error) {
	defer s.statuses.OnRequestUpdated(id)
	return s.store.Sends.Update(id, func(request *core.AssetSendRequest) error {
		if request.TxHash != nil {
			return store.ErrAlreadyAttached
		}
		if err := attachWallet(&request.SenderAddress, sender); err != nil {
			return err
		}
		request.TxHash = &hash
		return nil
	})
}

func (s *Service) AttachDeploymentTxHash(id uuid.UUID, hash common.Hash, deployer *common.Address) (*core.ContractDeploymentRequest, error) {
	defer s.statuses.OnRequestUpdated(id)
	return s.store.Deployments.Update(id, func(request *core.ContractDeploymentRequest) error {
		if request.TxHash != nil || request.Imported {
			return store.ErrAlreadyAttached
		}
		if err := attachWallet(&request.DeployerAddress, deployer); err != nil {
			return err
		}
		request.TxHash = &hash
		return nil
	})
}

func (s *Service) AttachFunctionCallTxHash(id uuid.UUID, hash common.Hash, caller *common.Address) (*core.ContractFunctionCallRequest, error) {
	defer s.statuses.OnRequestUpdated(id)
	return s.store.FunctionCalls.Update(id, func(request *core.ContractFunctionCallRequest) error {
		if request.TxHash != nil {
			return store.ErrAlreadyAttached
		}
		if err := attachWallet(&request.CallerAddress, caller); err != nil {
			return err
		}
		request.TxHash = &hash
		return nil
	})
}

func (s *Service) AttachAuthorizationSignature(id uuid.UUID, wallet common.Address, signature hexutil.Bytes) (*core.AuthorizationRequest, error) {
	defer s.statuses.OnRequestUpdated(id)
	return s.store.Authorizations.Update(id, func(request *core.AuthorizationRequest) error {
		if request.Signature != nil {
			return store.ErrAlreadyAttached
		}
		if err := attachWallet(&request.WalletAddress, &wallet); err != nil {
			return err
		}
		request.Signature = signature
		return nil
	})
}

// BalanceStatus verifies the wallet signature and, once it holds, reads the balance of
// the wallet at the requested block.
func (s *Service) BalanceStatus(ctx context.Context, request *core.AssetBalanceRequest) (*Result, error) {
	if request.Signature == nil || request.WalletAddress == nil {
		return pending(), nil
	}
	if !SignedBy(request.Message(), request.Signature, *request.WalletAddress) {
		return failed(), nil
	}

	client, err := s.client(ctx, &request.RequestBase)
	if err != nil {
		return nil, err
	}

	var block *big.Int
	if request.BlockNumber != nil {
		block = new(big.Int).SetUint64(*request.BlockNumber)
	}

	var balance *big.Int
	if request.TokenAddress != nil {
		balance, err = client.ERC20Balance(ctx, *request.TokenAddress, *request.WalletAddress, block)
	} else {
		balance, err = client.NativeBalance(ctx, *request.WalletAddress, block)
	}
	if err != nil {
		return nil, err
	}
	return &Result{Status: core.StatusSuccess, Balance: balance, BlockNumber: request.BlockNumber}, nil
}

func (s *Service) AuthorizationStatus(request *core.AuthorizationRequest) *Result {
	if request.Signature == nil || request.WalletAddress == nil {
		return pending()
	}
	if !SignedBy(request.MessageToSign, request.Signature, *request.WalletAddress) {
		return failed()
	}
	return &Result{Status: core.StatusSuccess}
}

func positive(n *big.Int) bool {
	return n != nil && n.Sign() > 0
}

// sameAmount treats a nil amount as zero.
func sameAmount(a, b *big.Int) bool {
	if a == nil {
		a = new(big.Int)
	}
	if b == nil {
		b = new(big.Int)
	}
	return a.Cmp(b) == 0
}
