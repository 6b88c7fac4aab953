package service

import (
	"bytes"
	"context"
	"errors"

	"github.com/chainrequest/blockchain-api/blockchain"
	"github.com/chainrequest/blockchain-api/contract"
	"github.com/chainrequest/blockchain-api/core"
	"github.com/chainrequest/blockchain-api/store"
	"github.com/ethereum/go-ethereum/common"
)

// SendStatus matches the attached transaction against the requested transfer. Native
// transfers compare recipient and value, token transfers decode the ERC20 call data.
func (s *Service) SendStatus(ctx context.Context, request *core.AssetSendRequest) (*Result, error) {
	return s.cached(request.ID, func() (*Result, error) {
		info, err := s.transaction(ctx, &request.RequestBase, request.TxHash)
		if err != nil || info == nil {
			return pending(), err
		}
		if !info.Successful() || !sentBy(info, request.SenderAddress) {
			return failed(), nil
		}

		tx := info.Transaction
		if request.TokenAddress == nil {
			if !sentTo(info, request.RecipientAddress) || !sameAmount(tx.Value(), request.AssetAmount) {
				return failed(), nil
			}
			return &Result{Status: core.StatusSuccess}, nil
		}

		if !sentTo(info, *request.TokenAddress) {
			return failed(), nil
		}
		recipient, amount, err := blockchain.UnpackTransfer(tx.Data())
		if err != nil || recipient != request.RecipientAddress || !sameAmount(amount, request.AssetAmount) {
			return failed(), nil
		}
		return &Result{Status: core.StatusSuccess}, nil
	})
}

// DeploymentStatus checks that the attached transaction created a contract from the
// encoded deployment data. Imported deployments succeed immediately.
func (s *Service) DeploymentStatus(ctx context.Context, request *core.ContractDeploymentRequest) (*Result, error) {
	if request.Imported {
		return &Result{Status: core.StatusSuccess, ContractAddress: request.ContractAddress}, nil
	}

	return s.cached(request.ID, func() (*Result, error) {
		info, err := s.transaction(ctx, &request.RequestBase, request.TxHash)
		if err != nil || info == nil {
			return pending(), err
		}

		tx := info.Transaction
		if !info.Successful() || tx.To() != nil || info.Receipt.ContractAddress == (common.Address{}) ||
			!sentBy(info, request.DeployerAddress) ||
			!bytes.Equal(tx.Data(), request.DeploymentData) ||
			!sameAmount(tx.Value(), request.InitialEthAmount) {
			return failed(), nil
		}

		events, err := s.events(request.ContractID, info)
		if err != nil {
			return nil, err
		}

		address := info.Receipt.ContractAddress
		if request.ContractAddress == nil {
			if _, err := s.store.Deployments.Update(request.ID, func(stored *core.ContractDeploymentRequest) error {
				stored.ContractAddress = &address
				return nil
			}); err != nil {
				s.log.Warnw("Failed to store deployed contract address", "id", request.ID, "err", err)
			}
		}
		return &Result{Status: core.StatusSuccess, ContractAddress: &address, Events: events}, nil
	})
}

// FunctionCallStatus checks that the attached transaction called the contract with the
// encoded call data and value.
func (s *Service) FunctionCallStatus(ctx context.Context, request *core.ContractFunctionCallRequest) (*Result, error) {
	return s.cached(request.ID, func() (*Result, error) {
		info, err := s.transaction(ctx, &request.RequestBase, request.TxHash)
		if err != nil || info == nil {
			return pending(), err
		}

		tx := info.Transaction
		if !info.Successful() || !sentTo(info, request.ContractAddress) ||
			!sentBy(info, request.CallerAddress) ||
			!bytes.Equal(tx.Data(), request.FunctionData) ||
			!sameAmount(tx.Value(), request.EthAmount) {
			return failed(), nil
		}

		events, err := s.events(request.ContractID, info)
		if err != nil {
			return nil, err
		}
		return &Result{Status: core.StatusSuccess, Events: events}, nil
	})
}

// events decodes the receipt logs with the decorator's events. A decorator which was
// deleted or no longer resolves leaves the status without events.
func (s *Service) events(id contract.ID, info *blockchain.TransactionInfo) ([]contract.DecodedEvent, error) {
	decorator, err := s.store.Decorators.DecoratorByID(id)
	if unresolvable(err) {
		s.log.Warnw("Skipping event decoding, contract decorator is unavailable", "id", id, "err", err)
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return contract.DecodeLogs(decorator.DeserializableEvents(), info.Receipt.Logs)
}

func unresolvable(err error) bool {
	return errors.Is(err, store.ErrDecoratorNotFound) ||
		errors.Is(err, contract.ErrInterfaceNotFound) ||
		errors.Is(err, contract.ErrSignatureNotFound) ||
		errors.Is(err, contract.ErrMissingArtifactField) ||
		errors.Is(err, contract.ErrInvalidDocument) ||
		errors.Is(err, contract.ErrMissingABI)
}

func sentBy(info *blockchain.TransactionInfo, expected *common.Address) bool {
	return expected == nil || info.From == *expected
}

func sentTo(info *blockchain.TransactionInfo, expected common.Address) bool {
	to := info.Transaction.To()
	return to != nil && *to == expected
}
