package blockchain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

//go:generate mockgen -destination=../mocks/mock_client.go -package=mocks github.com/chainrequest/blockchain-api/blockchain Client
type Client interface {
	ChainID(ctx context.Context) (*big.Int, error)
	// NativeBalance returns the balance at block, or at the latest block when block is nil.
	NativeBalance(ctx context.Context, account common.Address, block *big.Int) (*big.Int, error)
	ERC20Balance(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error)
	// TransactionInfo returns nil when the transaction is unknown or still pending.
	TransactionInfo(ctx context.Context, hash common.Hash) (*TransactionInfo, error)
	CallContract(ctx context.Context, to common.Address, data []byte, block *big.Int) ([]byte, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	Close()
}

// TransactionInfo is a mined transaction together with its receipt.
type TransactionInfo struct {
	Transaction   *types.Transaction
	Receipt       *types.Receipt
	From          common.Address
	Confirmations uint64
}

// Successful reports whether the transaction was executed without reverting.
func (i *TransactionInfo) Successful() bool {
	return i.Receipt != nil && i.Receipt.Status == types.ReceiptStatusSuccessful
}
