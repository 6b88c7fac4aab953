package blockchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// EthereumClient talks to an Ethereum compatible JSON-RPC node.
type EthereumClient struct {
	ethClient *ethclient.Client
	client    *rpc.Client
	listener  EventListener
}

var _ Client = (*EthereumClient)(nil)

func NewEthereumClient(ctx context.Context, url string, listener EventListener) (*EthereumClient, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	if listener == nil {
		listener = &SelectiveListener{}
	}
	return &EthereumClient{
		ethClient: ethclient.NewClient(client),
		client:    client,
		listener:  listener,
	}, nil
}

func (c *EthereumClient) observe(method string, start time.Time, err error) {
	c.listener.OnCall(method, time.Since(start), err != nil)
}

func (c *EthereumClient) ChainID(ctx context.Context) (_ *big.Int, err error) {
	defer func(start time.Time) { c.observe("eth_chainId", start, err) }(time.Now())
	return c.ethClient.ChainID(ctx)
}

func (c *EthereumClient) NativeBalance(ctx context.Context, account common.Address, block *big.Int) (_ *big.Int, err error) {
	defer func(start time.Time) { c.observe("eth_getBalance", start, err) }(time.Now())
	return c.ethClient.BalanceAt(ctx, account, block)
}

func (c *EthereumClient) ERC20Balance(ctx context.Context, token, account common.Address, block *big.Int) (*big.Int, error) {
	data, err := ERC20.Pack("balanceOf", account)
	if err != nil {
		return nil, err
	}
	result, err := c.CallContract(ctx, token, data, block)
	if err != nil {
		return nil, fmt.Errorf("call balanceOf on %s: %w", token, err)
	}
	return UnpackBalance(result)
}

func (c *EthereumClient) TransactionInfo(ctx context.Context, hash common.Hash) (*TransactionInfo, error) {
	start := time.Now()
	tx, pending, err := c.ethClient.TransactionByHash(ctx, hash)
	c.observe("eth_getTransactionByHash", start, err)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get transaction %s: %w", hash, err)
	}
	if pending {
		return nil, nil
	}

	start = time.Now()
	receipt, err := c.ethClient.TransactionReceipt(ctx, hash)
	c.observe("eth_getTransactionReceipt", start, err)
	if errors.Is(err, ethereum.NotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get receipt %s: %w", hash, err)
	}

	from, err := types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
	if err != nil {
		return nil, fmt.Errorf("recover sender of %s: %w", hash, err)
	}

	latest, err := c.LatestBlockNumber(ctx)
	if err != nil {
		return nil, err
	}
	var confirmations uint64
	if mined := receipt.BlockNumber.Uint64(); latest >= mined {
		confirmations = latest - mined + 1
	}

	return &TransactionInfo{
		Transaction:   tx,
		Receipt:       receipt,
		From:          from,
		Confirmations: confirmations,
	}, nil
}

func (c *EthereumClient) CallContract(ctx context.Context, to common.Address, data []byte, block *big.Int) (_ []byte, err error) {
	defer func(start time.Time) { c.observe("eth_call", start, err) }(time.Now())
	return c.ethClient.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, block)
}

func (c *EthereumClient) LatestBlockNumber(ctx context.Context) (_ uint64, err error) {
	defer func(start time.Time) { c.observe("eth_blockNumber", start, err) }(time.Now())
	return c.ethClient.BlockNumber(ctx)
}

func (c *EthereumClient) Close() {
	c.ethClient.Close()
}
