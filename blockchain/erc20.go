package blockchain

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const erc20ABI = `[
	{"type": "function", "name": "balanceOf", "stateMutability": "view",
		"inputs": [{"name": "account", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]},
	{"type": "function", "name": "transfer", "stateMutability": "nonpayable",
		"inputs": [{"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}],
		"outputs": [{"name": "", "type": "bool"}]},
	{"type": "event", "name": "Transfer", "anonymous": false,
		"inputs": [
			{"name": "from", "type": "address", "indexed": true},
			{"name": "to", "type": "address", "indexed": true},
			{"name": "value", "type": "uint256", "indexed": false}
		]}
]`

var ErrNotTransfer = errors.New("call data is not an ERC20 transfer")

// ERC20 is the subset of the ERC20 interface used to check balances and transfers.
var ERC20 = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		panic(err)
	}
	return parsed
}()

func UnpackBalance(data []byte) (*big.Int, error) {
	values, err := ERC20.Unpack("balanceOf", data)
	if err != nil {
		return nil, fmt.Errorf("unpack balanceOf: %w", err)
	}
	return abi.ConvertType(values[0], new(big.Int)).(*big.Int), nil
}

func PackTransfer(to common.Address, value *big.Int) ([]byte, error) {
	return ERC20.Pack("transfer", to, value)
}

// UnpackTransfer decodes the recipient and amount of an ERC20 transfer call.
func UnpackTransfer(data []byte) (common.Address, *big.Int, error) {
	method := ERC20.Methods["transfer"]
	if len(data) < 4 || !bytes.Equal(data[:4], method.ID) {
		return common.Address{}, nil, ErrNotTransfer
	}
	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return common.Address{}, nil, fmt.Errorf("%w: %w", ErrNotTransfer, err)
	}
	return values[0].(common.Address), values[1].(*big.Int), nil
}
