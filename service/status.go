package service

import (
	"math/big"

	"github.com/chainrequest/blockchain-api/contract"
	"github.com/chainrequest/blockchain-api/core"
	"github.com/ethereum/go-ethereum/common"
)

// Result is the resolved state of a request. Only the fields relevant to the request
// kind are set.
type Result struct {
	Status          core.Status             `json:"status"`
	Balance         *big.Int                `json:"balance,omitempty"`
	BlockNumber     *uint64                 `json:"block_number,omitempty"`
	ContractAddress *common.Address         `json:"contract_address,omitempty"`
	Events          []contract.DecodedEvent `json:"events,omitempty"`
}

func (r *Result) Final() bool {
	return r.Status != core.StatusPending
}

func pending() *Result {
	return &Result{Status: core.StatusPending}
}

func failed() *Result {
	return &Result{Status: core.StatusFailed}
}
