package core

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Project groups the requests and contract decorators created by one client
// application.
type Project struct {
	ID                    uuid.UUID       `json:"id"`
	OwnerAddress          common.Address  `json:"owner_address"`
	IssuerContractAddress *common.Address `json:"issuer_contract_address,omitempty"`
	BaseRedirectURL       string          `json:"base_redirect_url"`
	ChainID               uint64          `json:"chain_id"`
	CustomRPCURL          string          `json:"custom_rpc_url,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// APIKey authenticates a project. Only the hash of the secret part is kept.
type APIKey struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Prefix    string    `json:"prefix"`
	Hash      []byte    `json:"-" cbor:"hash"`
	CreatedAt time.Time `json:"created_at"`
}
