package core

import (
	"encoding/json"
	"math/big"
	"strings"
	"time"

	"github.com/chainrequest/blockchain-api/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

type RequestKind string

const (
	KindAssetBalance         RequestKind = "asset-balance"
	KindAssetSend            RequestKind = "asset-send"
	KindContractDeployment   RequestKind = "contract-deployment"
	KindContractFunctionCall RequestKind = "contract-function-call"
	KindAuthorization        RequestKind = "authorization"
)

// RedirectIDPlaceholder is replaced by the request id in redirect URLs.
const RedirectIDPlaceholder = "${id}"

type ScreenConfig struct {
	BeforeActionMessage string `json:"before_action_message,omitempty"`
	AfterActionMessage  string `json:"after_action_message,omitempty"`
}

// RequestBase holds the fields shared by every request kind.
type RequestBase struct {
	ID            uuid.UUID       `json:"id"`
	ProjectID     uuid.UUID       `json:"project_id"`
	ChainID       uint64          `json:"chain_id"`
	RedirectURL   string          `json:"redirect_url"`
	ScreenConfig  ScreenConfig    `json:"screen_config"`
	ArbitraryData json.RawMessage `json:"arbitrary_data,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (b *RequestBase) Base() *RequestBase {
	return b
}

// Request is implemented by every stored request kind.
type Request interface {
	Base() *RequestBase
	Kind() RequestKind
}

// RedirectURL returns redirectURL, or the project default for kind when it is empty,
// with the id placeholder substituted.
func RedirectURL(redirectURL, baseRedirectURL string, kind RequestKind, id uuid.UUID) string {
	if redirectURL == "" {
		redirectURL = strings.TrimSuffix(baseRedirectURL, "/") + "/" + string(kind) + "/" + RedirectIDPlaceholder + "/action"
	}
	return strings.ReplaceAll(redirectURL, RedirectIDPlaceholder, id.String())
}

type AssetBalanceRequest struct {
	RequestBase
	TokenAddress  *common.Address `json:"token_address,omitempty"`
	BlockNumber   *uint64         `json:"block_number,omitempty"`
	WalletAddress *common.Address `json:"wallet_address,omitempty"`
	Signature     hexutil.Bytes   `json:"signature,omitempty"`
}

func (*AssetBalanceRequest) Kind() RequestKind { return KindAssetBalance }

// Message returns the text a wallet signs to prove ownership for this request.
func (r *AssetBalanceRequest) Message() string {
	return "Sign to prove ownership of your wallet for request " + r.ID.String()
}

type AssetSendRequest struct {
	RequestBase
	TokenAddress     *common.Address `json:"token_address,omitempty"`
	AssetAmount      *big.Int        `json:"asset_amount"`
	SenderAddress    *common.Address `json:"sender_address,omitempty"`
	RecipientAddress common.Address  `json:"recipient_address"`
	TxHash           *common.Hash    `json:"tx_hash,omitempty"`
}

func (*AssetSendRequest) Kind() RequestKind { return KindAssetSend }

type ContractDeploymentRequest struct {
	RequestBase
	ContractID        contract.ID                 `json:"contract_id"`
	ConstructorParams []contract.FunctionArgument `json:"constructor_params"`
	DeploymentData    hexutil.Bytes               `json:"deployment_data"`
	InitialEthAmount  *big.Int                    `json:"initial_eth_amount"`
	DeployerAddress   *common.Address             `json:"deployer_address,omitempty"`
	TxHash            *common.Hash                `json:"tx_hash,omitempty"`
	ContractAddress   *common.Address             `json:"contract_address,omitempty"`
	Imported          bool                        `json:"imported"`
}

func (*ContractDeploymentRequest) Kind() RequestKind { return KindContractDeployment }

type ContractFunctionCallRequest struct {
	RequestBase
	ContractID      contract.ID                 `json:"contract_id"`
	ContractAddress common.Address              `json:"contract_address"`
	FunctionName    string                      `json:"function_name"`
	FunctionParams  []contract.FunctionArgument `json:"function_params"`
	FunctionData    hexutil.Bytes               `json:"function_data"`
	EthAmount       *big.Int                    `json:"eth_amount"`
	CallerAddress   *common.Address             `json:"caller_address,omitempty"`
	TxHash          *common.Hash                `json:"tx_hash,omitempty"`
}

func (*ContractFunctionCallRequest) Kind() RequestKind { return KindContractFunctionCall }

type AuthorizationRequest struct {
	RequestBase
	MessageToSign string          `json:"message_to_sign"`
	WalletAddress *common.Address `json:"wallet_address,omitempty"`
	Signature     hexutil.Bytes   `json:"signature,omitempty"`
}

func (*AuthorizationRequest) Kind() RequestKind { return KindAuthorization }
