package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainrequest/blockchain-api/blockchain"
	"github.com/chainrequest/blockchain-api/cache"
	"github.com/chainrequest/blockchain-api/core"
	"github.com/chainrequest/blockchain-api/store"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

var (
	ErrUnsupportedChain    = blockchain.ErrUnsupportedChain
	ErrMissingRedirectURL  = errors.New("request has no redirect url and the project has no base redirect url")
	ErrWalletMismatch      = errors.New("wallet address does not match the request")
	ErrNotPayable          = errors.New("function or constructor is not payable")
	ErrReadOnlyFunction    = errors.New("read-only functions cannot be requested as transactions")
	ErrMissingContractAddr = errors.New("imported contract deployments need a contract address")
)

// Chains hands out chain clients. blockchain.Registry implements it.
type Chains interface {
	Supported(chainID uint64) bool
	Client(ctx context.Context, chainID uint64, customURL string) (blockchain.Client, error)
}

type Service struct {
	store    *store.Store
	chains   Chains
	statuses *cache.StatusCache[*Result]
	log      utils.SimpleLogger
}

func New(st *store.Store, chains Chains, statusCacheSize int, log utils.SimpleLogger) (*Service, error) {
	statuses, err := cache.NewStatusCache[*Result](statusCacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{store: st, chains: chains, statuses: statuses, log: log}, nil
}

func (s *Service) Store() *store.Store {
	return s.store
}

// prepare fills the fields every new request derives from its project.
func (s *Service) prepare(project *core.Project, base *core.RequestBase, kind core.RequestKind) error {
	base.ProjectID = project.ID
	if base.ChainID == 0 {
		base.ChainID = project.ChainID
	}
	customRPC := project.CustomRPCURL != "" && base.ChainID == project.ChainID
	if !customRPC && !s.chains.Supported(base.ChainID) {
		return fmt.Errorf("%w: %d", ErrUnsupportedChain, base.ChainID)
	}
	if base.RedirectURL == "" && project.BaseRedirectURL == "" {
		return ErrMissingRedirectURL
	}

	id, err := store.NewRequestID()
	if err != nil {
		return err
	}
	base.ID = id
	base.RedirectURL = core.RedirectURL(base.RedirectURL, project.BaseRedirectURL, kind, id)
	return nil
}

// client returns the chain client serving base, using the project's custom RPC url for
// the project chain.
func (s *Service) client(ctx context.Context, base *core.RequestBase) (blockchain.Client, error) {
	project, err := s.store.Projects.ByID(base.ProjectID)
	if err != nil {
		return nil, err
	}
	var customURL string
	if project.ChainID == base.ChainID {
		customURL = project.CustomRPCURL
	}
	return s.chains.Client(ctx, base.ChainID, customURL)
}

// transaction fetches a mined transaction. It returns nil while hash is unset or the
// transaction is unknown or pending.
func (s *Service) transaction(ctx context.Context, base *core.RequestBase, hash *common.Hash) (*blockchain.TransactionInfo, error) {
	if hash == nil {
		return nil, nil
	}
	client, err := s.client(ctx, base)
	if err != nil {
		return nil, err
	}
	return client.TransactionInfo(ctx, *hash)
}

// cached resolves a transaction backed status once; final results are remembered.
func (s *Service) cached(id uuid.UUID, resolve func() (*Result, error)) (*Result, error) {
	if result, found := s.statuses.Get(id); found {
		return result, nil
	}
	result, err := resolve()
	if err != nil {
		return nil, err
	}
	if result.Final() {
		s.statuses.Set(id, result)
	}
	return result, nil
}

// attachWallet sets *target to wallet unless the request already names another wallet.
func attachWallet(target **common.Address, wallet *common.Address) error {
	if wallet == nil {
		return nil
	}
	if *target != nil && **target != *wallet {
		return ErrWalletMismatch
	}
	*target = wallet
	return nil
}
