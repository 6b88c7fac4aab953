package store

import (
	"errors"

	"github.com/chainrequest/blockchain-api/cache"
	"github.com/chainrequest/blockchain-api/core"
	"github.com/chainrequest/blockchain-api/db"
	"github.com/chainrequest/blockchain-api/encoder"
	"github.com/chainrequest/blockchain-api/utils"
)

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrUnauthorized      = errors.New("invalid api key")
	ErrRequestNotFound   = errors.New("request not found")
	ErrAlreadyAttached   = errors.New("request already has a transaction or signature attached")
	ErrDecoratorNotFound = errors.New("contract decorator not found")
	ErrDecoratorExists   = errors.New("contract decorator already exists")
	ErrInterfaceNotFound = errors.New("interface not found")
	ErrInterfaceExists   = errors.New("interface already exists")
)

// Store bundles every repository of the service over one database.
type Store struct {
	Projects       *ProjectStore
	Decorators     *DecoratorStore
	Balances       *RequestStore[*core.AssetBalanceRequest]
	Sends          *RequestStore[*core.AssetSendRequest]
	Deployments    *RequestStore[*core.ContractDeploymentRequest]
	FunctionCalls  *RequestStore[*core.ContractFunctionCallRequest]
	Authorizations *RequestStore[*core.AuthorizationRequest]
}

func New(database db.DB, decoratorCacheSize int, log utils.SimpleLogger) (*Store, error) {
	decoratorCache, err := cache.NewDecoratorCache(decoratorCacheSize)
	if err != nil {
		return nil, err
	}

	return &Store{
		Projects:       NewProjectStore(database),
		Decorators:     NewDecoratorStore(database, decoratorCache, log),
		Balances:       NewRequestStore[*core.AssetBalanceRequest](database),
		Sends:          NewRequestStore[*core.AssetSendRequest](database),
		Deployments:    NewRequestStore[*core.ContractDeploymentRequest](database),
		FunctionCalls:  NewRequestStore[*core.ContractFunctionCallRequest](database),
		Authorizations: NewRequestStore[*core.AuthorizationRequest](database),
	}, nil
}

// get decodes the value stored at key into v. notFound replaces db.ErrKeyNotFound.
func get(txn db.Transaction, key []byte, v any, notFound error) error {
	err := txn.Get(key, func(value []byte) error {
		return encoder.Unmarshal(value, v)
	})
	if errors.Is(err, db.ErrKeyNotFound) {
		return notFound
	}
	return err
}

func put(txn db.Transaction, key []byte, v any) error {
	value, err := encoder.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, value)
}

// keys returns the keys under prefix with the prefix removed.
func keys(txn db.Transaction, prefix []byte) ([][]byte, error) {
	iter, err := txn.NewIterator(prefix)
	if err != nil {
		return nil, err
	}

	var result [][]byte
	for iter.Next() {
		result = append(result, iter.Key()[len(prefix):])
	}
	return result, iter.Close()
}

// values decodes every value stored under prefix.
func values[T any](txn db.Transaction, prefix []byte) ([]T, error) {
	iter, err := txn.NewIterator(prefix)
	if err != nil {
		return nil, err
	}

	var result []T
	for iter.Next() {
		value, err := iter.Value()
		if err != nil {
			return nil, db.RunAndWrapOnError(iter.Close, err)
		}
		var v T
		if err := encoder.Unmarshal(value, &v); err != nil {
			return nil, db.RunAndWrapOnError(iter.Close, err)
		}
		result = append(result, v)
	}
	return result, iter.Close()
}
