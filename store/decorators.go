package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/chainrequest/blockchain-api/cache"
	"github.com/chainrequest/blockchain-api/contract"
	"github.com/chainrequest/blockchain-api/db"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/google/uuid"
)

// StoredDecorator is the persisted form of a contract decorator. The artifact and
// manifest are kept as submitted and resolved on load.
type StoredDecorator struct {
	ID        contract.ID     `json:"id"`
	ProjectID *uuid.UUID      `json:"project_id,omitempty"`
	Artifact  json.RawMessage `json:"artifact"`
	Manifest  json.RawMessage `json:"manifest"`
	Imported  bool            `json:"imported"`
	CreatedAt time.Time       `json:"created_at"`
}

type StoredInterface struct {
	ID        contract.InterfaceID `json:"id"`
	Manifest  json.RawMessage      `json:"manifest"`
	CreatedAt time.Time            `json:"created_at"`
}

// DecoratorFilter selects decorators visible to a project. Every listed tag and every
// listed interface must be present.
type DecoratorFilter struct {
	ProjectID  *uuid.UUID
	Tags       []string
	Implements []contract.InterfaceID
}

func (f DecoratorFilter) matches(stored *StoredDecorator, decorator *contract.ContractDecorator) bool {
	if stored.ProjectID != nil && (f.ProjectID == nil || *stored.ProjectID != *f.ProjectID) {
		return false
	}
	return utils.All(f.Tags, func(tag string) bool {
		return slices.Contains(decorator.Tags, tag)
	}) && utils.All(f.Implements, func(id contract.InterfaceID) bool {
		return slices.Contains(decorator.Implements, id)
	})
}

type DecoratorStore struct {
	db    db.DB
	cache *cache.DecoratorCache
	log   utils.SimpleLogger
}

func NewDecoratorStore(database db.DB, decoratorCache *cache.DecoratorCache, log utils.SimpleLogger) *DecoratorStore {
	return &DecoratorStore{db: database, cache: decoratorCache, log: log}
}

// StoreDecorator validates and stores a decorator. The decorator must resolve against
// the interfaces already stored.
func (s *DecoratorStore) StoreDecorator(stored *StoredDecorator) (*contract.ContractDecorator, error) {
	stored.CreatedAt = time.Now().UTC()

	var decorator *contract.ContractDecorator
	err := s.db.Update(func(txn db.Transaction) error {
		key := db.ContractDecorators.Key([]byte(stored.ID))
		if found, err := txn.Has(key); err != nil {
			return err
		} else if found {
			return fmt.Errorf("%w: %s", ErrDecoratorExists, stored.ID)
		}

		var err error
		if decorator, err = resolve(txn, stored); err != nil {
			return err
		}
		return put(txn, key, stored)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(decorator)
	return decorator, nil
}

// DecoratorByID loads and resolves a stored decorator.
func (s *DecoratorStore) DecoratorByID(id contract.ID) (*contract.ContractDecorator, error) {
	if decorator, found := s.cache.Get(id); found {
		return decorator, nil
	}

	var decorator *contract.ContractDecorator
	err := s.db.View(func(txn db.Transaction) error {
		var stored StoredDecorator
		if err := get(txn, db.ContractDecorators.Key([]byte(id)), &stored, ErrDecoratorNotFound); err != nil {
			return err
		}

		var err error
		decorator, err = resolve(txn, &stored)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(decorator)
	return decorator, nil
}

// ListDecorators returns the resolved decorators matching filter, ordered by id.
// Decorators which no longer resolve are logged and skipped.
func (s *DecoratorStore) ListDecorators(filter DecoratorFilter) ([]*contract.ContractDecorator, error) {
	var decorators []*contract.ContractDecorator
	err := s.db.View(func(txn db.Transaction) error {
		stored, err := values[StoredDecorator](txn, db.ContractDecorators.Key())
		if err != nil {
			return err
		}

		for i := range stored {
			decorator, err := resolve(txn, &stored[i])
			if err != nil {
				s.log.Warnw("Skipping unresolvable contract decorator", "id", stored[i].ID, "err", err)
				continue
			}
			if filter.matches(&stored[i], decorator) {
				decorators = append(decorators, decorator)
			}
		}
		return nil
	})
	return decorators, err
}

func (s *DecoratorStore) DeleteDecorator(id contract.ID) error {
	err := s.db.Update(func(txn db.Transaction) error {
		key := db.ContractDecorators.Key([]byte(id))
		if found, err := txn.Has(key); err != nil {
			return err
		} else if !found {
			return ErrDecoratorNotFound
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	s.cache.Remove(id)
	return nil
}

func (s *DecoratorStore) StoreInterface(stored *StoredInterface) (*contract.InterfaceManifestJSON, error) {
	manifest, err := contract.ParseInterfaceManifest(stored.Manifest)
	if err != nil {
		return nil, err
	}
	stored.CreatedAt = time.Now().UTC()

	err = s.db.Update(func(txn db.Transaction) error {
		key := db.Interfaces.Key([]byte(stored.ID))
		if found, err := txn.Has(key); err != nil {
			return err
		} else if found {
			return fmt.Errorf("%w: %s", ErrInterfaceExists, stored.ID)
		}
		return put(txn, key, stored)
	})
	if err != nil {
		return nil, err
	}

	s.cache.OnInterfaceChanged(stored.ID)
	return manifest, nil
}

func (s *DecoratorStore) InterfaceByID(id contract.InterfaceID) (*contract.InterfaceManifestJSON, error) {
	var manifest *contract.InterfaceManifestJSON
	err := s.db.View(func(txn db.Transaction) error {
		var err error
		manifest, err = interfaceByID(txn, id)
		return err
	})
	return manifest, err
}

// ListInterfaces returns every stored interface keyed by id.
func (s *DecoratorStore) ListInterfaces() (contract.InterfaceMap, error) {
	interfaces := make(contract.InterfaceMap)
	err := s.db.View(func(txn db.Transaction) error {
		stored, err := values[StoredInterface](txn, db.Interfaces.Key())
		if err != nil {
			return err
		}
		for _, iface := range stored {
			manifest, err := contract.ParseInterfaceManifest(iface.Manifest)
			if err != nil {
				return fmt.Errorf("interface %s: %w", iface.ID, err)
			}
			interfaces[iface.ID] = manifest
		}
		return nil
	})
	return interfaces, err
}

func (s *DecoratorStore) DeleteInterface(id contract.InterfaceID) error {
	err := s.db.Update(func(txn db.Transaction) error {
		key := db.Interfaces.Key([]byte(id))
		if found, err := txn.Has(key); err != nil {
			return err
		} else if !found {
			return ErrInterfaceNotFound
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	s.cache.OnInterfaceChanged(id)
	return nil
}

func interfaceByID(txn db.Transaction, id contract.InterfaceID) (*contract.InterfaceManifestJSON, error) {
	var stored StoredInterface
	if err := get(txn, db.Interfaces.Key([]byte(id)), &stored, ErrInterfaceNotFound); err != nil {
		return nil, err
	}
	return contract.ParseInterfaceManifest(stored.Manifest)
}

// interfaces loads the interfaces referenced by ids. Missing interfaces are left out
// so that resolution reports them.
func interfaces(txn db.Transaction, ids []contract.InterfaceID) (contract.InterfaceMap, error) {
	result := make(contract.InterfaceMap, len(ids))
	for _, id := range ids {
		manifest, err := interfaceByID(txn, id)
		if errors.Is(err, ErrInterfaceNotFound) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("interface %s: %w", id, err)
		}
		result[id] = manifest
	}
	return result, nil
}

func resolve(txn db.Transaction, stored *StoredDecorator) (*contract.ContractDecorator, error) {
	artifact, err := contract.ParseArtifact(stored.Artifact)
	if err != nil {
		return nil, err
	}
	manifest, err := contract.ParseManifest(stored.Manifest)
	if err != nil {
		return nil, err
	}
	lookup, err := interfaces(txn, manifest.Implements)
	if err != nil {
		return nil, err
	}
	return contract.NewContractDecorator(stored.ID, artifact, manifest, stored.Imported, lookup)
}
