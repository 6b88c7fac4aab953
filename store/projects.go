package store

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/chainrequest/blockchain-api/core"
	"github.com/chainrequest/blockchain-api/db"
	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"
)

const (
	apiKeyPrefixBytes = 8
	apiKeySecretBytes = 32
	apiKeySeparator   = "."
)

type ProjectStore struct {
	db db.DB
}

func NewProjectStore(database db.DB) *ProjectStore {
	return &ProjectStore{db: database}
}

// Create stores a new project, assigning its id and creation time.
func (s *ProjectStore) Create(project *core.Project) error {
	project.ID = uuid.New()
	project.CreatedAt = time.Now().UTC()

	return s.db.Update(func(txn db.Transaction) error {
		return put(txn, db.Projects.Key(project.ID[:]), project)
	})
}

func (s *ProjectStore) ByID(id uuid.UUID) (*core.Project, error) {
	var project core.Project
	err := s.db.View(func(txn db.Transaction) error {
		return get(txn, db.Projects.Key(id[:]), &project, ErrProjectNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateAPIKey issues a new key for the project. The returned plain key has the
// form "<prefix>.<secret>" and cannot be recovered later.
func (s *ProjectStore) CreateAPIKey(projectID uuid.UUID) (string, *core.APIKey, error) {
	prefix, err := randomHex(apiKeyPrefixBytes)
	if err != nil {
		return "", nil, err
	}
	secret, err := randomHex(apiKeySecretBytes)
	if err != nil {
		return "", nil, err
	}

	key := &core.APIKey{
		ID:        uuid.New(),
		ProjectID: projectID,
		Prefix:    prefix,
		Hash:      hashSecret(secret),
		CreatedAt: time.Now().UTC(),
	}

	err = s.db.Update(func(txn db.Transaction) error {
		if found, err := txn.Has(db.Projects.Key(projectID[:])); err != nil {
			return err
		} else if !found {
			return ErrProjectNotFound
		}
		if err := put(txn, db.APIKeys.Key([]byte(prefix)), key); err != nil {
			return err
		}
		return txn.Set(db.ProjectAPIKeys.Key(projectID[:], []byte(prefix)), []byte{})
	})
	if err != nil {
		return "", nil, err
	}
	return prefix + apiKeySeparator + secret, key, nil
}

// ByAPIKey authenticates a plain api key and returns its project.
func (s *ProjectStore) ByAPIKey(plain string) (*core.Project, error) {
	prefix, secret, found := strings.Cut(plain, apiKeySeparator)
	if !found || prefix == "" || secret == "" {
		return nil, ErrUnauthorized
	}

	var project core.Project
	err := s.db.View(func(txn db.Transaction) error {
		var key core.APIKey
		if err := get(txn, db.APIKeys.Key([]byte(prefix)), &key, ErrUnauthorized); err != nil {
			return err
		}
		if subtle.ConstantTimeCompare(key.Hash, hashSecret(secret)) != 1 {
			return ErrUnauthorized
		}
		return get(txn, db.Projects.Key(key.ProjectID[:]), &project, ErrProjectNotFound)
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (s *ProjectStore) ListAPIKeys(projectID uuid.UUID) ([]*core.APIKey, error) {
	var apiKeys []*core.APIKey
	err := s.db.View(func(txn db.Transaction) error {
		prefixes, err := keys(txn, db.ProjectAPIKeys.Key(projectID[:]))
		if err != nil {
			return err
		}
		for _, prefix := range prefixes {
			var key core.APIKey
			if err := get(txn, db.APIKeys.Key(prefix), &key, ErrUnauthorized); err != nil {
				return fmt.Errorf("api key %s: %w", prefix, err)
			}
			apiKeys = append(apiKeys, &key)
		}
		return nil
	})
	return apiKeys, err
}

// DeleteAPIKey revokes the key with the given prefix.
func (s *ProjectStore) DeleteAPIKey(projectID uuid.UUID, prefix string) error {
	return s.db.Update(func(txn db.Transaction) error {
		var key core.APIKey
		if err := get(txn, db.APIKeys.Key([]byte(prefix)), &key, ErrUnauthorized); err != nil {
			return err
		}
		if key.ProjectID != projectID {
			return ErrUnauthorized
		}
		if err := txn.Delete(db.APIKeys.Key([]byte(prefix))); err != nil {
			return err
		}
		return txn.Delete(db.ProjectAPIKeys.Key(projectID[:], []byte(prefix)))
	})
}

func hashSecret(secret string) []byte {
	hash := sha3.Sum256([]byte(secret))
	return hash[:]
}

func randomHex(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}
