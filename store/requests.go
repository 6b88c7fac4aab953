package store

import (
	"fmt"
	"time"

	"github.com/chainrequest/blockchain-api/core"
	"github.com/chainrequest/blockchain-api/db"
	"github.com/google/uuid"
)

// RequestStore persists one kind of request. Request ids are time ordered, so listing
// a project's requests yields them in creation order.
type RequestStore[T core.Request] struct {
	db   db.DB
	kind core.RequestKind
}

func NewRequestStore[T core.Request](database db.DB) *RequestStore[T] {
	var zero T
	return &RequestStore[T]{db: database, kind: zero.Kind()}
}

func (s *RequestStore[T]) Kind() core.RequestKind {
	return s.kind
}

func (s *RequestStore[T]) requestKey(id uuid.UUID) []byte {
	return db.Requests.Key([]byte(s.kind), []byte{0}, id[:])
}

func (s *RequestStore[T]) projectPrefix(projectID uuid.UUID) []byte {
	return db.ProjectRequests.Key(projectID[:], []byte(s.kind), []byte{0})
}

// NewRequestID returns a time ordered request id.
func NewRequestID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate request id: %w", err)
	}
	return id, nil
}

// Create stores the request, assigning an id unless one was already chosen, and the
// creation time.
func (s *RequestStore[T]) Create(request T) error {
	base := request.Base()
	if base.ID == uuid.Nil {
		id, err := NewRequestID()
		if err != nil {
			return err
		}
		base.ID = id
	}
	base.CreatedAt = time.Now().UTC()
	id := base.ID

	return s.db.Update(func(txn db.Transaction) error {
		if err := put(txn, s.requestKey(id), request); err != nil {
			return err
		}
		return txn.Set(append(s.projectPrefix(base.ProjectID), id[:]...), []byte{})
	})
}

func (s *RequestStore[T]) ByID(id uuid.UUID) (T, error) {
	var request T
	err := s.db.View(func(txn db.Transaction) error {
		return get(txn, s.requestKey(id), &request, ErrRequestNotFound)
	})
	return request, err
}

func (s *RequestStore[T]) ListByProject(projectID uuid.UUID) ([]T, error) {
	var requests []T
	err := s.db.View(func(txn db.Transaction) error {
		ids, err := keys(txn, s.projectPrefix(projectID))
		if err != nil {
			return err
		}
		for _, id := range ids {
			var request T
			if err := get(txn, db.Requests.Key([]byte(s.kind), []byte{0}, id), &request, ErrRequestNotFound); err != nil {
				return err
			}
			requests = append(requests, request)
		}
		return nil
	})
	return requests, err
}

// Update applies fn to the stored request and saves the result atomically. fn
// returns ErrAlreadyAttached to refuse a second attachment.
func (s *RequestStore[T]) Update(id uuid.UUID, fn func(request T) error) (T, error) {
	var request T
	err := s.db.Update(func(txn db.Transaction) error {
		if err := get(txn, s.requestKey(id), &request, ErrRequestNotFound); err != nil {
			return err
		}
		if err := fn(request); err != nil {
			return err
		}
		return put(txn, s.requestKey(id), request)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return request, nil
}
