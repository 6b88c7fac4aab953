package cache

import (
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// StatusCache remembers request statuses which can no longer change.
type StatusCache[T any] struct {
	lru *lru.Cache[uuid.UUID, T]
}

func NewStatusCache[T any](size int) (*StatusCache[T], error) {
	c, err := lru.New[uuid.UUID, T](size)
	if err != nil {
		return nil, err
	}
	return &StatusCache[T]{lru: c}, nil
}

func (c *StatusCache[T]) Get(id uuid.UUID) (T, bool) {
	return c.lru.Get(id)
}

func (c *StatusCache[T]) Set(id uuid.UUID, data T) {
	c.lru.Add(id, data)
}

// OnRequestUpdated drops the cached status of an updated request.
func (c *StatusCache[T]) OnRequestUpdated(id uuid.UUID) {
	c.lru.Remove(id)
}
