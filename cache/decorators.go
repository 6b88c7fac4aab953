package cache

import (
	"github.com/chainrequest/blockchain-api/contract"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DecoratorCache keeps resolved contract decorators. Resolved decorators are never
// mutated, so cached values are shared between callers.
type DecoratorCache struct {
	lru *lru.Cache[contract.ID, *contract.ContractDecorator]
}

func NewDecoratorCache(size int) (*DecoratorCache, error) {
	c, err := lru.New[contract.ID, *contract.ContractDecorator](size)
	if err != nil {
		return nil, err
	}
	return &DecoratorCache{lru: c}, nil
}

func (c *DecoratorCache) Get(id contract.ID) (*contract.ContractDecorator, bool) {
	return c.lru.Get(id)
}

func (c *DecoratorCache) Set(decorator *contract.ContractDecorator) {
	c.lru.Add(decorator.ID, decorator)
}

func (c *DecoratorCache) Remove(id contract.ID) {
	c.lru.Remove(id)
}

// OnInterfaceChanged drops every decorator, since any of them may implement the
// changed interface.
func (c *DecoratorCache) OnInterfaceChanged(contract.InterfaceID) {
	c.lru.Purge()
}
