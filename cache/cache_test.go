package cache_test

import (
	"testing"

	"github.com/chainrequest/blockchain-api/cache"
	"github.com/chainrequest/blockchain-api/contract"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecoratorCache(t *testing.T) {
	c, err := cache.NewDecoratorCache(2)
	require.NoError(t, err)

	first := &contract.ContractDecorator{ID: "a"}
	c.Set(first)
	c.Set(&contract.ContractDecorator{ID: "b"})

	got, found := c.Get("a")
	require.True(t, found)
	assert.Same(t, first, got)

	c.Set(&contract.ContractDecorator{ID: "c"})
	_, found = c.Get("b")
	assert.False(t, found, "least recently used entry is evicted")

	c.Remove("a")
	_, found = c.Get("a")
	assert.False(t, found)

	c.OnInterfaceChanged("traits.ownable")
	_, found = c.Get("c")
	assert.False(t, found)

	_, err = cache.NewDecoratorCache(0)
	assert.Error(t, err)
}

func TestStatusCache(t *testing.T) {
	c, err := cache.NewStatusCache[string](4)
	require.NoError(t, err)

	id := uuid.New()
	_, found := c.Get(id)
	assert.False(t, found)

	c.Set(id, "SUCCESS")
	status, found := c.Get(id)
	require.True(t, found)
	assert.Equal(t, "SUCCESS", status)

	c.OnRequestUpdated(id)
	_, found = c.Get(id)
	assert.False(t, found)
}
