package encoder_test

import (
	"testing"
	"time"

	"github.com/chainrequest/blockchain-api/encoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID        string
	Amount    uint64
	Tags      []string
	CreatedAt time.Time
	Attrs     map[string]any
}

func TestSymmetry(t *testing.T) {
	value := record{
		ID:        "b3b0a6e4-2d8e-4c0e-9a38-9f1f3f8b2f11",
		Amount:    42,
		Tags:      []string{"a", "b"},
		CreatedAt: time.Date(2024, 5, 1, 12, 30, 0, 500, time.UTC),
		Attrs:     map[string]any{"nested": map[string]any{"key": "value"}},
	}

	b, err := encoder.Marshal(value)
	require.NoError(t, err)

	var decoded record
	require.NoError(t, encoder.Unmarshal(b, &decoded))
	assert.Equal(t, value.ID, decoded.ID)
	assert.Equal(t, value.Amount, decoded.Amount)
	assert.Equal(t, value.Tags, decoded.Tags)
	assert.True(t, value.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, value.Attrs, decoded.Attrs)
}

func TestCanonical(t *testing.T) {
	first, err := encoder.Marshal(map[string]int{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	second, err := encoder.Marshal(map[string]int{"c": 3, "a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
