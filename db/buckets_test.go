package db_test

import (
	"context"
	"testing"

	"github.com/chainrequest/blockchain-api/db"
	"github.com/chainrequest/blockchain-api/db/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	t.Run("bucket with no key", func(t *testing.T) {
		key := db.Requests.Key()
		assert.Equal(t, []byte{byte(db.Requests)}, key)
	})
	t.Run("bucket with nil key", func(t *testing.T) {
		key := db.Requests.Key(nil)
		assert.Equal(t, []byte{byte(db.Requests)}, key)
	})
	t.Run("bucket with multiple keys", func(t *testing.T) {
		key := db.ProjectRequests.Key([]byte("project"), []byte{0}, []byte("request"))
		expected := append([]byte{byte(db.ProjectRequests)}, []byte("project\x00request")...)
		assert.Equal(t, expected, key)
	})
}

func TestUpperBound(t *testing.T) {
	tests := map[string]struct {
		prefix []byte
		want   []byte
	}{
		"simple":        {prefix: []byte{1, 2}, want: []byte{1, 3}},
		"carry":         {prefix: []byte{1, 0xff}, want: []byte{2}},
		"all max bytes": {prefix: []byte{0xff, 0xff}, want: nil},
		"empty":         {prefix: nil, want: nil},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, db.UpperBound(test.prefix))
		})
	}
}

func TestSliceIterator(t *testing.T) {
	it := db.NewSliceIterator([]db.KeyValue{
		{Key: []byte("a"), Value: []byte("1")},
		{Key: []byte("c"), Value: []byte("3")},
	})
	assert.False(t, it.Valid())

	assert.True(t, it.Next())
	assert.Equal(t, []byte("a"), it.Key())

	assert.True(t, it.Seek([]byte("b")))
	assert.Equal(t, []byte("c"), it.Key())
	value, err := it.Value()
	assert.NoError(t, err)
	assert.Equal(t, []byte("3"), value)

	assert.False(t, it.Next())
	assert.False(t, it.Next())
	assert.Nil(t, it.Key())
	assert.NoError(t, it.Close())
}

func TestBucketNames(t *testing.T) {
	assert.Len(t, db.BucketValues(), int(db.SchemaVersion)+1)
	assert.Equal(t, "ContractDecorators", db.ContractDecorators.String())
	assert.Equal(t, "Bucket(200)", db.Bucket(200).String())
}

func TestSizeOf(t *testing.T) {
	database := memory.New()
	require.NoError(t, database.Update(func(txn db.Transaction) error {
		require.NoError(t, txn.Set(db.Requests.Key([]byte("a")), []byte("123")))
		require.NoError(t, txn.Set(db.Requests.Key([]byte("b")), []byte("4")))
		return txn.Set(db.Projects.Key([]byte("p")), []byte("5"))
	}))

	size, err := db.SizeOf(context.Background(), database, db.Requests)
	require.NoError(t, err)
	assert.Equal(t, db.BucketSize{Count: 2, Size: 8}, size)

	size, err = db.SizeOf(context.Background(), database, db.Interfaces)
	require.NoError(t, err)
	assert.Zero(t, size)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = db.SizeOf(ctx, database, db.Requests)
	assert.ErrorIs(t, err, context.Canceled)
}
