package memory_test

import (
	"testing"

	"github.com/chainrequest/blockchain-api/db"
	"github.com/chainrequest/blockchain-api/db/dbtest"
	"github.com/chainrequest/blockchain-api/db/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB(t *testing.T) {
	dbtest.Run(t, func(t *testing.T) db.DB {
		testDB := memory.New()
		t.Cleanup(func() {
			require.NoError(t, testDB.Close())
		})
		return testDB
	})
}

func TestIteratorSeesPendingWrites(t *testing.T) {
	testDB := memory.New()
	require.NoError(t, testDB.Update(func(txn db.Transaction) error {
		require.NoError(t, txn.Set([]byte("k1"), []byte("old")))
		return txn.Set([]byte("k2"), []byte("gone"))
	}))

	require.NoError(t, testDB.Update(func(txn db.Transaction) error {
		require.NoError(t, txn.Set([]byte("k1"), []byte("new")))
		require.NoError(t, txn.Set([]byte("k3"), []byte("added")))
		require.NoError(t, txn.Delete([]byte("k2")))

		iter, err := txn.NewIterator([]byte("k"))
		require.NoError(t, err)
		defer iter.Close()

		var keys []string
		for iter.Next() {
			keys = append(keys, string(iter.Key()))
		}
		assert.Equal(t, []string{"k1", "k3"}, keys)
		return nil
	}))
}

func TestClosed(t *testing.T) {
	testDB := memory.New()
	require.NoError(t, testDB.Close())

	_, err := testDB.NewTransaction(true)
	assert.Error(t, err)
	assert.Error(t, testDB.View(func(db.Transaction) error { return nil }))
}
