// Package dbtest holds behaviour checks shared by every db.DB implementation.
package dbtest

import (
	"errors"
	"sync"
	"testing"

	"github.com/chainrequest/blockchain-api/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noop = func(val []byte) error {
	return nil
}

// Run checks the transactional behaviour of the databases returned by newDB. Every call
// to newDB must return a fresh, empty database.
func Run(t *testing.T, newDB func(t *testing.T) db.DB) {
	t.Run("transaction", func(t *testing.T) { testTransaction(t, newDB) })
	t.Run("view and update", func(t *testing.T) { testViewUpdate(t, newDB) })
	t.Run("concurrent update", func(t *testing.T) { testConcurrentUpdate(t, newDB(t)) })
	t.Run("prefix iteration", func(t *testing.T) { testPrefixIteration(t, newDB(t)) })
}

func testTransaction(t *testing.T, newDB func(t *testing.T) db.DB) {
	t.Run("new transaction can retrieve existing value", func(t *testing.T) {
		testDB := newDB(t)

		txn, err := testDB.NewTransaction(true)
		require.NoError(t, err)
		require.NoError(t, txn.Set([]byte("key"), []byte("value")))
		require.NoError(t, txn.Commit())

		readOnlyTxn, err := testDB.NewTransaction(false)
		require.NoError(t, err)
		assert.NoError(t, readOnlyTxn.Get([]byte("key"), func(val []byte) error {
			assert.Equal(t, "value", string(val))
			return nil
		}))
		has, err := readOnlyTxn.Has([]byte("key"))
		require.NoError(t, err)
		assert.True(t, has)
		require.NoError(t, readOnlyTxn.Discard())
	})

	t.Run("discarded transaction is not committed to DB", func(t *testing.T) {
		testDB := newDB(t)

		txn, err := testDB.NewTransaction(true)
		require.NoError(t, err)
		require.NoError(t, txn.Set([]byte("key"), []byte("value")))
		require.NoError(t, txn.Discard())

		readOnlyTxn, err := testDB.NewTransaction(false)
		require.NoError(t, err)
		assert.ErrorIs(t, readOnlyTxn.Get([]byte("key"), noop), db.ErrKeyNotFound)
		has, err := readOnlyTxn.Has([]byte("key"))
		require.NoError(t, err)
		assert.False(t, has)
		require.NoError(t, readOnlyTxn.Discard())
	})

	t.Run("discarded transaction cannot commit", func(t *testing.T) {
		testDB := newDB(t)

		txn, err := testDB.NewTransaction(true)
		require.NoError(t, err)
		require.NoError(t, txn.Set([]byte("key"), []byte("value")))
		require.NoError(t, txn.Discard())

		assert.Error(t, txn.Commit())
	})

	t.Run("read only transaction cannot write", func(t *testing.T) {
		testDB := newDB(t)

		txn, err := testDB.NewTransaction(false)
		require.NoError(t, err)
		assert.ErrorIs(t, txn.Set([]byte("key"), []byte("value")), db.ErrReadOnlyTransaction)
		assert.ErrorIs(t, txn.Delete([]byte("key")), db.ErrReadOnlyTransaction)
		require.NoError(t, txn.Discard())
	})

	t.Run("deleted key is not found", func(t *testing.T) {
		testDB := newDB(t)

		require.NoError(t, testDB.Update(func(txn db.Transaction) error {
			return txn.Set([]byte("key"), []byte("value"))
		}))
		require.NoError(t, testDB.Update(func(txn db.Transaction) error {
			return txn.Delete([]byte("key"))
		}))
		assert.ErrorIs(t, testDB.View(func(txn db.Transaction) error {
			return txn.Get([]byte("key"), noop)
		}), db.ErrKeyNotFound)
	})
}

func testViewUpdate(t *testing.T, newDB func(t *testing.T) db.DB) {
	t.Run("value after Update is committed to DB", func(t *testing.T) {
		testDB := newDB(t)

		require.ErrorIs(t, testDB.View(func(txn db.Transaction) error {
			return txn.Get([]byte("key"), noop)
		}), db.ErrKeyNotFound)

		require.NoError(t, testDB.Update(func(txn db.Transaction) error {
			return txn.Set([]byte("key"), []byte("value"))
		}))

		assert.NoError(t, testDB.View(func(txn db.Transaction) error {
			return txn.Get([]byte("key"), func(val []byte) error {
				assert.Equal(t, "value", string(val))
				return nil
			})
		}))
	})

	t.Run("Update error does not commit value to DB", func(t *testing.T) {
		testDB := newDB(t)
		errUpdate := errors.New("error")

		require.ErrorIs(t, testDB.Update(func(txn db.Transaction) error {
			require.NoError(t, txn.Set([]byte("key"), []byte("value")))
			return errUpdate
		}), errUpdate)

		assert.ErrorIs(t, testDB.View(func(txn db.Transaction) error {
			return txn.Get([]byte("key"), noop)
		}), db.ErrKeyNotFound)
	})

	t.Run("update reads its own writes", func(t *testing.T) {
		testDB := newDB(t)

		assert.NoError(t, testDB.Update(func(txn db.Transaction) error {
			require.NoError(t, txn.Set([]byte("key"), []byte{}))

			return txn.Get([]byte("key"), func(val []byte) error {
				assert.Empty(t, val)
				return nil
			})
		}))
	})

	t.Run("setting a key with a zero-length key should not be allowed", func(t *testing.T) {
		testDB := newDB(t)

		assert.ErrorIs(t, testDB.Update(func(txn db.Transaction) error {
			return txn.Set([]byte{}, []byte("value"))
		}), db.ErrEmptyKey)
	})
}

func testConcurrentUpdate(t *testing.T, testDB db.DB) {
	var wg sync.WaitGroup

	key := []byte{0}
	require.NoError(t, testDB.Update(func(txn db.Transaction) error {
		return txn.Set(key, []byte{0})
	}))
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				assert.NoError(t, testDB.Update(func(txn db.Transaction) error {
					var next byte
					err := txn.Get(key, func(bytes []byte) error {
						next = bytes[0] + 1
						return nil
					})
					if err != nil {
						return err
					}
					return txn.Set(key, []byte{next})
				}))
			}
		}()
	}

	wg.Wait()
	require.NoError(t, testDB.View(func(txn db.Transaction) error {
		return txn.Get(key, func(bytes []byte) error {
			assert.Equal(t, byte(100), bytes[0])
			return nil
		})
	}))
}

func testPrefixIteration(t *testing.T, testDB db.DB) {
	require.NoError(t, testDB.Update(func(txn db.Transaction) error {
		for _, key := range []string{"a1", "b1", "b3", "b2", "c1"} {
			if err := txn.Set([]byte(key), []byte("v"+key)); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, testDB.View(func(txn db.Transaction) error {
		iter, err := txn.NewIterator([]byte("b"))
		require.NoError(t, err)
		defer func() {
			require.NoError(t, iter.Close())
		}()

		var keys, values []string
		for iter.Next() {
			keys = append(keys, string(iter.Key()))
			value, err := iter.Value()
			require.NoError(t, err)
			values = append(values, string(value))
		}
		assert.Equal(t, []string{"b1", "b2", "b3"}, keys)
		assert.Equal(t, []string{"vb1", "vb2", "vb3"}, values)
		return nil
	}))

	require.NoError(t, testDB.View(func(txn db.Transaction) error {
		iter, err := txn.NewIterator([]byte("b"))
		require.NoError(t, err)
		defer func() {
			require.NoError(t, iter.Close())
		}()

		require.True(t, iter.Seek([]byte("b2")))
		assert.Equal(t, []byte("b2"), iter.Key())
		assert.False(t, iter.Seek([]byte("b4")))
		return nil
	}))
}
