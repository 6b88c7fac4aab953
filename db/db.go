package db

import (
	"errors"
	"io"
)

// DB is a key-value store with transactional access.
type DB interface {
	io.Closer

	// NewTransaction returns a transaction on this db. Writable transactions are
	// serialised: only one can be open at a time.
	NewTransaction(update bool) (Transaction, error)
	// View runs fn in a read-only transaction and discards it afterwards.
	View(fn func(txn Transaction) error) error
	// Update runs fn in a writable transaction and commits it if fn returns nil.
	Update(fn func(txn Transaction) error) error

	// Impl returns the underlying database object
	Impl() any

	// WithListener registers an EventListener
	WithListener(listener EventListener) DB
}

// Transaction provides an interface to access the database's state at the point the
// transaction was created. Updates done to the database with a transaction are only
// visible to other transactions after Commit.
type Transaction interface {
	// Set updates the value of the given key
	Set(key, val []byte) error
	// Delete removes the key from the database
	Delete(key []byte) error
	// Get fetches the value for the given key and calls cb with it. ErrKeyNotFound is
	// returned when the key is missing.
	Get(key []byte, cb func([]byte) error) error
	// Has reports whether the key exists
	Has(key []byte) (bool, error)
	// NewIterator returns an iterator over the keys starting with prefix
	NewIterator(prefix []byte) (Iterator, error)

	// Discard discards all the changes done to the database with this transaction
	Discard() error
	// Commit flushes all the changes pending on this transaction to the database
	Commit() error

	// Impl returns the underlying transaction object
	Impl() any
}

// CloseAndWrapOnError calls closeFn and joins its error with *err.
func CloseAndWrapOnError(closeFn func() error, err *error) {
	if closeErr := closeFn(); closeErr != nil {
		*err = errors.Join(*err, closeErr)
	}
}

// RunAndWrapOnError runs fn and joins its error with err.
func RunAndWrapOnError(fn func() error, err error) error {
	if fnErr := fn(); fnErr != nil {
		return errors.Join(err, fnErr)
	}
	return err
}
