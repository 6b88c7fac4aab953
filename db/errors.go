package db

import "errors"

var (
	ErrKeyNotFound          = errors.New("key not found")
	ErrDiscardedTransaction = errors.New("discarded txn")
	ErrReadOnlyTransaction  = errors.New("read only transaction")
	ErrEmptyKey             = errors.New("empty key")
)
