package db

import "io"

// Iterator iterates over a database's key/value pairs in ascending order.
// It must be closed after use. A single iterator cannot be used concurrently.
type Iterator interface {
	io.Closer

	// Valid returns true if the iterator is positioned at a valid key/value pair.
	Valid() bool

	// Next moves the iterator to the next key/value pair. It returns whether the
	// iterator is valid after the call. Once invalid, the iterator remains
	// invalid.
	Next() bool

	// Key returns the key at the current position.
	Key() []byte

	// Value returns the value at the current position.
	Value() ([]byte, error)

	// Seek would seek to the provided key if present. If absent, it would seek to the next
	// key in lexicographical order
	Seek(key []byte) bool
}

// KeyValue is a single entry of a SliceIterator.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// SliceIterator iterates over entries already sorted by key.
type SliceIterator struct {
	entries []KeyValue
	index   int
}

var _ Iterator = (*SliceIterator)(nil)

func NewSliceIterator(entries []KeyValue) *SliceIterator {
	return &SliceIterator{entries: entries, index: -1}
}

func (i *SliceIterator) Valid() bool {
	return i.index >= 0 && i.index < len(i.entries)
}

func (i *SliceIterator) Next() bool {
	if i.index < len(i.entries) {
		i.index++
	}
	return i.Valid()
}

func (i *SliceIterator) Key() []byte {
	if !i.Valid() {
		return nil
	}
	return i.entries[i.index].Key
}

func (i *SliceIterator) Value() ([]byte, error) {
	if !i.Valid() {
		return nil, ErrKeyNotFound
	}
	return i.entries[i.index].Value, nil
}

func (i *SliceIterator) Seek(key []byte) bool {
	for j := range i.entries {
		if string(i.entries[j].Key) >= string(key) {
			i.index = j
			return true
		}
	}
	i.index = len(i.entries)
	return false
}

func (i *SliceIterator) Close() error {
	i.entries = nil
	i.index = -1
	return nil
}
