package memory

import (
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chainrequest/blockchain-api/db"
)

var errDBClosed = errors.New("memory database closed")

var _ db.DB = (*Database)(nil)

// Database is an in-memory key-value store.
// It is thread-safe.
type Database struct {
	db       map[string][]byte
	lock     sync.RWMutex
	wMutex   sync.Mutex
	listener db.EventListener
}

func New() *Database {
	return &Database{
		db:       make(map[string][]byte),
		listener: &db.SelectiveListener{},
	}
}

func (d *Database) NewTransaction(update bool) (db.Transaction, error) {
	if update {
		d.wMutex.Lock()
		if d.closed() {
			d.wMutex.Unlock()
			return nil, errDBClosed
		}
		return &transaction{db: d, writes: make(map[string]write), locked: true}, nil
	}

	snapshot, err := d.copy()
	if err != nil {
		return nil, err
	}
	return &transaction{db: snapshot}, nil
}

func (d *Database) View(fn func(txn db.Transaction) error) error {
	txn, err := d.NewTransaction(false)
	if err != nil {
		return err
	}
	return db.RunAndWrapOnError(txn.Discard, fn(txn))
}

func (d *Database) Update(fn func(txn db.Transaction) error) error {
	txn, err := d.NewTransaction(true)
	if err != nil {
		return err
	}
	if err := fn(txn); err != nil {
		return db.RunAndWrapOnError(txn.Discard, err)
	}
	return db.RunAndWrapOnError(txn.Discard, txn.Commit())
}

func (d *Database) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.db = nil
	return nil
}

func (d *Database) Impl() any {
	return d.db
}

func (d *Database) WithListener(listener db.EventListener) db.DB {
	d.listener = listener
	return d
}

func (d *Database) closed() bool {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.db == nil
}

// copy returns a deep copy of the key-value store
func (d *Database) copy() (*Database, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.db == nil {
		return nil, errDBClosed
	}

	cp := &Database{
		db:       make(map[string][]byte, len(d.db)),
		listener: d.listener,
	}
	for k, v := range d.db {
		cp.db[k] = slices.Clone(v)
	}
	return cp, nil
}

func (d *Database) get(key string) ([]byte, bool, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.db == nil {
		return nil, false, errDBClosed
	}
	val, ok := d.db[key]
	return val, ok, nil
}

func (d *Database) entries(prefix string) ([]db.KeyValue, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.db == nil {
		return nil, errDBClosed
	}

	keys := make([]string, 0, len(d.db))
	for k := range d.db {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	entries := make([]db.KeyValue, len(keys))
	for i, k := range keys {
		entries[i] = db.KeyValue{Key: []byte(k), Value: slices.Clone(d.db[k])}
	}
	return entries, nil
}

var _ db.Transaction = (*transaction)(nil)

type write struct {
	value  []byte
	delete bool
}

type transaction struct {
	db     *Database
	writes map[string]write
	order  []string
	locked bool
	done   bool
}

func (t *transaction) Set(key, val []byte) error {
	if t.done {
		return db.ErrDiscardedTransaction
	} else if !t.locked {
		return db.ErrReadOnlyTransaction
	} else if len(key) == 0 {
		return db.ErrEmptyKey
	}
	defer t.db.listener.OnIO(true, 0)

	t.record(string(key), write{value: slices.Clone(val)})
	return nil
}

func (t *transaction) Delete(key []byte) error {
	if t.done {
		return db.ErrDiscardedTransaction
	} else if !t.locked {
		return db.ErrReadOnlyTransaction
	}
	defer t.db.listener.OnIO(true, 0)

	t.record(string(key), write{delete: true})
	return nil
}

func (t *transaction) record(key string, w write) {
	if _, ok := t.writes[key]; !ok {
		t.order = append(t.order, key)
	}
	t.writes[key] = w
}

func (t *transaction) Get(key []byte, cb func([]byte) error) error {
	if t.done {
		return db.ErrDiscardedTransaction
	}
	start := time.Now()
	defer func() { t.db.listener.OnIO(false, time.Since(start)) }()

	if w, ok := t.writes[string(key)]; ok {
		if w.delete {
			return db.ErrKeyNotFound
		}
		return cb(w.value)
	}

	val, ok, err := t.db.get(string(key))
	if err != nil {
		return err
	} else if !ok {
		return db.ErrKeyNotFound
	}
	return cb(val)
}

func (t *transaction) Has(key []byte) (bool, error) {
	err := t.Get(key, func([]byte) error { return nil })
	if errors.Is(err, db.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (t *transaction) NewIterator(prefix []byte) (db.Iterator, error) {
	if t.done {
		return nil, db.ErrDiscardedTransaction
	}

	entries, err := t.db.entries(string(prefix))
	if err != nil {
		return nil, err
	}
	if len(t.writes) == 0 {
		return db.NewSliceIterator(entries), nil
	}

	merged := make(map[string][]byte, len(entries)+len(t.writes))
	for _, entry := range entries {
		merged[string(entry.Key)] = entry.Value
	}
	for key, w := range t.writes {
		if !strings.HasPrefix(key, string(prefix)) {
			continue
		}
		if w.delete {
			delete(merged, key)
		} else {
			merged[key] = slices.Clone(w.value)
		}
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries = make([]db.KeyValue, len(keys))
	for i, key := range keys {
		entries[i] = db.KeyValue{Key: []byte(key), Value: merged[key]}
	}
	return db.NewSliceIterator(entries), nil
}

func (t *transaction) Commit() (err error) {
	defer db.CloseAndWrapOnError(t.Discard, &err)
	if t.done || !t.locked {
		return db.ErrDiscardedTransaction
	}

	start := time.Now()
	defer func() { t.db.listener.OnCommit(time.Since(start)) }()

	t.db.lock.Lock()
	defer t.db.lock.Unlock()

	if t.db.db == nil {
		return errDBClosed
	}
	for _, key := range t.order {
		w := t.writes[key]
		if w.delete {
			delete(t.db.db, key)
		} else {
			t.db.db[key] = w.value
		}
	}
	return nil
}

func (t *transaction) Discard() error {
	if t.done {
		return nil
	}
	t.done = true
	t.writes = nil
	t.order = nil
	if t.locked {
		t.db.wMutex.Unlock()
	}
	return nil
}

func (t *transaction) Impl() any {
	return t.writes
}
