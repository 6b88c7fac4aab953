package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chainrequest/blockchain-api/db"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultTable   = "kv"
	defaultTimeout = 10 * time.Second
	// writersLockID is the advisory lock taken by every writable transaction so that
	// writers are serialised across all processes sharing the table.
	writersLockID = 0x6b76
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	URL      string        `mapstructure:"url"`
	MaxConns int32         `mapstructure:"max-conns"`
	MinConns int32         `mapstructure:"min-conns"`
	Table    string        `mapstructure:"table"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

var _ db.DB = (*DB)(nil)

// DB stores every key in a single two column table.
type DB struct {
	pool     *pgxpool.Pool
	table    string
	timeout  time.Duration
	wMutex   sync.Mutex
	listener db.EventListener
}

// New connects to PostgreSQL and creates the key-value table if it does not exist.
func New(ctx context.Context, cfg Config) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse pg config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pg pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping pg: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = defaultTable
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	d := &DB{
		pool:     pool,
		table:    pgx.Identifier{table}.Sanitize(),
		timeout:  timeout,
		listener: &db.SelectiveListener{},
	}
	if err := d.createTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) createTable(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key   BYTEA PRIMARY KEY,
			value BYTEA NOT NULL
		)`, d.table))
	if err != nil {
		return fmt.Errorf("create %s table: %w", d.table, err)
	}
	return nil
}

// DropTable removes the key-value table. It is meant for tests.
func (d *DB) DropTable(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, d.table))
	return err
}

// NewTransaction : see db.DB.NewTransaction
func (d *DB) NewTransaction(update bool) (db.Transaction, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	if update {
		opts = pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite}
		d.wMutex.Lock()
	}

	tx, err := d.pool.BeginTx(ctx, opts)
	if err != nil {
		if update {
			d.wMutex.Unlock()
		}
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	txn := &transaction{db: d, tx: tx, update: update}
	if update {
		txn.lock = &d.wMutex
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, writersLockID); err != nil {
			return nil, db.RunAndWrapOnError(txn.Discard, fmt.Errorf("lock writers: %w", err))
		}
	}
	return txn, nil
}

// View : see db.DB.View
func (d *DB) View(fn func(txn db.Transaction) error) error {
	txn, err := d.NewTransaction(false)
	if err != nil {
		return err
	}
	return db.RunAndWrapOnError(txn.Discard, fn(txn))
}

// Update : see db.DB.Update
func (d *DB) Update(fn func(txn db.Transaction) error) error {
	txn, err := d.NewTransaction(true)
	if err != nil {
		return err
	}
	if err := fn(txn); err != nil {
		return db.RunAndWrapOnError(txn.Discard, err)
	}
	return db.RunAndWrapOnError(txn.Discard, txn.Commit())
}

// Close closes the connection pool.
func (d *DB) Close() error {
	d.pool.Close()
	return nil
}

// Impl returns the underlying pgxpool.Pool.
func (d *DB) Impl() any {
	return d.pool
}

// WithListener registers an EventListener
func (d *DB) WithListener(listener db.EventListener) db.DB {
	d.listener = listener
	return d
}

var _ db.Transaction = (*transaction)(nil)

type transaction struct {
	db     *DB
	tx     pgx.Tx
	update bool
	lock   *sync.Mutex
}

func (t *transaction) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), t.db.timeout)
}

func (t *transaction) Set(key, val []byte) error {
	if t.tx == nil {
		return db.ErrDiscardedTransaction
	} else if !t.update {
		return db.ErrReadOnlyTransaction
	} else if len(key) == 0 {
		return db.ErrEmptyKey
	}
	if val == nil {
		val = []byte{}
	}

	ctx, cancel := t.context()
	defer cancel()
	start := time.Now()
	defer func() { t.db.listener.OnIO(true, time.Since(start)) }()

	_, err := t.tx.Exec(ctx, fmt.Sprintf(`
		INSERT INTO %s (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, t.db.table), key, val)
	return err
}

func (t *transaction) Delete(key []byte) error {
	if t.tx == nil {
		return db.ErrDiscardedTransaction
	} else if !t.update {
		return db.ErrReadOnlyTransaction
	}

	ctx, cancel := t.context()
	defer cancel()
	start := time.Now()
	defer func() { t.db.listener.OnIO(true, time.Since(start)) }()

	_, err := t.tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, t.db.table), key)
	return err
}

func (t *transaction) Get(key []byte, cb func([]byte) error) error {
	if t.tx == nil {
		return db.ErrDiscardedTransaction
	}

	ctx, cancel := t.context()
	defer cancel()
	start := time.Now()

	var val []byte
	err := t.tx.QueryRow(ctx, fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, t.db.table), key).Scan(&val)
	t.db.listener.OnIO(false, time.Since(start))
	if errors.Is(err, pgx.ErrNoRows) {
		return db.ErrKeyNotFound
	} else if err != nil {
		return err
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
	if t.tx == nil {
		return nil, db.ErrDiscardedTransaction
	}

	ctx, cancel := t.context()
	defer cancel()

	var (
		rows pgx.Rows
		err  error
	)
	if upper := db.UpperBound(prefix); upper != nil {
		rows, err = t.tx.Query(ctx, fmt.Sprintf(
			`SELECT key, value FROM %s WHERE key >= $1 AND key < $2 ORDER BY key`, t.db.table), prefix, upper)
	} else {
		rows, err = t.tx.Query(ctx, fmt.Sprintf(
			`SELECT key, value FROM %s WHERE key >= $1 ORDER BY key`, t.db.table), prefix)
	}
	if err != nil {
		return nil, err
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.KeyValue, error) {
		var entry db.KeyValue
		err := row.Scan(&entry.Key, &entry.Value)
		return entry, err
	})
	if err != nil {
		return nil, err
	}
	return db.NewSliceIterator(entries), nil
}

func (t *transaction) Commit() (err error) {
	defer db.CloseAndWrapOnError(t.Discard, &err)
	if t.tx == nil {
		return db.ErrDiscardedTransaction
	}

	ctx, cancel := t.context()
	defer cancel()
	start := time.Now()
	defer func() { t.db.listener.OnCommit(time.Since(start)) }()

	return t.tx.Commit(ctx)
}

func (t *transaction) Discard() error {
	if t.tx == nil {
		return nil
	}

	ctx, cancel := t.context()
	defer cancel()

	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		err = nil
	}
	t.tx = nil
	if t.lock != nil {
		t.lock.Unlock()
		t.lock = nil
	}
	return err
}

func (t *transaction) Impl() any {
	return t.tx
}
