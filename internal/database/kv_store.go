package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/example/wordmemo/internal/logger"
)

const defaultTimeout = 5 * time.Second

// KVStore keeps session snapshots as rows keyed by name
type KVStore struct {
	db      *sqlx.DB
	log     *logger.Logger
	timeout time.Duration
}

// NewKVStore creates a snapshot store on db
func NewKVStore(db *sqlx.DB, log *logger.Logger) *KVStore {
	if log == nil {
		log = logger.Nop()
	}
	return &KVStore{db: db, log: log, timeout: defaultTimeout}
}

// Load returns the snapshot stored under key. Read failures are logged and
// reported as a missing key.
func (s *KVStore) Load(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	value, err := s.Get(ctx, key)
	if err == sql.ErrNoRows {
		return "", false
	}
	if err != nil {
		s.log.Warn("Failed to read snapshot", "key", key, "error", err)
		return "", false
	}
	return value, true
}

// Save implements session.Storage
func (s *KVStore) Save(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.Put(ctx, key, value)
}

// Get reads the snapshot under key. A missing key returns sql.ErrNoRows unwrapped.
func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	query := s.db.Rebind(`SELECT snapshot_value FROM snapshots WHERE snapshot_key = ?`)
	var value string
	err := s.db.GetContext(ctx, &value, query, key)
	if err == sql.ErrNoRows {
		return "", err
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to get snapshot %s", key)
	}
	return value, nil
}

// Put inserts or replaces the snapshot under key
func (s *KVStore) Put(ctx context.Context, key, value string) error {
	query := s.db.Rebind(`
		INSERT INTO snapshots (snapshot_key, snapshot_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (snapshot_key) DO UPDATE SET
			snapshot_value = excluded.snapshot_value,
			updated_at = excluded.updated_at
	`)
	if _, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return errors.Wrapf(err, "failed to save snapshot %s", key)
	}
	return nil
}

// Delete removes the snapshot under key
func (s *KVStore) Delete(ctx context.Context, key string) error {
	query := s.db.Rebind(`DELETE FROM snapshots WHERE snapshot_key = ?`)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return errors.Wrapf(err, "failed to delete snapshot %s", key)
	}
	return nil
}

// Keys lists every stored snapshot key in order
func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	if err := s.db.SelectContext(ctx, &keys, `SELECT snapshot_key FROM snapshots ORDER BY snapshot_key`); err != nil {
		return nil, errors.Wrap(err, "failed to list snapshots")
	}
	return keys, nil
}
