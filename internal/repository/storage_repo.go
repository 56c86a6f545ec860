package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"pottytracker/internal/database"
	"pottytracker/internal/logging"
)

// Storage keys. Each one holds a single JSON document.
const (
	KeySession  = "potty_tracker_session"
	KeyAccounts = "potty_tracker_accounts"
	KeyChildren = "potty_tracker_children"
	KeyEvents   = "potty_tracker_events"
	KeyInvites  = "potty_tracker_invites"
)

// StorageKeys lists every key the application owns
var StorageKeys = []string{KeySession, KeyAccounts, KeyChildren, KeyEvents, KeyInvites}

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

// StorageRepository is the local key-value store every other repository builds on.
// Writes to one key are serialized: in process by a per-key mutex and across
// processes by the enclosing transaction.
type StorageRepository struct {
	db     *database.DB
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStorageRepository(db *database.DB, logger *zap.Logger) *StorageRepository {
	return &StorageRepository{
		db:     db,
		logger: logging.OrNop(logger),
		locks:  make(map[string]*sync.Mutex),
	}
}

func (r *StorageRepository) keyLock(key string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locks[key]
	if !ok {
		l = &sync.Mutex{}
		r.locks[key] = l
	}
	return l
}

// GetRaw returns the stored text for key, and false when the key is absent
func (r *StorageRepository) GetRaw(ctx context.Context, key string) (string, bool, error) {
	return getRaw(ctx, r.db, key, "")
}

// SetRaw stores value under key, replacing any previous value
func (r *StorageRepository) SetRaw(ctx context.Context, key, value string) error {
	l := r.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if _, err := r.db.ExecContext(ctx, r.db.Dialect.UpsertStorageQuery(), key, value); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (r *StorageRepository) Remove(ctx context.Context, key string) error {
	l := r.keyLock(key)
	l.Lock()
	defer l.Unlock()

	if _, err := r.db.ExecContext(ctx, "DELETE FROM local_storage WHERE storage_key = ?", key); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

// Entries returns every stored key and its raw value
func (r *StorageRepository) Entries(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT storage_key, storage_value FROM local_storage")
	if err != nil {
		return nil, fmt.Errorf("failed to list storage: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan storage row: %w", err)
		}
		entries[key] = value
	}
	return entries, rows.Err()
}

// Replace overwrites the given keys in one transaction. Keys not in entries are left alone.
func (r *StorageRepository) Replace(ctx context.Context, entries map[string]string) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Lock in sorted order so concurrent Replace calls cannot deadlock.
	for _, k := range keys {
		l := r.keyLock(k)
		l.Lock()
		defer l.Unlock()
	}

	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, tx.GetDialect().UpsertStorageQuery(), k, entries[k]); err != nil {
				return fmt.Errorf("failed to restore %s: %w", k, err)
			}
		}
		return nil
	})
}

func getRaw(ctx context.Context, q database.DBTX, key, suffix string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, "SELECT storage_value FROM local_storage WHERE storage_key = ?"+suffix, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

// decode parses a stored document. Unreadable documents read as the zero value.
func decode[T any](logger *zap.Logger, key, raw string, ok bool) T {
	var v T
	if !ok || raw == "" {
		return v
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		logger.Warn("discarding unreadable stored document",
			zap.String("key", key),
			zap.Error(err),
		)
		var zero T
		return zero
	}
	return v
}

// readJSON loads the document at key
func readJSON[T any](ctx context.Context, r *StorageRepository, key string) (T, error) {
	raw, ok, err := getRaw(ctx, r.db, key, "")
	if err != nil {
		var zero T
		return zero, err
	}
	return decode[T](r.logger, key, raw, ok), nil
}

// updateJSON runs a read-modify-write cycle on the document at key.
// When fn returns an error nothing is written and the error is returned as is.
func updateJSON[T any](ctx context.Context, r *StorageRepository, key string, fn func(v *T) error) error {
	l := r.keyLock(key)
	l.Lock()
	defer l.Unlock()

	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		// Another process may be writing the same key; make sure there is a row to lock.
		if _, err := tx.ExecContext(ctx, tx.GetDialect().EnsureStorageRowQuery(), key); err != nil {
			return fmt.Errorf("failed to prepare %s: %w", key, err)
		}
		raw, ok, err := getRaw(ctx, tx, key, tx.GetDialect().LockingReadSuffix())
		if err != nil {
			return err
		}

		v := decode[T](r.logger, key, raw, ok)
		if err := fn(&v); err != nil {
			return err
		}

		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, tx.GetDialect().UpsertStorageQuery(), key, string(data)); err != nil {
			return fmt.Errorf("failed to store %s: %w", key, err)
		}
		return nil
	})
}
