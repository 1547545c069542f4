package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// tableLocker is a lock.Locker backed by forum.resource_locks. A row whose
// expires_at has passed is free to be taken over.
type tableLocker struct {
	db *sql.DB
}

func NewLocker(db *sql.DB) *tableLocker {
	return &tableLocker{db: db}
}

func (tl *tableLocker) Acquire(p context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	var granted string
	err := tl.db.QueryRowContext(p, `INSERT INTO forum.resource_locks (lock_key, token, expires_at)
		VALUES ($1, $2, now() + $3 * interval '1 millisecond')
		ON CONFLICT (lock_key) DO UPDATE
			SET token = EXCLUDED.token, expires_at = EXCLUDED.expires_at
			WHERE forum.resource_locks.expires_at <= now()
		RETURNING token`, key, token, ttl.Milliseconds()).Scan(&granted)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("postgres.Acquire: %v", err)
	}
	return granted, granted == token, nil
}

func (tl *tableLocker) Release(p context.Context, key string, token string) error {
	_, err := tl.db.ExecContext(p,
		"DELETE FROM forum.resource_locks WHERE lock_key = $1 AND token = $2", key, token)
	if err != nil {
		return fmt.Errorf("postgres.Release: %v", err)
	}
	return nil
}
