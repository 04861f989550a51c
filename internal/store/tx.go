package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// maxBusyRetries bounds how often a write is retried while the database is locked.
const maxBusyRetries = 3

// isBusy reports whether err is an SQLite BUSY or locked condition.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// runTx executes fn inside a transaction, retrying on BUSY with
// 100/200/300 ms backoff. fn may run more than once.
func runTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	var err error
	for i := range maxBusyRetries {
		err = runTxOnce(ctx, db, fn)
		if err == nil || !isBusy(err) || i == maxBusyRetries-1 {
			return err
		}
		if waitErr := sleepCtx(ctx, time.Duration(100*(i+1))*time.Millisecond); waitErr != nil {
			return fmt.Errorf("context cancelled while database was busy: %w", waitErr)
		}
	}
	return err
}

func runTxOnce(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
