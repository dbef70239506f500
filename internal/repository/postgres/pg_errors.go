package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkachur/bookgo/internal/repository"
)

// Attempts at a transaction that keeps losing serialization or deadlock
// races before the error surfaces to the caller.
const txAttempts = 3

// withTxRetry reruns run while it fails with a retryable transaction error.
func withTxRetry(run func() error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		err = run()
		if err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}

func IsRetryable(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}

	return false
}

func isUniqueViolation(err error) bool {
	var pge *pgconn.PgError
	return errors.As(err, &pge) && pge.Code == "23505"
}

func translateDBErr(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}

	if isUniqueViolation(err) {
		return repository.ErrConflict
	}

	return err
}
