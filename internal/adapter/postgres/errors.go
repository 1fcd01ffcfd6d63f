package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/heartmarshall/cityguide-bot/internal/domain"
)

// StoreName identifies the authoritative store in errors and logs.
const StoreName = "authoritative"

// MapError converts pgx/pgconn errors to domain errors.
// context.DeadlineExceeded and context.Canceled are NOT mapped; they pass
// through. Connection-level failures become a StoreUnavailableError.
func MapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
		if isConnectionClass(pgErr.Code) {
			return fmt.Errorf("%s %s: %w", entity, id, domain.Unavailable(StoreName, err))
		}
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if isUnreachable(err) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.Unavailable(StoreName, err))
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}

func isUnreachable(err error) bool {
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.Timeout(err) || pgconn.SafeToRetry(err)
}

// isConnectionClass covers SQLSTATE class 08 (connection exception) and
// 57P0x (server shutting down).
func isConnectionClass(code string) bool {
	return len(code) == 5 && (code[:2] == "08" || code[:4] == "57P0")
}
