package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/domain/numbering"
	"fakturo/pkg/logger"
)

// Compile-time check.
var _ numbering.Counter = (*SequenceCounter)(nil)

// maxSequenceRetries bounds retries on serialization/unique conflicts
// before surfacing a sequence conflict to the caller.
const maxSequenceRetries = 3

// SequenceCounter issues gapless per-scope counter values backed by the
// sequence_counters table. The increment is a single atomic upsert, so
// two transactions competing for the same scope serialize on the row
// lock and each receive a distinct value.
type SequenceCounter struct {
	txManager *TxManager
}

// NewSequenceCounter creates the counter backed by the given manager.
func NewSequenceCounter(txManager *TxManager) *SequenceCounter {
	return &SequenceCounter{txManager: txManager}
}

// Next atomically increments and returns the counter for the given
// scheme/scope/partner scope. Must run inside the document transaction
// so the reserved value rolls back with a failed issuance.
func (c *SequenceCounter) Next(ctx context.Context, schemeKey, scopeKey string, partnerID *id.ID) (int64, error) {
	const sql = `
		INSERT INTO sequence_counters (scheme_key, scope_key, partner_id, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (scheme_key, scope_key, partner_id)
		DO UPDATE SET last_value = sequence_counters.last_value + 1
		RETURNING last_value
	`

	// partner_id participates in the unique key, NULL never equals NULL,
	// so scopes without a partner use the nil UUID sentinel.
	scopePartner := id.Nil()
	if partnerID != nil {
		scopePartner = *partnerID
	}

	// Each attempt runs under its own savepoint. A failed upsert aborts
	// the enclosing transaction; rolling back to the savepoint clears
	// the aborted state so the next attempt can actually execute.
	opts := DefaultTxOptions()
	opts.UseSavepoint = true

	var value int64
	var lastErr error
	for attempt := 0; attempt < maxSequenceRetries; attempt++ {
		err := c.txManager.RunInTransactionWithOptions(ctx, opts, func(ctx context.Context) error {
			querier := c.txManager.GetQuerier(ctx)
			return querier.QueryRow(ctx, sql, schemeKey, scopeKey, scopePartner).Scan(&value)
		})
		if err == nil {
			return value, nil
		}
		lastErr = err

		if !isRetryableSequenceError(err) {
			return 0, fmt.Errorf("next sequence value: %w", err)
		}
		logger.Warn(ctx, "sequence increment conflict, retrying",
			"scheme_key", schemeKey, "scope_key", scopeKey, "attempt", attempt+1)
	}

	return 0, apperror.NewSequenceConflict(schemeKey, scopeKey).WithCause(lastErr)
}

// isRetryableSequenceError reports serialization failures (40001) and
// unique violations (23505) from concurrent first-insert races.
func isRetryableSequenceError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "23505"
}
