package postgres

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fakturo/internal/core/apperror"
)

// stubRow returns a fixed value or error from Scan.
type stubRow struct {
	value int64
	err   error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*int64)) = r.value
	return nil
}

// fakeSeqTx doubles as the counter row: every upsert increments last
// and returns it, mirroring the ON CONFLICT DO UPDATE RETURNING shape.
// Queued failures are consumed first, one per attempt.
type fakeSeqTx struct {
	pgx.Tx

	mu       sync.Mutex
	last     int64
	failures []error
	execSQL  []string
}

func (f *fakeSeqTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execSQL = append(f.execSQL, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeSeqTx) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return stubRow{err: err}
	}
	f.last++
	return stubRow{value: f.last}
}

// seqFixture wires the counter to a fake transaction already in context,
// the way document services call it.
func seqFixture(failures ...error) (*SequenceCounter, *fakeSeqTx, context.Context) {
	ftx := &fakeSeqTx{failures: failures}
	ctx := context.WithValue(context.Background(), txKey{}, &Tx{Tx: ftx})
	counter := NewSequenceCounter(NewTxManagerFromRawPool(nil))
	return counter, ftx, ctx
}

func TestSequenceCounterContiguous(t *testing.T) {
	counter, _, ctx := seqFixture()

	for want := int64(1); want <= 5; want++ {
		got, err := counter.Next(ctx, "scheme", "2026", nil)
		require.NoError(t, err)
		assert.Equal(t, want, got, "values must be contiguous, no gaps")
	}
}

func TestSequenceCounterRetriesCreateRace(t *testing.T) {
	counter, ftx, ctx := seqFixture(&pgconn.PgError{Code: "23505"})

	got, err := counter.Next(ctx, "scheme", "2026", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)

	// the failed attempt must roll back to its savepoint before retrying
	joined := strings.Join(ftx.execSQL, ";")
	assert.Contains(t, joined, "ROLLBACK TO SAVEPOINT")
}

func TestSequenceCounterExhaustsRetries(t *testing.T) {
	counter, _, ctx := seqFixture(
		&pgconn.PgError{Code: "40001"},
		&pgconn.PgError{Code: "40001"},
		&pgconn.PgError{Code: "40001"},
	)

	_, err := counter.Next(ctx, "scheme", "2026", nil)
	require.Error(t, err)
	assert.True(t, apperror.IsSequenceConflict(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeSequenceConflict, appErr.Code)
}

func TestSequenceCounterNonRetryableFailsFast(t *testing.T) {
	counter, ftx, ctx := seqFixture(&pgconn.PgError{Code: "23503"})

	_, err := counter.Next(ctx, "scheme", "2026", nil)
	require.Error(t, err)
	assert.False(t, apperror.IsSequenceConflict(err))

	// no retry happened: one upsert, nothing left in the queue
	assert.Empty(t, ftx.failures)
	got, err := counter.Next(ctx, "scheme", "2026", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}

func TestSequenceCounterConcurrentUnique(t *testing.T) {
	counter, _, ctx := seqFixture()

	const workers = 50
	values := make(chan int64, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := counter.Next(ctx, "scheme", "2026", nil)
			assert.NoError(t, err)
			values <- v
		}()
	}
	wg.Wait()
	close(values)

	seen := make(map[int64]bool, workers)
	for v := range values {
		assert.False(t, seen[v], "duplicate counter value %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, workers)
}

func TestIsRetryableSequenceError(t *testing.T) {
	assert.True(t, isRetryableSequenceError(&pgconn.PgError{Code: "40001"}))
	assert.True(t, isRetryableSequenceError(&pgconn.PgError{Code: "23505"}))

	assert.False(t, isRetryableSequenceError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isRetryableSequenceError(errors.New("connection refused")))
	assert.False(t, isRetryableSequenceError(nil))
}
