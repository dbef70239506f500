package postgres

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkachur/bookgo/internal/repository"
)

type rowFunc func(dest ...any) error

func (f rowFunc) Scan(dest ...any) error { return f(dest...) }

// codeCheckDB answers the confirmation-code EXISTS query, reporting the code
// taken for the first freeAfter draws.
type codeCheckDB struct {
	queries   int
	freeAfter int
}

func (d *codeCheckDB) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	d.queries++
	taken := d.queries <= d.freeAfter
	return rowFunc(func(dest ...any) error {
		*(dest[0].(*bool)) = taken
		return nil
	})
}

func (d *codeCheckDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *codeCheckDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (d *codeCheckDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	return nil
}

func TestFreeConfirmationCode_CollisionRetry(t *testing.T) {
	db := &codeCheckDB{freeAfter: 2}

	code, err := freeConfirmationCode(context.Background(), db)

	require.NoError(t, err)
	assert.Len(t, code, 10)
	assert.Equal(t, 3, db.queries)
}

func TestFreeConfirmationCode_Exhaustion(t *testing.T) {
	db := &codeCheckDB{freeAfter: codeAttempts}

	_, err := freeConfirmationCode(context.Background(), db)

	require.ErrorIs(t, err, repository.ErrCodeExhausted)
	assert.Equal(t, codeAttempts, db.queries)
}
