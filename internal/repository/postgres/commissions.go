package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkachur/bookgo/internal/domain"
	"github.com/mkachur/bookgo/internal/repository"
)

const commissionColumns = `id, booking_id, host_id, activity_id, booking_cents, rate_bps,
	commission_cents, host_earnings_cents, status, dispute_reason,
	processed_at, paid_out_at, created_at, updated_at`

type CommissionRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CommissionRepo) With(db DB) *CommissionRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CommissionRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// CreateForBooking settles a completed booking into a pending commission.
// The unique index on booking_id guarantees at most one commission per
// booking; the loser of a concurrent settle observes ErrConflict.
//
// Returns:
//   - error: repository.ErrNotFound if the booking is not found.
//   - error: repository.ErrInvalidTransition if the booking is not completed.
//   - error: repository.ErrConflict if a commission already exists for it.
func (r *CommissionRepo) CreateForBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Commission, error) {
	const op = "postgres.CommissionRepo.CreateForBooking"

	var out *domain.Commission

	err := r.inTx(ctx, func(ctx context.Context, db DB) error {
		b, err := scanBooking(db.QueryRow(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, bookingID,
		))
		if err != nil {
			return err
		}

		if b.Status != domain.BookingCompleted {
			return fmt.Errorf("booking is %s, not completed: %w", b.Status, repository.ErrInvalidTransition)
		}

		tier, err := hostPlanCore(ctx, db, b.HostID)
		if err != nil {
			return err
		}

		c, err := createCommissionCore(ctx, db, b, tier)
		if err != nil {
			return err
		}

		out = c

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// createCommissionCore computes the split and inserts the pending commission
// row. Shared with BookingRepo.Complete so both settlement paths produce
// identical records.
func createCommissionCore(
	ctx context.Context,
	db DB,
	b *domain.Booking,
	tier domain.PlanTier,
) (*domain.Commission, error) {
	split, err := domain.CalculateCommission(b.TotalCents, tier)
	if err != nil {
		return nil, err
	}

	c := &domain.Commission{
		ID:                uuid.New(),
		BookingID:         b.ID,
		HostID:            b.HostID,
		ActivityID:        b.ActivityID,
		BookingCents:      b.TotalCents,
		RateBps:           split.RateBps,
		CommissionCents:   split.CommissionCents,
		HostEarningsCents: split.HostEarningsCents,
		Status:            domain.CommissionPending,
	}

	if err := db.QueryRow(ctx,
		`INSERT INTO commissions(id, booking_id, host_id, activity_id, booking_cents, rate_bps, commission_cents, host_earnings_cents, status)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
     	 RETURNING created_at, updated_at`,
		c.ID, c.BookingID, c.HostID, c.ActivityID,
		c.BookingCents, c.RateBps, c.CommissionCents, c.HostEarningsCents, c.Status,
	).Scan(&c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}

	return c, nil
}

// Get retrieves a commission by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the commission is not found.
func (r *CommissionRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Commission, error) {
	const op = "postgres.CommissionRepo.Get"

	db := r.handle()

	c, err := scanCommission(db.QueryRow(ctx,
		`SELECT `+commissionColumns+` FROM commissions WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return c, nil
}

// ByBooking retrieves the commission settled for a booking.
//
// Returns:
//   - error: repository.ErrNotFound if the booking has no commission.
func (r *CommissionRepo) ByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Commission, error) {
	const op = "postgres.CommissionRepo.ByBooking"

	db := r.handle()

	c, err := scanCommission(db.QueryRow(ctx,
		`SELECT `+commissionColumns+` FROM commissions WHERE booking_id = $1`, bookingID,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return c, nil
}

// MarkProcessed moves a pending commission to processed and stamps
// processed_at.
func (r *CommissionRepo) MarkProcessed(ctx context.Context, id uuid.UUID) (*domain.Commission, error) {
	const op = "postgres.CommissionRepo.MarkProcessed"

	c, err := r.transition(ctx, id, domain.CommissionProcessed, func(c *domain.Commission) error {
		// forward-only: re-processing from dispute/hold keeps the original stamp
		if c.ProcessedAt == nil {
			now := time.Now()
			c.ProcessedAt = &now
		}
		c.DisputeReason = ""
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return c, nil
}

// MarkPaidOut records the external payout. Requires prior processed state.
func (r *CommissionRepo) MarkPaidOut(ctx context.Context, id uuid.UUID) (*domain.Commission, error) {
	const op = "postgres.CommissionRepo.MarkPaidOut"

	c, err := r.transition(ctx, id, domain.CommissionPaidOut, func(c *domain.Commission) error {
		now := time.Now()
		c.PaidOutAt = &now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return c, nil
}

// Dispute routes a non-terminal commission into the disputed state.
func (r *CommissionRepo) Dispute(ctx context.Context, id uuid.UUID, reason string) (*domain.Commission, error) {
	const op = "postgres.CommissionRepo.Dispute"

	c, err := r.transition(ctx, id, domain.CommissionDisputed, func(c *domain.Commission) error {
		c.DisputeReason = reason
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return c, nil
}

// Resolve routes a disputed commission to the given outcome state.
func (r *CommissionRepo) Resolve(ctx context.Context, id uuid.UUID, to domain.CommissionStatus) (*domain.Commission, error) {
	const op = "postgres.CommissionRepo.Resolve"

	c, err := r.transition(ctx, id, to, func(c *domain.Commission) error {
		if to == domain.CommissionProcessed && c.ProcessedAt == nil {
			now := time.Now()
			c.ProcessedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return c, nil
}

// Hold parks a non-terminal commission.
func (r *CommissionRepo) Hold(ctx context.Context, id uuid.UUID) (*domain.Commission, error) {
	const op = "postgres.CommissionRepo.Hold"

	c, err := r.transition(ctx, id, domain.CommissionOnHold, nil)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return c, nil
}

// ReleaseHold returns an on-hold commission to its pre-hold progression
// point: processed if it was ever processed, else pending.
func (r *CommissionRepo) ReleaseHold(ctx context.Context, id uuid.UUID) (*domain.Commission, error) {
	const op = "postgres.CommissionRepo.ReleaseHold"

	var out *domain.Commission

	err := r.inTx(ctx, func(ctx context.Context, db DB) error {
		c, err := lockCommissionCore(ctx, db, id)
		if err != nil {
			return err
		}

		target := domain.CommissionPending
		if c.ProcessedAt != nil {
			target = domain.CommissionProcessed
		}

		if !c.Status.CanTransitionTo(target) {
			return fmt.Errorf("%s -> %s: %w", c.Status, target, repository.ErrInvalidTransition)
		}

		c.Status = target

		out = c

		return writeCommissionCore(ctx, db, c)
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// ListForHost lists a host's commissions, newest first.
func (r *CommissionRepo) ListForHost(ctx context.Context, hostID int64, limit, offset int) ([]domain.Commission, error) {
	const op = "postgres.CommissionRepo.ListForHost"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT `+commissionColumns+` FROM commissions
     	 WHERE host_id = $1
     	 ORDER BY created_at DESC
     	 LIMIT $2 OFFSET $3`,
		hostID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Commission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *CommissionRepo) transition(
	ctx context.Context,
	id uuid.UUID,
	to domain.CommissionStatus,
	mutate func(c *domain.Commission) error,
) (*domain.Commission, error) {
	var out *domain.Commission

	err := r.inTx(ctx, func(ctx context.Context, db DB) error {
		c, err := lockCommissionCore(ctx, db, id)
		if err != nil {
			return err
		}

		if !c.Status.CanTransitionTo(to) {
			return fmt.Errorf("%s -> %s: %w", c.Status, to, repository.ErrInvalidTransition)
		}

		c.Status = to

		if mutate != nil {
			if err := mutate(c); err != nil {
				return err
			}
		}

		out = c

		return writeCommissionCore(ctx, db, c)
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *CommissionRepo) inTx(ctx context.Context, fn func(ctx context.Context, db DB) error) error {
	if r.db != nil {
		return fn(ctx, r.db)
	}

	return withTxRetry(func() error {
		return runLockedTx(ctx, r.pool, fn)
	})
}

func lockCommissionCore(ctx context.Context, db DB, id uuid.UUID) (*domain.Commission, error) {
	return scanCommission(db.QueryRow(ctx,
		`SELECT `+commissionColumns+` FROM commissions WHERE id = $1 FOR UPDATE`, id,
	))
}

func writeCommissionCore(ctx context.Context, db DB, c *domain.Commission) error {
	return db.QueryRow(ctx,
		`UPDATE commissions
	        SET status = $2, dispute_reason = $3, processed_at = $4, paid_out_at = $5, updated_at = now()
     	 WHERE id = $1
     	 RETURNING updated_at`,
		c.ID, c.Status, nullableStr(c.DisputeReason), c.ProcessedAt, c.PaidOutAt,
	).Scan(&c.UpdatedAt)
}

func nullableStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func scanCommission(row pgx.Row) (*domain.Commission, error) {
	var c domain.Commission
	var reason *string

	err := row.Scan(
		&c.ID, &c.BookingID, &c.HostID, &c.ActivityID,
		&c.BookingCents, &c.RateBps, &c.CommissionCents, &c.HostEarningsCents,
		&c.Status, &reason, &c.ProcessedAt, &c.PaidOutAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reason != nil {
		c.DisputeReason = *reason
	}

	return &c, nil
}
