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

// Attempts at generating a collision-free confirmation code before the
// create is abandoned.
const codeAttempts = 5

const bookingColumns = `id, activity_id, guest_id, host_id, guests, starts_at, ends_at,
	status, total_cents, confirmation_code, cancellation_reason, cancelled_at,
	created_at, updated_at`

type BookingRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *BookingRepo) With(db DB) *BookingRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *BookingRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// CreateReserving inserts a pending booking after checking the interval
// against every active booking of the activity and reserving capacity.
// The activity row lock makes the read-check-write sequence atomic against
// concurrent writers of the same activity.
//
// On success b is populated with the generated ID, confirmation code, host,
// total price and timestamps.
//
// Returns:
//   - error: repository.ErrNotFound if the activity does not exist.
//   - error: repository.ErrActivityInactive if the activity is not bookable.
//   - error: repository.ErrOverlap if the interval conflicts with an active booking.
//   - error: repository.ErrCapacityExceeded if not enough slots remain.
//   - error: repository.ErrCodeExhausted if code generation kept colliding.
func (r *BookingRepo) CreateReserving(ctx context.Context, b *domain.Booking) error {
	const op = "postgres.BookingRepo.CreateReserving"

	err := r.inTx(ctx, func(ctx context.Context, db DB) error {
		return r.createReservingCore(ctx, db, b)
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return nil
}

func (r *BookingRepo) createReservingCore(ctx context.Context, db DB, b *domain.Booking) error {
	activity, err := lockActivityCore(ctx, db, b.ActivityID)
	if err != nil {
		return err
	}

	if !activity.Active {
		return repository.ErrActivityInactive
	}

	// capacity first: a full activity reports exhaustion even when the
	// requested interval would also overlap
	if err := reserveCapacityCore(ctx, db, b.ActivityID, b.Guests); err != nil {
		return err
	}

	existing, err := activeIntervalsCore(ctx, db, b.ActivityID)
	if err != nil {
		return err
	}

	if !domain.IsAvailable(b.Window(), existing) {
		return repository.ErrOverlap
	}

	code, err := freeConfirmationCode(ctx, db)
	if err != nil {
		return err
	}

	b.ID = uuid.New()
	b.HostID = activity.HostID
	b.Status = domain.BookingPending
	b.TotalCents = activity.PriceCents * int64(b.Guests)
	b.ConfirmationCode = code

	return db.QueryRow(ctx,
		`INSERT INTO bookings(id, activity_id, guest_id, host_id, guests, starts_at, ends_at, status, total_cents, confirmation_code)
       	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
     	 RETURNING created_at, updated_at`,
		b.ID, b.ActivityID, b.GuestID, b.HostID, b.Guests,
		b.Starts, b.Ends, b.Status, b.TotalCents, b.ConfirmationCode,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
}

// freeConfirmationCode draws codes until one is unused. The unique index on
// the column still backstops the unlikely cross-transaction race.
func freeConfirmationCode(ctx context.Context, db DB) (string, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code := domain.NewConfirmationCode()

		var taken bool
		if err := db.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM bookings WHERE confirmation_code = $1)`,
			code,
		).Scan(&taken); err != nil {
			return "", err
		}

		if !taken {
			return code, nil
		}
	}

	return "", repository.ErrCodeExhausted
}

func activeIntervalsCore(ctx context.Context, db DB, activityID int64) ([]domain.Interval, error) {
	rows, err := db.Query(ctx,
		`SELECT starts_at, ends_at
     	 FROM bookings
     	 WHERE activity_id = $1 AND status IN ('pending', 'confirmed')`,
		activityID,
	)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []domain.Interval
	for rows.Next() {
		var iv domain.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, err
		}
		out = append(out, iv)
	}

	return out, rows.Err()
}

// Get retrieves a booking by its ID.
//
// Returns:
//   - error: repository.ErrNotFound if the booking is not found.
func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Get"

	db := r.handle()

	b, err := scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// ByCode retrieves a booking by its guest-facing confirmation code.
//
// Returns:
//   - error: repository.ErrNotFound if no booking carries the code.
func (r *BookingRepo) ByCode(ctx context.Context, code string) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.ByCode"

	db := r.handle()

	b, err := scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE confirmation_code = $1`, code,
	))
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// Confirm moves a pending booking to confirmed. Only the activity's host may
// confirm.
//
// Returns:
//   - error: repository.ErrNotFound if the booking is not found.
//   - error: repository.ErrForbidden if hostID does not own the booking.
//   - error: repository.ErrInvalidTransition if the booking is not pending.
func (r *BookingRepo) Confirm(ctx context.Context, id uuid.UUID, hostID int64) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.Confirm"

	var out *domain.Booking

	err := r.inTx(ctx, func(ctx context.Context, db DB) error {
		b, err := lockBookingCore(ctx, db, id)
		if err != nil {
			return err
		}

		if b.HostID != hostID {
			return repository.ErrForbidden
		}

		if !b.Status.CanTransitionTo(domain.BookingConfirmed) {
			return fmt.Errorf("%s -> %s: %w", b.Status, domain.BookingConfirmed, repository.ErrInvalidTransition)
		}

		if err := db.QueryRow(ctx,
			`UPDATE bookings SET status = $2, updated_at = now()
		 	 WHERE id = $1
		 	 RETURNING updated_at`,
			id, domain.BookingConfirmed,
		).Scan(&b.UpdatedAt); err != nil {
			return err
		}

		b.Status = domain.BookingConfirmed
		out = b

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return out, nil
}

// CancelReleasing cancels an active booking and returns its slots to the
// capacity ledger in the same transaction, so a crash can never leave a
// cancelled booking still holding capacity.
//
// Returns:
//   - error: repository.ErrNotFound if the booking is not found.
//   - error: repository.ErrForbidden if the actor is neither the guest, the
//     host, nor an admin.
//   - error: repository.ErrInvalidTransition from terminal states.
func (r *BookingRepo) CancelReleasing(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
	reason string,
) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.CancelReleasing"

	b, err := r.releaseTo(ctx, id, actor, reason, domain.BookingCancelled)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

// RefundReleasing marks a booking refunded and releases its capacity.
// Refunds follow the same edge rules as cancellation.
func (r *BookingRepo) RefundReleasing(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
	reason string,
) (*domain.Booking, error) {
	const op = "postgres.BookingRepo.RefundReleasing"

	b, err := r.releaseTo(ctx, id, actor, reason, domain.BookingRefunded)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return b, nil
}

func (r *BookingRepo) releaseTo(
	ctx context.Context,
	id uuid.UUID,
	actor domain.Actor,
	reason string,
	target domain.BookingStatus,
) (*domain.Booking, error) {
	var out *domain.Booking

	err := r.inTx(ctx, func(ctx context.Context, db DB) error {
		b, err := lockBookingCore(ctx, db, id)
		if err != nil {
			return err
		}

		allowed := actor.Role == domain.RoleAdmin ||
			actor.UserID == b.GuestID ||
			actor.UserID == b.HostID
		if !allowed {
			return repository.ErrForbidden
		}

		if !b.Status.CanTransitionTo(target) {
			return fmt.Errorf("%s -> %s: %w", b.Status, target, repository.ErrInvalidTransition)
		}

		// lock the activity after the booking; booking creation takes only
		// the activity lock, so the order cannot cycle
		if _, err := lockActivityCore(ctx, db, b.ActivityID); err != nil {
			return err
		}

		if err := releaseCapacityCore(ctx, db, b.ActivityID, b.Guests); err != nil {
			return err
		}

		now := time.Now()
		if err := db.QueryRow(ctx,
			`UPDATE bookings
		 	    SET status = $2, cancellation_reason = $3, cancelled_at = $4, updated_at = now()
		 	 WHERE id = $1
		 	 RETURNING updated_at`,
			id, target, reason, now,
		).Scan(&b.UpdatedAt); err != nil {
			return err
		}

		b.Status = target
		b.CancellationReason = reason
		b.CancelledAt = &now
		out = b

		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// Complete moves a confirmed booking to completed and, in the same
// transaction, writes the pending commission for it. The unique index on
// commissions.booking_id makes concurrent completion attempts settle exactly
// once; the loser fails the status guard first.
//
// Returns:
//   - error: repository.ErrNotFound if the booking is not found.
//   - error: repository.ErrInvalidTransition if the booking is not confirmed.
//   - error: repository.ErrConflict if a commission already exists.
func (r *BookingRepo) Complete(ctx context.Context, id uuid.UUID) (*domain.Booking, *domain.Commission, error) {
	const op = "postgres.BookingRepo.Complete"

	var (
		booking    *domain.Booking
		commission *domain.Commission
	)

	err := r.inTx(ctx, func(ctx context.Context, db DB) error {
		b, err := lockBookingCore(ctx, db, id)
		if err != nil {
			return err
		}

		if !b.Status.CanTransitionTo(domain.BookingCompleted) {
			return fmt.Errorf("%s -> %s: %w", b.Status, domain.BookingCompleted, repository.ErrInvalidTransition)
		}

		if err := db.QueryRow(ctx,
			`UPDATE bookings SET status = $2, updated_at = now()
		 	 WHERE id = $1
		 	 RETURNING updated_at`,
			id, domain.BookingCompleted,
		).Scan(&b.UpdatedAt); err != nil {
			return err
		}

		b.Status = domain.BookingCompleted

		tier, err := hostPlanCore(ctx, db, b.HostID)
		if err != nil {
			return err
		}

		c, err := createCommissionCore(ctx, db, b, tier)
		if err != nil {
			return err
		}

		booking = b
		commission = c

		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return booking, commission, nil
}

// DueForCompletion lists confirmed bookings whose reserved interval has
// fully elapsed.
func (r *BookingRepo) DueForCompletion(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	const op = "postgres.BookingRepo.DueForCompletion"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT id FROM bookings
     	 WHERE status = 'confirmed' AND ends_at <= $1
     	 ORDER BY ends_at
     	 LIMIT $2`,
		before, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

// ListForGuest lists a guest's bookings, newest first.
func (r *BookingRepo) ListForGuest(ctx context.Context, guestID int64, limit, offset int) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListForGuest"

	return r.list(ctx, op,
		`SELECT `+bookingColumns+` FROM bookings
     	 WHERE guest_id = $1
     	 ORDER BY created_at DESC
     	 LIMIT $2 OFFSET $3`,
		guestID, limit, offset,
	)
}

// ListForActivity lists bookings of an activity, optionally only the active
// ones that block availability.
func (r *BookingRepo) ListForActivity(
	ctx context.Context,
	activityID int64,
	onlyActive bool,
	limit, offset int,
) ([]domain.Booking, error) {
	const op = "postgres.BookingRepo.ListForActivity"

	if onlyActive {
		return r.list(ctx, op,
			`SELECT `+bookingColumns+` FROM bookings
		 	 WHERE activity_id = $1 AND status IN ('pending', 'confirmed')
		 	 ORDER BY starts_at
		 	 LIMIT $2 OFFSET $3`,
			activityID, limit, offset,
		)
	}

	return r.list(ctx, op,
		`SELECT `+bookingColumns+` FROM bookings
     	 WHERE activity_id = $1
     	 ORDER BY starts_at
     	 LIMIT $2 OFFSET $3`,
		activityID, limit, offset,
	)
}

func (r *BookingRepo) list(ctx context.Context, op, sql string, args ...any) ([]domain.Booking, error) {
	db := r.handle()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	defer rows.Close()

	var out []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return out, nil
}

func (r *BookingRepo) inTx(ctx context.Context, fn func(ctx context.Context, db DB) error) error {
	if r.db != nil {
		return fn(ctx, r.db)
	}

	return withTxRetry(func() error {
		return runLockedTx(ctx, r.pool, fn)
	})
}

func lockBookingCore(ctx context.Context, db DB, id uuid.UUID) (*domain.Booking, error) {
	return scanBooking(db.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id,
	))
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var reason *string

	err := row.Scan(
		&b.ID, &b.ActivityID, &b.GuestID, &b.HostID, &b.Guests,
		&b.Starts, &b.Ends, &b.Status, &b.TotalCents, &b.ConfirmationCode,
		&reason, &b.CancelledAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if reason != nil {
		b.CancellationReason = *reason
	}

	return &b, nil
}
