package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkachur/bookgo/internal/domain"
	"github.com/mkachur/bookgo/internal/repository"
)

type ActivityRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *ActivityRepo) With(db DB) *ActivityRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *ActivityRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Create inserts an activity and returns its ID. BookedCapacity always
// starts at zero regardless of the input.
func (r *ActivityRepo) Create(ctx context.Context, a *domain.Activity) (int64, error) {
	const op = "postgres.ActivityRepo.Create"

	db := r.handle()

	var id int64
	if err := db.QueryRow(ctx,
		`INSERT INTO activities(host_id, title, price_cents, capacity, booked_capacity, active, featured)
       	 VALUES ($1, $2, $3, $4, 0, $5, $6)
     	 RETURNING id`,
		a.HostID, a.Title, a.PriceCents, a.Capacity, a.Active, a.Featured,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return id, nil
}

// Get retrieves an activity by its ID.
//
// Returns:
//   - *domain.Activity: the activity when found.
//   - error: repository.ErrNotFound if the activity is not found.
func (r *ActivityRepo) Get(ctx context.Context, id int64) (*domain.Activity, error) {
	const op = "postgres.ActivityRepo.Get"

	db := r.handle()

	var a domain.Activity
	err := db.QueryRow(ctx,
		`SELECT id, host_id, title, price_cents, capacity, booked_capacity, active, featured, created_at, updated_at
       	 FROM activities WHERE id = $1`,
		id,
	).Scan(
		&a.ID, &a.HostID, &a.Title, &a.PriceCents,
		&a.Capacity, &a.BookedCapacity, &a.Active, &a.Featured,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return &a, nil
}

// Availability returns the capacity counters plus the number of active
// bookings for an activity.
//
// Returns:
//   - error: repository.ErrNotFound if the activity is not found.
func (r *ActivityRepo) Availability(ctx context.Context, id int64) (*domain.ActivityAvailability, error) {
	const op = "postgres.ActivityRepo.Availability"

	db := r.handle()

	var av domain.ActivityAvailability
	err := db.QueryRow(ctx,
		`SELECT a.capacity,
	        a.booked_capacity,
	        COALESCE(COUNT(b.id) FILTER (WHERE b.status IN ('pending', 'confirmed')), 0)
     	 FROM activities a
     	 LEFT JOIN bookings b ON b.activity_id = a.id
     	 WHERE a.id = $1
     	 GROUP BY a.capacity, a.booked_capacity`,
		id,
	).Scan(&av.Capacity, &av.Booked, &av.ActiveBookings)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	av.Remaining = av.Capacity - av.Booked

	return &av, nil
}

// HostPlan returns the host's subscription tier. Hosts without a plan row
// are on the basic tier.
func (r *ActivityRepo) HostPlan(ctx context.Context, hostID int64) (domain.PlanTier, error) {
	const op = "postgres.ActivityRepo.HostPlan"

	db := r.handle()

	tier, err := hostPlanCore(ctx, db, hostID)
	if err != nil {
		return "", fmt.Errorf("%s:%w", op, translateDBErr(err))
	}

	return tier, nil
}

func hostPlanCore(ctx context.Context, db DB, hostID int64) (domain.PlanTier, error) {
	var tier string

	err := db.QueryRow(ctx,
		`SELECT plan_tier FROM host_plans WHERE host_id = $1`,
		hostID,
	).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TierBasic, nil
	}
	if err != nil {
		return "", err
	}

	t := domain.PlanTier(tier)
	if !t.Valid() {
		return "", fmt.Errorf("bad plan tier for host %d: %q", hostID, tier)
	}

	return t, nil
}

// reserveCapacityCore bumps the committed counter iff the result stays within
// capacity. Callers must hold the activity row lock.
func reserveCapacityCore(ctx context.Context, db DB, activityID int64, guests int) error {
	tag, err := db.Exec(ctx,
		`UPDATE activities
	        SET booked_capacity = booked_capacity + $2, updated_at = now()
      	 WHERE id = $1
        	AND booked_capacity + $2 <= capacity`,
		activityID, guests,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrCapacityExceeded
	}

	return nil
}

// releaseCapacityCore returns committed slots to the pool. The counter never
// goes below zero.
func releaseCapacityCore(ctx context.Context, db DB, activityID int64, guests int) error {
	tag, err := db.Exec(ctx,
		`UPDATE activities
	        SET booked_capacity = booked_capacity - $2, updated_at = now()
      	 WHERE id = $1
        	AND booked_capacity - $2 >= 0`,
		activityID, guests,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("release of %d slots would underflow activity %d: %w",
			guests, activityID, repository.ErrConflict)
	}

	return nil
}

// lockActivityCore takes the activity row lock that serializes all bookings
// for one activity. Different activities never block each other.
func lockActivityCore(ctx context.Context, db DB, activityID int64) (*domain.Activity, error) {
	var a domain.Activity

	err := db.QueryRow(ctx,
		`SELECT id, host_id, title, price_cents, capacity, booked_capacity, active, featured, created_at, updated_at
     	 FROM activities
     	 WHERE id = $1
     	 FOR UPDATE`,
		activityID,
	).Scan(
		&a.ID, &a.HostID, &a.Title, &a.PriceCents,
		&a.Capacity, &a.BookedCapacity, &a.Active, &a.Featured,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}
