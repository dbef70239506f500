package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mkachur/bookgo/internal/domain"
	"github.com/mkachur/bookgo/internal/repository"
	redisrepo "github.com/mkachur/bookgo/internal/repository/redis"
)

// Store is the persistence surface of the booking lifecycle. Every method
// that combines a read, a check and a write is atomic inside the store; the
// service layers validation, authorization mapping and notification on top.
type Store interface {
	CreateReserving(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	ByCode(ctx context.Context, code string) (*domain.Booking, error)
	Confirm(ctx context.Context, id uuid.UUID, hostID int64) (*domain.Booking, error)
	CancelReleasing(ctx context.Context, id uuid.UUID, actor domain.Actor, reason string) (*domain.Booking, error)
	RefundReleasing(ctx context.Context, id uuid.UUID, actor domain.Actor, reason string) (*domain.Booking, error)
	Complete(ctx context.Context, id uuid.UUID) (*domain.Booking, *domain.Commission, error)
	DueForCompletion(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
	ListForGuest(ctx context.Context, guestID int64, limit, offset int) ([]domain.Booking, error)
	ListForActivity(ctx context.Context, activityID int64, onlyActive bool, limit, offset int) ([]domain.Booking, error)
}

type ActivityStore interface {
	Get(ctx context.Context, id int64) (*domain.Activity, error)
}

type Config struct {
	MaxGuestsPerBooking int
	SweepBatch          int
}

type Service struct {
	store      Store
	activities ActivityStore
	cache      *redisrepo.Cache
	pubsub     *redisrepo.MarketPubSub
	limiter    *redisrepo.SlidingWindowLimiter
	logger     *slog.Logger
	cfg        Config
}

func New(
	store Store,
	activities ActivityStore,
	cache *redisrepo.Cache,
	pubsub *redisrepo.MarketPubSub,
	limiter *redisrepo.SlidingWindowLimiter,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.MaxGuestsPerBooking <= 0 {
		cfg.MaxGuestsPerBooking = 50
	}

	if cfg.SweepBatch <= 0 {
		cfg.SweepBatch = 100
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:      store,
		activities: activities,
		cache:      cache,
		pubsub:     pubsub,
		limiter:    limiter,
		logger:     logger,
		cfg:        cfg,
	}
}

// Create books an interval of an activity for a guest. The overlap check,
// the capacity reservation and the pending insert are one atomic unit in the
// store, so two concurrent requests for the last slot cannot both succeed.
//
// Returns:
//   - error: booking.ErrInvalidInterval / booking.ErrInvalidGuests on bad input.
//   - error: booking.ErrActivityNotFound / booking.ErrActivityInactive.
//   - error: booking.ErrIntervalConflict if the interval overlaps an active booking.
//   - error: booking.ErrCapacityExceeded if the remaining capacity is too small.
//   - error: booking.ErrCodeExhausted if confirmation code retries ran out.
func (s *Service) Create(
	ctx context.Context,
	actor domain.Actor,
	activityID int64,
	interval domain.Interval,
	guests int,
	rlKey string,
) (*domain.Booking, error) {
	const op = "service.booking.Create"

	if !interval.Valid() {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidInterval)
	}

	if guests <= 0 || guests > s.cfg.MaxGuestsPerBooking {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidGuests)
	}

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: rate limited, retry in %s", op, retry)
		}
	}

	b := &domain.Booking{
		ActivityID: activityID,
		GuestID:    actor.UserID,
		Guests:     guests,
		Starts:     interval.Start,
		Ends:       interval.End,
	}

	if err := s.store.CreateReserving(ctx, b); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrActivityNotFound)
		case errors.Is(err, repository.ErrActivityInactive):
			return nil, fmt.Errorf("%s: %w", op, ErrActivityInactive)
		case errors.Is(err, repository.ErrOverlap):
			return nil, fmt.Errorf("%s: %w", op, ErrIntervalConflict)
		case errors.Is(err, repository.ErrCapacityExceeded):
			return nil, fmt.Errorf("%s: %w", op, ErrCapacityExceeded)
		case errors.Is(err, repository.ErrCodeExhausted):
			return nil, fmt.Errorf("%s: %w", op, ErrCodeExhausted)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.bookingChanged(ctx, b)

	return b, nil
}

// Confirm moves a pending booking to confirmed. Only the activity's host.
//
// Returns:
//   - error: booking.ErrBookingNotFound.
//   - error: booking.ErrNotHost if the actor does not host the activity.
//   - error: booking.ErrInvalidTransition if the booking is not pending.
func (s *Service) Confirm(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Confirm"

	b, err := s.store.Confirm(ctx, id, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrForbidden) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotHost)
		}

		return nil, fmt.Errorf("%s: %w", op, s.mapLifecycleErr(err))
	}

	s.bookingChanged(ctx, b)

	return b, nil
}

// Cancel cancels a pending or confirmed booking and releases its capacity.
// The guest, the host, or an admin may cancel; the reason is recorded.
func (s *Service) Cancel(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
	reason string,
) (*domain.Booking, error) {
	const op = "service.booking.Cancel"

	b, err := s.store.CancelReleasing(ctx, id, actor, reason)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapLifecycleErr(err))
	}

	s.bookingChanged(ctx, b)

	return b, nil
}

// Refund marks a booking refunded and releases its capacity. The actual
// money movement happens in the external payment provider; only the state is
// recorded here.
func (s *Service) Refund(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
	reason string,
) (*domain.Booking, error) {
	const op = "service.booking.Refund"

	b, err := s.store.RefundReleasing(ctx, id, actor, reason)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapLifecycleErr(err))
	}

	s.bookingChanged(ctx, b)

	return b, nil
}

// Complete moves a confirmed booking to completed and settles its pending
// commission in the same atomic unit.
//
// Returns:
//   - error: booking.ErrBookingNotFound.
//   - error: booking.ErrInvalidTransition if the booking is not confirmed.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*domain.Booking, *domain.Commission, error) {
	const op = "service.booking.Complete"

	b, c, err := s.store.Complete(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, s.mapLifecycleErr(err))
	}

	s.bookingChanged(ctx, b)

	if s.pubsub != nil && c != nil {
		_ = s.pubsub.PublishCommissionChanged(ctx, c.ID, c.HostID, string(c.Status))
	}

	return b, c, nil
}

// SweepDue completes every confirmed booking whose interval has elapsed.
// Bookings completed by a concurrent sweeper are skipped, not failed.
func (s *Service) SweepDue(ctx context.Context) (int, error) {
	const op = "service.booking.SweepDue"

	due, err := s.store.DueForCompletion(ctx, time.Now(), s.cfg.SweepBatch)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var completed int
	for _, id := range due {
		if _, _, err := s.Complete(ctx, id); err != nil {
			if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrBookingNotFound) {
				continue
			}

			s.logger.Error("sweep: complete booking", "booking_id", id, "error", err)
			continue
		}

		completed++
	}

	return completed, nil
}

// Get retrieves a booking by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	const op = "service.booking.Get"

	b, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// ByConfirmationCode retrieves a booking by its guest-facing code.
func (s *Service) ByConfirmationCode(ctx context.Context, code string) (*domain.Booking, error) {
	const op = "service.booking.ByConfirmationCode"

	b, err := s.store.ByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// ListForGuest lists the actor's own bookings; admins may list any guest's.
func (s *Service) ListForGuest(
	ctx context.Context,
	actor domain.Actor,
	guestID int64,
	limit, offset int,
) ([]domain.Booking, error) {
	const op = "service.booking.ListForGuest"

	if actor.Role != domain.RoleAdmin && actor.UserID != guestID {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAllowed)
	}

	out, err := s.store.ListForGuest(ctx, guestID, clampPage(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// ListForActivity lists an activity's bookings for its host or an admin.
func (s *Service) ListForActivity(
	ctx context.Context,
	actor domain.Actor,
	activityID int64,
	onlyActive bool,
	limit, offset int,
) ([]domain.Booking, error) {
	const op = "service.booking.ListForActivity"

	if actor.Role != domain.RoleAdmin {
		a, err := s.activities.Get(ctx, activityID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, ErrActivityNotFound)
			}

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if a.HostID != actor.UserID {
			return nil, fmt.Errorf("%s: %w", op, ErrNotHost)
		}
	}

	out, err := s.store.ListForActivity(ctx, activityID, onlyActive, clampPage(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Service) mapLifecycleErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrBookingNotFound
	case errors.Is(err, repository.ErrForbidden):
		return ErrNotAllowed
	case errors.Is(err, repository.ErrInvalidTransition):
		return ErrInvalidTransition
	}

	return err
}

// bookingChanged fires the cache invalidation and the fire-and-forget
// notification after a successful mutation.
func (s *Service) bookingChanged(ctx context.Context, b *domain.Booking) {
	if s.cache != nil {
		_ = s.cache.InvalidateActivity(ctx, b.ActivityID)
	}

	if s.pubsub != nil {
		_ = s.pubsub.PublishBookingChanged(ctx, b.ActivityID, b.ID, string(b.Status))
	}
}

func clampPage(limit int) int {
	if limit <= 0 {
		return 50
	}

	if limit > 200 {
		return 200
	}

	return limit
}
