package commission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mkachur/bookgo/internal/domain"
	"github.com/mkachur/bookgo/internal/repository"
	redisrepo "github.com/mkachur/bookgo/internal/repository/redis"
)

// Store is the commission ledger's persistence surface. Transition methods
// are atomic in the store; illegal edges come back as
// repository.ErrInvalidTransition and leave the record unchanged.
type Store interface {
	CreateForBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Commission, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Commission, error)
	ByBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Commission, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) (*domain.Commission, error)
	MarkPaidOut(ctx context.Context, id uuid.UUID) (*domain.Commission, error)
	Dispute(ctx context.Context, id uuid.UUID, reason string) (*domain.Commission, error)
	Resolve(ctx context.Context, id uuid.UUID, to domain.CommissionStatus) (*domain.Commission, error)
	Hold(ctx context.Context, id uuid.UUID) (*domain.Commission, error)
	ReleaseHold(ctx context.Context, id uuid.UUID) (*domain.Commission, error)
	ListForHost(ctx context.Context, hostID int64, limit, offset int) ([]domain.Commission, error)
}

type Service struct {
	store  Store
	pubsub *redisrepo.MarketPubSub
	logger *slog.Logger
}

func New(store Store, pubsub *redisrepo.MarketPubSub, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:  store,
		pubsub: pubsub,
		logger: logger,
	}
}

// BulkPayoutResult reports a partial-failure bulk payout: failures are
// collected per item, never rolled back across items.
type BulkPayoutResult struct {
	Paid     int
	Failures []PayoutFailure
}

type PayoutFailure struct {
	CommissionID uuid.UUID
	Err          error
}

// ProcessForBooking settles a completed booking into a pending commission.
// Safe to call concurrently with booking completion: exactly one settle wins
// and the rest observe ErrDuplicateCommission.
//
// Returns:
//   - error: commission.ErrBookingNotFound.
//   - error: commission.ErrBookingNotCompleted if the booking has not completed.
//   - error: commission.ErrDuplicateCommission if one already exists.
func (s *Service) ProcessForBooking(ctx context.Context, bookingID uuid.UUID) (*domain.Commission, error) {
	const op = "service.commission.ProcessForBooking"

	c, err := s.store.CreateForBooking(ctx, bookingID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotFound)
		case errors.Is(err, repository.ErrInvalidTransition):
			return nil, fmt.Errorf("%s: %w", op, ErrBookingNotCompleted)
		case errors.Is(err, repository.ErrConflict):
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateCommission)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.commissionChanged(ctx, c)

	return c, nil
}

// MarkProcessed moves a pending commission forward.
func (s *Service) MarkProcessed(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Commission, error) {
	const op = "service.commission.MarkProcessed"

	if err := requireAdmin(actor); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.store.MarkProcessed(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapLedgerErr(err))
	}

	s.commissionChanged(ctx, c)

	return c, nil
}

// MarkPaidOut records an external payout. Requires the processed state.
func (s *Service) MarkPaidOut(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Commission, error) {
	const op = "service.commission.MarkPaidOut"

	if err := requireAdmin(actor); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.store.MarkPaidOut(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapLedgerErr(err))
	}

	s.commissionChanged(ctx, c)

	return c, nil
}

// Dispute parks the commission in the disputed state with a reason.
// The host of the commission or an admin may open a dispute.
func (s *Service) Dispute(ctx context.Context, actor domain.Actor, id uuid.UUID, reason string) (*domain.Commission, error) {
	const op = "service.commission.Dispute"

	if actor.Role != domain.RoleAdmin {
		existing, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, s.mapLedgerErr(err))
		}

		if existing.HostID != actor.UserID {
			return nil, fmt.Errorf("%s: %w", op, ErrNotAllowed)
		}
	}

	c, err := s.store.Dispute(ctx, id, reason)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapLedgerErr(err))
	}

	s.commissionChanged(ctx, c)

	return c, nil
}

// ResolveDispute routes a disputed commission by outcome: upheld resumes the
// payout pipeline, refunded cancels the commission.
func (s *Service) ResolveDispute(
	ctx context.Context,
	actor domain.Actor,
	id uuid.UUID,
	resolution domain.DisputeResolution,
) (*domain.Commission, error) {
	const op = "service.commission.ResolveDispute"

	if err := requireAdmin(actor); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var target domain.CommissionStatus
	switch resolution {
	case domain.ResolutionUpheld:
		target = domain.CommissionProcessed
	case domain.ResolutionRefunded:
		target = domain.CommissionCancelled
	default:
		return nil, fmt.Errorf("%s: %q: %w", op, resolution, ErrInvalidResolution)
	}

	c, err := s.store.Resolve(ctx, id, target)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapLedgerErr(err))
	}

	s.commissionChanged(ctx, c)

	return c, nil
}

// Hold parks a non-terminal commission pending review.
func (s *Service) Hold(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Commission, error) {
	const op = "service.commission.Hold"

	if err := requireAdmin(actor); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.store.Hold(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapLedgerErr(err))
	}

	s.commissionChanged(ctx, c)

	return c, nil
}

// ReleaseHold resumes a held commission at its pre-hold progression point.
func (s *Service) ReleaseHold(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Commission, error) {
	const op = "service.commission.ReleaseHold"

	if err := requireAdmin(actor); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c, err := s.store.ReleaseHold(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapLedgerErr(err))
	}

	s.commissionChanged(ctx, c)

	return c, nil
}

// ProcessBulkPayout pays out a batch of commissions independently. One item
// failing does not roll back the rest; failures are collected and reported.
func (s *Service) ProcessBulkPayout(ctx context.Context, actor domain.Actor, ids []uuid.UUID) (*BulkPayoutResult, error) {
	const op = "service.commission.ProcessBulkPayout"

	if err := requireAdmin(actor); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := &BulkPayoutResult{}

	for _, id := range ids {
		c, err := s.store.MarkPaidOut(ctx, id)
		if err != nil {
			res.Failures = append(res.Failures, PayoutFailure{
				CommissionID: id,
				Err:          s.mapLedgerErr(err),
			})
			continue
		}

		res.Paid++
		s.commissionChanged(ctx, c)
	}

	return res, nil
}

// Get retrieves a commission. Hosts see only their own; admins see all.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Commission, error) {
	const op = "service.commission.Get"

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapLedgerErr(err))
	}

	if actor.Role != domain.RoleAdmin && c.HostID != actor.UserID {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAllowed)
	}

	return c, nil
}

// ByBooking retrieves the commission settled for a booking.
func (s *Service) ByBooking(ctx context.Context, actor domain.Actor, bookingID uuid.UUID) (*domain.Commission, error) {
	const op = "service.commission.ByBooking"

	c, err := s.store.ByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.mapLedgerErr(err))
	}

	if actor.Role != domain.RoleAdmin && c.HostID != actor.UserID {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAllowed)
	}

	return c, nil
}

// ListForHost lists a host's commissions, newest first.
func (s *Service) ListForHost(
	ctx context.Context,
	actor domain.Actor,
	hostID int64,
	limit, offset int,
) ([]domain.Commission, error) {
	const op = "service.commission.ListForHost"

	if actor.Role != domain.RoleAdmin && actor.UserID != hostID {
		return nil, fmt.Errorf("%s: %w", op, ErrNotAllowed)
	}

	out, err := s.store.ListForHost(ctx, hostID, clampPage(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Service) mapLedgerErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrCommissionNotFound
	case errors.Is(err, repository.ErrInvalidTransition):
		return ErrInvalidTransition
	}

	return err
}

func (s *Service) commissionChanged(ctx context.Context, c *domain.Commission) {
	if s.pubsub != nil {
		_ = s.pubsub.PublishCommissionChanged(ctx, c.ID, c.HostID, string(c.Status))
	}
}

func requireAdmin(actor domain.Actor) error {
	if actor.Role != domain.RoleAdmin {
		return ErrNotAllowed
	}
	return nil
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
