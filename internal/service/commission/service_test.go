package commission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkachur/bookgo/internal/domain"
	"github.com/mkachur/bookgo/internal/repository"
)

// memLedger is an in-memory Store mirroring the postgres transition
// semantics: one commission per booking, table-driven edges, hold release
// keyed off ProcessedAt.
type memLedger struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]*domain.Booking
	tiers     map[int64]domain.PlanTier
	byID      map[uuid.UUID]*domain.Commission
	byBooking map[uuid.UUID]uuid.UUID
	lastLimit int
}

func newMemLedger() *memLedger {
	return &memLedger{
		bookings:  make(map[uuid.UUID]*domain.Booking),
		tiers:     make(map[int64]domain.PlanTier),
		byID:      make(map[uuid.UUID]*domain.Commission),
		byBooking: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *memLedger) addBooking(b domain.Booking, tier domain.PlanTier) {
	m.bookings[b.ID] = &b
	m.tiers[b.HostID] = tier
}

func (m *memLedger) CreateForBooking(_ context.Context, bookingID uuid.UUID) (*domain.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if b.Status != domain.BookingCompleted {
		return nil, repository.ErrInvalidTransition
	}

	if _, exists := m.byBooking[bookingID]; exists {
		return nil, repository.ErrConflict
	}

	tier, ok := m.tiers[b.HostID]
	if !ok {
		tier = domain.TierBasic
	}

	split, err := domain.CalculateCommission(b.TotalCents, tier)
	if err != nil {
		return nil, err
	}

	c := &domain.Commission{
		ID:                uuid.New(),
		BookingID:         bookingID,
		HostID:            b.HostID,
		ActivityID:        b.ActivityID,
		BookingCents:      b.TotalCents,
		RateBps:           split.RateBps,
		CommissionCents:   split.CommissionCents,
		HostEarningsCents: split.HostEarningsCents,
		Status:            domain.CommissionPending,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	m.byID[c.ID] = c
	m.byBooking[bookingID] = c.ID

	cp := *c
	return &cp, nil
}

func (m *memLedger) Get(_ context.Context, id uuid.UUID) (*domain.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	cp := *c
	return &cp, nil
}

func (m *memLedger) ByBooking(_ context.Context, bookingID uuid.UUID) (*domain.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byBooking[bookingID]
	if !ok {
		return nil, repository.ErrNotFound
	}

	cp := *m.byID[id]
	return &cp, nil
}

func (m *memLedger) MarkProcessed(_ context.Context, id uuid.UUID) (*domain.Commission, error) {
	return m.transition(id, domain.CommissionProcessed, func(c *domain.Commission) {
		if c.ProcessedAt == nil {
			now := time.Now()
			c.ProcessedAt = &now
		}
		c.DisputeReason = ""
	})
}

func (m *memLedger) MarkPaidOut(_ context.Context, id uuid.UUID) (*domain.Commission, error) {
	return m.transition(id, domain.CommissionPaidOut, func(c *domain.Commission) {
		now := time.Now()
		c.PaidOutAt = &now
	})
}

func (m *memLedger) Dispute(_ context.Context, id uuid.UUID, reason string) (*domain.Commission, error) {
	return m.transition(id, domain.CommissionDisputed, func(c *domain.Commission) {
		c.DisputeReason = reason
	})
}

func (m *memLedger) Resolve(_ context.Context, id uuid.UUID, to domain.CommissionStatus) (*domain.Commission, error) {
	mutate := func(c *domain.Commission) {
		if to == domain.CommissionProcessed && c.ProcessedAt == nil {
			now := time.Now()
			c.ProcessedAt = &now
		}
	}
	return m.transition(id, to, mutate)
}

func (m *memLedger) Hold(_ context.Context, id uuid.UUID) (*domain.Commission, error) {
	return m.transition(id, domain.CommissionOnHold, nil)
}

func (m *memLedger) ReleaseHold(_ context.Context, id uuid.UUID) (*domain.Commission, error) {
	m.mu.Lock()
	target := domain.CommissionPending
	if c, ok := m.byID[id]; ok && c.ProcessedAt != nil {
		target = domain.CommissionProcessed
	}
	m.mu.Unlock()

	return m.transition(id, target, nil)
}

func (m *memLedger) ListForHost(_ context.Context, hostID int64, limit, offset int) ([]domain.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastLimit = limit

	var out []domain.Commission
	for _, c := range m.byID {
		if c.HostID == hostID {
			out = append(out, *c)
		}
	}

	return out, nil
}

func (m *memLedger) transition(id uuid.UUID, to domain.CommissionStatus, mutate func(*domain.Commission)) (*domain.Commission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	if !c.Status.CanTransitionTo(to) {
		return nil, repository.ErrInvalidTransition
	}

	c.Status = to
	if mutate != nil {
		mutate(c)
	}
	c.UpdatedAt = time.Now()

	cp := *c
	return &cp, nil
}

var (
	admin     = domain.Actor{UserID: 1, Role: domain.RoleAdmin}
	theHost   = domain.Actor{UserID: 3, Role: domain.RoleHost}
	otherHost = domain.Actor{UserID: 4, Role: domain.RoleHost}
)

func completedBooking(totalCents int64) domain.Booking {
	return domain.Booking{
		ID:         uuid.New(),
		ActivityID: 1,
		GuestID:    7,
		HostID:     theHost.UserID,
		Guests:     1,
		Status:     domain.BookingCompleted,
		TotalCents: totalCents,
	}
}

func TestProcessForBooking_SettlesOnce(t *testing.T) {
	ledger := newMemLedger()
	b := completedBooking(10000)
	ledger.addBooking(b, domain.TierPremium)

	svc := New(ledger, nil, nil)
	ctx := context.Background()

	c, err := svc.ProcessForBooking(ctx, b.ID)
	require.NoError(t, err)

	// premium tier: 8% of $100
	assert.Equal(t, domain.CommissionPending, c.Status)
	assert.Equal(t, int64(800), c.RateBps)
	assert.Equal(t, int64(800), c.CommissionCents)
	assert.Equal(t, int64(9200), c.HostEarningsCents)

	_, err = svc.ProcessForBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrDuplicateCommission)

	got, err := svc.ByBooking(ctx, admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestProcessForBooking_RequiresCompleted(t *testing.T) {
	ledger := newMemLedger()
	b := completedBooking(5000)
	b.Status = domain.BookingConfirmed
	ledger.addBooking(b, domain.TierBasic)

	svc := New(ledger, nil, nil)
	ctx := context.Background()

	_, err := svc.ProcessForBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrBookingNotCompleted)

	_, err = svc.ProcessForBooking(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestPayout_RequiresProcessed(t *testing.T) {
	ledger := newMemLedger()
	b := completedBooking(10000)
	ledger.addBooking(b, domain.TierBasic)

	svc := New(ledger, nil, nil)
	ctx := context.Background()

	c, err := svc.ProcessForBooking(ctx, b.ID)
	require.NoError(t, err)

	// pending cannot be paid out directly
	_, err = svc.MarkPaidOut(ctx, admin, c.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	processed, err := svc.MarkProcessed(ctx, admin, c.ID)
	require.NoError(t, err)
	require.NotNil(t, processed.ProcessedAt)

	paid, err := svc.MarkPaidOut(ctx, admin, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionPaidOut, paid.Status)
	require.NotNil(t, paid.PaidOutAt)

	// paid_out is terminal
	_, err = svc.MarkProcessed(ctx, admin, c.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDispute_Authorization(t *testing.T) {
	ledger := newMemLedger()
	b := completedBooking(10000)
	ledger.addBooking(b, domain.TierBasic)

	svc := New(ledger, nil, nil)
	ctx := context.Background()

	c, err := svc.ProcessForBooking(ctx, b.ID)
	require.NoError(t, err)

	_, err = svc.Dispute(ctx, otherHost, c.ID, "not mine")
	assert.ErrorIs(t, err, ErrNotAllowed)

	disputed, err := svc.Dispute(ctx, theHost, c.ID, "guest no-show")
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionDisputed, disputed.Status)
	assert.Equal(t, "guest no-show", disputed.DisputeReason)
}

func TestResolveDispute_BothOutcomes(t *testing.T) {
	ledger := newMemLedger()
	svc := New(ledger, nil, nil)
	ctx := context.Background()

	mkDisputed := func() uuid.UUID {
		b := completedBooking(10000)
		ledger.addBooking(b, domain.TierBasic)
		c, err := svc.ProcessForBooking(ctx, b.ID)
		require.NoError(t, err)
		_, err = svc.Dispute(ctx, theHost, c.ID, "amount wrong")
		require.NoError(t, err)
		return c.ID
	}

	upheld := mkDisputed()
	c, err := svc.ResolveDispute(ctx, admin, upheld, domain.ResolutionUpheld)
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionProcessed, c.Status)

	refunded := mkDisputed()
	c, err = svc.ResolveDispute(ctx, admin, refunded, domain.ResolutionRefunded)
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionCancelled, c.Status)

	_, err = svc.ResolveDispute(ctx, admin, upheld, domain.DisputeResolution("split"))
	assert.ErrorIs(t, err, ErrInvalidResolution)

	_, err = svc.ResolveDispute(ctx, theHost, upheld, domain.ResolutionUpheld)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestHold_ReleasesToPreHoldPoint(t *testing.T) {
	ledger := newMemLedger()
	svc := New(ledger, nil, nil)
	ctx := context.Background()

	settle := func() uuid.UUID {
		b := completedBooking(10000)
		ledger.addBooking(b, domain.TierBasic)
		c, err := svc.ProcessForBooking(ctx, b.ID)
		require.NoError(t, err)
		return c.ID
	}

	// held from pending resumes at pending
	fromPending := settle()
	_, err := svc.Hold(ctx, admin, fromPending)
	require.NoError(t, err)
	c, err := svc.ReleaseHold(ctx, admin, fromPending)
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionPending, c.Status)

	// held from processed resumes at processed
	fromProcessed := settle()
	_, err = svc.MarkProcessed(ctx, admin, fromProcessed)
	require.NoError(t, err)
	_, err = svc.Hold(ctx, admin, fromProcessed)
	require.NoError(t, err)
	c, err = svc.ReleaseHold(ctx, admin, fromProcessed)
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionProcessed, c.Status)
}

func TestProcessBulkPayout_PartialFailure(t *testing.T) {
	ledger := newMemLedger()
	svc := New(ledger, nil, nil)
	ctx := context.Background()

	settle := func() uuid.UUID {
		b := completedBooking(10000)
		ledger.addBooking(b, domain.TierBasic)
		c, err := svc.ProcessForBooking(ctx, b.ID)
		require.NoError(t, err)
		return c.ID
	}

	payable := settle()
	_, err := svc.MarkProcessed(ctx, admin, payable)
	require.NoError(t, err)

	stillPending := settle()
	unknown := uuid.New()

	res, err := svc.ProcessBulkPayout(ctx, admin, []uuid.UUID{payable, stillPending, unknown})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Paid)
	require.Len(t, res.Failures, 2)

	byID := map[uuid.UUID]error{}
	for _, f := range res.Failures {
		byID[f.CommissionID] = f.Err
	}
	assert.ErrorIs(t, byID[stillPending], ErrInvalidTransition)
	assert.ErrorIs(t, byID[unknown], ErrCommissionNotFound)

	got, err := svc.Get(ctx, admin, payable)
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionPaidOut, got.Status)

	_, err = svc.ProcessBulkPayout(ctx, theHost, []uuid.UUID{payable})
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestVisibility_HostSeesOnlyOwn(t *testing.T) {
	ledger := newMemLedger()
	b := completedBooking(10000)
	ledger.addBooking(b, domain.TierBasic)

	svc := New(ledger, nil, nil)
	ctx := context.Background()

	c, err := svc.ProcessForBooking(ctx, b.ID)
	require.NoError(t, err)

	_, err = svc.Get(ctx, otherHost, c.ID)
	assert.ErrorIs(t, err, ErrNotAllowed)

	got, err := svc.Get(ctx, theHost, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = svc.ListForHost(ctx, otherHost, theHost.UserID, 10, 0)
	assert.ErrorIs(t, err, ErrNotAllowed)

	list, err := svc.ListForHost(ctx, theHost, theHost.UserID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestListForHost_ClampsPageSize(t *testing.T) {
	ledger := newMemLedger()
	svc := New(ledger, nil, nil)
	ctx := context.Background()

	_, err := svc.ListForHost(ctx, theHost, theHost.UserID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 50, ledger.lastLimit)

	_, err = svc.ListForHost(ctx, theHost, theHost.UserID, 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, 200, ledger.lastLimit)

	_, err = svc.ListForHost(ctx, theHost, theHost.UserID, 25, 0)
	require.NoError(t, err)
	assert.Equal(t, 25, ledger.lastLimit)
}
