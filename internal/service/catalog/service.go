package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkachur/bookgo/internal/domain"
	"github.com/mkachur/bookgo/internal/repository"
	postgresrepo "github.com/mkachur/bookgo/internal/repository/postgres"
	redisrepo "github.com/mkachur/bookgo/internal/repository/redis"
	"github.com/mkachur/bookgo/internal/uow"
)

type Config struct {
	SummaryTTL      time.Duration
	AvailabilityTTL time.Duration
}

type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisrepo.MarketPubSub
	uow    *uow.UoW
	cfg    Config
}

func New(
	store *postgresrepo.Store,
	cache *redisrepo.Cache,
	pubsub *redisrepo.MarketPubSub,
	cfg Config,
) *Service {
	if cfg.SummaryTTL <= 0 {
		cfg.SummaryTTL = 60 * time.Second
	}

	if cfg.AvailabilityTTL <= 0 {
		cfg.AvailabilityTTL = 15 * time.Second
	}

	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
		cfg:    cfg,
	}
}

// CreateActivity lists a new bookable activity for a host.
//
// Returns:
//   - error: catalog.ErrNotHost unless the actor is a host or admin.
//   - error: catalog.ErrInvalidActivity on bad capacity, price or title.
//   - error: catalog.ErrActivityConflict on a duplicate listing.
func (s *Service) CreateActivity(ctx context.Context, actor domain.Actor, a *domain.Activity) (int64, error) {
	const op = "service.catalog.CreateActivity"

	if actor.Role != domain.RoleHost && actor.Role != domain.RoleAdmin {
		return 0, fmt.Errorf("%s: %w", op, ErrNotHost)
	}

	if strings.TrimSpace(a.Title) == "" || a.Capacity <= 0 || a.PriceCents < 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrInvalidActivity)
	}

	if actor.Role == domain.RoleHost {
		a.HostID = actor.UserID
	}
	if a.HostID == 0 {
		return 0, fmt.Errorf("%s: missing host: %w", op, ErrInvalidActivity)
	}

	var id int64

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		id, err = s.store.Activities().With(tx).Create(ctx, a)
		if err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return fmt.Errorf("%s: %w", op, ErrActivityConflict)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidateActivity(ctx, id)
		})

		return nil
	})

	return id, err
}

// GetActivity retrieves an activity through the cache.
func (s *Service) GetActivity(ctx context.Context, id int64) (*domain.Activity, error) {
	const op = "service.catalog.GetActivity"

	key := redisrepo.KeyActivitySummary(id)

	a, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.SummaryTTL,
		func(ctx context.Context) (domain.Activity, error) {
			got, err := s.store.Activities().Get(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.Activity{}, ErrActivityNotFound
				}

				return domain.Activity{}, err
			}

			return *got, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &a, nil
}

// Availability returns the capacity counters for an activity through the
// cache. The short TTL keeps the counters close to the ledger without
// hitting it on every poll.
func (s *Service) Availability(ctx context.Context, id int64) (*domain.ActivityAvailability, error) {
	const op = "service.catalog.Availability"

	key := redisrepo.KeyActivityAvailability(id)

	av, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.AvailabilityTTL,
		func(ctx context.Context) (domain.ActivityAvailability, error) {
			got, err := s.store.Activities().Availability(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.ActivityAvailability{}, ErrActivityNotFound
				}

				return domain.ActivityAvailability{}, err
			}

			return *got, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &av, nil
}
