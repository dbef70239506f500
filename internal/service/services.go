package service

import (
	"log/slog"

	postgres "github.com/mkachur/bookgo/internal/repository/postgres"
	redis "github.com/mkachur/bookgo/internal/repository/redis"
	"github.com/mkachur/bookgo/internal/service/booking"
	"github.com/mkachur/bookgo/internal/service/catalog"
	"github.com/mkachur/bookgo/internal/service/commission"
)

type Services struct {
	Booking    *booking.Service
	Commission *commission.Service
	Catalog    *catalog.Service
}

type Config struct {
	Booking booking.Config
	Catalog catalog.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redis.MarketPubSub,
	limiter *redis.SlidingWindowLimiter,
	logger *slog.Logger,
	cfg Config,
) *Services {
	return &Services{
		Booking:    booking.New(store.Bookings(), store.Activities(), cache, pubsub, limiter, logger, cfg.Booking),
		Commission: commission.New(store.Commissions(), pubsub, logger),
		Catalog:    catalog.New(store, cache, pubsub, cfg.Catalog),
	}
}
