package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MarketPubSub is the fire-and-forget notification dispatch. Publishes are
// best-effort; delivery and retries belong to the consumer side.
type MarketPubSub struct {
	rdb *redis.Client
}

func NewMarketPubSub(rdb *redis.Client) *MarketPubSub {
	return &MarketPubSub{rdb: rdb}
}

type BookingChangedMsg struct {
	Type       string    `json:"type"`
	ActivityID int64     `json:"activity_id"`
	BookingID  uuid.UUID `json:"booking_id"`
	Status     string    `json:"status"`
	TsUnix     int64     `json:"ts_unix"`
}

type CommissionChangedMsg struct {
	Type         string    `json:"type"`
	CommissionID uuid.UUID `json:"commission_id"`
	HostID       int64     `json:"host_id"`
	Status       string    `json:"status"`
	TsUnix       int64     `json:"ts_unix"`
}

func (p *MarketPubSub) PublishBookingChanged(
	ctx context.Context,
	activityID int64,
	bookingID uuid.UUID,
	status string,
) error {
	msg := BookingChangedMsg{
		Type:       "booking_changed",
		ActivityID: activityID,
		BookingID:  bookingID,
		Status:     status,
		TsUnix:     time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, ChannelBookingsChanged(), b).Err()
}

func (p *MarketPubSub) PublishCommissionChanged(
	ctx context.Context,
	commissionID uuid.UUID,
	hostID int64,
	status string,
) error {
	msg := CommissionChangedMsg{
		Type:         "commission_changed",
		CommissionID: commissionID,
		HostID:       hostID,
		Status:       status,
		TsUnix:       time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, ChannelCommissionsChanged(), b).Err()
}

// SubscribeBookings feeds booking change messages to handler until ctx ends.
// Used by the out-of-process notification consumer.
func (p *MarketPubSub) SubscribeBookings(
	ctx context.Context,
	handler func(ctx context.Context, msg BookingChangedMsg),
) error {
	sub := p.rdb.Subscribe(ctx, ChannelBookingsChanged())
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg BookingChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &msg); err == nil &&
				msg.BookingID != uuid.Nil {
				handler(ctx, msg)
			}
		}
	}
}
