package httpgin

import "time"

type CreateBookingRequest struct {
	StartsAt string `json:"starts_at" binding:"required"`
	EndsAt   string `json:"ends_at" binding:"required"`
	Guests   int    `json:"guests" binding:"required,gt=0"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type RefundBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type CreateActivityRequest struct {
	HostID     int64  `json:"host_id"`
	Title      string `json:"title" binding:"required"`
	PriceCents int64  `json:"price_cents" binding:"gte=0"`
	Capacity   int    `json:"capacity" binding:"required,gt=0"`
	Featured   bool   `json:"featured"`
}

type DisputeCommissionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" binding:"required,oneof=upheld refunded"`
}

type BulkPayoutRequest struct {
	CommissionIDs []string `json:"commission_ids" binding:"required,min=1,dive,uuid"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateBookingResponse struct {
	BookingID        string `json:"booking_id"`
	ConfirmationCode string `json:"confirmation_code"`
	TotalCents       int64  `json:"total_cents"`
}

type CreateActivityResponse struct {
	ActivityID int64 `json:"activity_id"`
}

type SweepResponse struct {
	Completed int `json:"completed"`
}

type BulkPayoutResponse struct {
	Paid     int             `json:"paid"`
	Failures []PayoutFailure `json:"failures"`
}

type PayoutFailure struct {
	CommissionID string `json:"commission_id"`
	Error        string `json:"error"`
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
