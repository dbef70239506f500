package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

// Actor is the authenticated identity performing an operation. Identity and
// role are supplied by the surrounding auth layer and trusted as given.
type Actor struct {
	UserID int64
	Role   Role
}

type PlanTier string

const (
	TierBasic        PlanTier = "basic"
	TierPremium      PlanTier = "premium"
	TierProfessional PlanTier = "professional"
	TierEnterprise   PlanTier = "enterprise"
)

func (t PlanTier) Valid() bool {
	switch t {
	case TierBasic, TierPremium, TierProfessional, TierEnterprise:
		return true
	}
	return false
}

// Activity is a bookable experience with finite per-slot capacity.
// BookedCapacity is mutated only through the capacity ledger and holds
// 0 <= BookedCapacity <= Capacity at all times.
type Activity struct {
	ID             int64
	HostID         int64
	Title          string
	PriceCents     int64
	Capacity       int
	BookedCapacity int
	Active         bool
	Featured       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ActivityAvailability struct {
	Capacity       int
	Booked         int
	Remaining      int
	ActiveBookings int64
}

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingRefunded  BookingStatus = "refunded"
)

type Booking struct {
	ID                 uuid.UUID
	ActivityID         int64
	GuestID            int64
	HostID             int64
	Guests             int
	Starts             time.Time
	Ends               time.Time
	Status             BookingStatus
	TotalCents         int64
	ConfirmationCode   string
	CancellationReason string
	CancelledAt        *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Window returns the reserved half-open interval [Starts, Ends).
func (b *Booking) Window() Interval {
	return Interval{Start: b.Starts, End: b.Ends}
}

type CommissionStatus string

const (
	CommissionPending   CommissionStatus = "pending"
	CommissionProcessed CommissionStatus = "processed"
	CommissionPaidOut   CommissionStatus = "paid_out"
	CommissionDisputed  CommissionStatus = "disputed"
	CommissionOnHold    CommissionStatus = "on_hold"
	CommissionCancelled CommissionStatus = "cancelled"
)

// Commission is the platform's cut of a completed booking. The amounts hold
// CommissionCents + HostEarningsCents == BookingCents exactly; there is at
// most one commission per booking.
type Commission struct {
	ID                uuid.UUID
	BookingID         uuid.UUID
	HostID            int64
	ActivityID        int64
	BookingCents      int64
	RateBps           int64
	CommissionCents   int64
	HostEarningsCents int64
	Status            CommissionStatus
	DisputeReason     string
	ProcessedAt       *time.Time
	PaidOutAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
