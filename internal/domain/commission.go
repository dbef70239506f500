package domain

import (
	"errors"
	"fmt"
)

var ErrUnknownTier = errors.New("unknown plan tier")

// Commission rates in basis points, keyed by the closed tier set.
const (
	rateBasicBps        = 1000
	ratePremiumBps      = 800
	rateProfessionalBps = 600
	rateEnterpriseBps   = 400
)

type CommissionSplit struct {
	RateBps           int64
	CommissionCents   int64
	HostEarningsCents int64
}

// CommissionRateBps returns the platform's cut for a host tier.
func CommissionRateBps(tier PlanTier) (int64, error) {
	switch tier {
	case TierBasic:
		return rateBasicBps, nil
	case TierPremium:
		return ratePremiumBps, nil
	case TierProfessional:
		return rateProfessionalBps, nil
	case TierEnterprise:
		return rateEnterpriseBps, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
}

// CalculateCommission splits a booking amount between platform and host.
// The commission is rounded half-up to whole cents; host earnings are the
// remainder, never rounded independently, so
// CommissionCents + HostEarningsCents == bookingCents always holds.
func CalculateCommission(bookingCents int64, tier PlanTier) (CommissionSplit, error) {
	if bookingCents < 0 {
		return CommissionSplit{}, fmt.Errorf("negative booking amount: %d", bookingCents)
	}

	rate, err := CommissionRateBps(tier)
	if err != nil {
		return CommissionSplit{}, err
	}

	commission := (bookingCents*rate + 5000) / 10000

	return CommissionSplit{
		RateBps:           rate,
		CommissionCents:   commission,
		HostEarningsCents: bookingCents - commission,
	}, nil
}
