package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateCommission(t *testing.T) {
	tests := []struct {
		name           string
		bookingCents   int64
		tier           PlanTier
		wantRate       int64
		wantCommission int64
	}{
		{
			name:           "basic 10% of $100",
			bookingCents:   10000,
			tier:           TierBasic,
			wantRate:       1000,
			wantCommission: 1000,
		},
		{
			name:           "premium 8% of $100",
			bookingCents:   10000,
			tier:           TierPremium,
			wantRate:       800,
			wantCommission: 800,
		},
		{
			name:           "professional 6% of $49.99",
			bookingCents:   4999,
			tier:           TierProfessional,
			wantRate:       600,
			wantCommission: 300, // 299.94 rounds half-up
		},
		{
			name:           "enterprise 4% of $0.99",
			bookingCents:   99,
			tier:           TierEnterprise,
			wantRate:       400,
			wantCommission: 4, // 3.96 rounds half-up
		},
		{
			name:           "half cent rounds up",
			bookingCents:   125,
			tier:           TierBasic,
			wantRate:       1000,
			wantCommission: 13, // 12.5 -> 13
		},
		{
			name:           "zero amount",
			bookingCents:   0,
			tier:           TierBasic,
			wantRate:       1000,
			wantCommission: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := CalculateCommission(tt.bookingCents, tt.tier)
			require.NoError(t, err)

			assert.Equal(t, tt.wantRate, split.RateBps)
			assert.Equal(t, tt.wantCommission, split.CommissionCents)
			assert.Equal(t, tt.bookingCents-tt.wantCommission, split.HostEarningsCents)
		})
	}
}

// The split must be exact for any amount and tier: no rounding drift.
func TestCalculateCommission_Exactness(t *testing.T) {
	tiers := []PlanTier{TierBasic, TierPremium, TierProfessional, TierEnterprise}

	for _, tier := range tiers {
		for amount := int64(0); amount < 10000; amount += 7 {
			split, err := CalculateCommission(amount, tier)
			require.NoError(t, err)

			assert.Equal(t, amount, split.CommissionCents+split.HostEarningsCents,
				"amount=%d tier=%s", amount, tier)
			assert.GreaterOrEqual(t, split.CommissionCents, int64(0))
			assert.GreaterOrEqual(t, split.HostEarningsCents, int64(0))
		}
	}
}

func TestCalculateCommission_Errors(t *testing.T) {
	_, err := CalculateCommission(100, PlanTier("gold"))
	assert.ErrorIs(t, err, ErrUnknownTier)

	_, err = CalculateCommission(-1, TierBasic)
	assert.Error(t, err)
}

func TestPlanTier_Valid(t *testing.T) {
	assert.True(t, TierBasic.Valid())
	assert.True(t, TierEnterprise.Valid())
	assert.False(t, PlanTier("").Valid())
	assert.False(t, PlanTier("gold").Valid())
}
