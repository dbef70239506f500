package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ivT(t *testing.T, start, end string) Interval {
	t.Helper()
	s, err := time.Parse("15:04", start)
	require.NoError(t, err)
	e, err := time.Parse("15:04", end)
	require.NoError(t, err)
	return Interval{Start: s, End: e}
}

func TestInterval_Overlaps(t *testing.T) {
	tests := []struct {
		name      string
		candidate Interval
		existing  Interval
		want      bool
	}{
		{
			name:      "disjoint before",
			candidate: ivT(t, "08:00", "09:00"),
			existing:  ivT(t, "10:00", "11:00"),
			want:      false,
		},
		{
			name:      "disjoint after",
			candidate: ivT(t, "12:00", "13:00"),
			existing:  ivT(t, "10:00", "11:00"),
			want:      false,
		},
		{
			name:      "exact match",
			candidate: ivT(t, "10:00", "11:00"),
			existing:  ivT(t, "10:00", "11:00"),
			want:      true,
		},
		{
			name:      "nested",
			candidate: ivT(t, "10:15", "10:45"),
			existing:  ivT(t, "10:00", "11:00"),
			want:      true,
		},
		{
			name:      "overlapping left",
			candidate: ivT(t, "09:30", "10:30"),
			existing:  ivT(t, "10:00", "11:00"),
			want:      true,
		},
		{
			name:      "overlapping right",
			candidate: ivT(t, "10:30", "11:30"),
			existing:  ivT(t, "10:00", "11:00"),
			want:      true,
		},
		{
			name:      "touching boundary, candidate first",
			candidate: ivT(t, "09:00", "10:00"),
			existing:  ivT(t, "10:00", "11:00"),
			want:      false,
		},
		{
			name:      "touching boundary, existing first",
			candidate: ivT(t, "11:00", "12:00"),
			existing:  ivT(t, "10:00", "11:00"),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.candidate.Overlaps(tt.existing))
			// overlap is symmetric
			assert.Equal(t, tt.want, tt.existing.Overlaps(tt.candidate))
			// availability is the negation against a single existing interval
			assert.Equal(t, !tt.want, IsAvailable(tt.candidate, []Interval{tt.existing}))
		})
	}
}

func TestIsAvailable_MultipleExisting(t *testing.T) {
	existing := []Interval{
		ivT(t, "09:00", "10:00"),
		ivT(t, "11:00", "12:00"),
	}

	// back-to-back slot between the two is free under the half-open rule
	assert.True(t, IsAvailable(ivT(t, "10:00", "11:00"), existing))
	assert.False(t, IsAvailable(ivT(t, "09:30", "10:30"), existing))
	assert.True(t, IsAvailable(ivT(t, "12:00", "13:00"), nil))
}

func TestInterval_Valid(t *testing.T) {
	assert.True(t, ivT(t, "10:00", "11:00").Valid())
	assert.False(t, ivT(t, "11:00", "10:00").Valid())

	point := ivT(t, "10:00", "10:00")
	assert.False(t, point.Valid())
}
