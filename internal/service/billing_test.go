package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"parking_management/internal/domain"
)

func TestComputeCost(t *testing.T) {
	tariff := &domain.Tariff{
		HourPrice:          60.00,
		BillingStepMinutes: 15,
		FreeMinutes:        10,
	}
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		tariff   *domain.Tariff
		duration time.Duration
		want     float64
	}{
		{
			name:     "forty minutes bills two steps",
			tariff:   tariff,
			duration: 40 * time.Minute,
			want:     30.00,
		},
		{
			name:     "within free allowance is free",
			tariff:   tariff,
			duration: 10 * time.Minute,
			want:     0,
		},
		{
			name:     "one minute past free allowance bills a full step",
			tariff:   tariff,
			duration: 11 * time.Minute,
			want:     15.00,
		},
		{
			name:     "exact step boundary does not roll into the next step",
			tariff:   tariff,
			duration: 25 * time.Minute,
			want:     15.00,
		},
		{
			name:     "zero duration is free",
			tariff:   tariff,
			duration: 0,
			want:     0,
		},
		{
			name:     "partial minute rounds up before the step",
			tariff:   tariff,
			duration: 10*time.Minute + time.Second,
			want:     15.00,
		},
		{
			name: "no free allowance",
			tariff: &domain.Tariff{
				HourPrice:          30.00,
				BillingStepMinutes: 60,
				FreeMinutes:        0,
			},
			duration: 90 * time.Minute,
			want:     60.00,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCost(tt.tariff, start, start.Add(tt.duration))
			assert.InDelta(t, tt.want, got, 0.001)
		})
	}
}
