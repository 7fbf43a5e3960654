package service

import (
	"math"
	"time"

	"parking_management/internal/domain"
)

// ComputeCost bills the occupancy [start, end) against the tariff. Elapsed
// minutes round up, the free allowance comes off first, and the remainder is
// charged in whole billing steps: a started step is a paid step.
func ComputeCost(tariff *domain.Tariff, start, end time.Time) float64 {
	elapsed := int(math.Ceil(end.Sub(start).Minutes()))
	billable := elapsed - tariff.FreeMinutes
	if billable <= 0 {
		return 0
	}
	steps := (billable + tariff.BillingStepMinutes - 1) / tariff.BillingStepMinutes
	return float64(steps) * tariff.HourPrice / 60 * float64(tariff.BillingStepMinutes)
}
