package domain

import "time"

type TariffStatus string

const (
	TariffActive   TariffStatus = "ACTIVE"
	TariffInactive TariffStatus = "INACTIVE"
)

func (s TariffStatus) Valid() bool {
	return s == TariffActive || s == TariffInactive
}

// Tariff is the pricing policy applied when a parking session finishes:
// hourly rate, a free allowance and the billing granularity in minutes.
type Tariff struct {
	ID                 int64        `json:"id"`
	Name               string       `json:"name"`
	HourPrice          float64      `json:"hour_price"`
	BillingStepMinutes int          `json:"billing_step_minutes"`
	FreeMinutes        int          `json:"free_minutes"`
	Status             TariffStatus `json:"status"`
	Created            time.Time    `json:"created"`
	Changed            time.Time    `json:"changed"`
}

type TariffCreateUpdateDTO struct {
	Name               string  `json:"name" binding:"required"`
	HourPrice          float64 `json:"hour_price" binding:"required,gt=0"`
	BillingStepMinutes int     `json:"billing_step_minutes" binding:"required,gt=0"`
	FreeMinutes        int     `json:"free_minutes" binding:"gte=0"`
}

type TariffStatusUpdateDTO struct {
	Status TariffStatus `json:"status" binding:"required"`
}
