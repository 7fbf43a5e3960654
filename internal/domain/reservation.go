package domain

import "time"

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "ACTIVE"
	ReservationExpired   ReservationStatus = "EXPIRED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationActive, ReservationExpired, ReservationCancelled:
		return true
	}
	return false
}

// Reservation is a time-windowed hold on a spot for a specific vehicle.
// The window is half-open: [StartTime, EndTime).
type Reservation struct {
	ID        int64             `json:"id"`
	VehicleID int64             `json:"vehicle_id"`
	SpotID    int64             `json:"spot_id"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time"`
	Status    ReservationStatus `json:"status"`
	Created   time.Time         `json:"created"`
	Changed   time.Time         `json:"changed"`
}

type ReservationCreateDTO struct {
	VehicleID int64     `json:"vehicle_id" binding:"required"`
	SpotID    int64     `json:"spot_id" binding:"required"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

type ReservationUpdateDTO struct {
	EndTime time.Time `json:"end_time" binding:"required"`
}

type ReservationStatusUpdateDTO struct {
	Status ReservationStatus `json:"status" binding:"required"`
}
