package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type SessionStatus string

const (
	SessionActive   SessionStatus = "ACTIVE"
	SessionFinished SessionStatus = "FINISHED"
)

// ParkingSession records actual physical occupancy of a spot by a vehicle.
// ACTIVE sessions have no end time; FINISHED sessions always do.
// ReservationID is set at creation time only, when the session was started
// from a reservation.
type ParkingSession struct {
	ID            int64         `json:"id"`
	VehicleID     int64         `json:"vehicle_id"`
	SpotID        int64         `json:"spot_id"`
	StartTime     time.Time     `json:"start_time"`
	EndTime       null.Time     `json:"end_time"`
	Status        SessionStatus `json:"status"`
	ReservationID null.Int      `json:"reservation_id"`
	TotalCost     null.Float    `json:"total_cost"`
	Created       time.Time     `json:"created"`
	Changed       time.Time     `json:"changed"`
}

type ParkingSessionCreateDTO struct {
	VehicleID     int64  `json:"vehicle_id" binding:"required"`
	SpotID        int64  `json:"spot_id" binding:"required"`
	ReservationID *int64 `json:"reservation_id"`
}
