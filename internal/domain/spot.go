package domain

import "time"

type SpotType string

const (
	SpotStandard SpotType = "STANDARD"
	SpotElectric SpotType = "ELECTRIC"
	SpotTruck    SpotType = "TRUCK"
	SpotDisabled SpotType = "DISABLED"
)

func (t SpotType) Valid() bool {
	switch t {
	case SpotStandard, SpotElectric, SpotTruck, SpotDisabled:
		return true
	}
	return false
}

type SpotStatus string

const (
	SpotAvailable    SpotStatus = "AVAILABLE"
	SpotOccupied     SpotStatus = "OCCUPIED"
	SpotOutOfService SpotStatus = "OUT_OF_SERVICE"
)

func (s SpotStatus) Valid() bool {
	switch s {
	case SpotAvailable, SpotOccupied, SpotOutOfService:
		return true
	}
	return false
}

// Spot is a single physical parking location. Its status is a projection of
// the active sessions referencing it: at most one ACTIVE session per spot.
type Spot struct {
	ID           int64      `json:"id"`
	Number       int        `json:"number"`
	Type         SpotType   `json:"type"`
	Status       SpotStatus `json:"status"`
	ParkingLotID int64      `json:"parking_lot_id"`
	Level        int        `json:"level"`
	Created      time.Time  `json:"created"`
	Changed      time.Time  `json:"changed"`
}

type SpotCreateDTO struct {
	Number       int      `json:"number" binding:"required"`
	Type         SpotType `json:"type" binding:"required"`
	ParkingLotID int64    `json:"parking_lot_id" binding:"required"`
	Level        int      `json:"level"`
}

type SpotUpdateDTO struct {
	Type  SpotType `json:"type" binding:"required"`
	Level int      `json:"level"`
}

type SpotStatusUpdateDTO struct {
	Status SpotStatus `json:"status" binding:"required"`
}
