package domain

import "time"

type ParkingLotStatus string

const (
	LotOpen   ParkingLotStatus = "OPEN"
	LotClosed ParkingLotStatus = "CLOSED"
)

func (s ParkingLotStatus) Valid() bool {
	return s == LotOpen || s == LotClosed
}

type ParkingLot struct {
	ID       int64            `json:"id"`
	Name     string           `json:"name"`
	Address  string           `json:"address"`
	Status   ParkingLotStatus `json:"status"`
	TariffID int64            `json:"tariff_id"`
	Created  time.Time        `json:"created"`
	Changed  time.Time        `json:"changed"`
}

type ParkingLotCreateUpdateDTO struct {
	Name     string `json:"name" binding:"required"`
	Address  string `json:"address" binding:"required"`
	TariffID int64  `json:"tariff_id" binding:"required"`
}

type ParkingLotStatusUpdateDTO struct {
	Status ParkingLotStatus `json:"status" binding:"required"`
}
