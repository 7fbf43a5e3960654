package domain

import "time"

type VehicleType string

const (
	VehicleCar         VehicleType = "CAR"
	VehicleTruck       VehicleType = "TRUCK"
	VehicleElectricCar VehicleType = "ELECTRIC_CAR"
	VehicleMotorcycle  VehicleType = "MOTORCYCLE"
)

func (t VehicleType) Valid() bool {
	switch t {
	case VehicleCar, VehicleTruck, VehicleElectricCar, VehicleMotorcycle:
		return true
	}
	return false
}

type Vehicle struct {
	ID          int64       `json:"id"`
	PlateNumber string      `json:"plate_number"`
	Type        VehicleType `json:"type"`
	UserID      int64       `json:"user_id"`
	Created     time.Time   `json:"created"`
	Changed     time.Time   `json:"changed"`
}

type VehicleCreateUpdateDTO struct {
	PlateNumber string      `json:"plate_number" binding:"required"`
	Type        VehicleType `json:"type" binding:"required"`
	UserID      int64       `json:"user_id" binding:"required"`
}
