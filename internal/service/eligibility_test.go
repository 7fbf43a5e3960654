package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"parking_management/internal/domain"
)

func TestCheckEligibility(t *testing.T) {
	active := &domain.User{Status: domain.UserActive}
	blocked := &domain.User{Status: domain.UserBlocked}
	permitted := &domain.User{Status: domain.UserActive, DisabledPermit: true}

	car := &domain.Vehicle{Type: domain.VehicleCar}
	electric := &domain.Vehicle{Type: domain.VehicleElectricCar}
	truck := &domain.Vehicle{Type: domain.VehicleTruck}

	tests := []struct {
		name    string
		user    *domain.User
		vehicle *domain.Vehicle
		spot    *domain.Spot
		wantErr error
	}{
		{"active user on standard spot", active, car, &domain.Spot{Type: domain.SpotStandard}, nil},
		{"blocked user is refused everywhere", blocked, car, &domain.Spot{Type: domain.SpotStandard}, ErrUserNotActive},
		{"blocked user check runs before vehicle type", blocked, car, &domain.Spot{Type: domain.SpotElectric}, ErrUserNotActive},
		{"car on electric spot", active, car, &domain.Spot{Type: domain.SpotElectric}, ErrVehicleTypeMismatch},
		{"electric car on electric spot", active, electric, &domain.Spot{Type: domain.SpotElectric}, nil},
		{"car on truck spot", active, car, &domain.Spot{Type: domain.SpotTruck}, ErrVehicleTypeMismatch},
		{"truck on truck spot", active, truck, &domain.Spot{Type: domain.SpotTruck}, nil},
		{"truck on standard spot", active, truck, &domain.Spot{Type: domain.SpotStandard}, nil},
		{"disabled spot without permit", active, car, &domain.Spot{Type: domain.SpotDisabled}, ErrPermitRequired},
		{"disabled spot with permit", permitted, car, &domain.Spot{Type: domain.SpotDisabled}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckEligibility(tt.user, tt.vehicle, tt.spot)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}
