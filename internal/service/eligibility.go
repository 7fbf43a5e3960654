package service

import "parking_management/internal/domain"

// CheckEligibility validates that the vehicle and its owner may occupy the
// spot. Rules run in order and the first violation wins. It is applied when
// a reservation is booked and when a session starts directly; a session
// started from a reservation inherits the eligibility established at booking
// time and is not re-checked.
func CheckEligibility(user *domain.User, vehicle *domain.Vehicle, spot *domain.Spot) error {
	if user.Status != domain.UserActive {
		return ErrUserNotActive
	}
	switch spot.Type {
	case domain.SpotElectric:
		if vehicle.Type != domain.VehicleElectricCar {
			return ErrVehicleTypeMismatch
		}
	case domain.SpotTruck:
		if vehicle.Type != domain.VehicleTruck {
			return ErrVehicleTypeMismatch
		}
	case domain.SpotDisabled:
		if !user.DisabledPermit {
			return ErrPermitRequired
		}
	}
	return nil
}
