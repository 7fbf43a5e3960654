package service

import "parking_management/internal/domain"

// SpotNotifier receives spot status transitions as they happen. The HTTP
// layer fans them out to websocket subscribers; tests plug in the no-op.
type SpotNotifier interface {
	NotifySpotStatus(spot *domain.Spot)
}

type noopNotifier struct{}

func (noopNotifier) NotifySpotStatus(*domain.Spot) {}

func NopNotifier() SpotNotifier { return noopNotifier{} }
