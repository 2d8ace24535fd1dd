package domain

import "time"

// TrackingSnapshot is the provider's reported state for one tracking number
// at fetch time. Produced once per reconciliation pass and discarded after
// the diff step.
type TrackingSnapshot struct {
	TrackingNumber string
	Status         Status
	// FirstActivity and LastActivity bound the provider's activity history
	// for this packet. FirstActivity feeds the picking timestamp on the
	// first picked transition; LastActivity feeds last_activity.
	FirstActivity time.Time
	LastActivity  time.Time
}

// City is one entry of the provider's city directory.
type City struct {
	Code int
	Name string
}

// StatusChangeEvent describes one genuine status transition. Emitted exactly
// once per shipment whose stored status actually changed, then consumed by
// the notification dispatcher.
type StatusChangeEvent struct {
	TrackingNumber string
	OrderID        string
	OldStatus      Status
	NewStatus      Status
	ConsigneeName  string
	CODAmount      float64
	PickupDate     *time.Time
	CityName       string
}
