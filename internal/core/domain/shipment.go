package domain

import (
	"errors"
	"time"
)

// Status is a courier-reported shipment status. The vocabulary is owned by
// the provider and is not contractually fixed, so it stays an open string
// rather than a closed enum.
type Status string

const (
	// StatusPicked is the canonical "picked up" status. The first transition
	// into it stamps the shipment's picking time.
	StatusPicked Status = "Shipment Picked"

	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

// terminalStatuses are statuses after which no further reconciliation is
// expected. Shipments in these states are excluded from the open set.
var terminalStatuses = map[Status]struct{}{
	StatusDelivered: {},
	StatusCancelled: {},
}

// problemStatuses select the "delivery failed" notification subject. Purely
// presentational; membership here never affects how an update is applied.
var problemStatuses = map[Status]struct{}{
	"Pending":      {},
	"Being Return": {},
}

// IsTerminal reports whether s ends the shipment's reconciliation lifecycle.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// IsProblem reports whether s indicates a failed or returned delivery.
func (s Status) IsProblem() bool {
	_, ok := problemStatuses[s]
	return ok
}

// TerminalStatuses returns the terminal status set for store queries.
func TerminalStatuses() []Status {
	return []Status{StatusCancelled, StatusDelivered}
}

var ErrShipmentNotFound = errors.New("shipment not found")
var ErrProviderUnavailable = errors.New("tracking provider unavailable")
var ErrProviderFailed = errors.New("tracking provider reported failure")
var ErrPassRunning = errors.New("reconciliation pass already running")

// Shipment is the locally persisted shipment record. It is created at
// booking time and mutated only through conditional status updates, keyed
// by the provider-assigned tracking number.
type Shipment struct {
	ID               string     `json:"id" bson:"_id,omitempty"`
	TrackingNumber   string     `json:"tracking_number" bson:"tracking_number"`
	OrderID          string     `json:"order_id" bson:"order_id"`
	ConsigneeName    string     `json:"consignee_name" bson:"consignee_name"`
	ConsigneePhone   string     `json:"consignee_phone" bson:"consignee_phone"`
	ConsigneeAddress string     `json:"consignee_address" bson:"consignee_address"`
	DestinationCity  int        `json:"destination_city" bson:"destination_city"`
	Status           Status     `json:"status" bson:"status"`
	CODAmount        float64    `json:"cod_amount" bson:"cod_amount"`
	PickingTime      *time.Time `json:"picking_time,omitempty" bson:"picking_time,omitempty"`
	LastActivity     time.Time  `json:"last_activity" bson:"last_activity"`
	IsCancelled      bool       `json:"is_cancelled" bson:"is_cancelled"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" bson:"updated_at"`
}
