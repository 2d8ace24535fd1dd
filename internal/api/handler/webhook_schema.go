package handler

import "time"

type statusWebhookRequest struct {
	TrackingNumber string    `json:"tracking_number" validate:"required"`
	Status         string    `json:"status"          validate:"required"`
	ActivityTime   time.Time `json:"activity_time"   validate:"required"`
}

type statusWebhookResponse struct {
	Outcome string `json:"outcome"`
}

type errorResponse struct {
	Error string `json:"error"`
}
