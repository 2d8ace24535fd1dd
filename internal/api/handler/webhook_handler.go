package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zebtan/courier-backoffice/internal/core/domain"
	"github.com/zebtan/courier-backoffice/internal/core/ports"
)

// StatusApplier applies a pushed status update through the conditional
// store path, notifying on a genuine transition.
type StatusApplier interface {
	ApplyExternal(ctx context.Context, trackingNumber string, status domain.Status, activity ports.ActivityWindow) (ports.UpdateOutcome, error)
}

// WebhookHandler ingests provider status pushes. It is the second writer of
// shipment status besides the reconciliation pass; both funnel through the
// same atomic conditional update.
type WebhookHandler struct {
	applier StatusApplier
}

func NewWebhookHandler(applier StatusApplier) *WebhookHandler {
	return &WebhookHandler{applier: applier}
}

// Receive handles POST /v1/webhooks/status.
//
// @Summary      Apply a pushed shipment status update
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      statusWebhookRequest  true  "Status update"
// @Success      200   {object}  statusWebhookResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/webhooks/status [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	var req statusWebhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	outcome, err := h.applier.ApplyExternal(
		c.Request().Context(),
		req.TrackingNumber,
		domain.Status(req.Status),
		ports.ActivityWindow{First: req.ActivityTime, Last: req.ActivityTime},
	)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, statusWebhookResponse{Outcome: outcomeLabel(outcome.Result)})
}

func outcomeLabel(r ports.UpdateResult) string {
	switch r {
	case ports.Updated:
		return "updated"
	case ports.Unchanged:
		return "unchanged"
	default:
		return "not_found"
	}
}
