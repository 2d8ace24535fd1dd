package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zebtan/courier-backoffice/internal/core/ports"
)

// PassTrigger starts a reconciliation pass unless one is already in flight.
type PassTrigger interface {
	RunNow(ctx context.Context) (ports.PassSummary, error)
}

// ReconcileHandler exposes the "run now" trigger for operators.
type ReconcileHandler struct {
	trigger PassTrigger
}

func NewReconcileHandler(trigger PassTrigger) *ReconcileHandler {
	return &ReconcileHandler{trigger: trigger}
}

// Run handles POST /v1/reconcile/run. It executes one pass synchronously and
// returns its summary. Responds 409 while a pass is already running.
//
// @Summary      Run a reconciliation pass now
// @Tags         reconcile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.PassSummary
// @Failure      401  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/reconcile/run [post]
func (h *ReconcileHandler) Run(c echo.Context) error {
	summary, err := h.trigger.RunNow(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
