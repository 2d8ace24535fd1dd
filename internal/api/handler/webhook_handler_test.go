package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/zebtan/courier-backoffice/internal/core/domain"
	"github.com/zebtan/courier-backoffice/internal/core/ports"
)

type stubApplier struct {
	outcome ports.UpdateOutcome
	err     error

	gotTracking string
	gotStatus   domain.Status
}

func (s *stubApplier) ApplyExternal(_ context.Context, trackingNumber string, status domain.Status, _ ports.ActivityWindow) (ports.UpdateOutcome, error) {
	s.gotTracking = trackingNumber
	s.gotStatus = status
	return s.outcome, s.err
}

func newWebhookContext(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/status", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestWebhookHandler_Updated(t *testing.T) {
	applier := &stubApplier{outcome: ports.UpdateOutcome{Result: ports.Updated, OldStatus: "Booked"}}
	h := NewWebhookHandler(applier)

	c, rec := newWebhookContext(t, `{
		"tracking_number": "KI100",
		"status": "Shipment Picked",
		"activity_time": "2024-01-01T10:00:00Z"
	}`)

	if err := h.Receive(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if applier.gotTracking != "KI100" || applier.gotStatus != "Shipment Picked" {
		t.Errorf("unexpected applier args: %s %s", applier.gotTracking, applier.gotStatus)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["outcome"] != "updated" {
		t.Errorf("expected outcome=updated, got %q", resp["outcome"])
	}
}

func TestWebhookHandler_Unchanged(t *testing.T) {
	applier := &stubApplier{outcome: ports.UpdateOutcome{Result: ports.Unchanged}}
	h := NewWebhookHandler(applier)

	c, rec := newWebhookContext(t, `{
		"tracking_number": "KI100",
		"status": "Booked",
		"activity_time": "2024-01-01T10:00:00Z"
	}`)

	if err := h.Receive(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "unchanged") {
		t.Errorf("expected unchanged outcome, got %s", rec.Body.String())
	}
}

func TestWebhookHandler_InvalidJSON(t *testing.T) {
	h := NewWebhookHandler(&stubApplier{})

	c, _ := newWebhookContext(t, `{not json`)
	err := h.Receive(c)

	var he *echo.HTTPError
	if !asHTTPError(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got: %v", err)
	}
}

func TestWebhookHandler_MissingFields(t *testing.T) {
	h := NewWebhookHandler(&stubApplier{})

	c, _ := newWebhookContext(t, `{"tracking_number": "KI100"}`)
	err := h.Receive(c)

	var he *echo.HTTPError
	if !asHTTPError(err, &he) || he.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got: %v", err)
	}
}

func asHTTPError(err error, target **echo.HTTPError) bool {
	he, ok := err.(*echo.HTTPError)
	if ok {
		*target = he
	}
	return ok
}
