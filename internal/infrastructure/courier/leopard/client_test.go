package leopard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/zebtan/courier-backoffice/internal/core/domain"
)

func newTestClient(endpoint string) *Client {
	return New(Config{
		Endpoint:    endpoint,
		APIKey:      "key",
		APIPassword: "secret",
		Timeout:     2 * time.Second,
	}, zerolog.Nop())
}

func TestTrackBatch_ParsesSnapshots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trackBookedPacket/format/json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("api_key") != "key" || q.Get("api_password") != "secret" {
			t.Errorf("credentials missing from query: %v", q)
		}
		if q.Get("track_numbers") != "KI100,KI200" {
			t.Errorf("expected comma-joined batch, got %q", q.Get("track_numbers"))
		}
		_, _ = w.Write([]byte(`{
			"status": 1,
			"packet_list": [
				{
					"track_number": "KI100",
					"booked_packet_status": "Shipment Picked",
					"Tracking Detail": [
						{"Activity_Date": "2024-01-01 10:00:00"},
						{"Activity_Date": "2024-01-02 18:30:00"}
					]
				},
				{"track_number": "", "booked_packet_status": "ignored"}
			]
		}`))
	}))
	defer srv.Close()

	snaps, err := newTestClient(srv.URL).TrackBatch(context.Background(), []string{"KI100", "KI200"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("expected one snapshot, got %d", len(snaps))
	}
	snap := snaps[0]
	if snap.TrackingNumber != "KI100" || snap.Status != "Shipment Picked" {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	wantFirst, _ := time.Parse(activityTimeFmt, "2024-01-01 10:00:00")
	wantLast, _ := time.Parse(activityTimeFmt, "2024-01-02 18:30:00")
	if !snap.FirstActivity.Equal(wantFirst) || !snap.LastActivity.Equal(wantLast) {
		t.Errorf("unexpected activity window: %v .. %v", snap.FirstActivity, snap.LastActivity)
	}
}

func TestTrackBatch_PayloadFailureFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status": 0, "error": "invalid api key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).TrackBatch(context.Background(), []string{"KI100"})
	if !errors.Is(err, domain.ErrProviderFailed) {
		t.Fatalf("expected ErrProviderFailed, got: %v", err)
	}
}

func TestTrackBatch_TransportFailureAfterRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).TrackBatch(context.Background(), []string{"KI100"})
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got: %v", err)
	}
	if calls != maxRetries+1 {
		t.Errorf("expected %d attempts, got %d", maxRetries+1, calls)
	}
}

func TestTrackBatch_RetrySucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"status": 1, "packet_list": []}`))
	}))
	defer srv.Close()

	snaps, err := newTestClient(srv.URL).TrackBatch(context.Background(), []string{"KI100"})
	if err != nil {
		t.Fatalf("expected retry to succeed, got: %v", err)
	}
	if len(snaps) != 0 || calls != 2 {
		t.Errorf("unexpected result: %d snapshots after %d calls", len(snaps), calls)
	}
}

func TestTrackBatch_UnparseableActivityDegradesToZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"status": 1,
			"packet_list": [{
				"track_number": "KI100",
				"booked_packet_status": "Booked",
				"Tracking Detail": [{"Activity_Date": "not a timestamp"}]
			}]
		}`))
	}))
	defer srv.Close()

	snaps, err := newTestClient(srv.URL).TrackBatch(context.Background(), []string{"KI100"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !snaps[0].FirstActivity.IsZero() || !snaps[0].LastActivity.IsZero() {
		t.Errorf("expected zero activity window, got %+v", snaps[0])
	}
}

func TestListCities_ParsesDirectory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/getAllCities/format/json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"status": 1, "city_list": [{"id": 42, "city": "Lahore"}, {"id": 7, "city": "Karachi"}]}`))
	}))
	defer srv.Close()

	cities, err := newTestClient(srv.URL).ListCities(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cities) != 2 || cities[0].Code != 42 || cities[0].Name != "Lahore" {
		t.Errorf("unexpected directory: %+v", cities)
	}
}

func TestListCities_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ListCities(context.Background())
	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got: %v", err)
	}
}
