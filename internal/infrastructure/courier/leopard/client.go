// Package leopard implements the outbound client for the Leopards Courier
// merchant tracking API.
package leopard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zebtan/courier-backoffice/internal/api/metrics"
	"github.com/zebtan/courier-backoffice/internal/core/domain"
)

const (
	defaultTimeout  = 20 * time.Second
	maxRetries      = 2
	retryBackoff    = 300 * time.Millisecond
	activityTimeFmt = "2006-01-02 15:04:05"
)

// Config captures the credentials and endpoint for the Leopard merchant API.
type Config struct {
	Endpoint    string
	APIKey      string
	APIPassword string
	Timeout     time.Duration
}

// Client is a stateless adapter over the Leopard tracking endpoints. It
// retries transport-level failures a bounded number of times and maps the
// provider's payload status flag to the shared error taxonomy.
type Client struct {
	cfg  Config
	http *http.Client
	log  zerolog.Logger
}

// New creates a Client. A Timeout <= 0 falls back to 20 seconds.
func New(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// trackResponse mirrors trackBookedPacket/format/json.
type trackResponse struct {
	Status     int            `json:"status"`
	Error      string         `json:"error"`
	PacketList []packetStatus `json:"packet_list"`
}

type packetStatus struct {
	TrackNumber    string           `json:"track_number"`
	PacketStatus   string           `json:"booked_packet_status"`
	TrackingDetail []activityRecord `json:"Tracking Detail"`
}

type activityRecord struct {
	ActivityDate string `json:"Activity_Date"`
}

// cityResponse mirrors getAllCities/format/json.
type cityResponse struct {
	Status   int         `json:"status"`
	Error    string      `json:"error"`
	CityList []cityEntry `json:"city_list"`
}

type cityEntry struct {
	ID   int    `json:"id"`
	City string `json:"city"`
}

// TrackBatch fetches snapshots for all tracking numbers in one bulk request.
// The batch is sent comma-joined so one pass costs one outbound call
// regardless of shipment count. Numbers the provider does not recognise are
// absent from the result; that is new information of zero, not an error.
func (c *Client) TrackBatch(ctx context.Context, trackingNumbers []string) ([]domain.TrackingSnapshot, error) {
	body, err := c.get(ctx, "trackBookedPacket/format/json", url.Values{
		"track_numbers": {strings.Join(trackingNumbers, ",")},
	})
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("track", "unavailable").Inc()
		return nil, err
	}

	var resp trackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("track", "unavailable").Inc()
		return nil, fmt.Errorf("%w: decoding track response: %v", domain.ErrProviderUnavailable, err)
	}
	if resp.Status != 1 {
		metrics.ProviderRequestsTotal.WithLabelValues("track", "failed").Inc()
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderFailed, resp.Error)
	}

	snapshots := make([]domain.TrackingSnapshot, 0, len(resp.PacketList))
	for _, packet := range resp.PacketList {
		if packet.TrackNumber == "" || packet.PacketStatus == "" {
			continue
		}
		snap := domain.TrackingSnapshot{
			TrackingNumber: packet.TrackNumber,
			Status:         domain.Status(packet.PacketStatus),
		}
		if n := len(packet.TrackingDetail); n > 0 {
			snap.FirstActivity = c.parseActivity(packet.TrackingDetail[0].ActivityDate)
			snap.LastActivity = c.parseActivity(packet.TrackingDetail[n-1].ActivityDate)
		}
		snapshots = append(snapshots, snap)
	}

	metrics.ProviderRequestsTotal.WithLabelValues("track", "ok").Inc()
	return snapshots, nil
}

// ListCities fetches the provider's city directory.
func (c *Client) ListCities(ctx context.Context) ([]domain.City, error) {
	body, err := c.get(ctx, "getAllCities/format/json", url.Values{})
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("cities", "unavailable").Inc()
		return nil, err
	}

	var resp cityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("cities", "unavailable").Inc()
		return nil, fmt.Errorf("%w: decoding city response: %v", domain.ErrProviderUnavailable, err)
	}
	if resp.Status != 1 {
		metrics.ProviderRequestsTotal.WithLabelValues("cities", "failed").Inc()
		return nil, fmt.Errorf("%w: %s", domain.ErrProviderFailed, resp.Error)
	}

	cities := make([]domain.City, 0, len(resp.CityList))
	for _, entry := range resp.CityList {
		cities = append(cities, domain.City{Code: entry.ID, Name: entry.City})
	}

	metrics.ProviderRequestsTotal.WithLabelValues("cities", "ok").Inc()
	return cities, nil
}

// get performs a credentialed GET with bounded retries. Any transport
// failure or non-2xx response after the last retry maps to
// domain.ErrProviderUnavailable.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("api_key", c.cfg.APIKey)
	params.Set("api_password", c.cfg.APIPassword)
	endpoint := strings.TrimRight(c.cfg.Endpoint, "/") + "/" + path + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, ctx.Err())
			case <-time.After(retryBackoff):
			}
		}

		body, err := c.doOnce(ctx, endpoint)
		if err == nil {
			return body, nil
		}
		lastErr = err
		c.log.Warn().Err(err).Str("path", path).Int("attempt", attempt+1).Msg("provider request failed")
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, lastErr)
}

func (c *Client) doOnce(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// parseActivity converts the provider's activity timestamp. Unparseable
// values degrade to zero; the store then keeps existing timestamps intact.
func (c *Client) parseActivity(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(activityTimeFmt, raw)
	if err != nil {
		c.log.Debug().Str("activity_date", raw).Msg("unparseable activity timestamp")
		return time.Time{}
	}
	return t
}
