// Package mail delivers status-change notifications over SMTP.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/zebtan/courier-backoffice/internal/core/domain"
)

const (
	subjectChanged = "Delivery Status Changed"
	subjectFailed  = "Delivery Failed - Zebtan Collection"
)

// Config captures SMTP connection and addressing settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Mailer implements ports.Notifier by sending a plain-text status update
// email per event.
type Mailer struct {
	cfg Config
	log zerolog.Logger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg Config, log zerolog.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

// Send builds and submits the notification message. The context is honoured
// only up to submission; delivery confirmation is the MTA's concern.
func (m *Mailer) Send(ctx context.Context, event domain.StatusChangeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	msg := buildMessage(m.cfg.From, m.cfg.To, event)
	if err := m.send(addr, auth, m.cfg.From, []string{m.cfg.To}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	m.log.Debug().
		Str("tracking_number", event.TrackingNumber).
		Str("subject", Subject(event.NewStatus)).
		Msg("notification mail submitted")
	return nil
}

// Subject picks the mail subject from the new status: problem statuses get
// the delivery-failed subject, everything else the generic one.
func Subject(status domain.Status) string {
	if status.IsProblem() {
		return subjectFailed
	}
	return subjectChanged
}

func buildMessage(from, to string, event domain.StatusChangeEvent) []byte {
	pickup := "Not picked yet"
	if event.PickupDate != nil {
		pickup = event.PickupDate.Format("2006-01-02 15:04")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", Subject(event.NewStatus))
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")

	fmt.Fprintf(&b, "Shipment %s status changed: %s -> %s\r\n\r\n", event.TrackingNumber, event.OldStatus, event.NewStatus)
	fmt.Fprintf(&b, "Order ID:        #%s\r\n", event.OrderID)
	fmt.Fprintf(&b, "Tracking Number: %s\r\n", event.TrackingNumber)
	fmt.Fprintf(&b, "Customer:        %s\r\n", event.ConsigneeName)
	fmt.Fprintf(&b, "Delivery City:   %s\r\n", event.CityName)
	fmt.Fprintf(&b, "COD Amount:      %.0f\r\n", event.CODAmount)
	fmt.Fprintf(&b, "Pickup Date:     %s\r\n", pickup)
	fmt.Fprintf(&b, "Status:          %s\r\n", event.NewStatus)

	return []byte(b.String())
}
