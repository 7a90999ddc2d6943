// Package email sends operational notifications: low-stock alerts to the
// configured warehouse address, shipment notices to customers, and the daily
// low-stock digest. Delivery goes through a provider selected by config; the
// log provider is the default and turns every send into a structured log line.
package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/config"
	"github.com/warebase/server/internal/domain/catalog"
	"github.com/warebase/server/internal/domain/orders"
	"github.com/warebase/server/internal/domain/shipments"
	"github.com/warebase/server/internal/metrics"
)

// sender is the delivery mechanism behind the Service. Implementations must
// not retry; callers treat a send as best effort.
type sender interface {
	send(ctx context.Context, to, subject, htmlBody string) error
}

type Service struct {
	cfg    config.EmailConfig
	sender sender
	logger zerolog.Logger
}

// NewService builds a Service for the configured provider. When email is
// disabled every notification short-circuits to a log line regardless of
// provider.
func NewService(cfg config.EmailConfig, logger zerolog.Logger) (*Service, error) {
	logger = logger.With().Str("component", "email").Logger()

	if cfg.Enabled {
		if err := validateAddress(cfg.FromAddress); err != nil {
			return nil, fmt.Errorf("invalid from address: %w", err)
		}
	}

	var s sender
	switch cfg.Provider {
	case "", "log":
		s = &logSender{logger: logger}
	case "resend":
		if cfg.Enabled && cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend provider requires RESEND_API_KEY")
		}
		s = newResendSender(cfg, logger)
	case "smtp":
		if cfg.Enabled && cfg.SMTPHost == "" {
			return nil, fmt.Errorf("smtp provider requires SMTP_HOST")
		}
		s = &smtpSender{cfg: cfg}
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}

	return &Service{cfg: cfg, sender: s, logger: logger}, nil
}

func newServiceWithSender(cfg config.EmailConfig, s sender, logger zerolog.Logger) *Service {
	return &Service{cfg: cfg, sender: s, logger: logger}
}

// NotifyLowStock satisfies the inventory notifier contract. The alert goes to
// the warehouse alerts address, not to customers.
func (s *Service) NotifyLowStock(ctx context.Context, item catalog.Item, onHand int64) error {
	if s.cfg.AlertsTo == "" {
		s.logger.Debug().Str("sku", item.SKU).Msg("no alerts address configured, skipping low stock notice")
		return nil
	}

	body, err := render(lowStockTemplate, lowStockData{
		SKU:          item.SKU,
		Name:         item.Name,
		OnHand:       onHand,
		ReorderPoint: item.ReorderPoint,
		Year:         time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("render low stock notice: %w", err)
	}

	subject := fmt.Sprintf("Low stock: %s (%d on hand)", item.SKU, onHand)
	if err := s.deliver(ctx, s.cfg.AlertsTo, subject, body); err != nil {
		return err
	}

	metrics.LowStockAlerts.Inc()
	return nil
}

// NotifyShipmentCreated satisfies the shipments notifier contract. The caller
// guarantees the order carries a customer email.
func (s *Service) NotifyShipmentCreated(ctx context.Context, order orders.Order, shipment shipments.Shipment) error {
	body, err := render(shipmentTemplate, shipmentData{
		CustomerName:   order.CustomerName,
		OrderNumber:    order.OrderNumber,
		Carrier:        shipment.Carrier,
		TrackingNumber: shipment.TrackingNumber,
		Year:           time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("render shipment notice: %w", err)
	}

	subject := fmt.Sprintf("Your order %s has shipped", order.OrderNumber)
	return s.deliver(ctx, order.CustomerEmail, subject, body)
}

// DigestLine is one row of the daily low-stock digest.
type DigestLine struct {
	SKU          string
	Name         string
	OnHand       int64
	ReorderPoint int64
}

// SendLowStockDigest sends the daily summary of every item at or below its
// reorder point. An empty line set is a no-op.
func (s *Service) SendLowStockDigest(ctx context.Context, lines []DigestLine) error {
	if len(lines) == 0 || s.cfg.AlertsTo == "" {
		return nil
	}

	body, err := render(digestTemplate, digestData{
		Lines: lines,
		Date:  time.Now().Format("2006-01-02"),
		Year:  time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("render low stock digest: %w", err)
	}

	subject := fmt.Sprintf("Low stock digest: %d items below reorder point", len(lines))
	return s.deliver(ctx, s.cfg.AlertsTo, subject, body)
}

func (s *Service) deliver(ctx context.Context, to, subject, htmlBody string) error {
	if err := validateAddress(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}

	if !s.cfg.Enabled {
		s.logger.Info().Str("to", to).Str("subject", subject).Msg("email disabled, skipping send")
		return nil
	}
	return s.sender.send(ctx, to, subject, htmlBody)
}

// validateAddress rejects malformed addresses and header injection attempts.
func validateAddress(address string) error {
	addr, err := mail.ParseAddress(address)
	if err != nil {
		return fmt.Errorf("parse address: %w", err)
	}
	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("address contains newline characters")
	}
	return nil
}

// logSender is the default provider. Sends become log lines, which is what
// development and test environments want.
type logSender struct {
	logger zerolog.Logger
}

func (l *logSender) send(_ context.Context, to, subject, _ string) error {
	l.logger.Info().Str("to", to).Str("subject", subject).Msg("email (log provider)")
	return nil
}

type lowStockData struct {
	SKU          string
	Name         string
	OnHand       int64
	ReorderPoint int64
	Year         int
}

type shipmentData struct {
	CustomerName   string
	OrderNumber    string
	Carrier        string
	TrackingNumber string
	Year           int
}

type digestData struct {
	Lines []DigestLine
	Date  string
	Year  int
}

var (
	lowStockTemplate = template.Must(template.New("low_stock").Parse(`<html><body>
<h2>Low stock alert</h2>
<p><strong>{{.SKU}}</strong> {{.Name}} is down to {{.OnHand}} on hand (reorder point {{.ReorderPoint}}).</p>
<p style="color:#888;font-size:12px">Warebase &copy; {{.Year}}</p>
</body></html>`))

	shipmentTemplate = template.Must(template.New("shipment").Parse(`<html><body>
<h2>Your order is on its way</h2>
<p>Hi {{.CustomerName}},</p>
<p>Order <strong>{{.OrderNumber}}</strong> has shipped via {{.Carrier}}{{if .TrackingNumber}} (tracking {{.TrackingNumber}}){{end}}.</p>
<p style="color:#888;font-size:12px">Warebase &copy; {{.Year}}</p>
</body></html>`))

	digestTemplate = template.Must(template.New("digest").Parse(`<html><body>
<h2>Low stock digest for {{.Date}}</h2>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>SKU</th><th>Name</th><th>On hand</th><th>Reorder point</th></tr>
{{range .Lines}}<tr><td>{{.SKU}}</td><td>{{.Name}}</td><td>{{.OnHand}}</td><td>{{.ReorderPoint}}</td></tr>
{{end}}</table>
<p style="color:#888;font-size:12px">Warebase &copy; {{.Year}}</p>
</body></html>`))
)

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
