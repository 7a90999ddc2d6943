package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"

	"github.com/warebase/server/internal/config"
)

// resendSender delivers through the Resend API. Rate limit errors are
// surfaced without retrying; the notification paths are best effort.
type resendSender struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

func newResendSender(cfg config.EmailConfig, logger zerolog.Logger) *resendSender {
	return &resendSender{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.FromAddress,
		logger: logger,
	}
}

func (r *resendSender) send(ctx context.Context, to, subject, htmlBody string) error {
	sent, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	})
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			r.logger.Warn().
				Str("limit", rateLimitErr.Limit).
				Str("reset", rateLimitErr.Reset).
				Msg("resend rate limit exceeded")
			return fmt.Errorf("email rate limit exceeded (resets in %s seconds): %w", rateLimitErr.Reset, err)
		}
		return fmt.Errorf("resend: %w", err)
	}

	r.logger.Info().Str("email_id", sent.Id).Str("to", to).Msg("email sent via resend")
	return nil
}
