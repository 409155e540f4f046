// Package mail provides a direct SMTP implementation of the campaign Sender,
// for deployments that deliver locally instead of through the backend's
// provider.
package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/sells-group/sales-dashboard/internal/campaign"
)

// SMTPSender delivers generated campaign emails over SMTP with STARTTLS.
type SMTPSender struct {
	host     string
	port     int
	user     string
	password string
	from     string
}

// NewSMTPSender creates a sender. From defaults to the SMTP user when empty.
func NewSMTPSender(host string, port int, user, password, from string) *SMTPSender {
	if from == "" {
		from = user
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		from:     from,
	}
}

// Send delivers the generated body as a plain-text message. Delivery
// problems are reported as an unsuccessful outcome rather than an error, so
// the workflow treats them the same as a provider rejection. Missing
// credentials short-circuit before dialing.
//
// NOTE: gomail does not accept a context; cancellation only covers the time
// before the dial starts.
func (s *SMTPSender) Send(ctx context.Context, in campaign.SendInput) (campaign.SendOutcome, error) {
	if err := ctx.Err(); err != nil {
		return campaign.SendOutcome{}, err
	}

	if s.user == "" || s.password == "" {
		return campaign.SendOutcome{
			Success: false,
			Message: "smtp credentials are not configured",
		}, nil
	}
	if in.Body == "" {
		return campaign.SendOutcome{
			Success: false,
			Message: "nothing to send: generated body is empty",
		}, nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", in.CustomerEmail)
	m.SetHeader("Subject", in.Subject)
	m.SetBody("text/plain", in.Body)

	d := gomail.NewDialer(s.host, s.port, s.user, s.password)
	if err := d.DialAndSend(m); err != nil {
		zap.L().Warn("mail: smtp delivery failed",
			zap.String("host", s.host),
			zap.String("recipient", in.CustomerEmail),
			zap.Error(err),
		)
		return campaign.SendOutcome{
			Success: false,
			Message: fmt.Sprintf("smtp delivery failed: %v", err),
		}, nil
	}

	return campaign.SendOutcome{
		Success: true,
		Message: fmt.Sprintf("email sent successfully to %s", in.CustomerEmail),
	}, nil
}
