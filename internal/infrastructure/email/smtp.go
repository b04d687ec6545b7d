package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/pecal-inc/pecal/internal/shared/config"
	"github.com/pecal-inc/pecal/internal/shared/logger"
)

// AlertSender mails operator alerts raised by the billing flows. With no
// recipient configured every alert is only logged.
type AlertSender struct {
	from      string
	fromName  string
	recipient string
	send      func(m *gomail.Message) error
	logger    logger.Interface
}

// NewAlertSender builds a sender from the SMTP settings.
func NewAlertSender(cfg config.EmailConfig, recipient string, log logger.Interface) *AlertSender {
	dialer := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	return &AlertSender{
		from:      cfg.FromAddress,
		fromName:  cfg.FromName,
		recipient: strings.TrimSpace(recipient),
		send:      func(m *gomail.Message) error { return dialer.DialAndSend(m) },
		logger:    log.Named("alert"),
	}
}

// SendAlert delivers one alert. It honours ctx cancellation before dialing.
func (s *AlertSender) SendAlert(ctx context.Context, subject, body string) error {
	if s.recipient == "" {
		s.logger.Warnw("alert not mailed, no recipient configured", "subject", subject)
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	if s.fromName != "" {
		m.SetAddressHeader("From", s.from, s.fromName)
	} else {
		m.SetHeader("From", s.from)
	}
	m.SetHeader("To", s.recipient)
	m.SetHeader("Subject", "[pecal billing] "+subject)
	m.SetBody("text/plain", body)
	m.AddAlternative("text/html", "<html><body><pre>"+html.EscapeString(body)+"</pre></body></html>")

	if err := s.send(m); err != nil {
		s.logger.Errorw("failed to send alert email", "subject", subject, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infow("alert email sent", "subject", subject)
	return nil
}
