package email

import (
	"context"
	"crypto/tls"

	mail "github.com/go-mail/mail"

	"github.com/wearefrancis/auth/internal/domain"
	"github.com/wearefrancis/auth/internal/observability/logger"
)

// SMTPNotifier envía el mail de activación por SMTP usando go-mail.
type SMTPNotifier struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	Subject            string
	APIURL             string // base para el link de activación
	StartTLS           bool
	InsecureSkipVerify bool // solo dev
}

// SendActivation renderiza y envía el mail multipart (texto + HTML).
func (s *SMTPNotifier) SendActivation(ctx context.Context, acct *domain.Account, activationValue string) error {
	log := logger.From(ctx).With(
		logger.Component("SMTPNotifier"),
		logger.Username(acct.Username),
	)

	text, html, err := renderActivation(s.APIURL, acct.Username, activationValue)
	if err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", acct.Email)
	m.SetHeader("Subject", s.Subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	if s.StartTLS {
		d.StartTLSPolicy = mail.MandatoryStartTLS
	}
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}

	if err := d.DialAndSend(m); err != nil {
		return err
	}
	log.Debug("activation mail sent")
	return nil
}
