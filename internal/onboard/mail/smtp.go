package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// SMTPConfig carries the SMTP transport settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // e.g. "platoX <no-reply@platox.com>"
}

// SMTPMailer delivers verification emails over SMTP.
type SMTPMailer struct {
	client *gomail.Client
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("mail: init smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From}, nil
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, address, code string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if err := msg.To(address); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	msg.Subject(verificationSubject)
	msg.SetBodyString(gomail.TypeTextPlain, verificationTextBody(code))
	msg.AddAlternativeString(gomail.TypeTextHTML, verificationHTMLBody(code))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return nil
}
