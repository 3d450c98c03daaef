package mail

import (
	"context"
	"fmt"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/polyhx/hackatown-backend/internal/models"
)

// SMTPConfig configures SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Pass     string
	Timeout  time.Duration
	Insecure bool
}

// SMTPSender delivers email logs over SMTP.
type SMTPSender struct {
	client *gomail.Client
}

// NewSMTPSender creates an SMTP sender. Authentication is used only when a user is set.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
		gomail.WithTimeout(cfg.Timeout),
	}
	if cfg.Insecure {
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSMandatory))
	}
	if cfg.User != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.User),
			gomail.WithPassword(cfg.Pass),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client}, nil
}

// Deliver sends one logged message.
func (s *SMTPSender) Deliver(ctx context.Context, el *models.EmailLog) error {
	msg, err := BuildMessage(el)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// BuildMessage turns a log into a MIME message with text and HTML alternatives.
func BuildMessage(el *models.EmailLog) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(el.Sender); err != nil {
		return nil, fmt.Errorf("from: %w", err)
	}
	if err := msg.To(el.Recipients...); err != nil {
		return nil, fmt.Errorf("to: %w", err)
	}
	msg.Subject(el.Subject)
	switch {
	case el.Text != "" && el.HTML != "":
		msg.SetBodyString(gomail.TypeTextPlain, el.Text)
		msg.AddAlternativeString(gomail.TypeTextHTML, el.HTML)
	case el.HTML != "":
		msg.SetBodyString(gomail.TypeTextHTML, el.HTML)
	default:
		msg.SetBodyString(gomail.TypeTextPlain, el.Text)
	}
	return msg, nil
}
