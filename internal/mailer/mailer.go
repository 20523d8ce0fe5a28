// Package mailer delivers one-time codes to account email addresses.
// The Mailer interface keeps the auth services independent from the
// transport; the SMTP implementation uses go-mail.
package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// Mailer sends a one-time code to the given address. Implementations
// report delivery failure through the returned error; the caller decides
// whether that failure is fatal.
type Mailer interface {
	SendCode(ctx context.Context, to string, code string, purpose string) error
}

// SMTPMailer sends codes through an SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
}

// NewSMTPMailer dials nothing up front; the connection is established per
// send. Credentials may be empty for an open relay (lab setups).
func NewSMTPMailer(host string, port int, username, password, from string) (*SMTPMailer, error) {
	opts := []mail.Option{mail.WithPort(port)}
	if username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(password),
		)
	}

	client, err := mail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPMailer{client: client, from: from}, nil
}

func (m *SMTPMailer) SendCode(ctx context.Context, to string, code string, purpose string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}

	msg.Subject(subjectFor(purpose))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Your verification code is %s.\n\nIt expires shortly. Do not share it with anyone.\nIf you did not request this code, ignore this message.\n", code))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func subjectFor(purpose string) string {
	switch purpose {
	case "verify_email":
		return "Confirm your registration"
	case "login":
		return "Your sign-in code"
	default:
		return "Your verification code"
	}
}
