package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPConfig holds delivery settings for the SMTP sender
type SMTPConfig interface {
	GetSMTPAddr() string
	GetSMTPFrom() string
	GetSMTPUsername() string
	GetSMTPPassword() string
}

// SMTPSender delivers notifications over plain SMTP. Auth is optional: when
// no username is configured the dialog skips AUTH, which is what local
// relays and test servers expect.
type SMTPSender struct {
	addr     string
	from     string
	username string
	password string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		addr:     cfg.GetSMTPAddr(),
		from:     cfg.GetSMTPFrom(),
		username: cfg.GetSMTPUsername(),
		password: cfg.GetSMTPPassword(),
	}
}

// Send implements Sender.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var auth smtp.Auth
	if s.username != "" {
		host := s.addr
		if i := strings.LastIndex(s.addr, ":"); i >= 0 {
			host = s.addr[:i]
		}
		auth = smtp.PlainAuth("", s.username, s.password, host)
	}

	msg := buildMessage(s.from, to, subject, body)

	if err := smtp.SendMail(s.addr, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}

	return nil
}

func buildMessage(from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")
	return []byte(b.String())
}

var _ Sender = (*SMTPSender)(nil)
