package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

type smtpSender struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPSender sends notification mail over plain SMTP with STARTTLS.
func NewSMTPSender(host string, port int, user, password, from string) ports.EmailSender {
	return &smtpSender{
		addr: fmt.Sprintf("%s:%d", host, port),
		auth: smtp.PlainAuth("", user, password, host),
		from: from,
	}
}

func (s *smtpSender) SendEmail(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(s.addr, s.auth, s.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}
