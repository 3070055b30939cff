package email

import (
	"log"

	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

// LogSender stands in when SMTP is not configured. Notification failures
// never affect job state, so a log line is an acceptable sink.
type LogSender struct{}

func NewLogSender() ports.EmailSender {
	return &LogSender{}
}

func (a *LogSender) SendEmail(to, subject, body string) error {
	log.Printf("📧 [EMAIL NOTIFICATION] To: %s | Subject: %s", to, subject)
	return nil
}
