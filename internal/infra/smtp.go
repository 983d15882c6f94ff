package infra

import (
	"errors"
	"fmt"
	"net/smtp"

	"github.com/car1087/dinoplay-2-0/internal/config"

	"github.com/jordan-wright/email"
)

// ErrMailerDisabled is returned when SMTP_HOST or NOTIFY_EMAIL is empty.
var ErrMailerDisabled = errors.New("mailer: smtp no configurado")

// Mailer sends settlement notifications to the venue owner through SMTP.
// Every send goes through a circuit breaker.
type Mailer struct {
	host     string
	port     int
	user     string
	password string
	addr     string
	notify   string
	cb       *CircuitBreaker
	send     func(e *email.Email, addr string, auth smtp.Auth) error
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		user:     cfg.SMTPUser,
		password: cfg.SMTPPassword,
		addr:     fmt.Sprintf("%s:%d", cfg.SMTPHost, cfg.SMTPPort),
		notify:   cfg.NotifyEmail,
		cb: NewCircuitBreaker(CircuitBreakerConfig{
			Name:             "smtp",
			FailureThreshold: cfg.SMTPBreakerFallos,
			OpenTimeout:      cfg.SMTPBreakerEspera,
		}),
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// Enabled reports whether notifications can be sent at all.
func (m *Mailer) Enabled() bool {
	return m.host != "" && m.notify != ""
}

// BreakerState exposes the breaker for /health.
func (m *Mailer) BreakerState() CBState {
	return m.cb.State()
}

// SendLiquidacion mails a settlement summary with the PDF receipt attached.
func (m *Mailer) SendLiquidacion(subject, body, pdfPath string) error {
	if !m.Enabled() {
		return ErrMailerDisabled
	}

	e := email.NewEmail()
	e.From = m.user
	e.To = []string{m.notify}
	e.Subject = subject
	e.Text = []byte(body)

	if pdfPath != "" {
		if _, err := e.AttachFile(pdfPath); err != nil {
			return fmt.Errorf("mailer: attach PDF: %w", err)
		}
	}

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}
	return m.cb.Execute(func() error {
		return m.send(e, m.addr, auth)
	})
}
