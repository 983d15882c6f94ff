package worker

// email_worker.go
// Sends settlement notifications queued on QueueEmail.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/car1087/dinoplay-2-0/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// Mailer is the subset of infra.Mailer used by the workers.
type Mailer interface {
	Enabled() bool
	SendLiquidacion(subject, body, pdfPath string) error
}

type EmailWorker struct {
	mailer Mailer
}

func NewEmailWorker(mailer Mailer) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends one email. An open circuit breaker counts as a retryable failure.
func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: email payload: %v", ErrPermanente, err)
	}

	err := w.mailer.SendLiquidacion(payload.Subject, payload.Body, payload.PDFPath)
	if errors.Is(err, infra.ErrMailerDisabled) {
		log.Warn().Str("subject", payload.Subject).Msg("email_worker: smtp not configured, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("email_worker: %w", err)
	}
	log.Info().Str("subject", payload.Subject).Msg("email_worker: notification sent")
	return nil
}
