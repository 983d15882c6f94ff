package worker

// notificacion_worker.go
// Processes QueueLiquidacion: renders the receipt PDF of a saved settlement
// to disk and enqueues the owner notification on QueueEmail.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/car1087/dinoplay-2-0/internal/horalocal"
	"github.com/car1087/dinoplay-2-0/internal/infra"
	"github.com/car1087/dinoplay-2-0/internal/liquidacion"
	"github.com/car1087/dinoplay-2-0/internal/model"
	"github.com/car1087/dinoplay-2-0/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// LiquidacionJobPayload is the job envelope sent to QueueLiquidacion.
type LiquidacionJobPayload struct {
	LiquidacionID string `json:"liquidacion_id"`
}

type NotificacionWorker struct {
	liquidaciones  repository.LiquidacionRepository
	usuarios       repository.UsuarioRepository
	dispatcher     *Dispatcher
	mailer         Mailer
	reloj          *horalocal.Reloj
	pdfStoragePath string
}

func NewNotificacionWorker(
	liquidaciones repository.LiquidacionRepository,
	usuarios repository.UsuarioRepository,
	dispatcher *Dispatcher,
	mailer Mailer,
	reloj *horalocal.Reloj,
	pdfStoragePath string,
) *NotificacionWorker {
	return &NotificacionWorker{
		liquidaciones:  liquidaciones,
		usuarios:       usuarios,
		dispatcher:     dispatcher,
		mailer:         mailer,
		reloj:          reloj,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process handles one settlement:
//  1. Load the settlement with products and checklist
//  2. Render the receipt PDF to PDF_STORAGE_PATH
//  3. Enqueue the email job when SMTP is configured
//
// A settlement deleted before the job ran is dropped silently.
func (w *NotificacionWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload LiquidacionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("%w: liquidacion payload: %v", ErrPermanente, err)
	}
	id, err := uuid.Parse(payload.LiquidacionID)
	if err != nil {
		return fmt.Errorf("%w: liquidacion_id %q", ErrPermanente, payload.LiquidacionID)
	}

	liq, err := w.liquidaciones.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("liquidacion_id", payload.LiquidacionID).Msg("notificacion_worker: settlement gone, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("notificacion_worker: load: %w", err)
	}

	nombre := w.nombreTrabajador(ctx, liq.TrabajadorID)
	fechaTexto := w.reloj.FormatearFecha(liq.Fecha, horalocal.Opciones{EstiloFecha: horalocal.EstiloLargo})

	pdfPath, err := withRetry(ctx, 2, func(int) (string, error) {
		return infra.GenerateLiquidacionPDF(infra.ReciboLiquidacion{
			Liquidacion: liq,
			Trabajador:  nombre,
			FechaTexto:  fechaTexto,
			GeneradoEn:  w.reloj.Formatear(w.reloj.Ahora(), horalocal.Opciones{}),
		}, w.pdfStoragePath)
	})
	if err != nil {
		return err
	}
	log.Info().Str("liquidacion_id", payload.LiquidacionID).Str("path", pdfPath).Msg("notificacion_worker: receipt generated")

	if !w.mailer.Enabled() {
		return nil
	}
	job := EmailJobPayload{
		Subject: fmt.Sprintf("Liquidación %s · %s", liq.Fecha, nombre),
		Body:    cuerpoNotificacion(liq, nombre, fechaTexto),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, job); err != nil {
		return fmt.Errorf("notificacion_worker: enqueue email: %w", err)
	}
	return nil
}

func (w *NotificacionWorker) nombreTrabajador(ctx context.Context, id uuid.UUID) string {
	u, err := w.usuarios.FindByID(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("trabajador_id", id.String()).Msg("notificacion_worker: worker lookup failed")
		return "Trabajador"
	}
	return u.NombreCompleto
}

func cuerpoNotificacion(l *model.Liquidacion, nombre, fechaTexto string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Liquidación de %s, %s.\n\n", nombre, fechaTexto)
	fmt.Fprintf(&b, "Ventas arcade:    %s\n", liquidacion.FormatearCOP(l.VentasArcade))
	fmt.Fprintf(&b, "Ventas VR:        %s\n", liquidacion.FormatearCOP(l.VentasVR))
	fmt.Fprintf(&b, "Ventas productos: %s\n", liquidacion.FormatearCOP(l.VentasProductos))
	fmt.Fprintf(&b, "Ganancia neta:    %s\n", liquidacion.FormatearCOP(l.GananciaNeta))
	if l.NotasCierre != nil && *l.NotasCierre != "" {
		fmt.Fprintf(&b, "\nNotas: %s\n", *l.NotasCierre)
	}
	b.WriteString("\nSe adjunta el comprobante en PDF.\n")
	return b.String()
}

// withRetry calls fn up to maxAttempts times with exponential backoff
// (immediate, 1s, 2s, …). Returns the first success or the last error.
func withRetry[T any](ctx context.Context, maxAttempts int, fn func(attempt int) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(wait):
			}
		}
		v, err := fn(i)
		if err == nil {
			return v, nil
		}
		lastErr = err
	}
	return zero, lastErr
}
