// Package horalocal anchors "now" and "today" to the venue's timezone.
//
// Settlements and daily configs are keyed by a plain YYYY-MM-DD date. The
// date must be the one the venue's wall clock shows, not the one of the host
// running the process, otherwise records shift a day near midnight. All date
// keys in the service come from a Reloj.
package horalocal

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	ZonaPorDefecto = "America/Bogota"
	FormatoFecha   = "2006-01-02"
)

// Reloj yields venue-local instants and calendar dates.
type Reloj struct {
	loc   *time.Location
	ahora func() time.Time
}

// Nuevo builds a Reloj for an IANA zone name backed by the system clock.
func Nuevo(zona string) (*Reloj, error) {
	if zona == "" {
		zona = ZonaPorDefecto
	}
	loc, err := time.LoadLocation(zona)
	if err != nil {
		return nil, fmt.Errorf("horalocal: zona %q: %w", zona, err)
	}
	return &Reloj{loc: loc, ahora: time.Now}, nil
}

// NuevoConFuente is Nuevo with an injected time source, used by tests.
func NuevoConFuente(loc *time.Location, fuente func() time.Time) *Reloj {
	return &Reloj{loc: loc, ahora: fuente}
}

func (r *Reloj) Ubicacion() *time.Location { return r.loc }

// Ahora is the current instant, truncated to the second, carrying the venue
// location so its wall clock reads as the venue's.
func (r *Reloj) Ahora() time.Time {
	return r.ahora().In(r.loc).Truncate(time.Second)
}

// Hoy is the venue calendar date of Ahora.
func (r *Reloj) Hoy() string {
	return r.Fecha(r.Ahora())
}

// Fecha extracts the calendar date of t as perceived at the venue.
func (r *Reloj) Fecha(t time.Time) string {
	return t.In(r.loc).Format(FormatoFecha)
}

// ParseFecha reads a strict YYYY-MM-DD date as venue-local midnight.
func (r *Reloj) ParseFecha(fecha string) (time.Time, error) {
	t, err := time.ParseInLocation(FormatoFecha, fecha, r.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("fecha invalida %q: %w", fecha, err)
	}
	return t, nil
}

// SumarDias shifts a YYYY-MM-DD date by n calendar days.
func (r *Reloj) SumarDias(fecha string, n int) (string, error) {
	t, err := r.ParseFecha(fecha)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(FormatoFecha), nil
}

// EsFecha reports whether s is a valid YYYY-MM-DD date.
func EsFecha(s string) bool {
	_, err := time.Parse(FormatoFecha, s)
	return err == nil
}
