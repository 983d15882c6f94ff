package horalocal

import (
	"strings"
	"time"

	"github.com/goodsign/monday"
)

// Estilos accepted by Opciones.EstiloFecha / EstiloHora, and component
// styles for DiaSemana, Dia, Mes and Anio.
const (
	EstiloCompleto = "full"
	EstiloLargo    = "long"
	EstiloMedio    = "medium"
	EstiloCorto    = "short"
	Numerico       = "numeric"
	DosDigitos     = "2-digit"
)

// Opciones mirrors the usual locale-aware date formatter options. When a
// date or time style is set, component fields are ignored. With no option
// set the full date and time are rendered.
type Opciones struct {
	EstiloFecha string
	EstiloHora  string
	DiaSemana   string // long | short
	Dia         string // numeric | 2-digit
	Mes         string // long | short | numeric | 2-digit
	Anio        string // numeric | 2-digit
	Hora        bool
}

func (o Opciones) vacia() bool {
	return o == Opciones{}
}

// Formatear renders t for display in es-CO, in the venue timezone.
func (r *Reloj) Formatear(t time.Time, o Opciones) string {
	t = t.In(r.loc)
	if o.vacia() {
		o = Opciones{EstiloFecha: EstiloMedio, EstiloHora: EstiloMedio}
	}

	var partes []string
	if o.EstiloFecha != "" || o.EstiloHora != "" {
		if f := formatoEstiloFecha(t, o.EstiloFecha); f != "" {
			partes = append(partes, f)
		}
		if h := formatoHora(t, o.EstiloHora); h != "" {
			partes = append(partes, h)
		}
		return strings.Join(partes, ", ")
	}

	if f := formatoComponentes(t, o); f != "" {
		partes = append(partes, f)
	}
	if o.Hora {
		partes = append(partes, formatoHora(t, EstiloCorto))
	}
	return strings.Join(partes, ", ")
}

// FormatearFecha renders a stored YYYY-MM-DD date. The date is anchored at
// venue noon so no timezone conversion can move it to another day.
func (r *Reloj) FormatearFecha(fecha string, o Opciones) string {
	t, err := r.ParseFecha(fecha)
	if err != nil {
		return fecha
	}
	o.EstiloHora = ""
	o.Hora = false
	if o.vacia() {
		o.EstiloFecha = EstiloMedio
	}
	return r.Formatear(t.Add(12*time.Hour), o)
}

func formatoEstiloFecha(t time.Time, estilo string) string {
	switch estilo {
	case EstiloCompleto:
		return monday.Format(t, "Monday, 2 de January de 2006", monday.LocaleEsES)
	case EstiloLargo:
		return monday.Format(t, "2 de January de 2006", monday.LocaleEsES)
	case EstiloMedio:
		return t.Format("2/01/2006")
	case EstiloCorto:
		return t.Format("2/01/06")
	}
	return ""
}

func formatoHora(t time.Time, estilo string) string {
	var base string
	switch estilo {
	case EstiloCorto:
		base = t.Format("3:04")
	case EstiloMedio, EstiloLargo, EstiloCompleto:
		base = t.Format("3:04:05")
	default:
		return ""
	}
	if t.Hour() < 12 {
		return base + " a. m."
	}
	return base + " p. m."
}

func formatoComponentes(t time.Time, o Opciones) string {
	var layout []string

	switch o.Dia {
	case Numerico:
		layout = append(layout, "2")
	case DosDigitos:
		layout = append(layout, "02")
	}

	textual := false
	switch o.Mes {
	case EstiloLargo:
		layout = append(layout, "January")
		textual = true
	case EstiloCorto:
		layout = append(layout, "Jan")
		textual = true
	case Numerico:
		layout = append(layout, "1")
	case DosDigitos:
		layout = append(layout, "01")
	}

	switch o.Anio {
	case Numerico:
		layout = append(layout, "2006")
	case DosDigitos:
		layout = append(layout, "06")
	}

	sep := "/"
	if textual {
		sep = " "
		if o.Mes == EstiloLargo {
			sep = " de "
		}
	}
	fecha := ""
	if len(layout) > 0 {
		fecha = monday.Format(t, strings.Join(layout, sep), monday.LocaleEsES)
	}

	switch o.DiaSemana {
	case EstiloLargo:
		dia := monday.Format(t, "Monday", monday.LocaleEsES)
		if fecha == "" {
			return dia
		}
		return dia + ", " + fecha
	case EstiloCorto:
		dia := monday.Format(t, "Mon", monday.LocaleEsES)
		if fecha == "" {
			return dia
		}
		return dia + ", " + fecha
	}
	return fecha
}
