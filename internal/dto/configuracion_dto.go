package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// ProductoPersonalizadoRequest entries with a blank name are dropped on save.
type ProductoPersonalizadoRequest struct {
	Nombre          string          `json:"nombre"           validate:"max=80"`
	CantidadInicial int             `json:"cantidad_inicial" validate:"min=0"`
	PrecioUnitario  decimal.Decimal `json:"precio_unitario"  validate:"min=0"`
}

type GuardarConfiguracionRequest struct {
	MontoBase       decimal.Decimal                `json:"monto_base"       validate:"min=0"`
	FichasIniciales *int                           `json:"fichas_iniciales" validate:"required,min=0"`
	HoraApertura    *string                        `json:"hora_apertura"    validate:"omitempty,datetime=15:04"`
	HoraCierre      *string                        `json:"hora_cierre"      validate:"omitempty,datetime=15:04"`
	Productos       []ProductoPersonalizadoRequest `json:"productos"        validate:"dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoPersonalizadoResponse struct {
	Nombre          string          `json:"nombre"`
	CantidadInicial int             `json:"cantidad_inicial"`
	PrecioUnitario  decimal.Decimal `json:"precio_unitario"`
}

type ConfiguracionResponse struct {
	ID              string                          `json:"id"`
	Fecha           string                          `json:"fecha"`
	MontoBase       decimal.Decimal                 `json:"monto_base"`
	FichasIniciales int                             `json:"fichas_iniciales"`
	HoraApertura    string                          `json:"hora_apertura"`
	HoraCierre      string                          `json:"hora_cierre"`
	Productos       []ProductoPersonalizadoResponse `json:"productos"`
	ActualizadoEn   time.Time                       `json:"actualizado_en"`
}

// ConfiguracionEnvelope carries a null configuracion when the date has none.
type ConfiguracionEnvelope struct {
	Configuracion *ConfiguracionResponse `json:"configuracion"`
}
