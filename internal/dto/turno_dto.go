package dto

import (
	"github.com/car1087/dinoplay-2-0/internal/liquidacion"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

// CalcularRequest previews a settlement without writing. A missing
// fichas_finales is taken as "nothing played yet".
type CalcularRequest struct {
	FichasFinales  *int            `json:"fichas_finales"  validate:"omitempty,min=0"`
	UsosVR         int             `json:"usos_vr"         validate:"min=0"`
	CuponesArcade  int             `json:"cupones_arcade"  validate:"min=0"`
	CuponesVR      int             `json:"cupones_vr"      validate:"min=0"`
	DepositosNequi decimal.Decimal `json:"depositos_nequi" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoTurnoResponse struct {
	Indice          int             `json:"indice"`
	Nombre          string          `json:"nombre"`
	CantidadInicial int             `json:"cantidad_inicial"`
	CantidadVendida int             `json:"cantidad_vendida"`
	Disponibles     int             `json:"disponibles"`
	PrecioUnitario  decimal.Decimal `json:"precio_unitario"`
	Agotado         bool            `json:"agotado"`
}

type TurnoConfiguracion struct {
	MontoBase       decimal.Decimal `json:"monto_base"`
	FichasIniciales int             `json:"fichas_iniciales"`
	HoraApertura    string          `json:"hora_apertura"`
	HoraCierre      string          `json:"hora_cierre"`
}

// TurnoResponse is the worker's view of today's shift.
type TurnoResponse struct {
	Fecha            string                  `json:"fecha"`
	FechaTexto       string                  `json:"fecha_texto"`
	Configuracion    *TurnoConfiguracion     `json:"configuracion"`
	Productos        []ProductoTurnoResponse `json:"productos"`
	Pendiente        *int                    `json:"pendiente"`
	UsosVR           int                     `json:"usos_vr"`
	VentasProductos  decimal.Decimal         `json:"ventas_productos"`
	YaLiquidado      bool                    `json:"ya_liquidado"`
	PrecioFicha      decimal.Decimal         `json:"precio_ficha"`
	PrecioVR         decimal.Decimal         `json:"precio_vr"`
	PartidasPorCupon int                     `json:"partidas_por_cupon"`
	VistaPrevia      *liquidacion.Resultado  `json:"vista_previa"`
}
