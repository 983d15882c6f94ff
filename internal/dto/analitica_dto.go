package dto

import "github.com/shopspring/decimal"

type PuntoDiario struct {
	Fecha         string          `json:"fecha"`
	Liquidaciones int             `json:"liquidaciones"`
	GananciaNeta  decimal.Decimal `json:"ganancia_neta"`
	VentasArcade  decimal.Decimal `json:"ventas_arcade"`
	VentasVR      decimal.Decimal `json:"ventas_vr"`
}

// AnaliticaResponse aggregates the settlements of [Desde, Hasta].
// VentasBrutas is arcade + VR.
type AnaliticaResponse struct {
	Desde         string          `json:"desde"`
	Hasta         string          `json:"hasta"`
	Dias          int             `json:"dias"`
	Liquidaciones int             `json:"liquidaciones"`
	GananciaNeta  decimal.Decimal `json:"ganancia_neta"`
	VentasArcade  decimal.Decimal `json:"ventas_arcade"`
	VentasVR      decimal.Decimal `json:"ventas_vr"`
	VentasBrutas  decimal.Decimal `json:"ventas_brutas"`
	Serie         []PuntoDiario   `json:"serie"`
}
