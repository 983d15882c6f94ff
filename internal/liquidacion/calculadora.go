// Package liquidacion holds the end-of-shift settlement rules: the sales
// breakdown derived from the shift counters, and the product/VR counters a
// worker moves while the shift is running.
package liquidacion

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	PrecioFichaDefault = 3500
	PrecioVRDefault    = 6000
	// PartidasPorCupon is the promo rule shown to workers: one arcade coupon every 6 games.
	PartidasPorCupon = 6
)

// ErrConteoNegativo is returned by Entrada.Validar for negative counters or amounts.
var ErrConteoNegativo = errors.New("los conteos y montos no pueden ser negativos")

// Entrada carries the raw shift counters. Prices are explicit so the
// calculation never reads configuration on its own.
type Entrada struct {
	FichasIniciales int
	FichasFinales   int
	UsosVR          int
	CuponesArcade   int
	CuponesVR       int
	PrecioFicha     decimal.Decimal
	PrecioVR        decimal.Decimal
	VentasProductos decimal.Decimal
	DepositosNequi  decimal.Decimal
}

// Resultado is the financial breakdown stored with a settlement.
type Resultado struct {
	FichasConsumidas int             `json:"fichas_consumidas"`
	VentasArcade     decimal.Decimal `json:"ventas_arcade"`
	VentasVR         decimal.Decimal `json:"ventas_vr"`
	VentasProductos  decimal.Decimal `json:"ventas_productos"`
	DepositosNequi   decimal.Decimal `json:"depositos_nequi"`
	TotalVendido     decimal.Decimal `json:"total_vendido"`
	GananciaNeta     decimal.Decimal `json:"ganancia_neta"`
}

// Calcular turns shift counters into the sales breakdown.
//
// Arcade coupons reduce the billable tokens before pricing and never push
// arcade sales below zero. VR coupons are recorded only: they do not reduce
// VR sales. The cash float and Nequi deposits are never part of the profit.
// Only derived values are floored; raw counters are taken as given (see Validar).
func Calcular(in Entrada) Resultado {
	consumidas := in.FichasIniciales - in.FichasFinales
	if consumidas < 0 {
		consumidas = 0
	}

	ventasArcade := decimal.NewFromInt(int64(consumidas - in.CuponesArcade)).Mul(in.PrecioFicha)
	if ventasArcade.IsNegative() {
		ventasArcade = decimal.Zero
	}

	ventasVR := decimal.NewFromInt(int64(in.UsosVR)).Mul(in.PrecioVR)

	total := ventasArcade.Add(ventasVR).Add(in.VentasProductos)
	neta := total
	if neta.IsNegative() {
		neta = decimal.Zero
	}

	return Resultado{
		FichasConsumidas: consumidas,
		VentasArcade:     ventasArcade,
		VentasVR:         ventasVR,
		VentasProductos:  in.VentasProductos,
		DepositosNequi:   in.DepositosNequi,
		TotalVendido:     total,
		GananciaNeta:     neta,
	}
}

// Validar rejects negative counters, prices or amounts.
func (in Entrada) Validar() error {
	conteos := []struct {
		campo string
		valor int
	}{
		{"fichas_iniciales", in.FichasIniciales},
		{"fichas_finales", in.FichasFinales},
		{"usos_vr", in.UsosVR},
		{"cupones_arcade", in.CuponesArcade},
		{"cupones_vr", in.CuponesVR},
	}
	for _, c := range conteos {
		if c.valor < 0 {
			return fmt.Errorf("%w: %s", ErrConteoNegativo, c.campo)
		}
	}

	montos := []struct {
		campo string
		valor decimal.Decimal
	}{
		{"precio_ficha", in.PrecioFicha},
		{"precio_vr", in.PrecioVR},
		{"ventas_productos", in.VentasProductos},
		{"depositos_nequi", in.DepositosNequi},
	}
	for _, m := range montos {
		if m.valor.IsNegative() {
			return fmt.Errorf("%w: %s", ErrConteoNegativo, m.campo)
		}
	}
	return nil
}

var impresoraCOP = message.NewPrinter(language.MustParse("es-CO"))

// FormatearCOP renders an amount as Colombian pesos without decimals, e.g. "$ 291.000".
func FormatearCOP(monto decimal.Decimal) string {
	entero := monto.Round(0).IntPart()
	if entero < 0 {
		return "-$ " + impresoraCOP.Sprintf("%d", -entero)
	}
	return "$ " + impresoraCOP.Sprintf("%d", entero)
}
