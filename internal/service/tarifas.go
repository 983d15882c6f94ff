package service

import (
	"github.com/car1087/dinoplay-2-0/internal/config"
	"github.com/car1087/dinoplay-2-0/internal/liquidacion"

	"github.com/shopspring/decimal"
)

// Tarifas are the venue-wide prices and default opening hours.
type Tarifas struct {
	PrecioFicha  decimal.Decimal
	PrecioVR     decimal.Decimal
	HoraApertura string
	HoraCierre   string
}

func TarifasPorDefecto() Tarifas {
	return Tarifas{
		PrecioFicha:  decimal.NewFromInt(liquidacion.PrecioFichaDefault),
		PrecioVR:     decimal.NewFromInt(liquidacion.PrecioVRDefault),
		HoraApertura: "09:00",
		HoraCierre:   "21:00",
	}
}

func TarifasDesdeConfig(cfg *config.Config) Tarifas {
	return Tarifas{
		PrecioFicha:  decimal.NewFromInt(cfg.PrecioFicha),
		PrecioVR:     decimal.NewFromInt(cfg.PrecioVR),
		HoraApertura: cfg.HoraAperturaDefault,
		HoraCierre:   cfg.HoraCierreDefault,
	}
}

func (t Tarifas) horaApertura(h *string) string {
	if h == nil || *h == "" {
		return t.HoraApertura
	}
	return *h
}

func (t Tarifas) horaCierre(h *string) string {
	if h == nil || *h == "" {
		return t.HoraCierre
	}
	return *h
}
