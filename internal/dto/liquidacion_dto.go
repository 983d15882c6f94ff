package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ChecklistRequest struct {
	MaquinasDesconectadas bool `json:"maquinas_desconectadas"`
	MaquinasLimpias       bool `json:"maquinas_limpias"`
	PisoBarrido           bool `json:"piso_barrido"`
	AvisoRecogido         bool `json:"aviso_recogido"`
}

type RegistrarLiquidacionRequest struct {
	FichasFinales  *int             `json:"fichas_finales"  validate:"required,min=0"`
	UsosVR         int              `json:"usos_vr"         validate:"min=0"`
	CuponesArcade  int              `json:"cupones_arcade"  validate:"min=0"`
	CuponesVR      int              `json:"cupones_vr"      validate:"min=0"`
	DepositosNequi decimal.Decimal  `json:"depositos_nequi" validate:"min=0"`
	NotasApertura  *string          `json:"notas_apertura"  validate:"omitempty,max=1000"`
	NotasCierre    *string          `json:"notas_cierre"    validate:"omitempty,max=1000"`
	Checklist      ChecklistRequest `json:"checklist"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LiquidacionProductoResponse struct {
	Nombre          string          `json:"nombre"`
	CantidadInicial int             `json:"cantidad_inicial"`
	CantidadFinal   int             `json:"cantidad_final"`
	Vendidas        int             `json:"vendidas"`
	PrecioUnitario  decimal.Decimal `json:"precio_unitario"`
}

type ChecklistResponse struct {
	MaquinasDesconectadas bool      `json:"maquinas_desconectadas"`
	MaquinasLimpias       bool      `json:"maquinas_limpias"`
	PisoBarrido           bool      `json:"piso_barrido"`
	AvisoRecogido         bool      `json:"aviso_recogido"`
	CompletadoEn          time.Time `json:"completado_en"`
}

type LiquidacionResponse struct {
	ID               string          `json:"id"`
	TrabajadorID     string          `json:"trabajador_id"`
	TrabajadorNombre string          `json:"trabajador_nombre"`
	Fecha            string          `json:"fecha"`
	FichasIniciales  int             `json:"fichas_iniciales"`
	FichasFinales    int             `json:"fichas_finales"`
	FichasConsumidas int             `json:"fichas_consumidas"`
	UsosVR           int             `json:"usos_vr"`
	CuponesArcade    int             `json:"cupones_arcade"`
	CuponesVR        int             `json:"cupones_vr"`
	MontoBase        decimal.Decimal `json:"monto_base"`
	VentasArcade     decimal.Decimal `json:"ventas_arcade"`
	VentasVR         decimal.Decimal `json:"ventas_vr"`
	VentasProductos  decimal.Decimal `json:"ventas_productos"`
	TotalVendido     decimal.Decimal `json:"total_vendido"`
	GananciaNeta     decimal.Decimal `json:"ganancia_neta"`
	DepositosNequi   decimal.Decimal `json:"depositos_nequi"`
	NotasApertura    *string         `json:"notas_apertura"`
	NotasCierre      *string         `json:"notas_cierre"`
	CreadoEn         time.Time       `json:"creado_en"`

	Productos []LiquidacionProductoResponse `json:"productos,omitempty"`
	Checklist *ChecklistResponse            `json:"checklist,omitempty"`
}
