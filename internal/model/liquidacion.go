package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// IndiceLiquidacionUnica enforces one settlement per worker per venue date.
const IndiceLiquidacionUnica = "idx_liquidacion_trabajador_fecha"

// Liquidacion is the end-of-shift settlement of one worker.
// Derived amounts are computed once at save time and never recomputed on read.
// Rows are never updated; an admin may delete them.
type Liquidacion struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	TrabajadorID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_liquidacion_trabajador_fecha,priority:1"`
	Fecha           string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_liquidacion_trabajador_fecha,priority:2;index"`
	FichasIniciales int       `gorm:"not null"`
	FichasFinales   int       `gorm:"not null"`
	UsosVR          int       `gorm:"not null"`
	CuponesArcade   int       `gorm:"not null"`
	CuponesVR       int       `gorm:"not null"`

	MontoBase       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VentasArcade    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VentasVR        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	VentasProductos decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalVendido    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GananciaNeta    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// DepositosNequi is informational, never part of the profit.
	DepositosNequi decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	NotasApertura *string
	NotasCierre   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Productos []LiquidacionProducto `gorm:"foreignKey:LiquidacionID;constraint:OnDelete:CASCADE"`
	Checklist *Checklist            `gorm:"foreignKey:LiquidacionID;constraint:OnDelete:CASCADE"`
}

func (Liquidacion) TableName() string { return "liquidaciones" }

func (l *Liquidacion) BeforeCreate(*gorm.DB) error {
	asignarID(&l.ID)
	return nil
}

// LiquidacionProducto is the immutable stock snapshot of one product.
type LiquidacionProducto struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	LiquidacionID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Nombre          string          `gorm:"not null"`
	CantidadInicial int             `gorm:"not null"`
	CantidadFinal   int             `gorm:"not null"`
	PrecioUnitario  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (LiquidacionProducto) TableName() string { return "liquidacion_productos" }

func (p *LiquidacionProducto) BeforeCreate(*gorm.DB) error {
	asignarID(&p.ID)
	return nil
}

// Vendidas is the number of units sold during the shift.
func (p LiquidacionProducto) Vendidas() int {
	return p.CantidadInicial - p.CantidadFinal
}

// Checklist is the closing checklist of a settlement, one per Liquidacion.
type Checklist struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey"`
	LiquidacionID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	MaquinasDesconectadas bool      `gorm:"not null"`
	MaquinasLimpias       bool      `gorm:"not null"`
	PisoBarrido           bool      `gorm:"not null"`
	AvisoRecogido         bool      `gorm:"not null"`
	CompletadoEn          time.Time `gorm:"not null"`
}

func (Checklist) TableName() string { return "checklists" }

func (c *Checklist) BeforeCreate(*gorm.DB) error {
	asignarID(&c.ID)
	return nil
}

// Completo reports whether every closing task was checked.
func (c Checklist) Completo() bool {
	return c.MaquinasDesconectadas && c.MaquinasLimpias && c.PisoBarrido && c.AvisoRecogido
}
