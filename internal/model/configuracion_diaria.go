package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ConfiguracionDiaria holds the parameters of one venue date. At most one per Fecha.
type ConfiguracionDiaria struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Fecha           string          `gorm:"type:varchar(10);uniqueIndex;not null"` // YYYY-MM-DD, venue-local
	MontoBase       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FichasIniciales int             `gorm:"not null"`
	HoraApertura    *string         `gorm:"type:varchar(5)"` // HH:MM
	HoraCierre      *string         `gorm:"type:varchar(5)"`
	CreadoPor       *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Productos []ProductoPersonalizado `gorm:"foreignKey:ConfiguracionID;constraint:OnDelete:CASCADE"`
}

func (ConfiguracionDiaria) TableName() string { return "configuraciones_diarias" }

func (c *ConfiguracionDiaria) BeforeCreate(*gorm.DB) error {
	asignarID(&c.ID)
	return nil
}

// ProductoPersonalizado is an ad-hoc product offered on one date.
// The set is replaced as a whole every time the config is saved.
type ProductoPersonalizado struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ConfiguracionID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Orden           int             `gorm:"not null"`
	Nombre          string          `gorm:"not null"`
	CantidadInicial int             `gorm:"not null"`
	PrecioUnitario  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt       time.Time
}

func (ProductoPersonalizado) TableName() string { return "productos_personalizados" }

func (p *ProductoPersonalizado) BeforeCreate(*gorm.DB) error {
	asignarID(&p.ID)
	return nil
}
