package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RolAdmin      = "admin"
	RolTrabajador = "trabajador"
)

// Usuario stores accounts with role-based access.
// Rol: "admin" | "trabajador". Inactive accounts cannot log in.
type Usuario struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	NombreCompleto string    `gorm:"not null"`
	Telefono       *string   `gorm:"type:varchar(30)"`
	PasswordHash   string    `gorm:"not null"`
	Rol            string    `gorm:"type:varchar(20);not null;index"`
	Activo         bool      `gorm:"not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Usuario) TableName() string { return "usuarios" }

func (u *Usuario) BeforeCreate(*gorm.DB) error {
	asignarID(&u.ID)
	return nil
}
