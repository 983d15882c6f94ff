package repository

import (
	"context"
	"errors"
	"time"

	"github.com/car1087/dinoplay-2-0/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConfiguracionRepository interface {
	FindByFecha(ctx context.Context, fecha string) (*model.ConfiguracionDiaria, error)
	// Guardar upserts the config of c.Fecha and replaces its products in one transaction.
	Guardar(ctx context.Context, c *model.ConfiguracionDiaria) error
}

type configuracionRepo struct{ db *gorm.DB }

func NewConfiguracionRepository(db *gorm.DB) ConfiguracionRepository {
	return &configuracionRepo{db: db}
}

func (r *configuracionRepo) FindByFecha(ctx context.Context, fecha string) (*model.ConfiguracionDiaria, error) {
	var c model.ConfiguracionDiaria
	err := r.db.WithContext(ctx).
		Preload("Productos", func(db *gorm.DB) *gorm.DB { return db.Order("orden ASC") }).
		Where("fecha = ?", fecha).
		First(&c).Error
	return &c, err
}

func (r *configuracionRepo) Guardar(ctx context.Context, c *model.ConfiguracionDiaria) error {
	productos := c.Productos
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var actual model.ConfiguracionDiaria
		err := tx.Where("fecha = ?", c.Fecha).First(&actual).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Omit("Productos").Create(c).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			c.ID = actual.ID
			c.CreatedAt = actual.CreatedAt
			c.UpdatedAt = time.Now()
			if err := tx.Model(&actual).
				Select("monto_base", "fichas_iniciales", "hora_apertura", "hora_cierre", "creado_por", "updated_at").
				Updates(map[string]any{
					"monto_base":       c.MontoBase,
					"fichas_iniciales": c.FichasIniciales,
					"hora_apertura":    c.HoraApertura,
					"hora_cierre":      c.HoraCierre,
					"creado_por":       c.CreadoPor,
					"updated_at":       c.UpdatedAt,
				}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("configuracion_id = ?", c.ID).Delete(&model.ProductoPersonalizado{}).Error; err != nil {
			return err
		}
		for i := range productos {
			productos[i].ID = uuid.Nil
			productos[i].ConfiguracionID = c.ID
			productos[i].Orden = i
		}
		if len(productos) > 0 {
			if err := tx.Create(&productos).Error; err != nil {
				return err
			}
		}
		c.Productos = productos
		return nil
	})
	return traducirDuplicado(err)
}
