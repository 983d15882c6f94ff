package repository

import (
	"context"

	"github.com/car1087/dinoplay-2-0/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LiquidacionRepository interface {
	Exists(ctx context.Context, trabajadorID uuid.UUID, fecha string) (bool, error)
	// Create writes the settlement, its products and checklist in one
	// transaction. Returns ErrDuplicado when (trabajador, fecha) already exists.
	Create(ctx context.Context, l *model.Liquidacion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Liquidacion, error)
	ListRecientes(ctx context.Context, limit int) ([]model.Liquidacion, error)
	ListByFecha(ctx context.Context, fecha string) ([]model.Liquidacion, error)
	ListFechas(ctx context.Context) ([]string, error)
	ListDesde(ctx context.Context, desde string) ([]model.Liquidacion, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type liquidacionRepo struct{ db *gorm.DB }

func NewLiquidacionRepository(db *gorm.DB) LiquidacionRepository { return &liquidacionRepo{db: db} }

func (r *liquidacionRepo) Exists(ctx context.Context, trabajadorID uuid.UUID, fecha string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Liquidacion{}).
		Where("trabajador_id = ? AND fecha = ?", trabajadorID, fecha).
		Count(&n).Error
	return n > 0, err
}

func (r *liquidacionRepo) Create(ctx context.Context, l *model.Liquidacion) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(l).Error; err != nil {
			return err
		}
		for i := range l.Productos {
			l.Productos[i].LiquidacionID = l.ID
		}
		if len(l.Productos) > 0 {
			if err := tx.Create(&l.Productos).Error; err != nil {
				return err
			}
		}
		if l.Checklist != nil {
			l.Checklist.LiquidacionID = l.ID
			if err := tx.Create(l.Checklist).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return traducirDuplicado(err)
}

func (r *liquidacionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Liquidacion, error) {
	var l model.Liquidacion
	err := r.db.WithContext(ctx).
		Preload("Productos").
		Preload("Checklist").
		Where("id = ?", id).
		First(&l).Error
	return &l, err
}

func (r *liquidacionRepo) ListRecientes(ctx context.Context, limit int) ([]model.Liquidacion, error) {
	var ls []model.Liquidacion
	err := r.db.WithContext(ctx).
		Order("fecha DESC").Order("created_at DESC").
		Limit(limit).
		Find(&ls).Error
	return ls, err
}

func (r *liquidacionRepo) ListByFecha(ctx context.Context, fecha string) ([]model.Liquidacion, error) {
	var ls []model.Liquidacion
	err := r.db.WithContext(ctx).
		Preload("Productos").
		Preload("Checklist").
		Where("fecha = ?", fecha).
		Order("created_at ASC").
		Find(&ls).Error
	return ls, err
}

func (r *liquidacionRepo) ListFechas(ctx context.Context) ([]string, error) {
	var fechas []string
	err := r.db.WithContext(ctx).Model(&model.Liquidacion{}).
		Distinct("fecha").
		Order("fecha DESC").
		Pluck("fecha", &fechas).Error
	return fechas, err
}

func (r *liquidacionRepo) ListDesde(ctx context.Context, desde string) ([]model.Liquidacion, error) {
	var ls []model.Liquidacion
	err := r.db.WithContext(ctx).
		Where("fecha >= ?", desde).
		Order("fecha ASC").Order("created_at ASC").
		Find(&ls).Error
	return ls, err
}

// Delete removes the settlement with its checklist and product snapshots.
func (r *liquidacionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("liquidacion_id = ?", id).Delete(&model.Checklist{}).Error; err != nil {
			return err
		}
		if err := tx.Where("liquidacion_id = ?", id).Delete(&model.LiquidacionProducto{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&model.Liquidacion{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
