package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/car1087/dinoplay-2-0/internal/dto"
	"github.com/car1087/dinoplay-2-0/internal/horalocal"
	"github.com/car1087/dinoplay-2-0/internal/model"
	"github.com/car1087/dinoplay-2-0/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConfiguracionService interface {
	// Obtener returns nil, nil when the date has no config.
	Obtener(ctx context.Context, fecha string) (*dto.ConfiguracionResponse, error)
	Guardar(ctx context.Context, fecha string, adminID uuid.UUID, req dto.GuardarConfiguracionRequest) (*dto.ConfiguracionResponse, error)
}

type configuracionService struct {
	repo    repository.ConfiguracionRepository
	tarifas Tarifas
}

func NewConfiguracionService(repo repository.ConfiguracionRepository, tarifas Tarifas) ConfiguracionService {
	return &configuracionService{repo: repo, tarifas: tarifas}
}

func (s *configuracionService) Obtener(ctx context.Context, fecha string) (*dto.ConfiguracionResponse, error) {
	if !horalocal.EsFecha(fecha) {
		return nil, ErrFechaInvalida
	}
	cfg, err := s.repo.FindByFecha(ctx, fecha)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(cfg)
	return &resp, nil
}

// Guardar upserts the config of fecha. The product list replaces the stored one;
// entries with a blank name are dropped and names must be unique, ignoring case.
func (s *configuracionService) Guardar(ctx context.Context, fecha string, adminID uuid.UUID, req dto.GuardarConfiguracionRequest) (*dto.ConfiguracionResponse, error) {
	if !horalocal.EsFecha(fecha) {
		return nil, ErrFechaInvalida
	}

	cfg := &model.ConfiguracionDiaria{
		Fecha:           fecha,
		MontoBase:       req.MontoBase,
		FichasIniciales: *req.FichasIniciales,
		HoraApertura:    req.HoraApertura,
		HoraCierre:      req.HoraCierre,
		CreadoPor:       &adminID,
	}
	vistos := make(map[string]struct{}, len(req.Productos))
	for _, p := range req.Productos {
		nombre := strings.TrimSpace(p.Nombre)
		if nombre == "" {
			continue
		}
		if _, ok := vistos[strings.ToLower(nombre)]; ok {
			return nil, fmt.Errorf("%w: %s", ErrProductoRepetido, nombre)
		}
		vistos[strings.ToLower(nombre)] = struct{}{}
		cfg.Productos = append(cfg.Productos, model.ProductoPersonalizado{
			Nombre:          nombre,
			CantidadInicial: p.CantidadInicial,
			PrecioUnitario:  p.PrecioUnitario,
		})
	}

	if err := s.repo.Guardar(ctx, cfg); err != nil {
		return nil, fmt.Errorf("guardar configuracion %s: %w", fecha, err)
	}
	resp := s.toResponse(cfg)
	return &resp, nil
}

func (s *configuracionService) toResponse(c *model.ConfiguracionDiaria) dto.ConfiguracionResponse {
	productos := make([]dto.ProductoPersonalizadoResponse, len(c.Productos))
	for i, p := range c.Productos {
		productos[i] = dto.ProductoPersonalizadoResponse{
			Nombre:          p.Nombre,
			CantidadInicial: p.CantidadInicial,
			PrecioUnitario:  p.PrecioUnitario,
		}
	}
	return dto.ConfiguracionResponse{
		ID:              c.ID.String(),
		Fecha:           c.Fecha,
		MontoBase:       c.MontoBase,
		FichasIniciales: c.FichasIniciales,
		HoraApertura:    s.tarifas.horaApertura(c.HoraApertura),
		HoraCierre:      s.tarifas.horaCierre(c.HoraCierre),
		Productos:       productos,
		ActualizadoEn:   c.UpdatedAt,
	}
}
