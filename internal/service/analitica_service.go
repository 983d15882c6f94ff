package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/car1087/dinoplay-2-0/internal/dto"
	"github.com/car1087/dinoplay-2-0/internal/horalocal"
	"github.com/car1087/dinoplay-2-0/internal/infra"
	"github.com/car1087/dinoplay-2-0/internal/model"
	"github.com/car1087/dinoplay-2-0/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	DiasAnaliticaDefault = 30
	DiasAnaliticaMax     = 365
)

var ErrRangoInvalido = errors.New("dias debe estar entre 1 y 365")

type AnaliticaService interface {
	// Resumen aggregates the settlements of the last dias venue dates, today included.
	Resumen(ctx context.Context, dias int) (*dto.AnaliticaResponse, error)
	// Exportar returns the same range as an XLSX workbook.
	Exportar(ctx context.Context, dias int) ([]byte, error)
}

type analiticaService struct {
	repo     repository.LiquidacionRepository
	usuarios repository.UsuarioRepository
	reloj    *horalocal.Reloj
}

func NewAnaliticaService(repo repository.LiquidacionRepository, usuarios repository.UsuarioRepository, reloj *horalocal.Reloj) AnaliticaService {
	return &analiticaService{repo: repo, usuarios: usuarios, reloj: reloj}
}

func (s *analiticaService) rango(ctx context.Context, dias int) (desde, hasta string, ls []model.Liquidacion, err error) {
	if dias == 0 {
		dias = DiasAnaliticaDefault
	}
	if dias < 1 || dias > DiasAnaliticaMax {
		return "", "", nil, ErrRangoInvalido
	}
	hasta = s.reloj.Hoy()
	desde, err = s.reloj.SumarDias(hasta, -(dias - 1))
	if err != nil {
		return "", "", nil, err
	}
	ls, err = s.repo.ListDesde(ctx, desde)
	if err != nil {
		return "", "", nil, fmt.Errorf("analitica desde %s: %w", desde, err)
	}
	return desde, hasta, ls, nil
}

func (s *analiticaService) Resumen(ctx context.Context, dias int) (*dto.AnaliticaResponse, error) {
	desde, hasta, ls, err := s.rango(ctx, dias)
	if err != nil {
		return nil, err
	}
	if dias == 0 {
		dias = DiasAnaliticaDefault
	}

	resp := &dto.AnaliticaResponse{
		Desde:         desde,
		Hasta:         hasta,
		Dias:          dias,
		Liquidaciones: len(ls),
		GananciaNeta:  decimal.Zero,
		VentasArcade:  decimal.Zero,
		VentasVR:      decimal.Zero,
		Serie:         serieDiaria(ls),
	}
	for _, l := range ls {
		resp.GananciaNeta = resp.GananciaNeta.Add(l.GananciaNeta)
		resp.VentasArcade = resp.VentasArcade.Add(l.VentasArcade)
		resp.VentasVR = resp.VentasVR.Add(l.VentasVR)
	}
	resp.VentasBrutas = resp.VentasArcade.Add(resp.VentasVR)
	return resp, nil
}

func (s *analiticaService) Exportar(ctx context.Context, dias int) ([]byte, error) {
	_, _, ls, err := s.rango(ctx, dias)
	if err != nil {
		return nil, err
	}
	nombres, err := nombresTrabajadores(ctx, s.usuarios, ls)
	if err != nil {
		return nil, err
	}

	filas := make([]infra.FilaExportacion, len(ls))
	for i, l := range ls {
		filas[i] = infra.FilaExportacion{
			Fecha:            l.Fecha,
			Trabajador:       nombres[l.TrabajadorID],
			FichasConsumidas: max(0, l.FichasIniciales-l.FichasFinales),
			UsosVR:           l.UsosVR,
			CuponesArcade:    l.CuponesArcade,
			CuponesVR:        l.CuponesVR,
			VentasArcade:     l.VentasArcade,
			VentasVR:         l.VentasVR,
			VentasProductos:  l.VentasProductos,
			TotalVendido:     l.TotalVendido,
			GananciaNeta:     l.GananciaNeta,
		}
	}
	serie := serieDiaria(ls)
	resumen := make([]infra.FilaResumen, len(serie))
	for i, p := range serie {
		resumen[i] = infra.FilaResumen{
			Fecha:         p.Fecha,
			Liquidaciones: p.Liquidaciones,
			VentasArcade:  p.VentasArcade,
			VentasVR:      p.VentasVR,
			GananciaNeta:  p.GananciaNeta,
		}
	}
	return infra.ExportarLiquidacionesXLSX(filas, resumen)
}

// serieDiaria groups settlements by date. ls must be ordered by fecha ascending.
func serieDiaria(ls []model.Liquidacion) []dto.PuntoDiario {
	serie := []dto.PuntoDiario{}
	for _, l := range ls {
		n := len(serie)
		if n == 0 || serie[n-1].Fecha != l.Fecha {
			serie = append(serie, dto.PuntoDiario{
				Fecha:        l.Fecha,
				GananciaNeta: decimal.Zero,
				VentasArcade: decimal.Zero,
				VentasVR:     decimal.Zero,
			})
			n++
		}
		p := &serie[n-1]
		p.Liquidaciones++
		p.GananciaNeta = p.GananciaNeta.Add(l.GananciaNeta)
		p.VentasArcade = p.VentasArcade.Add(l.VentasArcade)
		p.VentasVR = p.VentasVR.Add(l.VentasVR)
	}
	return serie
}
