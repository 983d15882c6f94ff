package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/car1087/dinoplay-2-0/internal/dto"
	"github.com/car1087/dinoplay-2-0/internal/horalocal"
	"github.com/car1087/dinoplay-2-0/internal/liquidacion"
	"github.com/car1087/dinoplay-2-0/internal/model"
	"github.com/car1087/dinoplay-2-0/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// TurnoService drives the worker's screen during a shift: today's config,
// the product sale counter, the VR tally and a live settlement preview.
type TurnoService interface {
	Estado(ctx context.Context, trabajadorID uuid.UUID) (*dto.TurnoResponse, error)
	ProponerVenta(ctx context.Context, trabajadorID uuid.UUID, indice int) (*dto.TurnoResponse, error)
	ConfirmarVenta(ctx context.Context, trabajadorID uuid.UUID) (*dto.TurnoResponse, error)
	CancelarVenta(ctx context.Context, trabajadorID uuid.UUID) (*dto.TurnoResponse, error)
	IncrementarVR(ctx context.Context, trabajadorID uuid.UUID) (*dto.TurnoResponse, error)
	DecrementarVR(ctx context.Context, trabajadorID uuid.UUID) (*dto.TurnoResponse, error)
	Calcular(ctx context.Context, trabajadorID uuid.UUID, req dto.CalcularRequest) (*liquidacion.Resultado, error)
}

type turnoService struct {
	configs       repository.ConfiguracionRepository
	liquidaciones repository.LiquidacionRepository
	turnos        repository.TurnoStore
	reloj         *horalocal.Reloj
	tarifas       Tarifas

	mu          sync.Mutex
	ultimaPurga string
}

func NewTurnoService(
	configs repository.ConfiguracionRepository,
	liquidaciones repository.LiquidacionRepository,
	turnos repository.TurnoStore,
	reloj *horalocal.Reloj,
	tarifas Tarifas,
) TurnoService {
	return &turnoService{
		configs:       configs,
		liquidaciones: liquidaciones,
		turnos:        turnos,
		reloj:         reloj,
		tarifas:       tarifas,
	}
}

// estadoTurno is everything loaded for one worker on one venue date.
type estadoTurno struct {
	fecha       string
	config      *model.ConfiguracionDiaria // nil when the admin has not configured the date
	turno       *liquidacion.Turno
	yaLiquidado bool
}

// cargar fetches the config, the settlement flag and the cached shift in parallel.
func (s *turnoService) cargar(ctx context.Context, trabajadorID uuid.UUID) (*estadoTurno, error) {
	est := &estadoTurno{fecha: s.reloj.Hoy()}
	s.purgarSiCambioDia(ctx, est.fecha)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cfg, err := s.configs.FindByFecha(gctx, est.fecha)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("configuracion: %w", err)
		}
		est.config = cfg
		return nil
	})
	g.Go(func() error {
		existe, err := s.liquidaciones.Exists(gctx, trabajadorID, est.fecha)
		if err != nil {
			return fmt.Errorf("liquidacion existente: %w", err)
		}
		est.yaLiquidado = existe
		return nil
	})
	g.Go(func() error {
		t, err := s.turnos.Get(gctx, est.fecha, trabajadorID)
		if err != nil {
			return fmt.Errorf("turno: %w", err)
		}
		est.turno = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if est.config != nil {
		items := itemsDesdeConfig(est.config)
		if est.turno == nil {
			est.turno = &liquidacion.Turno{Fecha: est.fecha, Inventario: liquidacion.Inventario{Items: items}}
		} else {
			est.turno.Inventario.Sincronizar(items)
		}
	}
	if est.turno == nil {
		est.turno = &liquidacion.Turno{Fecha: est.fecha}
	}
	return est, nil
}

func (s *turnoService) Estado(ctx context.Context, trabajadorID uuid.UUID) (*dto.TurnoResponse, error) {
	est, err := s.cargar(ctx, trabajadorID)
	if err != nil {
		return nil, err
	}
	return s.respuesta(est), nil
}

func (s *turnoService) ProponerVenta(ctx context.Context, trabajadorID uuid.UUID, indice int) (*dto.TurnoResponse, error) {
	return s.mutar(ctx, trabajadorID, func(t *liquidacion.Turno) error {
		return t.Inventario.Proponer(indice)
	})
}

func (s *turnoService) ConfirmarVenta(ctx context.Context, trabajadorID uuid.UUID) (*dto.TurnoResponse, error) {
	return s.mutar(ctx, trabajadorID, func(t *liquidacion.Turno) error {
		_, err := t.Inventario.Confirmar()
		return err
	})
}

func (s *turnoService) CancelarVenta(ctx context.Context, trabajadorID uuid.UUID) (*dto.TurnoResponse, error) {
	return s.mutar(ctx, trabajadorID, func(t *liquidacion.Turno) error {
		t.Inventario.Cancelar()
		return nil
	})
}

func (s *turnoService) IncrementarVR(ctx context.Context, trabajadorID uuid.UUID) (*dto.TurnoResponse, error) {
	return s.mutar(ctx, trabajadorID, func(t *liquidacion.Turno) error {
		t.VR.Incrementar()
		return nil
	})
}

func (s *turnoService) DecrementarVR(ctx context.Context, trabajadorID uuid.UUID) (*dto.TurnoResponse, error) {
	return s.mutar(ctx, trabajadorID, func(t *liquidacion.Turno) error {
		t.VR.Decrementar()
		return nil
	})
}

// mutar applies fn to today's shift. Shifts can only change while the date is
// configured and the worker has not settled yet.
func (s *turnoService) mutar(ctx context.Context, trabajadorID uuid.UUID, fn func(*liquidacion.Turno) error) (*dto.TurnoResponse, error) {
	est, err := s.cargar(ctx, trabajadorID)
	if err != nil {
		return nil, err
	}
	if est.config == nil {
		return nil, ErrSinConfiguracion
	}
	if est.yaLiquidado {
		return nil, ErrLiquidacionDuplicada
	}

	items := itemsDesdeConfig(est.config)
	turno, err := s.turnos.Actualizar(ctx, est.fecha, trabajadorID, est.turno, func(t *liquidacion.Turno) error {
		t.Inventario.Sincronizar(items)
		return fn(t)
	})
	if err != nil {
		return nil, err
	}
	est.turno = turno
	return s.respuesta(est), nil
}

// Calcular previews the settlement for the given counters. Nothing is written.
func (s *turnoService) Calcular(ctx context.Context, trabajadorID uuid.UUID, req dto.CalcularRequest) (*liquidacion.Resultado, error) {
	est, err := s.cargar(ctx, trabajadorID)
	if err != nil {
		return nil, err
	}
	if est.config == nil {
		return nil, ErrSinConfiguracion
	}

	finales := est.config.FichasIniciales
	if req.FichasFinales != nil {
		finales = *req.FichasFinales
	}
	in := liquidacion.Entrada{
		FichasIniciales: est.config.FichasIniciales,
		FichasFinales:   finales,
		UsosVR:          req.UsosVR,
		CuponesArcade:   req.CuponesArcade,
		CuponesVR:       req.CuponesVR,
		PrecioFicha:     s.tarifas.PrecioFicha,
		PrecioVR:        s.tarifas.PrecioVR,
		VentasProductos: est.turno.Inventario.TotalVentas(),
		DepositosNequi:  req.DepositosNequi,
	}
	if err := in.Validar(); err != nil {
		return nil, err
	}
	r := liquidacion.Calcular(in)
	return &r, nil
}

func (s *turnoService) respuesta(est *estadoTurno) *dto.TurnoResponse {
	inv := est.turno.Inventario
	resp := &dto.TurnoResponse{
		Fecha:            est.fecha,
		FechaTexto:       s.reloj.FormatearFecha(est.fecha, horalocal.Opciones{EstiloFecha: horalocal.EstiloCompleto}),
		Productos:        make([]dto.ProductoTurnoResponse, len(inv.Items)),
		Pendiente:        inv.Pendiente,
		UsosVR:           est.turno.VR.Usos,
		VentasProductos:  inv.TotalVentas(),
		YaLiquidado:      est.yaLiquidado,
		PrecioFicha:      s.tarifas.PrecioFicha,
		PrecioVR:         s.tarifas.PrecioVR,
		PartidasPorCupon: liquidacion.PartidasPorCupon,
	}
	for i, it := range inv.Items {
		resp.Productos[i] = dto.ProductoTurnoResponse{
			Indice:          i,
			Nombre:          it.Nombre,
			CantidadInicial: it.CantidadInicial,
			CantidadVendida: it.CantidadVendida,
			Disponibles:     it.Disponibles(),
			PrecioUnitario:  it.PrecioUnitario,
			Agotado:         it.Agotado(),
		}
	}

	if c := est.config; c != nil {
		resp.Configuracion = &dto.TurnoConfiguracion{
			MontoBase:       c.MontoBase,
			FichasIniciales: c.FichasIniciales,
			HoraApertura:    s.tarifas.horaApertura(c.HoraApertura),
			HoraCierre:      s.tarifas.horaCierre(c.HoraCierre),
		}
		// Nothing played yet: final tokens default to the initial stock.
		vista := liquidacion.Calcular(liquidacion.Entrada{
			FichasIniciales: c.FichasIniciales,
			FichasFinales:   c.FichasIniciales,
			PrecioFicha:     s.tarifas.PrecioFicha,
			PrecioVR:        s.tarifas.PrecioVR,
			VentasProductos: resp.VentasProductos,
		})
		resp.VistaPrevia = &vista
	}
	return resp
}

// purgarSiCambioDia drops shift state of past dates once per venue date.
// Failures are only logged; the cleanup cron retries later.
func (s *turnoService) purgarSiCambioDia(ctx context.Context, hoy string) {
	s.mu.Lock()
	if s.ultimaPurga == hoy {
		s.mu.Unlock()
		return
	}
	s.ultimaPurga = hoy
	s.mu.Unlock()

	n, err := s.turnos.PurgarAnteriores(ctx, hoy)
	if err != nil {
		log.Warn().Err(err).Str("hoy", hoy).Msg("turno: stale shift purge failed")
		return
	}
	if n > 0 {
		log.Info().Int("keys", n).Str("hoy", hoy).Msg("turno: stale shifts purged")
	}
}

func itemsDesdeConfig(c *model.ConfiguracionDiaria) []liquidacion.ItemInventario {
	items := make([]liquidacion.ItemInventario, 0, len(c.Productos))
	for _, p := range c.Productos {
		items = append(items, liquidacion.ItemInventario{
			Nombre:          p.Nombre,
			CantidadInicial: p.CantidadInicial,
			PrecioUnitario:  p.PrecioUnitario,
		})
	}
	return items
}
