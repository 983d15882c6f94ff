package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/car1087/dinoplay-2-0/internal/dto"
	"github.com/car1087/dinoplay-2-0/internal/horalocal"
	"github.com/car1087/dinoplay-2-0/internal/infra"
	"github.com/car1087/dinoplay-2-0/internal/liquidacion"
	"github.com/car1087/dinoplay-2-0/internal/model"
	"github.com/car1087/dinoplay-2-0/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// limiteRecientes is the size of the admin's recent settlements list.
const limiteRecientes = 50

// Notificador schedules the post-save side effects of a settlement.
type Notificador interface {
	EncolarLiquidacion(ctx context.Context, liquidacionID uuid.UUID) error
}

type LiquidacionService interface {
	// Registrar saves today's settlement of the worker. It fails with
	// ErrLiquidacionDuplicada when one already exists for the date.
	Registrar(ctx context.Context, trabajadorID uuid.UUID, req dto.RegistrarLiquidacionRequest) (*dto.LiquidacionResponse, error)
	ListarRecientes(ctx context.Context) ([]dto.LiquidacionResponse, error)
	ListarFechas(ctx context.Context) ([]string, error)
	ListarPorFecha(ctx context.Context, fecha string) ([]dto.LiquidacionResponse, error)
	Obtener(ctx context.Context, id uuid.UUID) (*dto.LiquidacionResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	// PDF renders the receipt and returns it with a download file name.
	PDF(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}

type liquidacionService struct {
	repo        repository.LiquidacionRepository
	configs     repository.ConfiguracionRepository
	usuarios    repository.UsuarioRepository
	turnos      repository.TurnoStore
	notificador Notificador
	reloj       *horalocal.Reloj
	tarifas     Tarifas
}

func NewLiquidacionService(
	repo repository.LiquidacionRepository,
	configs repository.ConfiguracionRepository,
	usuarios repository.UsuarioRepository,
	turnos repository.TurnoStore,
	notificador Notificador,
	reloj *horalocal.Reloj,
	tarifas Tarifas,
) LiquidacionService {
	return &liquidacionService{
		repo:        repo,
		configs:     configs,
		usuarios:    usuarios,
		turnos:      turnos,
		notificador: notificador,
		reloj:       reloj,
		tarifas:     tarifas,
	}
}

func (s *liquidacionService) Registrar(ctx context.Context, trabajadorID uuid.UUID, req dto.RegistrarLiquidacionRequest) (*dto.LiquidacionResponse, error) {
	checklist := model.Checklist{
		MaquinasDesconectadas: req.Checklist.MaquinasDesconectadas,
		MaquinasLimpias:       req.Checklist.MaquinasLimpias,
		PisoBarrido:           req.Checklist.PisoBarrido,
		AvisoRecogido:         req.Checklist.AvisoRecogido,
	}
	if !checklist.Completo() {
		return nil, ErrChecklistIncompleto
	}
	if req.FichasFinales == nil {
		return nil, ErrFichasRequeridas
	}

	fecha := s.reloj.Hoy()
	cfg, err := s.configs.FindByFecha(ctx, fecha)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSinConfiguracion
	}
	if err != nil {
		return nil, fmt.Errorf("configuracion %s: %w", fecha, err)
	}

	existe, err := s.repo.Exists(ctx, trabajadorID, fecha)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, ErrLiquidacionDuplicada
	}

	inv := liquidacion.Inventario{Items: itemsDesdeConfig(cfg)}
	turno, err := s.turnos.Get(ctx, fecha, trabajadorID)
	if err != nil {
		return nil, fmt.Errorf("turno: %w", err)
	}
	if turno != nil {
		turno.Inventario.Sincronizar(inv.Items)
		inv = turno.Inventario
	}

	in := liquidacion.Entrada{
		FichasIniciales: cfg.FichasIniciales,
		FichasFinales:   *req.FichasFinales,
		UsosVR:          req.UsosVR,
		CuponesArcade:   req.CuponesArcade,
		CuponesVR:       req.CuponesVR,
		PrecioFicha:     s.tarifas.PrecioFicha,
		PrecioVR:        s.tarifas.PrecioVR,
		VentasProductos: inv.TotalVentas(),
		DepositosNequi:  req.DepositosNequi,
	}
	if err := in.Validar(); err != nil {
		return nil, err
	}
	r := liquidacion.Calcular(in)

	checklist.CompletadoEn = s.reloj.Ahora()
	liq := &model.Liquidacion{
		TrabajadorID:    trabajadorID,
		Fecha:           fecha,
		FichasIniciales: in.FichasIniciales,
		FichasFinales:   in.FichasFinales,
		UsosVR:          in.UsosVR,
		CuponesArcade:   in.CuponesArcade,
		CuponesVR:       in.CuponesVR,
		MontoBase:       cfg.MontoBase,
		VentasArcade:    r.VentasArcade,
		VentasVR:        r.VentasVR,
		VentasProductos: r.VentasProductos,
		TotalVendido:    r.TotalVendido,
		GananciaNeta:    r.GananciaNeta,
		DepositosNequi:  r.DepositosNequi,
		NotasApertura:   req.NotasApertura,
		NotasCierre:     req.NotasCierre,
		Checklist:       &checklist,
	}
	for _, p := range inv.Snapshot() {
		liq.Productos = append(liq.Productos, model.LiquidacionProducto{
			Nombre:          p.Nombre,
			CantidadInicial: p.CantidadInicial,
			CantidadFinal:   p.CantidadFinal,
			PrecioUnitario:  p.PrecioUnitario,
		})
	}

	if err := s.repo.Create(ctx, liq); err != nil {
		if errors.Is(err, repository.ErrDuplicado) {
			return nil, ErrLiquidacionDuplicada
		}
		return nil, fmt.Errorf("guardar liquidacion: %w", err)
	}

	if err := s.turnos.Clear(ctx, fecha, trabajadorID); err != nil {
		log.Warn().Err(err).Str("trabajador_id", trabajadorID.String()).Msg("liquidacion: clearing shift state failed")
	}
	if s.notificador != nil {
		if err := s.notificador.EncolarLiquidacion(ctx, liq.ID); err != nil {
			log.Error().Err(err).Str("liquidacion_id", liq.ID.String()).Msg("liquidacion: enqueue notification failed")
		}
	}

	nombre := ""
	if u, err := s.usuarios.FindByID(ctx, trabajadorID); err == nil {
		nombre = u.NombreCompleto
	}
	resp := toLiquidacionResponse(liq, nombre, true)
	return &resp, nil
}

func (s *liquidacionService) ListarRecientes(ctx context.Context) ([]dto.LiquidacionResponse, error) {
	ls, err := s.repo.ListRecientes(ctx, limiteRecientes)
	if err != nil {
		return nil, err
	}
	return s.conNombres(ctx, ls)
}

func (s *liquidacionService) ListarFechas(ctx context.Context) ([]string, error) {
	return s.repo.ListFechas(ctx)
}

// ListarPorFecha returns an empty list for dates without settlements.
func (s *liquidacionService) ListarPorFecha(ctx context.Context, fecha string) ([]dto.LiquidacionResponse, error) {
	if !horalocal.EsFecha(fecha) {
		return nil, ErrFechaInvalida
	}
	ls, err := s.repo.ListByFecha(ctx, fecha)
	if err != nil {
		return nil, err
	}
	return s.conNombres(ctx, ls)
}

func (s *liquidacionService) Obtener(ctx context.Context, id uuid.UUID) (*dto.LiquidacionResponse, error) {
	liq, err := s.buscar(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toLiquidacionResponse(liq, s.nombre(ctx, liq.TrabajadorID), true)
	return &resp, nil
}

func (s *liquidacionService) Eliminar(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoEncontrado
	}
	return err
}

func (s *liquidacionService) PDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	liq, err := s.buscar(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := infra.RenderLiquidacionPDF(infra.ReciboLiquidacion{
		Liquidacion: liq,
		Trabajador:  s.nombre(ctx, liq.TrabajadorID),
		FechaTexto:  s.reloj.FormatearFecha(liq.Fecha, horalocal.Opciones{EstiloFecha: horalocal.EstiloLargo}),
		GeneradoEn:  s.reloj.Formatear(s.reloj.Ahora(), horalocal.Opciones{}),
	})
	if err != nil {
		return nil, "", err
	}
	return data, fmt.Sprintf("liquidacion_%s_%s.pdf", liq.Fecha, liq.ID.String()[:8]), nil
}

func (s *liquidacionService) buscar(ctx context.Context, id uuid.UUID) (*model.Liquidacion, error) {
	liq, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	return liq, nil
}

func (s *liquidacionService) nombre(ctx context.Context, id uuid.UUID) string {
	u, err := s.usuarios.FindByID(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("trabajador_id", id.String()).Msg("liquidacion: worker lookup failed")
		return ""
	}
	return u.NombreCompleto
}

// conNombres resolves worker names with a single batched lookup.
func (s *liquidacionService) conNombres(ctx context.Context, ls []model.Liquidacion) ([]dto.LiquidacionResponse, error) {
	nombres, err := nombresTrabajadores(ctx, s.usuarios, ls)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.LiquidacionResponse, len(ls))
	for i := range ls {
		resp[i] = toLiquidacionResponse(&ls[i], nombres[ls[i].TrabajadorID], false)
	}
	return resp, nil
}

func nombresTrabajadores(ctx context.Context, usuarios repository.UsuarioRepository, ls []model.Liquidacion) (map[uuid.UUID]string, error) {
	nombres := make(map[uuid.UUID]string)
	if len(ls) == 0 {
		return nombres, nil
	}
	vistos := make(map[uuid.UUID]bool)
	ids := make([]uuid.UUID, 0, len(ls))
	for _, l := range ls {
		if !vistos[l.TrabajadorID] {
			vistos[l.TrabajadorID] = true
			ids = append(ids, l.TrabajadorID)
		}
	}
	us, err := usuarios.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("nombres de trabajadores: %w", err)
	}
	for _, u := range us {
		nombres[u.ID] = u.NombreCompleto
	}
	return nombres, nil
}

func toLiquidacionResponse(l *model.Liquidacion, nombre string, detalle bool) dto.LiquidacionResponse {
	resp := dto.LiquidacionResponse{
		ID:               l.ID.String(),
		TrabajadorID:     l.TrabajadorID.String(),
		TrabajadorNombre: nombre,
		Fecha:            l.Fecha,
		FichasIniciales:  l.FichasIniciales,
		FichasFinales:    l.FichasFinales,
		FichasConsumidas: max(0, l.FichasIniciales-l.FichasFinales),
		UsosVR:           l.UsosVR,
		CuponesArcade:    l.CuponesArcade,
		CuponesVR:        l.CuponesVR,
		MontoBase:        l.MontoBase,
		VentasArcade:     l.VentasArcade,
		VentasVR:         l.VentasVR,
		VentasProductos:  l.VentasProductos,
		TotalVendido:     l.TotalVendido,
		GananciaNeta:     l.GananciaNeta,
		DepositosNequi:   l.DepositosNequi,
		NotasApertura:    l.NotasApertura,
		NotasCierre:      l.NotasCierre,
		CreadoEn:         l.CreatedAt,
	}
	if !detalle {
		return resp
	}
	resp.Productos = make([]dto.LiquidacionProductoResponse, len(l.Productos))
	for i, p := range l.Productos {
		resp.Productos[i] = dto.LiquidacionProductoResponse{
			Nombre:          p.Nombre,
			CantidadInicial: p.CantidadInicial,
			CantidadFinal:   p.CantidadFinal,
			Vendidas:        p.Vendidas(),
			PrecioUnitario:  p.PrecioUnitario,
		}
	}
	if c := l.Checklist; c != nil {
		resp.Checklist = &dto.ChecklistResponse{
			MaquinasDesconectadas: c.MaquinasDesconectadas,
			MaquinasLimpias:       c.MaquinasLimpias,
			PisoBarrido:           c.PisoBarrido,
			AvisoRecogido:         c.AvisoRecogido,
			CompletadoEn:          c.CompletadoEn,
		}
	}
	return resp
}
