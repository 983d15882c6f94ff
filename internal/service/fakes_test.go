package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/car1087/dinoplay-2-0/internal/horalocal"
	"github.com/car1087/dinoplay-2-0/internal/liquidacion"
	"github.com/car1087/dinoplay-2-0/internal/model"
	"github.com/car1087/dinoplay-2-0/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── In-memory repository fakes ────────────────────────────────────────────────

var (
	_ repository.UsuarioRepository       = (*fakeUsuarios)(nil)
	_ repository.ConfiguracionRepository = (*fakeConfigs)(nil)
	_ repository.LiquidacionRepository   = (*fakeLiquidaciones)(nil)
	_ repository.TurnoStore              = (*fakeTurnos)(nil)
	_ repository.VersionStore            = (*fakeVersiones)(nil)
)

type fakeUsuarios struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.Usuario
}

func newFakeUsuarios() *fakeUsuarios {
	return &fakeUsuarios{users: make(map[uuid.UUID]*model.Usuario)}
}

func (r *fakeUsuarios) Create(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if strings.EqualFold(x.Email, u.Email) {
			return repository.ErrDuplicado
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUsuarios) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUsuarios) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUsuarios) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Usuario
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUsuarios) ListByRol(_ context.Context, rol string) ([]model.Usuario, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Usuario
	for _, u := range r.users {
		if u.Rol == rol {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NombreCompleto < out[j].NombreCompleto })
	return out, nil
}

func (r *fakeUsuarios) Update(_ context.Context, u *model.Usuario) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUsuarios) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = activo
	return nil
}

type fakeConfigs struct {
	mu      sync.Mutex
	porDia  map[string]*model.ConfiguracionDiaria
	guardar int
}

func newFakeConfigs() *fakeConfigs {
	return &fakeConfigs{porDia: make(map[string]*model.ConfiguracionDiaria)}
}

func (r *fakeConfigs) FindByFecha(_ context.Context, fecha string) (*model.ConfiguracionDiaria, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.porDia[fecha]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Productos = append([]model.ProductoPersonalizado(nil), c.Productos...)
	return &cp, nil
}

func (r *fakeConfigs) Guardar(_ context.Context, c *model.ConfiguracionDiaria) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guardar++
	if prev, ok := r.porDia[c.Fecha]; ok {
		c.ID = prev.ID
	} else if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	for i := range c.Productos {
		c.Productos[i].Orden = i
		c.Productos[i].ConfiguracionID = c.ID
	}
	cp := *c
	cp.Productos = append([]model.ProductoPersonalizado(nil), c.Productos...)
	r.porDia[c.Fecha] = &cp
	return nil
}

type fakeLiquidaciones struct {
	mu  sync.Mutex
	ls  []*model.Liquidacion
	err error // returned by Create when set
}

func (r *fakeLiquidaciones) Exists(_ context.Context, trabajadorID uuid.UUID, fecha string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.ls {
		if l.TrabajadorID == trabajadorID && l.Fecha == fecha {
			return true, nil
		}
	}
	return false, nil
}

// Create emulates the (trabajador_id, fecha) unique index.
func (r *fakeLiquidaciones) Create(_ context.Context, l *model.Liquidacion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for _, x := range r.ls {
		if x.TrabajadorID == l.TrabajadorID && x.Fecha == l.Fecha {
			return repository.ErrDuplicado
		}
	}
	l.ID = uuid.New()
	l.CreatedAt = time.Now()
	cp := *l
	r.ls = append(r.ls, &cp)
	return nil
}

func (r *fakeLiquidaciones) FindByID(_ context.Context, id uuid.UUID) (*model.Liquidacion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.ls {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLiquidaciones) filtrar(fn func(*model.Liquidacion) bool, less func(a, b *model.Liquidacion) bool) []model.Liquidacion {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Liquidacion{}
	for _, l := range r.ls {
		if fn(l) {
			out = append(out, *l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func (r *fakeLiquidaciones) ListRecientes(_ context.Context, limit int) ([]model.Liquidacion, error) {
	out := r.filtrar(func(*model.Liquidacion) bool { return true }, func(a, b *model.Liquidacion) bool { return a.Fecha > b.Fecha })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeLiquidaciones) ListByFecha(_ context.Context, fecha string) ([]model.Liquidacion, error) {
	return r.filtrar(func(l *model.Liquidacion) bool { return l.Fecha == fecha }, func(a, b *model.Liquidacion) bool { return false }), nil
}

func (r *fakeLiquidaciones) ListFechas(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	vistas := map[string]bool{}
	var out []string
	for _, l := range r.ls {
		if !vistas[l.Fecha] {
			vistas[l.Fecha] = true
			out = append(out, l.Fecha)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out, nil
}

func (r *fakeLiquidaciones) ListDesde(_ context.Context, desde string) ([]model.Liquidacion, error) {
	return r.filtrar(func(l *model.Liquidacion) bool { return l.Fecha >= desde }, func(a, b *model.Liquidacion) bool { return a.Fecha < b.Fecha }), nil
}

func (r *fakeLiquidaciones) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, l := range r.ls {
		if l.ID == id {
			r.ls = append(r.ls[:i], r.ls[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// fakeTurnos stores JSON copies, like the Redis store does.
type fakeTurnos struct {
	mu     sync.Mutex
	datos  map[string][]byte
	purgas []string
}

func newFakeTurnos() *fakeTurnos { return &fakeTurnos{datos: make(map[string][]byte)} }

func claveTurno(fecha string, id uuid.UUID) string { return fecha + ":" + id.String() }

func (s *fakeTurnos) Get(_ context.Context, fecha string, id uuid.UUID) (*liquidacion.Turno, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.datos[claveTurno(fecha, id)]
	if !ok {
		return nil, nil
	}
	var t liquidacion.Turno
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *fakeTurnos) Actualizar(_ context.Context, fecha string, id uuid.UUID, semilla *liquidacion.Turno, fn func(*liquidacion.Turno) error) (*liquidacion.Turno, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &liquidacion.Turno{Fecha: fecha}
	if raw, ok := s.datos[claveTurno(fecha, id)]; ok {
		if err := json.Unmarshal(raw, t); err != nil {
			return nil, err
		}
	} else if semilla != nil {
		raw, _ := json.Marshal(semilla)
		_ = json.Unmarshal(raw, t)
	}
	if err := fn(t); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	s.datos[claveTurno(fecha, id)] = raw
	return t, nil
}

func (s *fakeTurnos) Clear(_ context.Context, fecha string, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.datos, claveTurno(fecha, id))
	return nil
}

func (s *fakeTurnos) PurgarAnteriores(_ context.Context, hoy string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgas = append(s.purgas, hoy)
	n := 0
	for k := range s.datos {
		if k[:10] < hoy {
			delete(s.datos, k)
			n++
		}
	}
	return n, nil
}

type fakeVersiones struct {
	mu sync.Mutex
	v  map[uuid.UUID]int64
}

func newFakeVersiones() *fakeVersiones { return &fakeVersiones{v: make(map[uuid.UUID]int64)} }

func (s *fakeVersiones) Actual(_ context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.v[id], nil
}

func (s *fakeVersiones) Incrementar(_ context.Context, id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.v[id]++
	return s.v[id], nil
}

type fakeNotificador struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (n *fakeNotificador) EncolarLiquidacion(_ context.Context, id uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.ids = append(n.ids, id)
	return nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

const hoyPrueba = "2026-10-15"

// relojFijo returns a venue clock stuck at 2026-10-15 10:00 Bogota.
func relojFijo(t *testing.T) *horalocal.Reloj {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	instante := time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC)
	return horalocal.NuevoConFuente(loc, func() time.Time { return instante })
}
