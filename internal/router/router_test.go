package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/car1087/dinoplay-2-0/internal/config"
	"github.com/car1087/dinoplay-2-0/internal/dto"
	"github.com/car1087/dinoplay-2-0/internal/horalocal"
	"github.com/car1087/dinoplay-2-0/internal/infra"
	"github.com/car1087/dinoplay-2-0/internal/liquidacion"
	"github.com/car1087/dinoplay-2-0/internal/model"
	"github.com/car1087/dinoplay-2-0/internal/repository"
	"github.com/car1087/dinoplay-2-0/internal/service"
	"github.com/car1087/dinoplay-2-0/internal/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	hoy            = "2026-10-15"
	passwordPrueba = "dino1234"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Helpers ──────────────────────────────────────────────────────────────────

type testEnv struct {
	engine *gin.Engine
	db     *gorm.DB
	rdb    *redis.Client
	admin  string // access token
	ana    string // access token of a worker
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                 "test",
		JWTSecret:           "test_jwt_secret_32_chars_minimum!",
		JWTExpirationHours:  8,
		JWTRefreshHours:     24,
		CORSOrigin:          "*",
		PrecioFicha:         3500,
		PrecioVR:            6000,
		HoraAperturaDefault: "09:00",
		HoraCierreDefault:   "21:00",
	}
}

func relojFijo(t *testing.T) *horalocal.Reloj {
	t.Helper()
	loc, err := time.LoadLocation("America/Bogota")
	require.NoError(t, err)
	instante := time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC)
	return horalocal.NuevoConFuente(loc, func() time.Time { return instante })
}

func sembrarUsuario(t *testing.T, db *gorm.DB, email, nombre, rol string) *model.Usuario {
	t.Helper()
	hash, err := service.HashPassword(passwordPrueba)
	require.NoError(t, err)
	u := &model.Usuario{Email: email, NombreCompleto: nombre, PasswordHash: hash, Rol: rol, Activo: true}
	require.NoError(t, repository.NewUsuarioRepository(db).Create(context.Background(), u))
	return u
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := infra.NewDatabase("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	env := &testEnv{
		engine: New(ctx, testConfig(), db, rdb, relojFijo(t), nil),
		db:     db,
		rdb:    rdb,
	}
	sembrarUsuario(t, db, "admin@dinoplay.co", "Dueña", model.RolAdmin)
	sembrarUsuario(t, db, "ana@dinoplay.co", "Ana Gómez", model.RolTrabajador)
	env.admin = env.login(t, "admin@dinoplay.co").AccessToken
	env.ana = env.login(t, "ana@dinoplay.co").AccessToken
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	switch b := body.(type) {
	case nil:
		buf = &bytes.Buffer{}
	case string:
		buf = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		buf = bytes.NewBuffer(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, email string) dto.LoginResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/v1/auth/login", dto.LoginRequest{Email: email, Password: passwordPrueba}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.LoginResponse
	decodeJSON(t, w, &resp)
	return resp
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, dest any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

func intPtr(v int) *int { return &v }

func (e *testEnv) configurarHoy(t *testing.T) {
	t.Helper()
	w := e.do(t, http.MethodPut, "/v1/configuracion/"+hoy, map[string]any{
		"monto_base":       50000,
		"fichas_iniciales": 120,
		"productos": []map[string]any{
			{"nombre": "Llaveros", "cantidad_inicial": 5, "precio_unitario": 2500},
			{"nombre": "   ", "cantidad_inicial": 9, "precio_unitario": 1000},
		},
	}, e.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func checklistCompleto() dto.ChecklistRequest {
	return dto.ChecklistRequest{MaquinasDesconectadas: true, MaquinasLimpias: true, PisoBarrido: true, AvisoRecogido: true}
}

// ── Health / Auth ────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := setupTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	decodeJSON(t, w, &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "connected", body["redis"])
	assert.Equal(t, "disabled", body["smtp"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuth_LoginFallido(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/auth/login", dto.LoginRequest{Email: "ana@dinoplay.co", Password: "incorrecta"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/v1/auth/login", `{"email": `, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/auth/login", dto.LoginRequest{Email: "no-es-email", Password: "x"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"email"`)
}

func TestAuth_MeRefreshYLogout(t *testing.T) {
	env := setupTestEnv(t)
	sesion := env.login(t, "ana@dinoplay.co")

	w := env.do(t, http.MethodGet, "/v1/auth/me", nil, sesion.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	var me dto.SesionResponse
	decodeJSON(t, w, &me)
	assert.Equal(t, "Ana Gómez", me.Usuario.NombreCompleto)
	assert.False(t, me.EsAdmin)

	w = env.do(t, http.MethodPost, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: sesion.RefreshToken}, "")
	require.Equal(t, http.StatusOK, w.Code)
	var rotado dto.LoginResponse
	decodeJSON(t, w, &rotado)
	assert.NotEmpty(t, rotado.AccessToken)

	// an access token is not a refresh token
	w = env.do(t, http.MethodPost, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: sesion.AccessToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/v1/auth/logout", nil, rotado.AccessToken)
	assert.Equal(t, http.StatusNoContent, w.Code)

	for _, tok := range []string{sesion.AccessToken, rotado.AccessToken} {
		assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/v1/auth/me", nil, tok).Code)
	}
	w = env.do(t, http.MethodPost, "/v1/auth/refresh", dto.RefreshRequest{RefreshToken: rotado.RefreshToken}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRutas_Roles(t *testing.T) {
	env := setupTestEnv(t)

	casos := []struct {
		method, path, token string
		want                int
	}{
		{http.MethodGet, "/v1/turno", "", http.StatusUnauthorized},
		{http.MethodGet, "/v1/liquidaciones", env.ana, http.StatusForbidden},
		{http.MethodGet, "/v1/analitica", env.ana, http.StatusForbidden},
		{http.MethodGet, "/v1/usuarios", env.ana, http.StatusForbidden},
		{http.MethodPut, "/v1/configuracion/" + hoy, env.ana, http.StatusForbidden},
		{http.MethodPost, "/v1/turno/vr/incrementar", env.admin, http.StatusForbidden},
		{http.MethodPost, "/v1/liquidaciones", env.admin, http.StatusForbidden},
		{http.MethodGet, "/v1/turno", env.admin, http.StatusOK},
	}
	for _, c := range casos {
		w := env.do(t, c.method, c.path, nil, c.token)
		assert.Equal(t, c.want, w.Code, "%s %s", c.method, c.path)
	}
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

func TestUsuarios_CrearListarDesactivar(t *testing.T) {
	env := setupTestEnv(t)

	req := dto.CrearTrabajadorRequest{NombreCompleto: "Luis Pérez", Email: "luis@dinoplay.co", Password: "secreto1"}
	w := env.do(t, http.MethodPost, "/v1/usuarios", req, env.admin)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var luis dto.UsuarioResponse
	decodeJSON(t, w, &luis)
	assert.Equal(t, model.RolTrabajador, luis.Rol)
	assert.True(t, luis.Activo)

	w = env.do(t, http.MethodPost, "/v1/usuarios", req, env.admin)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodGet, "/v1/usuarios", nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	var lista []dto.UsuarioResponse
	decodeJSON(t, w, &lista)
	assert.Len(t, lista, 2)

	w = env.do(t, http.MethodPatch, "/v1/usuarios/"+luis.ID+"/estado", map[string]bool{"activo": false}, env.admin)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/v1/auth/login", dto.LoginRequest{Email: "luis@dinoplay.co", Password: "secreto1"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPatch, "/v1/usuarios/no-es-uuid/estado", map[string]bool{"activo": true}, env.admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ── Configuracion ────────────────────────────────────────────────────────────

func TestConfiguracion_NullYGuardar(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/configuracion/"+hoy, nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"configuracion": null}`, w.Body.String())

	env.configurarHoy(t)

	w = env.do(t, http.MethodGet, "/v1/configuracion/"+hoy, nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	var env2 dto.ConfiguracionEnvelope
	decodeJSON(t, w, &env2)
	require.NotNil(t, env2.Configuracion)
	assert.Equal(t, 120, env2.Configuracion.FichasIniciales)
	assert.Equal(t, "09:00", env2.Configuracion.HoraApertura)
	require.Len(t, env2.Configuracion.Productos, 1, "blank product names are dropped")
	assert.Equal(t, "Llaveros", env2.Configuracion.Productos[0].Nombre)

	w = env.do(t, http.MethodPut, "/v1/configuracion/"+hoy, map[string]any{"fichas_iniciales": -1}, env.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "fichas_iniciales")

	w = env.do(t, http.MethodPut, "/v1/configuracion/15-10-2026", map[string]any{"fichas_iniciales": 1}, env.admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Re-saving an existing date reports when it was updated.
	w = env.do(t, http.MethodPut, "/v1/configuracion/"+hoy, map[string]any{"monto_base": 60000, "fichas_iniciales": 130}, env.admin)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var actualizada dto.ConfiguracionEnvelope
	decodeJSON(t, w, &actualizada)
	require.NotNil(t, actualizada.Configuracion)
	assert.False(t, actualizada.Configuracion.ActualizadoEn.IsZero())
	assert.Equal(t, env2.Configuracion.ID, actualizada.Configuracion.ID)

	w = env.do(t, http.MethodPut, "/v1/configuracion/"+hoy, map[string]any{
		"monto_base":       60000,
		"fichas_iniciales": 130,
		"productos": []map[string]any{
			{"nombre": "Agua", "cantidad_inicial": 5, "precio_unitario": 2000},
			{"nombre": "Agua", "cantidad_inicial": 5, "precio_unitario": 3000},
		},
	}, env.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"detail":"Error de validacion","fields":{"productos":"unique"}}`, w.Body.String())
}

// ── Turno + Liquidacion ──────────────────────────────────────────────────────

func TestTurno_SinConfiguracion(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/turno", nil, env.ana)
	require.Equal(t, http.StatusOK, w.Code)
	var turno dto.TurnoResponse
	decodeJSON(t, w, &turno)
	assert.Nil(t, turno.Configuracion)
	assert.Equal(t, hoy, turno.Fecha)

	w = env.do(t, http.MethodPost, "/v1/turno/vr/incrementar", nil, env.ana)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestFlujoCompleto_TurnoYLiquidacion(t *testing.T) {
	env := setupTestEnv(t)
	env.configurarHoy(t)

	// three keychains sold, one cancelled proposal
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/v1/turno/productos/0/proponer", nil, env.ana).Code)
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/v1/turno/productos/confirmar", nil, env.ana).Code)
	}
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/v1/turno/productos/0/proponer", nil, env.ana).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/v1/turno/productos/cancelar", nil, env.ana).Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/v1/turno/productos/confirmar", nil, env.ana).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodPost, "/v1/turno/productos/7/proponer", nil, env.ana).Code)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/v1/turno/vr/incrementar", nil, env.ana).Code)
	}

	w := env.do(t, http.MethodGet, "/v1/turno", nil, env.ana)
	require.Equal(t, http.StatusOK, w.Code)
	var turno dto.TurnoResponse
	decodeJSON(t, w, &turno)
	require.Len(t, turno.Productos, 1)
	assert.Equal(t, 3, turno.Productos[0].CantidadVendida)
	assert.Equal(t, 2, turno.Productos[0].Disponibles)
	assert.Equal(t, 3, turno.UsosVR)
	assert.Nil(t, turno.Pendiente)
	assert.Equal(t, "7500", turno.VentasProductos.String())

	// preview
	w = env.do(t, http.MethodPost, "/v1/turno/calcular", dto.CalcularRequest{FichasFinales: intPtr(42), UsosVR: 3}, env.ana)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var previa liquidacion.Resultado
	decodeJSON(t, w, &previa)
	assert.Equal(t, "273000", previa.VentasArcade.String())
	assert.Equal(t, "298500", previa.GananciaNeta.String())

	// invalid submissions
	registro := dto.RegistrarLiquidacionRequest{FichasFinales: intPtr(42), UsosVR: 3, Checklist: dto.ChecklistRequest{PisoBarrido: true}}
	w = env.do(t, http.MethodPost, "/v1/liquidaciones", registro, env.ana)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/v1/liquidaciones", map[string]any{"fichas_finales": -1, "checklist": checklistCompleto()}, env.ana)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "fichas_finales")

	// settle
	notas := "Todo en orden"
	registro.Checklist = checklistCompleto()
	registro.NotasCierre = &notas
	w = env.do(t, http.MethodPost, "/v1/liquidaciones", registro, env.ana)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var liq dto.LiquidacionResponse
	decodeJSON(t, w, &liq)
	assert.Equal(t, "298500", liq.GananciaNeta.String())
	assert.Equal(t, "Ana Gómez", liq.TrabajadorNombre)
	assert.Equal(t, 78, liq.FichasConsumidas)
	require.Len(t, liq.Productos, 1)
	assert.Equal(t, 3, liq.Productos[0].Vendidas)
	require.NotNil(t, liq.Checklist)

	// the notification job was queued for the worker pool
	n, err := env.rdb.LLen(context.Background(), worker.QueueLiquidacion).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	// one settlement per worker per day
	w = env.do(t, http.MethodPost, "/v1/liquidaciones", registro, env.ana)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, http.StatusConflict, env.do(t, http.MethodPost, "/v1/turno/vr/incrementar", nil, env.ana).Code)

	w = env.do(t, http.MethodGet, "/v1/turno", nil, env.ana)
	decodeJSON(t, w, &turno)
	assert.True(t, turno.YaLiquidado)

	// admin views
	w = env.do(t, http.MethodGet, "/v1/liquidaciones", nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	var recientes []dto.LiquidacionResponse
	decodeJSON(t, w, &recientes)
	require.Len(t, recientes, 1)
	assert.Empty(t, recientes[0].Productos, "list view omits detail")

	w = env.do(t, http.MethodGet, "/v1/liquidaciones/fechas", nil, env.admin)
	assert.JSONEq(t, `{"fechas": ["2026-10-15"]}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/v1/liquidaciones/fecha/"+hoy, nil, env.admin)
	var delDia []dto.LiquidacionResponse
	decodeJSON(t, w, &delDia)
	assert.Len(t, delDia, 1)

	w = env.do(t, http.MethodGet, "/v1/liquidaciones/fecha/2026-10-01", nil, env.admin)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.do(t, http.MethodGet, "/v1/liquidaciones/fecha/ayer", nil, env.admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/liquidaciones/"+liq.ID, nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	var detalle dto.LiquidacionResponse
	decodeJSON(t, w, &detalle)
	assert.Equal(t, "Todo en orden", *detalle.NotasCierre)

	w = env.do(t, http.MethodGet, "/v1/liquidaciones/"+liq.ID+"/pdf", nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "liquidacion_2026-10-15_")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	// analytics
	w = env.do(t, http.MethodGet, "/v1/analitica?dias=7", nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	var ana dto.AnaliticaResponse
	decodeJSON(t, w, &ana)
	assert.Equal(t, 1, ana.Liquidaciones)
	assert.Equal(t, "291000", ana.VentasBrutas.String())
	assert.Equal(t, "2026-10-09", ana.Desde)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/v1/analitica?dias=abc", nil, env.admin).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/v1/analitica?dias=400", nil, env.admin).Code)

	w = env.do(t, http.MethodGet, "/v1/analitica/exportar", nil, env.admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	// delete
	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/v1/liquidaciones/"+liq.ID, nil, env.admin).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/v1/liquidaciones/"+liq.ID, nil, env.admin).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/v1/liquidaciones/"+liq.ID, nil, env.admin).Code)
}

func TestLiquidacion_SinTurnoUsaConfiguracion(t *testing.T) {
	env := setupTestEnv(t)
	env.configurarHoy(t)

	// no counter was touched: products are all still in stock
	registro := dto.RegistrarLiquidacionRequest{FichasFinales: intPtr(120), Checklist: checklistCompleto()}
	w := env.do(t, http.MethodPost, "/v1/liquidaciones", registro, env.ana)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var liq dto.LiquidacionResponse
	decodeJSON(t, w, &liq)
	assert.True(t, liq.GananciaNeta.IsZero())
	require.Len(t, liq.Productos, 1)
	assert.Equal(t, 0, liq.Productos[0].Vendidas)
}
