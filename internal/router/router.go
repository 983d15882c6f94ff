package router

import (
	"context"
	"time"

	"github.com/car1087/dinoplay-2-0/internal/config"
	"github.com/car1087/dinoplay-2-0/internal/handler"
	"github.com/car1087/dinoplay-2-0/internal/horalocal"
	"github.com/car1087/dinoplay-2-0/internal/middleware"
	"github.com/car1087/dinoplay-2-0/internal/model"
	"github.com/car1087/dinoplay-2-0/internal/repository"
	"github.com/car1087/dinoplay-2-0/internal/service"
	"github.com/car1087/dinoplay-2-0/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// ctx bounds the background purge of the rate limiters.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, reloj *horalocal.Reloj, mailer handler.BreakerReporter) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	apiLimiter := middleware.NewLimitador("api", 600, time.Minute)
	loginLimiter := middleware.NewLimitador("login", 20, time.Minute)
	apiLimiter.Iniciar(ctx, 5*time.Minute)
	loginLimiter.Iniciar(ctx, 5*time.Minute)

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(apiLimiter))

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	configRepo := repository.NewConfiguracionRepository(db)
	liquidacionRepo := repository.NewLiquidacionRepository(db)
	turnoStore := repository.NewTurnoStore(rdb)
	versionStore := repository.NewVersionStore(rdb)

	// Worker dispatcher, injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	tarifas := service.TarifasDesdeConfig(cfg)
	authSvc := service.NewAuthService(usuarioRepo, versionStore, cfg)
	configSvc := service.NewConfiguracionService(configRepo, tarifas)
	turnoSvc := service.NewTurnoService(configRepo, liquidacionRepo, turnoStore, reloj, tarifas)
	liquidacionSvc := service.NewLiquidacionService(liquidacionRepo, configRepo, usuarioRepo, turnoStore, dispatcher, reloj, tarifas)
	analiticaSvc := service.NewAnaliticaService(liquidacionRepo, usuarioRepo, reloj)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	turnoH := handler.NewTurnoHandler(turnoSvc)
	liquidacionesH := handler.NewLiquidacionesHandler(liquidacionSvc)
	configH := handler.NewConfiguracionHandler(configSvc)
	analiticaH := handler.NewAnaliticaHandler(analiticaSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, mailer))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(loginLimiter), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret, versionStore))
	{
		v1.POST("/auth/logout", authH.Logout)
		v1.GET("/auth/me", authH.Me)

		v1.GET("/turno", middleware.RequireRole(model.RolTrabajador, model.RolAdmin), turnoH.Estado)
		turno := v1.Group("/turno", middleware.RequireRole(model.RolTrabajador))
		{
			turno.POST("/productos/:indice/proponer", turnoH.ProponerVenta)
			turno.POST("/productos/confirmar", turnoH.ConfirmarVenta)
			turno.POST("/productos/cancelar", turnoH.CancelarVenta)
			turno.POST("/vr/incrementar", turnoH.IncrementarVR)
			turno.POST("/vr/decrementar", turnoH.DecrementarVR)
			turno.POST("/calcular", turnoH.Calcular)
		}

		v1.POST("/liquidaciones", middleware.RequireRole(model.RolTrabajador), liquidacionesH.Registrar)
		liq := v1.Group("/liquidaciones", middleware.RequireRole(model.RolAdmin))
		{
			liq.GET("", liquidacionesH.Listar)
			liq.GET("/fechas", liquidacionesH.Fechas)
			liq.GET("/fecha/:fecha", liquidacionesH.PorFecha)
			liq.GET("/:id", liquidacionesH.Obtener)
			liq.GET("/:id/pdf", liquidacionesH.DescargarPDF)
			liq.DELETE("/:id", liquidacionesH.Eliminar)
		}

		cfgGroup := v1.Group("/configuracion", middleware.RequireRole(model.RolAdmin))
		{
			cfgGroup.GET("/:fecha", configH.Obtener)
			cfgGroup.PUT("/:fecha", configH.Guardar)
		}

		analitica := v1.Group("/analitica", middleware.RequireRole(model.RolAdmin))
		{
			analitica.GET("", analiticaH.Resumen)
			analitica.GET("/exportar", analiticaH.Exportar)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole(model.RolAdmin))
		{
			usuarios.GET("", usuariosH.Listar)
			usuarios.POST("", usuariosH.Crear)
			usuarios.PATCH("/:id/estado", usuariosH.CambiarEstado)
		}
	}

	// Swagger UI, only outside production
	if !cfg.IsProduction() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
