package infra

import (
	"fmt"

	"github.com/car1087/dinoplay-2-0/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the record store for the configured driver ("postgres" or
// "sqlite"), runs AutoMigrate for every model and then applies the idempotent
// SQL patches GORM cannot express. sqlite accepts a file path or ":memory:".
func NewDatabase(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("driver de base de datos no soportado: %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// A single connection keeps ":memory:" databases shared across calls.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
	}

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates all tables. Also used by the integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.ConfiguracionDiaria{},
		&model.ProductoPersonalizado{},
		&model.Liquidacion{},
		&model.LiquidacionProducto{},
		&model.Checklist{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if db.Dialector.Name() == "postgres" {
		if err := applySchemaPatches(db); err != nil {
			return fmt.Errorf("schema patches: %w", err)
		}
	}
	return nil
}

// applySchemaPatches adds the CHECK constraints AutoMigrate cannot declare.
// Each block is guarded by an existence check so re-running is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"chk_liquidaciones_conteos", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_liquidaciones_conteos') THEN
    ALTER TABLE liquidaciones ADD CONSTRAINT chk_liquidaciones_conteos
      CHECK (fichas_iniciales >= 0 AND fichas_finales >= 0 AND usos_vr >= 0
             AND cupones_arcade >= 0 AND cupones_vr >= 0);
  END IF;
END $$`},
		{"chk_configuraciones_fichas", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_configuraciones_fichas') THEN
    ALTER TABLE configuraciones_diarias ADD CONSTRAINT chk_configuraciones_fichas
      CHECK (fichas_iniciales >= 0 AND monto_base >= 0);
  END IF;
END $$`},
		{"chk_productos_personalizados", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_productos_personalizados') THEN
    ALTER TABLE productos_personalizados ADD CONSTRAINT chk_productos_personalizados
      CHECK (cantidad_inicial >= 0 AND precio_unitario >= 0 AND length(trim(nombre)) > 0);
  END IF;
END $$`},
		{"chk_usuarios_rol", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_usuarios_rol') THEN
    ALTER TABLE usuarios ADD CONSTRAINT chk_usuarios_rol CHECK (rol IN ('admin', 'trabajador'));
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
