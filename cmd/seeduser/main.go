// cmd/seeduser/main.go creates or updates the administrator account.
// Usage: go run ./cmd/seeduser -email admin@dinoplay.co -password secreta
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/car1087/dinoplay-2-0/internal/config"
	"github.com/car1087/dinoplay-2-0/internal/infra"
	"github.com/car1087/dinoplay-2-0/internal/model"
	"github.com/car1087/dinoplay-2-0/internal/repository"
	"github.com/car1087/dinoplay-2-0/internal/service"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be read")
	}

	email := flag.String("email", envOr("SEED_ADMIN_EMAIL", "admin@dinoplay.co"), "admin email")
	password := flag.String("password", os.Getenv("SEED_ADMIN_PASSWORD"), "admin password")
	nombre := flag.String("nombre", envOr("SEED_ADMIN_NOMBRE", "Administrador"), "full name")
	flag.Parse()

	if len(*password) < 6 {
		log.Fatal().Msg("password required (-password or SEED_ADMIN_PASSWORD), min 6 chars")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	hash, err := service.HashPassword(*password)
	if err != nil {
		log.Fatal().Err(err).Msg("bcrypt")
	}

	ctx := context.Background()
	repo := repository.NewUsuarioRepository(db)
	correo := strings.ToLower(strings.TrimSpace(*email))

	u, err := repo.FindByEmail(ctx, correo)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		u = &model.Usuario{Email: correo, NombreCompleto: *nombre, PasswordHash: hash, Rol: model.RolAdmin, Activo: true}
		if err := repo.Create(ctx, u); err != nil {
			log.Fatal().Err(err).Msg("create admin")
		}
		log.Info().Str("email", correo).Msg("admin created")
	case err != nil:
		log.Fatal().Err(err).Msg("lookup admin")
	default:
		u.NombreCompleto = *nombre
		u.PasswordHash = hash
		u.Rol = model.RolAdmin
		u.Activo = true
		if err := repo.Update(ctx, u); err != nil {
			log.Fatal().Err(err).Msg("update admin")
		}
		log.Info().Str("email", correo).Msg("admin updated")
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
