package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrDuplicado is returned when a write hits a unique index.
var ErrDuplicado = errors.New("registro duplicado")

// esDuplicado recognises unique violations from every supported driver.
func esDuplicado(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func traducirDuplicado(err error) error {
	if esDuplicado(err) {
		return ErrDuplicado
	}
	return err
}
