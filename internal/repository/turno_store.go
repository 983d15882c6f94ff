package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/car1087/dinoplay-2-0/internal/liquidacion"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// TurnoTTL keeps a shift alive past midnight but not into the next shift.
	TurnoTTL = 36 * time.Hour

	turnoFechasKey   = "turno:fechas"
	maxReintentosCAS = 5
)

// ErrTurnoOcupado is returned when concurrent updates keep conflicting.
var ErrTurnoOcupado = errors.New("turno modificado concurrentemente, reintente")

// TurnoStore keeps the in-progress shift counters of each worker per venue date.
// Values are never written to the database; they are flushed into a settlement
// at save time and cleared afterwards.
type TurnoStore interface {
	Get(ctx context.Context, fecha string, trabajadorID uuid.UUID) (*liquidacion.Turno, error)
	// Actualizar applies fn atomically. semilla is used when no state exists yet.
	Actualizar(ctx context.Context, fecha string, trabajadorID uuid.UUID, semilla *liquidacion.Turno, fn func(*liquidacion.Turno) error) (*liquidacion.Turno, error)
	Clear(ctx context.Context, fecha string, trabajadorID uuid.UUID) error
	// PurgarAnteriores deletes every shift of a date before hoy. Returns the number of keys removed.
	PurgarAnteriores(ctx context.Context, hoy string) (int, error)
}

type turnoStore struct{ rdb *redis.Client }

func NewTurnoStore(rdb *redis.Client) TurnoStore { return &turnoStore{rdb: rdb} }

func turnoKey(fecha string, trabajadorID uuid.UUID) string {
	return fmt.Sprintf("turno:%s:%s", fecha, trabajadorID)
}

// Get returns nil, nil when the worker has no state for fecha.
func (s *turnoStore) Get(ctx context.Context, fecha string, trabajadorID uuid.UUID) (*liquidacion.Turno, error) {
	raw, err := s.rdb.Get(ctx, turnoKey(fecha, trabajadorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("turno get: %w", err)
	}
	var t liquidacion.Turno
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("turno decode: %w", err)
	}
	return &t, nil
}

func (s *turnoStore) Actualizar(ctx context.Context, fecha string, trabajadorID uuid.UUID, semilla *liquidacion.Turno, fn func(*liquidacion.Turno) error) (*liquidacion.Turno, error) {
	key := turnoKey(fecha, trabajadorID)
	var resultado *liquidacion.Turno

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		var t liquidacion.Turno
		switch {
		case errors.Is(err, redis.Nil):
			if semilla == nil {
				t = liquidacion.Turno{Fecha: fecha}
			} else {
				t = *semilla
			}
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(raw, &t); err != nil {
				return fmt.Errorf("turno decode: %w", err)
			}
		}

		if err := fn(&t); err != nil {
			return err
		}

		nuevo, err := json.Marshal(t)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, nuevo, TurnoTTL)
			pipe.SAdd(ctx, turnoFechasKey, fecha)
			return nil
		})
		if err == nil {
			resultado = &t
		}
		return err
	}

	for i := 0; i < maxReintentosCAS; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return resultado, nil
	}
	return nil, ErrTurnoOcupado
}

func (s *turnoStore) Clear(ctx context.Context, fecha string, trabajadorID uuid.UUID) error {
	return s.rdb.Del(ctx, turnoKey(fecha, trabajadorID)).Err()
}

func (s *turnoStore) PurgarAnteriores(ctx context.Context, hoy string) (int, error) {
	fechas, err := s.rdb.SMembers(ctx, turnoFechasKey).Result()
	if err != nil {
		return 0, fmt.Errorf("turno fechas: %w", err)
	}

	borradas := 0
	for _, fecha := range fechas {
		// YYYY-MM-DD compares lexicographically
		if fecha >= hoy {
			continue
		}
		iter := s.rdb.Scan(ctx, 0, "turno:"+fecha+":*", 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return borradas, err
		}
		if len(keys) > 0 {
			n, err := s.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return borradas, err
			}
			borradas += int(n)
		}
		if err := s.rdb.SRem(ctx, turnoFechasKey, fecha).Err(); err != nil {
			return borradas, err
		}
	}
	return borradas, nil
}
