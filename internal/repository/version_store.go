package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// VersionStore holds the per-user token version. Tokens stamped with an older
// version are rejected, so bumping it revokes every token of the user.
type VersionStore interface {
	Actual(ctx context.Context, usuarioID uuid.UUID) (int64, error)
	Incrementar(ctx context.Context, usuarioID uuid.UUID) (int64, error)
}

type versionStore struct{ rdb *redis.Client }

func NewVersionStore(rdb *redis.Client) VersionStore { return &versionStore{rdb: rdb} }

func versionKey(id uuid.UUID) string { return "auth:version:" + id.String() }

func (s *versionStore) Actual(ctx context.Context, usuarioID uuid.UUID) (int64, error) {
	v, err := s.rdb.Get(ctx, versionKey(usuarioID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("token version: %w", err)
	}
	return v, nil
}

func (s *versionStore) Incrementar(ctx context.Context, usuarioID uuid.UUID) (int64, error) {
	v, err := s.rdb.Incr(ctx, versionKey(usuarioID)).Result()
	if err != nil {
		return 0, fmt.Errorf("token version: %w", err)
	}
	return v, nil
}
