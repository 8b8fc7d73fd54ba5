package storage

import (
	"context"
	"errors"

	"github.com/TechTatva-25/m-hash-backend/logging"
	"github.com/redis/go-redis/v9"
)

// FlagReleaseResults gates whether submission review outcomes are shown to
// teams or masked as "Under Evaluation".
const FlagReleaseResults = "release_results"

type RuntimeConfigStorage interface {
	GetFlag(ctx context.Context, key string) (bool, error)
	SetFlag(ctx context.Context, key string, value bool) error
}

type RedisRuntimeConfigStorage struct {
	Client *redis.Client
	Prefix string
}

func (s *RedisRuntimeConfigStorage) key(name string) string {
	if s.Prefix == "" {
		return "runtime_config:" + name
	}
	return s.Prefix + ":" + name
}

// GetFlag reads a boolean switch. A missing key reads as false: an unset
// flag is the off state, not an error.
func (s *RedisRuntimeConfigStorage) GetFlag(ctx context.Context, key string) (bool, error) {
	val, err := s.Client.Get(ctx, s.key(key)).Bool()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			logging.Log.Warnf("CONFIG: flag %s not set, reading as false", key)
			return false, nil
		}
		logging.Log.Errorf("CONFIG: failed to read flag %s: %v", key, err)
		return false, err
	}
	return val, nil
}

func (s *RedisRuntimeConfigStorage) SetFlag(ctx context.Context, key string, value bool) error {
	if err := s.Client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		logging.Log.Errorf("CONFIG: failed to set flag %s: %v", key, err)
		return err
	}
	return nil
}
