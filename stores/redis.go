// Package stores provides session store backends. The redis store is the
// production backend; the memory store covers single process deployments
// and tests.
package stores

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces session keys in redis.
const DefaultPrefix = "session:"

var errSessionNotFound = errors.New("session not found", errors.CategoryNotFound).
	WithCode(errors.CodeNotFound)

// RedisStore persists session payloads in redis with a per key TTL.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore creates a redis backed session store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: DefaultPrefix,
	}
}

// WithPrefix overrides the key prefix.
func (s *RedisStore) WithPrefix(prefix string) *RedisStore {
	s.prefix = prefix
	return s
}

func (s *RedisStore) Get(ctx context.Context, id string) ([]byte, error) {
	if id == "" {
		return nil, errSessionNotFound
	}

	data, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errSessionNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "redis get")
	}

	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	if id == "" {
		return errors.New("session id cannot be empty", errors.CategoryBadInput)
	}

	if ttl <= 0 {
		return errors.New("session ttl must be positive", errors.CategoryBadInput)
	}

	if err := s.client.Set(ctx, s.prefix+id, payload, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "redis set")
	}

	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}

	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "redis del")
	}

	return nil
}
