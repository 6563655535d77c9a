package quota

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"scriptreel/internal/domain"
)

// recordTTL outlives the day a record describes; older records reset anyway.
const recordTTL = 48 * time.Hour

// kv is the part of redis.Cmdable the store needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore shares one client's counter between machines.
type RedisStore struct {
	rdb kv
	key string
}

func NewRedisStore(rdb kv, clientID string) *RedisStore {
	return &RedisStore{rdb: rdb, key: Key(clientID)}
}

// Key returns the redis key holding clientID's record.
func Key(clientID string) string {
	return fmt.Sprintf("scriptreel:%s:%s", StorageKey, clientID)
}

// Connect opens a client from a redis:// URL and checks it answers.
func Connect(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("quota: parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("quota: redis ping: %w", err)
	}
	return rdb, nil
}

func (s *RedisStore) Load(ctx context.Context) (domain.QuotaRecord, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.QuotaRecord{}, nil
	}
	if err != nil {
		return domain.QuotaRecord{}, fmt.Errorf("quota: redis get: %w", err)
	}
	var rec domain.QuotaRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return domain.QuotaRecord{}, fmt.Errorf("quota: decode %s: %w", s.key, err)
	}
	return rec, nil
}

func (s *RedisStore) Save(ctx context.Context, rec domain.QuotaRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("quota: encode: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, recordTTL).Err(); err != nil {
		return fmt.Errorf("quota: redis set: %w", err)
	}
	return nil
}
