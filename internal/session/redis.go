package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Hash fields use the same names the browser console stored locally.
const (
	fieldTenant    = "currentTenant"
	fieldTenantKey = "currentTenantKey"
	fieldToken     = "adminToken"
	fieldUser      = "adminUser"
)

// RedisStore keeps each session in a hash at session:<id> with a TTL.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisClient parses url and checks connectivity.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func redisKey(id string) string { return "session:" + id }

func (s *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	fields, err := s.rdb.HGetAll(ctx, redisKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return &State{
		ID:               id,
		CurrentTenant:    fields[fieldTenant],
		CurrentTenantKey: fields[fieldTenantKey],
		AdminToken:       fields[fieldToken],
		AdminUser:        fields[fieldUser],
	}, nil
}

func (s *RedisStore) Save(ctx context.Context, st *State, ttl time.Duration) error {
	key := redisKey(st.ID)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			fieldTenant, st.CurrentTenant,
			fieldTenantKey, st.CurrentTenantKey,
			fieldToken, st.AdminToken,
			fieldUser, st.AdminUser,
		)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
