package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRepository stores each session as JSON under "<prefix><tokenHash>" with a TTL
// matching its expiry, and tracks a per-user set so all sessions can be revoked.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a Redis-based session repository. Prefix may be empty.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "session:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(hash string) string { return r.prefix + hash }
func (r *RedisRepository) userKey(uid string) string { return r.prefix + "user:" + uid }

func (r *RedisRepository) Create(ctx context.Context, s *Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.key(s.TokenHash), b, ttl)
		p.SAdd(ctx, r.userKey(s.UserID), s.TokenHash)
		p.Expire(ctx, r.userKey(s.UserID), ttl)
		return nil
	})
	return err
}

func (r *RedisRepository) GetByHash(ctx context.Context, hash string) (*Session, error) {
	b, err := r.client.Get(ctx, r.key(hash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if s.Expired(time.Now().UTC()) {
		_ = r.client.Del(ctx, r.key(hash)).Err()
		return nil, nil
	}
	return &s, nil
}

func (r *RedisRepository) DeleteByHash(ctx context.Context, hash string) error {
	return r.client.Del(ctx, r.key(hash)).Err()
}

func (r *RedisRepository) DeleteByUser(ctx context.Context, userID string) error {
	hashes, err := r.client.SMembers(ctx, r.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, r.key(h))
	}
	keys = append(keys, r.userKey(userID))
	return r.client.Del(ctx, keys...).Err()
}
