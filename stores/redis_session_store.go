package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentora/ability"
)

// RedisSessionStore keeps session token -> user projection in Redis
// (key: absess:{token}), so every service instance resolves the same acting
// user for a given token.
type RedisSessionStore struct {
	client *redis.Client
	keyFmt string // format string, e.g. "absess:%s"
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, keyFmt: "absess:%s"}
}

func (r *RedisSessionStore) key(token string) string {
	return fmt.Sprintf(r.keyFmt, token)
}

func (r *RedisSessionStore) Save(ctx context.Context, token string, user *ability.User, ttl time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(token), data, ttl).Err()
}

func (r *RedisSessionStore) Resolve(ctx context.Context, token string) (*ability.User, error) {
	data, err := r.client.Get(ctx, r.key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	user := &ability.User{}
	if err := json.Unmarshal(data, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *RedisSessionStore) Revoke(ctx context.Context, token string) error {
	return r.client.Del(ctx, r.key(token)).Err()
}
