package auth

import (
	"context"
	"fmt"

	"github.com/intraboard/board/pkg/sdk"
	"github.com/redis/go-redis/v9"
)

const (
	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
)

// RedisStore implements sdk.TokenStore on a Redis hash, so several processes
// (for example CI jobs on one runner) can share a session.
type RedisStore struct {
	client redis.UniversalClient
	key    string
}

var _ sdk.TokenStore = (*RedisStore)(nil)

// NewRedisStore stores the session under key.
func NewRedisStore(client redis.UniversalClient, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Get(ctx context.Context) (sdk.Credentials, error) {
	values, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return sdk.Credentials{}, fmt.Errorf("failed to read session from redis: %w", err)
	}
	creds := sdk.Credentials{
		AccessToken:  values[fieldAccessToken],
		RefreshToken: values[fieldRefreshToken],
	}
	if !creds.IsEmpty() {
		creds.TokenType = "bearer"
	}
	return creds, nil
}

// Set replaces both fields in a single MULTI/EXEC.
func (s *RedisStore) Set(ctx context.Context, accessToken, refreshToken string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, fieldAccessToken, accessToken, fieldRefreshToken, refreshToken)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write session to redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session in redis: %w", err)
	}
	return nil
}
