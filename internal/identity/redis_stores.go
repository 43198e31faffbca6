package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"camp-ratings/internal/core/cache"
)

// redis 实现：token/锁定/拉黑都是带 TTL 的小键

type RedisTokenStore struct{ C *cache.Cache }

func tokenKey(userID string) string { return "confirm:" + userID }

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func (s *RedisTokenStore) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	return s.C.RDB.Set(ctx, tokenKey(userID), hashToken(token), ttl).Err()
}

func (s *RedisTokenStore) Consume(ctx context.Context, userID, token string) (bool, error) {
	stored, err := s.C.RDB.Get(ctx, tokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if stored != hashToken(token) {
		return false, nil
	}
	_ = s.C.RDB.Del(ctx, tokenKey(userID)).Err()
	return true, nil
}

type RedisLockout struct {
	C         *cache.Cache
	Threshold int
	Window    time.Duration
	Duration  time.Duration
}

func failKey(email string) string { return "lockout:fail:" + email }
func holdKey(email string) string { return "lockout:hold:" + email }

func (l *RedisLockout) Fail(ctx context.Context, email string) (bool, error) {
	n, err := l.C.RDB.Incr(ctx, failKey(email)).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		_ = l.C.RDB.Expire(ctx, failKey(email), l.Window).Err()
	}
	if int(n) >= l.Threshold {
		if err := l.C.RDB.Set(ctx, holdKey(email), 1, l.Duration).Err(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (l *RedisLockout) Locked(ctx context.Context, email string) (bool, error) {
	_, err := l.C.RDB.Get(ctx, holdKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (l *RedisLockout) Reset(ctx context.Context, email string) error {
	return l.C.RDB.Del(ctx, failKey(email), holdKey(email)).Err()
}

type RedisDenylist struct{ C *cache.Cache }

func denyKey(jti string) string { return "jwt:deny:" + jti }

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // 已过期的 token 不用拉黑
	}
	return d.C.RDB.Set(ctx, denyKey(jti), 1, ttl).Err()
}

func (d *RedisDenylist) Revoked(ctx context.Context, jti string) (bool, error) {
	_, err := d.C.RDB.Get(ctx, denyKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
