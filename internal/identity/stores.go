package identity

import (
	"context"
	"time"
)

// TokenStore 邮箱确认 token，一次性、带 TTL
type TokenStore interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	// Consume 校验并作废；token 不对不作废
	Consume(ctx context.Context, userID, token string) (bool, error)
}

// Lockout 登录失败计数与锁定
type Lockout interface {
	// Fail 记一次失败，返回是否因此触发锁定
	Fail(ctx context.Context, email string) (bool, error)
	Locked(ctx context.Context, email string) (bool, error)
	Reset(ctx context.Context, email string) error
}

// Denylist 注销后的 jti 拉黑，活到 token 自然过期
type Denylist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	Revoked(ctx context.Context, jti string) (bool, error)
}
