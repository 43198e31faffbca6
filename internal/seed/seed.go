package seed

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"camp-ratings/internal/domain"
	"camp-ratings/pkg/utils"
)

// EnsureAdmin 默认管理员不存在就建；已确认邮箱，开箱能登录
func EnsureAdmin(ctx context.Context, users domain.UserRepository, email, password string, log *zap.Logger) error {
	if email == "" || password == "" {
		return errors.New("seed admin email/password not configured")
	}
	existing, err := users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info("admin user already exists", zap.String("email", email))
		return nil
	}
	u := &domain.User{
		ID:             utils.NewID(),
		Email:          email,
		FirstName:      "admin",
		LastName:       "",
		PasswordHash:   utils.HashPassword(password),
		Role:           domain.RoleAdmin,
		EmailConfirmed: true,
	}
	if err := users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			// 并发启动时另一实例先建了
			return nil
		}
		return err
	}
	log.Info("admin user seeded", zap.String("email", email))
	return nil
}
