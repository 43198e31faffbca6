package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"camp-ratings/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// Create 唯一索引冲突统一转 ErrDuplicateEmail，前置查重只是给表单友好提示
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) List(ctx context.Context, q string) ([]domain.User, error) {
	var users []domain.User
	tx := r.db.WithContext(ctx).Model(&domain.User{}).Order("created_at DESC")
	if s := strings.TrimSpace(q); s != "" {
		like := "%" + s + "%"
		tx = tx.Where("email LIKE ? OR first_name LIKE ? OR last_name LIKE ?", like, like, like)
	}
	err := tx.Find(&users).Error
	return users, err
}

func (r *UserRepo) ListNonAdmins(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := r.db.WithContext(ctx).
		Where("role <> ?", domain.RoleAdmin).
		Order("created_at DESC").
		Find(&users).Error
	return users, err
}

func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Save(u).Error
	if err != nil && isDupKey(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

// DeleteNonAdmin 事务内重查角色，确认页与确认提交之间换了角色也拦得住
func (r *UserRepo) DeleteNonAdmin(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u domain.User
		if err := tx.First(&u, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if !domain.CanDeleteUser(&u) {
			return domain.ErrAdminUndeletable
		}
		return tx.Delete(&u).Error
	})
}

func (r *UserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&n).Error
	return n, err
}

func isDupKey(err error) bool {
	// 不依赖 gorm.ErrDuplicatedKey，避免版本差异导致“undefined”
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
