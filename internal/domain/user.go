package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type User struct {
	ID             string         `gorm:"primaryKey;size:36" json:"id"`
	Email          string         `gorm:"uniqueIndex;size:191;not null" json:"email"`
	FirstName      string         `gorm:"size:64;not null" json:"firstName"`
	LastName       string         `gorm:"size:64;not null" json:"lastName"`
	PasswordHash   string         `gorm:"size:100;not null" json:"-"`
	Role           string         `gorm:"size:16;not null;default:user" json:"role"` // "user"/"admin"
	EmailConfirmed bool           `json:"emailConfirmed"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	// List 按 email/name 模糊搜；q 为空则全部
	List(ctx context.Context, q string) ([]User, error)
	ListNonAdmins(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) error
	// DeleteNonAdmin 事务内重查角色再删，管理员账号永不删除
	DeleteNonAdmin(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
