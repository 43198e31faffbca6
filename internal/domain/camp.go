package domain

import (
	"context"
	"time"
)

// MaxPhotoBytes 照片上限 2MB，超出的上传直接丢弃（不报错）
const MaxPhotoBytes = 2 << 20

type Camp struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:64;not null" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Photo       []byte    `json:"-"`
	Reviews     []Review  `gorm:"foreignKey:CampID" json:"reviews,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Camp) TableName() string { return "camps" }

type CampRepository interface {
	Create(ctx context.Context, c *Camp) error
	FindByID(ctx context.Context, id string) (*Camp, error)
	// FindByIDWithReviews 详情页用，预加载评论
	FindByIDWithReviews(ctx context.Context, id string) (*Camp, error)
	// Search 按名称模糊搜；term 为空则返回全部
	Search(ctx context.Context, term string) ([]Camp, error)
	Update(ctx context.Context, c *Camp) error
	// Delete 同一事务内删除营地与其评论
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
