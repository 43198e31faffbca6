package domain

import (
	"context"
	"time"
)

type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Content   string    `gorm:"size:500;not null" json:"content"`
	CreatedOn time.Time `json:"createdOn"`
	CampID    string    `gorm:"size:36;not null;index" json:"campId"`
	Camp      *Camp     `gorm:"foreignKey:CampID" json:"camp,omitempty"`
	UserID    string    `gorm:"size:36;not null;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Review) TableName() string { return "reviews" }

// ReviewRow 列表投影：带营地名与作者名
type ReviewRow struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	CreatedOn time.Time `json:"createdOn"`
	CampID    string    `json:"campId"`
	CampName  string    `json:"campName"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
}

type ReviewRepository interface {
	Create(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id string) (*Review, error)
	// ListByUser 某用户的评论，预加载营地
	ListByUser(ctx context.Context, userID string) ([]Review, error)
	// List 全部或按营地过滤，预加载营地与作者
	List(ctx context.Context, campID string) ([]Review, error)
	// UpdateContent 只改 rating/content，CreatedOn/UserID/CampID 建后不可变
	UpdateContent(ctx context.Context, id string, rating int, content string) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}
