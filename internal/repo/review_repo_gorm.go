package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"camp-ratings/internal/domain"
)

type ReviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) *ReviewRepo { return &ReviewRepo{db: db} }

func (r *ReviewRepo) Create(ctx context.Context, rv *domain.Review) error {
	return r.db.WithContext(ctx).Create(rv).Error
}

func (r *ReviewRepo) FindByID(ctx context.Context, id string) (*domain.Review, error) {
	var rv domain.Review
	err := r.db.WithContext(ctx).First(&rv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &rv, err
}

func (r *ReviewRepo) ListByUser(ctx context.Context, userID string) ([]domain.Review, error) {
	var out []domain.Review
	err := r.db.WithContext(ctx).
		Preload("Camp").
		Where("user_id = ?", userID).
		Order("created_on DESC").
		Find(&out).Error
	return out, err
}

func (r *ReviewRepo) List(ctx context.Context, campID string) ([]domain.Review, error) {
	var out []domain.Review
	q := r.db.WithContext(ctx).Preload("Camp").Preload("User").Order("created_on DESC")
	if campID != "" {
		q = q.Where("camp_id = ?", campID)
	}
	err := q.Find(&out).Error
	return out, err
}

// UpdateContent 只动 rating/content；CampID/UserID/CreatedOn 建后不可变
func (r *ReviewRepo) UpdateContent(ctx context.Context, id string, rating int, content string) error {
	res := r.db.WithContext(ctx).Model(&domain.Review{}).Where("id = ?", id).
		Updates(map[string]any{"rating": rating, "content": content})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&domain.Review{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (r *ReviewRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Review{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ReviewRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Review{}).Count(&n).Error
	return n, err
}
