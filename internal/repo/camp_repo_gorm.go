package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"camp-ratings/internal/domain"
)

type CampRepo struct{ db *gorm.DB }

func NewCampRepo(db *gorm.DB) *CampRepo { return &CampRepo{db: db} }

func (r *CampRepo) Create(ctx context.Context, c *domain.Camp) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CampRepo) FindByID(ctx context.Context, id string) (*domain.Camp, error) {
	var c domain.Camp
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *CampRepo) FindByIDWithReviews(ctx context.Context, id string) (*domain.Camp, error) {
	var c domain.Camp
	err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB { return db.Order("created_on DESC") }).
		First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &c, err
}

func (r *CampRepo) Search(ctx context.Context, term string) ([]domain.Camp, error) {
	var camps []domain.Camp
	q := r.db.WithContext(ctx).Model(&domain.Camp{}).Order("name ASC")
	if term != "" {
		// LOWER 两边做，mysql/postgres 行为一致
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+term+"%")
	}
	if err := q.Find(&camps).Error; err != nil {
		return nil, err
	}
	return camps, nil
}

// Update 行在读取与保存之间消失时返回 ErrNotFound
func (r *CampRepo) Update(ctx context.Context, c *domain.Camp) error {
	res := r.db.WithContext(ctx).Model(&domain.Camp{ID: c.ID}).
		Select("name", "description", "latitude", "longitude", "photo").
		Updates(c)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// 0 行也可能是值未变；存在性再确认一次
		var n int64
		if err := r.db.WithContext(ctx).Model(&domain.Camp{}).Where("id = ?", c.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
	}
	return nil
}

func (r *CampRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("camp_id = ?", id).Delete(&domain.Review{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Camp{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *CampRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Camp{}).Count(&n).Error
	return n, err
}
