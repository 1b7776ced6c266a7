package repository

import (
	"context"
	"thywilluche/internal/domain/shop/model"

	"gorm.io/gorm"
)

type MerchFilter struct {
	Search          string
	Category        string
	IncludeInactive bool
	Offset          int
	Limit           int
}

type MerchRepository interface {
	CreateMerch(ctx context.Context, m *model.Merch, first *model.MerchVariant) error
	GetMerchByID(ctx context.Context, id string) (*model.Merch, error)
	GetMerchBySlug(ctx context.Context, slug string) (*model.Merch, error)
	ListMerch(ctx context.Context, f MerchFilter) ([]model.Merch, int64, error)
	UpdateMerch(ctx context.Context, m *model.Merch) error
	DeleteMerch(ctx context.Context, id string) error

	CreateVariant(ctx context.Context, v *model.MerchVariant) error
	GetVariant(ctx context.Context, id string) (*model.MerchVariant, error)
	UpdateVariant(ctx context.Context, v *model.MerchVariant) error
	DeleteVariant(ctx context.Context, id string) (bool, error)
}

type merchRepository struct {
	db *gorm.DB
}

func NewMerchRepository(db *gorm.DB) MerchRepository {
	return &merchRepository{db: db}
}

func (r *merchRepository) CreateMerch(ctx context.Context, m *model.Merch, first *model.MerchVariant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Variants").Create(m).Error; err != nil {
			return err
		}
		first.MerchID = m.ID
		if err := tx.Create(first).Error; err != nil {
			return err
		}
		m.Variants = []model.MerchVariant{*first}
		return nil
	})
}

func (r *merchRepository) GetMerchByID(ctx context.Context, id string) (*model.Merch, error) {
	var m model.Merch
	if err := r.preload(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *merchRepository) GetMerchBySlug(ctx context.Context, slug string) (*model.Merch, error) {
	var m model.Merch
	if err := r.preload(ctx).Where("slug = ?", slug).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *merchRepository) preload(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("price ASC") })
}

func (r *merchRepository) ListMerch(ctx context.Context, f MerchFilter) ([]model.Merch, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Merch{})
	if !f.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if f.Search != "" {
		query = query.Where("name ILIKE ?", "%"+f.Search+"%")
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Merch
	err := query.Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("price ASC") }).
		Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).
		Find(&items).Error
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *merchRepository) UpdateMerch(ctx context.Context, m *model.Merch) error {
	return r.db.WithContext(ctx).Model(m).
		Select("name", "description", "category", "images", "is_active").
		Updates(m).Error
}

func (r *merchRepository) DeleteMerch(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Merch{}).Error
}

func (r *merchRepository) CreateVariant(ctx context.Context, v *model.MerchVariant) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *merchRepository) GetVariant(ctx context.Context, id string) (*model.MerchVariant, error) {
	var v model.MerchVariant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *merchRepository) UpdateVariant(ctx context.Context, v *model.MerchVariant) error {
	return r.db.WithContext(ctx).Model(v).
		Select("variant_type", "price", "stock", "status").
		Updates(v).Error
}

func (r *merchRepository) DeleteVariant(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.MerchVariant{})
	return res.RowsAffected > 0, res.Error
}
