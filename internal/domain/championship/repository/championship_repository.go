package repository

import (
	"context"
	"thywilluche/internal/domain/championship/model"
	"time"

	"gorm.io/gorm"
)

// Decision 审核结果，只作用于 pending 记录
type Decision struct {
	Status     string
	AdminNote  string
	ReviewedBy string
	ReviewedAt time.Time
}

// EntryFilter 报名、书评列表筛选
type EntryFilter struct {
	ChampionshipID string
	UserID         string
	Status         string
	Offset         int
	Limit          int
}

type ChampionshipRepository interface {
	CreateChampionship(ctx context.Context, c *model.Championship) error
	UpdateChampionship(ctx context.Context, c *model.Championship) error
	GetChampionshipByID(ctx context.Context, id string) (*model.Championship, error)
	GetChampionshipBySlug(ctx context.Context, slug string) (*model.Championship, error)
	ListChampionships(ctx context.Context, offset, limit int) ([]model.Championship, int64, error)

	CreateRegistration(ctx context.Context, reg *model.Registration) error
	GetRegistration(ctx context.Context, id string) (*model.Registration, error)
	ListRegistrations(ctx context.Context, f EntryFilter) ([]model.Registration, int64, error)
	DecideRegistration(ctx context.Context, id string, d Decision) (bool, error)

	CreateReview(ctx context.Context, review *model.ReviewSubmission) error
	GetReview(ctx context.Context, id string) (*model.ReviewSubmission, error)
	ListReviews(ctx context.Context, f EntryFilter) ([]model.ReviewSubmission, int64, error)
	DecideReview(ctx context.Context, id string, d Decision) (bool, error)
}

type championshipRepository struct {
	db *gorm.DB
}

func NewChampionshipRepository(db *gorm.DB) ChampionshipRepository {
	return &championshipRepository{db: db}
}

func (r *championshipRepository) CreateChampionship(ctx context.Context, c *model.Championship) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *championshipRepository) UpdateChampionship(ctx context.Context, c *model.Championship) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *championshipRepository) GetChampionshipByID(ctx context.Context, id string) (*model.Championship, error) {
	var c model.Championship
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *championshipRepository) GetChampionshipBySlug(ctx context.Context, slug string) (*model.Championship, error) {
	var c model.Championship
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *championshipRepository) ListChampionships(ctx context.Context, offset, limit int) ([]model.Championship, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Championship{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Championship
	if err := query.Order("year DESC, created_at DESC").Offset(offset).Limit(limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *championshipRepository) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	return r.db.WithContext(ctx).Omit("Championship").Create(reg).Error
}

func (r *championshipRepository) GetRegistration(ctx context.Context, id string) (*model.Registration, error) {
	var reg model.Registration
	if err := r.db.WithContext(ctx).Preload("Championship").Where("id = ?", id).First(&reg).Error; err != nil {
		return nil, err
	}
	return &reg, nil
}

func filtered(db *gorm.DB, f EntryFilter) *gorm.DB {
	if f.ChampionshipID != "" {
		db = db.Where("championship_id = ?", f.ChampionshipID)
	}
	if f.UserID != "" {
		db = db.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	return db
}

func (r *championshipRepository) ListRegistrations(ctx context.Context, f EntryFilter) ([]model.Registration, int64, error) {
	query := filtered(r.db.WithContext(ctx).Model(&model.Registration{}), f)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.Registration
	if err := query.Preload("Championship").Order("created_at DESC").
		Offset(f.Offset).Limit(f.Limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func decision(d Decision) map[string]interface{} {
	return map[string]interface{}{
		"status":      d.Status,
		"admin_note":  d.AdminNote,
		"reviewed_by": d.ReviewedBy,
		"reviewed_at": d.ReviewedAt,
	}
}

func (r *championshipRepository) DecideRegistration(ctx context.Context, id string, d Decision) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Registration{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(decision(d))
	return res.RowsAffected == 1, res.Error
}

func (r *championshipRepository) CreateReview(ctx context.Context, review *model.ReviewSubmission) error {
	return r.db.WithContext(ctx).Omit("Championship").Create(review).Error
}

func (r *championshipRepository) GetReview(ctx context.Context, id string) (*model.ReviewSubmission, error) {
	var review model.ReviewSubmission
	if err := r.db.WithContext(ctx).Preload("Championship").Where("id = ?", id).First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *championshipRepository) ListReviews(ctx context.Context, f EntryFilter) ([]model.ReviewSubmission, int64, error) {
	query := filtered(r.db.WithContext(ctx).Model(&model.ReviewSubmission{}), f)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []model.ReviewSubmission
	if err := query.Preload("Championship").Order("created_at DESC").
		Offset(f.Offset).Limit(f.Limit).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *championshipRepository) DecideReview(ctx context.Context, id string, d Decision) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.ReviewSubmission{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(decision(d))
	return res.RowsAffected == 1, res.Error
}
