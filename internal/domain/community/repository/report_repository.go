package repository

import (
	"context"
	"thywilluche/internal/domain/community/model"
	"time"

	"gorm.io/gorm"
)

type ReportRepository interface {
	CreateReport(ctx context.Context, report *model.Report) error
	GetReportByID(ctx context.Context, id string) (*model.Report, error)
	HasPendingReport(ctx context.Context, reporterID, targetType, targetID string) (bool, error)
	ListReports(ctx context.Context, status string, offset, limit int) ([]model.Report, int64, error)
	// ResolveReport 只处理 pending 举报
	ResolveReport(ctx context.Context, id, status, note, adminID string, at time.Time) (bool, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) CreateReport(ctx context.Context, report *model.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) GetReportByID(ctx context.Context, id string) (*model.Report, error) {
	var report model.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) HasPendingReport(ctx context.Context, reporterID, targetType, targetID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Report{}).
		Where("reporter_id = ? AND target_type = ? AND target_id = ? AND status = ?",
			reporterID, targetType, targetID, model.ReportPending).
		Count(&count).Error
	return count > 0, err
}

func (r *reportRepository) ListReports(ctx context.Context, status string, offset, limit int) ([]model.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []model.Report
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) ResolveReport(ctx context.Context, id, status, note, adminID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Report{}).
		Where("id = ? AND status = ?", id, model.ReportPending).
		Updates(map[string]interface{}{
			"status":      status,
			"admin_note":  note,
			"reviewed_by": adminID,
			"reviewed_at": at,
		})
	return res.RowsAffected == 1, res.Error
}
