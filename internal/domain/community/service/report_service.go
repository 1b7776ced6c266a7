package service

import (
	"context"
	"strings"
	"thywilluche/internal/domain/community/model"
	"thywilluche/internal/domain/community/repository"
	"thywilluche/pkg/database"
	"thywilluche/pkg/metrics"
	"thywilluche/pkg/utils"
	"time"
)

type ReportInput struct {
	TargetType string
	TargetID   string
	Reason     string
	Details    string
}

type ReportService interface {
	ReportContent(ctx context.Context, userID string, in ReportInput) (*model.Report, error)
	ListReports(ctx context.Context, status string, p utils.Pagination) ([]model.Report, int64, error)
	ResolveReport(ctx context.Context, adminID, id, status, note string) (*model.Report, error)
}

type reportService struct {
	repo  repository.ReportRepository
	posts repository.PostRepository
	now   func() time.Time
}

func NewReportService(repo repository.ReportRepository, posts repository.PostRepository) ReportService {
	return &reportService{repo: repo, posts: posts, now: time.Now}
}

// ReportContent 同一用户对同一目标只能有一条待处理举报
func (s *reportService) ReportContent(ctx context.Context, userID string, in ReportInput) (*model.Report, error) {
	if !model.IsValidReportReason(in.Reason) {
		return nil, ErrInvalidReportReason
	}
	if err := s.ensureTarget(ctx, in.TargetType, in.TargetID); err != nil {
		return nil, err
	}

	pending, err := s.repo.HasPendingReport(ctx, userID, in.TargetType, in.TargetID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrDuplicateReport
	}

	report := &model.Report{
		ReporterID: userID,
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		Reason:     in.Reason,
		Details:    strings.TrimSpace(in.Details),
		Status:     model.ReportPending,
	}
	if err := s.repo.CreateReport(ctx, report); err != nil {
		// 部分唯一索引 (status = pending) 兜底
		if database.IsDuplicateKey(err) {
			return nil, ErrDuplicateReport
		}
		return nil, err
	}
	return report, nil
}

func (s *reportService) ensureTarget(ctx context.Context, targetType, targetID string) error {
	var err error
	switch targetType {
	case model.TargetPost:
		_, err = s.posts.GetPostByID(ctx, targetID)
	case model.TargetComment:
		var c *model.Comment
		c, err = s.posts.GetCommentByID(ctx, targetID)
		if err == nil && c.State != model.CommentActive {
			return ErrTargetNotFound
		}
	default:
		return ErrInvalidTarget
	}
	if err != nil {
		if database.IsNotFound(err) {
			return ErrTargetNotFound
		}
		return err
	}
	return nil
}

func (s *reportService) ListReports(ctx context.Context, status string, p utils.Pagination) ([]model.Report, int64, error) {
	switch status {
	case "", model.ReportPending, model.ReportResolved, model.ReportDismissed:
	default:
		return nil, 0, ErrInvalidStatus
	}
	offset, limit := p.GetPageOffset()
	return s.repo.ListReports(ctx, status, offset, limit)
}

func (s *reportService) ResolveReport(ctx context.Context, adminID, id, status, note string) (*model.Report, error) {
	if status != model.ReportResolved && status != model.ReportDismissed {
		return nil, ErrInvalidResolution
	}

	report, err := s.repo.GetReportByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrReportNotFound
		}
		return nil, err
	}
	if report.Status != model.ReportPending {
		return nil, ErrReportResolved
	}

	now := s.now()
	note = strings.TrimSpace(note)
	ok, err := s.repo.ResolveReport(ctx, id, status, note, adminID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrReportResolved
	}

	report.Status = status
	report.AdminNote = note
	report.ReviewedBy = &adminID
	report.ReviewedAt = &now
	metrics.GetGlobalCollector().RecordModeration("report", status)
	return report, nil
}
