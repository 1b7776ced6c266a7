package service

import (
	"context"
	"math"
	"strings"
	"thywilluche/internal/domain/championship/model"
	"thywilluche/internal/domain/championship/repository"
	usermodel "thywilluche/internal/domain/user/model"
	"thywilluche/internal/pkg/notify"
	"thywilluche/pkg/database"
	"thywilluche/pkg/logger"
	"thywilluche/pkg/metrics"
	"thywilluche/pkg/utils"
	"time"

	"go.uber.org/zap"
)

// UserLookup 审核通知需要用户邮箱
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*usermodel.User, error)
}

type ChampionshipInput struct {
	Name             string
	Description      string
	Year             int
	RegistrationFee  float64
	RegistrationOpen bool
	StartsAt         *time.Time
}

type RegistrationInput struct {
	FullName    string
	Email       string
	Phone       string
	Institution string
	Category    string
	Country     string
	State       string
	City        string
	ReceiptURL  string
}

type ReviewInput struct {
	BookTitle   string
	Author      string
	ReviewText  string
	DocumentURL string
}

// EntryQuery 管理员列表筛选
type EntryQuery struct {
	ChampionshipID string
	Status         string
	utils.Pagination
}

type ChampionshipService interface {
	CreateChampionship(ctx context.Context, in ChampionshipInput) (*model.Championship, error)
	UpdateChampionship(ctx context.Context, id string, in ChampionshipInput) (*model.Championship, error)
	ListChampionships(ctx context.Context, p utils.Pagination) ([]model.Championship, int64, error)
	GetChampionship(ctx context.Context, slug string) (*model.Championship, error)

	Register(ctx context.Context, userID, championshipID string, in RegistrationInput) (*model.Registration, error)
	SubmitReview(ctx context.Context, userID, championshipID string, in ReviewInput) (*model.ReviewSubmission, error)
	ListMyRegistrations(ctx context.Context, userID string, p utils.Pagination) ([]model.Registration, int64, error)
	ListMyReviews(ctx context.Context, userID string, p utils.Pagination) ([]model.ReviewSubmission, int64, error)

	ListRegistrations(ctx context.Context, q EntryQuery) ([]model.Registration, int64, error)
	ReviewRegistration(ctx context.Context, adminID, id, decision, note string) (*model.Registration, error)
	ListReviews(ctx context.Context, q EntryQuery) ([]model.ReviewSubmission, int64, error)
	ReviewSubmission(ctx context.Context, adminID, id, decision, note string) (*model.ReviewSubmission, error)
}

type championshipService struct {
	repo     repository.ChampionshipRepository
	users    UserLookup
	notifier notify.Notifier
	now      func() time.Time
}

func NewChampionshipService(repo repository.ChampionshipRepository, users UserLookup, notifier notify.Notifier) ChampionshipService {
	return &championshipService{
		repo:     repo,
		users:    users,
		notifier: notifier,
		now:      time.Now,
	}
}

// apply 创建和更新共用，更新是整体替换，调用方需要传完整的字段
func (s *championshipService) apply(c *model.Championship, in ChampionshipInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" || in.Year <= 0 {
		return ErrNameRequired
	}
	if in.RegistrationFee < 0 {
		return ErrInvalidFee
	}
	c.Name = name
	c.Description = strings.TrimSpace(in.Description)
	c.Year = in.Year
	c.RegistrationFee = math.Round(in.RegistrationFee*100) / 100
	c.RegistrationOpen = in.RegistrationOpen
	c.StartsAt = in.StartsAt
	return nil
}

func (s *championshipService) CreateChampionship(ctx context.Context, in ChampionshipInput) (*model.Championship, error) {
	c := &model.Championship{}
	if err := s.apply(c, in); err != nil {
		return nil, err
	}
	c.Slug = utils.Slugify(c.Name)
	if err := s.repo.CreateChampionship(ctx, c); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return c, nil
}

// UpdateChampionship slug 创建后不变
func (s *championshipService) UpdateChampionship(ctx context.Context, id string, in ChampionshipInput) (*model.Championship, error) {
	c, err := s.findChampionship(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(c, in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateChampionship(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *championshipService) ListChampionships(ctx context.Context, p utils.Pagination) ([]model.Championship, int64, error) {
	offset, limit := p.GetPageOffset()
	return s.repo.ListChampionships(ctx, offset, limit)
}

func (s *championshipService) GetChampionship(ctx context.Context, slug string) (*model.Championship, error) {
	c, err := s.repo.GetChampionshipBySlug(ctx, slug)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrChampionshipNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *championshipService) findChampionship(ctx context.Context, id string) (*model.Championship, error) {
	c, err := s.repo.GetChampionshipByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrChampionshipNotFound
		}
		return nil, err
	}
	return c, nil
}

// Register 报名需要缴费凭证，重复报名由唯一索引拦截
func (s *championshipService) Register(ctx context.Context, userID, championshipID string, in RegistrationInput) (*model.Registration, error) {
	c, err := s.findChampionship(ctx, championshipID)
	if err != nil {
		return nil, err
	}
	if !c.RegistrationOpen {
		return nil, ErrRegistrationClosed
	}

	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if fullName == "" || email == "" {
		return nil, ErrRegistrationForm
	}
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if !model.IsValidCategory(category) {
		return nil, ErrInvalidCategory
	}
	receipt := strings.TrimSpace(in.ReceiptURL)
	if receipt == "" {
		return nil, ErrReceiptRequired
	}

	reg := &model.Registration{
		ChampionshipID: c.ID,
		UserID:         userID,
		FullName:       fullName,
		Email:          email,
		Phone:          strings.TrimSpace(in.Phone),
		Institution:    strings.TrimSpace(in.Institution),
		Category:       category,
		Country:        strings.TrimSpace(in.Country),
		State:          strings.TrimSpace(in.State),
		City:           strings.TrimSpace(in.City),
		ReceiptURL:     receipt,
		Status:         model.StatusPending,
	}
	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	reg.Championship = c
	return reg, nil
}

func (s *championshipService) SubmitReview(ctx context.Context, userID, championshipID string, in ReviewInput) (*model.ReviewSubmission, error) {
	c, err := s.findChampionship(ctx, championshipID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.BookTitle)
	text := strings.TrimSpace(in.ReviewText)
	doc := strings.TrimSpace(in.DocumentURL)
	if title == "" || (text == "" && doc == "") {
		return nil, ErrReviewContent
	}

	review := &model.ReviewSubmission{
		ChampionshipID: c.ID,
		UserID:         userID,
		BookTitle:      title,
		Author:         strings.TrimSpace(in.Author),
		ReviewText:     text,
		DocumentURL:    doc,
		Status:         model.StatusPending,
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}
	review.Championship = c
	return review, nil
}

func (s *championshipService) ListMyRegistrations(ctx context.Context, userID string, p utils.Pagination) ([]model.Registration, int64, error) {
	offset, limit := p.GetPageOffset()
	return s.repo.ListRegistrations(ctx, repository.EntryFilter{UserID: userID, Offset: offset, Limit: limit})
}

func (s *championshipService) ListMyReviews(ctx context.Context, userID string, p utils.Pagination) ([]model.ReviewSubmission, int64, error) {
	offset, limit := p.GetPageOffset()
	return s.repo.ListReviews(ctx, repository.EntryFilter{UserID: userID, Offset: offset, Limit: limit})
}

func (s *championshipService) filter(q EntryQuery) (repository.EntryFilter, error) {
	if q.Status != "" && !model.IsValidStatus(q.Status) {
		return repository.EntryFilter{}, ErrInvalidStatus
	}
	offset, limit := q.GetPageOffset()
	return repository.EntryFilter{
		ChampionshipID: q.ChampionshipID,
		Status:         q.Status,
		Offset:         offset,
		Limit:          limit,
	}, nil
}

func (s *championshipService) ListRegistrations(ctx context.Context, q EntryQuery) ([]model.Registration, int64, error) {
	f, err := s.filter(q)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListRegistrations(ctx, f)
}

func (s *championshipService) ListReviews(ctx context.Context, q EntryQuery) ([]model.ReviewSubmission, int64, error) {
	f, err := s.filter(q)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListReviews(ctx, f)
}

func (s *championshipService) decide(adminID, decision, note string) (repository.Decision, error) {
	if decision != model.StatusApproved && decision != model.StatusRejected {
		return repository.Decision{}, ErrInvalidDecision
	}
	return repository.Decision{
		Status:     decision,
		AdminNote:  strings.TrimSpace(note),
		ReviewedBy: adminID,
		ReviewedAt: s.now(),
	}, nil
}

// ReviewRegistration 只能从 pending 审核一次
func (s *championshipService) ReviewRegistration(ctx context.Context, adminID, id, decision, note string) (*model.Registration, error) {
	d, err := s.decide(adminID, decision, note)
	if err != nil {
		return nil, err
	}

	reg, err := s.repo.GetRegistration(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	if reg.Status != model.StatusPending {
		return nil, ErrAlreadyReviewed
	}

	updated, err := s.repo.DecideRegistration(ctx, id, d)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrAlreadyReviewed
	}

	reg.Status = d.Status
	reg.AdminNote = d.AdminNote
	reg.ReviewedBy = &d.ReviewedBy
	reg.ReviewedAt = &d.ReviewedAt

	metrics.GetGlobalCollector().RecordModeration("registration", decision)
	s.notifyReviewed(ctx, reg.UserID, reg.Email, "registration", reg.Championship, d)
	return reg, nil
}

func (s *championshipService) ReviewSubmission(ctx context.Context, adminID, id, decision, note string) (*model.ReviewSubmission, error) {
	d, err := s.decide(adminID, decision, note)
	if err != nil {
		return nil, err
	}

	review, err := s.repo.GetReview(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, err
	}
	if review.Status != model.StatusPending {
		return nil, ErrAlreadyReviewed
	}

	updated, err := s.repo.DecideReview(ctx, id, d)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrAlreadyReviewed
	}

	review.Status = d.Status
	review.AdminNote = d.AdminNote
	review.ReviewedBy = &d.ReviewedBy
	review.ReviewedAt = &d.ReviewedAt

	metrics.GetGlobalCollector().RecordModeration("review", decision)
	s.notifyReviewed(ctx, review.UserID, "", "review", review.Championship, d)
	return review, nil
}

// notifyReviewed email 为空时取账户邮箱
func (s *championshipService) notifyReviewed(ctx context.Context, userID, email, kind string, c *model.Championship, d repository.Decision) {
	if email == "" {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			logger.Log.Warn("review notice skipped", zap.String("user_id", userID), zap.String("kind", kind), zap.Error(err))
			return
		}
		email = user.Email
	}
	name := ""
	if c != nil {
		name = c.Name
	}
	subject := "Your " + kind + " was " + d.Status
	s.notifier.Notify(notify.Notification{
		To:       email,
		Subject:  subject,
		Template: notify.TemplateSubmissionReviewed,
		Data: map[string]any{
			"Kind":         kind,
			"Championship": name,
			"Decision":     d.Status,
			"Note":         d.AdminNote,
		},
		UserID:    userID,
		PushTitle: subject,
		PushBody:  name,
		PushExt:   map[string]string{"type": "championship_" + kind},
	})
}
