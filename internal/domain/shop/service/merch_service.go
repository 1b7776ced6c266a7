package service

import (
	"context"
	"strings"
	"thywilluche/internal/domain/shop/model"
	"thywilluche/internal/domain/shop/repository"
	"thywilluche/pkg/database"
	"thywilluche/pkg/utils"
)

type MerchInput struct {
	Name        string
	Slug        string
	Description *string
	Category    *string
	Images      []string
	IsActive    *bool
}

type MerchQuery struct {
	Search   string
	Category string
	utils.Pagination
}

type MerchService interface {
	CreateMerch(ctx context.Context, in MerchInput, first VariantInput) (*model.Merch, error)
	UpdateMerch(ctx context.Context, id string, in MerchInput) (*model.Merch, error)
	DeleteMerch(ctx context.Context, id string) error
	AddMerchVariant(ctx context.Context, merchID string, in VariantInput) (*model.MerchVariant, error)
	UpdateMerchVariant(ctx context.Context, variantID string, in VariantInput) (*model.MerchVariant, error)
	DeleteMerchVariant(ctx context.Context, variantID string) error

	ListMerch(ctx context.Context, q MerchQuery, includeInactive bool) ([]model.Merch, int64, error)
	GetMerch(ctx context.Context, slug string, includeInactive bool) (*model.Merch, error)
}

type merchService struct {
	repo repository.MerchRepository
}

func NewMerchService(repo repository.MerchRepository) MerchService {
	return &merchService{repo: repo}
}

// 周边规格是自由标签 (如 l-black)，只要求非空
func isValidMerchVariantType(t string) bool {
	return t != "" && len(t) <= 60
}

func (s *merchService) CreateMerch(ctx context.Context, in MerchInput, first VariantInput) (*model.Merch, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrTitleRequired
	}
	first, err := normalizeVariant(first, isValidMerchVariantType)
	if err != nil {
		return nil, err
	}

	slug := utils.Slugify(in.Slug)
	if slug == "" {
		slug = utils.Slugify(name)
	}
	m := &model.Merch{
		Name:        name,
		Slug:        slug,
		Description: utils.Deref(in.Description),
		Category:    utils.Deref(in.Category),
		Images:      in.Images,
		IsActive:    true,
	}
	if m.Images == nil {
		m.Images = []string{}
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	variant := &model.MerchVariant{
		VariantType: first.VariantType,
		Price:       first.Price,
		Stock:       first.Stock,
		Status:      first.Status,
	}

	if err := s.repo.CreateMerch(ctx, m, variant); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return m, nil
}

func (s *merchService) UpdateMerch(ctx context.Context, id string, in MerchInput) (*model.Merch, error) {
	m, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		m.Name = name
	}
	utils.Patch(&m.Description, in.Description)
	utils.Patch(&m.Category, in.Category)
	if in.Images != nil {
		m.Images = in.Images
	}
	utils.Patch(&m.IsActive, in.IsActive)

	if err := s.repo.UpdateMerch(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *merchService) DeleteMerch(ctx context.Context, id string) error {
	if _, err := s.findByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteMerch(ctx, id)
}

func (s *merchService) AddMerchVariant(ctx context.Context, merchID string, in VariantInput) (*model.MerchVariant, error) {
	in, err := normalizeVariant(in, isValidMerchVariantType)
	if err != nil {
		return nil, err
	}
	if _, err := s.findByID(ctx, merchID); err != nil {
		return nil, err
	}

	v := &model.MerchVariant{
		MerchID:     merchID,
		VariantType: in.VariantType,
		Price:       in.Price,
		Stock:       in.Stock,
		Status:      in.Status,
	}
	if err := s.repo.CreateVariant(ctx, v); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrDuplicateVariant
		}
		return nil, err
	}
	return v, nil
}

func (s *merchService) UpdateMerchVariant(ctx context.Context, variantID string, in VariantInput) (*model.MerchVariant, error) {
	in, err := normalizeVariant(in, isValidMerchVariantType)
	if err != nil {
		return nil, err
	}
	v, err := s.repo.GetVariant(ctx, variantID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrVariantNotFound
		}
		return nil, err
	}

	v.VariantType = in.VariantType
	v.Price = in.Price
	v.Stock = in.Stock
	v.Status = in.Status
	if err := s.repo.UpdateVariant(ctx, v); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrDuplicateVariant
		}
		return nil, err
	}
	return v, nil
}

func (s *merchService) DeleteMerchVariant(ctx context.Context, variantID string) error {
	deleted, err := s.repo.DeleteVariant(ctx, variantID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrVariantNotFound
	}
	return nil
}

func (s *merchService) ListMerch(ctx context.Context, q MerchQuery, includeInactive bool) ([]model.Merch, int64, error) {
	offset, limit := q.GetPageOffset()
	return s.repo.ListMerch(ctx, repository.MerchFilter{
		Search:          strings.TrimSpace(q.Search),
		Category:        q.Category,
		IncludeInactive: includeInactive,
		Offset:          offset,
		Limit:           limit,
	})
}

func (s *merchService) GetMerch(ctx context.Context, slug string, includeInactive bool) (*model.Merch, error) {
	m, err := s.repo.GetMerchBySlug(ctx, slug)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrMerchNotFound
		}
		return nil, err
	}
	if !m.IsActive && !includeInactive {
		return nil, ErrMerchNotFound
	}
	return m, nil
}

func (s *merchService) findByID(ctx context.Context, id string) (*model.Merch, error) {
	m, err := s.repo.GetMerchByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrMerchNotFound
		}
		return nil, err
	}
	return m, nil
}
