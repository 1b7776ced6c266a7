package service

import (
	"context"
	"math"
	"strings"
	"thywilluche/internal/domain/shop/model"
	"thywilluche/internal/domain/shop/repository"
	"thywilluche/pkg/database"
	"thywilluche/pkg/utils"
)

type BookInput struct {
	Title       string
	Slug        string
	Author      *string
	Description *string
	CoverImage  *string
	Category    *string
	IsFeatured  *bool
	IsActive    *bool
	Tags        []string
}

type VariantInput struct {
	VariantType string
	Price       float64
	Stock       int
	SKU         string
	Status      string
}

type BookQuery struct {
	Search   string
	Category string
	Tag      string
	Featured *bool
	utils.Pagination
}

type BookService interface {
	CreateBook(ctx context.Context, in BookInput, first VariantInput) (*model.Book, error)
	UpdateBook(ctx context.Context, id string, in BookInput) (*model.Book, error)
	DeleteBook(ctx context.Context, id string) error
	AddBookVariant(ctx context.Context, bookID string, in VariantInput) (*model.BookVariant, error)
	UpdateBookVariant(ctx context.Context, variantID string, in VariantInput) (*model.BookVariant, error)
	DeleteBookVariant(ctx context.Context, variantID string) error

	ListBooks(ctx context.Context, q BookQuery, includeInactive bool) ([]model.Book, int64, error)
	GetBook(ctx context.Context, slug string, includeInactive bool) (*model.Book, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
}

type bookService struct {
	repo repository.BookRepository
}

func NewBookService(repo repository.BookRepository) BookService {
	return &bookService{repo: repo}
}

// roundPrice 价格保留两位小数
func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}

func normalizeVariant(in VariantInput, typeValid func(string) bool) (VariantInput, error) {
	in.VariantType = strings.ToLower(strings.TrimSpace(in.VariantType))
	if !typeValid(in.VariantType) {
		return in, ErrInvalidVariantType
	}
	if in.Status == "" {
		in.Status = model.StatusAvailable
	}
	if !model.IsValidVariantStatus(in.Status) {
		return in, ErrInvalidVariantStatus
	}
	if in.Price < 0 {
		return in, ErrInvalidPrice
	}
	if in.Stock < 0 {
		return in, ErrInvalidStock
	}
	in.Price = roundPrice(in.Price)
	return in, nil
}

func (s *bookService) CreateBook(ctx context.Context, in BookInput, first VariantInput) (*model.Book, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	first, err := normalizeVariant(first, model.IsValidBookVariantType)
	if err != nil {
		return nil, err
	}

	slug := utils.Slugify(in.Slug)
	if slug == "" {
		slug = utils.Slugify(title)
	}

	book := &model.Book{
		Title:       title,
		Slug:        slug,
		Author:      strings.TrimSpace(utils.Deref(in.Author)),
		Description: utils.Deref(in.Description),
		CoverImage:  utils.Deref(in.CoverImage),
		Category:    utils.Deref(in.Category),
		IsFeatured:  utils.Deref(in.IsFeatured),
		IsActive:    true,
	}
	if in.IsActive != nil {
		book.IsActive = *in.IsActive
	}
	variant := &model.BookVariant{
		VariantType: first.VariantType,
		Price:       first.Price,
		Stock:       first.Stock,
		SKU:         first.SKU,
		Status:      first.Status,
	}

	if err := s.repo.CreateBook(ctx, book, variant, in.Tags); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return book, nil
}

// UpdateBook slug 不变；Tags 为 nil 时保留原有标签
func (s *bookService) UpdateBook(ctx context.Context, id string, in BookInput) (*model.Book, error) {
	book, err := s.findByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		book.Title = title
	}
	if in.Author != nil {
		book.Author = strings.TrimSpace(*in.Author)
	}
	utils.Patch(&book.Description, in.Description)
	utils.Patch(&book.CoverImage, in.CoverImage)
	utils.Patch(&book.Category, in.Category)
	utils.Patch(&book.IsFeatured, in.IsFeatured)
	utils.Patch(&book.IsActive, in.IsActive)

	if err := s.repo.UpdateBook(ctx, book, in.Tags); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *bookService) DeleteBook(ctx context.Context, id string) error {
	if _, err := s.findByID(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteBook(ctx, id)
}

// AddBookVariant 同一本书同一规格只能有一个，由唯一索引保证
func (s *bookService) AddBookVariant(ctx context.Context, bookID string, in VariantInput) (*model.BookVariant, error) {
	in, err := normalizeVariant(in, model.IsValidBookVariantType)
	if err != nil {
		return nil, err
	}
	if _, err := s.findByID(ctx, bookID); err != nil {
		return nil, err
	}

	v := &model.BookVariant{
		BookID:      bookID,
		VariantType: in.VariantType,
		Price:       in.Price,
		Stock:       in.Stock,
		SKU:         in.SKU,
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

func (s *bookService) UpdateBookVariant(ctx context.Context, variantID string, in VariantInput) (*model.BookVariant, error) {
	in, err := normalizeVariant(in, model.IsValidBookVariantType)
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
	v.SKU = in.SKU
	v.Status = in.Status
	if err := s.repo.UpdateVariant(ctx, v); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, ErrDuplicateVariant
		}
		return nil, err
	}
	return v, nil
}

func (s *bookService) DeleteBookVariant(ctx context.Context, variantID string) error {
	deleted, err := s.repo.DeleteVariant(ctx, variantID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrVariantNotFound
	}
	return nil
}

func (s *bookService) ListBooks(ctx context.Context, q BookQuery, includeInactive bool) ([]model.Book, int64, error) {
	offset, limit := q.GetPageOffset()
	return s.repo.ListBooks(ctx, repository.BookFilter{
		Search:          strings.TrimSpace(q.Search),
		Category:        q.Category,
		Tag:             q.Tag,
		Featured:        q.Featured,
		IncludeInactive: includeInactive,
		Offset:          offset,
		Limit:           limit,
	})
}

func (s *bookService) GetBook(ctx context.Context, slug string, includeInactive bool) (*model.Book, error) {
	book, err := s.repo.GetBookBySlug(ctx, slug)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	if !book.IsActive && !includeInactive {
		return nil, ErrBookNotFound
	}
	return book, nil
}

func (s *bookService) ListTags(ctx context.Context) ([]model.Tag, error) {
	return s.repo.ListTags(ctx)
}

func (s *bookService) findByID(ctx context.Context, id string) (*model.Book, error) {
	book, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}
