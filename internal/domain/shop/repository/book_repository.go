package repository

import (
	"context"
	"fmt"
	"thywilluche/internal/domain/shop/model"
	"thywilluche/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookFilter 图书列表条件
type BookFilter struct {
	Search          string
	Category        string
	Tag             string // tag slug
	Featured        *bool
	IncludeInactive bool
	Offset          int
	Limit           int
}

type BookRepository interface {
	// CreateBook 一个事务内创建图书、关联标签、首个规格
	CreateBook(ctx context.Context, book *model.Book, first *model.BookVariant, tagNames []string) error
	GetBookByID(ctx context.Context, id string) (*model.Book, error)
	GetBookBySlug(ctx context.Context, slug string) (*model.Book, error)
	ListBooks(ctx context.Context, f BookFilter) ([]model.Book, int64, error)
	// UpdateBook tagNames 为 nil 时不修改标签
	UpdateBook(ctx context.Context, book *model.Book, tagNames []string) error
	DeleteBook(ctx context.Context, id string) error

	CreateVariant(ctx context.Context, v *model.BookVariant) error
	GetVariant(ctx context.Context, id string) (*model.BookVariant, error)
	UpdateVariant(ctx context.Context, v *model.BookVariant) error
	DeleteVariant(ctx context.Context, id string) (bool, error)

	ListTags(ctx context.Context) ([]model.Tag, error)
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) CreateBook(ctx context.Context, book *model.Book, first *model.BookVariant, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := findOrCreateTags(tx, tagNames)
		if err != nil {
			return err
		}
		book.Tags = tags
		if err := tx.Omit("Variants").Create(book).Error; err != nil {
			return err
		}

		first.BookID = book.ID
		if err := tx.Create(first).Error; err != nil {
			return err
		}
		book.Variants = []model.BookVariant{*first}
		return nil
	})
}

// findOrCreateTags 按 slug 去重，已存在的标签直接复用
func findOrCreateTags(tx *gorm.DB, names []string) ([]model.Tag, error) {
	tags := make([]model.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		slug := utils.Slugify(name)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}

		// 冲突时插入被跳过，新生成的 ID 不能带进查询条件
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Tag{Name: name, Slug: slug}).Error; err != nil {
			return nil, err
		}
		var tag model.Tag
		if err := tx.Where("slug = ?", slug).First(&tag).Error; err != nil {
			return nil, fmt.Errorf("load tag %q: %w", slug, err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

func (r *bookRepository) GetBookByID(ctx context.Context, id string) (*model.Book, error) {
	var book model.Book
	if err := r.preload(ctx).Where("id = ?", id).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) GetBookBySlug(ctx context.Context, slug string) (*model.Book, error) {
	var book model.Book
	if err := r.preload(ctx).Where("slug = ?", slug).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

func (r *bookRepository) preload(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Tags").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("price ASC") })
}

func (r *bookRepository) ListBooks(ctx context.Context, f BookFilter) ([]model.Book, int64, error) {
	db := r.db.WithContext(ctx)
	query := db.Model(&model.Book{})
	if !f.IncludeInactive {
		query = query.Where("books.is_active = ?", true)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("(books.title ILIKE ? OR books.author ILIKE ?)", like, like)
	}
	if f.Category != "" {
		query = query.Where("books.category = ?", f.Category)
	}
	if f.Featured != nil {
		query = query.Where("books.is_featured = ?", *f.Featured)
	}
	if f.Tag != "" {
		tagged := db.Table("book_tags").
			Select("book_tags.book_id").
			Joins("JOIN tags ON tags.id = book_tags.tag_id").
			Where("tags.slug = ?", f.Tag)
		query = query.Where("books.id IN (?)", tagged)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var books []model.Book
	err := query.Preload("Tags").
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("price ASC") }).
		Order("books.is_featured DESC").Order("books.created_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&books).Error
	if err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func (r *bookRepository) UpdateBook(ctx context.Context, book *model.Book, tagNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(book).Select("title", "author", "description", "cover_image", "category", "is_featured", "is_active").
			Updates(book).Error; err != nil {
			return err
		}
		if tagNames == nil {
			return nil
		}
		tags, err := findOrCreateTags(tx, tagNames)
		if err != nil {
			return err
		}
		if err := tx.Model(book).Association("Tags").Replace(tags); err != nil {
			return err
		}
		book.Tags = tags
		return nil
	})
}

func (r *bookRepository) DeleteBook(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Book{}).Error
}

// CreateVariant (book_id, variant_type) 唯一索引冲突时返回 gorm.ErrDuplicatedKey
func (r *bookRepository) CreateVariant(ctx context.Context, v *model.BookVariant) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *bookRepository) GetVariant(ctx context.Context, id string) (*model.BookVariant, error) {
	var v model.BookVariant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *bookRepository) UpdateVariant(ctx context.Context, v *model.BookVariant) error {
	return r.db.WithContext(ctx).Model(v).
		Select("variant_type", "price", "stock", "sku", "status").
		Updates(v).Error
}

func (r *bookRepository) DeleteVariant(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.BookVariant{})
	return res.RowsAffected > 0, res.Error
}

func (r *bookRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}
