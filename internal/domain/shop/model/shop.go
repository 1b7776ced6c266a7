package model

import (
	"thywilluche/pkg/model"
	"time"
)

// 图书规格
const (
	VariantPaperback = "paperback"
	VariantHardcover = "hardcover"
	VariantEbook     = "ebook"
	VariantAudiobook = "audiobook"
)

// 规格销售状态
const (
	StatusAvailable    = "available"
	StatusOutOfStock   = "out_of_stock"
	StatusPreorder     = "preorder"
	StatusDiscontinued = "discontinued"
)

func IsValidBookVariantType(t string) bool {
	switch t {
	case VariantPaperback, VariantHardcover, VariantEbook, VariantAudiobook:
		return true
	}
	return false
}

// IsDigital 电子书和有声书不占库存，也不计运费
func IsDigital(variantType string) bool {
	return variantType == VariantEbook || variantType == VariantAudiobook
}

func IsValidVariantStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusOutOfStock, StatusPreorder, StatusDiscontinued:
		return true
	}
	return false
}

// IsSellable 可下单的状态
func IsSellable(s string) bool {
	return s == StatusAvailable || s == StatusPreorder
}

type Tag struct {
	model.BaseModel
	Name string `gorm:"size:60;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:80;uniqueIndex;not null" json:"slug"`
}

type Book struct {
	model.BaseModel
	Title       string        `gorm:"size:200;not null" json:"title"`
	Slug        string        `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Author      string        `gorm:"size:120" json:"author"`
	Description string        `gorm:"type:text" json:"description"`
	CoverImage  string        `json:"coverImage"`
	Category    string        `gorm:"size:60;index" json:"category"`
	IsFeatured  bool          `gorm:"default:false" json:"isFeatured"`
	IsActive    bool          `gorm:"default:true" json:"isActive"`
	Tags        []Tag         `gorm:"many2many:book_tags" json:"tags"`
	Variants    []BookVariant `gorm:"foreignKey:BookID" json:"variants"`
}

// BookVariant 同一本书每种规格只有一行，变体直接物理删除
type BookVariant struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	BookID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_book_variants_book_type" json:"bookId"`
	VariantType string    `gorm:"size:20;not null;uniqueIndex:idx_book_variants_book_type" json:"variantType"`
	Price       float64   `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	SKU         string    `gorm:"size:64" json:"sku"`
	Status      string    `gorm:"size:20;not null;default:'available'" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Merch struct {
	model.BaseModel
	Name        string         `gorm:"size:200;not null" json:"name"`
	Slug        string         `gorm:"size:220;uniqueIndex;not null" json:"slug"`
	Description string         `gorm:"type:text" json:"description"`
	Category    string         `gorm:"size:60;index" json:"category"`
	Images      []string       `gorm:"serializer:json;type:jsonb" json:"images"`
	IsActive    bool           `gorm:"default:true" json:"isActive"`
	Variants    []MerchVariant `gorm:"foreignKey:MerchID" json:"variants"`
}

func (Merch) TableName() string {
	return "merch"
}

type MerchVariant struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	MerchID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_merch_variants_merch_type" json:"merchId"`
	VariantType string    `gorm:"size:60;not null;uniqueIndex:idx_merch_variants_merch_type" json:"variantType"`
	Price       float64   `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	Status      string    `gorm:"size:20;not null;default:'available'" json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
