package service

import "thywilluche/pkg/response"

var (
	ErrBookNotFound         = response.NewNotFound(response.ErrProductNotFound, "book not found")
	ErrMerchNotFound        = response.NewNotFound(response.ErrProductNotFound, "merchandise not found")
	ErrVariantNotFound      = response.NewNotFound(response.ErrVariantNotFound, "variant not found")
	ErrDuplicateVariant     = response.NewConflict(response.ErrDuplicateVariant, "duplicate variant")
	ErrSlugTaken            = response.NewConflict(response.ErrSlugTaken, "slug is already taken")
	ErrTitleRequired        = response.NewValidation(response.ErrValidation, "title is required")
	ErrInvalidVariantType   = response.NewValidation(response.ErrValidation, "invalid variant type")
	ErrInvalidVariantStatus = response.NewValidation(response.ErrValidation, "invalid variant status")
	ErrInvalidPrice         = response.NewValidation(response.ErrValidation, "price must not be negative")
	ErrInvalidStock         = response.NewValidation(response.ErrValidation, "stock must not be negative")
)
