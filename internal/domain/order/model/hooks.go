package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
