package model

import (
	"thywilluche/pkg/model"
	"time"
)

// 报名、书评审核状态
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// 报名组别
const (
	CategoryJunior = "junior"
	CategorySenior = "senior"
	CategoryOpen   = "open"
)

func IsValidCategory(c string) bool {
	switch c {
	case CategoryJunior, CategorySenior, CategoryOpen:
		return true
	}
	return false
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Championship 书评锦标赛
type Championship struct {
	model.BaseModel
	Name             string     `gorm:"size:200;not null" json:"name"`
	Slug             string     `gorm:"size:220;not null;uniqueIndex" json:"slug"`
	Description      string     `gorm:"type:text" json:"description"`
	Year             int        `gorm:"not null" json:"year"`
	RegistrationFee  float64    `gorm:"type:numeric(12,2);not null;default:0" json:"registrationFee"`
	RegistrationOpen bool       `gorm:"not null;default:false" json:"registrationOpen"`
	StartsAt         *time.Time `json:"startsAt"`
}

// Registration 报名，每个用户每届只能报名一次
type Registration struct {
	model.BaseModel
	ChampionshipID string     `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_championship_user" json:"championshipId"`
	UserID         string     `gorm:"type:uuid;not null;uniqueIndex:idx_registrations_championship_user;index" json:"userId"`
	FullName       string     `gorm:"size:200;not null" json:"fullName"`
	Email          string     `gorm:"size:255;not null" json:"email"`
	Phone          string     `gorm:"size:40" json:"phone"`
	Institution    string     `gorm:"size:200" json:"institution"`
	Category       string     `gorm:"size:10;not null" json:"category"`
	Country        string     `gorm:"size:100" json:"country"`
	State          string     `gorm:"size:100" json:"state"`
	City           string     `gorm:"size:100" json:"city"`
	ReceiptURL     string     `gorm:"size:500;not null" json:"receiptUrl"`
	Status         string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	AdminNote      string     `gorm:"size:1000" json:"adminNote"`
	ReviewedBy     *string    `gorm:"type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`

	Championship *Championship `gorm:"foreignKey:ChampionshipID" json:"championship,omitempty"`
}

func (Registration) TableName() string {
	return "championship_registrations"
}

// ReviewSubmission 参赛书评，正文和文档至少一项
type ReviewSubmission struct {
	model.BaseModel
	ChampionshipID string     `gorm:"type:uuid;not null;index" json:"championshipId"`
	UserID         string     `gorm:"type:uuid;not null;index" json:"userId"`
	BookTitle      string     `gorm:"size:255;not null" json:"bookTitle"`
	Author         string     `gorm:"size:200" json:"author"`
	ReviewText     string     `gorm:"type:text" json:"reviewText"`
	DocumentURL    string     `gorm:"size:500" json:"documentUrl"`
	Status         string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	AdminNote      string     `gorm:"size:1000" json:"adminNote"`
	ReviewedBy     *string    `gorm:"type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt     *time.Time `json:"reviewedAt,omitempty"`

	Championship *Championship `gorm:"foreignKey:ChampionshipID" json:"championship,omitempty"`
}

func (ReviewSubmission) TableName() string {
	return "championship_reviews"
}
