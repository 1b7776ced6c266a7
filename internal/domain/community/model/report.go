package model

import (
	"thywilluche/pkg/model"
	"time"
)

// 举报状态
const (
	ReportPending   = "pending"
	ReportResolved  = "resolved"
	ReportDismissed = "dismissed"
)

var reportReasons = map[string]bool{
	"spam":           true,
	"harassment":     true,
	"inappropriate":  true,
	"misinformation": true,
	"other":          true,
}

func IsValidReportReason(reason string) bool {
	return reportReasons[reason]
}

// Report 举报，同一用户对同一目标只能有一条待处理举报
type Report struct {
	model.BaseModel
	ReporterID string     `gorm:"type:uuid;not null;index" json:"reporterId"`
	TargetType string     `gorm:"size:10;not null" json:"targetType"`
	TargetID   string     `gorm:"type:uuid;not null" json:"targetId"`
	Reason     string     `gorm:"size:20;not null" json:"reason"`
	Details    string     `gorm:"size:1000" json:"details"`
	Status     string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	AdminNote  string     `gorm:"size:1000" json:"adminNote"`
	ReviewedBy *string    `gorm:"type:uuid" json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
}
