package model

import (
	usermodel "thywilluche/internal/domain/user/model"
	"thywilluche/pkg/model"
	"time"
)

// 小组类型
const (
	GroupGeneral  = "general"
	GroupBookClub = "book_club"
	GroupWriters  = "writers"
	GroupPoetry   = "poetry"
)

const (
	MemberRoleMember    = "member"
	MemberRoleModerator = "moderator"
)

func IsValidGroupType(t string) bool {
	switch t {
	case GroupGeneral, GroupBookClub, GroupWriters, GroupPoetry:
		return true
	}
	return false
}

type Group struct {
	model.BaseModel
	Name        string `gorm:"size:100;not null" json:"name"`
	Slug        string `gorm:"size:120;uniqueIndex;not null" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
	Type        string `gorm:"size:20;not null;default:general" json:"type"`
	Image       string `json:"image"`
	IsActive    bool   `gorm:"not null;default:true" json:"isActive"`
	CreatedBy   string `gorm:"type:uuid" json:"createdBy"`

	PostCount   int64 `gorm:"-" json:"postCount"`
	MemberCount int64 `gorm:"-" json:"memberCount"`
}

func (Group) TableName() string {
	return "community_groups"
}

// GroupMember 成员关系，(group, user) 唯一，退出只置为非活跃
type GroupMember struct {
	model.JoinModel
	GroupID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_group_members_group_user" json:"groupId"`
	UserID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_group_members_group_user;index" json:"userId"`
	Role     string    `gorm:"size:20;not null;default:member" json:"role"`
	IsActive bool      `gorm:"not null;default:true" json:"isActive"`
	JoinedAt time.Time `json:"joinedAt"`

	User *usermodel.Summary `gorm:"-" json:"user,omitempty"`
}
