package model

import (
	"thywilluche/pkg/model"
	"time"
)

// 游戏类型
const (
	TypeQuiz    = "quiz"
	TypeWriting = "writing"
	TypePuzzle  = "puzzle"
)

// 徽章类型
const (
	BadgeParticipation = "participation"
	BadgeWinner        = "winner"
	BadgeSpecial       = "special"
)

func IsValidGameType(t string) bool {
	switch t {
	case TypeQuiz, TypeWriting, TypePuzzle:
		return true
	}
	return false
}

func IsValidBadgeType(t string) bool {
	switch t {
	case BadgeParticipation, BadgeWinner, BadgeSpecial:
		return true
	}
	return false
}

type Badge struct {
	model.BaseModel
	Name        string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Type        string `gorm:"size:20;not null" json:"type"`
	IconURL     string `gorm:"size:500" json:"iconUrl"`
	Description string `gorm:"size:1000" json:"description"`
}

// Question 选择题，Answer 为正确选项下标，对非管理员隐藏
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Answer  *int     `json:"answer,omitempty"`
}

type Game struct {
	model.BaseModel
	Title        string     `gorm:"size:200;not null" json:"title"`
	Slug         string     `gorm:"size:220;not null;uniqueIndex" json:"slug"`
	Type         string     `gorm:"size:20;not null" json:"type"`
	Description  string     `gorm:"type:text" json:"description"`
	Prompt       string     `gorm:"type:text" json:"prompt"`
	Questions    []Question `gorm:"serializer:json;type:jsonb" json:"questions,omitempty"`
	PuzzleAnswer string     `gorm:"size:500" json:"puzzleAnswer,omitempty"`
	BadgeID      *string    `gorm:"type:uuid" json:"badgeId"`
	IsActive     bool       `gorm:"not null;default:true;index" json:"isActive"`
	StartsAt     *time.Time `json:"startsAt"`
	EndsAt       *time.Time `json:"endsAt"`

	Badge *Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
}

// Open 活动开关和时间窗口同时满足
func (g *Game) Open(now time.Time) bool {
	if !g.IsActive {
		return false
	}
	if g.StartsAt != nil && now.Before(*g.StartsAt) {
		return false
	}
	if g.EndsAt != nil && now.After(*g.EndsAt) {
		return false
	}
	return true
}

// Public 去掉答案的副本
func (g Game) Public() Game {
	g.PuzzleAnswer = ""
	if g.Questions != nil {
		qs := make([]Question, len(g.Questions))
		for i, q := range g.Questions {
			q.Answer = nil
			qs[i] = q
		}
		g.Questions = qs
	}
	return g
}

// Submission 每个用户每个游戏一次
type Submission struct {
	model.BaseModel
	GameID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_game_submissions_game_user" json:"gameId"`
	UserID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_game_submissions_game_user;index" json:"userId"`
	Answers     []int     `gorm:"serializer:json;type:jsonb" json:"answers,omitempty"`
	Content     string    `gorm:"type:text" json:"content,omitempty"`
	Score       *int      `json:"score"`
	IsWinner    bool      `gorm:"not null;default:false" json:"isWinner"`
	SubmittedAt time.Time `gorm:"not null" json:"submittedAt"`
}

func (Submission) TableName() string {
	return "game_submissions"
}

// UserBadge (user, badge, game) 唯一，game 为空视为同一个值
type UserBadge struct {
	model.JoinModel
	UserID    string    `gorm:"type:uuid;not null;index" json:"userId"`
	BadgeID   string    `gorm:"type:uuid;not null" json:"badgeId"`
	GameID    *string   `gorm:"type:uuid" json:"gameId"`
	AwardedAt time.Time `gorm:"not null" json:"awardedAt"`

	Badge *Badge `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	Game  *Game  `gorm:"foreignKey:GameID" json:"game,omitempty"`
}
