package model

import (
	usermodel "thywilluche/internal/domain/user/model"
	"thywilluche/pkg/model"
	"time"
)

// 帖子审核状态
const (
	PostPending  = "pending"
	PostApproved = "approved"
	PostRejected = "rejected"
)

// 评论状态
const (
	CommentActive  = "active"
	CommentDeleted = "deleted"
)

// 点赞、举报目标类型
const (
	TargetPost    = "post"
	TargetComment = "comment"
)

// Post 帖子，GroupID 为空表示公开帖子
type Post struct {
	model.BaseModel
	AuthorID        string     `gorm:"type:uuid;not null;index" json:"authorId"`
	GroupID         *string    `gorm:"type:uuid;index" json:"groupId"`
	Content         string     `gorm:"type:text;not null" json:"content"`
	Images          []string   `gorm:"serializer:json;type:jsonb" json:"images"`
	Status          string     `gorm:"size:20;not null;default:pending;index" json:"status"`
	PublishedAt     *time.Time `json:"publishedAt"`
	ModeratedBy     *string    `gorm:"type:uuid" json:"moderatedBy,omitempty"`
	ModeratedAt     *time.Time `json:"moderatedAt,omitempty"`
	RejectionReason string     `gorm:"size:500" json:"rejectionReason,omitempty"`

	// 读取时计算
	LikeCount     int64              `gorm:"-" json:"likeCount"`
	CommentCount  int64              `gorm:"-" json:"commentCount"`
	ShareCount    int64              `gorm:"-" json:"shareCount"`
	LikedByViewer bool               `gorm:"-" json:"likedByViewer"`
	Author        *usermodel.Summary `gorm:"-" json:"author,omitempty"`
}

// Comment 评论，只有一层回复：ParentID 总是指向一级评论
type Comment struct {
	model.BaseModel
	PostID   string  `gorm:"type:uuid;not null;index" json:"postId"`
	AuthorID string  `gorm:"type:uuid;not null" json:"authorId"`
	ParentID *string `gorm:"type:uuid;index" json:"parentId"`
	Content  string  `gorm:"type:text;not null" json:"content"`
	State    string  `gorm:"size:10;not null;default:active" json:"state"`

	ReplyCount    int64              `gorm:"-" json:"replyCount"`
	LikeCount     int64              `gorm:"-" json:"likeCount"`
	LikedByViewer bool               `gorm:"-" json:"likedByViewer"`
	Author        *usermodel.Summary `gorm:"-" json:"author,omitempty"`
}

// Like 点赞，(user, target_type, target_id) 唯一
type Like struct {
	model.JoinModel
	UserID     string `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_target" json:"userId"`
	TargetType string `gorm:"size:10;not null;uniqueIndex:idx_likes_user_target;index:idx_likes_target" json:"targetType"`
	TargetID   string `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_target;index:idx_likes_target" json:"targetId"`
}

// Share 分享，(user, post) 唯一
type Share struct {
	model.JoinModel
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_shares_user_post" json:"userId"`
	PostID string `gorm:"type:uuid;not null;uniqueIndex:idx_shares_user_post" json:"postId"`
}
