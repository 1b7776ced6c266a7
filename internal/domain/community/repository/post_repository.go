package repository

import (
	"context"
	"thywilluche/internal/domain/community/model"
	"time"

	"gorm.io/gorm"
)

// FeedFilter 动态流查询条件
// GroupID 非空：只看该小组；否则 ViewerID 非空：公开帖子 + 所在小组帖子；都为空：只看公开帖子
type FeedFilter struct {
	ViewerID string
	GroupID  string
	Offset   int
	Limit    int
}

// PostFilter 作者或管理端列表
type PostFilter struct {
	AuthorID string
	Status   string
	Offset   int
	Limit    int
}

// Moderation 审核写入的字段
type Moderation struct {
	Status          string
	PublishedAt     *time.Time
	ModeratedBy     string
	ModeratedAt     time.Time
	RejectionReason string
}

// PostStats 帖子计数
type PostStats struct {
	LikeCount    int64
	CommentCount int64
	ShareCount   int64
	Liked        bool
}

// CommentStats 评论计数
type CommentStats struct {
	ReplyCount int64
	LikeCount  int64
	Liked      bool
}

type PostRepository interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListFeed(ctx context.Context, f FeedFilter) ([]model.Post, int64, error)
	ListPosts(ctx context.Context, f PostFilter) ([]model.Post, int64, error)
	// ModeratePost 只更新 pending 状态的帖子，返回是否更新
	ModeratePost(ctx context.Context, id string, m Moderation) (bool, error)
	DeletePost(ctx context.Context, id string) error
	PostStats(ctx context.Context, postIDs []string, viewerID string) (map[string]PostStats, error)

	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	ListComments(ctx context.Context, postID string, offset, limit int) ([]model.Comment, int64, error)
	ListReplies(ctx context.Context, parentID string, offset, limit int) ([]model.Comment, int64, error)
	SetCommentState(ctx context.Context, id, state string) error
	CommentStats(ctx context.Context, commentIDs []string, viewerID string) (map[string]CommentStats, error)

	// DeleteLike 返回是否删除了记录
	DeleteLike(ctx context.Context, userID, targetType, targetID string) (bool, error)
	CreateLike(ctx context.Context, like *model.Like) error
	CountLikes(ctx context.Context, targetType, targetID string) (int64, error)

	DeleteShare(ctx context.Context, userID, postID string) (bool, error)
	CreateShare(ctx context.Context, share *model.Share) error
	CountShares(ctx context.Context, postID string) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// --- Post ---

func (r *postRepository) CreatePost(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// ListFeed 已审核帖子，最新发布在前
func (r *postRepository) ListFeed(ctx context.Context, f FeedFilter) ([]model.Post, int64, error) {
	db := r.db.WithContext(ctx)
	query := db.Model(&model.Post{}).Where("posts.status = ?", model.PostApproved)

	switch {
	case f.GroupID != "":
		query = query.Where("posts.group_id = ?", f.GroupID)
	case f.ViewerID != "":
		memberships := db.Model(&model.GroupMember{}).
			Select("group_id").
			Where("user_id = ? AND is_active = ?", f.ViewerID, true)
		query = query.Where("(posts.group_id IS NULL OR posts.group_id IN (?))", memberships)
	default:
		query = query.Where("posts.group_id IS NULL")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []model.Post
	if err := query.Order("posts.published_at DESC").Order("posts.id DESC").
		Offset(f.Offset).Limit(f.Limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) ListPosts(ctx context.Context, f PostFilter) ([]model.Post, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Post{})
	if f.AuthorID != "" {
		query = query.Where("author_id = ?", f.AuthorID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []model.Post
	if err := query.Order("created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) ModeratePost(ctx context.Context, id string, m Moderation) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND status = ?", id, model.PostPending).
		Updates(map[string]interface{}{
			"status":           m.Status,
			"published_at":     m.PublishedAt,
			"moderated_by":     m.ModeratedBy,
			"moderated_at":     m.ModeratedAt,
			"rejection_reason": m.RejectionReason,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *postRepository) DeletePost(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Post{}).Error
}

type countRow struct {
	ID string
	N  int64
}

func (r *postRepository) countBy(ctx context.Context, m interface{}, column string, ids []string, where string, args ...interface{}) (map[string]int64, error) {
	var rows []countRow
	q := r.db.WithContext(ctx).Model(m).
		Select(column+" AS id, COUNT(*) AS n").
		Where(column+" IN ?", ids)
	if where != "" {
		q = q.Where(where, args...)
	}
	if err := q.Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.ID] = row.N
	}
	return out, nil
}

func (r *postRepository) likedBy(ctx context.Context, viewerID, targetType string, ids []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if viewerID == "" {
		return out, nil
	}
	var liked []string
	if err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("user_id = ? AND target_type = ? AND target_id IN ?", viewerID, targetType, ids).
		Pluck("target_id", &liked).Error; err != nil {
		return nil, err
	}
	for _, id := range liked {
		out[id] = true
	}
	return out, nil
}

// PostStats 批量统计，评论只统计未删除的
func (r *postRepository) PostStats(ctx context.Context, postIDs []string, viewerID string) (map[string]PostStats, error) {
	out := make(map[string]PostStats, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	likes, err := r.countBy(ctx, &model.Like{}, "target_id", postIDs, "target_type = ?", model.TargetPost)
	if err != nil {
		return nil, err
	}
	comments, err := r.countBy(ctx, &model.Comment{}, "post_id", postIDs, "state = ?", model.CommentActive)
	if err != nil {
		return nil, err
	}
	shares, err := r.countBy(ctx, &model.Share{}, "post_id", postIDs, "")
	if err != nil {
		return nil, err
	}
	liked, err := r.likedBy(ctx, viewerID, model.TargetPost, postIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range postIDs {
		out[id] = PostStats{
			LikeCount:    likes[id],
			CommentCount: comments[id],
			ShareCount:   shares[id],
			Liked:        liked[id],
		}
	}
	return out, nil
}

// --- Comment ---

func (r *postRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *postRepository) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	var comment model.Comment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListComments 一级评论，最早在前
func (r *postRepository) ListComments(ctx context.Context, postID string, offset, limit int) ([]model.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("post_id = ? AND parent_id IS NULL AND state = ?", postID, model.CommentActive)
	return r.pageComments(query, offset, limit)
}

func (r *postRepository) ListReplies(ctx context.Context, parentID string, offset, limit int) ([]model.Comment, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("parent_id = ? AND state = ?", parentID, model.CommentActive)
	return r.pageComments(query, offset, limit)
}

func (r *postRepository) pageComments(query *gorm.DB, offset, limit int) ([]model.Comment, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []model.Comment
	if err := query.Order("created_at ASC").Offset(offset).Limit(limit).Find(&comments).Error; err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (r *postRepository) SetCommentState(ctx context.Context, id, state string) error {
	return r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("state", state).Error
}

func (r *postRepository) CommentStats(ctx context.Context, commentIDs []string, viewerID string) (map[string]CommentStats, error) {
	out := make(map[string]CommentStats, len(commentIDs))
	if len(commentIDs) == 0 {
		return out, nil
	}

	replies, err := r.countBy(ctx, &model.Comment{}, "parent_id", commentIDs, "state = ?", model.CommentActive)
	if err != nil {
		return nil, err
	}
	likes, err := r.countBy(ctx, &model.Like{}, "target_id", commentIDs, "target_type = ?", model.TargetComment)
	if err != nil {
		return nil, err
	}
	liked, err := r.likedBy(ctx, viewerID, model.TargetComment, commentIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range commentIDs {
		out[id] = CommentStats{ReplyCount: replies[id], LikeCount: likes[id], Liked: liked[id]}
	}
	return out, nil
}

// --- Like ---

func (r *postRepository) DeleteLike(ctx context.Context, userID, targetType, targetID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND target_type = ? AND target_id = ?", userID, targetType, targetID).
		Delete(&model.Like{})
	return res.RowsAffected > 0, res.Error
}

func (r *postRepository) CreateLike(ctx context.Context, like *model.Like) error {
	return r.db.WithContext(ctx).Create(like).Error
}

func (r *postRepository) CountLikes(ctx context.Context, targetType, targetID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Like{}).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Count(&count).Error
	return count, err
}

// --- Share ---

func (r *postRepository) DeleteShare(ctx context.Context, userID, postID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Share{})
	return res.RowsAffected > 0, res.Error
}

func (r *postRepository) CreateShare(ctx context.Context, share *model.Share) error {
	return r.db.WithContext(ctx).Create(share).Error
}

func (r *postRepository) CountShares(ctx context.Context, postID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Share{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
