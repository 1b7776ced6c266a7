package service

import (
	"context"
	"strings"
	"thywilluche/internal/domain/community/model"
	"thywilluche/internal/domain/community/repository"
	usermodel "thywilluche/internal/domain/user/model"
	"thywilluche/internal/pkg/config"
	"thywilluche/internal/pkg/notify"
	"thywilluche/pkg/database"
	"thywilluche/pkg/logger"
	"thywilluche/pkg/metrics"
	"thywilluche/pkg/utils"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	maxPostLength    = 5000
	maxPostImages    = 4
	maxCommentLength = 2000
)

// UserDirectory 社区需要的用户查询，由用户仓库实现
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*usermodel.User, error)
	GetSummaries(ctx context.Context, ids []string) (map[string]usermodel.Summary, error)
}

// Viewer 当前请求者，UserID 为空表示游客
type Viewer struct {
	UserID  string
	IsAdmin bool
}

type CreatePostInput struct {
	Content string
	Images  []string
	GroupID string
}

type LikeResult struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

type ShareResult struct {
	Shared     bool  `json:"shared"`
	ShareCount int64 `json:"shareCount"`
}

type PostService interface {
	CreatePost(ctx context.Context, userID string, in CreatePostInput) (*model.Post, error)
	GetFeed(ctx context.Context, viewerID, groupID string, p utils.Pagination) ([]model.Post, int64, error)
	GetPost(ctx context.Context, viewer Viewer, postID string) (*model.Post, error)
	ListMyPosts(ctx context.Context, userID, status string, p utils.Pagination) ([]model.Post, int64, error)
	DeletePost(ctx context.Context, viewer Viewer, postID string) error

	ListPosts(ctx context.Context, status string, p utils.Pagination) ([]model.Post, int64, error)
	ModeratePost(ctx context.Context, adminID, postID, decision, reason string) (*model.Post, error)

	AddComment(ctx context.Context, userID, postID, content, parentID string) (*model.Comment, error)
	ListComments(ctx context.Context, viewerID, postID string, p utils.Pagination) ([]model.Comment, int64, error)
	ListReplies(ctx context.Context, viewerID, commentID string, p utils.Pagination) ([]model.Comment, int64, error)
	DeleteComment(ctx context.Context, viewer Viewer, commentID string) error

	ToggleLike(ctx context.Context, userID, targetType, targetID string) (*LikeResult, error)
	ToggleShare(ctx context.Context, userID, postID string) (*ShareResult, error)
}

type postService struct {
	repo     repository.PostRepository
	groups   repository.GroupRepository
	users    UserDirectory
	notifier notify.Notifier
	now      func() time.Time
}

func NewPostService(repo repository.PostRepository, groups repository.GroupRepository, users UserDirectory, notifier notify.Notifier) PostService {
	return &postService{repo: repo, groups: groups, users: users, notifier: notifier, now: time.Now}
}

func isValidPostStatus(status string) bool {
	return status == model.PostPending || status == model.PostApproved || status == model.PostRejected
}

// CreatePost 新帖一律 pending，发布时间由审核写入
func (s *postService) CreatePost(ctx context.Context, userID string, in CreatePostInput) (*model.Post, error) {
	content := strings.TrimSpace(in.Content)
	if n := utf8.RuneCountInString(content); n == 0 || n > maxPostLength {
		return nil, ErrContentLength
	}
	if len(in.Images) > maxPostImages {
		return nil, ErrTooManyImages
	}

	post := &model.Post{
		AuthorID: userID,
		Content:  content,
		Images:   in.Images,
		Status:   model.PostPending,
	}
	if post.Images == nil {
		post.Images = []string{}
	}

	if in.GroupID != "" {
		group, err := s.activeGroup(ctx, in.GroupID)
		if err != nil {
			return nil, err
		}
		member, err := s.groups.IsActiveMember(ctx, group.ID, userID)
		if err != nil {
			return nil, err
		}
		if !member {
			return nil, ErrNotGroupMember
		}
		post.GroupID = &group.ID
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	metrics.GetGlobalCollector().RecordPostSubmitted()
	return post, nil
}

func (s *postService) activeGroup(ctx context.Context, groupID string) (*model.Group, error) {
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	if !group.IsActive {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetFeed 只返回已审核帖子
func (s *postService) GetFeed(ctx context.Context, viewerID, groupID string, p utils.Pagination) ([]model.Post, int64, error) {
	if groupID != "" {
		if _, err := s.activeGroup(ctx, groupID); err != nil {
			return nil, 0, err
		}
	}

	offset, limit := p.GetPageOffset()
	posts, total, err := s.repo.ListFeed(ctx, repository.FeedFilter{
		ViewerID: viewerID,
		GroupID:  groupID,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, 0, err
	}
	if err := s.enrichPosts(ctx, posts, viewerID); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// GetPost 未审核或被拒绝的帖子只对作者和管理员可见
func (s *postService) GetPost(ctx context.Context, viewer Viewer, postID string) (*model.Post, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Status != model.PostApproved && !viewer.IsAdmin && post.AuthorID != viewer.UserID {
		return nil, ErrPostNotFound
	}

	posts := []model.Post{*post}
	if err := s.enrichPosts(ctx, posts, viewer.UserID); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (s *postService) findPost(ctx context.Context, postID string) (*model.Post, error) {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) ListMyPosts(ctx context.Context, userID, status string, p utils.Pagination) ([]model.Post, int64, error) {
	return s.listPosts(ctx, userID, userID, status, p)
}

func (s *postService) ListPosts(ctx context.Context, status string, p utils.Pagination) ([]model.Post, int64, error) {
	return s.listPosts(ctx, "", "", status, p)
}

func (s *postService) listPosts(ctx context.Context, authorID, viewerID, status string, p utils.Pagination) ([]model.Post, int64, error) {
	if status != "" && !isValidPostStatus(status) {
		return nil, 0, ErrInvalidStatus
	}
	offset, limit := p.GetPageOffset()
	posts, total, err := s.repo.ListPosts(ctx, repository.PostFilter{
		AuthorID: authorID,
		Status:   status,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return nil, 0, err
	}
	if err := s.enrichPosts(ctx, posts, viewerID); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (s *postService) DeletePost(ctx context.Context, viewer Viewer, postID string) error {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != viewer.UserID && !viewer.IsAdmin {
		return ErrForbidden
	}
	return s.repo.DeletePost(ctx, postID)
}

// ModeratePost 审核只能从 pending 出发一次：通过时写入发布时间，拒绝时记录原因
func (s *postService) ModeratePost(ctx context.Context, adminID, postID, decision, reason string) (*model.Post, error) {
	if decision != model.PostApproved && decision != model.PostRejected {
		return nil, ErrInvalidDecision
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Status != model.PostPending {
		return nil, ErrPostModerated
	}

	now := s.now()
	m := repository.Moderation{
		Status:      decision,
		ModeratedBy: adminID,
		ModeratedAt: now,
	}
	if decision == model.PostApproved {
		m.PublishedAt = &now
	} else {
		m.RejectionReason = strings.TrimSpace(reason)
	}

	updated, err := s.repo.ModeratePost(ctx, postID, m)
	if err != nil {
		return nil, err
	}
	if !updated {
		// 并发审核，另一请求已处理
		return nil, ErrPostModerated
	}

	post.Status = m.Status
	post.PublishedAt = m.PublishedAt
	post.ModeratedBy = &adminID
	post.ModeratedAt = &now
	post.RejectionReason = m.RejectionReason

	metrics.GetGlobalCollector().RecordModeration("post", decision)
	s.notifyModerated(ctx, post)
	return post, nil
}

func (s *postService) notifyModerated(ctx context.Context, post *model.Post) {
	author, err := s.users.GetByID(ctx, post.AuthorID)
	if err != nil {
		logger.Log.Warn("moderation notice skipped", zap.String("post_id", post.ID), zap.Error(err))
		return
	}
	s.notifier.Notify(notify.Notification{
		To:       author.Email,
		Subject:  "Your post was " + post.Status,
		Template: notify.TemplatePostModerated,
		Data: map[string]any{
			"Decision": post.Status,
			"Reason":   post.RejectionReason,
			"Link":     config.GlobalConfig.App.BaseURL + "/community/posts/" + post.ID,
		},
		UserID:    author.ID,
		PushTitle: "Post " + post.Status,
		PushBody:  "Your community post was " + post.Status + ".",
		PushExt:   map[string]string{"type": "post_moderated", "postId": post.ID},
	})
}

// AddComment 回复的回复挂到一级评论下
func (s *postService) AddComment(ctx context.Context, userID, postID, content, parentID string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n == 0 || n > maxCommentLength {
		return nil, ErrCommentLength
	}

	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Status != model.PostApproved {
		return nil, ErrCommentNotAllowed
	}

	comment := &model.Comment{
		PostID:   postID,
		AuthorID: userID,
		Content:  content,
		State:    model.CommentActive,
	}

	if parentID != "" {
		parent, err := s.findComment(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID || parent.State != model.CommentActive {
			return nil, ErrCommentNotFound
		}
		rootID := parent.ID
		if parent.ParentID != nil {
			rootID = *parent.ParentID
		}
		comment.ParentID = &rootID
	}

	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *postService) findComment(ctx context.Context, id string) (*model.Comment, error) {
	comment, err := s.repo.GetCommentByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *postService) ListComments(ctx context.Context, viewerID, postID string, p utils.Pagination) ([]model.Comment, int64, error) {
	post, err := s.findPost(ctx, postID)
	if err != nil {
		return nil, 0, err
	}
	if post.Status != model.PostApproved {
		return nil, 0, ErrPostNotFound
	}

	offset, limit := p.GetPageOffset()
	comments, total, err := s.repo.ListComments(ctx, postID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	if err := s.enrichComments(ctx, comments, viewerID); err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

func (s *postService) ListReplies(ctx context.Context, viewerID, commentID string, p utils.Pagination) ([]model.Comment, int64, error) {
	parent, err := s.findComment(ctx, commentID)
	if err != nil {
		return nil, 0, err
	}
	if parent.State != model.CommentActive {
		return nil, 0, ErrCommentNotFound
	}

	offset, limit := p.GetPageOffset()
	replies, total, err := s.repo.ListReplies(ctx, commentID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	if err := s.enrichComments(ctx, replies, viewerID); err != nil {
		return nil, 0, err
	}
	return replies, total, nil
}

// DeleteComment 只修改状态，内容保留
func (s *postService) DeleteComment(ctx context.Context, viewer Viewer, commentID string) error {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != viewer.UserID && !viewer.IsAdmin {
		return ErrForbidden
	}
	if comment.State == model.CommentDeleted {
		return nil
	}
	return s.repo.SetCommentState(ctx, commentID, model.CommentDeleted)
}

// ToggleLike 先删后插：删除成功即取消点赞，否则插入；插入撞唯一索引说明并发请求已点赞
func (s *postService) ToggleLike(ctx context.Context, userID, targetType, targetID string) (*LikeResult, error) {
	if err := s.ensureLikeTarget(ctx, targetType, targetID); err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteLike(ctx, userID, targetType, targetID)
	if err != nil {
		return nil, err
	}

	liked := false
	if !deleted {
		err := s.repo.CreateLike(ctx, &model.Like{UserID: userID, TargetType: targetType, TargetID: targetID})
		if err != nil && !database.IsDuplicateKey(err) {
			return nil, err
		}
		liked = true
	}

	count, err := s.repo.CountLikes(ctx, targetType, targetID)
	if err != nil {
		return nil, err
	}
	return &LikeResult{Liked: liked, LikeCount: count}, nil
}

func (s *postService) ensureLikeTarget(ctx context.Context, targetType, targetID string) error {
	switch targetType {
	case model.TargetPost:
		post, err := s.repo.GetPostByID(ctx, targetID)
		if err != nil {
			if database.IsNotFound(err) {
				return ErrTargetNotFound
			}
			return err
		}
		if post.Status != model.PostApproved {
			return ErrTargetNotFound
		}
	case model.TargetComment:
		comment, err := s.repo.GetCommentByID(ctx, targetID)
		if err != nil {
			if database.IsNotFound(err) {
				return ErrTargetNotFound
			}
			return err
		}
		if comment.State != model.CommentActive {
			return ErrTargetNotFound
		}
	default:
		return ErrInvalidTarget
	}
	return nil
}

// ToggleShare 与点赞相同的先删后插
func (s *postService) ToggleShare(ctx context.Context, userID, postID string) (*ShareResult, error) {
	if err := s.ensureLikeTarget(ctx, model.TargetPost, postID); err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteShare(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	shared := false
	if !deleted {
		err := s.repo.CreateShare(ctx, &model.Share{UserID: userID, PostID: postID})
		if err != nil && !database.IsDuplicateKey(err) {
			return nil, err
		}
		shared = true
	}

	count, err := s.repo.CountShares(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &ShareResult{Shared: shared, ShareCount: count}, nil
}

// enrichPosts 填充计数与作者信息
func (s *postService) enrichPosts(ctx context.Context, posts []model.Post, viewerID string) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	authorIDs := make([]string, 0, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		authorIDs = append(authorIDs, posts[i].AuthorID)
	}

	stats, err := s.repo.PostStats(ctx, ids, viewerID)
	if err != nil {
		return err
	}
	authors, err := s.users.GetSummaries(ctx, unique(authorIDs))
	if err != nil {
		return err
	}

	for i := range posts {
		st := stats[posts[i].ID]
		posts[i].LikeCount = st.LikeCount
		posts[i].CommentCount = st.CommentCount
		posts[i].ShareCount = st.ShareCount
		posts[i].LikedByViewer = st.Liked
		if a, ok := authors[posts[i].AuthorID]; ok {
			posts[i].Author = &a
		}
	}
	return nil
}

func (s *postService) enrichComments(ctx context.Context, comments []model.Comment, viewerID string) error {
	if len(comments) == 0 {
		return nil
	}
	ids := make([]string, len(comments))
	authorIDs := make([]string, 0, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
		authorIDs = append(authorIDs, comments[i].AuthorID)
	}

	stats, err := s.repo.CommentStats(ctx, ids, viewerID)
	if err != nil {
		return err
	}
	authors, err := s.users.GetSummaries(ctx, unique(authorIDs))
	if err != nil {
		return err
	}

	for i := range comments {
		st := stats[comments[i].ID]
		comments[i].ReplyCount = st.ReplyCount
		comments[i].LikeCount = st.LikeCount
		comments[i].LikedByViewer = st.Liked
		if a, ok := authors[comments[i].AuthorID]; ok {
			comments[i].Author = &a
		}
	}
	return nil
}

func unique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
