package service

import (
	"context"
	"thywilluche/internal/domain/community/model"
	"thywilluche/internal/domain/community/repository"
	usermodel "thywilluche/internal/domain/user/model"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockPostRepository is a mock of PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) CreatePost(ctx context.Context, post *model.Post) error {
	return m.Called(post).Error(0)
}

func (m *MockPostRepository) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *MockPostRepository) ListFeed(ctx context.Context, f repository.FeedFilter) ([]model.Post, int64, error) {
	args := m.Called(f)
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) ListPosts(ctx context.Context, f repository.PostFilter) ([]model.Post, int64, error) {
	args := m.Called(f)
	return args.Get(0).([]model.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) ModeratePost(ctx context.Context, id string, mod repository.Moderation) (bool, error) {
	args := m.Called(id, mod)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) DeletePost(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockPostRepository) PostStats(ctx context.Context, postIDs []string, viewerID string) (map[string]repository.PostStats, error) {
	args := m.Called(postIDs, viewerID)
	return args.Get(0).(map[string]repository.PostStats), args.Error(1)
}

func (m *MockPostRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	return m.Called(comment).Error(0)
}

func (m *MockPostRepository) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Comment), args.Error(1)
}

func (m *MockPostRepository) ListComments(ctx context.Context, postID string, offset, limit int) ([]model.Comment, int64, error) {
	args := m.Called(postID, offset, limit)
	return args.Get(0).([]model.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) ListReplies(ctx context.Context, parentID string, offset, limit int) ([]model.Comment, int64, error) {
	args := m.Called(parentID, offset, limit)
	return args.Get(0).([]model.Comment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) SetCommentState(ctx context.Context, id, state string) error {
	return m.Called(id, state).Error(0)
}

func (m *MockPostRepository) CommentStats(ctx context.Context, commentIDs []string, viewerID string) (map[string]repository.CommentStats, error) {
	args := m.Called(commentIDs, viewerID)
	return args.Get(0).(map[string]repository.CommentStats), args.Error(1)
}

func (m *MockPostRepository) DeleteLike(ctx context.Context, userID, targetType, targetID string) (bool, error) {
	args := m.Called(userID, targetType, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) CreateLike(ctx context.Context, like *model.Like) error {
	return m.Called(like).Error(0)
}

func (m *MockPostRepository) CountLikes(ctx context.Context, targetType, targetID string) (int64, error) {
	args := m.Called(targetType, targetID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPostRepository) DeleteShare(ctx context.Context, userID, postID string) (bool, error) {
	args := m.Called(userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) CreateShare(ctx context.Context, share *model.Share) error {
	return m.Called(share).Error(0)
}

func (m *MockPostRepository) CountShares(ctx context.Context, postID string) (int64, error) {
	args := m.Called(postID)
	return args.Get(0).(int64), args.Error(1)
}

// MockGroupRepository is a mock of GroupRepository
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) CreateGroup(ctx context.Context, group *model.Group) error {
	return m.Called(group).Error(0)
}

func (m *MockGroupRepository) GetGroupByID(ctx context.Context, id string) (*model.Group, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupRepository) GetGroupBySlug(ctx context.Context, slug string) (*model.Group, error) {
	args := m.Called(slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupRepository) ListGroups(ctx context.Context, activeOnly bool) ([]model.Group, error) {
	args := m.Called(activeOnly)
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockGroupRepository) UpdateGroup(ctx context.Context, group *model.Group) error {
	return m.Called(group).Error(0)
}

func (m *MockGroupRepository) DeleteGroup(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockGroupRepository) CountPosts(ctx context.Context, groupID string) (int64, error) {
	args := m.Called(groupID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGroupRepository) GroupCounts(ctx context.Context, groupIDs []string) (map[string]int64, map[string]int64, error) {
	args := m.Called(groupIDs)
	return args.Get(0).(map[string]int64), args.Get(1).(map[string]int64), args.Error(2)
}

func (m *MockGroupRepository) UpsertMember(ctx context.Context, member *model.GroupMember) error {
	return m.Called(member).Error(0)
}

func (m *MockGroupRepository) DeactivateMember(ctx context.Context, groupID, userID string) (bool, error) {
	args := m.Called(groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupRepository) IsActiveMember(ctx context.Context, groupID, userID string) (bool, error) {
	args := m.Called(groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGroupRepository) ListUserGroups(ctx context.Context, userID string) ([]model.Group, error) {
	args := m.Called(userID)
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockGroupRepository) ListMembers(ctx context.Context, groupID string, offset, limit int) ([]model.GroupMember, int64, error) {
	args := m.Called(groupID, offset, limit)
	return args.Get(0).([]model.GroupMember), args.Get(1).(int64), args.Error(2)
}

// MockReportRepository is a mock of ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) CreateReport(ctx context.Context, report *model.Report) error {
	return m.Called(report).Error(0)
}

func (m *MockReportRepository) GetReportByID(ctx context.Context, id string) (*model.Report, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Report), args.Error(1)
}

func (m *MockReportRepository) HasPendingReport(ctx context.Context, reporterID, targetType, targetID string) (bool, error) {
	args := m.Called(reporterID, targetType, targetID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReportRepository) ListReports(ctx context.Context, status string, offset, limit int) ([]model.Report, int64, error) {
	args := m.Called(status, offset, limit)
	return args.Get(0).([]model.Report), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportRepository) ResolveReport(ctx context.Context, id, status, note, adminID string, at time.Time) (bool, error) {
	args := m.Called(id, status, note, adminID)
	return args.Bool(0), args.Error(1)
}

// MockUserDirectory is a mock of UserDirectory
type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id string) (*usermodel.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usermodel.User), args.Error(1)
}

func (m *MockUserDirectory) GetSummaries(ctx context.Context, ids []string) (map[string]usermodel.Summary, error) {
	args := m.Called(ids)
	return args.Get(0).(map[string]usermodel.Summary), args.Error(1)
}
