package service

import (
	"context"
	"testing"
	"thywilluche/internal/domain/community/model"
	"thywilluche/internal/domain/community/repository"
	usermodel "thywilluche/internal/domain/user/model"
	"thywilluche/internal/pkg/notify"
	pkgmodel "thywilluche/pkg/model"
	"thywilluche/pkg/utils"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type postFixture struct {
	posts    *MockPostRepository
	groups   *MockGroupRepository
	users    *MockUserDirectory
	notifier *notify.Recorder
	svc      *postService
}

func newPostFixture() *postFixture {
	f := &postFixture{
		posts:    new(MockPostRepository),
		groups:   new(MockGroupRepository),
		users:    new(MockUserDirectory),
		notifier: &notify.Recorder{},
	}
	f.svc = NewPostService(f.posts, f.groups, f.users, f.notifier).(*postService)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func newPost(id, authorID, status string) *model.Post {
	return &model.Post{
		BaseModel: pkgmodel.BaseModel{ID: id},
		AuthorID:  authorID,
		Content:   "hello",
		Status:    status,
	}
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("Always pending without published at", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("CreatePost", mock.MatchedBy(func(p *model.Post) bool {
			return p.Status == model.PostPending && p.PublishedAt == nil && p.GroupID == nil
		})).Return(nil)

		post, err := f.svc.CreatePost(ctx, "u-1", CreatePostInput{Content: "  my first poem  "})

		require.NoError(t, err)
		assert.Equal(t, model.PostPending, post.Status)
		assert.Nil(t, post.PublishedAt)
		assert.Equal(t, "my first poem", post.Content)
		f.posts.AssertExpectations(t)
	})

	t.Run("Content and image limits", func(t *testing.T) {
		f := newPostFixture()
		_, err := f.svc.CreatePost(ctx, "u-1", CreatePostInput{Content: "   "})
		assert.ErrorIs(t, err, ErrContentLength)

		_, err = f.svc.CreatePost(ctx, "u-1", CreatePostInput{Content: "x", Images: []string{"a", "b", "c", "d", "e"}})
		assert.ErrorIs(t, err, ErrTooManyImages)
		f.posts.AssertNotCalled(t, "CreatePost", mock.Anything)
	})

	t.Run("Group post requires membership", func(t *testing.T) {
		f := newPostFixture()
		group := &model.Group{BaseModel: pkgmodel.BaseModel{ID: "g-1"}, IsActive: true}
		f.groups.On("GetGroupByID", "g-1").Return(group, nil)
		f.groups.On("IsActiveMember", "g-1", "u-1").Return(false, nil)

		_, err := f.svc.CreatePost(ctx, "u-1", CreatePostInput{Content: "x", GroupID: "g-1"})
		assert.ErrorIs(t, err, ErrNotGroupMember)
	})

	t.Run("Group post by member", func(t *testing.T) {
		f := newPostFixture()
		group := &model.Group{BaseModel: pkgmodel.BaseModel{ID: "g-1"}, IsActive: true}
		f.groups.On("GetGroupByID", "g-1").Return(group, nil)
		f.groups.On("IsActiveMember", "g-1", "u-1").Return(true, nil)
		f.posts.On("CreatePost", mock.MatchedBy(func(p *model.Post) bool {
			return p.GroupID != nil && *p.GroupID == "g-1" && p.Status == model.PostPending
		})).Return(nil)

		_, err := f.svc.CreatePost(ctx, "u-1", CreatePostInput{Content: "x", GroupID: "g-1"})
		assert.NoError(t, err)
	})

	t.Run("Inactive group", func(t *testing.T) {
		f := newPostFixture()
		f.groups.On("GetGroupByID", "g-1").Return(&model.Group{BaseModel: pkgmodel.BaseModel{ID: "g-1"}}, nil)

		_, err := f.svc.CreatePost(ctx, "u-1", CreatePostInput{Content: "x", GroupID: "g-1"})
		assert.ErrorIs(t, err, ErrGroupNotFound)
	})
}

func TestModeratePost(t *testing.T) {
	ctx := context.Background()
	author := &usermodel.User{BaseModel: pkgmodel.BaseModel{ID: "author"}, Email: "author@example.com"}

	t.Run("Approve sets published at", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostPending), nil)
		f.posts.On("ModeratePost", "p-1", mock.MatchedBy(func(m repository.Moderation) bool {
			return m.Status == model.PostApproved && m.PublishedAt != nil && m.PublishedAt.Equal(fixedNow)
		})).Return(true, nil)
		f.users.On("GetByID", "author").Return(author, nil)

		post, err := f.svc.ModeratePost(ctx, "admin", "p-1", model.PostApproved, "")

		require.NoError(t, err)
		require.NotNil(t, post.PublishedAt)
		assert.True(t, post.PublishedAt.Equal(fixedNow))
		sent := f.notifier.All()
		require.Len(t, sent, 1)
		assert.Equal(t, "author@example.com", sent[0].To)
		assert.Equal(t, notify.TemplatePostModerated, sent[0].Template)
	})

	t.Run("Reject never sets published at", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostPending), nil)
		f.posts.On("ModeratePost", "p-1", mock.MatchedBy(func(m repository.Moderation) bool {
			return m.Status == model.PostRejected && m.PublishedAt == nil && m.RejectionReason == "off topic"
		})).Return(true, nil)
		f.users.On("GetByID", "author").Return(author, nil)

		post, err := f.svc.ModeratePost(ctx, "admin", "p-1", model.PostRejected, " off topic ")

		require.NoError(t, err)
		assert.Nil(t, post.PublishedAt)
		assert.Equal(t, "off topic", post.RejectionReason)
	})

	t.Run("Second decision is rejected", func(t *testing.T) {
		f := newPostFixture()
		published := fixedNow.Add(-time.Hour)
		approved := newPost("p-1", "author", model.PostApproved)
		approved.PublishedAt = &published
		f.posts.On("GetPostByID", "p-1").Return(approved, nil)

		_, err := f.svc.ModeratePost(ctx, "admin", "p-1", model.PostApproved, "")

		assert.ErrorIs(t, err, ErrPostModerated)
		f.posts.AssertNotCalled(t, "ModeratePost", mock.Anything, mock.Anything)
		assert.True(t, approved.PublishedAt.Equal(published))
	})

	t.Run("Concurrent moderation loses the race", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostPending), nil)
		f.posts.On("ModeratePost", "p-1", mock.Anything).Return(false, nil)

		_, err := f.svc.ModeratePost(ctx, "admin", "p-1", model.PostRejected, "")
		assert.ErrorIs(t, err, ErrPostModerated)
		assert.Empty(t, f.notifier.All())
	})

	t.Run("Invalid decision", func(t *testing.T) {
		f := newPostFixture()
		_, err := f.svc.ModeratePost(ctx, "admin", "p-1", model.PostPending, "")
		assert.ErrorIs(t, err, ErrInvalidDecision)
	})
}

func TestGetFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("Enriches posts with stats and authors", func(t *testing.T) {
		f := newPostFixture()
		posts := []model.Post{*newPost("p-1", "a-1", model.PostApproved), *newPost("p-2", "a-1", model.PostApproved)}
		f.posts.On("ListFeed", repository.FeedFilter{ViewerID: "viewer", Offset: 0, Limit: 10}).Return(posts, int64(2), nil)
		f.posts.On("PostStats", []string{"p-1", "p-2"}, "viewer").Return(map[string]repository.PostStats{
			"p-1": {LikeCount: 3, CommentCount: 2, ShareCount: 1, Liked: true},
		}, nil)
		f.users.On("GetSummaries", []string{"a-1"}).Return(map[string]usermodel.Summary{
			"a-1": {ID: "a-1", Name: "Ada"},
		}, nil)

		got, total, err := f.svc.GetFeed(ctx, "viewer", "", utils.Pagination{})

		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Equal(t, int64(3), got[0].LikeCount)
		assert.True(t, got[0].LikedByViewer)
		assert.Equal(t, int64(0), got[1].LikeCount)
		assert.Equal(t, "Ada", got[1].Author.Name)
	})

	t.Run("Group filter requires an active group", func(t *testing.T) {
		f := newPostFixture()
		f.groups.On("GetGroupByID", "g-1").Return(&model.Group{BaseModel: pkgmodel.BaseModel{ID: "g-1"}, IsActive: false}, nil)

		_, _, err := f.svc.GetFeed(ctx, "", "g-1", utils.Pagination{})
		assert.ErrorIs(t, err, ErrGroupNotFound)
		f.posts.AssertNotCalled(t, "ListFeed", mock.Anything)
	})
}

func TestGetPost_Visibility(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture()
	f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostPending), nil)
	f.posts.On("PostStats", []string{"p-1"}, mock.Anything).Return(map[string]repository.PostStats{}, nil)
	f.users.On("GetSummaries", []string{"author"}).Return(map[string]usermodel.Summary{}, nil)

	_, err := f.svc.GetPost(ctx, Viewer{}, "p-1")
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.svc.GetPost(ctx, Viewer{UserID: "stranger"}, "p-1")
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = f.svc.GetPost(ctx, Viewer{UserID: "author"}, "p-1")
	assert.NoError(t, err)

	_, err = f.svc.GetPost(ctx, Viewer{UserID: "admin", IsAdmin: true}, "p-1")
	assert.NoError(t, err)
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()

	t.Run("Only approved posts accept comments", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostPending), nil)

		_, err := f.svc.AddComment(ctx, "u-1", "p-1", "nice", "")
		assert.ErrorIs(t, err, ErrCommentNotAllowed)
	})

	t.Run("Reply to a reply attaches to the top level comment", func(t *testing.T) {
		f := newPostFixture()
		root := "c-root"
		f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostApproved), nil)
		f.posts.On("GetCommentByID", "c-reply").Return(&model.Comment{
			BaseModel: pkgmodel.BaseModel{ID: "c-reply"},
			PostID:    "p-1",
			ParentID:  &root,
			State:     model.CommentActive,
		}, nil)
		f.posts.On("CreateComment", mock.MatchedBy(func(c *model.Comment) bool {
			return c.ParentID != nil && *c.ParentID == root && c.State == model.CommentActive
		})).Return(nil)

		comment, err := f.svc.AddComment(ctx, "u-1", "p-1", "agreed", "c-reply")

		require.NoError(t, err)
		assert.Equal(t, root, *comment.ParentID)
	})

	t.Run("Parent from another post", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostApproved), nil)
		f.posts.On("GetCommentByID", "c-1").Return(&model.Comment{
			BaseModel: pkgmodel.BaseModel{ID: "c-1"}, PostID: "p-2", State: model.CommentActive,
		}, nil)

		_, err := f.svc.AddComment(ctx, "u-1", "p-1", "agreed", "c-1")
		assert.ErrorIs(t, err, ErrCommentNotFound)
	})

	t.Run("Deleted parent", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostApproved), nil)
		f.posts.On("GetCommentByID", "c-1").Return(&model.Comment{
			BaseModel: pkgmodel.BaseModel{ID: "c-1"}, PostID: "p-1", State: model.CommentDeleted,
		}, nil)

		_, err := f.svc.AddComment(ctx, "u-1", "p-1", "agreed", "c-1")
		assert.ErrorIs(t, err, ErrCommentNotFound)
	})
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	comment := &model.Comment{BaseModel: pkgmodel.BaseModel{ID: "c-1"}, AuthorID: "owner", State: model.CommentActive}

	f := newPostFixture()
	f.posts.On("GetCommentByID", "c-1").Return(comment, nil)
	f.posts.On("SetCommentState", "c-1", model.CommentDeleted).Return(nil)

	assert.ErrorIs(t, f.svc.DeleteComment(ctx, Viewer{UserID: "other"}, "c-1"), ErrForbidden)
	assert.NoError(t, f.svc.DeleteComment(ctx, Viewer{UserID: "owner"}, "c-1"))
	assert.NoError(t, f.svc.DeleteComment(ctx, Viewer{UserID: "admin", IsAdmin: true}, "c-1"))
	f.posts.AssertNumberOfCalls(t, "SetCommentState", 2)
}

func TestToggleLike(t *testing.T) {
	ctx := context.Background()

	t.Run("Double toggle restores the original state", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostApproved), nil)

		// 第一次：没有可删除的记录 -> 插入
		f.posts.On("DeleteLike", "u-1", model.TargetPost, "p-1").Return(false, nil).Once()
		f.posts.On("CreateLike", mock.AnythingOfType("*model.Like")).Return(nil).Once()
		f.posts.On("CountLikes", model.TargetPost, "p-1").Return(int64(1), nil).Once()
		// 第二次：删除成功 -> 取消
		f.posts.On("DeleteLike", "u-1", model.TargetPost, "p-1").Return(true, nil).Once()
		f.posts.On("CountLikes", model.TargetPost, "p-1").Return(int64(0), nil).Once()

		first, err := f.svc.ToggleLike(ctx, "u-1", model.TargetPost, "p-1")
		require.NoError(t, err)
		assert.True(t, first.Liked)
		assert.Equal(t, int64(1), first.LikeCount)

		second, err := f.svc.ToggleLike(ctx, "u-1", model.TargetPost, "p-1")
		require.NoError(t, err)
		assert.False(t, second.Liked)
		assert.Equal(t, int64(0), second.LikeCount)
		f.posts.AssertNumberOfCalls(t, "CreateLike", 1)
	})

	t.Run("Unique violation on insert means liked", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostApproved), nil)
		f.posts.On("DeleteLike", "u-1", model.TargetPost, "p-1").Return(false, nil)
		f.posts.On("CreateLike", mock.Anything).Return(gorm.ErrDuplicatedKey)
		f.posts.On("CountLikes", model.TargetPost, "p-1").Return(int64(1), nil)

		result, err := f.svc.ToggleLike(ctx, "u-1", model.TargetPost, "p-1")
		require.NoError(t, err)
		assert.True(t, result.Liked)
	})

	t.Run("Unpublished post cannot be liked", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostPending), nil)

		_, err := f.svc.ToggleLike(ctx, "u-1", model.TargetPost, "p-1")
		assert.ErrorIs(t, err, ErrTargetNotFound)
	})

	t.Run("Missing comment", func(t *testing.T) {
		f := newPostFixture()
		f.posts.On("GetCommentByID", "c-1").Return(nil, gorm.ErrRecordNotFound)

		_, err := f.svc.ToggleLike(ctx, "u-1", model.TargetComment, "c-1")
		assert.ErrorIs(t, err, ErrTargetNotFound)
	})

	t.Run("Unknown target type", func(t *testing.T) {
		f := newPostFixture()
		_, err := f.svc.ToggleLike(ctx, "u-1", "group", "g-1")
		assert.ErrorIs(t, err, ErrInvalidTarget)
	})
}

func TestToggleShare(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture()
	f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostApproved), nil)
	f.posts.On("DeleteShare", "u-1", "p-1").Return(false, nil).Once()
	f.posts.On("CreateShare", mock.AnythingOfType("*model.Share")).Return(nil).Once()
	f.posts.On("CountShares", "p-1").Return(int64(4), nil).Once()
	f.posts.On("DeleteShare", "u-1", "p-1").Return(true, nil).Once()
	f.posts.On("CountShares", "p-1").Return(int64(3), nil).Once()

	first, err := f.svc.ToggleShare(ctx, "u-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, &ShareResult{Shared: true, ShareCount: 4}, first)

	second, err := f.svc.ToggleShare(ctx, "u-1", "p-1")
	require.NoError(t, err)
	assert.Equal(t, &ShareResult{Shared: false, ShareCount: 3}, second)
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	f := newPostFixture()
	f.posts.On("GetPostByID", "p-1").Return(newPost("p-1", "author", model.PostApproved), nil)
	f.posts.On("DeletePost", "p-1").Return(nil)

	assert.ErrorIs(t, f.svc.DeletePost(ctx, Viewer{UserID: "other"}, "p-1"), ErrForbidden)
	assert.NoError(t, f.svc.DeletePost(ctx, Viewer{UserID: "author"}, "p-1"))
}
