package repository

import (
	"context"
	"testing"
	"thywilluche/internal/domain/community/model"
	"thywilluche/pkg/testutil"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "author_id", "content", "status"}).
		AddRow("p-1", "a-1", "first", model.PostApproved)
}

func TestListFeed_Visibility(t *testing.T) {
	ctx := context.Background()

	t.Run("Anonymous sees public posts only", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE posts\.status = \$1 AND posts\.group_id IS NULL`).
			WithArgs(model.PostApproved).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "posts" WHERE posts\.status = \$1 AND posts\.group_id IS NULL .*ORDER BY posts\.published_at DESC,posts\.id DESC`).
			WillReturnRows(postRows())

		posts, total, err := repo.ListFeed(ctx, FeedFilter{Limit: 10})

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, posts, 1)
	})

	t.Run("Member sees public and joined group posts", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE .*posts\.group_id IS NULL OR posts\.group_id IN \(SELECT group_id FROM "group_members" WHERE user_id = \$2 AND is_active = \$3\)`).
			WithArgs(model.PostApproved, "u-1", true).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "posts" WHERE .*group_members.*ORDER BY posts\.published_at DESC`).
			WillReturnRows(postRows())

		_, total, err := repo.ListFeed(ctx, FeedFilter{ViewerID: "u-1", Limit: 10})

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("Group filter", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE posts\.status = \$1 AND posts\.group_id = \$2`).
			WithArgs(model.PostApproved, "g-1").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "posts" WHERE posts\.status = \$1 AND posts\.group_id = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		posts, total, err := repo.ListFeed(ctx, FeedFilter{ViewerID: "u-1", GroupID: "g-1", Limit: 10})

		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, posts)
	})
}

func TestModeratePost_OnlyFromPending(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("Pending row updated", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "posts" SET .*"status"=.* WHERE \(id = \$\d+ AND status = \$\d+\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ok, err := repo.ModeratePost(ctx, "p-1", Moderation{Status: model.PostApproved, PublishedAt: &now, ModeratedBy: "admin", ModeratedAt: now})
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Already moderated", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		repo := NewPostRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "posts" SET`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		ok, err := repo.ModeratePost(ctx, "p-1", Moderation{Status: model.PostRejected, ModeratedBy: "admin", ModeratedAt: now})
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestDeleteLike(t *testing.T) {
	ctx := context.Background()
	db, mock := testutil.NewMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "likes" WHERE user_id = \$1 AND target_type = \$2 AND target_id = \$3`).
		WithArgs("u-1", model.TargetPost, "p-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	deleted, err := repo.DeleteLike(ctx, "u-1", model.TargetPost, "p-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestPostStats_Empty(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	repo := NewPostRepository(db)

	stats, err := repo.PostStats(context.Background(), nil, "u-1")
	require.NoError(t, err)
	assert.Empty(t, stats)
}
