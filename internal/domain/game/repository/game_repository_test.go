package repository

import (
	"context"
	"testing"
	"thywilluche/pkg/testutil"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectWinners_ForeignSubmissionRollsBack(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewGameRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id","user_id" FROM "game_submissions" WHERE \(id IN \(\$1,\$2\) AND game_id = \$3\)`).
		WithArgs("s-1", "s-2", "g-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow("s-1", "u-1"))
	mock.ExpectRollback()

	_, err := repo.SelectWinners(context.Background(), "g-1", []string{"s-1", "s-2"}, nil, time.Now())
	assert.ErrorIs(t, err, ErrForeignSubmission)
}

func TestSelectWinners_AwardsBadgeIgnoringDuplicates(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	repo := NewGameRepository(db)
	badge := "b-1"

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "id","user_id" FROM "game_submissions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow("s-1", "u-1").AddRow("s-2", "u-2"))
	mock.ExpectExec(`UPDATE "game_submissions" SET "is_winner"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO "user_badges" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	winners, err := repo.SelectWinners(context.Background(), "g-1", []string{"s-1", "s-2"}, &badge, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []string{"u-1", "u-2"}, winners)
}
