package postgres

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

func setupMock(t *testing.T) (*postgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return &postgresRepository{db: db}, mock
}

func ptr[T any](v T) *T {
	return &v
}

func TestBoardPageStatements_Default(t *testing.T) {
	page, count, err := boardPageStatements(model.BoardPageQuery{
		Pagination: model.Pagination{Page: 1, PageSize: 10},
		Sort:       model.SortCreateDate,
		Direction:  model.Desc,
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT b.id, b.title, b.created_at, b.updated_at, b.view_count, b.author_id, m.nickname"+
		" FROM forum.boards b INNER JOIN forum.members m ON m.id = b.author_id AND m.deleted_at IS NULL"+
		" WHERE b.deleted_at IS NULL ORDER BY b.created_at DESC, b.id DESC LIMIT $1 OFFSET $2", page.sql)
	assert.Equal(t, []any{10, 0}, page.args)

	assert.Equal(t, "SELECT COUNT(*)"+
		" FROM forum.boards b INNER JOIN forum.members m ON m.id = b.author_id AND m.deleted_at IS NULL"+
		" WHERE b.deleted_at IS NULL", count.sql)
	assert.Empty(t, count.args)
}

func TestBoardPageStatements_Search(t *testing.T) {
	tests := []struct {
		name       string
		searchType model.SearchType
		wantCond   string
	}{
		{"author", model.SearchByAuthor, "m.nickname ILIKE $1"},
		{"title", model.SearchByTitle, "b.title ILIKE $1"},
		{"title or content", model.SearchByTitleOrContent, "(b.title ILIKE $1 OR b.content ILIKE $1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, count, err := boardPageStatements(model.BoardPageQuery{
				Pagination: model.Pagination{Page: 3, PageSize: 5},
				Sort:       model.SortTitle,
				Direction:  model.Asc,
				SearchType: ptr(tt.searchType),
				Keyword:    ptr("go"),
			})
			require.NoError(t, err)

			assert.Contains(t, page.sql, "WHERE b.deleted_at IS NULL AND "+tt.wantCond)
			assert.Contains(t, page.sql, "ORDER BY b.title ASC, b.id ASC LIMIT $2 OFFSET $3")
			assert.Equal(t, []any{"%go%", 5, 10}, page.args)

			assert.Contains(t, count.sql, tt.wantCond)
			assert.Equal(t, []any{"%go%"}, count.args)
		})
	}
}

func TestBoardPageStatements_KeywordWithoutType(t *testing.T) {
	page, _, err := boardPageStatements(model.BoardPageQuery{
		Pagination: model.Pagination{Page: 1, PageSize: 10},
		Sort:       model.SortViewCount,
		Direction:  model.Desc,
		Keyword:    ptr("ignored"),
	})
	require.NoError(t, err)
	assert.NotContains(t, page.sql, "ILIKE")
	assert.Contains(t, page.sql, "ORDER BY b.view_count DESC")
}

func TestBoardPageStatements_Invalid(t *testing.T) {
	_, _, err := boardPageStatements(model.BoardPageQuery{
		Pagination: model.Pagination{Page: 0, PageSize: 10},
		Sort:       model.SortCreateDate,
		Direction:  model.Desc,
	})
	assert.ErrorIs(t, err, model.ErrInvalidPage)

	_, _, err = boardPageStatements(model.BoardPageQuery{
		Pagination: model.Pagination{Page: 1, PageSize: 10},
		Sort:       model.SortKey("id; DROP TABLE forum.boards"),
		Direction:  model.Desc,
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, _, err = boardPageStatements(model.BoardPageQuery{
		Pagination: model.Pagination{Page: math.MaxInt, PageSize: 2},
		Sort:       model.SortCreateDate,
		Direction:  model.Desc,
	})
	assert.ErrorIs(t, err, model.ErrInvalidPage)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off\\%`, likePattern(`50%_off\`))
}

func TestCommentPageStatements(t *testing.T) {
	page, count, err := commentPageStatements(model.CommentPageQuery{
		Pagination: model.Pagination{Page: 2, PageSize: 5},
		BoardID:    1,
	})
	require.NoError(t, err)
	assert.Contains(t, page.sql, "c.parent_comment_id IS NULL")
	assert.Contains(t, page.sql, "ORDER BY c.created_at DESC, c.id DESC LIMIT $2 OFFSET $3")
	assert.Equal(t, []any{int64(1), 5, 5}, page.args)
	assert.Equal(t, []any{int64(1)}, count.args)

	page, count, err = commentPageStatements(model.CommentPageQuery{
		Pagination: model.Pagination{Page: 1, PageSize: 5},
		BoardID:    1,
		ParentID:   ptr(int64(10)),
	})
	require.NoError(t, err)
	assert.Contains(t, page.sql, "INNER JOIN forum.comments pc ON pc.id = c.parent_comment_id AND pc.deleted_at IS NULL")
	assert.Contains(t, page.sql, "c.parent_comment_id = $2")
	assert.Contains(t, page.sql, "ORDER BY c.created_at ASC, c.id ASC LIMIT $3 OFFSET $4")
	assert.Contains(t, count.sql, "INNER JOIN forum.comments pc")
	assert.Equal(t, []any{int64(1), int64(10)}, count.args)
}

func TestBoardPage(t *testing.T) {
	repo, mock := setupMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT b\.id, (.+) FROM forum\.boards b (.+) LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "created_at", "updated_at", "view_count", "author_id", "nickname"}).
			AddRow(2, "second", now, now, 4, 7, "kim").
			AddRow(1, "first", now, now, 0, 7, "kim"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM forum\.boards b`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	got, err := repo.BoardPage(context.Background(), model.BoardPageQuery{
		Pagination: model.Pagination{Page: 1, PageSize: 10},
		Sort:       model.SortCreateDate,
		Direction:  model.Desc,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), got.TotalElements)
	require.Len(t, got.Items, 2)
	assert.Equal(t, int64(2), got.Items[0].BoardID)
	assert.Equal(t, int64(4), got.Items[0].ViewCount)
	assert.Equal(t, "kim", got.Items[1].AuthorNickname)
}

func TestCommentPage_Empty(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`SELECT c\.id, (.+) FROM forum\.comments c`).
		WithArgs(int64(1), int64(10), 5, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "content", "created_at", "updated_at", "author_id", "nickname"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM forum\.comments c`).
		WithArgs(int64(1), int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	got, err := repo.CommentPage(context.Background(), model.CommentPageQuery{
		Pagination: model.Pagination{Page: 1, PageSize: 5},
		BoardID:    1,
		ParentID:   ptr(int64(10)),
	})
	require.NoError(t, err)
	assert.Zero(t, got.TotalElements)
	assert.NotNil(t, got.Items)
	assert.Empty(t, got.Items)
}

func TestGetBoard(t *testing.T) {
	repo, mock := setupMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT "+boardColumns+" FROM forum.boards WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "author_id", "title", "content", "view_count", "created_at", "updated_at", "deleted_at"}).
			AddRow(1, 7, "hello", "world", 3, now, now, nil))

	board, err := repo.GetBoard(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "hello", board.Title)
	assert.Equal(t, int64(3), board.ViewCount)
	assert.False(t, board.Deleted())
}

func TestGetBoardsOfDeletedMembers(t *testing.T) {
	repo, mock := setupMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + boardColumns + " FROM forum.boards" +
		" WHERE deleted_at IS NULL AND author_id IN (SELECT id FROM forum.members WHERE deleted_at IS NOT NULL)" +
		" ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "author_id", "title", "content", "view_count", "created_at", "updated_at", "deleted_at"}).
			AddRow(4, 7, "left behind", "c", 0, now, now, nil).
			AddRow(9, 8, "also", "c", 2, now, now, nil))

	boards, err := repo.GetBoardsOfDeletedMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Equal(t, int64(4), boards[0].ID)
	assert.Equal(t, int64(8), boards[1].AuthorID)
}

func TestGetBoard_NotFound(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`SELECT (.+) FROM forum\.boards WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBoard(context.Background(), 9)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCreateBoard_UnknownMember(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectQuery(`INSERT INTO forum\.boards`).
		WithArgs(int64(42), "title", "content").
		WillReturnError(&pq.Error{Code: foreignKeyViolation, Constraint: "boards_author_id_fkey"})

	_, err := repo.CreateBoard(context.Background(), 42, "title", "content")
	assert.ErrorIs(t, err, model.ErrUnknownMember)
}

func TestUpdateBoard_NoRows(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(`UPDATE forum\.boards SET title = \$2, content = \$3`).
		WithArgs(int64(1), "t", "c").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateBoard(context.Background(), 1, "t", "c")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestSetBoardViewCount(t *testing.T) {
	repo, mock := setupMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE forum.boards SET view_count = $2 WHERE id = $1 AND deleted_at IS NULL")).
		WithArgs(int64(1), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetBoardViewCount(context.Background(), 1, 11))
}

func TestMarkCommentDeleted(t *testing.T) {
	repo, mock := setupMock(t)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE forum\.comments SET deleted_at = \$2 WHERE id = \$1 AND deleted_at IS NULL`).
		WithArgs(int64(10), at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkCommentDeleted(context.Background(), 10, at))
}

func TestGetChildComments_IncludesDeleted(t *testing.T) {
	repo, mock := setupMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + commentColumns + " FROM forum.comments WHERE parent_comment_id = $1 ORDER BY id")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "author_id", "board_id", "parent_comment_id", "content", "created_at", "updated_at", "deleted_at"}).
			AddRow(11, 7, 1, 10, "reply", now, now, now).
			AddRow(12, 7, 1, 10, "reply", now, now, nil))

	children, err := repo.GetChildComments(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.True(t, children[0].Deleted())
	assert.Equal(t, int64(10), *children[1].ParentID)
}

func TestGetProfiles(t *testing.T) {
	repo, mock := setupMock(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM forum\.member_profiles (.+) ORDER BY priority DESC, created_at DESC`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "member_id", "image_url", "priority", "created_at"}).
			AddRow(3, 7, "avatars/a.png", 2, now))

	profiles, err := repo.GetProfiles(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "avatars/a.png", profiles[0].ImageURL)
}

func TestLocker(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	locker := NewLocker(db)

	mock.ExpectQuery(`INSERT INTO forum\.resource_locks`).
		WithArgs("board:1", sqlmock.AnyArg(), int64(1000)).
		WillReturnError(sql.ErrNoRows)

	token, ok, err := locker.Acquire(context.Background(), "board:1", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, token)

	mock.ExpectQuery(`INSERT INTO forum\.resource_locks`).
		WithArgs("board:1", sqlmock.AnyArg(), int64(1000)).
		WillReturnError(errors.New("connection reset"))

	_, _, err = locker.Acquire(context.Background(), "board:1", time.Second)
	assert.Error(t, err)

	mock.ExpectExec(`DELETE FROM forum\.resource_locks WHERE lock_key = \$1 AND token = \$2`).
		WithArgs("board:1", "tok").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, locker.Release(context.Background(), "board:1", "tok"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
