package memory

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

func ptr[T any](v T) *T { return &v }

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2024, 5, 2, 15, 14, 49, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newSeeded(t *testing.T) *memoryRepository {
	t.Helper()
	repo := New()
	repo.SetClock(tickingClock())
	repo.PutMember(model.Member{ID: 1, Nickname: "alice"})
	repo.PutMember(model.Member{ID: 2, Nickname: "Bob"})
	return repo
}

func boardQuery(page, size int) model.BoardPageQuery {
	return model.BoardPageQuery{
		Pagination: model.Pagination{Page: page, PageSize: size},
		Sort:       model.SortCreateDate,
		Direction:  model.Asc,
	}
}

func TestBoardPage(t *testing.T) {
	ctx := context.Background()

	t.Run("pages through matching boards", func(t *testing.T) {
		repo := newSeeded(t)
		for i := 0; i < 25; i++ {
			_, err := repo.CreateBoard(ctx, 1, fmt.Sprintf("board %02d", i), "c")
			require.NoError(t, err)
		}

		first, err := repo.BoardPage(ctx, boardQuery(1, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(25), first.TotalElements)
		assert.Len(t, first.Items, 10)
		assert.Equal(t, "board 00", first.Items[0].Title)

		third, err := repo.BoardPage(ctx, boardQuery(3, 10))
		require.NoError(t, err)
		assert.Equal(t, int64(25), third.TotalElements)
		assert.Len(t, third.Items, 5)
		assert.Equal(t, "board 24", third.Items[4].Title)

		beyond, err := repo.BoardPage(ctx, boardQuery(4, 10))
		require.NoError(t, err)
		assert.Empty(t, beyond.Items)
	})

	t.Run("rejects page below one and empty page size", func(t *testing.T) {
		repo := newSeeded(t)

		_, err := repo.BoardPage(ctx, boardQuery(0, 10))
		assert.ErrorIs(t, err, model.ErrInvalidPage)

		_, err = repo.BoardPage(ctx, boardQuery(1, 0))
		assert.ErrorIs(t, err, model.ErrInvalidPage)
	})

	t.Run("rejects a page whose offset overflows", func(t *testing.T) {
		repo := newSeeded(t)
		_, err := repo.CreateBoard(ctx, 1, "only", "c")
		require.NoError(t, err)

		assert.NotPanics(t, func() {
			_, err = repo.BoardPage(ctx, boardQuery(math.MaxInt, 2))
		})
		assert.ErrorIs(t, err, model.ErrInvalidPage)

		assert.NotPanics(t, func() {
			_, err = repo.CommentPage(ctx, model.CommentPageQuery{
				Pagination: model.Pagination{Page: math.MaxInt, PageSize: 2},
				BoardID:    1,
			})
		})
		assert.ErrorIs(t, err, model.ErrInvalidPage)
	})

	t.Run("hides deleted boards and boards of deleted authors", func(t *testing.T) {
		repo := newSeeded(t)
		repo.PutMember(model.Member{ID: 3, Nickname: "gone", DeletedAt: ptr(time.Now())})
		live, _ := repo.CreateBoard(ctx, 1, "live", "c")
		dead, _ := repo.CreateBoard(ctx, 1, "dead", "c")
		_, _ = repo.CreateBoard(ctx, 3, "orphan", "c")
		require.NoError(t, repo.MarkBoardDeleted(ctx, dead, time.Now()))

		page, err := repo.BoardPage(ctx, boardQuery(1, 10))
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, live, page.Items[0].BoardID)
		assert.Equal(t, int64(1), page.TotalElements)
	})

	t.Run("title or content search is case-insensitive on either field", func(t *testing.T) {
		repo := newSeeded(t)
		byTitle, _ := repo.CreateBoard(ctx, 1, "about FOO", "nothing here")
		byContent, _ := repo.CreateBoard(ctx, 1, "plain", "some fOo inside")
		_, _ = repo.CreateBoard(ctx, 1, "plain", "bar")

		q := boardQuery(1, 10)
		q.SearchType = ptr(model.SearchByTitleOrContent)
		q.Keyword = ptr("foo")
		page, err := repo.BoardPage(ctx, q)
		require.NoError(t, err)

		assert.Equal(t, int64(2), page.TotalElements)
		assert.Equal(t, byTitle, page.Items[0].BoardID)
		assert.Equal(t, byContent, page.Items[1].BoardID)

		q.SearchType = ptr(model.SearchByTitle)
		page, err = repo.BoardPage(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.TotalElements)
	})

	t.Run("author search matches nickname", func(t *testing.T) {
		repo := newSeeded(t)
		_, _ = repo.CreateBoard(ctx, 1, "a", "c")
		bobs, _ := repo.CreateBoard(ctx, 2, "b", "c")

		q := boardQuery(1, 10)
		q.SearchType = ptr(model.SearchByAuthor)
		q.Keyword = ptr("BO")
		page, err := repo.BoardPage(ctx, q)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, bobs, page.Items[0].BoardID)
		assert.Equal(t, "Bob", page.Items[0].AuthorNickname)
	})

	t.Run("keyword without search type applies no filter", func(t *testing.T) {
		repo := newSeeded(t)
		_, _ = repo.CreateBoard(ctx, 1, "a", "c")

		q := boardQuery(1, 10)
		q.Keyword = ptr("zzz")
		page, err := repo.BoardPage(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.TotalElements)
	})

	t.Run("sorts by view count descending", func(t *testing.T) {
		repo := newSeeded(t)
		low, _ := repo.CreateBoard(ctx, 1, "low", "c")
		high, _ := repo.CreateBoard(ctx, 1, "high", "c")
		require.NoError(t, repo.SetBoardViewCount(ctx, low, 3))
		require.NoError(t, repo.SetBoardViewCount(ctx, high, 30))

		q := boardQuery(1, 10)
		q.Sort = model.SortViewCount
		q.Direction = model.Desc
		page, err := repo.BoardPage(ctx, q)
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, high, page.Items[0].BoardID)
		assert.Equal(t, int64(30), page.Items[0].ViewCount)
	})
}

func TestCommentPage(t *testing.T) {
	ctx := context.Background()
	repo := newSeeded(t)
	board, _ := repo.CreateBoard(ctx, 1, "T", "C")
	older, _ := repo.CreateComment(ctx, 2, board, nil, "first")
	newer, _ := repo.CreateComment(ctx, 2, board, nil, "second")
	reply1, _ := repo.CreateComment(ctx, 1, board, &older, "re 1")
	reply2, _ := repo.CreateComment(ctx, 1, board, &older, "re 2")

	page1 := model.Pagination{Page: 1, PageSize: 10}

	t.Run("top-level comments newest first", func(t *testing.T) {
		page, err := repo.CommentPage(ctx, model.CommentPageQuery{Pagination: page1, BoardID: board})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, newer, page.Items[0].CommentID)
		assert.Equal(t, older, page.Items[1].CommentID)
		assert.Equal(t, int64(2), page.TotalElements)
	})

	t.Run("replies oldest first", func(t *testing.T) {
		page, err := repo.CommentPage(ctx, model.CommentPageQuery{Pagination: page1, BoardID: board, ParentID: &older})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, reply1, page.Items[0].CommentID)
		assert.Equal(t, reply2, page.Items[1].CommentID)
		assert.Equal(t, "alice", page.Items[0].AuthorNickname)
	})

	t.Run("replies of a deleted parent are not listed", func(t *testing.T) {
		require.NoError(t, repo.MarkCommentDeleted(ctx, newer, time.Now()))
		child, _ := repo.CreateComment(ctx, 1, board, &newer, "late")

		page, err := repo.CommentPage(ctx, model.CommentPageQuery{Pagination: page1, BoardID: board, ParentID: &newer})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Zero(t, page.TotalElements)

		_, err = repo.GetComment(ctx, child)
		assert.NoError(t, err)
	})
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := newSeeded(t)
	id, _ := repo.CreateBoard(ctx, 1, "T", "C")

	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkBoardDeleted(ctx, id, first))
	require.NoError(t, repo.MarkBoardDeleted(ctx, id, first.Add(time.Hour)))

	_, err := repo.GetBoard(ctx, id)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Equal(t, first, *repo.boards[id].DeletedAt, "deletion instant is set once")

	assert.ErrorIs(t, repo.UpdateBoard(ctx, id, "x", "y"), model.ErrNotFound)
	assert.ErrorIs(t, repo.SetBoardViewCount(ctx, id, 5), model.ErrNotFound)
}

func TestGetBoardsOfDeletedMembers(t *testing.T) {
	ctx := context.Background()
	repo := newSeeded(t)
	repo.PutMember(model.Member{ID: 3, Nickname: "gone", DeletedAt: ptr(time.Now())})
	_, _ = repo.CreateBoard(ctx, 1, "live author", "c")
	first, _ := repo.CreateBoard(ctx, 3, "orphan 1", "c")
	second, _ := repo.CreateBoard(ctx, 3, "orphan 2", "c")
	done, _ := repo.CreateBoard(ctx, 3, "already deleted", "c")
	require.NoError(t, repo.MarkBoardDeleted(ctx, done, time.Now()))

	boards, err := repo.GetBoardsOfDeletedMembers(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 2)
	assert.Equal(t, first, boards[0].ID)
	assert.Equal(t, second, boards[1].ID)
}

func TestGetProfiles(t *testing.T) {
	repo := newSeeded(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.PutProfile(model.Profile{ID: 1, MemberID: 1, ImageURL: "low", Priority: 0, CreatedAt: base.Add(time.Hour)})
	repo.PutProfile(model.Profile{ID: 2, MemberID: 1, ImageURL: "old", Priority: 5, CreatedAt: base})
	repo.PutProfile(model.Profile{ID: 3, MemberID: 1, ImageURL: "new", Priority: 5, CreatedAt: base.Add(time.Minute)})
	repo.PutProfile(model.Profile{ID: 4, MemberID: 1, ImageURL: "gone", Priority: 9, CreatedAt: base, DeletedAt: &base})

	profiles, err := repo.GetProfiles(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "new", profiles[0].ImageURL)
	assert.Equal(t, "old", profiles[1].ImageURL)
	assert.Equal(t, "low", profiles[2].ImageURL)
}

func TestSeedMembers(t *testing.T) {
	ctx := context.Background()

	t.Run("stores every entry", func(t *testing.T) {
		repo := New()
		require.NoError(t, repo.SeedMembers([]string{"1:alice", " 2 : Bob "}))

		m, err := repo.GetMember(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, "Bob", m.Nickname)
		_, err = repo.GetMember(ctx, 1)
		assert.NoError(t, err)
	})

	t.Run("empty list seeds nothing", func(t *testing.T) {
		repo := New()
		require.NoError(t, repo.SeedMembers(nil))
		_, err := repo.GetMember(ctx, 1)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("rejects malformed entries without storing any", func(t *testing.T) {
		for _, bad := range []string{"alice", "x:alice", "0:alice", "3:"} {
			repo := New()
			assert.Error(t, repo.SeedMembers([]string{"1:alice", bad}), bad)
			_, err := repo.GetMember(ctx, 1)
			assert.ErrorIs(t, err, model.ErrNotFound, bad)
		}
	})
}
