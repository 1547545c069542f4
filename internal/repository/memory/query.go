package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

func (mr *memoryRepository) BoardPage(p context.Context, q model.BoardPageQuery) (model.Page[model.BoardRow], error) {
	if err := q.Validate(); err != nil {
		return model.Page[model.BoardRow]{}, err
	}

	mr.mu.RLock()
	defer mr.mu.RUnlock()

	rows := []model.BoardRow{}
	for _, b := range mr.boards {
		author, ok := mr.liveMember(b.AuthorID)
		if b.Deleted() || !ok {
			continue
		}
		if !matchesSearch(q, b, author) {
			continue
		}
		rows = append(rows, model.BoardRow{
			BoardID:        b.ID,
			Title:          b.Title,
			CreatedAt:      b.CreatedAt,
			UpdatedAt:      b.UpdatedAt,
			ViewCount:      b.ViewCount,
			AuthorID:       b.AuthorID,
			AuthorNickname: author.Nickname,
		})
	}

	slices.SortFunc(rows, func(a, b model.BoardRow) int {
		c := compareBoardRows(q.Sort, a, b)
		if c == 0 {
			c = cmp.Compare(a.BoardID, b.BoardID)
		}
		if q.Direction == model.Desc {
			return -c
		}
		return c
	})

	return model.Page[model.BoardRow]{
		TotalElements: int64(len(rows)),
		Items:         window(rows, q.Pagination),
	}, nil
}

func (mr *memoryRepository) CommentPage(p context.Context, q model.CommentPageQuery) (model.Page[model.CommentRow], error) {
	if err := q.Validate(); err != nil {
		return model.Page[model.CommentRow]{}, err
	}

	mr.mu.RLock()
	defer mr.mu.RUnlock()

	if q.ParentID != nil {
		parent, ok := mr.comments[*q.ParentID]
		if !ok || parent.Deleted() {
			return model.Page[model.CommentRow]{Items: []model.CommentRow{}}, nil
		}
	}

	rows := []model.CommentRow{}
	for _, c := range mr.comments {
		if c.Deleted() || c.BoardID != q.BoardID || !sameParent(c.ParentID, q.ParentID) {
			continue
		}
		author, ok := mr.liveMember(c.AuthorID)
		if !ok {
			continue
		}
		rows = append(rows, model.CommentRow{
			CommentID:      c.ID,
			Content:        c.Content,
			CreatedAt:      c.CreatedAt,
			UpdatedAt:      c.UpdatedAt,
			AuthorID:       c.AuthorID,
			AuthorNickname: author.Nickname,
		})
	}

	// top-level comments newest first, replies oldest first
	newestFirst := q.ParentID == nil
	slices.SortFunc(rows, func(a, b model.CommentRow) int {
		c := a.CreatedAt.Compare(b.CreatedAt)
		if c == 0 {
			c = cmp.Compare(a.CommentID, b.CommentID)
		}
		if newestFirst {
			return -c
		}
		return c
	})

	return model.Page[model.CommentRow]{
		TotalElements: int64(len(rows)),
		Items:         window(rows, q.Pagination),
	}, nil
}

func (mr *memoryRepository) liveMember(id int64) (*model.Member, bool) {
	m, ok := mr.members[id]
	if !ok || m.DeletedAt != nil {
		return nil, false
	}
	return m, true
}

func matchesSearch(q model.BoardPageQuery, b *model.Board, author *model.Member) bool {
	searchType, keyword, ok := q.Search()
	if !ok {
		return true
	}
	switch searchType {
	case model.SearchByAuthor:
		return containsFold(author.Nickname, keyword)
	case model.SearchByTitle:
		return containsFold(b.Title, keyword)
	case model.SearchByTitleOrContent:
		return containsFold(b.Title, keyword) || containsFold(b.Content, keyword)
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func compareBoardRows(key model.SortKey, a, b model.BoardRow) int {
	switch key {
	case model.SortUpdateDate:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case model.SortTitle:
		return cmp.Compare(a.Title, b.Title)
	case model.SortViewCount:
		return cmp.Compare(a.ViewCount, b.ViewCount)
	case model.SortAuthorNickname:
		return cmp.Compare(a.AuthorNickname, b.AuthorNickname)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func window[T any](rows []T, pg model.Pagination) []T {
	start := pg.Offset()
	if start >= len(rows) {
		return []T{}
	}
	end := min(start+pg.Limit(), len(rows))
	return rows[start:end]
}

func sortByID[T any](items []T, id func(T) int64) {
	slices.SortFunc(items, func(a, b T) int {
		return cmp.Compare(id(a), id(b))
	})
}

func sortProfiles(profiles []model.Profile) {
	slices.SortFunc(profiles, func(a, b model.Profile) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
