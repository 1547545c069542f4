package model

import (
	"fmt"
	"math"
	"time"
)

type SortKey string

const (
	SortCreateDate     SortKey = "CREATE_DATE"
	SortUpdateDate     SortKey = "UPDATE_DATE"
	SortTitle          SortKey = "TITLE"
	SortViewCount      SortKey = "VIEW_COUNT"
	SortAuthorNickname SortKey = "WRITER_USER_NICKNAME"
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

type SearchType string

const (
	SearchByAuthor         SearchType = "WRITER"
	SearchByTitle          SearchType = "TITLE"
	SearchByTitleOrContent SearchType = "TITLE_OR_CONTENT"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(s); k {
	case SortCreateDate, SortUpdateDate, SortTitle, SortViewCount, SortAuthorNickname:
		return k, nil
	}
	return "", fmt.Errorf("sort key %q: %w", s, ErrInvalidInput)
}

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Asc, Desc:
		return d, nil
	}
	return "", fmt.Errorf("sort direction %q: %w", s, ErrInvalidInput)
}

func ParseSearchType(s string) (SearchType, error) {
	switch t := SearchType(s); t {
	case SearchByAuthor, SearchByTitle, SearchByTitleOrContent:
		return t, nil
	}
	return "", fmt.Errorf("search type %q: %w", s, ErrInvalidInput)
}

type Pagination struct {
	Page     int
	PageSize int
}

func (p Pagination) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("page %d: %w", p.Page, ErrInvalidPage)
	}
	if p.PageSize < 1 {
		return fmt.Errorf("page size %d: %w", p.PageSize, ErrInvalidPage)
	}
	// the end of the window, Page*PageSize, must fit in an int
	if p.Page > math.MaxInt/p.PageSize {
		return fmt.Errorf("page %d of size %d: %w", p.Page, p.PageSize, ErrInvalidPage)
	}
	return nil
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func (p Pagination) Limit() int {
	return p.PageSize
}

type BoardPageQuery struct {
	Pagination
	Sort      SortKey
	Direction Direction
	// SearchType is ignored unless Keyword is set.
	SearchType *SearchType
	Keyword    *string
}

// Search returns the effective search type and keyword, or false when no
// search predicate applies.
func (q BoardPageQuery) Search() (SearchType, string, bool) {
	if q.Keyword == nil || q.SearchType == nil {
		return "", "", false
	}
	return *q.SearchType, *q.Keyword, true
}

type CommentPageQuery struct {
	Pagination
	BoardID  int64
	ParentID *int64
}

type BoardRow struct {
	BoardID        int64
	Title          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ViewCount      int64
	AuthorID       int64
	AuthorNickname string
	AuthorImageURL *string
}

type CommentRow struct {
	CommentID      int64
	Content        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	AuthorID       int64
	AuthorNickname string
	AuthorImageURL *string
}

type Page[T any] struct {
	TotalElements int64
	Items         []T
}
