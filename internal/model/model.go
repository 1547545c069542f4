package model

import "time"

type Board struct {
	ID        int64      `json:"id"`
	AuthorID  int64      `json:"author_id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	ViewCount int64      `json:"view_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (b *Board) Deleted() bool {
	return b.DeletedAt != nil
}

type Comment struct {
	ID        int64      `json:"id"`
	AuthorID  int64      `json:"author_id"`
	BoardID   int64      `json:"board_id"`
	ParentID  *int64     `json:"parent_comment_id,omitempty"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (c *Comment) Deleted() bool {
	return c.DeletedAt != nil
}

// Member is the read-only projection of an identity-service account.
type Member struct {
	ID        int64      `json:"id"`
	Nickname  string     `json:"nickname"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

type Profile struct {
	ID        int64      `json:"id"`
	MemberID  int64      `json:"member_id"`
	ImageURL  string     `json:"image_url"`
	Priority  int        `json:"priority"`
	CreatedAt time.Time  `json:"created_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// BoardDetail is a single live board with its author's display profile.
type BoardDetail struct {
	Board
	AuthorNickname string
	AuthorImageURL *string
}
