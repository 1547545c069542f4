package repository

import (
	"context"
	"time"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

// Repository is the storage contract of the board service. Lookups that take
// no "including deleted" hint only see live rows and report model.ErrNotFound
// otherwise.
type Repository interface {
	CreateBoard(p context.Context, authorID int64, title string, content string) (int64, error)
	GetBoard(p context.Context, id int64) (*model.Board, error)
	GetOwnedBoard(p context.Context, id int64, authorID int64) (*model.Board, error)
	GetBoardsByAuthor(p context.Context, authorID int64) ([]model.Board, error)
	// GetBoardsOfDeletedMembers lists live boards whose author is marked deleted.
	GetBoardsOfDeletedMembers(p context.Context) ([]model.Board, error)
	UpdateBoard(p context.Context, id int64, title string, content string) error
	SetBoardViewCount(p context.Context, id int64, viewCount int64) error
	MarkBoardDeleted(p context.Context, id int64, at time.Time) error

	CreateComment(p context.Context, authorID int64, boardID int64, parentID *int64, content string) (int64, error)
	GetComment(p context.Context, id int64) (*model.Comment, error)
	GetOwnedComment(p context.Context, id int64, authorID int64) (*model.Comment, error)
	GetBoardComment(p context.Context, id int64, boardID int64) (*model.Comment, error)
	UpdateComment(p context.Context, id int64, content string) error
	MarkCommentDeleted(p context.Context, id int64, at time.Time) error

	// GetRootComments and GetChildComments include deleted rows so that an
	// interrupted cascade can be walked again.
	GetRootComments(p context.Context, boardID int64) ([]model.Comment, error)
	GetChildComments(p context.Context, parentID int64) ([]model.Comment, error)

	GetMember(p context.Context, id int64) (*model.Member, error)
	GetProfiles(p context.Context, memberID int64) ([]model.Profile, error)

	BoardPage(p context.Context, q model.BoardPageQuery) (model.Page[model.BoardRow], error)
	CommentPage(p context.Context, q model.CommentPageQuery) (model.Page[model.CommentRow], error)
}
