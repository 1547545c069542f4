package postgres

import (
	"context"
	"time"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

const commentColumns = "id, author_id, board_id, parent_comment_id, content, created_at, updated_at, deleted_at"

func (pr *postgresRepository) CreateComment(p context.Context, authorID int64, boardID int64, parentID *int64, content string) (int64, error) {
	var commentID int64
	err := pr.db.QueryRowContext(p,
		"INSERT INTO forum.comments (author_id, board_id, parent_comment_id, content) VALUES ($1, $2, $3, $4) RETURNING id",
		authorID, boardID, parentID, content).Scan(&commentID)
	if err != nil {
		return 0, unknownMember(err)
	}
	return commentID, nil
}

func (pr *postgresRepository) GetComment(p context.Context, id int64) (*model.Comment, error) {
	return pr.getComment(p,
		"SELECT "+commentColumns+" FROM forum.comments WHERE id = $1 AND deleted_at IS NULL", id)
}

func (pr *postgresRepository) GetOwnedComment(p context.Context, id int64, authorID int64) (*model.Comment, error) {
	return pr.getComment(p,
		"SELECT "+commentColumns+" FROM forum.comments WHERE id = $1 AND author_id = $2 AND deleted_at IS NULL", id, authorID)
}

func (pr *postgresRepository) GetBoardComment(p context.Context, id int64, boardID int64) (*model.Comment, error) {
	return pr.getComment(p,
		"SELECT "+commentColumns+" FROM forum.comments WHERE id = $1 AND board_id = $2 AND deleted_at IS NULL", id, boardID)
}

func (pr *postgresRepository) getComment(p context.Context, query string, args ...any) (*model.Comment, error) {
	comment, err := scanComment(pr.db.QueryRowContext(p, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return comment, nil
}

func (pr *postgresRepository) UpdateComment(p context.Context, id int64, content string) error {
	return pr.execOne(p,
		"UPDATE forum.comments SET content = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL",
		id, content)
}

// MarkCommentDeleted leaves an already deleted comment untouched.
func (pr *postgresRepository) MarkCommentDeleted(p context.Context, id int64, at time.Time) error {
	_, err := pr.db.ExecContext(p,
		"UPDATE forum.comments SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL", id, at)
	return err
}

func (pr *postgresRepository) GetRootComments(p context.Context, boardID int64) ([]model.Comment, error) {
	return pr.listComments(p,
		"SELECT "+commentColumns+" FROM forum.comments WHERE board_id = $1 AND parent_comment_id IS NULL ORDER BY id", boardID)
}

func (pr *postgresRepository) GetChildComments(p context.Context, parentID int64) ([]model.Comment, error) {
	return pr.listComments(p,
		"SELECT "+commentColumns+" FROM forum.comments WHERE parent_comment_id = $1 ORDER BY id", parentID)
}

func (pr *postgresRepository) listComments(p context.Context, query string, args ...any) ([]model.Comment, error) {
	rows, err := pr.db.QueryContext(p, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, *comment)
	}
	return comments, rows.Err()
}
