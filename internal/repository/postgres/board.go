package postgres

import (
	"context"
	"time"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

const boardColumns = "id, author_id, title, content, view_count, created_at, updated_at, deleted_at"

func (pr *postgresRepository) CreateBoard(p context.Context, authorID int64, title string, content string) (int64, error) {
	var boardID int64
	err := pr.db.QueryRowContext(p,
		"INSERT INTO forum.boards (author_id, title, content) VALUES ($1, $2, $3) RETURNING id",
		authorID, title, content).Scan(&boardID)
	if err != nil {
		return 0, unknownMember(err)
	}
	return boardID, nil
}

func (pr *postgresRepository) GetBoard(p context.Context, id int64) (*model.Board, error) {
	row := pr.db.QueryRowContext(p,
		"SELECT "+boardColumns+" FROM forum.boards WHERE id = $1 AND deleted_at IS NULL", id)
	board, err := scanBoard(row)
	if err != nil {
		return nil, notFound(err)
	}
	return board, nil
}

func (pr *postgresRepository) GetOwnedBoard(p context.Context, id int64, authorID int64) (*model.Board, error) {
	row := pr.db.QueryRowContext(p,
		"SELECT "+boardColumns+" FROM forum.boards WHERE id = $1 AND author_id = $2 AND deleted_at IS NULL", id, authorID)
	board, err := scanBoard(row)
	if err != nil {
		return nil, notFound(err)
	}
	return board, nil
}

func (pr *postgresRepository) GetBoardsByAuthor(p context.Context, authorID int64) ([]model.Board, error) {
	return pr.queryBoards(p,
		"SELECT "+boardColumns+" FROM forum.boards WHERE author_id = $1 AND deleted_at IS NULL ORDER BY id", authorID)
}

// GetBoardsOfDeletedMembers lists live boards whose author row is marked
// deleted in the replicated members table.
func (pr *postgresRepository) GetBoardsOfDeletedMembers(p context.Context) ([]model.Board, error) {
	return pr.queryBoards(p, "SELECT "+boardColumns+" FROM forum.boards"+
		" WHERE deleted_at IS NULL AND author_id IN (SELECT id FROM forum.members WHERE deleted_at IS NOT NULL)"+
		" ORDER BY id")
}

func (pr *postgresRepository) queryBoards(p context.Context, query string, args ...any) ([]model.Board, error) {
	rows, err := pr.db.QueryContext(p, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	boards := []model.Board{}
	for rows.Next() {
		board, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, *board)
	}
	return boards, rows.Err()
}

func (pr *postgresRepository) UpdateBoard(p context.Context, id int64, title string, content string) error {
	return pr.execOne(p,
		"UPDATE forum.boards SET title = $2, content = $3, updated_at = now() WHERE id = $1 AND deleted_at IS NULL",
		id, title, content)
}

func (pr *postgresRepository) SetBoardViewCount(p context.Context, id int64, viewCount int64) error {
	return pr.execOne(p,
		"UPDATE forum.boards SET view_count = $2 WHERE id = $1 AND deleted_at IS NULL",
		id, viewCount)
}

// MarkBoardDeleted leaves an already deleted board untouched.
func (pr *postgresRepository) MarkBoardDeleted(p context.Context, id int64, at time.Time) error {
	_, err := pr.db.ExecContext(p,
		"UPDATE forum.boards SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL", id, at)
	return err
}

// execOne runs a single-row update and reports model.ErrNotFound when no live
// row matched.
func (pr *postgresRepository) execOne(p context.Context, query string, args ...any) error {
	res, err := pr.db.ExecContext(p, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
