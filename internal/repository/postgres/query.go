package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

// statement is a composed query together with its positional arguments.
type statement struct {
	sql  string
	args []any
}

// predicate accumulates AND-ed conditions with numbered placeholders so a
// page query and its count query can share one filter.
type predicate struct {
	conds []string
	args  []any
}

func (pd *predicate) arg(v any) string {
	pd.args = append(pd.args, v)
	return fmt.Sprintf("$%d", len(pd.args))
}

func (pd *predicate) and(cond string) {
	pd.conds = append(pd.conds, cond)
}

func (pd *predicate) where() string {
	if len(pd.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(pd.conds, " AND ")
}

// paged appends LIMIT/OFFSET placeholders after the shared arguments.
func (pd *predicate) paged(query string, pg model.Pagination) statement {
	args := append(append([]any{}, pd.args...), pg.Limit(), pg.Offset())
	n := len(pd.args)
	return statement{
		sql:  fmt.Sprintf("%s LIMIT $%d OFFSET $%d", query, n+1, n+2),
		args: args,
	}
}

func (pd *predicate) counted(query string) statement {
	return statement{sql: query, args: append([]any{}, pd.args...)}
}

var boardSortColumns = map[model.SortKey]string{
	model.SortCreateDate:     "b.created_at",
	model.SortUpdateDate:     "b.updated_at",
	model.SortTitle:          "b.title",
	model.SortViewCount:      "b.view_count",
	model.SortAuthorNickname: "m.nickname",
}

const boardPageFrom = " FROM forum.boards b" +
	" INNER JOIN forum.members m ON m.id = b.author_id AND m.deleted_at IS NULL"

// boardPageStatements builds the board listing query and its count query.
func boardPageStatements(q model.BoardPageQuery) (page statement, count statement, err error) {
	if err := q.Validate(); err != nil {
		return statement{}, statement{}, err
	}
	column, ok := boardSortColumns[q.Sort]
	if !ok {
		return statement{}, statement{}, fmt.Errorf("sort key %q: %w", q.Sort, model.ErrInvalidInput)
	}
	direction := "ASC"
	if q.Direction == model.Desc {
		direction = "DESC"
	}

	pd := &predicate{}
	pd.and("b.deleted_at IS NULL")
	if searchType, keyword, ok := q.Search(); ok {
		pattern := pd.arg(likePattern(keyword))
		switch searchType {
		case model.SearchByAuthor:
			pd.and("m.nickname ILIKE " + pattern)
		case model.SearchByTitle:
			pd.and("b.title ILIKE " + pattern)
		case model.SearchByTitleOrContent:
			pd.and("(b.title ILIKE " + pattern + " OR b.content ILIKE " + pattern + ")")
		default:
			return statement{}, statement{}, fmt.Errorf("search type %q: %w", searchType, model.ErrInvalidInput)
		}
	}

	selectSQL := "SELECT b.id, b.title, b.created_at, b.updated_at, b.view_count, b.author_id, m.nickname" +
		boardPageFrom + pd.where() +
		fmt.Sprintf(" ORDER BY %s %s, b.id %s", column, direction, direction)

	return pd.paged(selectSQL, q.Pagination), pd.counted("SELECT COUNT(*)" + boardPageFrom + pd.where()), nil
}

// commentPageStatements builds the comment listing query and its count query.
// Top-level comments are listed newest first and replies oldest first.
func commentPageStatements(q model.CommentPageQuery) (page statement, count statement, err error) {
	if err := q.Validate(); err != nil {
		return statement{}, statement{}, err
	}

	from := " FROM forum.comments c" +
		" INNER JOIN forum.members m ON m.id = c.author_id AND m.deleted_at IS NULL"
	order := " ORDER BY c.created_at DESC, c.id DESC"

	pd := &predicate{}
	pd.and("c.deleted_at IS NULL")
	pd.and("c.board_id = " + pd.arg(q.BoardID))
	if q.ParentID == nil {
		pd.and("c.parent_comment_id IS NULL")
	} else {
		from += " INNER JOIN forum.comments pc ON pc.id = c.parent_comment_id AND pc.deleted_at IS NULL"
		pd.and("c.parent_comment_id = " + pd.arg(*q.ParentID))
		order = " ORDER BY c.created_at ASC, c.id ASC"
	}

	selectSQL := "SELECT c.id, c.content, c.created_at, c.updated_at, c.author_id, m.nickname" +
		from + pd.where() + order

	return pd.paged(selectSQL, q.Pagination), pd.counted("SELECT COUNT(*)" + from + pd.where()), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps keyword for a substring match with LIKE metacharacters
// taken literally.
func likePattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}

func (pr *postgresRepository) BoardPage(p context.Context, q model.BoardPageQuery) (model.Page[model.BoardRow], error) {
	page, count, err := boardPageStatements(q)
	if err != nil {
		return model.Page[model.BoardRow]{}, err
	}

	rows, err := pr.db.QueryContext(p, page.sql, page.args...)
	if err != nil {
		return model.Page[model.BoardRow]{}, err
	}
	defer rows.Close()

	items := []model.BoardRow{}
	for rows.Next() {
		row := model.BoardRow{}
		err = rows.Scan(&row.BoardID, &row.Title, &row.CreatedAt, &row.UpdatedAt, &row.ViewCount, &row.AuthorID, &row.AuthorNickname)
		if err != nil {
			return model.Page[model.BoardRow]{}, err
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.BoardRow]{}, err
	}

	var total int64
	if err := pr.db.QueryRowContext(p, count.sql, count.args...).Scan(&total); err != nil {
		return model.Page[model.BoardRow]{}, err
	}
	return model.Page[model.BoardRow]{TotalElements: total, Items: items}, nil
}

func (pr *postgresRepository) CommentPage(p context.Context, q model.CommentPageQuery) (model.Page[model.CommentRow], error) {
	page, count, err := commentPageStatements(q)
	if err != nil {
		return model.Page[model.CommentRow]{}, err
	}

	rows, err := pr.db.QueryContext(p, page.sql, page.args...)
	if err != nil {
		return model.Page[model.CommentRow]{}, err
	}
	defer rows.Close()

	items := []model.CommentRow{}
	for rows.Next() {
		row := model.CommentRow{}
		err = rows.Scan(&row.CommentID, &row.Content, &row.CreatedAt, &row.UpdatedAt, &row.AuthorID, &row.AuthorNickname)
		if err != nil {
			return model.Page[model.CommentRow]{}, err
		}
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.CommentRow]{}, err
	}

	var total int64
	if err := pr.db.QueryRowContext(p, count.sql, count.args...).Scan(&total); err != nil {
		return model.Page[model.CommentRow]{}, err
	}
	return model.Page[model.CommentRow]{TotalElements: total, Items: items}, nil
}
