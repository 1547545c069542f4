package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/internal/model"
	"github.com/gfdmit/web-forum/board-service/internal/repository"
)

// CascadeDeleter soft-deletes a board or comment together with every reply
// below it. Descendants are marked before their ancestors and the root goes
// last, so a cascade that fails midway can be resumed by running it again.
type CascadeDeleter struct {
	repo repository.Repository
	log  logrus.FieldLogger
	now  func() time.Time
}

func NewCascadeDeleter(repo repository.Repository, log logrus.FieldLogger) *CascadeDeleter {
	return &CascadeDeleter{
		repo: repo,
		log:  log.WithField("source", "cascade"),
		now:  time.Now,
	}
}

type frame struct {
	comment  model.Comment
	expanded bool
}

func (cd *CascadeDeleter) DeleteBoardCascade(p context.Context, board *model.Board) error {
	at := cd.now()

	roots, err := cd.repo.GetRootComments(p, board.ID)
	if err != nil {
		return fmt.Errorf("cascade.DeleteBoard %d: %w", board.ID, err)
	}

	visited := map[int64]struct{}{}
	marked := 0
	for _, root := range roots {
		if _, seen := visited[root.ID]; seen {
			continue
		}
		visited[root.ID] = struct{}{}
		n, err := cd.walk(p, root, at, visited)
		marked += n
		if err != nil {
			return fmt.Errorf("cascade.DeleteBoard %d: %w", board.ID, err)
		}
	}

	if !board.Deleted() {
		if err := cd.repo.MarkBoardDeleted(p, board.ID, at); err != nil {
			return fmt.Errorf("cascade.DeleteBoard %d: %w", board.ID, err)
		}
	}

	cd.log.WithFields(logrus.Fields{"board_id": board.ID, "comments": marked}).Debug("board deleted")
	return nil
}

func (cd *CascadeDeleter) DeleteCommentCascade(p context.Context, comment *model.Comment) error {
	visited := map[int64]struct{}{comment.ID: {}}
	n, err := cd.walk(p, *comment, cd.now(), visited)
	if err != nil {
		return fmt.Errorf("cascade.DeleteComment %d: %w", comment.ID, err)
	}

	cd.log.WithFields(logrus.Fields{"comment_id": comment.ID, "comments": n}).Debug("comment deleted")
	return nil
}

// walk marks root and its descendants in post-order and reports how many
// comments it marked. Comments already in visited are not entered again.
func (cd *CascadeDeleter) walk(p context.Context, root model.Comment, at time.Time, visited map[int64]struct{}) (int, error) {
	marked := 0
	stack := []frame{{comment: root}}
	for len(stack) > 0 {
		if err := p.Err(); err != nil {
			return marked, err
		}

		top := len(stack) - 1
		if !stack[top].expanded {
			stack[top].expanded = true
			children, err := cd.repo.GetChildComments(p, stack[top].comment.ID)
			if err != nil {
				return marked, err
			}
			for _, child := range children {
				if _, seen := visited[child.ID]; seen {
					continue
				}
				visited[child.ID] = struct{}{}
				stack = append(stack, frame{comment: child})
			}
			continue
		}

		current := stack[top].comment
		stack = stack[:top]
		if current.Deleted() {
			continue
		}
		if err := cd.repo.MarkCommentDeleted(p, current.ID, at); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}
