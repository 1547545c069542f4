package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/internal/lock"
	"github.com/gfdmit/web-forum/board-service/internal/model"
	"github.com/gfdmit/web-forum/board-service/internal/repository"
	"github.com/gfdmit/web-forum/board-service/internal/workerpool"
)

// CounterUpdater applies view count increments in the background, one board
// at a time under a per-board lock.
type CounterUpdater struct {
	repo  repository.Repository
	pool  *workerpool.Pool
	coord *lock.Coordinator
	opts  lock.Options
	log   logrus.FieldLogger
}

func NewCounterUpdater(repo repository.Repository, pool *workerpool.Pool, coord *lock.Coordinator, opts lock.Options, log logrus.FieldLogger) *CounterUpdater {
	return &CounterUpdater{
		repo:  repo,
		pool:  pool,
		coord: coord,
		opts:  opts,
		log:   log.WithField("source", "counter"),
	}
}

// IncrementViewCount queues the increment. The only error is a rejection by
// the worker pool.
func (cu *CounterUpdater) IncrementViewCount(boardID int64) error {
	err := cu.pool.Submit(func(ctx context.Context) {
		if err := cu.increment(ctx, boardID); err != nil {
			entry := cu.log.WithError(err).WithField("board_id", boardID)
			if errors.Is(err, lock.ErrNotAcquired) {
				entry.Warn("view count increment dropped")
				return
			}
			entry.Error("view count increment failed")
		}
	})
	if err != nil {
		return fmt.Errorf("service.IncrementViewCount: %w", err)
	}
	return nil
}

func (cu *CounterUpdater) increment(p context.Context, boardID int64) error {
	return cu.coord.RunExclusive(p, boardLockKey(boardID), cu.opts, func(p context.Context) error {
		board, err := cu.repo.GetBoard(p, boardID)
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		err = cu.repo.SetBoardViewCount(p, boardID, board.ViewCount+1)
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		return err
	})
}

func boardLockKey(boardID int64) string {
	return "board:" + strconv.FormatInt(boardID, 10)
}
