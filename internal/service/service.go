package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/internal/media"
	"github.com/gfdmit/web-forum/board-service/internal/model"
	"github.com/gfdmit/web-forum/board-service/internal/repository"
)

const maxTitleLength = 200

type Service struct {
	repo    repository.Repository
	media   media.Resolver
	counter *CounterUpdater
	cascade *CascadeDeleter
	log     logrus.FieldLogger
}

func New(repo repository.Repository, resolver media.Resolver, counter *CounterUpdater, cascade *CascadeDeleter, log logrus.FieldLogger) *Service {
	return &Service{
		repo:    repo,
		media:   resolver,
		counter: counter,
		cascade: cascade,
		log:     log.WithField("source", "service"),
	}
}

func (svc *Service) CreateBoard(p context.Context, authorID int64, title string, content string) (int64, error) {
	if err := validateTitle(title); err != nil {
		return 0, err
	}
	if err := validateContent(content); err != nil {
		return 0, err
	}
	if err := svc.requireMember(p, authorID); err != nil {
		return 0, err
	}
	id, err := svc.repo.CreateBoard(p, authorID, title, content)
	if err != nil {
		return 0, fmt.Errorf("service.CreateBoard: %w", err)
	}
	return id, nil
}

func (svc *Service) GetBoardDetail(p context.Context, boardID int64) (*model.BoardDetail, error) {
	board, err := svc.repo.GetBoard(p, boardID)
	if err != nil {
		return nil, fmt.Errorf("service.GetBoardDetail: %w", err)
	}

	detail := &model.BoardDetail{Board: *board}
	member, err := svc.repo.GetMember(p, board.AuthorID)
	switch {
	case err == nil:
		detail.AuthorNickname = member.Nickname
	case !errors.Is(err, model.ErrNotFound):
		return nil, fmt.Errorf("service.GetBoardDetail: %w", err)
	}

	detail.AuthorImageURL, err = svc.authorImage(p, board.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("service.GetBoardDetail: %w", err)
	}
	return detail, nil
}

func (svc *Service) UpdateBoard(p context.Context, boardID int64, authorID int64, title string, content string) error {
	if err := validateTitle(title); err != nil {
		return err
	}
	if err := validateContent(content); err != nil {
		return err
	}
	if _, err := svc.repo.GetOwnedBoard(p, boardID, authorID); err != nil {
		return fmt.Errorf("service.UpdateBoard: %w", err)
	}
	if err := svc.repo.UpdateBoard(p, boardID, title, content); err != nil {
		return fmt.Errorf("service.UpdateBoard: %w", err)
	}
	return nil
}

func (svc *Service) DeleteBoard(p context.Context, boardID int64, authorID int64) error {
	board, err := svc.repo.GetOwnedBoard(p, boardID, authorID)
	if err != nil {
		return fmt.Errorf("service.DeleteBoard: %w", err)
	}
	return svc.cascade.DeleteBoardCascade(p, board)
}

// IncrementViewCount schedules a view count increment and returns at once.
func (svc *Service) IncrementViewCount(boardID int64) error {
	return svc.counter.IncrementViewCount(boardID)
}

func (svc *Service) CreateComment(p context.Context, authorID int64, boardID int64, parentID *int64, content string) (int64, error) {
	if err := validateContent(content); err != nil {
		return 0, err
	}
	if err := svc.requireMember(p, authorID); err != nil {
		return 0, err
	}

	_, err := svc.repo.GetBoard(p, boardID)
	if errors.Is(err, model.ErrNotFound) {
		return 0, model.ErrBoardNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("service.CreateComment: %w", err)
	}

	if parentID != nil {
		_, err := svc.repo.GetBoardComment(p, *parentID, boardID)
		if errors.Is(err, model.ErrNotFound) {
			return 0, model.ErrParentCommentNotFound
		}
		if err != nil {
			return 0, fmt.Errorf("service.CreateComment: %w", err)
		}
	}

	id, err := svc.repo.CreateComment(p, authorID, boardID, parentID, content)
	if err != nil {
		return 0, fmt.Errorf("service.CreateComment: %w", err)
	}
	return id, nil
}

func (svc *Service) UpdateComment(p context.Context, commentID int64, authorID int64, content string) error {
	if err := validateContent(content); err != nil {
		return err
	}
	if _, err := svc.repo.GetOwnedComment(p, commentID, authorID); err != nil {
		return fmt.Errorf("service.UpdateComment: %w", err)
	}
	if err := svc.repo.UpdateComment(p, commentID, content); err != nil {
		return fmt.Errorf("service.UpdateComment: %w", err)
	}
	return nil
}

func (svc *Service) DeleteComment(p context.Context, commentID int64, authorID int64) error {
	comment, err := svc.repo.GetOwnedComment(p, commentID, authorID)
	if err != nil {
		return fmt.Errorf("service.DeleteComment: %w", err)
	}
	return svc.cascade.DeleteCommentCascade(p, comment)
}

// DeleteMemberBoards cascades every live board of memberID. Every board is
// attempted; the failures are returned joined.
func (svc *Service) DeleteMemberBoards(p context.Context, memberID int64) error {
	boards, err := svc.repo.GetBoardsByAuthor(p, memberID)
	if err != nil {
		return fmt.Errorf("service.DeleteMemberBoards: %w", err)
	}
	if err := svc.cascadeAll(p, boards); err != nil {
		return fmt.Errorf("service.DeleteMemberBoards %d: %w", memberID, err)
	}

	svc.log.WithFields(logrus.Fields{"member_id": memberID, "boards": len(boards)}).Info("member boards deleted")
	return nil
}

// DeleteBoardsOfDeletedMembers cascades every live board whose author is
// already marked deleted. It catches up on deletions whose notice was lost or
// failed.
func (svc *Service) DeleteBoardsOfDeletedMembers(p context.Context) error {
	boards, err := svc.repo.GetBoardsOfDeletedMembers(p)
	if err != nil {
		return fmt.Errorf("service.DeleteBoardsOfDeletedMembers: %w", err)
	}
	if err := svc.cascadeAll(p, boards); err != nil {
		return fmt.Errorf("service.DeleteBoardsOfDeletedMembers: %w", err)
	}

	if len(boards) > 0 {
		svc.log.WithField("boards", len(boards)).Info("boards of deleted members removed")
	}
	return nil
}

// MemberActive reports whether memberID has a live member row.
func (svc *Service) MemberActive(p context.Context, memberID int64) (bool, error) {
	_, err := svc.repo.GetMember(p, memberID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("service.MemberActive: %w", err)
	}
	return true, nil
}

func (svc *Service) cascadeAll(p context.Context, boards []model.Board) error {
	var errs []error
	for i := range boards {
		if err := svc.cascade.DeleteBoardCascade(p, &boards[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (svc *Service) requireMember(p context.Context, memberID int64) error {
	_, err := svc.repo.GetMember(p, memberID)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("member %d: %w", memberID, model.ErrUnknownMember)
	}
	return err
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("empty title: %w", model.ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("title longer than %d characters: %w", maxTitleLength, model.ErrInvalidInput)
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("empty content: %w", model.ErrInvalidInput)
	}
	return nil
}
