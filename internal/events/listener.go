// Package events consumes member deletion notices from the identity side and
// removes the departed member's boards.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
)

type MemberDeleted struct {
	DeletedMemberUID *int64 `json:"deletedMemberUid"`
}

type MemberContentRemover interface {
	MemberActive(ctx context.Context, memberID int64) (bool, error)
	DeleteMemberBoards(ctx context.Context, memberID int64) error
	DeleteBoardsOfDeletedMembers(ctx context.Context) error
}

type Listener struct {
	remover MemberContentRemover
	log     logrus.FieldLogger
}

func NewListener(remover MemberContentRemover, log logrus.FieldLogger) *Listener {
	return &Listener{
		remover: remover,
		log:     log.WithField("source", "events"),
	}
}

// Handle processes one member deletion notice. A payload that cannot be
// decoded is logged and acknowledged, and so is a notice for a member whose
// row is still live. A returned error means the notice should be delivered
// again.
func (l *Listener) Handle(ctx context.Context, payload []byte) error {
	event := MemberDeleted{}
	if err := json.Unmarshal(payload, &event); err != nil || event.DeletedMemberUID == nil {
		l.log.WithField("payload", string(payload)).WithError(err).Warn("dropping malformed member deletion notice")
		return nil
	}

	memberID := *event.DeletedMemberUID
	active, err := l.remover.MemberActive(ctx, memberID)
	if err != nil {
		return fmt.Errorf("events.Handle member %d: %w", memberID, err)
	}
	if active {
		l.log.WithField("member_id", memberID).Warn("ignoring deletion notice for a live member")
		return nil
	}

	if err := l.remover.DeleteMemberBoards(ctx, memberID); err != nil {
		return fmt.Errorf("events.Handle member %d: %w", memberID, err)
	}
	return nil
}

// Reconcile removes the boards of every member already marked deleted,
// whether or not a notice for them arrived.
func (l *Listener) Reconcile(ctx context.Context) error {
	if err := l.remover.DeleteBoardsOfDeletedMembers(ctx); err != nil {
		return fmt.Errorf("events.Reconcile: %w", err)
	}
	return nil
}
