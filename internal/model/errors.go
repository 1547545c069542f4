package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers absent, deleted and not-owned entities alike.
	ErrNotFound = errors.New("not found")

	ErrInvalidReference      = errors.New("invalid reference")
	ErrBoardNotFound         = fmt.Errorf("board: %w", ErrInvalidReference)
	ErrParentCommentNotFound = fmt.Errorf("parent comment: %w", ErrInvalidReference)

	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidPage  = errors.New("invalid page request")
)

// ErrUnknownMember is returned when the authenticated member has no live
// account in the replicated member table.
var ErrUnknownMember = errors.New("unknown member")
