// Package memory is a process-local implementation of repository.Repository.
// It backs the "memory" storage mode and the service tests, and applies the
// same filters, orderings and counts as the PostgreSQL listing queries.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

type memoryRepository struct {
	mu sync.RWMutex

	boards   map[int64]*model.Board
	comments map[int64]*model.Comment
	members  map[int64]*model.Member
	profiles map[int64][]model.Profile

	nextBoardID   int64
	nextCommentID int64
	now           func() time.Time
}

func New() *memoryRepository {
	return &memoryRepository{
		boards:   make(map[int64]*model.Board),
		comments: make(map[int64]*model.Comment),
		members:  make(map[int64]*model.Member),
		profiles: make(map[int64][]model.Profile),
		now:      time.Now,
	}
}

// SetClock replaces the timestamp source used for created/updated dates.
func (mr *memoryRepository) SetClock(now func() time.Time) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.now = now
}

func (mr *memoryRepository) PutMember(m model.Member) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.members[m.ID] = &m
}

// SeedMembers stores members given as "id:nickname" entries. Nothing is
// stored unless every entry parses.
func (mr *memoryRepository) SeedMembers(entries []string) error {
	members := make([]model.Member, 0, len(entries))
	for _, entry := range entries {
		idPart, nickname, ok := strings.Cut(strings.TrimSpace(entry), ":")
		if !ok || strings.TrimSpace(nickname) == "" {
			return fmt.Errorf("memory.SeedMembers: entry %q is not id:nickname", entry)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
		if err != nil || id < 1 {
			return fmt.Errorf("memory.SeedMembers: entry %q has no positive id", entry)
		}
		members = append(members, model.Member{ID: id, Nickname: strings.TrimSpace(nickname)})
	}

	for _, m := range members {
		mr.PutMember(m)
	}
	return nil
}

func (mr *memoryRepository) PutProfile(pr model.Profile) {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.profiles[pr.MemberID] = append(mr.profiles[pr.MemberID], pr)
}

func (mr *memoryRepository) CreateBoard(p context.Context, authorID int64, title string, content string) (int64, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	mr.nextBoardID++
	now := mr.now()
	mr.boards[mr.nextBoardID] = &model.Board{
		ID:        mr.nextBoardID,
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return mr.nextBoardID, nil
}

func (mr *memoryRepository) GetBoard(p context.Context, id int64) (*model.Board, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	b, ok := mr.boards[id]
	if !ok || b.Deleted() {
		return nil, model.ErrNotFound
	}
	board := *b
	return &board, nil
}

func (mr *memoryRepository) GetOwnedBoard(p context.Context, id int64, authorID int64) (*model.Board, error) {
	b, err := mr.GetBoard(p, id)
	if err != nil {
		return nil, err
	}
	if b.AuthorID != authorID {
		return nil, model.ErrNotFound
	}
	return b, nil
}

func (mr *memoryRepository) GetBoardsByAuthor(p context.Context, authorID int64) ([]model.Board, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	boards := []model.Board{}
	for _, b := range mr.boards {
		if b.AuthorID == authorID && !b.Deleted() {
			boards = append(boards, *b)
		}
	}
	sortByID(boards, func(b model.Board) int64 { return b.ID })
	return boards, nil
}

func (mr *memoryRepository) GetBoardsOfDeletedMembers(p context.Context) ([]model.Board, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	boards := []model.Board{}
	for _, b := range mr.boards {
		author, ok := mr.members[b.AuthorID]
		if ok && author.DeletedAt != nil && !b.Deleted() {
			boards = append(boards, *b)
		}
	}
	sortByID(boards, func(b model.Board) int64 { return b.ID })
	return boards, nil
}

func (mr *memoryRepository) UpdateBoard(p context.Context, id int64, title string, content string) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	b, ok := mr.boards[id]
	if !ok || b.Deleted() {
		return model.ErrNotFound
	}
	b.Title = title
	b.Content = content
	b.UpdatedAt = mr.now()
	return nil
}

func (mr *memoryRepository) SetBoardViewCount(p context.Context, id int64, viewCount int64) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	b, ok := mr.boards[id]
	if !ok || b.Deleted() {
		return model.ErrNotFound
	}
	b.ViewCount = viewCount
	return nil
}

func (mr *memoryRepository) MarkBoardDeleted(p context.Context, id int64, at time.Time) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if b, ok := mr.boards[id]; ok && !b.Deleted() {
		b.DeletedAt = &at
	}
	return nil
}

func (mr *memoryRepository) CreateComment(p context.Context, authorID int64, boardID int64, parentID *int64, content string) (int64, error) {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	mr.nextCommentID++
	now := mr.now()
	c := &model.Comment{
		ID:        mr.nextCommentID,
		AuthorID:  authorID,
		BoardID:   boardID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if parentID != nil {
		parent := *parentID
		c.ParentID = &parent
	}
	mr.comments[c.ID] = c
	return c.ID, nil
}

func (mr *memoryRepository) GetComment(p context.Context, id int64) (*model.Comment, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	c, ok := mr.comments[id]
	if !ok || c.Deleted() {
		return nil, model.ErrNotFound
	}
	comment := *c
	return &comment, nil
}

func (mr *memoryRepository) GetOwnedComment(p context.Context, id int64, authorID int64) (*model.Comment, error) {
	c, err := mr.GetComment(p, id)
	if err != nil {
		return nil, err
	}
	if c.AuthorID != authorID {
		return nil, model.ErrNotFound
	}
	return c, nil
}

func (mr *memoryRepository) GetBoardComment(p context.Context, id int64, boardID int64) (*model.Comment, error) {
	c, err := mr.GetComment(p, id)
	if err != nil {
		return nil, err
	}
	if c.BoardID != boardID {
		return nil, model.ErrNotFound
	}
	return c, nil
}

func (mr *memoryRepository) UpdateComment(p context.Context, id int64, content string) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	c, ok := mr.comments[id]
	if !ok || c.Deleted() {
		return model.ErrNotFound
	}
	c.Content = content
	c.UpdatedAt = mr.now()
	return nil
}

func (mr *memoryRepository) MarkCommentDeleted(p context.Context, id int64, at time.Time) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()

	if c, ok := mr.comments[id]; ok && !c.Deleted() {
		c.DeletedAt = &at
	}
	return nil
}

func (mr *memoryRepository) GetRootComments(p context.Context, boardID int64) ([]model.Comment, error) {
	return mr.collectComments(func(c *model.Comment) bool {
		return c.BoardID == boardID && c.ParentID == nil
	}), nil
}

func (mr *memoryRepository) GetChildComments(p context.Context, parentID int64) ([]model.Comment, error) {
	return mr.collectComments(func(c *model.Comment) bool {
		return c.ParentID != nil && *c.ParentID == parentID
	}), nil
}

func (mr *memoryRepository) collectComments(match func(c *model.Comment) bool) []model.Comment {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	comments := []model.Comment{}
	for _, c := range mr.comments {
		if match(c) {
			comments = append(comments, *c)
		}
	}
	sortByID(comments, func(c model.Comment) int64 { return c.ID })
	return comments
}

func (mr *memoryRepository) GetMember(p context.Context, id int64) (*model.Member, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	m, ok := mr.members[id]
	if !ok || m.DeletedAt != nil {
		return nil, model.ErrNotFound
	}
	member := *m
	return &member, nil
}

func (mr *memoryRepository) GetProfiles(p context.Context, memberID int64) ([]model.Profile, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	profiles := []model.Profile{}
	for _, pr := range mr.profiles[memberID] {
		if pr.DeletedAt == nil {
			profiles = append(profiles, pr)
		}
	}
	sortProfiles(profiles)
	return profiles, nil
}
