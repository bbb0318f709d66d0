// Package memory provides an in-memory Store. It backs unit tests and the
// single-process development mode; semantics match the Redis backend.
package memory

import (
	"context"
	"sync"

	"github.com/tablero-app/tablero/internal/store"
	"github.com/tablero-app/tablero/pkg/models"
)

// Store keeps all entities in maps guarded by one RWMutex. Documents are
// copied on the way in and out so callers never share memory with the
// store.
type Store struct {
	mu      sync.RWMutex
	boards  map[models.BoardID]*models.Board
	columns map[models.ColumnID]*models.Column
	cards   map[models.CardID]*models.Card
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		boards:  make(map[models.BoardID]*models.Board),
		columns: make(map[models.ColumnID]*models.Column),
		cards:   make(map[models.CardID]*models.Card),
	}
}

func (s *Store) CreateBoard(ctx context.Context, b *models.Board) error {
	if b.ID.IsZero() {
		b.ID = models.NewBoardID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.boards[b.ID] = b.Clone()
	return nil
}

func (s *Store) GetBoard(ctx context.Context, id models.BoardID) (*models.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.boards[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return b.Clone(), nil
}

func (s *Store) PutBoard(ctx context.Context, b *models.Board) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[b.ID]; !ok {
		return store.ErrNotFound
	}
	s.boards[b.ID] = b.Clone()
	return nil
}

func (s *Store) DeleteBoard(ctx context.Context, id models.BoardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.boards[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.boards, id)
	return nil
}

func (s *Store) ListBoards(ctx context.Context) ([]*models.Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Board, 0, len(s.boards))
	for _, b := range s.boards {
		out = append(out, b.Clone())
	}
	return out, nil
}

func (s *Store) CreateColumn(ctx context.Context, c *models.Column) error {
	if c.ID.IsZero() {
		c.ID = models.NewColumnID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.columns[c.ID] = c.Clone()
	return nil
}

func (s *Store) GetColumn(ctx context.Context, id models.ColumnID) (*models.Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.columns[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *Store) PutColumn(ctx context.Context, c *models.Column) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.columns[c.ID]; !ok {
		return store.ErrNotFound
	}
	s.columns[c.ID] = c.Clone()
	return nil
}

func (s *Store) DeleteColumn(ctx context.Context, id models.ColumnID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.columns[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.columns, id)
	return nil
}

func (s *Store) ListColumnsByBoard(ctx context.Context, boardID models.BoardID) ([]*models.Column, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Column
	for _, c := range s.columns {
		if c.BoardID == boardID {
			out = append(out, c.Clone())
		}
	}
	if out == nil {
		out = []*models.Column{}
	}
	return out, nil
}

func (s *Store) CreateCard(ctx context.Context, c *models.Card) error {
	if c.ID.IsZero() {
		c.ID = models.NewCardID()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[c.ID] = c.Clone()
	return nil
}

func (s *Store) GetCard(ctx context.Context, id models.CardID) (*models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cards[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *Store) PutCard(ctx context.Context, c *models.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[c.ID]; !ok {
		return store.ErrNotFound
	}
	s.cards[c.ID] = c.Clone()
	return nil
}

func (s *Store) DeleteCard(ctx context.Context, id models.CardID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.cards, id)
	return nil
}

func (s *Store) ListCardsByColumn(ctx context.Context, columnID models.ColumnID) ([]*models.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Card
	for _, c := range s.cards {
		if c.ColumnID == columnID {
			out = append(out, c.Clone())
		}
	}
	if out == nil {
		out = []*models.Card{}
	}
	return out, nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }
