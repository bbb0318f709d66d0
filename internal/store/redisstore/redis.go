// Package redisstore implements the document store on Redis. Entities are
// JSON documents; membership indexes (board set, board→columns,
// column→cards) are Redis sets maintained alongside the documents. Tests
// run against miniredis, so the backend needs no external server.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/tablero-app/tablero/internal/store"
	"github.com/tablero-app/tablero/pkg/models"
)

// Store is a Redis-backed store.Store. It is safe for concurrent use.
type Store struct {
	rdb *redis.Client
	ns  string
}

var _ store.Store = (*Store)(nil)

// New creates a Store using the given connection options. The namespace
// prefixes every key and must not be empty.
func New(opts *redis.Options, namespace string) (*Store, error) {
	if namespace == "" {
		return nil, fmt.Errorf("redisstore: namespace cannot be empty")
	}
	return &Store{rdb: redis.NewClient(opts), ns: namespace}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

func (s *Store) CreateBoard(ctx context.Context, b *models.Board) error {
	if b.ID.IsZero() {
		b.ID = models.NewBoardID()
	}
	if err := s.setJSON(ctx, boardKey(s.ns, b.ID), b); err != nil {
		return err
	}
	return s.rdb.SAdd(ctx, boardsKey(s.ns), b.ID.String()).Err()
}

func (s *Store) GetBoard(ctx context.Context, id models.BoardID) (*models.Board, error) {
	var b models.Board
	if err := s.getJSON(ctx, boardKey(s.ns, id), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) PutBoard(ctx context.Context, b *models.Board) error {
	if err := s.exists(ctx, boardKey(s.ns, b.ID)); err != nil {
		return err
	}
	return s.setJSON(ctx, boardKey(s.ns, b.ID), b)
}

func (s *Store) DeleteBoard(ctx context.Context, id models.BoardID) error {
	if err := s.del(ctx, boardKey(s.ns, id)); err != nil {
		return err
	}
	pipe := s.rdb.Pipeline()
	pipe.SRem(ctx, boardsKey(s.ns), id.String())
	pipe.Del(ctx, boardColumnsKey(s.ns, id))
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) ListBoards(ctx context.Context) ([]*models.Board, error) {
	ids, err := s.rdb.SMembers(ctx, boardsKey(s.ns)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: list boards: %w", err)
	}
	out := make([]*models.Board, 0, len(ids))
	for _, raw := range ids {
		id, err := models.ParseBoardID(raw)
		if err != nil {
			continue
		}
		b, err := s.GetBoard(ctx, id)
		if store.IsNotFound(err) {
			// Index entry outlived the document; skip it.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Store) CreateColumn(ctx context.Context, c *models.Column) error {
	if c.ID.IsZero() {
		c.ID = models.NewColumnID()
	}
	if err := s.setJSON(ctx, columnKey(s.ns, c.ID), c); err != nil {
		return err
	}
	return s.rdb.SAdd(ctx, boardColumnsKey(s.ns, c.BoardID), c.ID.String()).Err()
}

func (s *Store) GetColumn(ctx context.Context, id models.ColumnID) (*models.Column, error) {
	var c models.Column
	if err := s.getJSON(ctx, columnKey(s.ns, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) PutColumn(ctx context.Context, c *models.Column) error {
	if err := s.exists(ctx, columnKey(s.ns, c.ID)); err != nil {
		return err
	}
	return s.setJSON(ctx, columnKey(s.ns, c.ID), c)
}

func (s *Store) DeleteColumn(ctx context.Context, id models.ColumnID) error {
	c, err := s.GetColumn(ctx, id)
	if err != nil {
		return err
	}
	if err := s.del(ctx, columnKey(s.ns, id)); err != nil {
		return err
	}
	pipe := s.rdb.Pipeline()
	pipe.SRem(ctx, boardColumnsKey(s.ns, c.BoardID), id.String())
	pipe.Del(ctx, columnCardsKey(s.ns, id))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) ListColumnsByBoard(ctx context.Context, boardID models.BoardID) ([]*models.Column, error) {
	ids, err := s.rdb.SMembers(ctx, boardColumnsKey(s.ns, boardID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: list columns: %w", err)
	}
	out := make([]*models.Column, 0, len(ids))
	for _, raw := range ids {
		id, err := models.ParseColumnID(raw)
		if err != nil {
			continue
		}
		c, err := s.GetColumn(ctx, id)
		if store.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) CreateCard(ctx context.Context, c *models.Card) error {
	if c.ID.IsZero() {
		c.ID = models.NewCardID()
	}
	if err := s.setJSON(ctx, cardKey(s.ns, c.ID), c); err != nil {
		return err
	}
	return s.rdb.SAdd(ctx, columnCardsKey(s.ns, c.ColumnID), c.ID.String()).Err()
}

func (s *Store) GetCard(ctx context.Context, id models.CardID) (*models.Card, error) {
	var c models.Card
	if err := s.getJSON(ctx, cardKey(s.ns, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) PutCard(ctx context.Context, c *models.Card) error {
	old, err := s.GetCard(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := s.setJSON(ctx, cardKey(s.ns, c.ID), c); err != nil {
		return err
	}
	if old.ColumnID != c.ColumnID {
		pipe := s.rdb.Pipeline()
		pipe.SRem(ctx, columnCardsKey(s.ns, old.ColumnID), c.ID.String())
		pipe.SAdd(ctx, columnCardsKey(s.ns, c.ColumnID), c.ID.String())
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redisstore: reindex card: %w", err)
		}
	}
	return nil
}

func (s *Store) DeleteCard(ctx context.Context, id models.CardID) error {
	c, err := s.GetCard(ctx, id)
	if err != nil {
		return err
	}
	if err := s.del(ctx, cardKey(s.ns, id)); err != nil {
		return err
	}
	return s.rdb.SRem(ctx, columnCardsKey(s.ns, c.ColumnID), id.String()).Err()
}

func (s *Store) ListCardsByColumn(ctx context.Context, columnID models.ColumnID) ([]*models.Card, error) {
	ids, err := s.rdb.SMembers(ctx, columnCardsKey(s.ns, columnID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: list cards: %w", err)
	}
	out := make([]*models.Card, 0, len(ids))
	for _, raw := range ids {
		id, err := models.ParseCardID(raw)
		if err != nil {
			continue
		}
		c, err := s.GetCard(ctx, id)
		if store.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("redisstore: marshal %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: write %s: %w", key, err)
	}
	return nil
}

func (s *Store) getJSON(ctx context.Context, key string, dst any) error {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("redisstore: read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("redisstore: unmarshal %s: %w", key, err)
	}
	return nil
}

func (s *Store) exists(ctx context.Context, key string) error {
	n, err := s.rdb.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redisstore: exists %s: %w", key, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) del(ctx context.Context, key string) error {
	n, err := s.rdb.Del(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("redisstore: delete %s: %w", key, err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
