// Package store defines the persistence interface the board coordinator
// writes through. Implementations are document stores: entities are
// whole-document reads and writes, identified by typed UUIDs, with no
// cross-document transactions. The coordinator layers its consistency
// rules (linking, cascades, compensation) on top of this contract.
package store

import (
	"context"
	"errors"

	"github.com/tablero-app/tablero/pkg/models"
)

// ErrNotFound is returned by Get and Delete operations when the entity
// does not exist. Callers match it with errors.Is.
var ErrNotFound = errors.New("entity not found")

// IsNotFound reports whether err means a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Store is the document persistence contract.
//
// Create methods generate an ID when the entity's ID is zero and persist
// the document. Get methods return ErrNotFound for missing entities and
// copies the caller may mutate freely. Put methods are full-document
// replacement — concurrent writers to the same document race and the last
// write wins; the coordinator accepts and documents that. Delete methods
// return ErrNotFound when the entity is already gone. List methods return
// empty slices, never nil errors for emptiness.
type Store interface {
	CreateBoard(ctx context.Context, b *models.Board) error
	GetBoard(ctx context.Context, id models.BoardID) (*models.Board, error)
	PutBoard(ctx context.Context, b *models.Board) error
	DeleteBoard(ctx context.Context, id models.BoardID) error
	ListBoards(ctx context.Context) ([]*models.Board, error)

	CreateColumn(ctx context.Context, c *models.Column) error
	GetColumn(ctx context.Context, id models.ColumnID) (*models.Column, error)
	PutColumn(ctx context.Context, c *models.Column) error
	DeleteColumn(ctx context.Context, id models.ColumnID) error
	ListColumnsByBoard(ctx context.Context, boardID models.BoardID) ([]*models.Column, error)

	CreateCard(ctx context.Context, c *models.Card) error
	GetCard(ctx context.Context, id models.CardID) (*models.Card, error)
	PutCard(ctx context.Context, c *models.Card) error
	DeleteCard(ctx context.Context, id models.CardID) error
	ListCardsByColumn(ctx context.Context, columnID models.ColumnID) ([]*models.Card, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}
