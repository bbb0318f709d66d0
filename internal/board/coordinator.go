// Package board is the relational-consistency core: every mutation of the
// Board↔Column↔Card graph goes through the Coordinator, which keeps each
// child's back-reference and its parent's ordered ID list in agreement.
// Direct store writes from anywhere else would break that agreement, so
// the Coordinator is the store's only writer.
//
// The store gives no multi-document transactions. Two-document writes use
// compensation (see saga.go), cascading deletes remove children before
// committing the parent delete, and concurrent writers to one document
// race last-write-wins — an accepted, documented weakness rather than a
// bug to hide.
package board

import (
	"context"
	"sort"

	"github.com/tablero-app/tablero/internal/store"
	"github.com/tablero-app/tablero/pkg/logger"
	"github.com/tablero-app/tablero/pkg/models"
)

// Coordinator enforces the ownership invariants on every mutation.
type Coordinator struct {
	store store.Store
	log   logger.Logger
}

func New(st store.Store, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Nop{}
	}
	return &Coordinator{store: st, log: log}
}

// CreateBoard persists a new empty board.
func (c *Coordinator) CreateBoard(ctx context.Context, name, description string) (*models.Board, error) {
	if name == "" {
		return nil, required("name")
	}
	b := &models.Board{
		Name:        name,
		Description: description,
		ColumnIDs:   []models.ColumnID{},
	}
	if err := c.store.CreateBoard(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// CreateColumn persists a column and links it to the end of the board's
// column list. Fails with NotFound if the board does not exist and with
// Conflict if the link step fails after the column was written.
func (c *Coordinator) CreateColumn(ctx context.Context, boardID models.BoardID, name string) (*models.Column, error) {
	if name == "" {
		return nil, required("name")
	}
	b, err := c.store.GetBoard(ctx, boardID)
	if store.IsNotFound(err) {
		return nil, notFound("board", boardID)
	}
	if err != nil {
		return nil, err
	}

	col := &models.Column{
		Name:    name,
		BoardID: boardID,
		CardIDs: []models.CardID{},
	}
	err = c.run(ctx, createThenLink{
		op: "createColumn",
		create: func(ctx context.Context) error {
			return c.store.CreateColumn(ctx, col)
		},
		link: func(ctx context.Context) error {
			b.ColumnIDs = append(b.ColumnIDs, col.ID)
			return c.store.PutBoard(ctx, b)
		},
		compensate: func(ctx context.Context) error {
			return c.store.DeleteColumn(ctx, col.ID)
		},
	})
	if err != nil {
		return nil, err
	}
	return col, nil
}

// CreateCard persists a card and links it to the end of the column's card
// list. Fails with NotFound if the column does not exist and with Conflict
// if the link step fails after the card was written.
func (c *Coordinator) CreateCard(ctx context.Context, columnID models.ColumnID, title, description string) (*models.Card, error) {
	if title == "" {
		return nil, required("title")
	}
	col, err := c.store.GetColumn(ctx, columnID)
	if store.IsNotFound(err) {
		return nil, notFound("column", columnID)
	}
	if err != nil {
		return nil, err
	}

	card := &models.Card{
		Title:       title,
		Description: description,
		ColumnID:    columnID,
	}
	err = c.run(ctx, createThenLink{
		op: "createCard",
		create: func(ctx context.Context) error {
			return c.store.CreateCard(ctx, card)
		},
		link: func(ctx context.Context) error {
			col.CardIDs = append(col.CardIDs, card.ID)
			return c.store.PutColumn(ctx, col)
		},
		compensate: func(ctx context.Context) error {
			return c.store.DeleteCard(ctx, card.ID)
		},
	})
	if err != nil {
		return nil, err
	}
	return card, nil
}

// UpdateBoard applies a patch to the board's own fields.
func (c *Coordinator) UpdateBoard(ctx context.Context, id models.BoardID, patch models.BoardPatch) (*models.Board, error) {
	b, err := c.store.GetBoard(ctx, id)
	if store.IsNotFound(err) {
		return nil, notFound("board", id)
	}
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, required("name")
		}
		b.Name = *patch.Name
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	if err := c.store.PutBoard(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateColumn applies a patch to the column's own fields.
func (c *Coordinator) UpdateColumn(ctx context.Context, id models.ColumnID, patch models.ColumnPatch) (*models.Column, error) {
	col, err := c.store.GetColumn(ctx, id)
	if store.IsNotFound(err) {
		return nil, notFound("column", id)
	}
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return nil, required("name")
		}
		col.Name = *patch.Name
	}
	if err := c.store.PutColumn(ctx, col); err != nil {
		return nil, err
	}
	return col, nil
}

// UpdateCard applies a patch to a card. A ColumnID change relocates the
// card to the end of the target column: the ID is pulled from the old
// column's list, pushed onto the new column's list, and only then is the
// card's back-reference rewritten — in that order, so no reader of
// committed state ever sees the card in two columns at once.
func (c *Coordinator) UpdateCard(ctx context.Context, id models.CardID, patch models.CardPatch) (*models.Card, error) {
	card, err := c.store.GetCard(ctx, id)
	if store.IsNotFound(err) {
		return nil, notFound("card", id)
	}
	if err != nil {
		return nil, err
	}

	// Reject the whole patch before any write: a relocation commits list
	// updates on two columns, and an invalid field must not leave those
	// behind.
	if patch.Title != nil && *patch.Title == "" {
		return nil, required("title")
	}

	if patch.ColumnID != nil && *patch.ColumnID != card.ColumnID {
		newCol, err := c.store.GetColumn(ctx, *patch.ColumnID)
		if store.IsNotFound(err) {
			return nil, notFound("column", *patch.ColumnID)
		}
		if err != nil {
			return nil, err
		}

		if err := c.unlinkCard(ctx, card.ColumnID, card.ID); err != nil {
			return nil, err
		}
		newCol.CardIDs = append(newCol.CardIDs, card.ID)
		if err := c.store.PutColumn(ctx, newCol); err != nil {
			return nil, err
		}
		card.ColumnID = *patch.ColumnID
	}

	if patch.Title != nil {
		card.Title = *patch.Title
	}
	if patch.Description != nil {
		card.Description = *patch.Description
	}
	if err := c.store.PutCard(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// DeleteCard removes the card from its owning column's list and deletes
// it. A column that is already gone counts as already unlinked.
func (c *Coordinator) DeleteCard(ctx context.Context, id models.CardID) error {
	card, err := c.store.GetCard(ctx, id)
	if store.IsNotFound(err) {
		return notFound("card", id)
	}
	if err != nil {
		return err
	}
	if err := c.unlinkCard(ctx, card.ColumnID, id); err != nil {
		return err
	}
	if err := c.store.DeleteCard(ctx, id); err != nil && !store.IsNotFound(err) {
		return err
	}
	return nil
}

// DeleteColumn deletes the column's cards, unlinks the column from its
// board and deletes it. The cascade completes before the column itself is
// removed so no reader observes a deleted column with live cards.
func (c *Coordinator) DeleteColumn(ctx context.Context, id models.ColumnID) error {
	col, err := c.store.GetColumn(ctx, id)
	if store.IsNotFound(err) {
		return notFound("column", id)
	}
	if err != nil {
		return err
	}
	if err := c.deleteColumnCascade(ctx, col); err != nil {
		return err
	}

	b, err := c.store.GetBoard(ctx, col.BoardID)
	if err == nil {
		b.ColumnIDs = removeColumnID(b.ColumnIDs, id)
		if err := c.store.PutBoard(ctx, b); err != nil && !store.IsNotFound(err) {
			return err
		}
	} else if !store.IsNotFound(err) {
		return err
	}

	if err := c.store.DeleteColumn(ctx, id); err != nil && !store.IsNotFound(err) {
		return err
	}
	return nil
}

// DeleteBoard cascades through every owned column and card before the
// board itself is deleted.
func (c *Coordinator) DeleteBoard(ctx context.Context, id models.BoardID) error {
	_, err := c.store.GetBoard(ctx, id)
	if store.IsNotFound(err) {
		return notFound("board", id)
	}
	if err != nil {
		return err
	}

	// The index query rather than the board's own list, so columns that
	// lost their board link (a crashed partial write) are still swept.
	cols, err := c.store.ListColumnsByBoard(ctx, id)
	if err != nil {
		return err
	}
	for _, col := range cols {
		if err := c.deleteColumnCascade(ctx, col); err != nil {
			return err
		}
		if err := c.store.DeleteColumn(ctx, col.ID); err != nil && !store.IsNotFound(err) {
			return err
		}
	}

	if err := c.store.DeleteBoard(ctx, id); err != nil && !store.IsNotFound(err) {
		return err
	}
	return nil
}

// FindBoard resolves the board's column and card ID lists into full
// objects, preserving list order. Children deleted mid-read are skipped so
// the projection stays internally consistent.
func (c *Coordinator) FindBoard(ctx context.Context, id models.BoardID) (*models.BoardView, error) {
	b, err := c.store.GetBoard(ctx, id)
	if store.IsNotFound(err) {
		return nil, notFound("board", id)
	}
	if err != nil {
		return nil, err
	}

	view := &models.BoardView{Board: *b, Columns: []models.ColumnView{}}
	for _, colID := range b.ColumnIDs {
		col, err := c.store.GetColumn(ctx, colID)
		if store.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		cv := models.ColumnView{Column: *col, Cards: []models.Card{}}
		for _, cardID := range col.CardIDs {
			card, err := c.store.GetCard(ctx, cardID)
			if store.IsNotFound(err) {
				continue
			}
			if err != nil {
				return nil, err
			}
			cv.Cards = append(cv.Cards, *card)
		}
		view.Columns = append(view.Columns, cv)
	}
	return view, nil
}

// ListBoards returns all boards sorted by name.
func (c *Coordinator) ListBoards(ctx context.Context) ([]*models.Board, error) {
	boards, err := c.store.ListBoards(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(boards, func(i, j int) bool {
		if boards[i].Name != boards[j].Name {
			return boards[i].Name < boards[j].Name
		}
		return boards[i].ID.String() < boards[j].ID.String()
	})
	return boards, nil
}

// BoardOfColumn resolves a column's owning board ID.
func (c *Coordinator) BoardOfColumn(ctx context.Context, id models.ColumnID) (models.BoardID, error) {
	col, err := c.store.GetColumn(ctx, id)
	if store.IsNotFound(err) {
		return models.BoardID{}, notFound("column", id)
	}
	if err != nil {
		return models.BoardID{}, err
	}
	return col.BoardID, nil
}

// BoardOfCard walks the card's ownership chain up to its board ID.
func (c *Coordinator) BoardOfCard(ctx context.Context, id models.CardID) (models.BoardID, error) {
	card, err := c.store.GetCard(ctx, id)
	if store.IsNotFound(err) {
		return models.BoardID{}, notFound("card", id)
	}
	if err != nil {
		return models.BoardID{}, err
	}
	return c.BoardOfColumn(ctx, card.ColumnID)
}

// unlinkCard pulls a card ID out of a column's list. A missing column
// counts as already unlinked.
func (c *Coordinator) unlinkCard(ctx context.Context, columnID models.ColumnID, cardID models.CardID) error {
	col, err := c.store.GetColumn(ctx, columnID)
	if store.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	col.CardIDs = removeCardID(col.CardIDs, cardID)
	if err := c.store.PutColumn(ctx, col); err != nil && !store.IsNotFound(err) {
		return err
	}
	return nil
}

// deleteColumnCascade deletes every card the column owns. Cards already
// gone are treated as satisfied, not as errors.
func (c *Coordinator) deleteColumnCascade(ctx context.Context, col *models.Column) error {
	// Sweep the index too, not just the column's list, so orphaned cards
	// whose back-reference survived a partial write are removed as well.
	cards, err := c.store.ListCardsByColumn(ctx, col.ID)
	if err != nil {
		return err
	}
	seen := make(map[models.CardID]bool, len(cards))
	for _, card := range cards {
		seen[card.ID] = true
	}
	ids := make([]models.CardID, 0, len(cards)+len(col.CardIDs))
	for _, card := range cards {
		ids = append(ids, card.ID)
	}
	for _, id := range col.CardIDs {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		if err := c.store.DeleteCard(ctx, id); err != nil && !store.IsNotFound(err) {
			return err
		}
	}
	return nil
}

func removeCardID(ids []models.CardID, id models.CardID) []models.CardID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func removeColumnID(ids []models.ColumnID, id models.ColumnID) []models.ColumnID {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
