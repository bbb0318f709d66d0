package board

import (
	"context"

	"github.com/tablero-app/tablero/internal/store"
	"github.com/tablero-app/tablero/pkg/models"
)

// MoveCard relocates a card between columns, or reorders it inside one.
//
// The card's ID is removed from the source list by value — never by the
// caller-supplied sourceIndex, which drifts under concurrent moves — and
// inserted into the destination list at destinationIndex clamped to
// [0, len]. The destination list is also scrubbed of the ID before the
// insert, so re-applying the same move is a no-op rather than a
// duplicate. Same-column reordering is the degenerate case where source
// and destination are one list.
//
// Fails with NotFound if the card or the destination column is missing. A
// missing source column is tolerated: the card has simply already left it.
func (c *Coordinator) MoveCard(ctx context.Context, cardID models.CardID, sourceColumnID, destColumnID models.ColumnID, sourceIndex, destIndex int) (*models.Card, error) {
	card, err := c.store.GetCard(ctx, cardID)
	if store.IsNotFound(err) {
		return nil, notFound("card", cardID)
	}
	if err != nil {
		return nil, err
	}

	dst, err := c.store.GetColumn(ctx, destColumnID)
	if store.IsNotFound(err) {
		return nil, notFound("column", destColumnID)
	}
	if err != nil {
		return nil, err
	}

	card.ColumnID = destColumnID
	if err := c.store.PutCard(ctx, card); err != nil {
		return nil, err
	}

	if sourceColumnID == destColumnID {
		dst.CardIDs = insertCardID(removeCardID(dst.CardIDs, cardID), cardID, destIndex)
		if err := c.store.PutColumn(ctx, dst); err != nil {
			return nil, err
		}
		return card, nil
	}

	// Remove from the source before inserting into the destination, so a
	// reader between the two writes sees the card in at most one list.
	src, err := c.store.GetColumn(ctx, sourceColumnID)
	if err == nil {
		src.CardIDs = removeCardID(src.CardIDs, cardID)
		if err := c.store.PutColumn(ctx, src); err != nil && !store.IsNotFound(err) {
			return nil, err
		}
	} else if !store.IsNotFound(err) {
		return nil, err
	}

	dst.CardIDs = insertCardID(removeCardID(dst.CardIDs, cardID), cardID, destIndex)
	if err := c.store.PutColumn(ctx, dst); err != nil {
		return nil, err
	}
	return card, nil
}

// insertCardID inserts id at index clamped to [0, len(ids)].
func insertCardID(ids []models.CardID, id models.CardID, index int) []models.CardID {
	if index < 0 {
		index = 0
	}
	if index > len(ids) {
		index = len(ids)
	}
	out := make([]models.CardID, 0, len(ids)+1)
	out = append(out, ids[:index]...)
	out = append(out, id)
	out = append(out, ids[index:]...)
	return out
}
