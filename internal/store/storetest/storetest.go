// Package storetest runs the store.Store contract against a backend.
// Both the in-memory and the Redis implementations are exercised by the
// same suite so they cannot drift apart.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablero-app/tablero/internal/store"
	"github.com/tablero-app/tablero/pkg/models"
)

// Factory returns a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run executes the contract suite against the backend.
func Run(t *testing.T, factory Factory) {
	t.Run("BoardLifecycle", func(t *testing.T) { testBoardLifecycle(t, factory(t)) })
	t.Run("BoardNotFound", func(t *testing.T) { testBoardNotFound(t, factory(t)) })
	t.Run("ColumnLifecycle", func(t *testing.T) { testColumnLifecycle(t, factory(t)) })
	t.Run("CardLifecycle", func(t *testing.T) { testCardLifecycle(t, factory(t)) })
	t.Run("CardReindex", func(t *testing.T) { testCardReindex(t, factory(t)) })
	t.Run("GetReturnsCopies", func(t *testing.T) { testGetReturnsCopies(t, factory(t)) })
	t.Run("Ping", func(t *testing.T) {
		require.NoError(t, factory(t).Ping(context.Background()))
	})
}

func testBoardLifecycle(t *testing.T, st store.Store) {
	ctx := context.Background()

	b := &models.Board{Name: "Sprint 1", Description: "d", ColumnIDs: []models.ColumnID{}}
	require.NoError(t, st.CreateBoard(ctx, b))
	require.False(t, b.ID.IsZero(), "Create assigns an ID")

	got, err := st.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Name, got.Name)
	assert.Equal(t, b.Description, got.Description)

	b.Name = "Sprint 2"
	require.NoError(t, st.PutBoard(ctx, b))
	got, err = st.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sprint 2", got.Name)

	boards, err := st.ListBoards(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, b.ID, boards[0].ID)

	require.NoError(t, st.DeleteBoard(ctx, b.ID))
	_, err = st.GetBoard(ctx, b.ID)
	assert.True(t, store.IsNotFound(err))
	boards, err = st.ListBoards(ctx)
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func testBoardNotFound(t *testing.T, st store.Store) {
	ctx := context.Background()
	id := models.NewBoardID()

	_, err := st.GetBoard(ctx, id)
	assert.True(t, store.IsNotFound(err))
	assert.True(t, store.IsNotFound(st.PutBoard(ctx, &models.Board{ID: id, Name: "x"})))
	assert.True(t, store.IsNotFound(st.DeleteBoard(ctx, id)))
}

func testColumnLifecycle(t *testing.T, st store.Store) {
	ctx := context.Background()
	b := &models.Board{Name: "b"}
	require.NoError(t, st.CreateBoard(ctx, b))

	col := &models.Column{Name: "Todo", BoardID: b.ID, CardIDs: []models.CardID{}}
	require.NoError(t, st.CreateColumn(ctx, col))
	require.False(t, col.ID.IsZero())

	cols, err := st.ListColumnsByBoard(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, cols, 1)
	assert.Equal(t, col.ID, cols[0].ID)

	col.Name = "Backlog"
	require.NoError(t, st.PutColumn(ctx, col))
	got, err := st.GetColumn(ctx, col.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backlog", got.Name)

	require.NoError(t, st.DeleteColumn(ctx, col.ID))
	_, err = st.GetColumn(ctx, col.ID)
	assert.True(t, store.IsNotFound(err))
	cols, err = st.ListColumnsByBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, cols)
	assert.True(t, store.IsNotFound(st.DeleteColumn(ctx, col.ID)))
}

func testCardLifecycle(t *testing.T, st store.Store) {
	ctx := context.Background()
	col := &models.Column{Name: "Todo", BoardID: models.NewBoardID()}
	require.NoError(t, st.CreateColumn(ctx, col))

	card := &models.Card{Title: "task", Description: "d", ColumnID: col.ID}
	require.NoError(t, st.CreateCard(ctx, card))
	require.False(t, card.ID.IsZero())

	cards, err := st.ListCardsByColumn(ctx, col.ID)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, card.ID, cards[0].ID)

	card.Title = "renamed"
	require.NoError(t, st.PutCard(ctx, card))
	got, err := st.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)

	require.NoError(t, st.DeleteCard(ctx, card.ID))
	_, err = st.GetCard(ctx, card.ID)
	assert.True(t, store.IsNotFound(err))
	cards, err = st.ListCardsByColumn(ctx, col.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)
	assert.True(t, store.IsNotFound(st.DeleteCard(ctx, card.ID)))
}

// testCardReindex verifies that rewriting a card with a new ColumnID
// moves it between the column indexes.
func testCardReindex(t *testing.T, st store.Store) {
	ctx := context.Background()
	a := &models.Column{Name: "a", BoardID: models.NewBoardID()}
	b := &models.Column{Name: "b", BoardID: a.BoardID}
	require.NoError(t, st.CreateColumn(ctx, a))
	require.NoError(t, st.CreateColumn(ctx, b))

	card := &models.Card{Title: "task", ColumnID: a.ID}
	require.NoError(t, st.CreateCard(ctx, card))

	card.ColumnID = b.ID
	require.NoError(t, st.PutCard(ctx, card))

	inA, err := st.ListCardsByColumn(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, inA)
	inB, err := st.ListCardsByColumn(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, inB, 1)
	assert.Equal(t, card.ID, inB[0].ID)
}

// testGetReturnsCopies verifies mutating a returned entity does not leak
// into the store.
func testGetReturnsCopies(t *testing.T, st store.Store) {
	ctx := context.Background()
	b := &models.Board{Name: "original", ColumnIDs: []models.ColumnID{models.NewColumnID()}}
	require.NoError(t, st.CreateBoard(ctx, b))

	got, err := st.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	got.Name = "mutated"
	got.ColumnIDs[0] = models.NewColumnID()

	again, err := st.GetBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", again.Name)
	assert.Equal(t, b.ColumnIDs, again.ColumnIDs)
}
