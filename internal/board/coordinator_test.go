package board_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablero-app/tablero/internal/board"
	"github.com/tablero-app/tablero/internal/store"
	"github.com/tablero-app/tablero/internal/store/memory"
	"github.com/tablero-app/tablero/pkg/models"
)

func newCoordinator(t *testing.T) (*board.Coordinator, store.Store) {
	t.Helper()
	st := memory.New()
	return board.New(st, nil), st
}

// seedBoard builds a board with the given columns and returns them in
// creation order.
func seedBoard(t *testing.T, c *board.Coordinator, name string, columns ...string) (*models.Board, []*models.Column) {
	t.Helper()
	ctx := context.Background()
	b, err := c.CreateBoard(ctx, name, "")
	require.NoError(t, err)
	cols := make([]*models.Column, 0, len(columns))
	for _, colName := range columns {
		col, err := c.CreateColumn(ctx, b.ID, colName)
		require.NoError(t, err)
		cols = append(cols, col)
	}
	return b, cols
}

func strptr(s string) *string { return &s }

func TestCreateBoard(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()

	b, err := c.CreateBoard(ctx, "Sprint 1", "first sprint")
	require.NoError(t, err)
	assert.False(t, b.ID.IsZero())
	assert.Equal(t, "Sprint 1", b.Name)
	assert.Empty(t, b.ColumnIDs)

	_, err = c.CreateBoard(ctx, "", "")
	assert.True(t, board.IsValidation(err))
}

func TestCreateColumnLinksBoard(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()
	b, cols := seedBoard(t, c, "Sprint 1", "Todo", "Doing", "Done")

	view, err := c.FindBoard(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, view.Columns, 3)
	for i, name := range []string{"Todo", "Doing", "Done"} {
		assert.Equal(t, name, view.Columns[i].Name)
		assert.Equal(t, cols[i].ID, view.Columns[i].ID)
		assert.Equal(t, b.ID, view.Columns[i].BoardID)
	}
}

func TestCreateColumnMissingBoard(t *testing.T) {
	c, _ := newCoordinator(t)

	_, err := c.CreateColumn(context.Background(), models.NewBoardID(), "Todo")
	assert.True(t, board.IsNotFound(err))
}

func TestCreateCardLinksColumn(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()
	b, cols := seedBoard(t, c, "Sprint 1", "Todo")

	first, err := c.CreateCard(ctx, cols[0].ID, "write tests", "")
	require.NoError(t, err)
	second, err := c.CreateCard(ctx, cols[0].ID, "review", "soon")
	require.NoError(t, err)

	view, err := c.FindBoard(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, view.Columns[0].Cards, 2)
	assert.Equal(t, first.ID, view.Columns[0].Cards[0].ID)
	assert.Equal(t, second.ID, view.Columns[0].Cards[1].ID)
	assert.Equal(t, cols[0].ID, view.Columns[0].Cards[0].ColumnID)
}

func TestCreateCardMissingColumn(t *testing.T) {
	c, _ := newCoordinator(t)

	_, err := c.CreateCard(context.Background(), models.NewColumnID(), "orphan", "")
	assert.True(t, board.IsNotFound(err))
}

func TestUpdateBoard(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()
	b, _ := seedBoard(t, c, "Sprint 1")

	updated, err := c.UpdateBoard(ctx, b.ID, models.BoardPatch{Name: strptr("Sprint 2")})
	require.NoError(t, err)
	assert.Equal(t, "Sprint 2", updated.Name)

	_, err = c.UpdateBoard(ctx, b.ID, models.BoardPatch{Name: strptr("")})
	assert.True(t, board.IsValidation(err))

	_, err = c.UpdateBoard(ctx, models.NewBoardID(), models.BoardPatch{})
	assert.True(t, board.IsNotFound(err))
}

func TestUpdateCardFields(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()
	_, cols := seedBoard(t, c, "Sprint 1", "Todo")
	card, err := c.CreateCard(ctx, cols[0].ID, "draft", "old")
	require.NoError(t, err)

	updated, err := c.UpdateCard(ctx, card.ID, models.CardPatch{
		Title:       strptr("final"),
		Description: strptr("new"),
	})
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, "new", updated.Description)
	// Untouched fields stay put.
	assert.Equal(t, cols[0].ID, updated.ColumnID)
}

func TestUpdateCardRelocates(t *testing.T) {
	c, st := newCoordinator(t)
	ctx := context.Background()
	_, cols := seedBoard(t, c, "Sprint 1", "Todo", "Doing")
	card, err := c.CreateCard(ctx, cols[0].ID, "task", "")
	require.NoError(t, err)

	updated, err := c.UpdateCard(ctx, card.ID, models.CardPatch{ColumnID: &cols[1].ID})
	require.NoError(t, err)
	assert.Equal(t, cols[1].ID, updated.ColumnID)

	src, err := st.GetColumn(ctx, cols[0].ID)
	require.NoError(t, err)
	assert.NotContains(t, src.CardIDs, card.ID)
	dst, err := st.GetColumn(ctx, cols[1].ID)
	require.NoError(t, err)
	assert.Equal(t, []models.CardID{card.ID}, dst.CardIDs)
}

func TestUpdateCardInvalidPatchWritesNothing(t *testing.T) {
	c, st := newCoordinator(t)
	ctx := context.Background()
	_, cols := seedBoard(t, c, "Sprint 1", "Todo", "Doing")
	card, err := c.CreateCard(ctx, cols[0].ID, "task", "")
	require.NoError(t, err)

	// A patch that both relocates and carries an empty title must be
	// rejected whole: neither column list may change.
	_, err = c.UpdateCard(ctx, card.ID, models.CardPatch{
		ColumnID: &cols[1].ID,
		Title:    strptr(""),
	})
	assert.True(t, board.IsValidation(err))

	src, err := st.GetColumn(ctx, cols[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []models.CardID{card.ID}, src.CardIDs)
	dst, err := st.GetColumn(ctx, cols[1].ID)
	require.NoError(t, err)
	assert.Empty(t, dst.CardIDs)

	stored, err := st.GetCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, cols[0].ID, stored.ColumnID)
	assert.Equal(t, "task", stored.Title)
}

func TestUpdateCardMissingTargetColumn(t *testing.T) {
	c, st := newCoordinator(t)
	ctx := context.Background()
	_, cols := seedBoard(t, c, "Sprint 1", "Todo")
	card, err := c.CreateCard(ctx, cols[0].ID, "task", "")
	require.NoError(t, err)

	missing := models.NewColumnID()
	_, err = c.UpdateCard(ctx, card.ID, models.CardPatch{ColumnID: &missing})
	assert.True(t, board.IsNotFound(err))

	// The failed relocation touched nothing.
	src, err := st.GetColumn(ctx, cols[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []models.CardID{card.ID}, src.CardIDs)
}

func TestDeleteCardUnlinks(t *testing.T) {
	c, st := newCoordinator(t)
	ctx := context.Background()
	b, cols := seedBoard(t, c, "Sprint 1", "Todo")
	card, err := c.CreateCard(ctx, cols[0].ID, "task", "")
	require.NoError(t, err)

	require.NoError(t, c.DeleteCard(ctx, card.ID))

	_, err = st.GetCard(ctx, card.ID)
	assert.True(t, store.IsNotFound(err))
	view, err := c.FindBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Columns[0].Cards)

	err = c.DeleteCard(ctx, card.ID)
	assert.True(t, board.IsNotFound(err))
}

func TestDeleteColumnCascades(t *testing.T) {
	c, st := newCoordinator(t)
	ctx := context.Background()
	b, cols := seedBoard(t, c, "Sprint 1", "Todo", "Doing")
	card1, err := c.CreateCard(ctx, cols[0].ID, "one", "")
	require.NoError(t, err)
	card2, err := c.CreateCard(ctx, cols[0].ID, "two", "")
	require.NoError(t, err)
	keep, err := c.CreateCard(ctx, cols[1].ID, "keep", "")
	require.NoError(t, err)

	require.NoError(t, c.DeleteColumn(ctx, cols[0].ID))

	_, err = st.GetCard(ctx, card1.ID)
	assert.True(t, store.IsNotFound(err))
	_, err = st.GetCard(ctx, card2.ID)
	assert.True(t, store.IsNotFound(err))

	view, err := c.FindBoard(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, view.Columns, 1)
	assert.Equal(t, cols[1].ID, view.Columns[0].ID)
	require.Len(t, view.Columns[0].Cards, 1)
	assert.Equal(t, keep.ID, view.Columns[0].Cards[0].ID)
}

func TestDeleteBoardCascades(t *testing.T) {
	c, st := newCoordinator(t)
	ctx := context.Background()
	b, cols := seedBoard(t, c, "Sprint 1", "Todo", "Doing")
	card, err := c.CreateCard(ctx, cols[0].ID, "task", "")
	require.NoError(t, err)

	require.NoError(t, c.DeleteBoard(ctx, b.ID))

	_, err = st.GetBoard(ctx, b.ID)
	assert.True(t, store.IsNotFound(err))
	for _, col := range cols {
		_, err = st.GetColumn(ctx, col.ID)
		assert.True(t, store.IsNotFound(err))
	}
	_, err = st.GetCard(ctx, card.ID)
	assert.True(t, store.IsNotFound(err))

	err = c.DeleteBoard(ctx, b.ID)
	assert.True(t, board.IsNotFound(err))
}

func TestFindBoardSkipsMissingChildren(t *testing.T) {
	c, st := newCoordinator(t)
	ctx := context.Background()
	b, cols := seedBoard(t, c, "Sprint 1", "Todo", "Doing")
	card, err := c.CreateCard(ctx, cols[0].ID, "task", "")
	require.NoError(t, err)

	// Delete the children behind the coordinator's back: the stale IDs
	// stay in the parents' lists but the projection must not show them.
	require.NoError(t, st.DeleteCard(ctx, card.ID))
	require.NoError(t, st.DeleteColumn(ctx, cols[1].ID))

	view, err := c.FindBoard(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, view.Columns, 1)
	assert.Equal(t, cols[0].ID, view.Columns[0].ID)
	assert.Empty(t, view.Columns[0].Cards)
}

func TestListBoardsSorted(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		_, err := c.CreateBoard(ctx, name, "")
		require.NoError(t, err)
	}

	boards, err := c.ListBoards(ctx)
	require.NoError(t, err)
	require.Len(t, boards, 3)
	assert.Equal(t, "alpha", boards[0].Name)
	assert.Equal(t, "mid", boards[1].Name)
	assert.Equal(t, "zeta", boards[2].Name)
}

func TestBoardOfCard(t *testing.T) {
	c, _ := newCoordinator(t)
	ctx := context.Background()
	b, cols := seedBoard(t, c, "Sprint 1", "Todo")
	card, err := c.CreateCard(ctx, cols[0].ID, "task", "")
	require.NoError(t, err)

	got, err := c.BoardOfCard(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got)

	_, err = c.BoardOfCard(ctx, models.NewCardID())
	assert.True(t, board.IsNotFound(err))
}

// failingStore wraps a Store and fails selected operations, to exercise
// the compensation path of two-document writes.
type failingStore struct {
	store.Store
	failPutBoard  bool
	failPutColumn bool
}

var errInjected = errors.New("injected failure")

func (f *failingStore) PutBoard(ctx context.Context, b *models.Board) error {
	if f.failPutBoard {
		return errInjected
	}
	return f.Store.PutBoard(ctx, b)
}

func (f *failingStore) PutColumn(ctx context.Context, c *models.Column) error {
	if f.failPutColumn {
		return errInjected
	}
	return f.Store.PutColumn(ctx, c)
}

func TestCreateColumnCompensatesFailedLink(t *testing.T) {
	st := memory.New()
	fs := &failingStore{Store: st}
	c := board.New(fs, nil)
	ctx := context.Background()

	b, err := c.CreateBoard(ctx, "Sprint 1", "")
	require.NoError(t, err)

	fs.failPutBoard = true
	_, err = c.CreateColumn(ctx, b.ID, "Todo")
	require.Error(t, err)
	assert.True(t, board.IsConflict(err))
	assert.ErrorIs(t, err, errInjected)

	// The orphaned column was rolled back.
	fs.failPutBoard = false
	cols, err := st.ListColumnsByBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, cols)
	view, err := c.FindBoard(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Columns)
}

func TestCreateCardCompensatesFailedLink(t *testing.T) {
	st := memory.New()
	fs := &failingStore{Store: st}
	c := board.New(fs, nil)
	ctx := context.Background()

	b, err := c.CreateBoard(ctx, "Sprint 1", "")
	require.NoError(t, err)
	col, err := c.CreateColumn(ctx, b.ID, "Todo")
	require.NoError(t, err)

	fs.failPutColumn = true
	_, err = c.CreateCard(ctx, col.ID, "task", "")
	require.Error(t, err)
	assert.True(t, board.IsConflict(err))

	fs.failPutColumn = false
	cards, err := st.ListCardsByColumn(ctx, col.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)
}
