// Package models defines the board, column and card entities shared by the
// store, the coordinator, the gateway and the client.
//
// Ownership is denormalized in both directions: a parent holds an ordered
// list of child IDs and each child holds a back-reference to its parent.
// The position of an ID inside the parent's list is the only ordering
// signal; there is no separate rank field. Keeping both sides of the
// relationship consistent is the job of the board coordinator — nothing
// else may write the cross-references.
package models

// Board is the top-level container. It owns its columns; a column belongs
// to exactly one board.
type Board struct {
	ID          BoardID    `json:"id" cbor:"id"`
	Name        string     `json:"name" cbor:"name"`
	Description string     `json:"description,omitempty" cbor:"description,omitempty"`
	ColumnIDs   []ColumnID `json:"columnIds" cbor:"columnIds"`
}

// Column belongs to one board and owns an ordered list of cards.
type Column struct {
	ID      ColumnID `json:"id" cbor:"id"`
	Name    string   `json:"name" cbor:"name"`
	BoardID BoardID  `json:"boardId" cbor:"boardId"`
	CardIDs []CardID `json:"cardIds" cbor:"cardIds"`
}

// Card belongs to exactly one column at any time.
type Card struct {
	ID          CardID   `json:"id" cbor:"id"`
	Title       string   `json:"title" cbor:"title"`
	Description string   `json:"description,omitempty" cbor:"description,omitempty"`
	ColumnID    ColumnID `json:"columnId" cbor:"columnId"`
}

// BoardView is the denormalized projection of a board: column and card ID
// lists resolved into full objects, in list order. It is what join_board
// acks with and what the board API serves.
type BoardView struct {
	Board
	Columns []ColumnView `json:"columns" cbor:"columns"`
}

// ColumnView is a column with its cards resolved, in list order.
type ColumnView struct {
	Column
	Cards []Card `json:"cards" cbor:"cards"`
}

// BoardPatch is a partial board update. Nil fields are left unchanged.
type BoardPatch struct {
	Name        *string `json:"name,omitempty" cbor:"name,omitempty"`
	Description *string `json:"description,omitempty" cbor:"description,omitempty"`
}

// ColumnPatch is a partial column update. Nil fields are left unchanged.
type ColumnPatch struct {
	Name *string `json:"name,omitempty" cbor:"name,omitempty"`
}

// CardPatch is a partial card update. Nil fields are left unchanged.
// Setting ColumnID relocates the card to the end of the target column.
type CardPatch struct {
	Title       *string   `json:"title,omitempty" cbor:"title,omitempty"`
	Description *string   `json:"description,omitempty" cbor:"description,omitempty"`
	ColumnID    *ColumnID `json:"columnId,omitempty" cbor:"columnId,omitempty"`
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	cp := *b
	cp.ColumnIDs = append([]ColumnID(nil), b.ColumnIDs...)
	return &cp
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	cp := *c
	cp.CardIDs = append([]CardID(nil), c.CardIDs...)
	return &cp
}

// Clone returns a copy of the card.
func (c *Card) Clone() *Card {
	cp := *c
	return &cp
}
