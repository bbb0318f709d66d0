package models

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// Typed IDs keep board, column and card identifiers from being mixed up at
// compile time. On the wire every ID is its canonical UUID string, in both
// JSON and CBOR encodings.

// BoardID identifies a board.
type BoardID struct {
	uuid uuid.UUID
}

func NewBoardID() BoardID {
	return BoardID{uuid: uuid.New()}
}

func ParseBoardID(s string) (BoardID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return BoardID{}, fmt.Errorf("invalid board ID: %w", err)
	}
	return BoardID{uuid: id}, nil
}

func (b BoardID) String() string { return b.uuid.String() }
func (b BoardID) IsZero() bool   { return b.uuid == uuid.Nil }

func (b BoardID) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.uuid.String())
}

func (b *BoardID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, "board", &b.uuid)
}

func (b BoardID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(b.uuid.String())
}

func (b *BoardID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "board", &b.uuid)
}

// ColumnID identifies a column.
type ColumnID struct {
	uuid uuid.UUID
}

func NewColumnID() ColumnID {
	return ColumnID{uuid: uuid.New()}
}

func ParseColumnID(s string) (ColumnID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ColumnID{}, fmt.Errorf("invalid column ID: %w", err)
	}
	return ColumnID{uuid: id}, nil
}

func (c ColumnID) String() string { return c.uuid.String() }
func (c ColumnID) IsZero() bool   { return c.uuid == uuid.Nil }

func (c ColumnID) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.uuid.String())
}

func (c *ColumnID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, "column", &c.uuid)
}

func (c ColumnID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(c.uuid.String())
}

func (c *ColumnID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "column", &c.uuid)
}

// CardID identifies a card.
type CardID struct {
	uuid uuid.UUID
}

func NewCardID() CardID {
	return CardID{uuid: uuid.New()}
}

func ParseCardID(s string) (CardID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return CardID{}, fmt.Errorf("invalid card ID: %w", err)
	}
	return CardID{uuid: id}, nil
}

func (c CardID) String() string { return c.uuid.String() }
func (c CardID) IsZero() bool   { return c.uuid == uuid.Nil }

func (c CardID) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.uuid.String())
}

func (c *CardID) UnmarshalJSON(data []byte) error {
	return unmarshalJSONID(data, "card", &c.uuid)
}

func (c CardID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(c.uuid.String())
}

func (c *CardID) UnmarshalCBOR(data []byte) error {
	return unmarshalCBORID(data, "card", &c.uuid)
}

func unmarshalJSONID(data []byte, kind string, dst *uuid.UUID) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid %s ID: %w", kind, err)
	}
	return assignID(s, kind, dst)
}

func unmarshalCBORID(data []byte, kind string, dst *uuid.UUID) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid %s ID: %w", kind, err)
	}
	return assignID(s, kind, dst)
}

func assignID(s, kind string, dst *uuid.UUID) error {
	// An empty string decodes to the zero ID so clients may omit optional
	// ID fields.
	if s == "" {
		*dst = uuid.Nil
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid %s ID: %w", kind, err)
	}
	*dst = id
	return nil
}
