package protocol

import "github.com/tablero-app/tablero/pkg/models"

// Params schemas, one per method. Validate checks request shape only —
// required fields present, indexes non-negative — before the operation
// reaches the coordinator. Referential checks (does the column exist)
// belong to the coordinator.

type JoinBoardParams struct {
	BoardID models.BoardID `json:"boardId" cbor:"boardId"`
}

func (p *JoinBoardParams) Validate() error {
	if p.BoardID.IsZero() {
		return &Error{Code: CodeValidation, Message: "boardId is required"}
	}
	return nil
}

type LeaveBoardParams struct {
	BoardID models.BoardID `json:"boardId" cbor:"boardId"`
}

func (p *LeaveBoardParams) Validate() error {
	if p.BoardID.IsZero() {
		return &Error{Code: CodeValidation, Message: "boardId is required"}
	}
	return nil
}

type UserConnectedParams struct {
	Username string `json:"username" cbor:"username"`
}

func (p *UserConnectedParams) Validate() error {
	if p.Username == "" {
		return &Error{Code: CodeValidation, Message: "username is required"}
	}
	return nil
}

type CreateCardParams struct {
	ColumnID    models.ColumnID `json:"columnId" cbor:"columnId"`
	Title       string          `json:"title" cbor:"title"`
	Description string          `json:"description,omitempty" cbor:"description,omitempty"`
}

func (p *CreateCardParams) Validate() error {
	if p.ColumnID.IsZero() {
		return &Error{Code: CodeValidation, Message: "columnId is required"}
	}
	if p.Title == "" {
		return &Error{Code: CodeValidation, Message: "title is required"}
	}
	return nil
}

type UpdateCardParams struct {
	CardID  models.CardID    `json:"cardId" cbor:"cardId"`
	Updates models.CardPatch `json:"updates" cbor:"updates"`
}

func (p *UpdateCardParams) Validate() error {
	if p.CardID.IsZero() {
		return &Error{Code: CodeValidation, Message: "cardId is required"}
	}
	if p.Updates.Title != nil && *p.Updates.Title == "" {
		return &Error{Code: CodeValidation, Message: "title must not be empty"}
	}
	return nil
}

type DeleteCardParams struct {
	CardID models.CardID `json:"cardId" cbor:"cardId"`
}

func (p *DeleteCardParams) Validate() error {
	if p.CardID.IsZero() {
		return &Error{Code: CodeValidation, Message: "cardId is required"}
	}
	return nil
}

type MoveCardParams struct {
	CardID              models.CardID   `json:"cardId" cbor:"cardId"`
	SourceColumnID      models.ColumnID `json:"sourceColumnId" cbor:"sourceColumnId"`
	DestinationColumnID models.ColumnID `json:"destinationColumnId" cbor:"destinationColumnId"`
	SourceIndex         int             `json:"sourceIndex" cbor:"sourceIndex"`
	DestinationIndex    int             `json:"destinationIndex" cbor:"destinationIndex"`
}

func (p *MoveCardParams) Validate() error {
	if p.CardID.IsZero() {
		return &Error{Code: CodeValidation, Message: "cardId is required"}
	}
	if p.SourceColumnID.IsZero() {
		return &Error{Code: CodeValidation, Message: "sourceColumnId is required"}
	}
	if p.DestinationColumnID.IsZero() {
		return &Error{Code: CodeValidation, Message: "destinationColumnId is required"}
	}
	if p.SourceIndex < 0 || p.DestinationIndex < 0 {
		return &Error{Code: CodeValidation, Message: "indexes must not be negative"}
	}
	return nil
}

type CreateColumnParams struct {
	BoardID models.BoardID `json:"boardId" cbor:"boardId"`
	Name    string         `json:"name" cbor:"name"`
}

func (p *CreateColumnParams) Validate() error {
	if p.BoardID.IsZero() {
		return &Error{Code: CodeValidation, Message: "boardId is required"}
	}
	if p.Name == "" {
		return &Error{Code: CodeValidation, Message: "name is required"}
	}
	return nil
}

type UpdateColumnParams struct {
	ColumnID models.ColumnID `json:"columnId" cbor:"columnId"`
	Name     string          `json:"name" cbor:"name"`
}

func (p *UpdateColumnParams) Validate() error {
	if p.ColumnID.IsZero() {
		return &Error{Code: CodeValidation, Message: "columnId is required"}
	}
	if p.Name == "" {
		return &Error{Code: CodeValidation, Message: "name is required"}
	}
	return nil
}

type DeleteColumnParams struct {
	ColumnID models.ColumnID `json:"columnId" cbor:"columnId"`
}

func (p *DeleteColumnParams) Validate() error {
	if p.ColumnID.IsZero() {
		return &Error{Code: CodeValidation, Message: "columnId is required"}
	}
	return nil
}

type UpdateBoardParams struct {
	BoardID models.BoardID    `json:"boardId" cbor:"boardId"`
	Updates models.BoardPatch `json:"updates" cbor:"updates"`
}

func (p *UpdateBoardParams) Validate() error {
	if p.BoardID.IsZero() {
		return &Error{Code: CodeValidation, Message: "boardId is required"}
	}
	if p.Updates.Name != nil && *p.Updates.Name == "" {
		return &Error{Code: CodeValidation, Message: "name must not be empty"}
	}
	return nil
}
