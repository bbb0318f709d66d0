// Package protocol defines the messages exchanged over the real-time
// channel: client requests, per-request acknowledgements and server
// initiated room broadcasts.
//
// Every client operation is a request {id, method, params} answered by
// exactly one acknowledgement {id, result} or {id, error}. Broadcasts
// reuse the envelope with no id: {method: event kind, params: payload}.
// A message without an id is always a broadcast.
package protocol

import "github.com/tablero-app/tablero/pkg/models"

// Method names, one per client-initiated operation.
const (
	MethodJoinBoard     = "join_board"
	MethodLeaveBoard    = "leave_board"
	MethodUserConnected = "user_connected"
	MethodCreateCard    = "createCard"
	MethodUpdateCard    = "updateCard"
	MethodDeleteCard    = "deleteCard"
	MethodMoveCard      = "moveCard"
	MethodCreateColumn  = "createColumn"
	MethodUpdateColumn  = "updateColumn"
	MethodDeleteColumn  = "deleteColumn"
	MethodUpdateBoard   = "updateBoard"
)

// Event kinds carried in the method field of broadcasts.
const (
	EventCardCreated   = "cardCreated"
	EventCardUpdated   = "cardUpdated"
	EventCardDeleted   = "cardDeleted"
	EventCardMoved     = "cardMoved"
	EventColumnCreated = "columnCreated"
	EventColumnUpdated = "columnUpdated"
	EventColumnDeleted = "columnDeleted"
	EventBoardUpdated  = "board_updated"
	EventBoardDeleted  = "boardDeleted"
	EventUserJoined    = "userJoined"
	EventUserLeft      = "userLeft"
)

// Error codes carried in acknowledgement errors.
const (
	CodeNotFound   = "not_found"
	CodeValidation = "validation"
	CodeConflict   = "conflict"
	CodeBadRequest = "bad_request"
	CodeInternal   = "internal"
)

// Error is the error half of an acknowledgement. It is only ever sent to
// the client that initiated the failing operation.
type Error struct {
	Code    string `json:"code" cbor:"code"`
	Message string `json:"message,omitempty" cbor:"message,omitempty"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Envelope is the first-pass decoding of any inbound message: enough to
// route it. Params are decoded in a second pass into the method's typed
// request once the method is known.
type Envelope struct {
	ID     string `json:"id,omitempty" cbor:"id,omitempty"`
	Method string `json:"method" cbor:"method"`
}

// Request is a typed client request. P is the params schema for Method.
type Request[P any] struct {
	ID     string `json:"id" cbor:"id"`
	Method string `json:"method" cbor:"method"`
	Params P      `json:"params" cbor:"params"`
}

// Response is an acknowledgement to a request.
type Response[T any] struct {
	ID     string `json:"id" cbor:"id"`
	Result *T     `json:"result,omitempty" cbor:"result,omitempty"`
	Error  *Error `json:"error,omitempty" cbor:"error,omitempty"`
}

// Notification is a server-initiated broadcast. The zero ID distinguishes
// it from acknowledgements on the wire.
type Notification[P any] struct {
	Method string `json:"method" cbor:"method"`
	Params P      `json:"params" cbor:"params"`
}

// SuccessResult acknowledges operations that return no entity.
type SuccessResult struct {
	Success bool `json:"success" cbor:"success"`
}

// MoveCardResult acknowledges a moveCard operation.
type MoveCardResult struct {
	Success bool         `json:"success" cbor:"success"`
	Card    *models.Card `json:"card,omitempty" cbor:"card,omitempty"`
}

// CardMovedEvent is the payload of a cardMoved broadcast.
type CardMovedEvent struct {
	CardID              models.CardID   `json:"cardId" cbor:"cardId"`
	SourceColumnID      models.ColumnID `json:"sourceColumnId" cbor:"sourceColumnId"`
	DestinationColumnID models.ColumnID `json:"destinationColumnId" cbor:"destinationColumnId"`
	Card                *models.Card    `json:"card" cbor:"card"`
}

// CardDeletedEvent is the payload of a cardDeleted broadcast.
type CardDeletedEvent struct {
	CardID models.CardID `json:"cardId" cbor:"cardId"`
}

// ColumnDeletedEvent is the payload of a columnDeleted broadcast.
type ColumnDeletedEvent struct {
	ColumnID models.ColumnID `json:"columnId" cbor:"columnId"`
}

// BoardDeletedEvent is the payload of a boardDeleted broadcast.
type BoardDeletedEvent struct {
	BoardID models.BoardID `json:"boardId" cbor:"boardId"`
}

// PresenceEvent is the payload of userJoined and userLeft broadcasts.
type PresenceEvent struct {
	Username string `json:"username" cbor:"username"`
}
