package gateway

import (
	"context"
	"errors"

	"github.com/tablero-app/tablero/internal/board"
	"github.com/tablero-app/tablero/internal/codec"
	"github.com/tablero-app/tablero/pkg/models"
	"github.com/tablero-app/tablero/pkg/protocol"
)

// dispatch routes one inbound message. Every operation follows the same
// shape: decode and validate the typed request, invoke the coordinator,
// resolve the affected board through the mutated entity's ownership
// chain, publish the committed event to that board's room, then
// acknowledge the initiator. Failures become an error acknowledgement to
// the initiator only — they are never broadcast.
func (s *Server) dispatch(c *client, data []byte) {
	var env protocol.Envelope
	if err := s.codec.Unmarshal(data, &env); err != nil {
		s.sendError(c, "", &protocol.Error{Code: protocol.CodeBadRequest, Message: "malformed message"})
		return
	}

	switch env.Method {
	case protocol.MethodJoinBoard:
		s.handleJoinBoard(c, env.ID, data)
	case protocol.MethodLeaveBoard:
		s.handleLeaveBoard(c, env.ID, data)
	case protocol.MethodUserConnected:
		s.handleUserConnected(c, env.ID, data)
	case protocol.MethodCreateCard:
		s.handleCreateCard(c, env.ID, data)
	case protocol.MethodUpdateCard:
		s.handleUpdateCard(c, env.ID, data)
	case protocol.MethodDeleteCard:
		s.handleDeleteCard(c, env.ID, data)
	case protocol.MethodMoveCard:
		s.handleMoveCard(c, env.ID, data)
	case protocol.MethodCreateColumn:
		s.handleCreateColumn(c, env.ID, data)
	case protocol.MethodUpdateColumn:
		s.handleUpdateColumn(c, env.ID, data)
	case protocol.MethodDeleteColumn:
		s.handleDeleteColumn(c, env.ID, data)
	case protocol.MethodUpdateBoard:
		s.handleUpdateBoard(c, env.ID, data)
	default:
		s.sendError(c, env.ID, &protocol.Error{
			Code:    protocol.CodeBadRequest,
			Message: "unknown method " + env.Method,
		})
	}
}

func (s *Server) handleJoinBoard(c *client, id string, data []byte) {
	params, perr := decodeParams[protocol.JoinBoardParams](s.codec, data)
	if perr != nil {
		s.sendError(c, id, perr)
		return
	}

	// Join before reading the snapshot: events committed while the
	// snapshot is assembled are queued behind it, so the client misses
	// nothing between snapshot and stream.
	s.reg.Join(c.id, params.BoardID)
	view, err := s.coord.FindBoard(context.Background(), params.BoardID)
	if err != nil {
		s.reg.Leave(c.id, params.BoardID)
		s.sendError(c, id, wireError(err))
		return
	}

	if identity := s.reg.Identity(c.id); identity != "" {
		s.disp.Publish(params.BoardID, protocol.EventUserJoined, protocol.PresenceEvent{Username: identity})
	}
	sendResult(s, c, id, view)
}

func (s *Server) handleLeaveBoard(c *client, id string, data []byte) {
	params, perr := decodeParams[protocol.LeaveBoardParams](s.codec, data)
	if perr != nil {
		s.sendError(c, id, perr)
		return
	}
	s.reg.Leave(c.id, params.BoardID)
	sendResult(s, c, id, &protocol.SuccessResult{Success: true})
}

func (s *Server) handleUserConnected(c *client, id string, data []byte) {
	params, perr := decodeParams[protocol.UserConnectedParams](s.codec, data)
	if perr != nil {
		s.sendError(c, id, perr)
		return
	}
	s.reg.Identify(c.id, params.Username)
	sendResult(s, c, id, &protocol.SuccessResult{Success: true})
}

func (s *Server) handleCreateCard(c *client, id string, data []byte) {
	params, perr := decodeParams[protocol.CreateCardParams](s.codec, data)
	if perr != nil {
		s.sendError(c, id, perr)
		return
	}
	ctx := context.Background()
	card, err := s.coord.CreateCard(ctx, params.ColumnID, params.Title, params.Description)
	if err != nil {
		s.sendError(c, id, wireError(err))
		return
	}
	if boardID, err := s.coord.BoardOfColumn(ctx, card.ColumnID); err == nil {
		s.disp.Publish(boardID, protocol.EventCardCreated, card)
	}
	sendResult(s, c, id, card)
}

func (s *Server) handleUpdateCard(c *client, id string, data []byte) {
	params, perr := decodeParams[protocol.UpdateCardParams](s.codec, data)
	if perr != nil {
		s.sendError(c, id, perr)
		return
	}
	ctx := context.Background()
	card, err := s.coord.UpdateCard(ctx, params.CardID, params.Updates)
	if err != nil {
		s.sendError(c, id, wireError(err))
		return
	}
	if boardID, err := s.coord.BoardOfColumn(ctx, card.ColumnID); err == nil {
		s.disp.Publish(boardID, protocol.EventCardUpdated, card)
	}
	sendResult(s, c, id, card)
}

func (s *Server) handleDeleteCard(c *client, id string, data []byte) {
	params, perr := decodeParams[protocol.DeleteCardParams](s.codec, data)
	if perr != nil {
		s.sendError(c, id, perr)
		return
	}
	ctx := context.Background()
	// Resolve the board while the ownership chain still exists.
	boardID, chainErr := s.coord.BoardOfCard(ctx, params.CardID)
	if err := s.coord.DeleteCard(ctx, params.CardID); err != nil {
		s.sendError(c, id, wireError(err))
		return
	}
	if chainErr == nil {
		s.disp.Publish(boardID, protocol.EventCardDeleted, protocol.CardDeletedEvent{CardID: params.CardID})
	}
	sendResult(s, c, id, &protocol.SuccessResult{Success: true})
}

func (s *Server) handleMoveCard(c *client, id string, data []byte) {
	params, perr := decodeParams[protocol.MoveCardParams](s.codec, data)
	if perr != nil {
		s.sendError(c, id, perr)
		return
	}
	ctx := context.Background()
	card, err := s.coord.MoveCard(ctx, params.CardID,
		params.SourceColumnID, params.DestinationColumnID,
		params.SourceIndex, params.DestinationIndex)
	if err != nil {
		s.sendError(c, id, wireError(err))
		return
	}
	if boardID, err := s.coord.BoardOfColumn(ctx, params.DestinationColumnID); err == nil {
		s.disp.Publish(boardID, protocol.EventCardMoved, protocol.CardMovedEvent{
			CardID:              params.CardID,
			SourceColumnID:      params.SourceColumnID,
			DestinationColumnID: params.DestinationColumnID,
			Card:                card,
		})
	}
	sendResult(s, c, id, &protocol.MoveCardResult{Success: true, Card: card})
}

func (s *Server) handleCreateColumn(c *client, id string, data []byte) {
	params, perr := decodeParams[protocol.CreateColumnParams](s.codec, data)
	if perr != nil {
		s.sendError(c, id, perr)
		return
	}
	col, err := s.coord.CreateColumn(context.Background(), params.BoardID, params.Name)
	if err != nil {
		s.sendError(c, id, wireError(err))
		return
	}
	s.disp.Publish(col.BoardID, protocol.EventColumnCreated, col)
	sendResult(s, c, id, col)
}

func (s *Server) handleUpdateColumn(c *client, id string, data []byte) {
	params, perr := decodeParams[protocol.UpdateColumnParams](s.codec, data)
	if perr != nil {
		s.sendError(c, id, perr)
		return
	}
	col, err := s.coord.UpdateColumn(context.Background(), params.ColumnID, models.ColumnPatch{Name: &params.Name})
	if err != nil {
		s.sendError(c, id, wireError(err))
		return
	}
	s.disp.Publish(col.BoardID, protocol.EventColumnUpdated, col)
	sendResult(s, c, id, col)
}

func (s *Server) handleDeleteColumn(c *client, id string, data []byte) {
	params, perr := decodeParams[protocol.DeleteColumnParams](s.codec, data)
	if perr != nil {
		s.sendError(c, id, perr)
		return
	}
	ctx := context.Background()
	boardID, chainErr := s.coord.BoardOfColumn(ctx, params.ColumnID)
	if err := s.coord.DeleteColumn(ctx, params.ColumnID); err != nil {
		s.sendError(c, id, wireError(err))
		return
	}
	if chainErr == nil {
		s.disp.Publish(boardID, protocol.EventColumnDeleted, protocol.ColumnDeletedEvent{ColumnID: params.ColumnID})
	}
	sendResult(s, c, id, &protocol.SuccessResult{Success: true})
}

func (s *Server) handleUpdateBoard(c *client, id string, data []byte) {
	params, perr := decodeParams[protocol.UpdateBoardParams](s.codec, data)
	if perr != nil {
		s.sendError(c, id, perr)
		return
	}
	b, err := s.coord.UpdateBoard(context.Background(), params.BoardID, params.Updates)
	if err != nil {
		s.sendError(c, id, wireError(err))
		return
	}
	s.disp.Publish(b.ID, protocol.EventBoardUpdated, b)
	sendResult(s, c, id, b)
}

type validator interface {
	Validate() error
}

// decodeParams re-decodes the raw message as the method's typed request
// and validates the params shape.
func decodeParams[P any, PP interface {
	*P
	validator
}](cd codec.Codec, data []byte) (*P, *protocol.Error) {
	var req protocol.Request[P]
	if err := cd.Unmarshal(data, &req); err != nil {
		return nil, &protocol.Error{Code: protocol.CodeBadRequest, Message: "malformed params"}
	}
	if err := PP(&req.Params).Validate(); err != nil {
		var perr *protocol.Error
		if errors.As(err, &perr) {
			return nil, perr
		}
		return nil, &protocol.Error{Code: protocol.CodeValidation, Message: err.Error()}
	}
	return &req.Params, nil
}

func sendResult[T any](s *Server, c *client, id string, result *T) {
	data, err := s.codec.Marshal(protocol.Response[T]{ID: id, Result: result})
	if err != nil {
		s.log.Error("encode ack", "conn", c.id, "error", err.Error())
		return
	}
	c.enqueue(data)
}

func (s *Server) sendError(c *client, id string, werr *protocol.Error) {
	data, err := s.codec.Marshal(protocol.Response[struct{}]{ID: id, Error: werr})
	if err != nil {
		s.log.Error("encode error ack", "conn", c.id, "error", err.Error())
		return
	}
	c.enqueue(data)
}

// wireError converts coordinator errors into acknowledgement errors.
func wireError(err error) *protocol.Error {
	var nf *board.NotFoundError
	if errors.As(err, &nf) {
		return &protocol.Error{Code: protocol.CodeNotFound, Message: nf.Error()}
	}
	var ve *board.ValidationError
	if errors.As(err, &ve) {
		return &protocol.Error{Code: protocol.CodeValidation, Message: ve.Error()}
	}
	var ce *board.ConflictError
	if errors.As(err, &ce) {
		return &protocol.Error{Code: protocol.CodeConflict, Message: ce.Error()}
	}
	var pe *protocol.Error
	if errors.As(err, &pe) {
		return pe
	}
	return &protocol.Error{Code: protocol.CodeInternal, Message: "internal error"}
}
