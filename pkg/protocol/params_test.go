package protocol_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablero-app/tablero/pkg/models"
	"github.com/tablero-app/tablero/pkg/protocol"
)

func requireValidation(t *testing.T, err error, fragment string) {
	t.Helper()
	var werr *protocol.Error
	require.True(t, errors.As(err, &werr), "expected a protocol error, got %v", err)
	assert.Equal(t, protocol.CodeValidation, werr.Code)
	assert.Contains(t, werr.Message, fragment)
}

func TestJoinBoardParamsValidate(t *testing.T) {
	p := &protocol.JoinBoardParams{}
	requireValidation(t, p.Validate(), "boardId")

	p.BoardID = models.NewBoardID()
	assert.NoError(t, p.Validate())
}

func TestUserConnectedParamsValidate(t *testing.T) {
	p := &protocol.UserConnectedParams{}
	requireValidation(t, p.Validate(), "username")

	p.Username = "ada"
	assert.NoError(t, p.Validate())
}

func TestCreateCardParamsValidate(t *testing.T) {
	p := &protocol.CreateCardParams{Title: "task"}
	requireValidation(t, p.Validate(), "columnId")

	p.ColumnID = models.NewColumnID()
	p.Title = ""
	requireValidation(t, p.Validate(), "title")

	p.Title = "task"
	assert.NoError(t, p.Validate())
}

func TestUpdateCardParamsValidate(t *testing.T) {
	p := &protocol.UpdateCardParams{}
	requireValidation(t, p.Validate(), "cardId")

	p.CardID = models.NewCardID()
	assert.NoError(t, p.Validate(), "an empty patch is a valid no-op")

	empty := ""
	p.Updates.Title = &empty
	requireValidation(t, p.Validate(), "title")
}

func TestMoveCardParamsValidate(t *testing.T) {
	p := &protocol.MoveCardParams{
		CardID:              models.NewCardID(),
		SourceColumnID:      models.NewColumnID(),
		DestinationColumnID: models.NewColumnID(),
	}
	assert.NoError(t, p.Validate())

	p.SourceIndex = -1
	requireValidation(t, p.Validate(), "negative")

	p.SourceIndex = 0
	p.DestinationColumnID = models.ColumnID{}
	requireValidation(t, p.Validate(), "destinationColumnId")

	p.DestinationColumnID = models.NewColumnID()
	p.CardID = models.CardID{}
	requireValidation(t, p.Validate(), "cardId")
}

func TestCreateColumnParamsValidate(t *testing.T) {
	p := &protocol.CreateColumnParams{Name: "Todo"}
	requireValidation(t, p.Validate(), "boardId")

	p.BoardID = models.NewBoardID()
	p.Name = ""
	requireValidation(t, p.Validate(), "name")

	p.Name = "Todo"
	assert.NoError(t, p.Validate())
}

func TestUpdateBoardParamsValidate(t *testing.T) {
	p := &protocol.UpdateBoardParams{}
	requireValidation(t, p.Validate(), "boardId")

	p.BoardID = models.NewBoardID()
	assert.NoError(t, p.Validate())

	empty := ""
	p.Updates.Name = &empty
	requireValidation(t, p.Validate(), "name")
}

func TestErrorMessage(t *testing.T) {
	withMessage := &protocol.Error{Code: protocol.CodeNotFound, Message: "board x not found"}
	assert.Equal(t, "board x not found", withMessage.Error())

	bare := &protocol.Error{Code: protocol.CodeInternal}
	assert.Equal(t, protocol.CodeInternal, bare.Error())
}
