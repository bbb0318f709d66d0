package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablero-app/tablero/internal/board"
	"github.com/tablero-app/tablero/internal/httpapi"
	"github.com/tablero-app/tablero/internal/room"
	"github.com/tablero-app/tablero/internal/store/memory"
	"github.com/tablero-app/tablero/pkg/models"
	"github.com/tablero-app/tablero/pkg/protocol"
)

type fixture struct {
	coord  *board.Coordinator
	reg    *room.Registry
	server *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	coord := board.New(memory.New(), nil)
	reg := room.NewRegistry()
	disp := room.NewDispatcher(reg, nil)
	api := httpapi.New(coord, disp, nil)
	srv := httptest.NewServer(api.Router())
	t.Cleanup(srv.Close)
	return &fixture{coord: coord, reg: reg, server: srv}
}

func (f *fixture) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != "" {
		req, err = http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	} else {
		req, err = http.NewRequest(method, f.server.URL+path, nil)
	}
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) *T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return &v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	res := f.do(t, "GET", "/api/health", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	body := decode[map[string]string](t, res)
	assert.Equal(t, "ok", (*body)["status"])
}

func TestCreateAndListBoards(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, "POST", "/api/boards", `{"name":"Sprint 1","description":"d"}`)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	created := decode[models.Board](t, res)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "Sprint 1", created.Name)

	res = f.do(t, "GET", "/api/boards", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	boards := decode[[]models.Board](t, res)
	require.Len(t, *boards, 1)
	assert.Equal(t, created.ID, (*boards)[0].ID)
}

func TestCreateBoardRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, "POST", "/api/boards", `{not json`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = f.do(t, "POST", "/api/boards", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestGetBoardView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.coord.CreateBoard(ctx, "Sprint 1", "")
	require.NoError(t, err)
	col, err := f.coord.CreateColumn(ctx, b.ID, "Todo")
	require.NoError(t, err)
	_, err = f.coord.CreateCard(ctx, col.ID, "task", "")
	require.NoError(t, err)

	res := f.do(t, "GET", "/api/boards/"+b.ID.String(), "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	view := decode[models.BoardView](t, res)
	require.Len(t, view.Columns, 1)
	require.Len(t, view.Columns[0].Cards, 1)
	assert.Equal(t, "task", view.Columns[0].Cards[0].Title)
}

func TestGetBoardErrors(t *testing.T) {
	f := newFixture(t)

	res := f.do(t, "GET", "/api/boards/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = f.do(t, "GET", "/api/boards/"+models.NewBoardID().String(), "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

// memberSub records events like a live connection would.
type memberSub struct {
	id string

	mu     sync.Mutex
	events []room.Event
}

func (m *memberSub) ID() string { return m.id }
func (m *memberSub) Notify(ev room.Event) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()
}

func TestDeleteBoardAnnouncesToRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.coord.CreateBoard(ctx, "Sprint 1", "")
	require.NoError(t, err)
	_, err = f.coord.CreateColumn(ctx, b.ID, "Todo")
	require.NoError(t, err)

	member := &memberSub{id: "m1"}
	f.reg.Register(member)
	require.True(t, f.reg.Join(member.ID(), b.ID))

	res := f.do(t, "DELETE", "/api/boards/"+b.ID.String(), "")
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	member.mu.Lock()
	defer member.mu.Unlock()
	require.Len(t, member.events, 1)
	assert.Equal(t, protocol.EventBoardDeleted, member.events[0].Kind)

	_, err = f.coord.FindBoard(ctx, b.ID)
	assert.True(t, board.IsNotFound(err))
}

func TestDeleteMissingBoard(t *testing.T) {
	f := newFixture(t)
	res := f.do(t, "DELETE", "/api/boards/"+models.NewBoardID().String(), "")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}
