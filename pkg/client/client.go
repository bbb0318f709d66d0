// Package client is a Go client for the tablero real-time gateway.
//
// A Client holds one WebSocket connection. Requests are correlated to
// acknowledgements by request ID, so calls from multiple goroutines can
// be in flight at once; server broadcasts are surfaced on the Events
// channel in the order the server sent them.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gorilla "github.com/gorilla/websocket"

	"github.com/tablero-app/tablero/internal/codec"
	"github.com/tablero-app/tablero/internal/rand"
	"github.com/tablero-app/tablero/pkg/logger"
	"github.com/tablero-app/tablero/pkg/models"
	"github.com/tablero-app/tablero/pkg/protocol"
)

const (
	requestIDLength = 16
	eventBufferSize = 64
)

var (
	// ErrTimeout means the acknowledgement did not arrive in time.
	ErrTimeout = errors.New("request timed out")
	// ErrClosed means the connection is gone.
	ErrClosed = errors.New("connection closed")
)

// DefaultDialer is the gorilla dialer used by Connect. Compression is
// enabled to match the gateway's defaults.
var DefaultDialer = &gorilla.Dialer{
	Proxy:             gorilla.DefaultDialer.Proxy,
	HandshakeTimeout:  gorilla.DefaultDialer.HandshakeTimeout,
	EnableCompression: true,
}

// Options configures a Client.
type Options struct {
	// URL is the gateway endpoint, e.g. "ws://localhost:8081".
	URL string
	// Codec must match the wire format the gateway was started with;
	// nil means JSON.
	Codec codec.Codec
	// Timeout bounds each call's wait for an acknowledgement. Zero
	// disables the bound; use context deadlines instead.
	Timeout time.Duration
	// Logger is optional.
	Logger logger.Logger
}

// Event is one server broadcast. Decode its payload with DecodeEvent.
type Event struct {
	Kind string
	raw  []byte
}

// Client is a connection to the gateway.
type Client struct {
	url     string
	cd      codec.Codec
	log     logger.Logger
	timeout time.Duration

	conn    *gorilla.Conn
	writeMu sync.Mutex

	respMu sync.Mutex
	resp   map[string]chan []byte

	events    chan Event
	closeCh   chan struct{}
	closeOnce sync.Once
}

func New(opts Options) *Client {
	cd := opts.Codec
	if cd == nil {
		cd = codec.JSON{}
	}
	lg := opts.Logger
	if lg == nil {
		lg = logger.Nop{}
	}
	return &Client{
		url:     opts.URL,
		cd:      cd,
		log:     lg,
		timeout: opts.Timeout,
		resp:    make(map[string]chan []byte),
		events:  make(chan Event, eventBufferSize),
		closeCh: make(chan struct{}),
	}
}

// Connect dials the gateway and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	if c.url == "" {
		return errors.New("no URL configured")
	}
	conn, res, err := DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.url, err)
	}
	defer res.Body.Close()

	c.conn = conn
	go c.readLoop()
	return nil
}

// Close sends a close frame and tears the connection down. Pending calls
// fail with ErrClosed.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		if c.conn != nil {
			c.writeMu.Lock()
			werr := c.conn.WriteMessage(gorilla.CloseMessage,
				gorilla.FormatCloseMessage(gorilla.CloseNormalClosure, ""))
			c.writeMu.Unlock()
			if werr != nil {
				c.log.Debug("write close message", "error", werr.Error())
			}
			err = c.conn.Close()
		}
	})
	return err
}

// Events is the stream of server broadcasts for boards this connection
// has joined. The channel is buffered; a consumer that stops reading
// loses events rather than stalling the read loop.
func (c *Client) Events() <-chan Event {
	return c.events
}

func (c *Client) readLoop() {
	defer c.failPending()
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closeCh:
			default:
				c.log.Debug("read loop ended", "error", err.Error())
			}
			return
		}
		c.route(data)
	}
}

// route hands an inbound message to the waiting caller (messages with an
// ID are acknowledgements) or onto the event stream (messages without
// one are broadcasts).
func (c *Client) route(data []byte) {
	var probe struct {
		ID     string `json:"id" cbor:"id"`
		Method string `json:"method" cbor:"method"`
	}
	if err := c.cd.Unmarshal(data, &probe); err != nil {
		c.log.Warn("undecodable message", "error", err.Error())
		return
	}

	if probe.ID != "" {
		c.respMu.Lock()
		ch, ok := c.resp[probe.ID]
		delete(c.resp, probe.ID)
		c.respMu.Unlock()
		if ok {
			ch <- data
		}
		return
	}

	if probe.Method == "" {
		return
	}
	select {
	case c.events <- Event{Kind: probe.Method, raw: data}:
	default:
		c.log.Warn("event buffer full, dropping event", "kind", probe.Method)
	}
}

// failPending unblocks every in-flight call after the connection drops.
func (c *Client) failPending() {
	c.respMu.Lock()
	for id, ch := range c.resp {
		close(ch)
		delete(c.resp, id)
	}
	c.respMu.Unlock()
}

func (c *Client) registerRequest(id string) chan []byte {
	ch := make(chan []byte, 1)
	c.respMu.Lock()
	c.resp[id] = ch
	c.respMu.Unlock()
	return ch
}

func (c *Client) dropRequest(id string) {
	c.respMu.Lock()
	delete(c.resp, id)
	c.respMu.Unlock()
}

func (c *Client) write(data []byte) error {
	opcode := gorilla.TextMessage
	if c.cd.Binary() {
		opcode = gorilla.BinaryMessage
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(opcode, data)
}

// Call sends one request and waits for its acknowledgement. T is the
// expected result type; a wire error acknowledgement is returned as a
// *protocol.Error.
func Call[P, T any](ctx context.Context, c *Client, method string, params P) (*T, error) {
	if c.conn == nil {
		return nil, ErrClosed
	}

	id := rand.NewRequestID(requestIDLength)
	data, err := c.cd.Marshal(protocol.Request[P]{ID: id, Method: method, Params: params})
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	ch := c.registerRequest(id)
	defer c.dropRequest(id)

	if err := c.write(data); err != nil {
		return nil, fmt.Errorf("send %s request: %w", method, err)
	}

	var timeout <-chan time.Time
	if c.timeout > 0 {
		timer := time.NewTimer(c.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout:
		return nil, fmt.Errorf("%s: %w", method, ErrTimeout)
	case raw, ok := <-ch:
		if !ok {
			return nil, ErrClosed
		}
		var res protocol.Response[T]
		if err := c.cd.Unmarshal(raw, &res); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", method, err)
		}
		if res.Error != nil {
			return nil, res.Error
		}
		if res.Result == nil {
			return nil, fmt.Errorf("%s: empty response", method)
		}
		return res.Result, nil
	}
}

// DecodeEvent decodes a broadcast's payload as P.
func DecodeEvent[P any](c *Client, ev Event) (*P, error) {
	var n protocol.Notification[P]
	if err := c.cd.Unmarshal(ev.raw, &n); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", ev.Kind, err)
	}
	return &n.Params, nil
}

// Announce records the username shown to other members in presence
// notifications.
func (c *Client) Announce(ctx context.Context, username string) error {
	_, err := Call[protocol.UserConnectedParams, protocol.SuccessResult](
		ctx, c, protocol.MethodUserConnected, protocol.UserConnectedParams{Username: username})
	return err
}

// JoinBoard subscribes to a board and returns its current state.
func (c *Client) JoinBoard(ctx context.Context, boardID models.BoardID) (*models.BoardView, error) {
	return Call[protocol.JoinBoardParams, models.BoardView](
		ctx, c, protocol.MethodJoinBoard, protocol.JoinBoardParams{BoardID: boardID})
}

// LeaveBoard unsubscribes from a board.
func (c *Client) LeaveBoard(ctx context.Context, boardID models.BoardID) error {
	_, err := Call[protocol.LeaveBoardParams, protocol.SuccessResult](
		ctx, c, protocol.MethodLeaveBoard, protocol.LeaveBoardParams{BoardID: boardID})
	return err
}

// CreateCard adds a card to the end of a column.
func (c *Client) CreateCard(ctx context.Context, columnID models.ColumnID, title, description string) (*models.Card, error) {
	return Call[protocol.CreateCardParams, models.Card](
		ctx, c, protocol.MethodCreateCard, protocol.CreateCardParams{
			ColumnID: columnID, Title: title, Description: description,
		})
}

// UpdateCard applies a partial update to a card.
func (c *Client) UpdateCard(ctx context.Context, cardID models.CardID, updates models.CardPatch) (*models.Card, error) {
	return Call[protocol.UpdateCardParams, models.Card](
		ctx, c, protocol.MethodUpdateCard, protocol.UpdateCardParams{CardID: cardID, Updates: updates})
}

// DeleteCard removes a card.
func (c *Client) DeleteCard(ctx context.Context, cardID models.CardID) error {
	_, err := Call[protocol.DeleteCardParams, protocol.SuccessResult](
		ctx, c, protocol.MethodDeleteCard, protocol.DeleteCardParams{CardID: cardID})
	return err
}

// MoveCard relocates a card between columns or reorders it within one.
func (c *Client) MoveCard(ctx context.Context, p protocol.MoveCardParams) (*protocol.MoveCardResult, error) {
	return Call[protocol.MoveCardParams, protocol.MoveCardResult](ctx, c, protocol.MethodMoveCard, p)
}

// CreateColumn appends a column to a board.
func (c *Client) CreateColumn(ctx context.Context, boardID models.BoardID, name string) (*models.Column, error) {
	return Call[protocol.CreateColumnParams, models.Column](
		ctx, c, protocol.MethodCreateColumn, protocol.CreateColumnParams{BoardID: boardID, Name: name})
}

// UpdateColumn renames a column.
func (c *Client) UpdateColumn(ctx context.Context, columnID models.ColumnID, name string) (*models.Column, error) {
	return Call[protocol.UpdateColumnParams, models.Column](
		ctx, c, protocol.MethodUpdateColumn, protocol.UpdateColumnParams{ColumnID: columnID, Name: name})
}

// DeleteColumn removes a column and its cards.
func (c *Client) DeleteColumn(ctx context.Context, columnID models.ColumnID) error {
	_, err := Call[protocol.DeleteColumnParams, protocol.SuccessResult](
		ctx, c, protocol.MethodDeleteColumn, protocol.DeleteColumnParams{ColumnID: columnID})
	return err
}

// UpdateBoard applies a partial update to a board's metadata.
func (c *Client) UpdateBoard(ctx context.Context, boardID models.BoardID, updates models.BoardPatch) (*models.Board, error) {
	return Call[protocol.UpdateBoardParams, models.Board](
		ctx, c, protocol.MethodUpdateBoard, protocol.UpdateBoardParams{BoardID: boardID, Updates: updates})
}
