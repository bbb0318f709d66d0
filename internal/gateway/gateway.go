// Package gateway is the protocol-facing façade of the server: a
// WebSocket endpoint that decodes client operations, runs them through
// the board coordinator, publishes committed mutations to the affected
// board's room and acknowledges the initiating client.
//
// The WebSocket server is implemented using the `gws` library. gws reads
// each connection's frames on a single loop and this gateway handles
// every operation synchronously inside OnMessage, so operations from one
// connection commit in the order they were sent while different
// connections proceed concurrently. There is no cancellation path: a
// dispatched store mutation runs to completion or failure.
package gateway

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/lxzan/gws"

	"github.com/tablero-app/tablero/internal/board"
	"github.com/tablero-app/tablero/internal/codec"
	"github.com/tablero-app/tablero/internal/room"
	"github.com/tablero-app/tablero/pkg/logger"
	"github.com/tablero-app/tablero/pkg/protocol"
)

// outboundQueueSize bounds each connection's send queue. A member that
// falls this far behind starts losing broadcasts; delivery is best
// effort by contract.
const outboundQueueSize = 256

// Options configures a Server.
type Options struct {
	// Addr is the listen address. Use "127.0.0.1:0" for a random port.
	Addr string
	// Codec is the wire codec; nil means JSON.
	Codec codec.Codec
	// Logger is the server logger; nil means no logging.
	Logger logger.Logger
}

// Server is the real-time gateway.
type Server struct {
	addr     string
	listener net.Listener
	server   *gws.Server
	codec    codec.Codec
	log      logger.Logger

	coord *board.Coordinator
	reg   *room.Registry
	disp  *room.Dispatcher

	mu    sync.RWMutex
	conns map[*gws.Conn]*client
}

// NewServer wires the gateway to the coordinator, registry and
// dispatcher.
func NewServer(coord *board.Coordinator, reg *room.Registry, disp *room.Dispatcher, opts Options) *Server {
	c := opts.Codec
	if c == nil {
		c = codec.JSON{}
	}
	lg := opts.Logger
	if lg == nil {
		lg = logger.Nop{}
	}

	s := &Server{
		addr:  opts.Addr,
		codec: c,
		log:   lg,
		coord: coord,
		reg:   reg,
		disp:  disp,
		conns: make(map[*gws.Conn]*client),
	}

	handler := &handler{server: s}
	s.server = gws.NewServer(handler, &gws.ServerOption{})
	s.server.OnError = func(_ net.Conn, err error) {
		if !errors.Is(err, net.ErrClosed) {
			s.log.Warn("websocket server error", "error", err.Error())
		}
	}
	return s
}

// Start begins accepting WebSocket connections. It returns once the
// listener is bound.
func (s *Server) Start() error {
	var lc net.ListenConfig
	listener, err := lc.Listen(context.Background(), "tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		if err := s.server.RunListener(listener); err != nil && !errors.Is(err, net.ErrClosed) {
			s.log.Error("websocket server stopped", "error", err.Error())
		}
	}()
	return nil
}

// Stop closes the listener and every live connection.
func (s *Server) Stop() error {
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.mu.Lock()
	conns := make([]*client, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()
	for _, c := range conns {
		c.stop()
		c.sock.NetConn().Close()
	}
	return err
}

// Address returns the bound listen address.
func (s *Server) Address() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// client is the per-connection state. It implements room.Subscriber:
// broadcasts are enqueued onto out and drained by one writer goroutine,
// which keeps per-subscriber delivery in publish order without ever
// blocking the dispatcher.
type client struct {
	id   string
	sock *gws.Conn
	srv  *Server

	out  chan []byte
	done chan struct{}
	once sync.Once
}

func (c *client) ID() string { return c.id }

// Notify encodes and enqueues a broadcast. Full queue or closed
// connection means the event is dropped for this member.
func (c *client) Notify(ev room.Event) {
	data, err := c.srv.codec.Marshal(protocol.Notification[any]{
		Method: ev.Kind,
		Params: ev.Payload,
	})
	if err != nil {
		c.srv.log.Error("encode broadcast", "kind", ev.Kind, "error", err.Error())
		return
	}
	c.enqueue(data)
}

func (c *client) enqueue(data []byte) {
	select {
	case <-c.done:
	case c.out <- data:
	default:
		c.srv.log.Warn("outbound queue full, dropping message", "conn", c.id)
	}
}

func (c *client) writeLoop() {
	opcode := gws.OpcodeText
	if c.srv.codec.Binary() {
		opcode = gws.OpcodeBinary
	}
	for {
		select {
		case <-c.done:
			return
		case data := <-c.out:
			if err := c.sock.WriteMessage(opcode, data); err != nil {
				c.srv.log.Debug("write failed", "conn", c.id, "error", err.Error())
				return
			}
		}
	}
}

func (c *client) stop() {
	c.once.Do(func() { close(c.done) })
}

// handler implements the gws.Event interface for server connections.
type handler struct {
	server *Server
}

func (h *handler) OnOpen(socket *gws.Conn) {
	s := h.server
	c := &client{
		id:   uuid.NewString(),
		sock: socket,
		srv:  s,
		out:  make(chan []byte, outboundQueueSize),
		done: make(chan struct{}),
	}
	s.mu.Lock()
	s.conns[socket] = c
	s.mu.Unlock()

	s.reg.Register(c)
	go c.writeLoop()
	s.log.Debug("connection opened", "conn", c.id)
}

func (h *handler) OnClose(socket *gws.Conn, err error) {
	s := h.server
	s.mu.Lock()
	c, ok := s.conns[socket]
	delete(s.conns, socket)
	s.mu.Unlock()
	if !ok {
		return
	}
	c.stop()

	identity, boards := s.reg.Disconnect(c.id)
	if identity != "" {
		for _, b := range boards {
			s.disp.Publish(b, protocol.EventUserLeft, protocol.PresenceEvent{Username: identity})
		}
	}
	s.log.Debug("connection closed", "conn", c.id, "identity", identity)
}

func (h *handler) OnPing(socket *gws.Conn, payload []byte) {
	if err := socket.WritePong(payload); err != nil {
		h.server.log.Debug("write pong failed", "error", err.Error())
	}
}

func (h *handler) OnPong(socket *gws.Conn, payload []byte) {
}

func (h *handler) OnMessage(socket *gws.Conn, message *gws.Message) {
	defer message.Close()

	s := h.server
	s.mu.RLock()
	c, ok := s.conns[socket]
	s.mu.RUnlock()
	if !ok {
		return
	}
	s.dispatch(c, message.Bytes())
}
