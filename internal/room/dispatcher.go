package room

import (
	"github.com/tablero-app/tablero/pkg/logger"
	"github.com/tablero-app/tablero/pkg/models"
)

// Dispatcher fans committed events out to a board's room.
//
// Ordering: the gateway publishes each event synchronously on its commit
// path, and delivery enqueues onto each member's outbound queue while the
// registry lock is held, so two events published for one board reach
// every shared subscriber in publish order. Ordering across different
// boards is unspecified.
type Dispatcher struct {
	reg *Registry
	log logger.Logger
}

func NewDispatcher(reg *Registry, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop{}
	}
	return &Dispatcher{reg: reg, log: log}
}

// Publish delivers payload to every connection currently a member of the
// board's room, and to no others. Best effort: members that dropped or
// cannot keep up are skipped, never queued for replay.
func (d *Dispatcher) Publish(board models.BoardID, kind string, payload any) {
	n := d.reg.notifyRoom(board, Event{Board: board, Kind: kind, Payload: payload})
	d.log.Debug("event published", "board", board.String(), "kind", kind, "members", n)
}
