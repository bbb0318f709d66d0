// Package room tracks which live connections are watching which boards
// and fans committed events out to exactly those connections.
//
// A room is the set of connections subscribed to one board. The Registry
// owns all session and room state behind a single mutex; the Dispatcher
// reads membership under that same mutex, so a join or disconnect is
// never interleaved with a delivery pass over the same room.
package room

import (
	"sync"

	"github.com/tablero-app/tablero/pkg/models"
)

// Subscriber is a live connection the dispatcher can deliver to. Notify
// must not block: implementations enqueue onto a buffered outbound queue
// and drop when the connection is too slow or already gone — delivery is
// best effort, there is no replay.
type Subscriber interface {
	ID() string
	Notify(ev Event)
}

// Event is one committed mutation scoped to a board.
type Event struct {
	Board   models.BoardID
	Kind    string
	Payload any
}

type session struct {
	sub      Subscriber
	identity string
	boards   map[models.BoardID]bool
}

// Registry maps connection IDs to sessions and board IDs to rooms. All
// mutation goes through its methods; the maps are never handed out.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	rooms    map[models.BoardID]map[string]Subscriber
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		rooms:    make(map[models.BoardID]map[string]Subscriber),
	}
}

// Register adds a connection with no identity and no subscriptions.
func (r *Registry) Register(sub Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sub.ID()] = &session{
		sub:    sub,
		boards: make(map[models.BoardID]bool),
	}
}

// Identify associates a user identity with the connection.
func (r *Registry) Identify(connID, identity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[connID]; ok {
		s.identity = identity
	}
}

// Identity returns the identity recorded for the connection, if any.
func (r *Registry) Identity(connID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[connID]; ok {
		return s.identity
	}
	return ""
}

// Join subscribes the connection to the board's room. Idempotent; returns
// false for a connection the registry does not know.
func (r *Registry) Join(connID string, board models.BoardID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[connID]
	if !ok {
		return false
	}
	s.boards[board] = true
	members, ok := r.rooms[board]
	if !ok {
		members = make(map[string]Subscriber)
		r.rooms[board] = members
	}
	members[connID] = s.sub
	return true
}

// Leave unsubscribes the connection from the board's room. Idempotent.
func (r *Registry) Leave(connID string, board models.BoardID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[connID]; ok {
		delete(s.boards, board)
	}
	r.dropMember(connID, board)
}

// Disconnect removes the session and all of its room memberships,
// returning the recorded identity and the boards it was watching so the
// caller can emit presence notifications.
func (r *Registry) Disconnect(connID string) (identity string, boards []models.BoardID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[connID]
	if !ok {
		return "", nil
	}
	for board := range s.boards {
		boards = append(boards, board)
		r.dropMember(connID, board)
	}
	delete(r.sessions, connID)
	return s.identity, boards
}

// Boards returns the boards the connection is currently subscribed to.
func (r *Registry) Boards(connID string) []models.BoardID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[connID]
	if !ok {
		return nil
	}
	out := make([]models.BoardID, 0, len(s.boards))
	for board := range s.boards {
		out = append(out, board)
	}
	return out
}

// MemberCount reports the current size of a board's room.
func (r *Registry) MemberCount(board models.BoardID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[board])
}

// notifyRoom delivers ev to every current member of the board's room. It
// runs under the read lock so membership cannot change mid-pass.
func (r *Registry) notifyRoom(board models.BoardID, ev Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.rooms[board]
	for _, sub := range members {
		sub.Notify(ev)
	}
	return len(members)
}

// dropMember removes a connection from a room, deleting the room when it
// empties. Caller holds the write lock.
func (r *Registry) dropMember(connID string, board models.BoardID) {
	members, ok := r.rooms[board]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, board)
	}
}
