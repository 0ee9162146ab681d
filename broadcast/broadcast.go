// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/drawguess/room"

	"github.com/wfunc/drawguess/session"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrSessionNotFound = errors.New("session not found")
)

// RoomPusher pushes framed messages to one connection, a room's members or
// every live connection. Delivery is fire and forget: a failed send is
// skipped, never retried, and never aborts the fan-out.
type RoomPusher struct {
	pool           *room.Pool
	sessionManager *session.Manager
}

func NewRoomPusher(pool *room.Pool, sessionManager *session.Manager) *RoomPusher {
	return &RoomPusher{
		pool:           pool,
		sessionManager: sessionManager,
	}
}

func (p *RoomPusher) PushToConn(connID string, msgID uint16, data []byte) error {
	s, exists := p.sessionManager.Get(connID)
	if !exists {
		return ErrSessionNotFound
	}
	return s.Send(msgID, data)
}

func (p *RoomPusher) PushToConns(connIDs []string, msgID uint16, data []byte) {
	for _, id := range connIDs {
		s, exists := p.sessionManager.Get(id)
		if !exists {
			continue
		}
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
}

// PushToRoom sends to every member of roomID except the listed
// connection IDs.
func (p *RoomPusher) PushToRoom(roomID string, msgID uint16, data []byte, except ...string) error {
	r, exists := p.pool.Get(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	skip := make(map[string]struct{}, len(except))
	for _, id := range except {
		skip[id] = struct{}{}
	}

	for _, id := range r.MemberIDs() {
		if _, excluded := skip[id]; excluded {
			continue
		}
		s, ok := p.sessionManager.Get(id)
		if !ok {
			continue
		}
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}

func (p *RoomPusher) PushToAll(msgID uint16, data []byte) error {
	for _, s := range p.sessionManager.All() {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}
