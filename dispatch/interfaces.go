// dispatch/interfaces.go
package dispatch

// Pusher is the outbound half of the transport layer. Defined here so the
// dispatcher does not import the broadcast package; broadcast.RoomPusher
// is the production implementation.
type Pusher interface {
	PushToConn(connID string, msgID uint16, data []byte) error
	PushToConns(connIDs []string, msgID uint16, data []byte)
	PushToRoom(roomID string, msgID uint16, data []byte, except ...string) error
	PushToAll(msgID uint16, data []byte) error
}
