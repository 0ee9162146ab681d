// models/models.go
package models

// LineSegment is one drawn stroke segment. The short JSON keys match the
// wire format the drawing canvas produces; segments are write-once and are
// never compared or hashed.
type LineSegment struct {
	LeftFrom  float64 `json:"l1"`
	TopFrom   float64 `json:"t1"`
	LeftTo    float64 `json:"l2"`
	TopTo     float64 `json:"t2"`
	Color     string  `json:"c"`
	LineWidth string  `json:"w"`
}

// Member is a connected participant of a room.
type Member struct {
	ConnectionID string `json:"connectionId"`
	Name         string `json:"name"`
}

// UserMsgType classifies a UserMsg.
type UserMsgType int

const (
	MsgNoUse UserMsgType = iota
	MsgGuessingWord
	MsgChat
	MsgServiceBroadcast
)

// UserMsg is a chat, guess or system message broadcast verbatim to a room
// or to every connection.
type UserMsg struct {
	ConnectionID string      `json:"connectionId"`
	Msg          string      `json:"msg"`
	MsgType      UserMsgType `json:"msgType"`
}

// RoomSnapshot is the bootstrap payload returned when a client is dropped
// into a random room.
type RoomSnapshot struct {
	RoomID    string    `json:"roomId"`
	IsPlaying bool      `json:"isPlaying"`
	HostID    string    `json:"hostId"`
	Members   []*Member `json:"members"`
}

// WordHint is one candidate secret word together with its hint text.
type WordHint struct {
	Word string `json:"word"`
	Hint string `json:"hint"`
}

// JoinStatus is the result of a join request.
type JoinStatus string

const (
	JoinEmpty   JoinStatus = "Empty"   // invalid arguments or unknown room
	JoinAdded   JoinStatus = "Added"   // already a member, name updated only
	JoinPlaying JoinStatus = "Playing" // joined a room with an active round
	JoinWaiting JoinStatus = "Waiting" // joined an idle room
)
