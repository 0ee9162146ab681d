package network

// Message IDs of the draw-guess wire protocol. 1xx are room membership
// requests, 2xx game requests, 3xx server pushes.
const (
	MsgTypeHeartbeat = 1

	MsgTypeCreateRoom     = 101
	MsgTypeJoinRoom       = 102
	MsgTypeJoinRandomRoom = 103
	MsgTypeLeaveRoom      = 104

	MsgTypeStartGame  = 201
	MsgTypeEndGame    = 202
	MsgTypeGuessWord  = 203
	MsgTypeUploadLine = 204
	MsgTypeChat       = 205
	MsgTypeGetWords   = 206

	MsgTypeDrawLine    = 301
	MsgTypeGameStarted = 302
	MsgTypeGameEnded   = 303
	MsgTypeEnterMsg    = 304
	MsgTypeLeaveMsg    = 305
	MsgTypeNewHost     = 306
	MsgTypeRecMsg      = 307
	MsgTypeWordChoices = 308
)
