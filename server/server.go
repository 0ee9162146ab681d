package server

import (
	"encoding/json"
	"net/http"
	netrpc "net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/drawguess/broadcast"
	"github.com/wfunc/drawguess/config"
	"github.com/wfunc/drawguess/dispatch"
	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/monitor"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/persistence"
	"github.com/wfunc/drawguess/room"
	drawguess_rpc "github.com/wfunc/drawguess/rpc"
	"github.com/wfunc/drawguess/services"
	"github.com/wfunc/drawguess/session"
	"github.com/wfunc/drawguess/timer"
	"github.com/wfunc/drawguess/words"
)

// GameServer is the transport adapter: it owns the websocket endpoint,
// resolves each inbound frame to a dispatcher call and hands the
// dispatcher a pusher for the reverse direction.
type GameServer struct {
	addr           string
	metricsAddr    string
	upgrader       websocket.Upgrader
	pool           *room.Pool
	sessionManager *session.Manager
	dispatcher     *dispatch.Dispatcher
	wordSource     words.Source
	mon            *monitor.Monitor
	rpcServer      *drawguess_rpc.Server
	heartbeat      time.Duration
	shutdownChan   chan struct{}
}

// NewGameServer wires the full engine. store may be nil: the server then
// runs with the built-in word table and without the account RPC service.
func NewGameServer(cfg *config.Config, store persistence.Store) *GameServer {
	pool := room.NewPool(cfg.Game.MinRoomID, cfg.Game.MaxRoomID, cfg.Game.RoomCapacity)
	sessionManager := session.NewManager()
	mon := monitor.NewMonitor("drawguess")
	pusher := broadcast.NewRoomPusher(pool, sessionManager)

	dispatcher := dispatch.New(
		pool,
		pusher,
		timer.NewManager(),
		mon,
		time.Duration(cfg.Game.BroadcastIntervalMS)*time.Millisecond,
		time.Duration(cfg.Game.RoundSeconds)*time.Second,
	)

	var wordSource words.Source = words.NewSimpleSource()
	if store != nil {
		wordSource = words.NewStoreSource(store)
	}

	s := &GameServer{
		addr:           cfg.Server.HTTPAddress,
		metricsAddr:    cfg.Server.MetricsAddress,
		pool:           pool,
		sessionManager: sessionManager,
		dispatcher:     dispatcher,
		wordSource:     wordSource,
		mon:            mon,
		heartbeat:      time.Duration(cfg.Server.HeartbeatSeconds) * time.Second,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	rpcServer, err := drawguess_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	if store != nil {
		accountService := drawguess_rpc.NewAccountService(services.NewUserService(store))
		netrpc.Register(accountService)
	}

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.mon.StartServer(s.metricsAddr)
	s.dispatcher.StartBroadcastLoop()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.dispatcher.Stop()
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	if s.heartbeat > 0 {
		wsConn.SetHeartbeat(s.heartbeat)
	}
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.mon.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		// the disconnect hook always leaves, whatever state the room is in
		s.dispatcher.LeaveRoom(sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.mon.DecOnlinePlayers()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	s.mon.IncMessagesReceived()

	// any inbound frame proves liveness and re-arms the read deadline
	if s.heartbeat > 0 {
		sess.Conn.SetHeartbeat(s.heartbeat)
	}

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.Touch()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeJoinRandomRoom:
		s.handleJoinRandomRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.dispatcher.LeaveRoom(sess.GetID())
	case network.MsgTypeStartGame:
		s.handleStartGame(sess, packet)
	case network.MsgTypeEndGame:
		s.handleEndGame(sess, packet)
	case network.MsgTypeGuessWord:
		s.handleGuessWord(sess, packet)
	case network.MsgTypeUploadLine:
		s.handleUploadLine(sess, packet)
	case network.MsgTypeChat:
		s.handleChat(sess, packet)
	case network.MsgTypeGetWords:
		s.handleGetWords(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	sess.SetName(req.Name)

	resp := struct {
		RoomID string `json:"roomId,omitempty"`
		Error  string `json:"error,omitempty"`
	}{}

	roomID, err := s.dispatcher.CreateRoom(sess.GetID(), req.Name)
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.RoomID = roomID
		logger.Log.Infof("Session %s created room %s", sess.GetID(), roomID)
	}

	data, _ := json.Marshal(resp)
	sess.Send(network.MsgTypeCreateRoom, data)
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomID string `json:"roomId"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	sess.SetName(req.Name)

	status := s.dispatcher.JoinRoom(req.RoomID, sess.GetID(), req.Name)

	resp := struct {
		Status models.JoinStatus `json:"status"`
	}{Status: status}
	data, _ := json.Marshal(resp)
	sess.Send(network.MsgTypeJoinRoom, data)
}

func (s *GameServer) handleJoinRandomRoom(sess *session.Session, packet *network.Packet) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	sess.SetName(req.Name)

	snapshot, err := s.dispatcher.JoinRandomRoom(sess.GetID(), req.Name)
	if err != nil || snapshot == nil {
		resp := struct {
			Error string `json:"error"`
		}{Error: "no open room"}
		data, _ := json.Marshal(resp)
		sess.Send(network.MsgTypeJoinRandomRoom, data)
		return
	}

	data, _ := json.Marshal(snapshot)
	sess.Send(network.MsgTypeJoinRandomRoom, data)
}

func (s *GameServer) handleStartGame(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomID string `json:"roomId"`
		Word   string `json:"word"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	// only the host starts rounds
	r, exists := s.pool.Get(req.RoomID)
	if !exists || r.HostID() != sess.GetID() {
		return
	}

	s.dispatcher.StartGame(req.RoomID, req.Word)
}

func (s *GameServer) handleEndGame(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomID   string `json:"roomId"`
		WinnerID string `json:"winnerId"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	s.dispatcher.EndGame(req.RoomID, req.WinnerID)
}

func (s *GameServer) handleGuessWord(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomID string `json:"roomId"`
		Msg    string `json:"msg"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	s.dispatcher.GuessWord(req.RoomID, sess.GetID(), req.Msg)
}

func (s *GameServer) handleUploadLine(sess *session.Session, packet *network.Packet) {
	var line models.LineSegment
	if err := json.Unmarshal(packet.Data, &line); err != nil {
		return
	}
	s.dispatcher.UploadLine(sess.GetID(), &line)
}

func (s *GameServer) handleChat(sess *session.Session, packet *network.Packet) {
	var req struct {
		RoomID string `json:"roomId"`
		Msg    string `json:"msg"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	if req.Msg == "" {
		return
	}

	s.dispatcher.BroadcastMessage(req.RoomID, &models.UserMsg{
		ConnectionID: sess.GetID(),
		Msg:          req.Msg,
		MsgType:      models.MsgChat,
	})
}

func (s *GameServer) handleGetWords(sess *session.Session, packet *network.Packet) {
	var req struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	if req.Count <= 0 {
		req.Count = 4
	}

	// candidates go to the drawer only; the secret must not leak to the room
	r, found := s.pool.FindByMember(sess.GetID())
	if !found || r.HostID() != sess.GetID() {
		return
	}

	group, err := s.wordSource.Group(req.Count)
	if err != nil {
		logger.Log.Warnf("word source failed: %v", err)
		return
	}

	data, err := json.Marshal(group)
	if err != nil {
		return
	}
	sess.Send(network.MsgTypeWordChoices, data)
}
