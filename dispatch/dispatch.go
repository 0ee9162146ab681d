// dispatch/dispatch.go
package dispatch

import (
	"encoding/json"
	"errors"
	"math/rand"
	"strconv"
	"time"

	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/monitor"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/room"
	"github.com/wfunc/drawguess/timer"
)

var (
	// ErrNoRoomAvailable means no empty room was left to claim.
	ErrNoRoomAvailable = errors.New("no empty room available")
	// ErrPoolExhausted means every room is at capacity.
	ErrPoolExhausted = errors.New("every room is full")
)

// Dispatcher owns the room pool and serializes all game operations against
// it. One instance per process; the transport adapter holds a reference
// and forwards every remote call here.
type Dispatcher struct {
	pool          *room.Pool
	pusher        Pusher
	timers        *timer.Manager
	monitor       *monitor.Monitor
	interval      time.Duration
	roundDuration time.Duration

	closeChan chan struct{}
}

// New builds a dispatcher over pool. monitor may be nil (tests run without
// metrics).
func New(pool *room.Pool, pusher Pusher, timers *timer.Manager, mon *monitor.Monitor, interval, roundDuration time.Duration) *Dispatcher {
	return &Dispatcher{
		pool:          pool,
		pusher:        pusher,
		timers:        timers,
		monitor:       mon,
		interval:      interval,
		roundDuration: roundDuration,
		closeChan:     make(chan struct{}),
	}
}

func (d *Dispatcher) Pool() *room.Pool {
	return d.pool
}

// --- membership operations ---

// CreateRoom claims the lowest-numbered empty room for connID and makes
// them its host.
func (d *Dispatcher) CreateRoom(connID, name string) (string, error) {
	if connID == "" || name == "" {
		return "", ErrNoRoomAvailable
	}

	d.LeaveRoom(connID)

	var claimed *room.Room
	d.pool.ForEach(func(r *room.Room) {
		if claimed != nil {
			return
		}
		if r.Claim(connID, name) {
			claimed = r
		}
	})
	if claimed == nil {
		return "", ErrNoRoomAvailable
	}
	return claimed.ID, nil
}

// JoinRoom adds connID to roomID. Re-joining a room the caller is already
// in only updates the display name; membership never duplicates and no
// second enter notification fires. A successful join removes the caller
// from any other room first: membership is exclusive.
func (d *Dispatcher) JoinRoom(roomID, connID, name string) models.JoinStatus {
	if roomID == "" || connID == "" || name == "" {
		return models.JoinEmpty
	}
	r, exists := d.pool.Get(roomID)
	if !exists {
		return models.JoinEmpty
	}

	if r.Rename(connID, name) {
		return models.JoinAdded
	}

	d.LeaveRoom(connID)
	if !r.Add(connID, name) {
		// lost a race: either the room filled up or a concurrent join of
		// the same connection won
		if r.Rename(connID, name) {
			return models.JoinAdded
		}
		return models.JoinEmpty
	}

	d.notifyEnter(roomID, connID, name)

	if r.IsPlaying() {
		return models.JoinPlaying
	}
	return models.JoinWaiting
}

// JoinRandomRoom drops connID into a uniformly random open room and
// returns the room snapshot for client bootstrap. Returns nil for a blank
// connID and ErrPoolExhausted when every room is at capacity; it never
// spins on a saturated pool.
func (d *Dispatcher) JoinRandomRoom(connID, name string) (*models.RoomSnapshot, error) {
	if connID == "" || name == "" {
		return nil, nil
	}

	d.LeaveRoom(connID)

	span := d.pool.MaxID() - d.pool.MinID() + 1
	for {
		if !d.pool.HasOpenRoom() {
			return nil, ErrPoolExhausted
		}

		roomID := strconv.Itoa(d.pool.MinID() + rand.Intn(span))
		r, exists := d.pool.Get(roomID)
		if !exists || r.IsFull() {
			continue
		}
		if !r.Add(connID, name) {
			continue
		}

		d.notifyEnter(roomID, connID, name)
		return r.Snapshot(), nil
	}
}

// LeaveRoom removes connID from whichever room holds it. The scan covers
// every room even though membership is exclusive, so a stray duplicate
// entry heals itself. Safe to call for connections that are in no room.
func (d *Dispatcher) LeaveRoom(connID string) {
	if connID == "" {
		return
	}

	d.pool.ForEach(func(r *room.Room) {
		removed, newHost, wasPlaying, timerID := r.Remove(connID)
		if removed == nil {
			return
		}

		if timerID != 0 && d.timers != nil {
			d.timers.Cancel(timerID)
		}

		if newHost != nil {
			if data, err := json.Marshal(newHost); err == nil {
				d.pusher.PushToRoom(r.ID, network.MsgTypeNewHost, data)
			}
		}
		if wasPlaying && !r.IsEmpty() {
			if data, err := json.Marshal(removed); err == nil {
				d.pusher.PushToRoom(r.ID, network.MsgTypeLeaveMsg, data)
			}
		}
	})
}

// --- game lifecycle ---

// StartGame begins a round in roomID with the given secret word. No-op on
// blank arguments, an out-of-range room or an empty room.
func (d *Dispatcher) StartGame(roomID, word string) {
	if roomID == "" || word == "" || !d.pool.InRange(roomID) {
		return
	}
	r, exists := d.pool.Get(roomID)
	if !exists {
		return
	}
	round, ok := r.StartRound(word)
	if !ok {
		return
	}

	if d.timers != nil && d.roundDuration > 0 {
		id := d.timers.Schedule(d.roundDuration, func() {
			d.endRoundOnDeadline(roomID, round)
		})
		if !r.SetRoundTimer(round, id) {
			// the round ended before its deadline was recorded
			d.timers.Cancel(id)
		}
	}

	d.pusher.PushToRoom(roomID, network.MsgTypeGameStarted, nil)
	if d.monitor != nil {
		d.monitor.IncRoundsStarted()
	}
}

// GuessWord evaluates a guess during an active round. Every guess, right
// or wrong, is echoed to the room as a visible message; an exact
// case-sensitive match ends the round with connID as winner. Outside a
// round the call does nothing at all.
func (d *Dispatcher) GuessWord(roomID, connID, text string) {
	if roomID == "" || connID == "" || text == "" {
		return
	}
	if d.pool.IsEmpty(roomID) {
		return
	}
	r, exists := d.pool.Get(roomID)
	if !exists || !r.IsPlaying() {
		return
	}

	d.BroadcastMessage(roomID, &models.UserMsg{
		ConnectionID: connID,
		Msg:          text,
		MsgType:      models.MsgGuessingWord,
	})

	if r.TryWin(connID, text) {
		d.finishRound(r, connID)
	}
}

// EndGame terminates the round in roomID. An empty winnerID denotes a
// timeout end and is validated against idle rooms first; a win always
// terminates regardless.
func (d *Dispatcher) EndGame(roomID, winnerID string) {
	if winnerID == "" {
		if roomID == "" || d.pool.IsEmpty(roomID) {
			return
		}
	}
	r, exists := d.pool.Get(roomID)
	if !exists {
		return
	}
	d.finishRound(r, winnerID)
}

// finishRound resets the round state, cancels the pending deadline and
// notifies the room of the outcome.
func (d *Dispatcher) finishRound(r *room.Room, winnerID string) {
	timerID := r.ResetRound()
	if timerID != 0 && d.timers != nil {
		d.timers.Cancel(timerID)
	}
	d.announceRoundEnd(r, winnerID)
}

// endRoundOnDeadline is the timeout path a scheduled deadline takes. It
// only ends the round it was scheduled for: a deadline from an earlier
// round in the same room fires into a generation mismatch and does
// nothing.
func (d *Dispatcher) endRoundOnDeadline(roomID string, round int64) {
	r, exists := d.pool.Get(roomID)
	if !exists || r.IsEmpty() {
		return
	}
	if _, ok := r.ResetRoundIf(round); !ok {
		return
	}
	d.announceRoundEnd(r, "")
}

func (d *Dispatcher) announceRoundEnd(r *room.Room, winnerID string) {
	payload := struct {
		WinnerID string `json:"winnerId"`
	}{WinnerID: winnerID}
	data, _ := json.Marshal(payload)
	d.pusher.PushToRoom(r.ID, network.MsgTypeGameEnded, data)

	if d.monitor != nil {
		d.monitor.IncRoundsEnded()
	}
}

// --- drawing ingestion ---

// UploadLine records the latest segment drawn by connID. Only the newest
// segment per room survives until the next broadcast tick.
func (d *Dispatcher) UploadLine(connID string, line *models.LineSegment) {
	if connID == "" || line == nil {
		return
	}
	r, found := d.pool.FindByMember(connID)
	if !found {
		return
	}
	r.SetPendingLine(line, connID)
}

// --- messaging ---

// BroadcastMessage pushes msg to roomID's members, or to every live
// connection when roomID is blank. Fire and forget.
func (d *Dispatcher) BroadcastMessage(roomID string, msg *models.UserMsg) {
	if msg == nil {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	if roomID == "" {
		d.pusher.PushToAll(network.MsgTypeRecMsg, data)
		return
	}
	if !d.pool.InRange(roomID) {
		return
	}
	d.pusher.PushToRoom(roomID, network.MsgTypeRecMsg, data)
}

func (d *Dispatcher) notifyEnter(roomID, connID, name string) {
	member := &models.Member{ConnectionID: connID, Name: name}
	if data, err := json.Marshal(member); err == nil {
		d.pusher.PushToRoom(roomID, network.MsgTypeEnterMsg, data, connID)
	}
}
