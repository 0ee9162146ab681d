// dispatch/loop.go
package dispatch

import (
	"encoding/json"
	"time"

	"github.com/wfunc/drawguess/logger"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/room"
)

// StartBroadcastLoop launches the periodic drawing flush. The loop is the
// only path the high-frequency draw signal takes to clients: client input
// lands in each room's pending slot and the loop ships at most one
// segment per room per tick.
func (d *Dispatcher) StartBroadcastLoop() {
	go d.loop()
}

// Stop halts the broadcast loop and the round clock. Safe to call once at
// process shutdown.
func (d *Dispatcher) Stop() {
	close(d.closeChan)
	if d.timers != nil {
		d.timers.Stop()
	}
}

func (d *Dispatcher) loop() {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.flushRooms()
		case <-d.closeChan:
			return
		}
	}
}

// flushRooms visits every room and ships any pending segment that has not
// gone out yet, excluding the drawer, who already has the authoritative
// local copy. A room is skipped when its segment was already sent, no
// round is running or nobody is listening; skipping is what bounds the
// fan-out rate no matter how fast segments arrive.
func (d *Dispatcher) flushRooms() {
	start := time.Now()

	d.pool.ForEach(func(r *room.Room) {
		line, from, targets, ok := r.FlushPending()
		if !ok {
			return
		}

		data, err := json.Marshal(line)
		if err != nil {
			// drop this update; the next tick carries a fresher one
			logger.Log.Debugf("room %s: dropping unserializable segment: %v", r.ID, err)
			return
		}

		recipients := make([]string, 0, len(targets))
		for _, id := range targets {
			if id == from {
				continue
			}
			recipients = append(recipients, id)
		}
		d.pusher.PushToConns(recipients, network.MsgTypeDrawLine, data)
	})

	if d.monitor != nil {
		d.monitor.ObserveBroadcastFlush(time.Since(start))
		d.monitor.SetOccupiedRooms(d.pool.OccupiedCount())
	}
}
