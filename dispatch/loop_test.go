package dispatch

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/wfunc/drawguess/models"
	"github.com/wfunc/drawguess/network"
	"github.com/wfunc/drawguess/room"
	"github.com/wfunc/drawguess/timer"
)

func TestFlushCoalescesToLatestSegment(t *testing.T) {
	d, pusher := newTestDispatcher(1, 5, 8)
	d.JoinRoom("1", "conn-a", "Alice")
	d.JoinRoom("1", "conn-b", "Bob")
	d.StartGame("1", "word")

	for i := 0; i < 10; i++ {
		d.UploadLine("conn-a", &models.LineSegment{LeftFrom: float64(i), Color: "#000", LineWidth: "2"})
	}
	d.flushRooms()

	if got := pusher.count(network.MsgTypeDrawLine); got != 1 {
		t.Fatalf("One tick must ship at most one segment, got %d", got)
	}

	p, _ := pusher.last(network.MsgTypeDrawLine)
	var line models.LineSegment
	if err := json.Unmarshal(p.data, &line); err != nil {
		t.Fatalf("Bad line payload: %v", err)
	}
	if line.LeftFrom != 9 {
		t.Errorf("The latest segment wins, got l1=%v", line.LeftFrom)
	}
}

func TestFlushExcludesOrigin(t *testing.T) {
	d, pusher := newTestDispatcher(1, 5, 8)
	d.JoinRoom("1", "conn-a", "Alice")
	d.JoinRoom("1", "conn-b", "Bob")
	d.JoinRoom("1", "conn-c", "Carol")
	d.StartGame("1", "word")

	d.UploadLine("conn-b", &models.LineSegment{Color: "#000", LineWidth: "2"})
	d.flushRooms()

	p, ok := pusher.last(network.MsgTypeDrawLine)
	if !ok {
		t.Fatal("Expected a draw push")
	}
	if len(p.conns) != 2 {
		t.Fatalf("Expected 2 recipients, got %d", len(p.conns))
	}
	for _, id := range p.conns {
		if id == "conn-b" {
			t.Error("The drawer must not receive its own segment")
		}
	}
}

func TestFlushSendsEachSegmentOnce(t *testing.T) {
	d, pusher := newTestDispatcher(1, 5, 8)
	d.JoinRoom("1", "conn-a", "Alice")
	d.JoinRoom("1", "conn-b", "Bob")
	d.StartGame("1", "word")

	d.UploadLine("conn-a", &models.LineSegment{Color: "#000", LineWidth: "2"})
	d.flushRooms()
	d.flushRooms()
	d.flushRooms()

	if got := pusher.count(network.MsgTypeDrawLine); got != 1 {
		t.Errorf("A segment is broadcast at most once, got %d", got)
	}

	// a fresh upload flushes again
	d.UploadLine("conn-a", &models.LineSegment{Color: "#fff", LineWidth: "1"})
	d.flushRooms()
	if got := pusher.count(network.MsgTypeDrawLine); got != 2 {
		t.Errorf("A fresh segment should flush, got %d total", got)
	}
}

func TestFlushSkipsWaitingRooms(t *testing.T) {
	d, pusher := newTestDispatcher(1, 5, 8)
	d.JoinRoom("1", "conn-a", "Alice")
	d.JoinRoom("1", "conn-b", "Bob")

	d.UploadLine("conn-a", &models.LineSegment{Color: "#000", LineWidth: "2"})
	d.flushRooms()

	if pusher.count(network.MsgTypeDrawLine) != 0 {
		t.Error("Rooms outside a round must not broadcast segments")
	}
}

func TestUploadLineWithoutRoomIsNoOp(t *testing.T) {
	d, pusher := newTestDispatcher(1, 5, 8)

	d.UploadLine("conn-ghost", &models.LineSegment{Color: "#000", LineWidth: "2"})
	d.flushRooms()

	if len(pusher.pushes) != 0 {
		t.Error("A segment from a roomless connection goes nowhere")
	}
}

func TestEndGameSuppressesPendingSegment(t *testing.T) {
	d, pusher := newTestDispatcher(1, 5, 8)
	d.JoinRoom("1", "conn-a", "Alice")
	d.JoinRoom("1", "conn-b", "Bob")
	d.StartGame("1", "word")

	d.UploadLine("conn-a", &models.LineSegment{Color: "#000", LineWidth: "2"})
	d.EndGame("1", "conn-b")
	d.flushRooms()

	if pusher.count(network.MsgTypeDrawLine) != 0 {
		t.Error("Ending the round must drop the pending segment")
	}
}

func TestBroadcastLoopLifecycle(t *testing.T) {
	pusher := &mockPusher{}
	pool := room.NewPool(1, 3, 8)
	d := New(pool, pusher, timer.NewManager(), nil, 5*time.Millisecond, time.Minute)

	d.JoinRoom("1", "conn-a", "Alice")
	d.JoinRoom("1", "conn-b", "Bob")
	d.StartGame("1", "word")
	d.StartBroadcastLoop()

	d.UploadLine("conn-a", &models.LineSegment{Color: "#000", LineWidth: "2"})

	deadline := time.Now().Add(time.Second)
	for pusher.count(network.MsgTypeDrawLine) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Broadcast loop never flushed the segment")
		}
		time.Sleep(5 * time.Millisecond)
	}

	d.Stop()
	// a segment uploaded after Stop stays unflushed
	time.Sleep(20 * time.Millisecond)
	before := pusher.count(network.MsgTypeDrawLine)
	d.UploadLine("conn-a", &models.LineSegment{Color: "#fff", LineWidth: "1"})
	time.Sleep(30 * time.Millisecond)
	if got := pusher.count(network.MsgTypeDrawLine); got != before {
		t.Errorf("Stopped loop must not flush, got %d new pushes", got-before)
	}
}
