package room

import (
	"fmt"
	"sync"
	"testing"

	"github.com/wfunc/drawguess/models"
)

func TestPool_FixedRange(t *testing.T) {
	pool := NewPool(1, 100, 8)

	if pool.Size() != 100 {
		t.Fatalf("Expected 100 rooms, got %d", pool.Size())
	}

	if _, exists := pool.Get("1"); !exists {
		t.Error("Room 1 should exist")
	}
	if _, exists := pool.Get("100"); !exists {
		t.Error("Room 100 should exist")
	}
	if _, exists := pool.Get("101"); exists {
		t.Error("Room 101 should not exist")
	}
	if _, exists := pool.Get("0"); exists {
		t.Error("Room 0 should not exist")
	}
	if pool.InRange("abc") {
		t.Error("Non-numeric identifier should be out of range")
	}
	if !pool.InRange("42") {
		t.Error("Room 42 should be in range")
	}
}

func TestPool_EmptyAndFull(t *testing.T) {
	pool := NewPool(1, 3, 2)

	if !pool.IsEmpty("1") {
		t.Error("Fresh room should be empty")
	}
	if pool.IsFull("1") {
		t.Error("Fresh room should not be full")
	}
	// unknown identifiers read as unusable on both sides
	if !pool.IsEmpty("99") {
		t.Error("Unknown room should report empty")
	}
	if !pool.IsFull("99") {
		t.Error("Unknown room should report full")
	}

	r, _ := pool.Get("1")
	r.Add("conn-a", "Alice")
	r.Add("conn-b", "Bob")

	if !pool.IsFull("1") {
		t.Error("Room at capacity should be full")
	}
	if r.Add("conn-c", "Carol") {
		t.Error("Add should fail on a full room")
	}
}

func TestRoom_AddAndRename(t *testing.T) {
	r := NewRoom("1", 8)

	if !r.Add("conn-a", "Alice") {
		t.Fatal("Failed to add first member")
	}
	if r.Add("conn-a", "Alice2") {
		t.Fatal("Adding the same connection twice should fail")
	}
	if r.MemberCount() != 1 {
		t.Fatalf("Expected member count 1, got %d", r.MemberCount())
	}

	if !r.Rename("conn-a", "Alicia") {
		t.Fatal("Rename should find the member")
	}
	if r.Rename("conn-x", "Nobody") {
		t.Fatal("Rename should fail for a non-member")
	}

	members := r.Members()
	if members[0].Name != "Alicia" {
		t.Errorf("Expected renamed member, got %q", members[0].Name)
	}
	if r.HostID() != "conn-a" {
		t.Errorf("First member should be host, got %q", r.HostID())
	}
	if _, ready := r.readyIDs["conn-a"]; !ready {
		t.Error("A joiner should be marked ready for the next round")
	}
}

func TestRoom_Claim(t *testing.T) {
	r := NewRoom("1", 8)

	if !r.Claim("conn-a", "Alice") {
		t.Fatal("Claim of an empty room should succeed")
	}
	if r.Claim("conn-b", "Bob") {
		t.Fatal("Claim of an occupied room should fail")
	}
	if r.HostID() != "conn-a" {
		t.Errorf("Claimer should be host, got %q", r.HostID())
	}
}

func TestRoom_RemovePromotesHost(t *testing.T) {
	r := NewRoom("1", 8)
	r.Add("conn-a", "Alice")
	r.Add("conn-b", "Bob")
	r.Add("conn-c", "Carol")

	removed, newHost, _, _ := r.Remove("conn-a")
	if removed == nil || removed.ConnectionID != "conn-a" {
		t.Fatal("Remove should return the departed member")
	}
	if newHost == nil || newHost.ConnectionID != "conn-b" {
		t.Fatal("Longest-tenured remaining member should be promoted")
	}
	if r.HostID() != "conn-b" {
		t.Errorf("Expected host conn-b, got %q", r.HostID())
	}

	// non-host departure does not touch the host
	_, newHost, _, _ = r.Remove("conn-c")
	if newHost != nil {
		t.Error("Removing a non-host should not promote anyone")
	}
}

func TestRoom_RemoveLastMemberResets(t *testing.T) {
	r := NewRoom("1", 8)
	r.Add("conn-a", "Alice")
	round, _ := r.StartRound("lighthouse")
	r.SetRoundTimer(round, 42)

	removed, _, wasPlaying, timerID := r.Remove("conn-a")
	if removed == nil {
		t.Fatal("Remove should succeed")
	}
	if !wasPlaying {
		t.Error("Round should have been active at removal")
	}
	if timerID != 42 {
		t.Errorf("Remove should hand back the cleared deadline, got %d", timerID)
	}
	if r.IsPlaying() {
		t.Error("Emptied room should reset to waiting")
	}
	if r.HostID() != "" {
		t.Error("Empty room should have no host")
	}
	if r.GuessingWord() != "" {
		t.Error("Emptied room should forget the secret word")
	}
}

func TestRoom_StartRoundLocksInReadyMembers(t *testing.T) {
	r := NewRoom("1", 8)
	r.Add("conn-a", "Alice")
	r.Add("conn-b", "Bob")
	delete(r.readyIDs, "conn-b")

	if _, ok := r.StartRound("word"); !ok {
		t.Fatal("StartRound should succeed")
	}
	if _, playing := r.playingIDs["conn-a"]; !playing {
		t.Error("A ready member should be locked into the round")
	}
	if _, playing := r.playingIDs["conn-b"]; playing {
		t.Error("A member not marked ready must spectate")
	}
}

func TestRoom_RoundGenerations(t *testing.T) {
	r := NewRoom("1", 8)
	r.Add("conn-a", "Alice")

	gen1, ok := r.StartRound("lighthouse")
	if !ok {
		t.Fatal("StartRound should succeed")
	}
	r.ResetRound()

	gen2, _ := r.StartRound("volcano")
	if gen2 == gen1 {
		t.Fatal("Each round must get a fresh generation")
	}

	if r.SetRoundTimer(gen1, 7) {
		t.Error("A deadline for an ended round must not be recorded")
	}
	if _, ok := r.ResetRoundIf(gen1); ok {
		t.Error("A stale generation must not end the current round")
	}
	if !r.IsPlaying() {
		t.Fatal("The current round should have survived the stale reset")
	}

	if !r.SetRoundTimer(gen2, 8) {
		t.Fatal("The current round should record its deadline")
	}
	timerID, ok := r.ResetRoundIf(gen2)
	if !ok || timerID != 8 {
		t.Errorf("The current generation ends its own round, got id=%d ok=%v", timerID, ok)
	}
	if r.IsPlaying() {
		t.Error("Room should be back to waiting")
	}
}

func TestRoom_TryWin(t *testing.T) {
	r := NewRoom("1", 8)
	r.Add("conn-a", "Alice")
	r.Add("conn-b", "Bob")

	if r.TryWin("conn-b", "lighthouse") {
		t.Fatal("TryWin outside a round should fail")
	}

	r.StartRound("lighthouse")

	if r.TryWin("conn-b", "Lighthouse") {
		t.Fatal("Match must be case-sensitive")
	}
	if !r.IsPlaying() {
		t.Fatal("Wrong guess must not end the round")
	}
	if !r.TryWin("conn-b", "lighthouse") {
		t.Fatal("Exact match should win")
	}
	if r.IsPlaying() {
		t.Error("Winning guess should end the round")
	}
	if r.TryWin("conn-a", "lighthouse") {
		t.Error("Only one winner per round")
	}
}

func TestRoom_FlushPending(t *testing.T) {
	r := NewRoom("1", 8)
	r.Add("conn-a", "Alice")
	r.Add("conn-b", "Bob")

	// nothing pending yet
	if _, _, _, ok := r.FlushPending(); ok {
		t.Fatal("Nothing should flush before any upload")
	}

	line := &models.LineSegment{LeftFrom: 1, TopFrom: 2, LeftTo: 3, TopTo: 4, Color: "#000", LineWidth: "2"}
	r.SetPendingLine(line, "conn-a")

	// segments outside a round are not flushed
	if _, _, _, ok := r.FlushPending(); ok {
		t.Fatal("Nothing should flush while the room is waiting")
	}

	r.StartRound("word")
	// StartRound raises the sent flag; the stale pre-round segment is dropped
	if _, _, _, ok := r.FlushPending(); ok {
		t.Fatal("Stale segment from before the round must not flush")
	}

	r.SetPendingLine(line, "conn-a")
	got, from, targets, ok := r.FlushPending()
	if !ok {
		t.Fatal("Fresh segment should flush")
	}
	if got != line || from != "conn-a" {
		t.Error("Flushed segment should be the pending one with its origin")
	}
	if len(targets) != 2 {
		t.Errorf("Expected 2 targets, got %d", len(targets))
	}

	// at most once per distinct update
	if _, _, _, ok := r.FlushPending(); ok {
		t.Fatal("A flushed segment must not flush again")
	}
}

func TestRoom_ConcurrentAdds(t *testing.T) {
	r := NewRoom("1", 64)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r.Add(fmt.Sprintf("conn-%d", n), "player")
		}(i)
	}
	wg.Wait()

	if r.MemberCount() != 32 {
		t.Errorf("Expected 32 members after concurrent joins, got %d", r.MemberCount())
	}
}

func TestPool_FindByMember(t *testing.T) {
	pool := NewPool(1, 5, 8)
	r, _ := pool.Get("3")
	r.Add("conn-a", "Alice")

	found, ok := pool.FindByMember("conn-a")
	if !ok || found.ID != "3" {
		t.Fatal("FindByMember should locate the member's room")
	}
	if _, ok := pool.FindByMember("conn-x"); ok {
		t.Fatal("FindByMember should miss unknown connections")
	}
}

func TestPool_FirstEmptyOrder(t *testing.T) {
	pool := NewPool(1, 5, 8)
	r1, _ := pool.Get("1")
	r1.Add("conn-a", "Alice")

	r, ok := pool.FirstEmpty()
	if !ok || r.ID != "2" {
		t.Fatalf("Expected first empty room 2, got %v", r)
	}
}
