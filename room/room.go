// room/room.go
package room

import (
	"strconv"
	"sync"

	"github.com/wfunc/drawguess/models"
)

// Phase 表示房间的对局状态
type Phase int

const (
	PhaseWaiting Phase = iota
	PhasePlaying
)

// Room holds the mutable state of one fixed room slot. All exported
// methods are safe for concurrent use; each room carries its own lock so
// traffic on unrelated rooms never contends.
type Room struct {
	ID       string
	Capacity int

	mu           sync.RWMutex
	members      []*models.Member
	hostID       string
	phase        Phase
	round        int64
	guessingWord string
	playingIDs   map[string]struct{}
	guessedIDs   map[string]struct{}
	readyIDs     map[string]struct{}

	// pending drawing update, coalesced between broadcast ticks
	pendingLine *models.LineSegment
	pendingFrom string
	lineSent    bool

	roundTimer int64
}

func NewRoom(id string, capacity int) *Room {
	return &Room{
		ID:         id,
		Capacity:   capacity,
		phase:      PhaseWaiting,
		lineSent:   true,
		playingIDs: make(map[string]struct{}),
		guessedIDs: make(map[string]struct{}),
		readyIDs:   make(map[string]struct{}),
	}
}

func (r *Room) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *Room) IsEmpty() bool {
	return r.MemberCount() == 0
}

func (r *Room) IsFull() bool {
	return r.MemberCount() >= r.Capacity
}

func (r *Room) HostID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hostID
}

func (r *Room) IsPlaying() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase == PhasePlaying
}

func (r *Room) GuessingWord() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.guessingWord
}

// HasMember reports whether connID is currently a member.
func (r *Room) HasMember(connID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.findLocked(connID) >= 0
}

// Members returns a copy of the membership list in join order.
func (r *Room) Members() []*models.Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*models.Member, 0, len(r.members))
	for _, m := range r.members {
		copied := *m
		members = append(members, &copied)
	}
	return members
}

// MemberIDs returns the connection IDs of all members in join order.
func (r *Room) MemberIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.members))
	for _, m := range r.members {
		ids = append(ids, m.ConnectionID)
	}
	return ids
}

// Rename updates the display name of an existing member. It reports false
// when connID is not a member.
func (r *Room) Rename(connID, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.findLocked(connID)
	if i < 0 {
		return false
	}
	r.members[i].Name = name
	return true
}

// Add appends a new member and marks them ready for the next round. The
// first member of an empty room becomes host. Add reports false when the
// room is full or connID is already a member.
func (r *Room) Add(connID, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.members) >= r.Capacity {
		return false
	}
	if r.findLocked(connID) >= 0 {
		return false
	}

	r.members = append(r.members, &models.Member{ConnectionID: connID, Name: name})
	r.readyIDs[connID] = struct{}{}
	if r.hostID == "" {
		r.hostID = connID
	}
	return true
}

// Claim atomically takes ownership of an empty room: the caller becomes
// the sole member and host. Reports false when the room is not empty.
func (r *Room) Claim(connID, name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.members) != 0 {
		return false
	}
	r.members = append(r.members, &models.Member{ConnectionID: connID, Name: name})
	r.readyIDs[connID] = struct{}{}
	r.hostID = connID
	return true
}

// Remove takes connID out of the membership and every round set. When the
// departing member was host and members remain, the longest-tenured
// remaining member is promoted. An emptied room is reset to Waiting so a
// dead round can never outlive its players.
//
// Returns the removed member, the promoted host (nil when the host did not
// change), whether a round was running at the time and the id of the
// round deadline the reset cleared, zero when the round survives. The
// caller owns cancelling that deadline.
func (r *Room) Remove(connID string) (removed, newHost *models.Member, wasPlaying bool, timerID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.findLocked(connID)
	if i < 0 {
		return nil, nil, false, 0
	}

	departed := *r.members[i]
	removed = &departed
	wasPlaying = r.phase == PhasePlaying

	r.members = append(r.members[:i], r.members[i+1:]...)
	delete(r.playingIDs, connID)
	delete(r.guessedIDs, connID)
	delete(r.readyIDs, connID)

	if len(r.members) == 0 {
		r.hostID = ""
		timerID = r.resetRoundLocked()
		return removed, nil, wasPlaying, timerID
	}

	if r.hostID == connID {
		r.hostID = r.members[0].ConnectionID
		promoted := *r.members[0]
		newHost = &promoted
	}
	return removed, newHost, wasPlaying, 0
}

// StartRound transitions the room into the playing phase. The ready
// members are locked in as this round's participants; later joiners
// spectate. The pending-line flag is raised so a stale segment from the
// previous round is never flushed. Returns the generation of the new
// round; ok is false on an empty room.
func (r *Room) StartRound(word string) (round int64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.members) == 0 {
		return 0, false
	}

	r.round++
	r.lineSent = true
	r.phase = PhasePlaying
	r.guessingWord = word
	r.guessedIDs = make(map[string]struct{})
	r.playingIDs = make(map[string]struct{}, len(r.members))
	for _, m := range r.members {
		if _, ready := r.readyIDs[m.ConnectionID]; ready {
			r.playingIDs[m.ConnectionID] = struct{}{}
		}
	}
	return r.round, true
}

// TryWin atomically checks the guess against the secret word and, on an
// exact match, ends the round. At most one caller can ever win a round:
// the phase flips to Waiting under the same lock that validated the match.
func (r *Room) TryWin(connID, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhasePlaying || r.guessingWord != text {
		return false
	}
	r.guessedIDs[connID] = struct{}{}
	r.resetRoundLocked()
	return true
}

// ResetRound unconditionally clears the active round and returns the id of
// the pending round deadline, zero when none was scheduled.
func (r *Room) ResetRound() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resetRoundLocked()
}

func (r *Room) resetRoundLocked() int64 {
	r.lineSent = true
	r.phase = PhaseWaiting
	r.guessingWord = ""
	r.guessedIDs = make(map[string]struct{})
	r.playingIDs = make(map[string]struct{})

	timer := r.roundTimer
	r.roundTimer = 0
	return timer
}

// ResetRoundIf clears the active round only when round is still the
// current generation. The timeout path goes through here so a deadline
// left over from an abandoned round can never end its successor.
func (r *Room) ResetRoundIf(round int64) (timerID int64, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhasePlaying || r.round != round {
		return 0, false
	}
	return r.resetRoundLocked(), true
}

// SetRoundTimer records the deadline scheduled for round. It reports
// false when that round already ended; the caller then owns cancelling
// the deadline it just scheduled.
func (r *Room) SetRoundTimer(round, id int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhasePlaying || r.round != round {
		return false
	}
	r.roundTimer = id
	return true
}

// SetPendingLine stores the latest drawn segment, replacing any segment
// that has not been flushed yet. Coalescing, not buffering: intermediate
// segments between ticks are dropped.
func (r *Room) SetPendingLine(line *models.LineSegment, from string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pendingLine = line
	r.pendingFrom = from
	r.lineSent = false
}

// FlushPending hands the unsent pending segment to the broadcast loop and
// marks it sent, all under one lock so a segment is broadcast at most
// once. ok is false when there is nothing to flush: the segment went out
// already, no round is running, or the room is empty.
func (r *Room) FlushPending() (line *models.LineSegment, from string, targets []string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lineSent || r.phase != PhasePlaying || len(r.members) == 0 || r.pendingLine == nil {
		return nil, "", nil, false
	}

	r.lineSent = true
	targets = make([]string, 0, len(r.members))
	for _, m := range r.members {
		targets = append(targets, m.ConnectionID)
	}
	return r.pendingLine, r.pendingFrom, targets, true
}

// Snapshot captures the room for client bootstrap.
func (r *Room) Snapshot() *models.RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := make([]*models.Member, 0, len(r.members))
	for _, m := range r.members {
		copied := *m
		members = append(members, &copied)
	}
	return &models.RoomSnapshot{
		RoomID:    r.ID,
		IsPlaying: r.phase == PhasePlaying,
		HostID:    r.hostID,
		Members:   members,
	}
}

func (r *Room) findLocked(connID string) int {
	for i, m := range r.members {
		if m.ConnectionID == connID {
			return i
		}
	}
	return -1
}

// --- 房间池 ---

// Pool is the fixed set of room slots, keyed by the decimal room number.
// The map is built once at startup and never mutated afterwards, so
// lookups need no lock; the per-room locks guard everything mutable.
type Pool struct {
	rooms    map[string]*Room
	minID    int
	maxID    int
	capacity int
}

func NewPool(minID, maxID, capacity int) *Pool {
	p := &Pool{
		rooms:    make(map[string]*Room, maxID-minID+1),
		minID:    minID,
		maxID:    maxID,
		capacity: capacity,
	}
	for i := minID; i <= maxID; i++ {
		id := strconv.Itoa(i)
		p.rooms[id] = NewRoom(id, capacity)
	}
	return p
}

func (p *Pool) Get(roomID string) (*Room, bool) {
	r, exists := p.rooms[roomID]
	return r, exists
}

// InRange reports whether roomID names a slot of this pool.
func (p *Pool) InRange(roomID string) bool {
	n, err := strconv.Atoi(roomID)
	if err != nil {
		return false
	}
	return n >= p.minID && n <= p.maxID
}

// ForEach visits every room in identifier order.
func (p *Pool) ForEach(visit func(r *Room)) {
	for i := p.minID; i <= p.maxID; i++ {
		visit(p.rooms[strconv.Itoa(i)])
	}
}

func (p *Pool) IsEmpty(roomID string) bool {
	r, exists := p.rooms[roomID]
	if !exists {
		return true
	}
	return r.IsEmpty()
}

func (p *Pool) IsFull(roomID string) bool {
	r, exists := p.rooms[roomID]
	if !exists {
		return true
	}
	return r.IsFull()
}

// FirstEmpty returns the lowest-numbered room with no members.
func (p *Pool) FirstEmpty() (*Room, bool) {
	for i := p.minID; i <= p.maxID; i++ {
		r := p.rooms[strconv.Itoa(i)]
		if r.IsEmpty() {
			return r, true
		}
	}
	return nil, false
}

// HasOpenRoom reports whether at least one room is below capacity.
func (p *Pool) HasOpenRoom() bool {
	for _, r := range p.rooms {
		if !r.IsFull() {
			return true
		}
	}
	return false
}

// FindByMember scans the pool for the room holding connID. The pool is
// small and fixed, so the linear scan is the simplest correct lookup.
func (p *Pool) FindByMember(connID string) (*Room, bool) {
	for i := p.minID; i <= p.maxID; i++ {
		r := p.rooms[strconv.Itoa(i)]
		if r.HasMember(connID) {
			return r, true
		}
	}
	return nil, false
}

func (p *Pool) MinID() int { return p.minID }
func (p *Pool) MaxID() int { return p.maxID }
func (p *Pool) Size() int  { return len(p.rooms) }

// OccupiedCount counts rooms with at least one member.
func (p *Pool) OccupiedCount() int {
	count := 0
	for _, r := range p.rooms {
		if !r.IsEmpty() {
			count++
		}
	}
	return count
}
