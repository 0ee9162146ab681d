// timer/timer.go
package timer

import (
	"container/heap"
	"sync"
	"time"
)

// task is one scheduled deadline.
type task struct {
	id       int64
	execute  time.Time
	callback func()
	index    int
}

type taskQueue []*task

func (q taskQueue) Len() int { return len(q) }

func (q taskQueue) Less(i, j int) bool {
	return q[i].execute.Before(q[j].execute)
}

func (q taskQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *taskQueue) Push(x interface{}) {
	n := len(*q)
	t := x.(*task)
	t.index = n
	*q = append(*q, t)
}

func (q *taskQueue) Pop() interface{} {
	old := *q
	n := len(old)
	t := old[n-1]
	t.index = -1
	*q = old[0 : n-1]
	return t
}

// Manager runs one-shot deadlines on a coarse clock. Round timeouts are
// measured in tens of seconds, so the 100ms resolution is plenty.
type Manager struct {
	queue      taskQueue
	mutex      sync.Mutex
	nextID     int64
	resolution time.Duration
	stopChan   chan struct{}
	stopOnce   sync.Once
}

func NewManager() *Manager {
	m := &Manager{
		queue:      make(taskQueue, 0),
		nextID:     1,
		resolution: 100 * time.Millisecond,
		stopChan:   make(chan struct{}),
	}
	heap.Init(&m.queue)
	go m.run()
	return m
}

// Schedule registers callback to fire once after delay and returns the
// deadline id for cancellation.
func (m *Manager) Schedule(delay time.Duration, callback func()) int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	t := &task{
		id:       m.nextID,
		execute:  time.Now().Add(delay),
		callback: callback,
	}
	m.nextID++

	heap.Push(&m.queue, t)
	return t.id
}

// Cancel drops a pending deadline. Cancelling an id that already fired or
// never existed is a no-op.
func (m *Manager) Cancel(id int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for i, t := range m.queue {
		if t.id == id {
			heap.Remove(&m.queue, i)
			break
		}
	}
}

// Stop shuts the clock down. Pending deadlines never fire after Stop.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *Manager) run() {
	ticker := time.NewTicker(m.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, t := range m.popDue(time.Now()) {
				go t.callback()
			}
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) popDue(now time.Time) []*task {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var due []*task
	for m.queue.Len() > 0 {
		t := m.queue[0]
		if t.execute.After(now) {
			break
		}
		heap.Pop(&m.queue)
		due = append(due, t)
	}
	return due
}
