// Package notify keeps the transient success and error messages shown at the top of the view.
// Each notification removes itself after a fixed interval; several may be active at once.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 5 * time.Second

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

type Notification struct {
	ID      string    `json:"id"`
	Kind    Kind      `json:"kind"`
	Text    string    `json:"text"`
	Expires time.Time `json:"expires"`
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules expiries. Tests substitute a manually advanced clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type entry struct {
	Notification
	timer Timer
}

// Queue holds the active notifications, newest first.
type Queue struct {
	mu       sync.Mutex
	clock    Clock
	ttl      time.Duration
	entries  []*entry
	onChange func([]Notification)
	closed   bool

	// version numbers snapshots under mu; deliverMu orders their delivery.
	version   uint64
	deliverMu sync.Mutex
	delivered uint64
}

// NewQueue creates a queue. onChange, if not nil, receives a snapshot after every change.
// Calls are serialized and never deliver a snapshot older than one already delivered. onChange
// may read the queue but must not push or dismiss.
func NewQueue(clock Clock, ttl time.Duration, onChange func([]Notification)) *Queue {
	if clock == nil {
		clock = SystemClock
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Queue{clock: clock, ttl: ttl, onChange: onChange}
}

// Push inserts a notification at the top and schedules its removal.
func (q *Queue) Push(kind Kind, text string) Notification {
	q.mu.Lock()
	n := Notification{
		ID:      uuid.NewString(),
		Kind:    kind,
		Text:    text,
		Expires: q.clock.Now().Add(q.ttl),
	}
	if q.closed {
		q.mu.Unlock()
		return n
	}
	e := &entry{Notification: n}
	q.entries = append([]*entry{e}, q.entries...)
	e.timer = q.clock.AfterFunc(q.ttl, func() { q.remove(n.ID) })
	version, snapshot := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(version, snapshot)
	return n
}

// Dismiss removes a notification before it expires.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	e := q.takeLocked(id)
	if e == nil {
		q.mu.Unlock()
		return false
	}
	e.timer.Stop()
	version, snapshot := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(version, snapshot)
	return true
}

// Active returns the visible notifications, newest first.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.copyLocked()
}

// Close cancels all pending expiries. Later pushes are ignored.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		e.timer.Stop()
	}
	q.entries = nil
	q.closed = true
}

func (q *Queue) remove(id string) {
	q.mu.Lock()
	if q.takeLocked(id) == nil {
		q.mu.Unlock()
		return
	}
	version, snapshot := q.snapshotLocked()
	q.mu.Unlock()

	q.notify(version, snapshot)
}

func (q *Queue) takeLocked(id string) *entry {
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return e
		}
	}
	return nil
}

// snapshotLocked records a change and returns its version with the new contents.
func (q *Queue) snapshotLocked() (uint64, []Notification) {
	q.version++
	return q.version, q.copyLocked()
}

func (q *Queue) copyLocked() []Notification {
	out := make([]Notification, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.Notification
	}
	return out
}

func (q *Queue) notify(version uint64, snapshot []Notification) {
	if q.onChange == nil {
		return
	}
	q.deliverMu.Lock()
	defer q.deliverMu.Unlock()
	if version <= q.delivered {
		return
	}
	q.delivered = version
	q.onChange(snapshot)
}
