package alarm

import (
	"container/heap"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/julianstephens/softworkday/internal/models"
)

var (
	ErrInvalidAlarm = errors.New("alarm: name and fire time are required")
	ErrStopped      = errors.New("alarm: engine stopped")
)

type alarmQueue []models.Alarm

func (q alarmQueue) Len() int { return len(q) }

func (q alarmQueue) Less(i, j int) bool {
	return q[i].When.Before(q[j].When)
}

func (q alarmQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *alarmQueue) Push(x any) {
	*q = append(*q, x.(models.Alarm))
}

func (q *alarmQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// Engine holds named alarms ordered by next fire time and emits a Fired
// event on C when each one goes off. Periodic alarms are re-armed from
// their scheduled time. Events that find the channel full are dropped.
type Engine struct {
	clock clockwork.Clock

	mu      sync.Mutex
	queue   alarmQueue
	out     chan models.Fired
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped uint64
}

func NewEngine(clock clockwork.Clock, bufferSize int) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if bufferSize <= 0 {
		bufferSize = 1
	}
	return &Engine{
		clock:  clock,
		queue:  make(alarmQueue, 0),
		out:    make(chan models.Fired, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

func (e *Engine) C() <-chan models.Fired {
	return e.out
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.stopped = true
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// Create registers an alarm, replacing any alarm with the same name.
func (e *Engine) Create(a models.Alarm) error {
	if a.Name == "" || a.When.IsZero() {
		return ErrInvalidAlarm
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return ErrStopped
	}

	e.removeLocked(a.Name)
	heap.Push(&e.queue, a)
	e.signalWakeup()
	return nil
}

// ClearAll removes every registered alarm.
func (e *Engine) ClearAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.queue = e.queue[:0]
	e.signalWakeup()
}

// List returns the registered alarms ordered by next fire time.
func (e *Engine) List() []models.Alarm {
	e.mu.Lock()
	out := make([]models.Alarm, len(e.queue))
	copy(out, e.queue)
	e.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].When.Before(out[j].When) })
	return out
}

func (e *Engine) Dropped() uint64 {
	return atomic.LoadUint64(&e.dropped)
}

func (e *Engine) removeLocked(name string) {
	for i := range e.queue {
		if e.queue[i].Name == name {
			heap.Remove(&e.queue, i)
			return
		}
	}
}

func (e *Engine) loop() {
	defer close(e.doneCh)
	defer close(e.out)

	var timer clockwork.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := next.When.Sub(e.clock.Now())
		if wait < 0 {
			wait = 0
		}
		if timer == nil {
			timer = e.clock.NewTimer(wait)
		} else {
			stopTimer(timer)
			timer.Reset(wait)
		}

		select {
		case <-timer.Chan():
			now := e.clock.Now()
			for _, ev := range e.popDue(now) {
				select {
				case e.out <- ev:
				default:
					atomic.AddUint64(&e.dropped, 1)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (models.Alarm, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.queue) == 0 {
		return models.Alarm{}, false
	}
	return e.queue[0], true
}

// popDue removes every alarm due at now and re-queues periodic ones at
// their next future occurrence.
func (e *Engine) popDue(now time.Time) []models.Fired {
	e.mu.Lock()
	defer e.mu.Unlock()

	var fired []models.Fired
	var rearm []models.Alarm
	for len(e.queue) > 0 {
		if e.queue[0].When.After(now) {
			break
		}
		a := heap.Pop(&e.queue).(models.Alarm)
		fired = append(fired, models.Fired{Name: a.Name, ScheduledAt: a.When, FiredAt: now})

		if a.Period > 0 {
			next := a.When.Add(a.Period)
			for !next.After(now) {
				next = next.Add(a.Period)
			}
			a.When = next
			rearm = append(rearm, a)
		}
	}
	for _, a := range rearm {
		heap.Push(&e.queue, a)
	}
	return fired
}

func stopTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
