package actor

import (
	"sync"

	"go.uber.org/atomic"
)

// OverflowPolicy controls what happens when a bounded user queue is full.
type OverflowPolicy int

const (
	// DropNewest dead-letters the incoming message, keeping the queue as-is.
	DropNewest OverflowPolicy = iota
	// DropOldest dead-letters the oldest queued message to make room.
	DropOldest
	// Grow lets the queue exceed its nominal capacity; no dead letters.
	Grow
	// Block returns Pending to the producer, who must await a freed slot.
	Block
)

// MailboxCapacity is Unbounded or Bounded(N).
type MailboxCapacity struct {
	Unbounded bool
	Capacity  int
}

// Unbounded constructs an unbounded capacity.
func Unbounded() MailboxCapacity { return MailboxCapacity{Unbounded: true} }

// Bounded constructs a bounded capacity of n.
func Bounded(n int) MailboxCapacity { return MailboxCapacity{Capacity: n} }

// MailboxPolicy configures a Mailbox's capacity, overflow behavior,
// throughput bound, and pressure-warning threshold.
type MailboxPolicy struct {
	Capacity        MailboxCapacity
	Overflow        OverflowPolicy
	ThroughputLimit int // 0 means "use dispatcher default"
	WarnThreshold   int // 0 means "no warning"
}

// DefaultMailboxPolicy returns an unbounded mailbox with no throughput
// override and no pressure warning, the zero-config default mailbox.
func DefaultMailboxPolicy() MailboxPolicy {
	return MailboxPolicy{Capacity: Unbounded(), Overflow: Grow}
}

// EnqueueOutcome is returned by enqueue_user.
type EnqueueOutcome int

const (
	Enqueued EnqueueOutcome = iota
	Pending
)

// waiter is woken when a Block-policy producer's slot frees up.
type waiter struct {
	ch chan struct{}
}

func newWaiter() *waiter { return &waiter{ch: make(chan struct{})} }

func (w *waiter) wait() { <-w.ch }

func (w *waiter) notify() {
	select {
	case <-w.ch:
		// already closed
	default:
		close(w.ch)
	}
}

// Mailbox buffers incoming messages for one cell. It exposes two FIFO
// queues — system (unbounded, never refused while the mailbox is open) and
// user (capacity/overflow per MailboxPolicy) — and a dequeue primitive that
// always prefers system messages and only yields user messages when the
// mailbox is not suspended. A Mailbox is safe for concurrent producers and
// exactly one concurrent consumer (the owning Dispatcher).
type Mailbox struct {
	policy MailboxPolicy

	sysMu  sync.Mutex
	sysQ   []SystemMessage

	userMu sync.Mutex
	userQ  []interface{}
	waiters []*waiter

	suspended atomic.Bool
	closed    atomic.Bool

	instrumentation *MailboxInstrumentation
	deadLetter      func(message interface{}, reason DeadLetterReason)
	notifyDispatcher func()
}

// NewMailbox constructs a mailbox with the given policy. deadLetter and
// notifyDispatcher are wired by ActorCell at construction time; either may
// be nil in tests that only exercise the queue mechanics directly.
func NewMailbox(policy MailboxPolicy, deadLetter func(interface{}, DeadLetterReason), notifyDispatcher func()) *Mailbox {
	return &Mailbox{
		policy:           policy,
		deadLetter:       deadLetter,
		notifyDispatcher: notifyDispatcher,
	}
}

// SetInstrumentation attaches optional telemetry; see mailbox_instrumentation.go.
func (m *Mailbox) SetInstrumentation(inst *MailboxInstrumentation) {
	m.instrumentation = inst
}

// EnqueueSystem always accepts, bypassing suspension; it only fails if the
// mailbox has been closed (its backing cell has fully deregistered).
func (m *Mailbox) EnqueueSystem(msg SystemMessage) error {
	if m.closed.Load() {
		return newSendError(SendErrClosed, msg)
	}

	m.sysMu.Lock()
	m.sysQ = append(m.sysQ, msg)
	m.sysMu.Unlock()

	m.requestSchedule()
	return nil
}

// EnqueueUser attempts to enqueue a user message per the configured
// overflow policy. It returns Enqueued, or Pending plus a waiter the caller
// should block on under the Block policy, or an error.
func (m *Mailbox) EnqueueUser(msg interface{}) (EnqueueOutcome, *waiter, error) {
	if m.closed.Load() {
		return Enqueued, nil, newSendError(SendErrClosed, msg)
	}
	if m.suspended.Load() {
		return Enqueued, nil, newSendError(SendErrSuspended, msg)
	}

	m.userMu.Lock()
	policyCap := m.policy.Capacity
	if policyCap.Unbounded || len(m.userQ) < policyCap.Capacity {
		m.userQ = append(m.userQ, msg)
		depth := len(m.userQ)
		m.userMu.Unlock()
		m.reportPressure(depth)
		m.requestSchedule()
		return Enqueued, nil, nil
	}

	// Queue is at capacity: apply overflow policy.
	switch m.policy.Overflow {
	case DropNewest:
		m.userMu.Unlock()
		m.letterDrop(msg, ReasonMailboxOverflow)
		return Enqueued, nil, newSendError(SendErrFull, msg)

	case DropOldest:
		oldest := m.userQ[0]
		m.userQ = append(m.userQ[:0], m.userQ[1:]...)
		m.userQ = append(m.userQ, msg)
		depth := len(m.userQ)
		m.userMu.Unlock()
		m.letterDrop(oldest, ReasonMailboxOverflow)
		m.reportPressure(depth)
		m.requestSchedule()
		return Enqueued, nil, nil

	case Grow:
		m.userQ = append(m.userQ, msg)
		depth := len(m.userQ)
		m.userMu.Unlock()
		m.reportPressure(depth)
		m.requestSchedule()
		return Enqueued, nil, nil

	case Block:
		w := newWaiter()
		m.waiters = append(m.waiters, w)
		m.userMu.Unlock()
		return Pending, w, nil

	default:
		m.userMu.Unlock()
		return Enqueued, nil, newSendError(SendErrFull, msg)
	}
}

// Dequeue returns the next system message if any; otherwise, if not
// suspended, the next user message; otherwise nil. Only one goroutine
// (the dispatcher's current batch runner) may call this at a time.
func (m *Mailbox) Dequeue() (interface{}, bool) {
	m.sysMu.Lock()
	if len(m.sysQ) > 0 {
		msg := m.sysQ[0]
		m.sysQ = m.sysQ[1:]
		m.sysMu.Unlock()
		return msg, true
	}
	m.sysMu.Unlock()

	if m.suspended.Load() {
		return nil, false
	}

	m.userMu.Lock()
	if len(m.userQ) == 0 {
		m.userMu.Unlock()
		return nil, false
	}
	msg := m.userQ[0]
	m.userQ = m.userQ[1:]
	depth := len(m.userQ)

	var freed *waiter
	if m.policy.Overflow == Block && len(m.waiters) > 0 {
		policyCap := m.policy.Capacity
		if policyCap.Unbounded || depth < policyCap.Capacity {
			freed = m.waiters[0]
			m.waiters = m.waiters[1:]
		}
	}
	m.userMu.Unlock()

	if freed != nil {
		// FIFO: the oldest blocked producer is woken first; it is
		// responsible for retrying EnqueueUser itself.
		freed.notify()
	}

	return msg, true
}

// Suspend sets the suspended flag with release semantics.
func (m *Mailbox) Suspend() { m.suspended.Store(true) }

// Resume clears the suspended flag with release semantics.
func (m *Mailbox) Resume() { m.suspended.Store(false) }

// IsSuspended reports the current suspension state with acquire semantics.
func (m *Mailbox) IsSuspended() bool { return m.suspended.Load() }

// Close marks the mailbox as permanently closed; further EnqueueSystem/User
// calls fail with SendErrClosed.
func (m *Mailbox) Close() { m.closed.Store(true) }

// SystemLen returns an advisory count of pending system messages.
func (m *Mailbox) SystemLen() int {
	m.sysMu.Lock()
	defer m.sysMu.Unlock()
	return len(m.sysQ)
}

// UserLen returns an advisory count of pending user messages.
func (m *Mailbox) UserLen() int {
	m.userMu.Lock()
	defer m.userMu.Unlock()
	return len(m.userQ)
}

// PrependUser splices messages onto the front of the user queue, ahead of
// anything already waiting. Used to replay stashed messages after a
// successful restart, in the order they were originally stashed.
func (m *Mailbox) PrependUser(messages []interface{}) {
	if len(messages) == 0 {
		return
	}
	m.userMu.Lock()
	m.userQ = append(append([]interface{}{}, messages...), m.userQ...)
	depth := len(m.userQ)
	m.userMu.Unlock()
	m.reportPressure(depth)
	m.requestSchedule()
}

func (m *Mailbox) requestSchedule() {
	if m.notifyDispatcher != nil {
		m.notifyDispatcher()
	}
}

func (m *Mailbox) letterDrop(msg interface{}, reason DeadLetterReason) {
	if m.deadLetter != nil {
		m.deadLetter(msg, reason)
	}
}

func (m *Mailbox) reportPressure(depth int) {
	if m.instrumentation != nil {
		m.instrumentation.observe(depth)
	}
}
