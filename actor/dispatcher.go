package actor

import (
	"context"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/fraktor-go/actor/eventlog"
)

// dispatcherState is the tri-state scheduling flag every Dispatcher
// enforces so at most one executor callback ever drains a given mailbox.
type dispatcherState int32

const (
	stateIdle dispatcherState = iota
	stateScheduled
	stateRunning
)

const (
	// DefaultThroughput bounds how many messages a single batch drains
	// before yielding the executor goroutine back to the pool.
	DefaultThroughput = 300
	// MaxExecutorRetries bounds inline retries after a rejected submission
	// before the dispatcher gives up and reports the failure.
	MaxExecutorRetries = 3
)

// Executor abstracts the goroutine pool a Dispatcher submits batch-drain
// work to. The default implementation just spawns a goroutine; tests may
// substitute a synchronous or failure-injecting Executor.
type Executor interface {
	// Submit asks the executor to run fn. It returns an error if the
	// executor rejects the submission (e.g. a bounded worker pool is full).
	Submit(fn func()) error
}

// GoExecutor runs every submission on its own goroutine, the simplest
// Executor and the dispatcher's default.
type GoExecutor struct{}

// Submit always accepts and runs fn on a new goroutine.
func (GoExecutor) Submit(fn func()) error {
	go fn()
	return nil
}

// BoundedExecutor caps the number of batch-drain goroutines running at any
// moment via an errgroup.Group plus a counting semaphore, instead of
// GoExecutor's one-goroutine-per-submission default. Use it for systems
// spawning many actors where an unbounded goroutine fan-out would thrash
// the scheduler.
type BoundedExecutor struct {
	group *errgroup.Group
	sem   chan struct{}
}

// NewBoundedExecutor builds an executor allowing at most maxConcurrent
// batches to run at once; further submissions queue on the semaphore
// inside their own goroutine rather than blocking the caller.
func NewBoundedExecutor(ctx context.Context, maxConcurrent int) *BoundedExecutor {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	group, _ := errgroup.WithContext(ctx)
	return &BoundedExecutor{group: group, sem: make(chan struct{}, maxConcurrent)}
}

// Submit always accepts; it queues fn behind the semaphore on its own
// goroutine so Submit itself never blocks the dispatcher's RequestExecution
// caller.
func (e *BoundedExecutor) Submit(fn func()) error {
	e.group.Go(func() error {
		e.sem <- struct{}{}
		defer func() { <-e.sem }()
		fn()
		return nil
	})
	return nil
}

// Wait blocks until every submitted batch has returned, useful in tests
// that need deterministic shutdown.
func (e *BoundedExecutor) Wait() error {
	return e.group.Wait()
}

// DispatcherConfig configures batch size, optional wall-time budget per
// batch, and the starvation-warning threshold.
type DispatcherConfig struct {
	ThroughputLimit    int
	ThroughputDeadline time.Duration // 0 disables the wall-time budget
	StarvationDeadline time.Duration // 0 disables starvation detection
	Executor           Executor
}

// DefaultDispatcherConfig is the zero-config dispatcher every Props starts with.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		ThroughputLimit: DefaultThroughput,
		Executor:        GoExecutor{},
	}
}

// Dispatcher ensures a Mailbox is drained by at most one executor goroutine
// at a time, bounds per-batch work, and reports starvation/executor-failure
// diagnostics through EventStream + eventlog.
type Dispatcher struct {
	config  DispatcherConfig
	mailbox *Mailbox
	invoker MessageInvoker

	state        atomic.Int32
	lastProgress atomic.Int64 // unix nanos of the last processed message

	log    eventlog.Logger
	stream *EventStream
	pid    Pid
}

// NewDispatcher binds config to mailbox; SetInvoker must be called before
// any message is enqueued (ActorCell wires this at cell construction time).
func NewDispatcher(config DispatcherConfig, mailbox *Mailbox, log eventlog.Logger, stream *EventStream, pid Pid) *Dispatcher {
	if config.ThroughputLimit <= 0 {
		config.ThroughputLimit = DefaultThroughput
	}
	if config.Executor == nil {
		config.Executor = GoExecutor{}
	}
	if log == nil {
		log = eventlog.Nop()
	}
	d := &Dispatcher{config: config, mailbox: mailbox, log: log, stream: stream, pid: pid}
	d.lastProgress.Store(time.Now().UnixNano())
	mailbox.notifyDispatcher = d.RequestExecution
	return d
}

// SetInvoker binds the cell that will receive InvokeSystemMessage/
// InvokeUserMessage calls during a batch.
func (d *Dispatcher) SetInvoker(invoker MessageInvoker) {
	d.invoker = invoker
}

// RequestExecution is called by the mailbox on every enqueue. If the
// dispatcher is Idle it transitions to Scheduled and submits a batch to the
// executor; otherwise it does nothing (a batch is already pending or
// running and will observe the new message).
func (d *Dispatcher) RequestExecution() {
	if !d.state.CAS(int32(stateIdle), int32(stateScheduled)) {
		d.checkStarvation()
		return
	}
	d.submit(0)
}

func (d *Dispatcher) submit(attempt int) {
	err := d.config.Executor.Submit(d.runBatch)
	if err == nil {
		return
	}

	if attempt < MaxExecutorRetries {
		d.log.Warn("dispatcher executor rejected submission, retrying",
			eventlog.Error(err))
		d.submit(attempt + 1)
		return
	}

	d.log.Error("dispatcher executor rejected submission, giving up this cycle",
		eventlog.Error(err))
	// Reset to Idle without dropping queued messages; the next enqueue (or
	// an external nudge) will attempt scheduling again.
	d.state.Store(int32(stateIdle))
}

// runBatch is the executor callback: CAS Scheduled -> Running, drain up to
// ThroughputLimit messages (system-priority, bounded by ThroughputDeadline
// if set), then CAS Running -> Idle. If the mailbox still has visible work
// after going Idle, re-submit immediately (race-recovery loop) so a message
// enqueued during the final CAS is never stranded.
func (d *Dispatcher) runBatch() {
	if !d.state.CAS(int32(stateScheduled), int32(stateRunning)) {
		return
	}

	deadline := time.Time{}
	if d.config.ThroughputDeadline > 0 {
		deadline = time.Now().Add(d.config.ThroughputDeadline)
	}

	processed := 0
	for processed < d.config.ThroughputLimit {
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}

		msg, ok := d.mailbox.Dequeue()
		if !ok {
			break
		}

		d.invoke(msg)
		processed++
		d.lastProgress.Store(time.Now().UnixNano())
	}

	d.state.Store(int32(stateIdle))

	if d.hasVisibleWork() {
		d.RequestExecution()
	}
}

func (d *Dispatcher) invoke(msg interface{}) {
	if d.invoker == nil {
		return
	}
	if sys, ok := msg.(SystemMessage); ok {
		d.invoker.InvokeSystemMessage(sys)
		return
	}
	d.invoker.InvokeUserMessage(msg)
}

func (d *Dispatcher) hasVisibleWork() bool {
	if d.mailbox.SystemLen() > 0 {
		return true
	}
	return !d.mailbox.IsSuspended() && d.mailbox.UserLen() > 0
}

func (d *Dispatcher) checkStarvation() {
	if d.config.StarvationDeadline <= 0 {
		return
	}
	last := time.Unix(0, d.lastProgress.Load())
	if time.Since(last) >= d.config.StarvationDeadline {
		d.log.Warn("dispatcher starvation detected: mailbox could not be scheduled in time")
		if d.stream != nil {
			d.stream.Publish(&LogEvent{Level: LogWarn, Message: "dispatcher starvation detected", Origin: d.pid})
		}
	}
}

// EnqueueSystem enqueues a system message on the dispatcher's mailbox and
// requests execution.
func (d *Dispatcher) EnqueueSystem(msg SystemMessage) error {
	return d.mailbox.EnqueueSystem(msg)
}

// EnqueueUser enqueues a user message, blocking on a Block-policy waiter if
// the mailbox demands it. Callers that cannot block (e.g. a non-blocking
// Send) should instead call d.Mailbox().EnqueueUser directly and handle
// Pending themselves.
func (d *Dispatcher) EnqueueUser(msg interface{}) error {
	outcome, w, err := d.mailbox.EnqueueUser(msg)
	if err != nil {
		return err
	}
	if outcome == Pending && w != nil {
		w.wait()
		return d.EnqueueUser(msg)
	}
	return nil
}

// Mailbox returns the dispatcher's bound mailbox.
func (d *Dispatcher) Mailbox() *Mailbox { return d.mailbox }

// IsRunning reports whether a batch is currently executing.
func (d *Dispatcher) IsRunning() bool {
	return dispatcherState(d.state.Load()) == stateRunning
}
