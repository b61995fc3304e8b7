package actor

import (
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/emirpasic/gods/stacks/linkedliststack"

	"github.com/fraktor-go/actor/eventlog"
)

// cellState tracks an ActorCell's lifecycle independent of its mailbox's
// suspended flag: a cell is Restarting or Stopping even while its mailbox is
// suspended. Once Stop has begun, user messages are dead-lettered, pipe-task
// results are dropped, and a repeated Stop is ignored.
type cellState int32

const (
	cellAlive cellState = iota
	cellRestarting
	cellStopping
	cellStopped
)

// ActorCell is the runtime state backing one live actor: its current
// instance, its mailbox/dispatcher pair, its children and restart
// statistics, and the watch/stash bookkeeping needed to implement the
// system-message table in full. It implements both MessageInvoker (so its
// Dispatcher can drive it) and Context (so the running Actor can drive the
// runtime back).
type ActorCell struct {
	pid       Pid
	parentPid Pid
	name      string

	system      *SystemState
	actorSystem *ActorSystem
	props       *Props

	mailbox    *Mailbox
	dispatcher *Dispatcher
	log        eventlog.Logger

	actor Actor

	stateMu    sync.Mutex
	state      cellState
	children   pidSlice
	childStats map[Pid]*RestartStatistics
	watchers   map[Pid]*watchEntry // pid -> how to notify it of our termination
	watching   map[Pid]struct{}    // pids we have outstanding Watch/WatchWith registrations on

	// terminated is set once during this cell's own Stop teardown, before
	// its watchers are notified, after which a late-arriving Watch is answered immediately
	// instead of being recorded (mirroring the original's is_terminated
	// check in handle_watch).
	terminated atomic.Bool

	stash *linkedliststack.Stack

	pipeTasksMu    sync.Mutex
	pipeTasks      map[PipeTaskID]*pipeTask
	nextPipeTaskID atomic.Uint64

	adaptersMu    sync.Mutex
	adapters      map[AdapterID]Pid
	nextAdapterID atomic.Uint64

	// currentMessage/currentSender/currentHeader are only ever touched from
	// the single goroutine running this cell's current dispatcher batch, so
	// they need no lock (matching the mailbox's one-consumer contract).
	currentMessage interface{}
	currentSender  Pid
	currentHeader  MessageHeader
}

type watchEntry struct {
	custom interface{} // non-nil for WatchWith: delivered as a user message instead of TerminatedMsg
}

// newActorCell builds a freshly allocated, not-yet-started cell. Callers
// (SystemState.spawnChild) register it in the cell map and send it Create
// before anything else can observe it.
func newActorCell(system *SystemState, actorSystem *ActorSystem, pid, parent Pid, name string, props *Props, log eventlog.Logger) *ActorCell {
	if log == nil {
		log = eventlog.Nop()
	}
	c := &ActorCell{
		pid:         pid,
		parentPid:   parent,
		name:        name,
		system:      system,
		actorSystem: actorSystem,
		props:       props,
		log:         log,
		childStats:  make(map[Pid]*RestartStatistics),
		watchers:    make(map[Pid]*watchEntry),
		watching:    make(map[Pid]struct{}),
		stash:       linkedliststack.New(),
		pipeTasks:   make(map[PipeTaskID]*pipeTask),
		adapters:    make(map[AdapterID]Pid),
	}

	c.mailbox = NewMailbox(props.mailboxPolicy, c.deadLetterCurrent, nil)
	if props.mailboxPolicy.WarnThreshold > 0 {
		capacity := 0
		if !props.mailboxPolicy.Capacity.Unbounded {
			capacity = props.mailboxPolicy.Capacity.Capacity
		}
		c.mailbox.SetInstrumentation(NewMailboxInstrumentation(pid, capacity, props.mailboxPolicy.WarnThreshold, system.EventStream(), system.MonotonicNow))
	}
	dispatcherConfig := props.dispatcherConfig
	if props.mailboxPolicy.ThroughputLimit > 0 {
		dispatcherConfig.ThroughputLimit = props.mailboxPolicy.ThroughputLimit
	}
	c.dispatcher = NewDispatcher(dispatcherConfig, c.mailbox, log, system.EventStream(), pid)
	c.dispatcher.SetInvoker(c)
	return c
}

func (c *ActorCell) deadLetterCurrent(message interface{}, reason DeadLetterReason) {
	c.system.recordDeadLetter(message, c.pid, reason, c.pid)
}

func (c *ActorCell) strategy() SupervisorStrategy {
	if provider, ok := c.actor.(SupervisorStrategyProvider); ok {
		if s := provider.SupervisorStrategy(); s != nil {
			return s
		}
	}
	return c.props.supervisorStrategy
}

// --- MessageInvoker ---------------------------------------------------------

func (c *ActorCell) InvokeSystemMessage(msg SystemMessage) {
	switch m := msg.(type) {
	case createMessage:
		c.handleCreate()
	case recreateMessage:
		c.handleRecreate()
	case suspendMessage:
		c.mailbox.Suspend()
	case resumeMessage:
		c.mailbox.Resume()
	case stopMessage:
		c.handleStop()
	case StopChildMsg:
		c.handleStopChild(m.Child)
	case WatchMsg:
		c.handleWatch(m)
	case UnwatchMsg:
		c.handleUnwatch(m)
	case TerminatedMsg:
		c.handleTerminated(m.Who)
	case FailureMsg:
		c.handleFailure(m.Payload)
	case PipeTaskMsg:
		c.handlePipeTask(m.ID)
	default:
		c.log.Warn("unrecognized system message", eventlog.Message(fmt.Sprintf("%T", msg)))
	}
}

func (c *ActorCell) InvokeUserMessage(raw interface{}) {
	c.stateMu.Lock()
	terminal := c.state == cellStopping || c.state == cellStopped
	c.stateMu.Unlock()
	if terminal {
		c.deadLetterCurrent(raw, ReasonCellTerminated)
		return
	}

	c.processMessage(raw)
}

func (c *ActorCell) processMessage(raw interface{}) {
	c.currentMessage = UnwrapEnvelopeMessage(raw)
	c.currentSender = UnwrapEnvelopeSender(raw)
	c.currentHeader = UnwrapEnvelopeHeader(raw)

	if c.actor == nil {
		c.deadLetterCurrent(raw, ReasonCellTerminated)
		return
	}

	err := c.actor.Receive(c)
	if err != nil {
		c.handleUserMessageFailure(err)
	}
}

// deliverAutoReceive runs an auto-receive lifecycle message (Started,
// Restarting, Stopping, Stopped) straight through Receive, synchronously,
// from within the system-message handler driving the transition. Actors
// that don't care type-switch past it in their Receive method, same as any
// other message they choose to ignore.
func (c *ActorCell) deliverAutoReceive(stage LifecycleStage) {
	if c.actor == nil {
		return
	}
	c.currentMessage = autoReceiveMessageFor(stage)
	c.currentSender = Pid{}
	c.currentHeader = nil
	if err := c.actor.Receive(c); err != nil {
		c.handleUserMessageFailure(err)
	}
}

// --- Create / Restart --------------------------------------------------------

// handleCreate runs pre_start and, only on success, publishes Started and
// delivers the matching auto-receive message. A failing pre_start instead
// reports a failure upward and leaves the mailbox suspended, exactly as any
// other Receive error would.
func (c *ActorCell) handleCreate() {
	c.stateMu.Lock()
	c.state = cellAlive
	c.stateMu.Unlock()

	c.incarnate()
	if !c.runPreStart() {
		return
	}

	c.system.EventStream().Publish(&LifecycleEvent{
		Pid: c.pid, Parent: c.parentPid, Name: c.name, Stage: StageStarted, Ts: c.system.MonotonicNow(),
	})
	c.deliverAutoReceive(StageStarted)
}

func (c *ActorCell) incarnate() {
	c.actor = c.props.producer()
}

// runPreStart reports true on success. On failure it reports the error
// upward (suspending the mailbox) and returns false, so callers never
// publish a lifecycle event or resume traffic for an instance that never
// finished starting.
func (c *ActorCell) runPreStart() bool {
	if starter, ok := c.actor.(PreStarter); ok {
		if err := starter.PreStart(c); err != nil {
			c.handleUserMessageFailure(err)
			return false
		}
	}
	return true
}

// handleRecreate implements the Restart directive's lifecycle: post_stop on
// the outgoing instance, drop any in-flight pipe tasks, publish Stopped,
// swap in a fresh instance via the producer, then run pre_start and publish
// Restarted (and resume the mailbox) only if that succeeded.
func (c *ActorCell) handleRecreate() {
	c.stateMu.Lock()
	c.state = cellRestarting
	c.stateMu.Unlock()

	c.deliverAutoReceive(StageRestarting)
	c.runPostStop()
	c.clearPipeTasks()

	c.system.EventStream().Publish(&LifecycleEvent{
		Pid: c.pid, Parent: c.parentPid, Name: c.name, Stage: StageStopped, Ts: c.system.MonotonicNow(),
	})

	c.incarnate()

	c.stateMu.Lock()
	c.state = cellAlive
	c.stateMu.Unlock()

	if !c.runPreStart() {
		return
	}

	c.mailbox.Resume()
	c.system.EventStream().Publish(&LifecycleEvent{
		Pid: c.pid, Parent: c.parentPid, Name: c.name, Stage: StageRestarted, Ts: c.system.MonotonicNow(),
	})
	c.deliverAutoReceive(StageStarted)
	c.replayStash()
}

func (c *ActorCell) clearPipeTasks() {
	c.pipeTasksMu.Lock()
	c.pipeTasks = make(map[PipeTaskID]*pipeTask)
	c.pipeTasksMu.Unlock()
}

func (c *ActorCell) runPostStop() {
	if c.actor == nil {
		return
	}
	if stopper, ok := c.actor.(PostStopper); ok {
		if err := stopper.PostStop(c); err != nil {
			c.log.Warn("post_stop returned an error", eventlog.Error(err))
		}
	}
}

func (c *ActorCell) replayStash() {
	var replay []interface{}
	for {
		v, ok := c.stash.Pop()
		if !ok {
			break
		}
		replay = append(replay, v)
	}
	// stash.Pop is LIFO; reverse to restore original stash order (FIFO).
	for i, j := 0, len(replay)-1; i < j; i, j = i+1, j-1 {
		replay[i], replay[j] = replay[j], replay[i]
	}
	c.mailbox.PrependUser(replay)
}

// --- Failure propagation -----------------------------------------------------

func (c *ActorCell) handleUserMessageFailure(err error) {
	classified := ClassifyError(err)
	c.mailbox.Suspend()

	payload := FailurePayload{
		Child:           c.pid,
		Reason:          classified.Reason,
		Err:             classified.Err,
		MessageSnapshot: c.currentMessage,
		Timestamp:       c.system.MonotonicNow(),
	}
	c.system.reportFailure(payload)
}

// handleFailure runs on the PARENT cell, delivered as a FailureMsg from a
// failing child. It consults the (possibly dynamic) supervisor strategy,
// records the failure in this child's restart statistics, and applies the
// resulting directive to every pid the strategy says is Affected.
func (c *ActorCell) handleFailure(payload FailurePayload) {
	stats := c.getOrCreateChildStats(payload.Child)
	stats.Fail(payload.Timestamp)

	actorErr := payload.ToActorError()
	directive := c.strategy().HandleFailure(payload.Child, stats, actorErr, payload.MessageSnapshot, payload.Timestamp)

	siblings := c.snapshotChildren()
	affected := c.strategy().Affected(payload.Child, siblings)

	switch directive {
	case DirectiveRestart:
		// A Recreate send failing for even one affected pid means the
		// restart cannot be carried out as intended; the whole outcome
		// downgrades to Escalate rather than leaving some siblings
		// restarted and others not (never a partial Stop).
		restartFailed := false
		for _, pid := range affected {
			if err := c.system.sendSystemMessage(pid, Recreate); err != nil {
				restartFailed = true
			}
		}
		if restartFailed {
			c.system.recordFailureOutcome(payload.Child, OutcomeEscalate, payload)
			c.escalate(payload)
			return
		}
		c.system.recordFailureOutcome(payload.Child, OutcomeRestart, payload)

	case DirectiveStop:
		for _, pid := range affected {
			_ = c.system.sendSystemMessage(pid, Stop)
			c.clearChildStats(pid)
		}
		c.system.recordFailureOutcome(payload.Child, OutcomeStop, payload)

	case DirectiveEscalate:
		for _, pid := range affected {
			_ = c.system.sendSystemMessage(pid, Stop)
		}
		c.system.recordFailureOutcome(payload.Child, OutcomeEscalate, payload)
		c.escalate(payload)
	}
}

// escalate re-reports the failure one level up, attributed to this cell
// rather than the original child, matching report_failure's own walk up
// the parent chain.
func (c *ActorCell) escalate(payload FailurePayload) {
	escalated := FailurePayload{
		Child:           c.pid,
		Reason:          payload.Reason,
		Err:             payload.Err,
		MessageSnapshot: payload.MessageSnapshot,
		Timestamp:       c.system.MonotonicNow(),
	}
	c.system.reportFailure(escalated)
}

func (c *ActorCell) clearChildStats(child Pid) {
	c.stateMu.Lock()
	delete(c.childStats, child)
	c.stateMu.Unlock()
}

func (c *ActorCell) getOrCreateChildStats(child Pid) *RestartStatistics {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	stats, ok := c.childStats[child]
	if !ok {
		stats = NewRestartStatistics()
		c.childStats[child] = stats
	}
	return stats
}

func (c *ActorCell) snapshotChildRestartStats(child Pid) *RestartStatistics {
	c.stateMu.Lock()
	stats, ok := c.childStats[child]
	c.stateMu.Unlock()
	if !ok {
		return nil
	}
	return stats.Snapshot()
}

func (c *ActorCell) addChild(child Pid) {
	c.stateMu.Lock()
	if !c.children.contains(child) {
		c.children = append(c.children, child)
	}
	c.stateMu.Unlock()
}

func (c *ActorCell) snapshotChildren() []Pid {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.children.snapshot()
}

// --- Watch / Unwatch / Terminated ---------------------------------------------

func (c *ActorCell) handleWatch(m WatchMsg) {
	if c.terminated.Load() {
		// Already gone; there will never be a Stop-driven notification to
		// deliver, so answer immediately instead of recording a watcher
		// that will sit forgotten forever.
		_ = c.system.sendSystemMessage(m.Watcher, TerminatedMsg{Who: c.pid})
		return
	}
	c.stateMu.Lock()
	c.watchers[m.Watcher] = &watchEntry{custom: m.Custom}
	c.stateMu.Unlock()
}

func (c *ActorCell) handleUnwatch(m UnwatchMsg) {
	c.stateMu.Lock()
	delete(c.watchers, m.Watcher)
	c.stateMu.Unlock()
}

// handleTerminated runs on a watcher cell when an explicitly watched target
// reports its termination. Parent/child bookkeeping is unrelated to this
// path: a stopping child removes itself from its parent's children list
// directly as part of its own Stop teardown (see handleStop), so this
// purely serves the application-level OnTerminated callback that Watch/
// WatchWith exist for.
func (c *ActorCell) handleTerminated(who Pid) {
	if watcher, ok := c.actor.(TerminatedWatcher); ok {
		watcher.OnTerminated(c, who)
	}
}

// removeChild detaches child from this cell's bookkeeping. Called directly
// by a stopping child on its own parent (see handleStop) — never through
// the Terminated system message, which is reserved for explicit watchers.
func (c *ActorCell) removeChild(child Pid) {
	c.stateMu.Lock()
	c.children = c.children.remove(child)
	delete(c.childStats, child)
	c.stateMu.Unlock()
}

// --- Stop ------------------------------------------------------------------

// handleStop tears this cell down in a single synchronous pass, matching
// the original's handle_stop: run post_stop on self first, publish
// Stopped, fire-and-forget Stop to every current child without waiting for
// any of them to finish, mark terminated (dropping pipe tasks), notify our
// own explicit watchers, detach ourselves from our parent's children list
// directly, release our name, deregister, and finally let SystemState know
// in case we were a guardian.
func (c *ActorCell) handleStop() {
	c.stateMu.Lock()
	if c.state == cellStopping || c.state == cellStopped {
		c.stateMu.Unlock()
		return
	}
	c.state = cellStopping
	c.mailbox.Suspend()
	c.stateMu.Unlock()

	c.deliverAutoReceive(StageStopping)
	c.runPostStop()

	c.system.EventStream().Publish(&LifecycleEvent{
		Pid: c.pid, Parent: c.parentPid, Name: c.name, Stage: StageStopped, Ts: c.system.MonotonicNow(),
	})

	children := c.snapshotChildren()
	for _, child := range children {
		_ = c.system.sendSystemMessage(child, Stop)
	}

	c.stateMu.Lock()
	c.state = cellStopped
	for _, child := range children {
		delete(c.childStats, child)
	}
	c.children = nil

	watching := make([]Pid, 0, len(c.watching))
	for pid := range c.watching {
		watching = append(watching, pid)
	}
	c.watching = nil
	watchers := c.watchers
	c.watchers = nil
	c.stateMu.Unlock()

	c.clearPipeTasks()
	c.terminated.Store(true)

	for _, target := range watching {
		_ = c.system.sendSystemMessage(target, UnwatchMsg{Watcher: c.pid})
	}

	for watcher, entry := range watchers {
		if entry != nil && entry.custom != nil {
			if err := c.deliverUserMessage(watcher, entry.custom); err != nil {
				if sendErr, ok := err.(*SendError); !ok || sendErr.Kind != SendErrFull {
					c.system.recordDeadLetter(entry.custom, watcher, ReasonRoutingFailure, c.pid)
				}
			}
			continue
		}
		_ = c.system.sendSystemMessage(watcher, TerminatedMsg{Who: c.pid})
	}

	if parentCell, ok := c.system.Cell(c.parentPid); ok {
		parentCell.removeChild(c.pid)
	}

	c.mailbox.Close()
	c.system.releaseName(c.parentPid, c.name)
	c.system.removeCell(c.pid)
	c.system.notifyGuardianStopped(c.pid)
}

func (c *ActorCell) handleStopChild(child Pid) {
	c.stateMu.Lock()
	isChild := c.children.contains(child)
	c.stateMu.Unlock()
	if !isChild {
		return
	}
	_ = c.system.sendSystemMessage(child, Stop)
}

func (c *ActorCell) deliverUserMessage(target Pid, message interface{}) error {
	cell, ok := c.system.Cell(target)
	if !ok {
		c.system.recordDeadLetter(message, target, ReasonRecipientMissing, c.pid)
		return ErrMailboxClosed
	}
	return cell.dispatcher.EnqueueUser(&Envelope{Message: message, Sender: c.pid})
}

// --- Context ------------------------------------------------------------

func (c *ActorCell) Self() Pid   { return c.pid }
func (c *ActorCell) Parent() Pid { return c.parentPid }

func (c *ActorCell) Message() interface{} { return c.currentMessage }
func (c *ActorCell) Sender() Pid          { return c.currentSender }

func (c *ActorCell) Send(pid Pid, message interface{}) {
	c.deliverOrDeadLetter(pid, &Envelope{Message: message})
}

func (c *ActorCell) Request(pid Pid, message interface{}) {
	c.deliverOrDeadLetter(pid, &Envelope{Message: message, Sender: c.pid})
}

func (c *ActorCell) Respond(message interface{}) {
	if c.currentSender.IsZero() {
		c.system.recordDeadLetter(message, c.currentSender, ReasonRecipientMissing, c.pid)
		return
	}
	c.deliverOrDeadLetter(c.currentSender, &Envelope{Message: message, Sender: c.pid})
}

func (c *ActorCell) Forward(pid Pid) {
	c.deliverOrDeadLetter(pid, &Envelope{Message: c.currentMessage, Sender: c.currentSender, Header: c.currentHeader})
}

func (c *ActorCell) deliverOrDeadLetter(pid Pid, envelope *Envelope) {
	target, ok := c.system.Cell(pid)
	if !ok {
		c.system.recordDeadLetter(envelope.Message, pid, ReasonRecipientMissing, c.pid)
		return
	}
	if err := target.dispatcher.EnqueueUser(envelope); err != nil {
		// SendErrFull means the target's own mailbox already dead-lettered
		// this message via its overflow policy (see Mailbox.letterDrop);
		// recording it again here would double the ring/event for one drop.
		if sendErr, ok := err.(*SendError); ok && sendErr.Kind == SendErrFull {
			return
		}
		c.system.recordDeadLetter(envelope.Message, pid, ReasonRoutingFailure, c.pid)
	}
}

func (c *ActorCell) Spawn(props *Props) (Pid, error) {
	return c.system.spawnChild(c.actorSystem, c.pid, props, "")
}

func (c *ActorCell) SpawnNamed(props *Props, name string) (Pid, error) {
	return c.system.spawnChild(c.actorSystem, c.pid, props, name)
}

func (c *ActorCell) Children() []Pid {
	return c.snapshotChildren()
}

func (c *ActorCell) Watch(target Pid) {
	c.stateMu.Lock()
	c.watching[target] = struct{}{}
	c.stateMu.Unlock()
	_ = c.system.sendSystemMessage(target, WatchMsg{Watcher: c.pid})
}

func (c *ActorCell) WatchWith(target Pid, custom interface{}) {
	c.stateMu.Lock()
	c.watching[target] = struct{}{}
	c.stateMu.Unlock()
	_ = c.system.sendSystemMessage(target, WatchMsg{Watcher: c.pid, Custom: custom})
}

func (c *ActorCell) Unwatch(target Pid) {
	c.stateMu.Lock()
	delete(c.watching, target)
	c.stateMu.Unlock()
	_ = c.system.sendSystemMessage(target, UnwatchMsg{Watcher: c.pid})
}

func (c *ActorCell) Stash() {
	c.stash.Push(&Envelope{Message: c.currentMessage, Sender: c.currentSender, Header: c.currentHeader})
}

func (c *ActorCell) Stop() {
	_ = c.system.sendSystemMessage(c.pid, Stop)
}

func (c *ActorCell) StopChild(child Pid) {
	_ = c.system.sendSystemMessage(c.pid, StopChildMsg{Child: child})
}

func (c *ActorCell) System() *ActorSystem { return c.actorSystem }

// --- pipe tasks --------------------------------------------------------------

// pipeTask is a single-poll future: a background goroutine computes a
// result once, then self-sends a PipeTaskMsg so delivery of the mapped
// message happens on this cell's own goroutine instead of racing with it.
type pipeTask struct {
	mu     sync.Mutex
	ready  bool
	result interface{}
}

// PipeTo waits on future in a new goroutine and, once it resolves, delivers
// onComplete(value, err) to this actor as an ordinary user message. The
// result is not delivered if this cell has already stopped by the time the
// goroutine finishes; once the cell has deregistered, the PipeTaskMsg is
// recorded as a dead letter.
func (c *ActorCell) PipeTo(future *Future, onComplete func(value interface{}, err error) interface{}) {
	id := PipeTaskID(c.nextPipeTaskID.Inc())
	task := &pipeTask{}

	c.pipeTasksMu.Lock()
	c.pipeTasks[id] = task
	c.pipeTasksMu.Unlock()

	go func() {
		value, err := future.Wait()
		mapped := onComplete(value, err)

		task.mu.Lock()
		task.ready = true
		task.result = mapped
		task.mu.Unlock()

		_ = c.system.sendSystemMessage(c.pid, PipeTaskMsg{ID: id})
	}()
}

func (c *ActorCell) handlePipeTask(id PipeTaskID) {
	c.pipeTasksMu.Lock()
	task, ok := c.pipeTasks[id]
	if ok {
		delete(c.pipeTasks, id)
	}
	c.pipeTasksMu.Unlock()
	if !ok {
		return
	}

	c.stateMu.Lock()
	terminal := c.state == cellStopping || c.state == cellStopped
	c.stateMu.Unlock()
	if terminal {
		return
	}

	task.mu.Lock()
	result := task.result
	task.mu.Unlock()
	c.processMessage(&Envelope{Message: result})
}

// --- adapters ------------------------------------------------------------

// adapterActor converts an arbitrary message type into another before
// forwarding it to owner, giving a Sender a type-safe target pid without
// owner's own Receive having to understand the sender's vocabulary. It is
// an ordinary child actor, stopped like any other via Context.StopChild.
type adapterActor struct {
	owner   Pid
	convert func(interface{}) interface{}
}

func (a *adapterActor) Receive(ctx Context) error {
	if _, ok := ctx.Message().(*autoReceiveMessage); ok {
		return nil
	}
	ctx.Send(a.owner, a.convert(ctx.Message()))
	return nil
}

// RegisterAdapter spawns a child that rewrites any message it receives via
// convert before forwarding it on to this cell, returning an AdapterID to
// hand to StopAdapter later and the child's pid as the typed handle other
// actors should be given to send through.
func (c *ActorCell) RegisterAdapter(convert func(interface{}) interface{}) (AdapterID, Pid, error) {
	producer := func() Actor { return &adapterActor{owner: c.pid, convert: convert} }
	pid, err := c.Spawn(PropsFromProducer(producer))
	if err != nil {
		return 0, Pid{}, err
	}

	id := AdapterID(c.nextAdapterID.Inc())
	c.adaptersMu.Lock()
	c.adapters[id] = pid
	c.adaptersMu.Unlock()
	return id, pid, nil
}

// StopAdapter stops a previously registered adapter and forgets its id; a
// no-op if id is unknown (already stopped, or never registered here).
func (c *ActorCell) StopAdapter(id AdapterID) {
	c.adaptersMu.Lock()
	pid, ok := c.adapters[id]
	if ok {
		delete(c.adapters, id)
	}
	c.adaptersMu.Unlock()
	if !ok {
		return
	}
	c.StopChild(pid)
}
