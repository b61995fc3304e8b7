package actor

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/fraktor-go/actor/eventlog"
)

// FailureOutcome records how a reported failure was ultimately resolved,
// for SystemState's failure_restart_total/failure_stop_total/
// failure_escalate_total counters.
type FailureOutcome int

const (
	OutcomeRestart FailureOutcome = iota
	OutcomeStop
	OutcomeEscalate
)

// SystemState is the registry and failure-routing hub shared by every cell
// in one ActorSystem: pid allocation, the cell map, per-parent-scope name
// registries, guardian slots, the event stream, the dead-letter ring, and
// the monotonic clock used for restart-statistics windows.
type SystemState struct {
	nextPid atomic.Uint64
	clock   atomic.Uint64

	cellsMu sync.RWMutex
	cells   map[Pid]*ActorCell

	registriesMu sync.Mutex
	registries   map[Pid]*NameRegistry

	guardiansMu    sync.Mutex
	rootPid        Pid
	systemGuardian Pid
	userGuardian   Pid

	eventStream *EventStream
	deadLetter  *DeadLetterRing

	terminated     atomic.Bool
	terminatedOnce sync.Once
	terminationCh  chan struct{}

	failureTotal         atomic.Uint64
	failureRestartTotal  atomic.Uint64
	failureStopTotal     atomic.Uint64
	failureEscalateTotal atomic.Uint64
	failureInflight      atomic.Int64

	log eventlog.Logger
}

// SystemStateConfig configures dead-letter ring capacity and the logger
// used for internal diagnostics.
type SystemStateConfig struct {
	DeadLetterCapacity int
	Logger             eventlog.Logger
}

// NewSystemState builds an empty registry with no guardians yet; the
// ActorSystem façade bootstraps the three guardians immediately after.
func NewSystemState(cfg SystemStateConfig) *SystemState {
	if cfg.DeadLetterCapacity <= 0 {
		cfg.DeadLetterCapacity = 512
	}
	if cfg.Logger == nil {
		cfg.Logger = eventlog.Nop()
	}
	stream := NewEventStream()
	return &SystemState{
		cells:         make(map[Pid]*ActorCell),
		registries:    make(map[Pid]*NameRegistry),
		eventStream:   stream,
		deadLetter:    NewDeadLetterRing(cfg.DeadLetterCapacity, stream),
		terminationCh: make(chan struct{}),
		log:           cfg.Logger,
	}
}

// AllocatePid returns a freshly minted, never-before-used Pid value;
// path is assigned by the caller once it knows the new cell's name.
func (s *SystemState) AllocatePid(path string) Pid {
	v := s.nextPid.Inc()
	return NewPid(v, path)
}

// MonotonicNow returns a strictly non-decreasing duration derived from an
// internal tick counter, matching fraktor-rs's millisecond-tick clock.
func (s *SystemState) MonotonicNow() time.Duration {
	ticks := s.clock.Inc()
	return time.Duration(ticks) * time.Millisecond
}

// EventStream returns the shared pub/sub bus.
func (s *SystemState) EventStream() *EventStream { return s.eventStream }

// DeadLetters returns a snapshot of the dead-letter ring.
func (s *SystemState) DeadLetters() []DeadLetterEntry { return s.deadLetter.Snapshot() }

func (s *SystemState) recordDeadLetter(message interface{}, recipient Pid, reason DeadLetterReason, origin Pid) {
	s.deadLetter.Push(DeadLetterEntry{
		MessageTypeLabel: fmt.Sprintf("%T", message),
		Recipient:        recipient,
		Reason:           reason,
		Origin:           origin,
		Timestamp:        s.MonotonicNow(),
	})
}

func (s *SystemState) emitLog(level LogLevel, message string, origin Pid) {
	s.eventStream.Publish(&LogEvent{Level: level, Message: message, Ts: s.MonotonicNow(), Origin: origin})
}

// registerCell inserts a freshly built cell into the registry.
func (s *SystemState) registerCell(cell *ActorCell) {
	s.cellsMu.Lock()
	s.cells[cell.pid] = cell
	s.cellsMu.Unlock()
}

// removeCell deregisters pid; the cell becomes unreachable via Cell()
// immediately afterward, per the §3 invariant "a cell appears in
// SystemState's cell map iff it is not yet terminated".
func (s *SystemState) removeCell(pid Pid) {
	s.cellsMu.Lock()
	delete(s.cells, pid)
	s.cellsMu.Unlock()
}

// Cell looks up a live cell by pid.
func (s *SystemState) Cell(pid Pid) (*ActorCell, bool) {
	s.cellsMu.RLock()
	defer s.cellsMu.RUnlock()
	c, ok := s.cells[pid]
	return c, ok
}

// setRootPid, setSystemGuardianPid, and setUserGuardianPid record the three
// bootstrap guardian pids, used by notifyGuardianStopped to recognize when
// the whole guardian hierarchy has unwound.
func (s *SystemState) setRootPid(pid Pid) {
	s.guardiansMu.Lock()
	s.rootPid = pid
	s.guardiansMu.Unlock()
}

func (s *SystemState) setSystemGuardianPid(pid Pid) {
	s.guardiansMu.Lock()
	s.systemGuardian = pid
	s.guardiansMu.Unlock()
}

func (s *SystemState) setUserGuardianPid(pid Pid) {
	s.guardiansMu.Lock()
	s.userGuardian = pid
	s.guardiansMu.Unlock()
}

// notifyGuardianStopped is called by a cell's own Stop teardown once it has
// fully unregistered. The whole system is considered terminated the moment
// the root guardian itself is gone (its Stop cascade has already
// fire-and-forgotten Stop to the system/user guardians by then, mirroring
// the root-guardian-gone check in the original actor_prim clear_guardian
// logic), or, failing that, once root is gone AND one of the other two
// guardians reports in — whichever observation happens to land last.
func (s *SystemState) notifyGuardianStopped(pid Pid) {
	s.guardiansMu.Lock()
	isRoot := !s.rootPid.IsZero() && pid == s.rootPid
	if isRoot {
		s.rootPid = Pid{}
	}
	isOtherGuardian := pid == s.systemGuardian || pid == s.userGuardian
	rootGone := s.rootPid.IsZero()
	s.guardiansMu.Unlock()

	if isRoot || (isOtherGuardian && rootGone) {
		s.MarkTerminated()
	}
}

func (s *SystemState) nameRegistryFor(parent Pid) *NameRegistry {
	s.registriesMu.Lock()
	defer s.registriesMu.Unlock()
	registry, ok := s.registries[parent]
	if !ok {
		registry = NewNameRegistry()
		s.registries[parent] = registry
	}
	return registry
}

// reserveName picks the name a new child will be registered under: hint
// itself, or a freshly generated anonymous name. It does not yet bind the
// name to a pid (the pid's path is derived from this name, so the pid
// can't exist until after); bindName does the actual binding once the pid
// is fully formed.
func (s *SystemState) reserveName(parent Pid, hint string) string {
	if hint != "" {
		return hint
	}
	return s.nameRegistryFor(parent).GenerateAnonymous()
}

// bindName registers pid under name in parent's scope, failing with a
// SpawnErrNameConflict if another live pid already holds it. For an
// anonymous name freshly produced by reserveName this fails only if a
// sibling was explicitly spawned under that same "$N" name.
func (s *SystemState) bindName(parent Pid, name string, pid Pid) *SpawnError {
	registry := s.nameRegistryFor(parent)
	if existing, ok := registry.Register(name, pid); !ok {
		return newNameConflictError(existing)
	}
	return nil
}

func (s *SystemState) releaseName(parent Pid, name string) {
	s.registriesMu.Lock()
	registry, ok := s.registries[parent]
	s.registriesMu.Unlock()
	if ok {
		registry.Release(name)
	}
}

// sendSystemMessage enqueues msg on pid's dispatcher if pid is live;
// otherwise it applies the dead/unknown-pid fallback rules below.
func (s *SystemState) sendSystemMessage(pid Pid, msg SystemMessage) error {
	if cell, ok := s.Cell(pid); ok {
		return cell.dispatcher.EnqueueSystem(msg)
	}

	switch m := msg.(type) {
	case WatchMsg:
		// Synthesize immediate termination back to the watcher: the target
		// is already gone, so there will never be a live Stop to deliver it.
		_ = s.sendSystemMessage(m.Watcher, TerminatedMsg{Who: pid})
		return nil
	case UnwatchMsg:
		return nil
	case TerminatedMsg:
		return nil
	default:
		s.recordDeadLetter(msg, pid, ReasonRecipientMissing, Pid{})
		return newSendError(SendErrClosed, msg)
	}
}

// spawnChild implements the spawn protocol: validate, allocate
// a pid, assign its name within parent's scope, build and register the
// cell, send it Create, and only then attach it to parent's children list.
// If Create could not be delivered (the fresh mailbox was somehow already
// closed), the whole attempt is rolled back rather than leaking a
// half-registered cell.
func (s *SystemState) spawnChild(actorSystem *ActorSystem, parent Pid, props *Props, nameHint string) (Pid, error) {
	if props == nil || props.producer == nil {
		return Pid{}, newInvalidPropsError("props must have a producer")
	}
	if s.IsTerminated() {
		return Pid{}, ErrSystemUnavailable
	}

	var parentPath string
	var parentCell *ActorCell
	if !parent.IsZero() {
		cell, ok := s.Cell(parent)
		if !ok {
			return Pid{}, ErrSystemUnavailable
		}
		parentCell = cell
		parentPath = cell.pid.Path()
	}

	name := s.reserveName(parent, nameHint)
	path := parentPath + "/" + name
	value := s.nextPid.Inc()
	pid := NewPid(value, path)

	if err := s.bindName(parent, name, pid); err != nil {
		return Pid{}, err
	}

	cell := newActorCell(s, actorSystem, pid, parent, name, props, s.log)
	s.registerCell(cell)

	if err := s.sendSystemMessage(pid, Create); err != nil {
		s.releaseName(parent, name)
		s.removeCell(pid)
		return Pid{}, err
	}

	if parentCell != nil {
		parentCell.addChild(pid)
	}

	return pid, nil
}

// MarkTerminated idempotently completes the termination future.
func (s *SystemState) MarkTerminated() {
	s.terminatedOnce.Do(func() {
		s.terminated.Store(true)
		close(s.terminationCh)
	})
}

// IsTerminated reports whether the system has fully torn down.
func (s *SystemState) IsTerminated() bool { return s.terminated.Load() }

// TerminationCh is closed once MarkTerminated runs, letting
// ActorSystem.AwaitTermination block on it with a context for cancellation.
func (s *SystemState) TerminationCh() <-chan struct{} { return s.terminationCh }

// reportFailure is the entry point for ActorCell.handleUserMessageFailure:
// it logs, locates the parent, enriches the payload with the parent's
// current restart statistics for this child, and routes a Failure system
// message upward. If the parent can't be reached or the send fails, the
// child is stopped directly and the outcome recorded as Stop.
func (s *SystemState) reportFailure(payload FailurePayload) {
	s.failureTotal.Inc()
	s.failureInflight.Inc()
	s.emitLog(LogError, fmt.Sprintf("actor %s failed: %v", payload.Child, payload.Err), payload.Child)

	childCell, ok := s.Cell(payload.Child)
	if !ok || childCell.parentPid.IsZero() {
		s.recordFailureOutcome(payload.Child, OutcomeStop, payload)
		s.stopActor(payload.Child)
		return
	}

	parentPid := childCell.parentPid
	parentCell, ok := s.Cell(parentPid)
	if !ok {
		s.recordFailureOutcome(payload.Child, OutcomeStop, payload)
		s.stopActor(payload.Child)
		return
	}

	if stats := parentCell.snapshotChildRestartStats(payload.Child); stats != nil {
		payload.RestartStatistics = stats
	}

	if err := s.sendSystemMessage(parentPid, FailureMsg{Payload: payload}); err != nil {
		s.recordFailureOutcome(payload.Child, OutcomeStop, payload)
		s.stopActor(payload.Child)
		return
	}
}

func (s *SystemState) recordFailureOutcome(child Pid, outcome FailureOutcome, payload FailurePayload) {
	s.failureInflight.Dec()
	var counter *atomic.Uint64
	var label string
	switch outcome {
	case OutcomeRestart:
		counter, label = &s.failureRestartTotal, "restart"
	case OutcomeStop:
		counter, label = &s.failureStopTotal, "stop"
	case OutcomeEscalate:
		counter, label = &s.failureEscalateTotal, "escalate"
	}
	if counter != nil {
		counter.Inc()
	}
	s.emitLog(LogInfo, fmt.Sprintf("failure outcome %s for %s (reason: %v)", label, child, payload.Reason), child)
}

func (s *SystemState) stopActor(pid Pid) {
	_ = s.sendSystemMessage(pid, Stop)
}

// FailureCounts is a point-in-time snapshot of the failure counters, useful
// for tests and diagnostics endpoints.
type FailureCounts struct {
	Total, Restart, Stop, Escalate uint64
	Inflight                       int64
}

// Failures returns a snapshot of the failure counters.
func (s *SystemState) Failures() FailureCounts {
	return FailureCounts{
		Total:    s.failureTotal.Load(),
		Restart:  s.failureRestartTotal.Load(),
		Stop:     s.failureStopTotal.Load(),
		Escalate: s.failureEscalateTotal.Load(),
		Inflight: s.failureInflight.Load(),
	}
}
