package actor

import (
	"context"
	"time"

	"github.com/fraktor-go/actor/eventlog"
)

// ActorSystemConfig configures a new system's name, logger, and dead-letter
// ring capacity. The zero value is usable: a system named "fraktor" with a
// no-op logger and the default dead-letter capacity.
type ActorSystemConfig struct {
	Name               string
	Logger             eventlog.Logger
	DeadLetterCapacity int
	UserGuardianStrategy SupervisorStrategy
}

// ActorSystem is the root handle applications hold: it owns the guardian
// hierarchy (§4.7) and exposes Spawn/SpawnNamed under the user guardian,
// plus escape hatches onto the shared EventStream and dead-letter ring.
type ActorSystem struct {
	name  string
	state *SystemState
	log   eventlog.Logger

	root           Pid
	systemGuardian Pid
	userGuardian   Pid
}

// NewActorSystem bootstraps the three guardians (root, system, user) and
// returns a ready-to-use system. It returns an error only if spawning one
// of the guardians fails.
func NewActorSystem(cfg ActorSystemConfig) (*ActorSystem, error) {
	if cfg.Name == "" {
		cfg.Name = "fraktor"
	}
	if cfg.Logger == nil {
		cfg.Logger = eventlog.Nop()
	}
	if cfg.UserGuardianStrategy == nil {
		cfg.UserGuardianStrategy = guardianStrategy()
	}

	state := NewSystemState(SystemStateConfig{DeadLetterCapacity: cfg.DeadLetterCapacity, Logger: cfg.Logger})
	sys := &ActorSystem{name: cfg.Name, state: state, log: cfg.Logger}

	rootProps := PropsFromProducer(newGuardianActor("root"), WithSupervisorStrategy(guardianStrategy()))
	root, err := state.spawnChild(sys, Pid{}, rootProps, "root")
	if err != nil {
		return nil, err
	}
	sys.root = root
	state.setRootPid(root)

	systemProps := PropsFromProducer(newGuardianActor("system"), WithSupervisorStrategy(guardianStrategy()))
	systemGuardian, err := state.spawnChild(sys, root, systemProps, "system")
	if err != nil {
		return nil, err
	}
	sys.systemGuardian = systemGuardian
	state.setSystemGuardianPid(systemGuardian)

	userProps := PropsFromProducer(newGuardianActor("user"), WithSupervisorStrategy(cfg.UserGuardianStrategy))
	userGuardian, err := state.spawnChild(sys, root, userProps, "user")
	if err != nil {
		return nil, err
	}
	sys.userGuardian = userGuardian
	state.setUserGuardianPid(userGuardian)

	return sys, nil
}

// Name returns the system's configured name, used in remote pid addresses.
func (s *ActorSystem) Name() string { return s.name }

// Root, SystemGuardian, and UserGuardian return the three bootstrap pids.
func (s *ActorSystem) Root() Pid           { return s.root }
func (s *ActorSystem) SystemGuardian() Pid { return s.systemGuardian }
func (s *ActorSystem) UserGuardian() Pid   { return s.userGuardian }

// EventStream returns the shared pub/sub bus for lifecycle/log/dead-letter
// events.
func (s *ActorSystem) EventStream() *EventStream { return s.state.EventStream() }

// DeadLetters returns a snapshot of the dead-letter ring.
func (s *ActorSystem) DeadLetters() []DeadLetterEntry { return s.state.DeadLetters() }

// Failures returns a snapshot of the system-wide failure counters.
func (s *ActorSystem) Failures() FailureCounts { return s.state.Failures() }

// Spawn creates a top-level actor under the user guardian with an
// anonymous name.
func (s *ActorSystem) Spawn(props *Props) (Pid, error) {
	return s.state.spawnChild(s, s.userGuardian, props, "")
}

// SpawnNamed creates a top-level actor under the user guardian with an
// explicit name, failing with SpawnErrNameConflict if taken.
func (s *ActorSystem) SpawnNamed(props *Props, name string) (Pid, error) {
	return s.state.spawnChild(s, s.userGuardian, props, name)
}

// Send delivers message to pid without a sender, a convenience for callers
// outside any actor's Receive (tests, HTTP handlers, main()).
func (s *ActorSystem) Send(pid Pid, message interface{}) {
	cell, ok := s.state.Cell(pid)
	if !ok {
		s.state.recordDeadLetter(message, pid, ReasonRecipientMissing, Pid{})
		return
	}
	_ = cell.dispatcher.EnqueueUser(&Envelope{Message: message})
}

// Stop requests pid stop; it returns immediately, before the stop has
// necessarily completed.
func (s *ActorSystem) Stop(pid Pid) {
	_ = s.state.sendSystemMessage(pid, Stop)
}

// Terminate stops the whole system by stopping the root guardian; the
// cascade (system guardian, user guardian, and every descendant) unwinds
// through the ordinary Stop protocol in §4.5.
func (s *ActorSystem) Terminate() {
	s.Stop(s.root)
}

// AwaitTermination blocks until the root cell has deregistered or ctx is
// done, whichever comes first. Root sends Stop to its children without
// waiting for them, so descendants whose Stop has not yet been processed
// may still be registered when this returns.
func (s *ActorSystem) AwaitTermination(ctx context.Context) error {
	select {
	case <-s.state.TerminationCh():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitTerminationTimeout is a convenience wrapper around AwaitTermination
// for callers that don't already carry a context.
func (s *ActorSystem) AwaitTerminationTimeout(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return s.AwaitTermination(ctx)
}
