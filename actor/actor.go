package actor

import "time"

// Actor is the capability every user-provided actor must implement.
// Receive is the only mandatory method; PreStart/PostStop/OnTerminated are
// exposed as separate narrow interfaces so actors that don't need them
// don't have to stub them out (type-asserted by ActorCell when present).
type Actor interface {
	Receive(ctx Context) error
}

// PreStarter runs custom setup before the actor begins receiving messages,
// invoked on Create and again after every successful Recreate.
type PreStarter interface {
	PreStart(ctx Context) error
}

// PostStopper runs custom teardown, invoked on Stop (and on Recreate,
// before the instance is replaced) with errors observed but not fatal.
type PostStopper interface {
	PostStop(ctx Context) error
}

// TerminatedWatcher receives a callback for every watched target's
// termination, once per successful Watch (unless that Watch was a
// WatchWith with a custom message, which suppresses this callback for that
// watcher/target pair).
type TerminatedWatcher interface {
	OnTerminated(ctx Context, who Pid)
}

// SupervisorStrategyProvider lets an actor supply a dynamic supervisor
// strategy, consulted fresh on every child failure so behaviors can switch
// strategies at runtime.
type SupervisorStrategyProvider interface {
	SupervisorStrategy() SupervisorStrategy
}

// Producer constructs a fresh Actor instance; Props holds one per spawned
// actor and ActorCell calls it once at Create and again at every Recreate.
type Producer func() Actor

// Context is the capability surface an Actor's Receive/PreStart/PostStop/
// OnTerminated methods use to interact with the runtime: inspect the
// current message, send/request/ask, spawn children, watch/unwatch,
// and self-manage (stash, stop).
type Context interface {
	// Self returns this actor's own pid.
	Self() Pid
	// Parent returns the parent's pid, the zero Pid for the root guardian.
	Parent() Pid
	// Message returns the current user message being processed.
	Message() interface{}
	// Sender returns the sender of the current message, the zero Pid if none.
	Sender() Pid

	// Send delivers message to pid without expecting a reply.
	Send(pid Pid, message interface{})
	// Request delivers message to pid with Sender set to Self(), enabling
	// pid to Respond.
	Request(pid Pid, message interface{})
	// Respond replies to the sender of the current message; it is a no-op
	// (recorded as a dead letter) if there is no sender.
	Respond(message interface{})
	// Forward re-delivers the current message to pid, preserving the
	// original sender. SystemMessages cannot be forwarded.
	Forward(pid Pid)
	// RequestFuture sends message to target with a freshly spawned reply-to
	// pid as Sender and returns a Future that resolves with whatever that
	// pid next receives, or ErrFutureTimeout if timeout elapses first. A
	// timeout of zero or less waits indefinitely.
	RequestFuture(target Pid, message interface{}, timeout time.Duration) *Future
	// PipeTo waits on future in the background and, once it resolves,
	// delivers onComplete(value, err) to this actor as an ordinary user
	// message on its own goroutine. Not delivered if this cell has already
	// stopped by the time future resolves; once the cell has deregistered,
	// the pipe task's notification is recorded as a dead letter.
	PipeTo(future *Future, onComplete func(value interface{}, err error) interface{})

	// Spawn creates a child actor with an anonymous name.
	Spawn(props *Props) (Pid, error)
	// SpawnNamed creates a child actor under an explicit name, failing with
	// SpawnErrNameConflict if the name is already taken in this scope.
	SpawnNamed(props *Props, name string) (Pid, error)
	// Children returns the current set of child pids in registration order.
	Children() []Pid

	// Watch subscribes to target's termination.
	Watch(target Pid)
	// WatchWith subscribes to target's termination, delivering custom as a
	// user message instead of the default Terminated, and suppressing the
	// OnTerminated callback for this watcher/target pair.
	WatchWith(target Pid, custom interface{})
	// Unwatch cancels a previous Watch/WatchWith; a no-op if never watched.
	Unwatch(target Pid)

	// Stash defers the current message until after the next successful
	// restart, when stashed messages are replayed in FIFO order.
	Stash()

	// Stop requests the receiving actor stop itself.
	Stop()
	// StopChild requests that child stop.
	StopChild(child Pid)

	// RegisterAdapter spawns a child that rewrites any message it receives
	// via convert before forwarding it on to this actor, returning an id to
	// pass to StopAdapter and the child's pid as the typed handle other
	// actors should be given to send through.
	RegisterAdapter(convert func(interface{}) interface{}) (AdapterID, Pid, error)
	// StopAdapter stops a previously registered adapter; a no-op if id is
	// unknown.
	StopAdapter(id AdapterID)

	// System returns the owning ActorSystem, for escape-hatch access
	// (event stream subscription, dead-letter inspection, and so on).
	System() *ActorSystem
}
