package actor

import "time"

// SystemMessage is the closed set of control messages delivered on a
// mailbox's system queue. Only the types defined in this file implement it;
// the unexported marker method seals the interface so InvokeSystemMessage's
// switch stays exhaustive.
type SystemMessage interface {
	systemMessage()
}

type createMessage struct{}

func (createMessage) systemMessage() {}

// Create is sent to a freshly spawned cell to run pre_start.
var Create SystemMessage = createMessage{}

type recreateMessage struct{}

func (recreateMessage) systemMessage() {}

// Recreate instructs a cell to rerun its lifecycle (post_stop, replace
// instance via factory, pre_start) as part of a Restart directive.
var Recreate SystemMessage = recreateMessage{}

type suspendMessage struct{}

func (suspendMessage) systemMessage() {}

// Suspend freezes the user queue.
var Suspend SystemMessage = suspendMessage{}

type resumeMessage struct{}

func (resumeMessage) systemMessage() {}

// Resume unfreezes the user queue.
var Resume SystemMessage = resumeMessage{}

type stopMessage struct{}

func (stopMessage) systemMessage() {}

// Stop instructs a cell to tear itself down.
var Stop SystemMessage = stopMessage{}

// StopChild requests that the receiving cell stop the named child.
type StopChildMsg struct {
	Child Pid
}

func (StopChildMsg) systemMessage() {}

// Watch subscribes Watcher to the receiving cell's termination.
type WatchMsg struct {
	Watcher Pid
	// Custom, when non-nil, is delivered to the watcher as a user message
	// in place of the default Terminated notification; it also suppresses
	// the OnTerminated callback for this particular watcher/target pair.
	Custom interface{}
}

func (WatchMsg) systemMessage() {}

// Unwatch cancels a previous Watch; idempotent if never watched.
type UnwatchMsg struct {
	Watcher Pid
}

func (UnwatchMsg) systemMessage() {}

// Terminated notifies a watcher that Who has stopped.
type TerminatedMsg struct {
	Who Pid
}

func (TerminatedMsg) systemMessage() {}

// Failure carries a child's failure payload to its parent.
type FailureMsg struct {
	Payload FailurePayload
}

func (FailureMsg) systemMessage() {}

// PipeTaskMsg asks the cell to poll the named pipe task once.
type PipeTaskMsg struct {
	ID PipeTaskID
}

func (PipeTaskMsg) systemMessage() {}

// FailurePayload is the information routed from a failing child to its
// parent's system queue.
type FailurePayload struct {
	Child              Pid
	Reason             ErrorReason
	Err                error
	MessageSnapshot    interface{}
	RestartStatistics  *RestartStatistics
	Timestamp          time.Duration
}

// ToActorError reconstructs a typed error from the payload.
func (p FailurePayload) ToActorError() *ActorError {
	return &ActorError{Reason: p.Reason, Err: p.Err}
}

// PipeTaskID identifies a single-poll pipe task registered on a cell.
type PipeTaskID uint64

// AdapterID identifies a typed message-adapter handle registered on a cell.
type AdapterID uint64

// --- user-message envelope -------------------------------------------------

// Envelope wraps a user message with optional sender and header metadata.
type Envelope struct {
	Header  MessageHeader
	Message interface{}
	Sender  Pid
}

// MessageHeader is a read-only string map carried alongside a message.
type MessageHeader map[string]string

// WrapEnvelope wraps a bare message in an Envelope if it isn't one already.
func WrapEnvelope(message interface{}) *Envelope {
	if env, ok := message.(*Envelope); ok {
		return env
	}
	return &Envelope{Message: message}
}

// UnwrapEnvelopeMessage extracts the user payload from a raw mailbox value,
// which may or may not be wrapped in an Envelope.
func UnwrapEnvelopeMessage(raw interface{}) interface{} {
	if env, ok := raw.(*Envelope); ok {
		return env.Message
	}
	return raw
}

// UnwrapEnvelopeSender extracts the sender pid, the zero Pid if absent.
func UnwrapEnvelopeSender(raw interface{}) Pid {
	if env, ok := raw.(*Envelope); ok {
		return env.Sender
	}
	return Pid{}
}

// UnwrapEnvelopeHeader extracts the header, nil if absent.
func UnwrapEnvelopeHeader(raw interface{}) MessageHeader {
	if env, ok := raw.(*Envelope); ok {
		return env.Header
	}
	return nil
}

// --- auto-receive lifecycle messages (delivered straight to Receive) ------

type autoReceiveMessage struct{ stage LifecycleStage }

// LifecycleStage enumerates the stages a cell passes through. Started,
// Restarted, and Stopped are the only values ever published on the
// EventStream's LifecycleEvent (the external, observability-facing set);
// Restarting and Stopping additionally drive an in-process auto-receive
// message delivered straight to the actor's own Receive, a notice given
// before PostStop runs.
type LifecycleStage int

const (
	StageStarted LifecycleStage = iota
	StageRestarting
	StageStopping
	StageStopped
	StageRestarted
)

func (s LifecycleStage) String() string {
	switch s {
	case StageStarted:
		return "Started"
	case StageRestarting:
		return "Restarting"
	case StageStopping:
		return "Stopping"
	case StageStopped:
		return "Stopped"
	case StageRestarted:
		return "Restarted"
	default:
		return "Unknown"
	}
}

var (
	startedMessage    = &autoReceiveMessage{stage: StageStarted}
	restartingMessage = &autoReceiveMessage{stage: StageRestarting}
	stoppingMessage   = &autoReceiveMessage{stage: StageStopping}
	stoppedMessage    = &autoReceiveMessage{stage: StageStopped}
)

// autoReceiveMessageFor returns the shared singleton for stage, avoiding an
// allocation on every lifecycle transition.
func autoReceiveMessageFor(stage LifecycleStage) *autoReceiveMessage {
	switch stage {
	case StageStarted:
		return startedMessage
	case StageRestarting:
		return restartingMessage
	case StageStopping:
		return stoppingMessage
	case StageStopped:
		return stoppedMessage
	default:
		return &autoReceiveMessage{stage: stage}
	}
}
