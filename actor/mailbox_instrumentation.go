package actor

import (
	"time"

	"go.uber.org/atomic"
)

// MailboxInstrumentation tracks configured capacity/warn threshold for a
// mailbox and publishes MailboxPressure events to the owning system's
// EventStream when user queue depth crosses the warn threshold. It is
// optional — ActorCell only attaches one when Props' MailboxPolicy sets a
// non-zero WarnThreshold.
type MailboxInstrumentation struct {
	pid           Pid
	capacity      int // 0 means unbounded
	warnThreshold int
	stream        *EventStream
	now           func() time.Duration
	lastWarned    atomic.Bool
}

// NewMailboxInstrumentation wires a pid's mailbox telemetry to stream. now
// is typically system.MonotonicNow.
func NewMailboxInstrumentation(pid Pid, capacity, warnThreshold int, stream *EventStream, now func() time.Duration) *MailboxInstrumentation {
	return &MailboxInstrumentation{
		pid:           pid,
		capacity:      capacity,
		warnThreshold: warnThreshold,
		stream:        stream,
		now:           now,
	}
}

// observe is called by Mailbox after every successful user enqueue with the
// resulting queue depth.
func (mi *MailboxInstrumentation) observe(depth int) {
	if mi == nil || mi.warnThreshold <= 0 || mi.stream == nil {
		return
	}

	if depth >= mi.warnThreshold {
		if mi.lastWarned.CAS(false, true) {
			mi.publish(depth)
		}
	} else {
		mi.lastWarned.Store(false)
	}
}

func (mi *MailboxInstrumentation) publish(depth int) {
	var ts time.Duration
	if mi.now != nil {
		ts = mi.now()
	}
	mi.stream.Publish(&MailboxPressureEvent{
		Pid:      mi.pid,
		Capacity: mi.capacity,
		Depth:    depth,
		Ts:       ts,
	})
}

// Dump produces an on-demand DispatcherDumpEvent-shaped snapshot; callers
// invoke this on request (e.g. an admin endpoint) rather than on every
// tick, since it is diagnostic rather than load-bearing.
func (mi *MailboxInstrumentation) Dump(mb *Mailbox, running bool) DispatcherDumpEvent {
	return DispatcherDumpEvent{
		Pid:       mi.pid,
		UserLen:   mb.UserLen(),
		SystemLen: mb.SystemLen(),
		Running:   running,
		Suspended: mb.IsSuspended(),
	}
}
