package actor

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DeadLetterReason classifies why a message could not be delivered.
type DeadLetterReason int

const (
	ReasonMailboxOverflow DeadLetterReason = iota
	ReasonRecipientMissing
	ReasonCellTerminated
	ReasonAdapterStopped
	ReasonSerializationFailed
	ReasonRoutingFailure
)

func (r DeadLetterReason) String() string {
	switch r {
	case ReasonMailboxOverflow:
		return "MailboxOverflow"
	case ReasonRecipientMissing:
		return "RecipientMissing"
	case ReasonCellTerminated:
		return "CellTerminated"
	case ReasonAdapterStopped:
		return "AdapterStopped"
	case ReasonSerializationFailed:
		return "SerializationFailed"
	case ReasonRoutingFailure:
		return "RoutingFailure"
	default:
		return "Unknown"
	}
}

// DeadLetterEntry records one undeliverable message.
type DeadLetterEntry struct {
	ID                uuid.UUID
	MessageTypeLabel  string
	Recipient         Pid
	Reason            DeadLetterReason
	Origin            Pid
	Timestamp         time.Duration
}

// DeadLetterRing is a fixed-capacity ring buffer of DeadLetterEntry; the
// oldest entry is overwritten on overflow. Each push also publishes a
// DeadLetter event so subscribers never need to poll.
type DeadLetterRing struct {
	mu       sync.Mutex
	entries  []DeadLetterEntry
	head     int
	size     int
	capacity int
	stream   *EventStream
}

// NewDeadLetterRing builds a ring with the given capacity (default 512),
// publishing through stream.
func NewDeadLetterRing(capacity int, stream *EventStream) *DeadLetterRing {
	if capacity <= 0 {
		capacity = 512
	}
	return &DeadLetterRing{
		entries:  make([]DeadLetterEntry, capacity),
		capacity: capacity,
		stream:   stream,
	}
}

// Push appends an entry, overwriting the oldest slot on overflow, and
// publishes a DeadLetterEvent.
func (r *DeadLetterRing) Push(entry DeadLetterEntry) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	r.mu.Lock()
	idx := (r.head + r.size) % r.capacity
	if r.size == r.capacity {
		idx = r.head
		r.head = (r.head + 1) % r.capacity
	} else {
		r.size++
	}
	r.entries[idx] = entry
	r.mu.Unlock()

	if r.stream != nil {
		r.stream.Publish(&DeadLetterEvent{
			Reason:    entry.Reason,
			Recipient: entry.Recipient,
			Ts:        entry.Timestamp,
		})
	}
}

// Snapshot returns all entries in oldest-to-newest order.
func (r *DeadLetterRing) Snapshot() []DeadLetterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]DeadLetterEntry, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.entries[(r.head+i)%r.capacity]
	}
	return out
}

// Len returns the number of entries currently stored.
func (r *DeadLetterRing) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.size
}
