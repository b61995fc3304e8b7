package actor

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestDeadLetterRing_SnapshotOrderedOldestToNewest(t *testing.T) {
	stream := NewEventStream()
	ring := NewDeadLetterRing(4, stream)

	for i := 0; i < 3; i++ {
		ring.Push(DeadLetterEntry{
			MessageTypeLabel: "string",
			Reason:           ReasonRecipientMissing,
			Timestamp:        time.Duration(i) * time.Millisecond,
		})
	}

	snap := ring.Snapshot()
	assert.Len(t, snap, 3)
	assert.Equal(t, time.Duration(0), snap[0].Timestamp)
	assert.Equal(t, 2*time.Millisecond, snap[2].Timestamp)
	assert.Equal(t, 3, ring.Len())
}

func TestDeadLetterRing_OverwritesOldestOnOverflow(t *testing.T) {
	stream := NewEventStream()
	ring := NewDeadLetterRing(2, stream)

	for i := 0; i < 3; i++ {
		ring.Push(DeadLetterEntry{Timestamp: time.Duration(i) * time.Millisecond})
	}

	snap := ring.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, 1*time.Millisecond, snap[0].Timestamp)
	assert.Equal(t, 2*time.Millisecond, snap[1].Timestamp)
}

func TestDeadLetterRing_PublishesEventOnPush(t *testing.T) {
	stream := NewEventStream()
	ring := NewDeadLetterRing(4, stream)

	var got *DeadLetterEvent
	stream.Subscribe(func(e Event) {
		if dl, ok := e.(*DeadLetterEvent); ok {
			got = dl
		}
	})

	ring.Push(DeadLetterEntry{Reason: ReasonMailboxOverflow, Recipient: NewPid(1, "/user/a")})

	assert.NotNil(t, got)
	assert.Equal(t, ReasonMailboxOverflow, got.Reason)
}

func TestDeadLetterRing_AssignsIDWhenAbsent(t *testing.T) {
	ring := NewDeadLetterRing(4, nil)
	ring.Push(DeadLetterEntry{})

	snap := ring.Snapshot()
	assert.NotEqual(t, uuid.Nil, snap[0].ID)
}
