package actor

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_SystemAlwaysWinsOverUser(t *testing.T) {
	m := NewMailbox(DefaultMailboxPolicy(), nil, nil)
	_, _, err := m.EnqueueUser("user-1")
	require.NoError(t, err)
	require.NoError(t, m.EnqueueSystem(Stop))

	msg, ok := m.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, stopMessage{}, msg)
}

func TestMailbox_SuspendedHidesUserMessages(t *testing.T) {
	m := NewMailbox(DefaultMailboxPolicy(), nil, nil)
	_, _, err := m.EnqueueUser("user-1")
	require.NoError(t, err)

	m.Suspend()
	_, ok := m.Dequeue()
	assert.False(t, ok, "a suspended mailbox should not yield user messages")

	m.Resume()
	msg, ok := m.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, "user-1", msg)
}

func TestMailbox_EnqueueUserRejectedWhenSuspended(t *testing.T) {
	m := NewMailbox(DefaultMailboxPolicy(), nil, nil)
	m.Suspend()

	_, _, err := m.EnqueueUser("user-1")
	sendErr, ok := err.(*SendError)
	require.True(t, ok)
	assert.Equal(t, SendErrSuspended, sendErr.Kind)
}

func TestMailbox_DropNewestOverflow(t *testing.T) {
	var dropped []interface{}
	m := NewMailbox(MailboxPolicy{Capacity: Bounded(2), Overflow: DropNewest}, func(msg interface{}, reason DeadLetterReason) {
		dropped = append(dropped, msg)
	}, nil)

	for i := 0; i < 3; i++ {
		_, _, _ = m.EnqueueUser(i)
	}

	assert.Equal(t, []interface{}{2}, dropped)

	var delivered []interface{}
	for {
		msg, ok := m.Dequeue()
		if !ok {
			break
		}
		delivered = append(delivered, msg)
	}
	assert.Equal(t, []interface{}{0, 1}, delivered)
}

func TestMailbox_DropOldestOverflow(t *testing.T) {
	var dropped []interface{}
	m := NewMailbox(MailboxPolicy{Capacity: Bounded(2), Overflow: DropOldest}, func(msg interface{}, reason DeadLetterReason) {
		dropped = append(dropped, msg)
	}, nil)

	for i := 0; i < 4; i++ {
		_, _, _ = m.EnqueueUser(i)
	}

	assert.Equal(t, []interface{}{0, 1}, dropped)

	var delivered []interface{}
	for {
		msg, ok := m.Dequeue()
		if !ok {
			break
		}
		delivered = append(delivered, msg)
	}
	assert.Equal(t, []interface{}{2, 3}, delivered)
}

func TestMailbox_BlockPolicyWakesWaitersInFIFOOrder(t *testing.T) {
	m := NewMailbox(MailboxPolicy{Capacity: Bounded(1), Overflow: Block}, nil, nil)
	_, _, err := m.EnqueueUser("first")
	require.NoError(t, err)

	var order []int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, w, err := m.EnqueueUser(i)
			require.NoError(t, err)
			if w != nil {
				w.wait()
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			// A woken producer retries its own enqueue into the freed slot.
			if w != nil {
				_, _, err = m.EnqueueUser(i)
				require.NoError(t, err)
			}
		}()
		// Give each blocked producer time to register before the next one
		// shows up, so the waiter queue's FIFO order is deterministic.
		time.Sleep(5 * time.Millisecond)
	}

	// Drain the mailbox, freeing one slot per dequeue; each dequeue should
	// wake exactly the oldest blocked producer.
	msg, ok := m.Dequeue()
	require.True(t, ok)
	assert.Equal(t, "first", msg)

	for i := 0; i < 3; i++ {
		require.True(t, waitUntil(t, time.Second, func() bool { return m.UserLen() > 0 }))
		_, ok := m.Dequeue()
		require.True(t, ok)
	}

	wg.Wait()
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestMailbox_CloseRejectsFurtherEnqueues(t *testing.T) {
	m := NewMailbox(DefaultMailboxPolicy(), nil, nil)
	m.Close()

	_, _, err := m.EnqueueUser("too-late")
	sendErr, ok := err.(*SendError)
	require.True(t, ok)
	assert.Equal(t, SendErrClosed, sendErr.Kind)

	err = m.EnqueueSystem(Stop)
	sendErr, ok = err.(*SendError)
	require.True(t, ok)
	assert.Equal(t, SendErrClosed, sendErr.Kind)
}

func TestMailbox_PrependUserRestoresStashOrderAheadOfQueue(t *testing.T) {
	m := NewMailbox(DefaultMailboxPolicy(), nil, nil)
	_, _, err := m.EnqueueUser("tail")
	require.NoError(t, err)

	m.PrependUser([]interface{}{"head-1", "head-2"})

	var delivered []interface{}
	for {
		msg, ok := m.Dequeue()
		if !ok {
			break
		}
		delivered = append(delivered, msg)
	}
	assert.Equal(t, []interface{}{"head-1", "head-2", "tail"}, delivered)
}
