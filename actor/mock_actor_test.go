package actor

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// mockActor records every user message it receives, for assertions made
// from the test goroutine while the actor runs on its own dispatcher batch.
// Auto-receive lifecycle messages are skipped so recorded messages are
// exactly what application code sent.
type mockActor struct {
	mu       sync.Mutex
	received []interface{}
}

func (a *mockActor) Receive(ctx Context) error {
	if _, ok := ctx.Message().(*autoReceiveMessage); ok {
		return nil
	}
	a.mu.Lock()
	a.received = append(a.received, ctx.Message())
	a.mu.Unlock()
	return nil
}

func (a *mockActor) snapshot() []interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]interface{}, len(a.received))
	copy(out, a.received)
	return out
}

func (a *mockActor) clear() {
	a.mu.Lock()
	a.received = nil
	a.mu.Unlock()
}

// waitForMessage polls mockActor's received messages for one matching
// targetType's dynamic type.
func waitForMessage(t *testing.T, actor *mockActor, targetType interface{}, timeout time.Duration) (interface{}, bool) {
	t.Helper()
	want := fmt.Sprintf("%T", targetType)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		for _, msg := range actor.snapshot() {
			if fmt.Sprintf("%T", msg) == want {
				return msg, true
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil, false
}

// waitUntil polls cond until it reports true or timeout elapses.
func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}
