package actor

import (
	"errors"
	"sync"
	"time"
)

// ErrFutureTimeout is the error a Future resolves with if no reply arrives
// within its requested timeout.
var ErrFutureTimeout = errors.New("future: timed out waiting for reply")

// Future is a single-assignment result cell used by the ask pattern
// (Context.RequestFuture) and by PipeTo. It has no pid of its own visible
// to the sender; internally it is backed by a short-lived child actor that
// completes it the moment a reply arrives.
type Future struct {
	done      chan struct{}
	closeOnce sync.Once

	mu    sync.Mutex
	value interface{}
	err   error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) complete(value interface{}, err error) {
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.value, f.err = value, err
		f.mu.Unlock()
		close(f.done)
	})
}

// Wait blocks until the future resolves.
func (f *Future) Wait() (interface{}, error) {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err
}

// WaitTimeout blocks until the future resolves or d elapses, whichever
// comes first; a zero or negative d waits indefinitely.
func (f *Future) WaitTimeout(d time.Duration) (interface{}, error) {
	if d <= 0 {
		return f.Wait()
	}
	select {
	case <-f.done:
		return f.Wait()
	case <-time.After(d):
		return nil, ErrFutureTimeout
	}
}

// futureActor is a disposable child actor whose only job is to complete a
// Future with the first message it receives, then stop itself. Giving it a
// real pid (rather than special-casing a "future address" throughout
// SystemState) means the ask pattern needs no new addressing concept: a
// reply is just an ordinary Send to an ordinary, very short-lived actor.
type futureActor struct {
	f *Future
}

func (a *futureActor) Receive(ctx Context) error {
	if _, ok := ctx.Message().(*autoReceiveMessage); ok {
		return nil
	}
	a.f.complete(ctx.Message(), nil)
	ctx.Stop()
	return nil
}

// RequestFuture implements the ask pattern: message is sent to target with
// a freshly spawned reply-to pid as Sender, and the returned Future
// resolves with whatever that pid next receives. If timeout elapses first,
// the future resolves with ErrFutureTimeout and the reply-to actor is
// stopped so a late reply is silently dead-lettered instead of delivered.
func (c *ActorCell) RequestFuture(target Pid, message interface{}, timeout time.Duration) *Future {
	f := newFuture()

	replyTo, err := c.Spawn(PropsFromProducer(func() Actor { return &futureActor{f: f} }))
	if err != nil {
		f.complete(nil, err)
		return f
	}

	c.deliverOrDeadLetter(target, &Envelope{Message: message, Sender: replyTo})

	if timeout > 0 {
		go func() {
			select {
			case <-f.done:
			case <-time.After(timeout):
				f.complete(nil, ErrFutureTimeout)
				_ = c.system.sendSystemMessage(replyTo, Stop)
			}
		}()
	}

	return f
}
