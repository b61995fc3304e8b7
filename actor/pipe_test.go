package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// askingActor drives Context.RequestFuture in PreStart and records what the
// future resolved with on the channel, so the test goroutine can assert
// without a sleep.
type askingActor struct {
	target  Pid
	timeout time.Duration
	result  chan interface{}
}

func (a *askingActor) PreStart(ctx Context) error {
	f := ctx.RequestFuture(a.target, "ping", a.timeout)
	go func() {
		value, err := f.Wait()
		if err != nil {
			a.result <- err
			return
		}
		a.result <- value
	}()
	return nil
}

func (a *askingActor) Receive(ctx Context) error { return nil }

func TestContext_RequestFutureResolvesWithReply(t *testing.T) {
	sys := newTestSystem(t)

	target, err := sys.Spawn(PropsFromProducer(func() Actor { return echoActor{} }))
	require.NoError(t, err)

	result := make(chan interface{}, 1)
	_, err = sys.Spawn(PropsFromProducer(func() Actor {
		return &askingActor{target: target, timeout: time.Second, result: result}
	}))
	require.NoError(t, err)

	select {
	case v := <-result:
		assert.Equal(t, "ping", v)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for future to resolve")
	}
}

func TestContext_RequestFutureTimesOutWithNoReply(t *testing.T) {
	sys := newTestSystem(t)

	// mockActor never replies, so the ask must resolve via timeout.
	target, err := sys.Spawn(PropsFromProducer(func() Actor { return &mockActor{} }))
	require.NoError(t, err)

	result := make(chan interface{}, 1)
	_, err = sys.Spawn(PropsFromProducer(func() Actor {
		return &askingActor{target: target, timeout: 50 * time.Millisecond, result: result}
	}))
	require.NoError(t, err)

	select {
	case v := <-result:
		assert.Equal(t, ErrFutureTimeout, v)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for future to resolve")
	}
}

// pipingActor drives Context.PipeTo against a future it resolves itself in a
// background goroutine, recording the mapped message PipeTo delivers back
// through its own Receive.
type pipingActor struct {
	mockActor
	future *Future
}

func (a *pipingActor) PreStart(ctx Context) error {
	ctx.PipeTo(a.future, func(value interface{}, err error) interface{} {
		if err != nil {
			return err
		}
		return "piped:" + value.(string)
	})
	return nil
}

func TestContext_PipeToDeliversMappedResult(t *testing.T) {
	sys := newTestSystem(t)

	f := newFuture()
	actor := &pipingActor{future: f}
	_, err := sys.Spawn(PropsFromProducer(func() Actor { return actor }))
	require.NoError(t, err)

	f.complete("value", nil)

	msg, ok := waitForMessage(t, &actor.mockActor, "", time.Second)
	require.True(t, ok)
	assert.Equal(t, "piped:value", msg)
}

// adaptingActor registers an adapter that prefixes string messages with
// "adapted:", hands the adapter's id and pid to the test over channels so it
// can send through it, and records what it receives back on its own Receive.
type adaptingActor struct {
	mockActor
	adapterPid chan Pid
	adapterID  chan AdapterID
}

func (a *adaptingActor) PreStart(ctx Context) error {
	id, pid, err := ctx.RegisterAdapter(func(msg interface{}) interface{} {
		return "adapted:" + msg.(string)
	})
	if err != nil {
		return err
	}
	a.adapterID <- id
	a.adapterPid <- pid
	return nil
}

func TestContext_RegisterAdapterConvertsAndForwards(t *testing.T) {
	sys := newTestSystem(t)

	owner := &adaptingActor{adapterPid: make(chan Pid, 1), adapterID: make(chan AdapterID, 1)}
	_, err := sys.Spawn(PropsFromProducer(func() Actor { return owner }))
	require.NoError(t, err)

	var adapterPid Pid
	select {
	case adapterPid = <-owner.adapterPid:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for adapter pid")
	}

	sys.Send(adapterPid, "hello")

	msg, ok := waitForMessage(t, &owner.mockActor, "", time.Second)
	require.True(t, ok)
	assert.Equal(t, "adapted:hello", msg)
}

func TestContext_StopAdapterStopsChild(t *testing.T) {
	sys := newTestSystem(t)

	owner := &adaptingActor{adapterPid: make(chan Pid, 1), adapterID: make(chan AdapterID, 1)}
	pid, err := sys.Spawn(PropsFromProducer(func() Actor { return owner }))
	require.NoError(t, err)

	var adapterID AdapterID
	select {
	case adapterID = <-owner.adapterID:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for adapter id")
	}
	var adapterPid Pid
	select {
	case adapterPid = <-owner.adapterPid:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for adapter pid")
	}

	cell, ok := sys.state.Cell(pid)
	require.True(t, ok)
	cell.StopAdapter(adapterID)

	stopped := waitUntil(t, time.Second, func() bool {
		_, ok := sys.state.Cell(adapterPid)
		return !ok
	})
	assert.True(t, stopped, "adapter child should be removed once stopped")
}
