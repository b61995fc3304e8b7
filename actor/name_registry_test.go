package actor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameRegistry_RegisterRejectsConflict(t *testing.T) {
	r := NewNameRegistry()
	p1 := NewPid(1, "/user/a")
	p2 := NewPid(2, "/user/b")

	existing, ok := r.Register("worker", p1)
	assert.True(t, ok)
	assert.True(t, existing.IsZero())

	existing, ok = r.Register("worker", p2)
	assert.False(t, ok)
	assert.Equal(t, p1, existing)
}

func TestNameRegistry_ReleaseThenReregister(t *testing.T) {
	r := NewNameRegistry()
	p1 := NewPid(1, "/user/a")
	p2 := NewPid(2, "/user/b")

	_, ok := r.Register("worker", p1)
	assert.True(t, ok)

	r.Release("worker")
	_, found := r.Lookup("worker")
	assert.False(t, found)

	_, ok = r.Register("worker", p2)
	assert.True(t, ok)

	got, found := r.Lookup("worker")
	assert.True(t, found)
	assert.Equal(t, p2, got)
}

func TestNameRegistry_GenerateAnonymousIsUniqueAndRegistrable(t *testing.T) {
	r := NewNameRegistry()
	names := make(map[string]struct{})
	for i := 0; i < 5; i++ {
		name := r.GenerateAnonymous()
		_, ok := names[name]
		assert.False(t, ok, "generated name should not repeat")
		names[name] = struct{}{}

		_, registered := r.Register(name, NewPid(uint64(i+1), "/user/"+name))
		assert.True(t, registered)
	}
}

func TestNameRegistry_ReleaseMissingIsNoop(t *testing.T) {
	r := NewNameRegistry()
	assert.NotPanics(t, func() { r.Release("never-registered") })
}
