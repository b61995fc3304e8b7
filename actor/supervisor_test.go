package actor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultDecider(t *testing.T) {
	assert.Equal(t, DirectiveRestart, DefaultDecider(nil))
	assert.Equal(t, DirectiveRestart, DefaultDecider(NewRecoverableError(assertErr)))
	assert.Equal(t, DirectiveStop, DefaultDecider(NewFatalError(assertErr)))
}

func TestOneForOneStrategy_Affected(t *testing.T) {
	strategy := DefaultOneForOneStrategy()
	child := NewPid(1, "/user/child")
	sibling := NewPid(2, "/user/sibling")

	affected := strategy.Affected(child, []Pid{child, sibling})
	assert.Equal(t, []Pid{child}, affected)
}

func TestOneForOneStrategy_UnboundedRestartsForever(t *testing.T) {
	strategy := DefaultOneForOneStrategy()
	stats := NewRestartStatistics()
	for i := 0; i < 10; i++ {
		stats.Fail(time.Duration(i) * time.Millisecond)
		directive := strategy.HandleFailure(Pid{}, stats, NewRecoverableError(assertErr), nil, time.Duration(i)*time.Millisecond)
		assert.Equal(t, DirectiveRestart, directive)
	}
}

func TestOneForOneStrategy_ExceedsBudget(t *testing.T) {
	strategy := NewOneForOneStrategy(2, time.Second, DirectiveStop)
	stats := NewRestartStatistics()

	now := time.Duration(0)
	for i := 0; i < 2; i++ {
		stats.Fail(now)
		directive := strategy.HandleFailure(Pid{}, stats, NewRecoverableError(assertErr), nil, now)
		assert.Equal(t, DirectiveRestart, directive)
		now += time.Millisecond
	}

	// Third failure within the window exceeds maxRetries=2.
	stats.Fail(now)
	directive := strategy.HandleFailure(Pid{}, stats, NewRecoverableError(assertErr), nil, now)
	assert.Equal(t, DirectiveStop, directive)
}

func TestOneForOneStrategy_FatalAlwaysStopsRegardlessOfBudget(t *testing.T) {
	strategy := NewOneForOneStrategy(10, 0, DirectiveStop)
	stats := NewRestartStatistics()
	directive := strategy.HandleFailure(Pid{}, stats, NewFatalError(assertErr), nil, 0)
	assert.Equal(t, DirectiveStop, directive)
}

func TestAllForOneStrategy_AffectedIncludesAllSiblings(t *testing.T) {
	strategy := DefaultAllForOneStrategy()
	child := NewPid(1, "/user/child")
	sibling := NewPid(2, "/user/sibling")

	affected := strategy.Affected(child, []Pid{child, sibling})
	assert.ElementsMatch(t, []Pid{child, sibling}, affected)
	assert.Equal(t, []Pid{child, sibling}, affected, "registration order is preserved")
}

var assertErr = assertError{}

type assertError struct{}

func (assertError) Error() string { return "boom" }
