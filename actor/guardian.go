package actor

// guardianActor is the behavior behind the root/system/user guardians
// bootstrapped by NewActorSystem. It does no work of its own; it exists to
// give every top-level actor a parent, so the Watch/Terminate and
// failure-propagation machinery never has to special-case a childless
// root. Guardians reply to unexpected messages with a dead letter rather
// than silently swallowing them.
type guardianActor struct {
	role string
}

func newGuardianActor(role string) Producer {
	return func() Actor { return &guardianActor{role: role} }
}

func (g *guardianActor) Receive(ctx Context) error {
	switch ctx.Message().(type) {
	case *autoReceiveMessage:
		return nil
	default:
		ctx.System().state.recordDeadLetter(ctx.Message(), ctx.Self(), ReasonRoutingFailure, ctx.Sender())
		return nil
	}
}

// guardianStrategy governs how a guardian reacts to its own children's
// failures: restart Recoverable failures with no retry budget (Fatal ones
// stop), a permissive top-level supervisor. Callers needing stricter policy at the
// user guardian pass their own strategy to NewActorSystem.
func guardianStrategy() SupervisorStrategy {
	return DefaultOneForOneStrategy()
}
