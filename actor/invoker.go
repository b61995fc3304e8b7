package actor

// MessageInvoker binds a dispatcher batch tick to an actor cell for
// delivery. ActorCell is the only implementation in this package; the
// interface exists so Dispatcher never depends on ActorCell's concrete
// type (breaking an otherwise-inevitable import cycle between cell and
// context).
type MessageInvoker interface {
	InvokeSystemMessage(msg SystemMessage)
	InvokeUserMessage(msg interface{})
}
