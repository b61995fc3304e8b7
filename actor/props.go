package actor

// PropsOption configures a Props at construction time, the idiomatic Go
// substitute for a fluent Props builder.
type PropsOption func(*Props)

// Props bundles everything SystemState needs to spawn a child: how to
// build the actor instance, its mailbox/dispatcher configuration, and its
// default supervisor strategy (consulted unless the actor itself provides
// one dynamically via SupervisorStrategyProvider).
type Props struct {
	producer           Producer
	mailboxPolicy      MailboxPolicy
	dispatcherConfig   DispatcherConfig
	supervisorStrategy SupervisorStrategy
}

// PropsFromProducer builds Props around a Producer with sane defaults: an
// unbounded mailbox, the default dispatcher, and a OneForOne/Restart
// strategy with no retry budget.
func PropsFromProducer(producer Producer, opts ...PropsOption) *Props {
	p := &Props{
		producer:           producer,
		mailboxPolicy:      DefaultMailboxPolicy(),
		dispatcherConfig:   DefaultDispatcherConfig(),
		supervisorStrategy: DefaultOneForOneStrategy(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithMailbox overrides the mailbox policy.
func WithMailbox(policy MailboxPolicy) PropsOption {
	return func(p *Props) { p.mailboxPolicy = policy }
}

// WithDispatcher overrides the dispatcher configuration.
func WithDispatcher(config DispatcherConfig) PropsOption {
	return func(p *Props) { p.dispatcherConfig = config }
}

// WithSupervisorStrategy overrides the default supervisor strategy used
// when the actor itself doesn't implement SupervisorStrategyProvider.
func WithSupervisorStrategy(strategy SupervisorStrategy) PropsOption {
	return func(p *Props) { p.supervisorStrategy = strategy }
}
