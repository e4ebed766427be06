package engine

// Engine runs the resolve, rebuild and commit phases against an ObjectStore.
// It keeps no state between calls.
type Engine struct {
	store ObjectStore
	log   Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for phase traces
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// NewEngine creates an engine over store
func NewEngine(store ObjectStore, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   nopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the object store the engine writes to
func (e *Engine) Store() ObjectStore {
	return e.store
}
