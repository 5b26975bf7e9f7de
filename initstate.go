package x402

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// InitState is the backend initialization state. It moves pending→success or
// pending→failed exactly once; both terminal states last for the lifetime of
// the middleware instance.
type InitState int

const (
	InitPending InitState = iota
	InitSuccess
	InitFailed
)

func (s InitState) String() string {
	switch s {
	case InitPending:
		return "pending"
	case InitSuccess:
		return "success"
	case InitFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// initGate tracks the one-time asynchronous backend initialization. Every
// request waits on the same gate; nothing ever re-triggers initialization.
type initGate struct {
	done chan struct{}

	mu    sync.Mutex
	state InitState
	err   error
}

// newInitGate returns a gate in the pending state.
func newInitGate() *initGate {
	return &initGate{done: make(chan struct{})}
}

// newSettledGate returns a gate already in the success state, for middleware
// instances with no routes that need backend startup.
func newSettledGate() *initGate {
	g := &initGate{done: make(chan struct{}), state: InitSuccess}
	close(g.done)
	return g
}

// start runs the initialization function in its own goroutine and settles the
// gate with its result. Must be called at most once, at construction.
func (g *initGate) start(initialize func(ctx context.Context) error, log *zap.Logger) {
	go func() {
		err := initialize(context.Background())
		g.mu.Lock()
		if err != nil {
			g.state = InitFailed
			g.err = err
			// Message only: init errors can wrap facilitator responses and
			// must not leak into logs wholesale.
			log.Error("payment backend initialization failed", zap.String("reason", err.Error()))
		} else {
			g.state = InitSuccess
		}
		g.mu.Unlock()
		close(g.done)
	}()
}

// Wait suspends until the gate settles or the request context is canceled.
// It returns the terminal initialization error, if any.
func (g *initGate) Wait(ctx context.Context) error {
	select {
	case <-g.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// State reports the current state and, when failed, the stored error.
func (g *initGate) State() (InitState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, g.err
}
