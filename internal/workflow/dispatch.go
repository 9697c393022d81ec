package workflow

import (
	"context"
	"fmt"
)

// Handler executes an approved action. Handlers receive the original
// request (payload included) and may perform slow I/O — by the time a
// handler runs, no session lock is held.
type Handler func(ctx context.Context, req ActionRequest) (any, error)

// Dispatcher is the boundary between incoming action requests and the
// external capabilities. It resolves the session, consults the gate,
// and only on approval forwards to the handler registered for the
// action kind. Handlers are registered explicitly at startup; there is
// no dynamic discovery.
type Dispatcher struct {
	registry *Registry
	handlers map[ActionKind]Handler
}

// NewDispatcher creates a dispatcher over the given session registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		handlers: make(map[ActionKind]Handler),
	}
}

// Register binds a handler to an action kind. Registering the same
// kind twice is a programming error and panics at startup.
func (d *Dispatcher) Register(kind ActionKind, h Handler) {
	if _, dup := d.handlers[kind]; dup {
		panic(fmt.Sprintf("workflow: handler already registered for %q", kind))
	}
	d.handlers[kind] = h
}

// Outcome is the result of one dispatch: the gate's decision plus, when
// approved, whatever the action handler returned.
type Outcome struct {
	Decision Decision
	Result   any
}

// Dispatch resolves the session, snapshots its state, and runs the
// gate. A blocked decision returns immediately with no side effects and
// no collaborator call. An approved decision invokes the registered
// handler with the session lock released, so slow warehouse or
// generator I/O never serializes other calls against this session.
// Handler failures come back wrapped in *CollaboratorError, a distinct
// shape from a blocked Decision.
func (d *Dispatcher) Dispatch(ctx context.Context, sessionID string, req ActionRequest) (*Outcome, error) {
	session := d.registry.GetOrCreate(sessionID)

	// Snapshot copies the studied/confirmed sets under the session lock;
	// the gate itself is pure and runs lock-free over the copy.
	decision := Evaluate(session.Snapshot(), req)
	if !decision.Approved {
		return &Outcome{Decision: decision}, nil
	}

	handler, ok := d.handlers[req.Kind]
	if !ok {
		// A known action with no handler is a wiring bug, not an agent
		// mistake — surface it as a hard error.
		return nil, fmt.Errorf("workflow: no handler registered for action %q", req.Kind)
	}

	result, err := handler(ctx, req)
	if err != nil {
		return nil, &CollaboratorError{Action: req.Kind, Err: err}
	}

	return &Outcome{Decision: decision, Result: result}, nil
}
