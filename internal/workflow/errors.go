package workflow

import "fmt"

// ReasonKind classifies why the gate blocked an action. Validation
// failures are structured data returned to the caller, never faults —
// they are expected and meant to steer the agent back on the workflow.
type ReasonKind string

const (
	ReasonUnknownAction       ReasonKind = "unknown_action"
	ReasonMissingKnowledge    ReasonKind = "missing_knowledge"
	ReasonUnconfirmedResource ReasonKind = "unconfirmed_resource"
	ReasonPlaceholderName     ReasonKind = "placeholder_name"
)

// CollaboratorError wraps a failure from an external capability
// (warehouse, docs search, generator) invoked after approval. It is
// deliberately a different shape from a blocked Decision so callers can
// tell "fix your request" apart from "something downstream failed".
type CollaboratorError struct {
	Action ActionKind
	Err    error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("action %s: collaborator failed: %v", e.Action, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
