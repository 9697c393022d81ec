// Package workflow implements the validation engine that gates every
// action an AI agent attempts while building a pipeline project.
//
// The engine tracks per-session state (topics studied, resources the
// user confirmed), and a pure gate decides Approve/Block for each
// requested action. Checks apply in a fixed order so the agent always
// sees the earliest unmet prerequisite: unknown action, then missing
// knowledge, then unconfirmed resources, then placeholder names.
// Rejection is always side-effect-free — no collaborator is ever
// invoked for a blocked action.
package workflow

import "sort"

// ActionRequest describes one attempted action: its kind, the
// warehouse resources it references (per kind, in the order the agent
// supplied them), and an opaque payload forwarded untouched to the
// action handler on approval.
type ActionRequest struct {
	Kind         ActionKind
	ResourceRefs map[ResourceKind][]string
	Payload      any
}

// Decision is the gate's verdict on a single request. Exactly one of
// Approved or Reason is meaningful: an approved decision carries the
// forwarded payload, a blocked one carries the reason kind plus the
// detail field matching that reason.
type Decision struct {
	Approved bool
	Payload  any

	Reason        ReasonKind
	MissingTopics []Topic
	Unconfirmed   map[ResourceKind][]string
	Placeholders  []string
}

// Evaluate runs the validation gate over a session snapshot and a
// request. It is deterministic and pure: no state is read outside its
// arguments and nothing is mutated.
//
// Check order is a contract — when several rules are unmet, the
// reported reason is always the earliest one:
//
//  1. unknown action kind
//  2. missing knowledge topics
//  3. unconfirmed resources (all kinds with gaps, reported together)
//  4. placeholder names anywhere in the refs, confirmed or not
func Evaluate(snap Snapshot, req ActionRequest) Decision {
	required, known := RequiredTopics(req.Kind)
	if !known {
		return Decision{Reason: ReasonUnknownAction}
	}

	var missing []Topic
	for _, topic := range required {
		if !snap.HasStudied(topic) {
			missing = append(missing, topic)
		}
	}
	if len(missing) > 0 {
		return Decision{Reason: ReasonMissingKnowledge, MissingTopics: missing}
	}

	unconfirmed := make(map[ResourceKind][]string)
	for _, kind := range sortedKinds(req.ResourceRefs) {
		var gaps []string
		seen := make(map[string]struct{})
		for _, name := range req.ResourceRefs[kind] {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			if !snap.IsConfirmed(kind, name) {
				gaps = append(gaps, name)
			}
		}
		if len(gaps) > 0 {
			unconfirmed[kind] = gaps
		}
	}
	if len(unconfirmed) > 0 {
		return Decision{Reason: ReasonUnconfirmedResource, Unconfirmed: unconfirmed}
	}

	// Defense in depth: the detector re-runs over every referenced name
	// regardless of confirmation history. A confirmation recorded before
	// the pattern set changed must not leak through.
	var placeholders []string
	seenNames := make(map[string]struct{})
	for _, kind := range sortedKinds(req.ResourceRefs) {
		for _, name := range req.ResourceRefs[kind] {
			if _, dup := seenNames[name]; dup {
				continue
			}
			seenNames[name] = struct{}{}
			if IsPlaceholder(name) {
				placeholders = append(placeholders, name)
			}
		}
	}
	if len(placeholders) > 0 {
		return Decision{Reason: ReasonPlaceholderName, Placeholders: placeholders}
	}

	return Decision{Approved: true, Payload: req.Payload}
}

// sortedKinds returns the map's resource kinds in lexical order so
// decision details are stable across runs.
func sortedKinds(refs map[ResourceKind][]string) []ResourceKind {
	kinds := make([]ResourceKind, 0, len(refs))
	for kind := range refs {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
