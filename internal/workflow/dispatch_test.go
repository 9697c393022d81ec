package workflow

import (
	"context"
	"errors"
	"testing"
)

// --- Helpers ---

func readyDispatcher(t *testing.T, kind ActionKind, h Handler) (*Dispatcher, *Registry) {
	t.Helper()
	reg := NewRegistry()
	d := NewDispatcher(reg)
	d.Register(kind, h)
	return d, reg
}

// --- Blocked requests ---

func TestDispatch_BlockedNeverCallsHandler(t *testing.T) {
	called := false
	d, _ := readyDispatcher(t, ActionCreateInputsYAML, func(ctx context.Context, req ActionRequest) (any, error) {
		called = true
		return nil, nil
	})

	out, err := d.Dispatch(context.Background(), "conv-1", ActionRequest{
		Kind:         ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{ResourceTable: {"prod.events"}},
	})
	if err != nil {
		t.Fatalf("Dispatch error = %v, want nil (blocked is not an error)", err)
	}
	if out.Decision.Approved {
		t.Fatal("approved, want blocked (fresh session)")
	}
	if called {
		t.Error("handler called for a blocked request")
	}
}

func TestDispatch_BlockedLeavesSessionUntouched(t *testing.T) {
	d, reg := readyDispatcher(t, ActionCreateInputsYAML, func(ctx context.Context, req ActionRequest) (any, error) {
		return nil, nil
	})

	_, _ = d.Dispatch(context.Background(), "conv-1", ActionRequest{
		Kind:         ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{ResourceTable: {"prod.events"}},
	})

	snap := reg.GetOrCreate("conv-1").Snapshot()
	if len(snap.StudiedTopics()) != 0 {
		t.Error("rejection mutated studied topics")
	}
	if snap.IsConfirmed(ResourceTable, "prod.events") {
		t.Error("rejection confirmed a resource as a side effect")
	}
}

// --- Approved requests ---

func TestDispatch_ApprovedForwardsPayload(t *testing.T) {
	var got any
	d, reg := readyDispatcher(t, ActionRunQuery, func(ctx context.Context, req ActionRequest) (any, error) {
		got = req.Payload
		return "3 rows", nil
	})

	// run_query has no prerequisites; a fresh session approves it.
	_ = reg
	out, err := d.Dispatch(context.Background(), "conv-1", ActionRequest{
		Kind:    ActionRunQuery,
		Payload: "SELECT count(*) FROM prod.events",
	})
	if err != nil {
		t.Fatalf("Dispatch error = %v", err)
	}
	if !out.Decision.Approved {
		t.Fatalf("blocked with %s, want approved", out.Decision.Reason)
	}
	if got != "SELECT count(*) FROM prod.events" {
		t.Errorf("handler payload = %v, want the query", got)
	}
	if out.Result != "3 rows" {
		t.Errorf("result = %v, want handler result", out.Result)
	}
}

func TestDispatch_GatedActionApprovedAfterPrerequisites(t *testing.T) {
	d, reg := readyDispatcher(t, ActionCreateInputsYAML, func(ctx context.Context, req ActionRequest) (any, error) {
		return "inputs.yaml content", nil
	})

	s := reg.GetOrCreate("conv-1")
	s.RecordTopicStudied(TopicProfiles)
	s.RecordTopicStudied(TopicInputs)
	if v := s.ConfirmResources(ResourceTable, []string{"ANALYTICS.PROD.EVENTS"}); v != nil {
		t.Fatalf("setup: violations %v", v)
	}

	out, err := d.Dispatch(context.Background(), "conv-1", ActionRequest{
		Kind:         ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{ResourceTable: {"ANALYTICS.PROD.EVENTS"}},
	})
	if err != nil {
		t.Fatalf("Dispatch error = %v", err)
	}
	if !out.Decision.Approved {
		t.Fatalf("blocked with %s, want approved", out.Decision.Reason)
	}
	if out.Result != "inputs.yaml content" {
		t.Errorf("result = %v, want generator output", out.Result)
	}
}

// --- Collaborator failures ---

func TestDispatch_HandlerErrorWrapsAsCollaboratorError(t *testing.T) {
	downstream := errors.New("warehouse unreachable")
	d, _ := readyDispatcher(t, ActionRunQuery, func(ctx context.Context, req ActionRequest) (any, error) {
		return nil, downstream
	})

	out, err := d.Dispatch(context.Background(), "conv-1", ActionRequest{Kind: ActionRunQuery})
	if out != nil {
		t.Error("outcome non-nil alongside collaborator error")
	}

	var collabErr *CollaboratorError
	if !errors.As(err, &collabErr) {
		t.Fatalf("error = %v, want *CollaboratorError", err)
	}
	if collabErr.Action != ActionRunQuery {
		t.Errorf("Action = %s, want run_query", collabErr.Action)
	}
	if !errors.Is(err, downstream) {
		t.Error("CollaboratorError does not unwrap to the downstream error")
	}
}

// --- Wiring faults ---

func TestDispatch_MissingHandlerIsHardError(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	_, err := d.Dispatch(context.Background(), "conv-1", ActionRequest{Kind: ActionRunQuery})
	if err == nil {
		t.Fatal("no error for known action with no registered handler")
	}
	var collabErr *CollaboratorError
	if errors.As(err, &collabErr) {
		t.Error("wiring bug misreported as collaborator failure")
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	h := func(ctx context.Context, req ActionRequest) (any, error) { return nil, nil }
	d.Register(ActionRunQuery, h)

	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	d.Register(ActionRunQuery, h)
}

// --- Unknown actions via dispatch ---

func TestDispatch_UnknownActionBlocked(t *testing.T) {
	d := NewDispatcher(NewRegistry())
	out, err := d.Dispatch(context.Background(), "conv-1", ActionRequest{Kind: ActionKind("bogus")})
	if err != nil {
		t.Fatalf("Dispatch error = %v, want nil", err)
	}
	if out.Decision.Reason != ReasonUnknownAction {
		t.Errorf("reason = %s, want unknown_action", out.Decision.Reason)
	}
}
