package workflow

import (
	"reflect"
	"testing"
)

// --- Helpers ---

func studiedSnapshot(topics ...Topic) Snapshot {
	s := newSession("gate-test")
	for _, topic := range topics {
		s.RecordTopicStudied(topic)
	}
	return s.Snapshot()
}

func confirmedSnapshot(topics []Topic, kind ResourceKind, names ...string) Snapshot {
	s := newSession("gate-test")
	for _, topic := range topics {
		s.RecordTopicStudied(topic)
	}
	if v := s.ConfirmResources(kind, names); v != nil {
		panic("test setup: unexpected confirmation violations")
	}
	return s.Snapshot()
}

// --- Scenario A: fresh session, knowledge missing ---

func TestEvaluate_FreshSessionMissingKnowledge(t *testing.T) {
	dec := Evaluate(studiedSnapshot(), ActionRequest{
		Kind:         ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{ResourceTable: {"ANALYTICS.PROD.EVENTS"}},
	})

	if dec.Approved {
		t.Fatal("approved, want blocked")
	}
	if dec.Reason != ReasonMissingKnowledge {
		t.Fatalf("reason = %s, want missing_knowledge", dec.Reason)
	}
	want := []Topic{TopicProfiles, TopicInputs}
	if !reflect.DeepEqual(dec.MissingTopics, want) {
		t.Errorf("missing topics = %v, want %v", dec.MissingTopics, want)
	}
}

// --- Scenario B: knowledge studied, resources confirmed ---

func TestEvaluate_ApprovedWhenPrerequisitesMet(t *testing.T) {
	snap := confirmedSnapshot(
		[]Topic{TopicProfiles, TopicInputs},
		ResourceTable, "ANALYTICS.PROD.EVENTS",
	)

	dec := Evaluate(snap, ActionRequest{
		Kind:         ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{ResourceTable: {"ANALYTICS.PROD.EVENTS"}},
		Payload:      "payload-42",
	})

	if !dec.Approved {
		t.Fatalf("blocked with reason %s, want approved", dec.Reason)
	}
	if dec.Payload != "payload-42" {
		t.Errorf("payload = %v, want payload-42", dec.Payload)
	}
}

// --- Scenario D: knowledge ok, resource never confirmed ---

func TestEvaluate_UnconfirmedResource(t *testing.T) {
	snap := studiedSnapshot(TopicProfiles, TopicInputs)

	dec := Evaluate(snap, ActionRequest{
		Kind:         ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{ResourceTable: {"sample_schema.users"}},
	})

	if dec.Reason != ReasonUnconfirmedResource {
		t.Fatalf("reason = %s, want unconfirmed_resource", dec.Reason)
	}
	want := map[ResourceKind][]string{ResourceTable: {"sample_schema.users"}}
	if !reflect.DeepEqual(dec.Unconfirmed, want) {
		t.Errorf("unconfirmed = %v, want %v", dec.Unconfirmed, want)
	}
}

func TestEvaluate_ReportsAllKindsWithGaps(t *testing.T) {
	snap := confirmedSnapshot(
		[]Topic{TopicProfiles, TopicInputs},
		ResourceTable, "prod.events",
	)

	dec := Evaluate(snap, ActionRequest{
		Kind: ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{
			ResourceTable:      {"prod.events", "prod.orders"},
			ResourceConnection: {"snowflake_prod"},
		},
	})

	if dec.Reason != ReasonUnconfirmedResource {
		t.Fatalf("reason = %s, want unconfirmed_resource", dec.Reason)
	}
	want := map[ResourceKind][]string{
		ResourceTable:      {"prod.orders"},
		ResourceConnection: {"snowflake_prod"},
	}
	if !reflect.DeepEqual(dec.Unconfirmed, want) {
		t.Errorf("unconfirmed = %v, want %v", dec.Unconfirmed, want)
	}
}

// --- Scenario E: unknown action ---

func TestEvaluate_UnknownAction(t *testing.T) {
	dec := Evaluate(studiedSnapshot(), ActionRequest{Kind: ActionKind("unknown_action")})
	if dec.Reason != ReasonUnknownAction {
		t.Errorf("reason = %s, want unknown_action", dec.Reason)
	}

	// Session state is irrelevant for unknown actions.
	snap := studiedSnapshot(TopicProfiles, TopicInputs, TopicModels, TopicMacros)
	dec = Evaluate(snap, ActionRequest{Kind: ActionKind("unknown_action")})
	if dec.Reason != ReasonUnknownAction {
		t.Errorf("reason with full knowledge = %s, want unknown_action", dec.Reason)
	}
}

// --- Precedence ---

func TestEvaluate_KnowledgeBeforeResources(t *testing.T) {
	// Both knowledge and confirmation are missing; knowledge wins.
	dec := Evaluate(studiedSnapshot(), ActionRequest{
		Kind:         ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{ResourceTable: {"never.confirmed"}},
	})
	if dec.Reason != ReasonMissingKnowledge {
		t.Errorf("reason = %s, want missing_knowledge", dec.Reason)
	}
}

func TestEvaluate_UnconfirmedBeforePlaceholder(t *testing.T) {
	// A placeholder that was never confirmed reports as unconfirmed:
	// step 2 runs before step 3.
	snap := studiedSnapshot(TopicProfiles, TopicInputs)
	dec := Evaluate(snap, ActionRequest{
		Kind:         ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{ResourceTable: {"my_table"}},
	})
	if dec.Reason != ReasonUnconfirmedResource {
		t.Errorf("reason = %s, want unconfirmed_resource", dec.Reason)
	}
}

// --- Defense in depth ---

func TestEvaluate_PlaceholderBlockedDespiteConfirmation(t *testing.T) {
	// Simulate a stale or tampered confirmation: inject a placeholder
	// straight into the confirmed set, bypassing ConfirmResources.
	s := newSession("tampered")
	s.RecordTopicStudied(TopicProfiles)
	s.RecordTopicStudied(TopicInputs)
	s.confirmed[ResourceTable] = map[string]struct{}{"my_table": {}}

	dec := Evaluate(s.Snapshot(), ActionRequest{
		Kind:         ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{ResourceTable: {"my_table"}},
	})

	if dec.Reason != ReasonPlaceholderName {
		t.Fatalf("reason = %s, want placeholder_name", dec.Reason)
	}
	if !reflect.DeepEqual(dec.Placeholders, []string{"my_table"}) {
		t.Errorf("placeholders = %v, want [my_table]", dec.Placeholders)
	}
}

func TestEvaluate_PlaceholderReportedOncePerName(t *testing.T) {
	// Repeated refs collapse in the report, same as the unconfirmed
	// details.
	s := newSession("tampered")
	s.RecordTopicStudied(TopicProfiles)
	s.RecordTopicStudied(TopicInputs)
	s.confirmed[ResourceTable] = map[string]struct{}{"my_table": {}}

	dec := Evaluate(s.Snapshot(), ActionRequest{
		Kind:         ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{ResourceTable: {"my_table", "my_table"}},
	})

	if dec.Reason != ReasonPlaceholderName {
		t.Fatalf("reason = %s, want placeholder_name", dec.Reason)
	}
	if !reflect.DeepEqual(dec.Placeholders, []string{"my_table"}) {
		t.Errorf("placeholders = %v, want [my_table] exactly once", dec.Placeholders)
	}
}

// --- Determinism ---

func TestEvaluate_Deterministic(t *testing.T) {
	snap := studiedSnapshot(TopicProfiles)
	req := ActionRequest{
		Kind: ActionCreateInputsYAML,
		ResourceRefs: map[ResourceKind][]string{
			ResourceTable:      {"a.b", "c.d"},
			ResourceConnection: {"conn"},
		},
	}

	first := Evaluate(snap, req)
	for i := 0; i < 20; i++ {
		if got := Evaluate(snap, req); !reflect.DeepEqual(got, first) {
			t.Fatalf("evaluation %d = %+v, want %+v", i, got, first)
		}
	}
}

// --- Actions without prerequisites ---

func TestEvaluate_NoPrerequisiteActionApproved(t *testing.T) {
	dec := Evaluate(studiedSnapshot(), ActionRequest{Kind: ActionRunQuery, Payload: "SELECT 1"})
	if !dec.Approved {
		t.Fatalf("run_query on fresh session blocked with %s, want approved", dec.Reason)
	}
}
