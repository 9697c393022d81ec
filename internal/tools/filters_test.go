package tools

import (
	"context"
	"strings"
	"testing"
)

// seedLabels creates a label table on the active dev connection.
func seedLabels(t *testing.T, env *testEnv) {
	t.Helper()
	wh, err := env.manager.Active()
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	seed := []string{
		`CREATE TABLE user_labels (user_id TEXT, country TEXT, is_converted INTEGER)`,
		`INSERT INTO user_labels VALUES
			('u1', 'us', 1), ('u2', 'us', 1), ('u3', 'us', 0), ('u4', 'us', 0),
			('u5', 'uk', 1), ('u6', 'uk', 0)`,
	}
	for _, stmt := range seed {
		if _, err := wh.ExecuteQuery(context.Background(), stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

// --- FiltersTool ---

func TestFiltersTool_RecommendsBestFilter(t *testing.T) {
	env := newTestEnv(t)
	env.connectDev(t)
	seedLabels(t, env)

	result, err := env.filters.Handle(context.Background(), newRequest(map[string]any{
		"filters":           `["country = 'us'", "1 = 1"]`,
		"label_table":       "user_labels",
		"label_column":      "is_converted",
		"entity_column":     "user_id",
		"min_eligible_rows": 1,
	}))
	if err != nil || isErrorResult(result) {
		t.Fatalf("evaluate: err=%v result=%s", err, getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "Recommended filter: `1 = 1`") {
		t.Errorf("full-population filter not recommended: %s", text)
	}
	if !strings.Contains(text, "country = 'us'") {
		t.Errorf("losing candidate missing from the report: %s", text)
	}
}

func TestFiltersTool_RejectsPlaceholderTable(t *testing.T) {
	env := newTestEnv(t)
	env.connectDev(t)

	result, err := env.filters.Handle(context.Background(), newRequest(map[string]any{
		"filters":       `["1 = 1"]`,
		"label_table":   "my_table",
		"label_column":  "is_converted",
		"entity_column": "user_id",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("placeholder label table accepted")
	}
	if !strings.Contains(getResultText(result), "placeholder") {
		t.Errorf("rejection does not explain the problem: %s", getResultText(result))
	}
}

func TestFiltersTool_RequiresActiveConnection(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.filters.Handle(context.Background(), newRequest(map[string]any{
		"filters":       `["1 = 1"]`,
		"label_table":   "user_labels",
		"label_column":  "is_converted",
		"entity_column": "user_id",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("evaluation ran without a warehouse connection")
	}
}

func TestFiltersTool_InvalidFiltersJSON(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.filters.Handle(context.Background(), newRequest(map[string]any{
		"filters":       `not json`,
		"label_table":   "user_labels",
		"label_column":  "is_converted",
		"entity_column": "user_id",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !isErrorResult(result) {
		t.Error("malformed filters argument accepted")
	}
}
