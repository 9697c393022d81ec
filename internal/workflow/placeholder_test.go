package workflow

import "testing"

// --- Exact matches ---

func TestIsPlaceholder_ExactMatch(t *testing.T) {
	for _, name := range []string{
		"my_table", "my_database", "my_schema", "my_connection",
		"example_db", "sample_schema", "test_table",
		"your_database", "table_name", "connection_name",
		"user_confirmed", "user_chosen",
	} {
		if !IsPlaceholder(name) {
			t.Errorf("IsPlaceholder(%q) = false, want true", name)
		}
	}
}

func TestIsPlaceholder_CaseInsensitive(t *testing.T) {
	if !IsPlaceholder("MY_TABLE") {
		t.Error("IsPlaceholder(MY_TABLE) = false, want true")
	}
	if !IsPlaceholder("Table_Name") {
		t.Error("IsPlaceholder(Table_Name) = false, want true")
	}
}

func TestIsPlaceholder_TrimsWhitespace(t *testing.T) {
	if !IsPlaceholder("  my_table  ") {
		t.Error("IsPlaceholder with surrounding whitespace = false, want true")
	}
}

// --- Prefix matches ---

func TestIsPlaceholder_PrefixMatch(t *testing.T) {
	for _, name := range []string{
		"my_events", "your_warehouse", "demo_orders", "example_users",
	} {
		if !IsPlaceholder(name) {
			t.Errorf("IsPlaceholder(%q) = false, want true", name)
		}
	}
}

// --- Token matches ---

func TestIsPlaceholder_TokenMatch(t *testing.T) {
	// "user_confirmed" is a single token here: the comma delimits,
	// underscores join.
	if !IsPlaceholder("events,user_confirmed") {
		t.Error("token match through delimiter = false, want true")
	}
}

// --- Real names pass ---

func TestIsPlaceholder_RealNames(t *testing.T) {
	for _, name := range []string{
		"ANALYTICS.PROD.EVENTS",
		"prod_db.crm.users",
		"snowflake_prod_warehouse",
		"sample_schema.users", // whole string differs, tokens split the underscore
		"orders_2024",
	} {
		if IsPlaceholder(name) {
			t.Errorf("IsPlaceholder(%q) = true, want false", name)
		}
	}
}

// --- Degenerate input ---

func TestIsPlaceholder_EmptyInput(t *testing.T) {
	if IsPlaceholder("") {
		t.Error("IsPlaceholder(\"\") = true, want false")
	}
	if IsPlaceholder("   ") {
		t.Error("IsPlaceholder(whitespace) = true, want false")
	}
	if IsPlaceholder("...") {
		t.Error("IsPlaceholder(punctuation only) = true, want false")
	}
}
