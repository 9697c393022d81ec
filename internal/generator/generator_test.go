package generator

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// --- Inputs ---

func TestGenerate_Inputs(t *testing.T) {
	out, err := Generate(KindInputs, InputsParams{Inputs: []Input{{
		Name:          "rsEvents",
		Table:         "ANALYTICS.PROD.EVENTS",
		OccurredAtCol: "occurred_at",
		IDs: []IDMapping{
			{Select: "user_id", Type: "user_id", Entity: "user"},
			{Select: "lower(email)", Type: "email", Entity: "user"},
		},
	}}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var decoded struct {
		Inputs []struct {
			Name        string `yaml:"name"`
			AppDefaults struct {
				Table string `yaml:"table"`
				IDs   []struct {
					Select string `yaml:"select"`
					Entity string `yaml:"entity"`
				} `yaml:"ids"`
			} `yaml:"app_defaults"`
		} `yaml:"inputs"`
	}
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, out)
	}
	if len(decoded.Inputs) != 1 {
		t.Fatalf("inputs = %d, want 1", len(decoded.Inputs))
	}
	if decoded.Inputs[0].AppDefaults.Table != "ANALYTICS.PROD.EVENTS" {
		t.Errorf("table = %s", decoded.Inputs[0].AppDefaults.Table)
	}
	if len(decoded.Inputs[0].AppDefaults.IDs) != 2 {
		t.Errorf("ids = %d, want 2", len(decoded.Inputs[0].AppDefaults.IDs))
	}
}

// --- Models ---

func TestGenerate_ModelsWithVarGroups(t *testing.T) {
	out, err := Generate(KindModels, ModelsParams{
		Models: []Model{{
			Name:      "user_id_stitcher",
			ModelType: "id_stitcher",
			ModelSpec: ModelSpec{EntityKey: "user", EdgeSources: []string{"inputs/rsEvents"}},
		}},
		VarGroups: []VarGroup{{
			Name:      "user_vars",
			EntityKey: "user",
			Vars: []EntityVar{
				{Name: "total_events", Select: "count(*)", From: "inputs/rsEvents"},
			},
		}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if !strings.Contains(out, "model_type: id_stitcher") {
		t.Errorf("missing model_type:\n%s", out)
	}
	if !strings.Contains(out, "entity_var:") {
		t.Errorf("vars not wrapped in entity_var:\n%s", out)
	}
}

// --- Entity vars fragment ---

func TestGenerate_EntityVars_MultilineSQLBlockScalar(t *testing.T) {
	sql := "sum(case when event = 'purchase'\nthen amount else 0 end)"
	out, err := Generate(KindEntityVars, EntityVarsParams{Vars: []EntityVar{
		{Name: "ltv", Select: sql, From: "inputs/rsEvents"},
	}})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var decoded struct {
		Vars []struct {
			EntityVar EntityVar `yaml:"entity_var"`
		} `yaml:"vars"`
	}
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, out)
	}
	if decoded.Vars[0].EntityVar.Select != sql {
		t.Errorf("multi-line select did not round-trip:\n%s", out)
	}
	if !strings.Contains(out, "|") {
		t.Errorf("multi-line SQL not emitted as block scalar:\n%s", out)
	}
}

// --- Project ---

func TestGenerate_Project(t *testing.T) {
	out, err := Generate(KindProject, ProjectParams{
		Name:          "customer_360",
		SchemaVersion: 72,
		Connection:    "snowflake_prod",
		ModelFolders:  []string{"models"},
		Entities:      []Entity{{Name: "user", IDTypes: []string{"user_id", "email"}}},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var decoded ProjectParams
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v\n%s", err, out)
	}
	if decoded.Connection != "snowflake_prod" || decoded.SchemaVersion != 72 {
		t.Errorf("round-trip = %+v", decoded)
	}
}

// --- Contract errors ---

func TestGenerate_UnknownKind(t *testing.T) {
	if _, err := Generate(Kind("bogus"), nil); err == nil {
		t.Fatal("no error for unknown kind")
	}
}

func TestGenerate_WrongParamsType(t *testing.T) {
	if _, err := Generate(KindInputs, ProjectParams{}); err == nil {
		t.Fatal("no error for mismatched params type")
	}
}
