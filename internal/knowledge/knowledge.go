// Package knowledge holds the built-in topic documentation served by
// the about tool. Studying a topic through that tool is what satisfies
// the gate's knowledge prerequisites, so this content is the front door
// of the whole workflow.
package knowledge

import (
	"sort"

	"github.com/pipewarden/pipewarden/internal/workflow"
)

var topics = map[workflow.Topic]string{
	workflow.TopicProfiles: `# Pipeline Projects Overview

A pipeline project turns raw warehouse tables into unified entity
profiles. A project is a directory of YAML files:

- pb_project.yaml — project name, warehouse connection, entities and
  their id types, and which folders hold model files.
- inputs.yaml — the source tables feeding the pipeline.
- profiles.yaml (models) — id stitching and derived features.
- macros.yaml — reusable SQL snippets.

The build workflow is strictly ordered: study the concepts, discover
and confirm real tables and connections with the user, then generate
configuration. Never invent table or connection names — every name in a
generated file must be one the user explicitly confirmed.`,

	workflow.TopicCLI: `# CLI Commands

The project builder CLI drives compilation and runs:

- pb init connection — interactively create a warehouse connection.
- pb compile — validate and compile the project without touching data.
- pb run — execute the pipeline against the warehouse.
- pb show models — print the resolved model graph.

Always compile before running. Use --begin_time to limit how far back a
run reads instead of adding date WHERE clauses to inputs.`,

	workflow.TopicProject: `# pb_project.yaml

The project file declares identity for everything else:

- name: project identifier.
- schema_version: config schema revision understood by the CLI.
- connection: the warehouse connection outputs are written through.
- model_folders: directories scanned for model YAML files.
- entities: each entity with its ordered id_types list.

The connection value must be a connection the user confirmed; the
output schema of that connection is where feature tables land.`,

	workflow.TopicInputs: `# inputs.yaml

Each input maps one warehouse table into the project:

- name: handle used by models ("inputs/<name>").
- app_defaults.table: fully qualified table name the user confirmed.
- app_defaults.occurred_at_col: event timestamp column, required for
  time-windowed features.
- app_defaults.ids: column-to-id-type mappings that feed id stitching.

Verify every column with describe_table before referencing it. A table
that lacks a usable id column cannot participate in stitching.`,

	workflow.TopicModels: `# Models (profiles.yaml)

Models resolve identity and derive features:

- id_stitcher models merge ids across inputs into one entity graph.
  edge_sources lists the inputs contributing id pairs.
- feature table models materialize entity vars into serving tables.
- var_groups group entity vars under an entity_key.

Keep aggregations simple — prefer count/sum/min/max over window
functions. Reference inputs as "inputs/<name>", never raw table names.`,

	workflow.TopicMacros: `# macros.yaml

Macros are reusable SQL fragments expanded at compile time. Timestamp
arithmetic must go through the provided datediff macros rather than
calling warehouse functions directly, so a project stays portable
across warehouse engines. A macro takes positional inputs and splices
them into its SQL body.`,

	workflow.TopicPropensity: `# Propensity Models

A propensity model scores entities on the likelihood of a future event
(churn, conversion, LTV). It needs:

- a label: an entity var marking the outcome over a historic window.
- eligible users: a filter defining who gets scored.
- feature date bounds: training needs historic snapshots, so inputs
  must have real time-series data — static tables cannot train a model.

Validate the configuration before running: small eligible populations
or one-sided label rates produce useless models.`,
}

// About returns the documentation for a topic and whether it exists.
func About(topic workflow.Topic) (string, bool) {
	content, ok := topics[topic]
	return content, ok
}

// Topics lists all documented topics in sorted order.
func Topics() []workflow.Topic {
	out := make([]workflow.Topic, 0, len(topics))
	for t := range topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
