package workflow

import "sort"

// Topic is a named documentation area the agent must study before
// certain actions become approvable.
type Topic string

// Knowledge topics served by the about tool.
const (
	TopicProfiles   Topic = "profiles"
	TopicCLI        Topic = "cli"
	TopicProject    Topic = "project"
	TopicInputs     Topic = "inputs"
	TopicModels     Topic = "models"
	TopicMacros     Topic = "macros"
	TopicPropensity Topic = "propensity"
)

// ActionKind identifies what the agent is attempting to do.
type ActionKind string

// Action kinds accepted by the dispatcher. Configuration actions
// (create_*) carry knowledge prerequisites; the rest are discovery or
// execution steps with no required topics.
const (
	ActionStart                  ActionKind = "start"
	ActionKnowledgeGathering     ActionKind = "knowledge_gathering"
	ActionDiscoverResources      ActionKind = "discover_resources"
	ActionCreateInputsYAML       ActionKind = "create_inputs_yaml"
	ActionCreateModelsYAML       ActionKind = "create_models_yaml"
	ActionCreateEntityVars       ActionKind = "create_entity_vars"
	ActionAddDateFiltering       ActionKind = "add_date_filtering"
	ActionRunPilotTest           ActionKind = "run_pilot_test"
	ActionCreatePropensityModel  ActionKind = "create_propensity_model"
	ActionAnalyzeExistingProject ActionKind = "analyze_existing_project"
	ActionRunQuery               ActionKind = "run_query"
	ActionDescribeTable          ActionKind = "describe_table"
)

// ResourceKind categorizes confirmable warehouse resources.
type ResourceKind string

const (
	ResourceTable      ResourceKind = "table"
	ResourceConnection ResourceKind = "connection"
)

// knowledgeRequirements maps each known action to the topics that must
// be studied before it can be approved. An action missing from this
// table is unknown and always blocked. An empty topic list means the
// knowledge check passes vacuously.
var knowledgeRequirements = map[ActionKind][]Topic{
	ActionStart:                  {},
	ActionKnowledgeGathering:     {},
	ActionDiscoverResources:      {},
	ActionCreateInputsYAML:       {TopicProfiles, TopicInputs},
	ActionCreateModelsYAML:       {TopicProfiles, TopicInputs, TopicModels, TopicMacros},
	ActionCreateEntityVars:       {TopicProfiles, TopicModels, TopicMacros},
	ActionAddDateFiltering:       {},
	ActionRunPilotTest:           {},
	ActionCreatePropensityModel:  {},
	ActionAnalyzeExistingProject: {},
	ActionRunQuery:               {},
	ActionDescribeTable:          {},
}

// RequiredTopics returns the topics required for kind, and whether the
// action kind is known at all.
func RequiredTopics(kind ActionKind) ([]Topic, bool) {
	topics, ok := knowledgeRequirements[kind]
	if !ok {
		return nil, false
	}
	// Copy so callers can't mutate the table.
	out := make([]Topic, len(topics))
	copy(out, topics)
	return out, true
}

// KnownActions returns every action kind in the requirement table,
// sorted for stable presentation.
func KnownActions() []ActionKind {
	kinds := make([]ActionKind, 0, len(knowledgeRequirements))
	for kind := range knowledgeRequirements {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
