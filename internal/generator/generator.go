// Package generator renders pipeline project configuration files. It is
// pure text generation: no filesystem writes, no warehouse access, and
// no semantic validation of the produced configuration.
package generator

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind selects which configuration artifact to generate.
type Kind string

const (
	KindProject    Kind = "project"
	KindInputs     Kind = "inputs"
	KindModels     Kind = "models"
	KindEntityVars Kind = "entity_vars"
)

// Entity is a profiled entity (user, account, ...) with its id types.
type Entity struct {
	Name    string   `yaml:"name"`
	IDTypes []string `yaml:"id_types"`
}

// ProjectParams describes a pb_project.yaml.
type ProjectParams struct {
	Name          string   `yaml:"name"`
	SchemaVersion int      `yaml:"schema_version"`
	Connection    string   `yaml:"connection"`
	ModelFolders  []string `yaml:"model_folders"`
	Entities      []Entity `yaml:"entities"`
}

// IDMapping binds a source column to an entity id type.
type IDMapping struct {
	Select string `yaml:"select"`
	Type   string `yaml:"type"`
	Entity string `yaml:"entity"`
}

// Input is one source table declaration for inputs.yaml.
type Input struct {
	Name          string      `yaml:"name"`
	Table         string      `yaml:"table"`
	OccurredAtCol string      `yaml:"occurred_at_col,omitempty"`
	IDs           []IDMapping `yaml:"ids"`
}

// InputsParams describes an inputs.yaml.
type InputsParams struct {
	Inputs []Input
}

// EntityVar is one derived feature. Select may span multiple lines;
// multi-line SQL is emitted as a YAML block scalar.
type EntityVar struct {
	Name   string `yaml:"name"`
	Select string `yaml:"select"`
	From   string `yaml:"from,omitempty"`
	Where  string `yaml:"where,omitempty"`
}

// VarGroup collects entity vars under one entity key.
type VarGroup struct {
	Name      string      `yaml:"name"`
	EntityKey string      `yaml:"entity_key"`
	Vars      []EntityVar `yaml:"vars"`
}

// Model is a model declaration for the models file.
type Model struct {
	Name      string    `yaml:"name"`
	ModelType string    `yaml:"model_type"`
	ModelSpec ModelSpec `yaml:"model_spec"`
}

// ModelSpec carries the entity binding of a model.
type ModelSpec struct {
	EntityKey    string   `yaml:"entity_key"`
	ValidityTime string   `yaml:"validity_time,omitempty"`
	EdgeSources  []string `yaml:"edge_sources,omitempty"`
}

// ModelsParams describes a models file (profiles.yaml).
type ModelsParams struct {
	Models    []Model
	VarGroups []VarGroup
}

// EntityVarsParams describes a standalone entity-vars fragment to merge
// into an existing var group.
type EntityVarsParams struct {
	Vars []EntityVar
}

// Generate renders the artifact of the given kind as YAML text. It is
// deterministic and side-effect-free. The params value must match the
// kind: ProjectParams, InputsParams, ModelsParams or EntityVarsParams.
func Generate(kind Kind, params any) (string, error) {
	switch kind {
	case KindProject:
		p, ok := params.(ProjectParams)
		if !ok {
			return "", fmt.Errorf("generator: kind %s wants ProjectParams, got %T", kind, params)
		}
		return marshal(p)

	case KindInputs:
		p, ok := params.(InputsParams)
		if !ok {
			return "", fmt.Errorf("generator: kind %s wants InputsParams, got %T", kind, params)
		}
		doc := struct {
			Inputs []inputEntry `yaml:"inputs"`
		}{}
		for _, in := range p.Inputs {
			doc.Inputs = append(doc.Inputs, inputEntry{Name: in.Name, AppDefaults: appDefaults{
				Table:         in.Table,
				OccurredAtCol: in.OccurredAtCol,
				IDs:           in.IDs,
			}})
		}
		return marshal(doc)

	case KindModels:
		p, ok := params.(ModelsParams)
		if !ok {
			return "", fmt.Errorf("generator: kind %s wants ModelsParams, got %T", kind, params)
		}
		doc := struct {
			Models    []Model         `yaml:"models"`
			VarGroups []varGroupEntry `yaml:"var_groups,omitempty"`
		}{Models: p.Models}
		for _, g := range p.VarGroups {
			doc.VarGroups = append(doc.VarGroups, newVarGroupEntry(g))
		}
		return marshal(doc)

	case KindEntityVars:
		p, ok := params.(EntityVarsParams)
		if !ok {
			return "", fmt.Errorf("generator: kind %s wants EntityVarsParams, got %T", kind, params)
		}
		doc := struct {
			Vars []entityVarEntry `yaml:"vars"`
		}{}
		for _, v := range p.Vars {
			doc.Vars = append(doc.Vars, entityVarEntry{EntityVar: v})
		}
		return marshal(doc)

	default:
		return "", fmt.Errorf("generator: unknown kind %q", kind)
	}
}

// inputEntry nests the source details under app_defaults, matching the
// inputs.yaml file shape.
type inputEntry struct {
	Name        string      `yaml:"name"`
	AppDefaults appDefaults `yaml:"app_defaults"`
}

type appDefaults struct {
	Table         string      `yaml:"table"`
	OccurredAtCol string      `yaml:"occurred_at_col,omitempty"`
	IDs           []IDMapping `yaml:"ids"`
}

// entityVarEntry wraps each var in an entity_var mapping node.
type entityVarEntry struct {
	EntityVar EntityVar `yaml:"entity_var"`
}

type varGroupEntry struct {
	Name      string           `yaml:"name"`
	EntityKey string           `yaml:"entity_key"`
	Vars      []entityVarEntry `yaml:"vars"`
}

func newVarGroupEntry(g VarGroup) varGroupEntry {
	e := varGroupEntry{Name: g.Name, EntityKey: g.EntityKey}
	for _, v := range g.Vars {
		e.Vars = append(e.Vars, entityVarEntry{EntityVar: v})
	}
	return e
}

func marshal(doc any) (string, error) {
	out, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("generator: marshal: %w", err)
	}
	return string(out), nil
}
