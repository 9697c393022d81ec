package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// EntityOutputs lists the tables a run materializes for one entity: the
// feature views (one per served id type, same features in each) and the
// id stitcher they are keyed by.
type EntityOutputs struct {
	FeatureViews []string `json:"feature_views"`
	IDStitcher   string   `json:"id_stitcher"`
}

// OutputDetails summarizes where a project's run outputs land. The
// connection name comes from pb_project.yaml; resolving it to an output
// schema is the caller's job because that mapping lives in the site
// config, not in the project.
type OutputDetails struct {
	Connection string                   `json:"connection"`
	Entities   map[string]EntityOutputs `json:"entities"`
	Warnings   []string                 `json:"warnings"`
}

// modelsFile is the subset of a model YAML file needed to locate run
// outputs.
type modelsFile struct {
	Models []struct {
		Name      string `yaml:"name"`
		ModelType string `yaml:"model_type"`
		ModelSpec struct {
			EntityKey string `yaml:"entity_key"`
		} `yaml:"model_spec"`
	} `yaml:"models"`
}

// Outputs reads pb_project.yaml and the model files in its declared
// model folders, and groups the declared feature views and id stitchers
// by entity. Unlike Analyze this fails hard when the project file is
// missing or unparsable: there is nothing useful to report without it.
func Outputs(path string) (*OutputDetails, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	data, err := os.ReadFile(filepath.Join(abs, projectFile))
	if err != nil {
		return nil, fmt.Errorf("%s not found in %s", projectFile, abs)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", projectFile, err)
	}

	d := &OutputDetails{
		Connection: cfg.Connection,
		Entities:   make(map[string]EntityOutputs),
	}
	if len(cfg.ModelFolders) == 0 {
		d.Warnings = append(d.Warnings, "no model_folders declared in pb_project.yaml")
	}

	for _, folder := range cfg.ModelFolders {
		dir := filepath.Join(abs, folder)
		files, err := scanYAMLFiles(dir)
		if err != nil {
			d.Warnings = append(d.Warnings, fmt.Sprintf("model folder %q: %v", folder, err))
			continue
		}
		for _, file := range files {
			if err := d.collectModels(filepath.Join(dir, file)); err != nil {
				d.Warnings = append(d.Warnings, fmt.Sprintf("%s: %v", filepath.Join(folder, file), err))
			}
		}
	}

	if len(d.Entities) == 0 {
		d.Warnings = append(d.Warnings, "no feature_view or id_stitcher models found; has the project declared any models yet?")
	}
	for entity, out := range d.Entities {
		sort.Strings(out.FeatureViews)
		d.Entities[entity] = out
	}
	return d, nil
}

// collectModels parses one model file and folds its feature views and
// id stitchers into the per-entity map.
func (d *OutputDetails) collectModels(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var mf modelsFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	for _, m := range mf.Models {
		if m.ModelType != "feature_view" && m.ModelType != "id_stitcher" {
			continue
		}
		entity := m.ModelSpec.EntityKey
		if entity == "" {
			d.Warnings = append(d.Warnings, fmt.Sprintf("model %q has no entity_key; skipped", m.Name))
			continue
		}
		out := d.Entities[entity]
		switch m.ModelType {
		case "feature_view":
			out.FeatureViews = append(out.FeatureViews, m.Name)
		case "id_stitcher":
			// An entity keeps at most one stitcher table. A named stitcher
			// wins over the auto-generated default one.
			if out.IDStitcher == "" || strings.Contains(strings.ToLower(out.IDStitcher), "default") {
				out.IDStitcher = m.Name
			}
		}
		d.Entities[entity] = out
	}
	return nil
}
