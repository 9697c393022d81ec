// Package project analyzes existing pipeline projects offline — no
// warehouse access, read-only filesystem scanning.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// projectFile is the root configuration file every project must have.
const projectFile = "pb_project.yaml"

// Config is the subset of pb_project.yaml the analyzer cares about.
type Config struct {
	Name          string   `yaml:"name"`
	SchemaVersion int      `yaml:"schema_version"`
	Connection    string   `yaml:"connection"`
	ModelFolders  []string `yaml:"model_folders"`
}

// Analysis is the structured report for one project directory.
type Analysis struct {
	ProjectPath  string              `json:"project_path"`
	ProjectFound bool                `json:"project_found"`
	Config       Config              `json:"config"`
	YAMLFiles    map[string][]string `json:"yaml_files"`
	Errors       []string            `json:"errors"`
	Warnings     []string            `json:"warnings"`
	Status       string              `json:"status"`
}

// Analyze reads pb_project.yaml and scans the declared model folders
// for YAML files. It never fails hard: problems are collected into
// Errors/Warnings and reflected in Status (success, warning, error).
func Analyze(path string) *Analysis {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	a := &Analysis{
		ProjectPath: abs,
		YAMLFiles:   make(map[string][]string),
	}

	data, err := os.ReadFile(filepath.Join(abs, projectFile))
	if err != nil {
		a.Errors = append(a.Errors, fmt.Sprintf("%s not found in %s", projectFile, abs))
		a.Status = "error"
		return a
	}
	a.ProjectFound = true

	if err := yaml.Unmarshal(data, &a.Config); err != nil {
		a.Errors = append(a.Errors, fmt.Sprintf("invalid %s: %v", projectFile, err))
		a.Status = "error"
		return a
	}

	if a.Config.Connection == "" {
		a.Warnings = append(a.Warnings, "no connection configured in pb_project.yaml")
	}
	if len(a.Config.ModelFolders) == 0 {
		a.Warnings = append(a.Warnings, "no model_folders declared in pb_project.yaml")
	}

	for _, folder := range a.Config.ModelFolders {
		dir := filepath.Join(abs, folder)
		files, err := scanYAMLFiles(dir)
		if err != nil {
			a.Warnings = append(a.Warnings, fmt.Sprintf("model folder %q: %v", folder, err))
			continue
		}
		a.YAMLFiles[folder] = files
		if len(files) == 0 {
			a.Warnings = append(a.Warnings, fmt.Sprintf("model folder %q contains no YAML files", folder))
		}
	}

	switch {
	case len(a.Errors) > 0:
		a.Status = "error"
	case len(a.Warnings) > 0:
		a.Status = "warning"
	default:
		a.Status = "success"
	}
	return a
}

// scanYAMLFiles lists .yaml/.yml files directly inside dir, skipping
// hidden files and the output/migrations subtrees entirely.
func scanYAMLFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, name)
		}
	}
	sort.Strings(files)
	return files, nil
}
