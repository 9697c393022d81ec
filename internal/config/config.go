// Package config loads runtime settings from the environment and the
// site configuration file that holds warehouse connection definitions.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Settings holds everything configurable via environment variables.
type Settings struct {
	// DocsAPIURL is the base URL of the documentation retrieval service.
	DocsAPIURL string `env:"PIPEWARDEN_DOCS_URL" envDefault:"https://docs-retrieval.pipewarden.dev"`
	// DocsAPIToken authorizes retrieval requests; empty means anonymous.
	DocsAPIToken string `env:"PIPEWARDEN_DOCS_TOKEN"`

	// AnalyticsWriteKey enables usage tracking when set.
	AnalyticsWriteKey string `env:"PIPEWARDEN_ANALYTICS_WRITE_KEY"`
	// AnalyticsDataPlaneURL is where track events are posted.
	AnalyticsDataPlaneURL string `env:"PIPEWARDEN_ANALYTICS_DATA_PLANE"`

	// SiteConfigPath points at the warehouse connections file. Defaults
	// to ~/.pipewarden/siteconfig.yaml.
	SiteConfigPath string `env:"PIPEWARDEN_SITE_CONFIG"`
}

// Load parses Settings from the environment and fills defaults that
// depend on the home directory.
func Load() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.SiteConfigPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Settings{}, fmt.Errorf("resolve home dir: %w", err)
		}
		s.SiteConfigPath = filepath.Join(home, ".pipewarden", "siteconfig.yaml")
	}
	return s, nil
}

// Connection is one warehouse connection definition from the site
// config. The DSN is engine-specific and treated as opaque here.
// OutputSchema is where pipeline runs over this connection materialize
// their tables; it is not necessarily the schema the DSN points at.
type Connection struct {
	Type         string `yaml:"type"`
	DSN          string `yaml:"dsn"`
	OutputSchema string `yaml:"output_schema"`
}

// SiteConfig is the on-disk connections file:
//
//	connections:
//	  snowflake_prod:
//	    type: sqlite
//	    dsn: /data/prod.db
//	    output_schema: profiles_output
type SiteConfig struct {
	Connections map[string]Connection `yaml:"connections"`
}

// LoadSiteConfig reads and parses the connections file. A missing file
// is not an error — it yields an empty config, the same as having no
// connections defined yet.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &SiteConfig{Connections: map[string]Connection{}}, nil
		}
		return nil, fmt.Errorf("read site config %s: %w", path, err)
	}

	var sc SiteConfig
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse site config %s: %w", path, err)
	}
	if sc.Connections == nil {
		sc.Connections = map[string]Connection{}
	}
	return &sc, nil
}

// ConnectionNames returns the configured connection names, unordered.
func (sc *SiteConfig) ConnectionNames() []string {
	names := make([]string, 0, len(sc.Connections))
	for name := range sc.Connections {
		names = append(names, name)
	}
	return names
}
