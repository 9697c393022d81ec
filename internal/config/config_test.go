package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// t.Setenv registers the restore; the vars must be absent, not empty.
	for _, key := range []string{"PIPEWARDEN_DOCS_URL", "PIPEWARDEN_SITE_CONFIG"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.DocsAPIURL != "https://docs-retrieval.pipewarden.dev" {
		t.Errorf("DocsAPIURL = %q", s.DocsAPIURL)
	}
	if s.SiteConfigPath == "" {
		t.Error("SiteConfigPath not defaulted")
	}
	if filepath.Base(s.SiteConfigPath) != "siteconfig.yaml" {
		t.Errorf("SiteConfigPath = %q, want .../siteconfig.yaml", s.SiteConfigPath)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PIPEWARDEN_DOCS_URL", "http://localhost:9000")
	t.Setenv("PIPEWARDEN_DOCS_TOKEN", "tok")
	t.Setenv("PIPEWARDEN_SITE_CONFIG", "/tmp/site.yaml")

	s, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.DocsAPIURL != "http://localhost:9000" || s.DocsAPIToken != "tok" {
		t.Errorf("docs settings = %q / %q", s.DocsAPIURL, s.DocsAPIToken)
	}
	if s.SiteConfigPath != "/tmp/site.yaml" {
		t.Errorf("SiteConfigPath = %q", s.SiteConfigPath)
	}
}

func TestLoadSiteConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siteconfig.yaml")
	content := `connections:
  events_prod:
    type: sqlite
    dsn: /data/events.db
  scratch:
    type: sqlite
    dsn: ":memory:"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	sc, err := LoadSiteConfig(path)
	if err != nil {
		t.Fatalf("LoadSiteConfig: %v", err)
	}
	if len(sc.Connections) != 2 {
		t.Fatalf("connections = %d, want 2", len(sc.Connections))
	}
	conn := sc.Connections["events_prod"]
	if conn.Type != "sqlite" || conn.DSN != "/data/events.db" {
		t.Errorf("events_prod = %+v", conn)
	}
}

func TestLoadSiteConfig_Missing(t *testing.T) {
	sc, err := LoadSiteConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if len(sc.Connections) != 0 {
		t.Errorf("connections = %d, want 0", len(sc.Connections))
	}
}

func TestLoadSiteConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siteconfig.yaml")
	if err := os.WriteFile(path, []byte("connections: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSiteConfig(path); err == nil {
		t.Error("invalid YAML parsed without error")
	}
}
