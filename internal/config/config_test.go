package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	t.Setenv("LIFEAI_CONFIG_DIR", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pipeline.MinMessageCount != DefaultMinMessageCount {
		t.Errorf("MinMessageCount=%d", cfg.Pipeline.MinMessageCount)
	}
	if cfg.Pipeline.RecentCount != DefaultRecentCount {
		t.Errorf("RecentCount=%d", cfg.Pipeline.RecentCount)
	}
	if cfg.Pipeline.WindowMinutes != DefaultWindowMinutes {
		t.Errorf("WindowMinutes=%d", cfg.Pipeline.WindowMinutes)
	}
	if !cfg.Privacy.AnonymizeEnabled() {
		t.Error("anonymization should default to enabled")
	}
}

func TestLoad_FileOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LIFEAI_CONFIG_DIR", dir)

	yaml := `export_dir: /exports
output_dir: /out
pipeline:
  min_message_count: 5
  recent_count: 20
privacy:
  anonymize: false
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ExportDir != "/exports" || cfg.OutputDir != "/out" {
		t.Errorf("dirs: %q %q", cfg.ExportDir, cfg.OutputDir)
	}
	if cfg.Pipeline.MinMessageCount != 5 {
		t.Errorf("MinMessageCount=%d", cfg.Pipeline.MinMessageCount)
	}
	if cfg.Pipeline.RecentCount != 20 {
		t.Errorf("RecentCount=%d", cfg.Pipeline.RecentCount)
	}
	// unset field still defaulted
	if cfg.Pipeline.WindowMinutes != DefaultWindowMinutes {
		t.Errorf("WindowMinutes=%d", cfg.Pipeline.WindowMinutes)
	}
	if cfg.Privacy.AnonymizeEnabled() {
		t.Error("anonymize: false not respected")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("LIFEAI_CONFIG_DIR", t.TempDir())

	cfg := &Config{ExportDir: "/exports"}
	cfg.applyDefaults()
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ExportDir != "/exports" {
		t.Errorf("ExportDir=%q", loaded.ExportDir)
	}
}

func TestContactsPathFallback(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LIFEAI_CONFIG_DIR", dir)

	cfg := &Config{}
	got, err := cfg.ContactsPath()
	if err != nil {
		t.Fatalf("ContactsPath: %v", err)
	}
	if got != filepath.Join(dir, "contacts.yaml") {
		t.Errorf("got %q", got)
	}

	cfg.ContactsFile = "/elsewhere/roster.yaml"
	got, err = cfg.ContactsPath()
	if err != nil {
		t.Fatalf("ContactsPath: %v", err)
	}
	if got != "/elsewhere/roster.yaml" {
		t.Errorf("got %q", got)
	}
}

func TestDataDirOverride(t *testing.T) {
	t.Setenv("LIFEAI_DATA_DIR", "/custom/data")
	got, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir: %v", err)
	}
	if got != "/custom/data" {
		t.Errorf("got %q", got)
	}
}
