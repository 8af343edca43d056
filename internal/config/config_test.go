package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResolveEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("EAGLEEYE_PATH", dir)

	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !cfg.EnvVarSet {
		t.Error("EnvVarSet = false, want true")
	}
	if cfg.Dir != dir {
		t.Errorf("Dir = %q, want %q", cfg.Dir, dir)
	}
	if cfg.DBPath != filepath.Join(dir, "operations.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Settings != DefaultSettings() {
		t.Errorf("Settings = %+v, want defaults", cfg.Settings)
	}
}

func TestResolveDefaultsToWorkingDirectory(t *testing.T) {
	t.Setenv("EAGLEEYE_PATH", "")
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.EnvVarSet {
		t.Error("EnvVarSet = true, want false")
	}
	if filepath.Base(cfg.Dir) != ".eagleeye" {
		t.Errorf("Dir = %q, want a .eagleeye directory", cfg.Dir)
	}
}

func TestSaveAndExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("EAGLEEYE_PATH", dir)

	cfg, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	ok, err := cfg.Exists()
	if err != nil || ok {
		t.Fatalf("Exists before Save = %v, %v; want false, nil", ok, err)
	}

	cfg.Settings.Storage.Backend = BackendFile
	cfg.Settings.Images.Quality = 55
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	ok, err = cfg.Exists()
	if err != nil || !ok {
		t.Fatalf("Exists after Save = %v, %v; want true, nil", ok, err)
	}

	reloaded, err := Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if reloaded.Settings != cfg.Settings {
		t.Errorf("reloaded settings = %+v, want %+v", reloaded.Settings, cfg.Settings)
	}
}

func TestLoadSettingsPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[images]\nmax_width = 800\ntimeout = \"250ms\"\n\n[export]\ndir = \"/tmp/out\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if s.Images.MaxWidth != 800 {
		t.Errorf("MaxWidth = %d, want 800", s.Images.MaxWidth)
	}
	if s.Images.MaxHeight != 400 {
		t.Errorf("MaxHeight = %d, want default 400", s.Images.MaxHeight)
	}
	if s.Storage.Backend != BackendSQLite {
		t.Errorf("Backend = %q, want default", s.Storage.Backend)
	}
	if s.Export.Dir != "/tmp/out" {
		t.Errorf("Export.Dir = %q", s.Export.Dir)
	}
	d, err := s.ImageTimeout()
	if err != nil || d != 250*time.Millisecond {
		t.Errorf("ImageTimeout = %v, %v; want 250ms", d, err)
	}
}

func TestLoadSettingsRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad backend", "[storage]\nbackend = \"redis\"\n", "storage.backend"},
		{"negative quota", "[storage]\nquota_bytes = -1\n", "quota_bytes"},
		{"quality", "[images]\nquality = 0\n", "images.quality"},
		{"zero width", "[images]\nmax_width = 0\n", "max_width"},
		{"bad timeout", "[images]\ntimeout = \"soon\"\n", "images.timeout"},
		{"syntax", "[images\n", "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadSettings(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestExportDir(t *testing.T) {
	cfg := &Config{}
	cwd, _ := os.Getwd()
	if got := cfg.ExportDir(); got != cwd {
		t.Errorf("ExportDir() = %q, want working directory %q", got, cwd)
	}

	cfg.Settings.Export.Dir = "/srv/exports"
	if got := cfg.ExportDir(); got != "/srv/exports" {
		t.Errorf("ExportDir() = %q", got)
	}
}
