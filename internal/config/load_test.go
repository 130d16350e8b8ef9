package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ikejs/ike/internal/structured"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// isolated points the system and user layers at files that do not exist.
func isolated(t *testing.T, projectDir string) DiscoverOptions {
	dir := t.TempDir()
	return DiscoverOptions{
		ProjectDir:       projectDir,
		SystemConfigPath: filepath.Join(dir, "system.yaml"),
		UserConfigPath:   filepath.Join(dir, "user.yaml"),
	}
}

func TestLoadDefaults(t *testing.T) {
	s, layers, err := Load(LoadOptions{Discover: isolated(t, "")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *s != Defaults() {
		t.Errorf("settings = %+v, want defaults", *s)
	}
	for _, l := range layers {
		if l.Loaded {
			t.Errorf("layer %s should not be loaded", l.Level)
		}
	}
}

func TestLoadLayerPrecedence(t *testing.T) {
	base := t.TempDir()
	sys := filepath.Join(base, "system.yaml")
	user := filepath.Join(base, "user.yaml")
	project := filepath.Join(base, "proj")

	writeConfig(t, sys, "log_level: error\nworkers: 2\nlog_format: json\n")
	writeConfig(t, user, "log_level: info\n")
	writeConfig(t, ProjectConfigPath(project), "workers: 9\n")

	s, layers, err := Load(LoadOptions{Discover: DiscoverOptions{
		ProjectDir:       project,
		SystemConfigPath: sys,
		UserConfigPath:   user,
	}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.LogLevel != "info" {
		t.Errorf("log_level = %q, want user value", s.LogLevel)
	}
	if s.Workers != 9 {
		t.Errorf("workers = %d, want project value", s.Workers)
	}
	if s.LogFormat != "json" {
		t.Errorf("log_format = %q, want system value", s.LogFormat)
	}
	if len(layers) != 3 || !layers[0].Loaded || !layers[1].Loaded || !layers[2].Loaded {
		t.Errorf("layers = %+v", layers)
	}
}

func TestLoadEnvAndOverrides(t *testing.T) {
	project := t.TempDir()
	writeConfig(t, ProjectConfigPath(project), "workers: 3\nlog_level: info\n")
	t.Setenv("IKE_WORKERS", "7")
	t.Setenv("IKE_LOG_LEVEL", "debug")

	s, _, err := Load(LoadOptions{
		Discover:  isolated(t, project),
		Overrides: map[string]any{"log_level": "error"},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Workers != 7 {
		t.Errorf("workers = %d, env should beat files", s.Workers)
	}
	if s.LogLevel != "error" {
		t.Errorf("log_level = %q, overrides should beat env", s.LogLevel)
	}
}

func TestLoadNoInheritSkipsSystemAndUser(t *testing.T) {
	base := t.TempDir()
	sys := filepath.Join(base, "system.yaml")
	writeConfig(t, sys, "workers: 2\n")

	s, layers, err := Load(LoadOptions{Discover: DiscoverOptions{
		SystemConfigPath: sys,
		NoInherit:        true,
	}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(layers) != 0 {
		t.Errorf("layers = %+v, want none", layers)
	}
	if s.Workers != Defaults().Workers {
		t.Errorf("workers = %d, system layer should be skipped", s.Workers)
	}
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	_, _, err := Load(LoadOptions{File: filepath.Join(t.TempDir(), "missing.yaml")})
	if !errors.Is(err, structured.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadMalformedLayer(t *testing.T) {
	project := t.TempDir()
	writeConfig(t, ProjectConfigPath(project), "workers: [\n")

	_, layers, err := Load(LoadOptions{Discover: isolated(t, project)})
	if err == nil {
		t.Fatal("expected error")
	}
	var de *structured.DecodeError
	if !errors.As(err, &de) {
		t.Errorf("expected decode error, got %v", err)
	}
	if last := layers[len(layers)-1]; last.Err == nil || last.Loaded {
		t.Errorf("project layer = %+v", last)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	project := t.TempDir()
	writeConfig(t, ProjectConfigPath(project), "log_level: loud\nworkers: 0\n")

	_, _, err := Load(LoadOptions{Discover: isolated(t, project)})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("errors = %v", ve.Errors)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		want     string
	}{
		{"defaults", Defaults(), ""},
		{"bad level", Settings{LogLevel: "verbose", LogFormat: "text", Workers: 1}, "log_level"},
		{"bad format", Settings{LogLevel: "info", LogFormat: "xml", Workers: 1}, "log_format"},
		{"no workers", Settings{LogLevel: "info", LogFormat: "text", Workers: 0}, "workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(&tt.settings)
			if tt.want == "" {
				if len(errs) != 0 {
					t.Errorf("unexpected errors: %v", errs)
				}
				return
			}
			if !containsSubstring(errs, tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, errs)
			}
		})
	}
}

func TestValidationErrorFormat(t *testing.T) {
	err := &ValidationError{Errors: []string{"error one", "error two"}}
	msg := err.Error()
	if !strings.Contains(msg, "error one") || !strings.Contains(msg, "error two") {
		t.Errorf("error message missing content: %s", msg)
	}
}

func containsSubstring(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}
