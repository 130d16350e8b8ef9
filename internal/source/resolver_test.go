package source

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ikejs/ike/internal/manifest"
)

func TestRegistryGetUnknown(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nonexistent")
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if !strings.Contains(err.Error(), "unknown source kind 'nonexistent'") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	reg.Register(manifest.KindVersion, nil)
	_, err := reg.Get(manifest.KindVersion)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func TestDefaultRegistryCoversEveryKind(t *testing.T) {
	reg := DefaultRegistry(nil, false)
	for _, kind := range []manifest.SourceKind{manifest.KindVersion, manifest.KindPath, manifest.KindGit} {
		if _, err := reg.Get(kind); err != nil {
			t.Errorf("kind %s: %v", kind, err)
		}
	}
}

func TestInspectAllSortsByName(t *testing.T) {
	reg := DefaultRegistry(nil, false)
	deps := map[string]manifest.Dependency{
		"zod":    {Name: "zod", Source: manifest.VersionSource{Version: "3.22.4"}},
		"ansi":   {Name: "ansi", Source: manifest.VersionSource{Version: "^6"}},
		"remote": {Name: "remote", Source: manifest.GitSource{URL: "https://example.com/r.git", Branch: "dev"}},
	}

	got, err := reg.InspectAll(context.Background(), deps, t.TempDir())
	if err != nil {
		t.Fatalf("InspectAll: %v", err)
	}
	var names []string
	for _, in := range got {
		names = append(names, in.Name)
	}
	if strings.Join(names, ",") != "ansi,remote,zod" {
		t.Errorf("order = %v", names)
	}
}

func TestInspectAllStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	deps := map[string]manifest.Dependency{"a": {Name: "a", Source: manifest.VersionSource{Version: "1.0.0"}}}
	if _, err := DefaultRegistry(nil, false).InspectAll(ctx, deps, ""); err == nil {
		t.Fatal("expected context error")
	}
}

func TestInspectionSummary(t *testing.T) {
	tests := []struct {
		in   Inspection
		want string
	}{
		{Inspection{Kind: manifest.KindVersion, Requirement: "1.0.0", Exact: true}, "exactly 1.0.0"},
		{Inspection{Kind: manifest.KindVersion, Requirement: "^1"}, "range ^1"},
		{Inspection{Kind: manifest.KindPath, Dir: "/x", Package: "x", PackageVersion: "0.1.0"}, "/x (x 0.1.0)"},
		{Inspection{Kind: manifest.KindPath, Dir: "/x"}, "/x (no ike.toml)"},
		{Inspection{Kind: manifest.KindGit, URL: "u", Ref: "main", Commit: "abc"}, "u @ main abc"},
	}
	for _, tt := range tests {
		if got := tt.in.Summary(); got != tt.want {
			t.Errorf("Summary() = %q, want %q", got, tt.want)
		}
	}
}

func TestSourceErrorFormat(t *testing.T) {
	err := &SourceError{
		Source:    "my-dep",
		Operation: "inspect",
		Err:       fmt.Errorf("connection refused"),
		Hint:      "check network connectivity",
	}
	msg := err.Error()
	if !strings.Contains(msg, "my-dep") {
		t.Errorf("missing source name: %s", msg)
	}
	if !strings.Contains(msg, "inspect") {
		t.Errorf("missing operation: %s", msg)
	}
	if !strings.Contains(msg, "connection refused") {
		t.Errorf("missing error detail: %s", msg)
	}
	if !strings.Contains(msg, "check network connectivity") {
		t.Errorf("missing hint: %s", msg)
	}
}

func TestSourceErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	err := &SourceError{Source: "s", Operation: "inspect", Err: inner}
	if err.Unwrap() != inner {
		t.Error("Unwrap should return inner error")
	}
}
