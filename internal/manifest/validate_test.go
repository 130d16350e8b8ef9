package manifest

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func str(s string) *string { return &s }

func TestValidateDependencySources(t *testing.T) {
	tests := []struct {
		name    string
		raw     RawDependency
		want    Source
		wantErr error
	}{
		{
			name: "version",
			raw:  RawDependency{Version: str("1.2.3")},
			want: VersionSource{Version: "1.2.3"},
		},
		{
			name: "path",
			raw:  RawDependency{Path: str("../lib")},
			want: PathSource{Path: "../lib"},
		},
		{
			name: "git",
			raw:  RawDependency{Git: str("https://example.com/x.git")},
			want: GitSource{URL: "https://example.com/x.git"},
		},
		{
			name: "git branch",
			raw:  RawDependency{Git: str("g"), Branch: str("main")},
			want: GitSource{URL: "g", Branch: "main"},
		},
		{
			name: "git branch rev",
			raw:  RawDependency{Git: str("g"), Branch: str("main"), Rev: str("abc123")},
			want: GitSource{URL: "g", Branch: "main", Rev: "abc123"},
		},
		{
			name: "git rev",
			raw:  RawDependency{Git: str("g"), Rev: str("abc123")},
			want: GitSource{URL: "g", Rev: "abc123"},
		},
		{
			name: "branch ignored without git",
			raw:  RawDependency{Version: str("1.0.0"), Branch: str("main")},
			want: VersionSource{Version: "1.0.0"},
		},
		{
			name:    "nothing set",
			raw:     RawDependency{Features: []string{"x"}},
			wantErr: ErrNoSource,
		},
		{
			name:    "branch alone",
			raw:     RawDependency{Branch: str("main")},
			wantErr: ErrNoSource,
		},
		{
			name:    "version and path",
			raw:     RawDependency{Version: str("1"), Path: str("p")},
			wantErr: ErrConflictingSources,
		},
		{
			name:    "version and git",
			raw:     RawDependency{Version: str("1"), Git: str("g")},
			wantErr: ErrConflictingSources,
		},
		{
			name:    "path and git",
			raw:     RawDependency{Path: str("p"), Git: str("g")},
			wantErr: ErrConflictingSources,
		},
		{
			name:    "path and git with branch",
			raw:     RawDependency{Path: str("p"), Git: str("g"), Branch: str("main")},
			wantErr: ErrConflictingSources,
		},
		{
			name:    "path and git with rev",
			raw:     RawDependency{Path: str("p"), Git: str("g"), Rev: str("abc")},
			wantErr: ErrConflictingSources,
		},
		{
			name:    "all three kinds",
			raw:     RawDependency{Version: str("1"), Path: str("p"), Git: str("g")},
			wantErr: ErrConflictingSources,
		},
		{
			name:    "git branch rev and path",
			raw:     RawDependency{Git: str("g"), Branch: str("main"), Rev: str("abc"), Path: str("p")},
			wantErr: ErrGitRefConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, err := ValidateDependencies(TableDependencies, map[string]RawDependency{"dep": tt.raw})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				var de *DependencyError
				if !errors.As(err, &de) || de.Name != "dep" || de.Table != TableDependencies {
					t.Errorf("error should name dependency and table: %v", err)
				}
				if deps != nil {
					t.Error("no table may be returned on failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := deps["dep"].Source; got != tt.want {
				t.Errorf("source = %#v, want %#v", got, tt.want)
			}
			if deps["dep"].Name != "dep" {
				t.Errorf("name = %q", deps["dep"].Name)
			}
		})
	}
}

func TestValidateDependenciesReportsAllInOrder(t *testing.T) {
	_, err := ValidateDependencies(TableDevDependencies, map[string]RawDependency{
		"zeta":  {},
		"alpha": {Path: str("p"), Git: str("g")},
		"ok":    {Version: str("1.0.0")},
	})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Errors) != 2 {
		t.Fatalf("errors = %d, want 2: %v", len(ve.Errors), err)
	}
	if !strings.Contains(ve.Errors[0].Error(), "'alpha' in [devDependencies]") {
		t.Errorf("first error = %q", ve.Errors[0])
	}
	if !strings.Contains(ve.Errors[1].Error(), "'zeta'") {
		t.Errorf("second error = %q", ve.Errors[1])
	}
}

func TestResolveFeaturesUsesFeatureTable(t *testing.T) {
	_, err := ResolveFeatures(map[string]RawFeature{
		"web": {Dependencies: map[string]RawDependency{"dom": {}}, Files: []string{"web.ts"}},
	})
	var de *DependencyError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DependencyError, got %v", err)
	}
	if de.Table != "features.web.dependencies" {
		t.Errorf("table = %q", de.Table)
	}
}

func TestResolveFeaturesCarriesDataVerbatim(t *testing.T) {
	features, err := ResolveFeatures(map[string]RawFeature{
		"web": {
			Dependencies: map[string]RawDependency{"dom": {Version: str("1.0.0")}},
			Files:        []string{"../outside.ts", "src/web.ts"},
			DependsOn:    []string{"missing-is-fine-here"},
		},
	})
	if err != nil {
		t.Fatalf("ResolveFeatures: %v", err)
	}
	web := features["web"]
	if web.Files[0] != "../outside.ts" || web.Files[1] != "src/web.ts" {
		t.Errorf("files = %v", web.Files)
	}
	if web.DependsOn[0] != "missing-is-fine-here" {
		t.Errorf("depends_on = %v", web.DependsOn)
	}
	if web.Dependencies["dom"].Source != (VersionSource{Version: "1.0.0"}) {
		t.Errorf("dependencies = %v", web.Dependencies)
	}
}

func TestResolveAggregatesAcrossTables(t *testing.T) {
	raw := &RawManifest{
		Package:         Package{Name: "a", Version: "1"},
		Dependencies:    map[string]RawDependency{"a": {}},
		DevDependencies: map[string]RawDependency{"b": {Version: str("1"), Git: str("g")}},
		Features: map[string]RawFeature{
			"f": {Dependencies: map[string]RawDependency{"c": {}}},
		},
	}

	m, err := raw.Resolve("/p/ike.toml")
	if m != nil {
		t.Fatal("no manifest may be returned on failure")
	}
	if KindOf(err) != KindSemantic {
		t.Fatalf("kind = %v, want semantic", KindOf(err))
	}
	var ve *ValidationError
	if !errors.As(err, &ve) || len(ve.Errors) != 3 {
		t.Fatalf("expected 3 aggregated errors, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "/p/ike.toml: invalid manifest: validation failed:") {
		t.Errorf("message = %q", err)
	}
}

func TestResolveEmptyTables(t *testing.T) {
	raw := &RawManifest{Package: Package{Name: "a", Version: "1"}}
	m, err := raw.Resolve("/p/ike.toml")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Dependencies == nil || m.DevDependencies == nil || m.Features == nil || m.Tasks == nil {
		t.Error("tables should be empty, not nil")
	}
	if m.Dir() != filepath.FromSlash("/p") {
		t.Errorf("dir = %q", m.Dir())
	}
}
