package manifest

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const minimalManifest = `
[package]
name = "app"
version = "0.1.0"
`

func TestParseShorthandMatchesTable(t *testing.T) {
	short, err := Parse("a.toml", []byte(minimalManifest+`
[dependencies]
dep = "1.2.3"
`))
	if err != nil {
		t.Fatalf("Parse shorthand: %v", err)
	}
	table, err := Parse("b.toml", []byte(minimalManifest+`
[dependencies]
dep = { version = "1.2.3" }
`))
	if err != nil {
		t.Fatalf("Parse table: %v", err)
	}

	if !reflect.DeepEqual(short.Dependencies, table.Dependencies) {
		t.Errorf("raw forms differ: %+v vs %+v", short.Dependencies, table.Dependencies)
	}

	a, err := short.Resolve("a.toml")
	if err != nil {
		t.Fatal(err)
	}
	b, err := table.Resolve("b.toml")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Dependencies["dep"], b.Dependencies["dep"]) {
		t.Errorf("canonical forms differ: %+v vs %+v", a.Dependencies["dep"], b.Dependencies["dep"])
	}
	if got := a.Dependencies["dep"].Source; got != (VersionSource{Version: "1.2.3"}) {
		t.Errorf("source = %#v", got)
	}
}

func TestParseFullManifest(t *testing.T) {
	raw, err := Parse("ike.toml", []byte(`
[package]
name = "app"
version = "1.0.0"
description = "demo"
files = ["src/**"]
main = "src/main.ts"
types = "types/index.d.ts"
repository = { type = "git", url = "https://example.com/app.git" }

[dependencies]
lodash = "^4.17.0"
local = { path = "../local" }
remote = { git = "https://example.com/r.git", branch = "main", features = ["fast"] }

[devDependencies]
tester = "2.0.0"

[tasks]
build = "ike build src/main.ts"

[features.web]
dependencies = { dom = "1.0.0" }
files = ["src/web.ts"]
depends_on = ["core"]

[features.core]
dependencies = {}
files = []
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if raw.Package.Repository == nil || raw.Package.Repository.URL != "https://example.com/app.git" {
		t.Errorf("repository = %+v", raw.Package.Repository)
	}
	if raw.Package.Main != "src/main.ts" || raw.Package.Types != "types/index.d.ts" {
		t.Errorf("package = %+v", raw.Package)
	}
	if got := *raw.Dependencies["local"].Path; got != "../local" {
		t.Errorf("local path = %q", got)
	}
	if got := raw.Dependencies["remote"].Features; !reflect.DeepEqual(got, []string{"fast"}) {
		t.Errorf("remote features = %v", got)
	}
	if raw.Tasks["build"] != "ike build src/main.ts" {
		t.Errorf("tasks = %v", raw.Tasks)
	}
	if got := raw.Features["web"].DependsOn; !reflect.DeepEqual(got, []string{"core"}) {
		t.Errorf("depends_on = %v", got)
	}
	if len(raw.UnknownKeys) != 0 {
		t.Errorf("unexpected unknown keys: %v", raw.UnknownKeys)
	}
}

func TestParseSyntaxErrorHasPosition(t *testing.T) {
	_, err := Parse("ike.toml", []byte("[package]\nname = \"x\"\nversion = = 1\n"))
	if err == nil {
		t.Fatal("expected syntax error")
	}

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if e.Kind != KindSyntax {
		t.Errorf("kind = %v, want syntax", e.Kind)
	}
	if e.Line != 3 {
		t.Errorf("line = %d, want 3", e.Line)
	}
	if e.Column == 0 {
		t.Error("column should be set")
	}
	if !strings.Contains(err.Error(), "ike.toml:3:") {
		t.Errorf("message should carry position: %q", err)
	}
}

func TestParseMissingRequiredFieldsAreSyntax(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"no package", `[dependencies]`, "[package]"},
		{"no name", "[package]\nversion = \"1.0.0\"\n", "'name'"},
		{"no version", "[package]\nname = \"a\"\n", "'version'"},
		{"feature without files", minimalManifest + "[features.x]\ndependencies = {}\n", "'files'"},
		{"feature without dependencies", minimalManifest + "[features.x]\nfiles = []\n", "'dependencies'"},
		{"repository without url", "[package]\nname = \"a\"\nversion = \"1\"\nrepository = { type = \"git\" }\n", "'url'"},
		{"task not a string", minimalManifest + "[tasks]\nbuild = 1\n", "tasks"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("ike.toml", []byte(tt.text))
			if err == nil {
				t.Fatal("expected error")
			}
			if KindOf(err) != KindSyntax {
				t.Errorf("kind = %v, want syntax (%v)", KindOf(err), err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestParseRejectsInvalidUTF8(t *testing.T) {
	_, err := Parse("ike.toml", []byte("[package]\nname = \"\xff\"\n"))
	if KindOf(err) != KindSyntax {
		t.Errorf("expected syntax error, got %v", err)
	}
}

func TestParseCollectsUnknownKeys(t *testing.T) {
	raw, err := Parse("ike.toml", []byte(minimalManifest+"homepage = \"https://example.com\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(raw.UnknownKeys) != 1 || !strings.Contains(raw.UnknownKeys[0], "homepage") {
		t.Errorf("unknown keys = %v", raw.UnknownKeys)
	}
}

func TestParseMatchesKeysExactly(t *testing.T) {
	raw, err := Parse("ike.toml", []byte(minimalManifest+`
[dependencies]
x = { VERSION = "1.0.0" }

[DevDependencies]
z = "2.0.0"
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if raw.Dependencies["x"].Version != nil {
		t.Error("VERSION must not be read as version")
	}
	if len(raw.DevDependencies) != 0 {
		t.Errorf("[DevDependencies] must not be read as devDependencies: %v", raw.DevDependencies)
	}
	var sawVersion, sawDev bool
	for _, key := range raw.UnknownKeys {
		sawVersion = sawVersion || strings.Contains(key, "VERSION")
		sawDev = sawDev || strings.Contains(key, "DevDependencies")
	}
	if !sawVersion || !sawDev {
		t.Errorf("unknown keys = %v, want VERSION and DevDependencies", raw.UnknownKeys)
	}

	if _, err := raw.Resolve("ike.toml"); !errors.Is(err, ErrNoSource) {
		t.Errorf("expected ErrNoSource for x, got %v", err)
	}
}
