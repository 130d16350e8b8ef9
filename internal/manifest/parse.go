package manifest

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"unicode/utf8"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
)

var rawDependencyType = reflect.TypeOf(RawDependency{})

// Parse decodes manifest text into its permissive form. Every failure is a
// KindSyntax *Error; TOML errors carry the line and column. Keys are matched
// exactly, so `Version` or `[DevDependencies]` end up in UnknownKeys.
func Parse(path string, data []byte) (*RawManifest, error) {
	if !utf8.Valid(data) {
		return nil, &Error{Kind: KindSyntax, Path: path, Err: errors.New("manifest is not valid UTF-8")}
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		e := &Error{Kind: KindSyntax, Path: path, Err: err}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			e.Line, e.Column = decodeErr.Position()
			e.Detail = decodeErr.String()
		}
		return nil, e
	}

	if err := checkRequired(doc); err != nil {
		return nil, &Error{Kind: KindSyntax, Path: path, Err: err}
	}

	var raw RawManifest
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "toml",
		Result:     &raw,
		Metadata:   &md,
		DecodeHook: expandShorthand,
		MatchName:  exactName,
	})
	if err != nil {
		return nil, fmt.Errorf("creating manifest decoder: %w", err)
	}
	if err := dec.Decode(doc); err != nil {
		return nil, &Error{Kind: KindSyntax, Path: path, Err: err}
	}
	raw.UnknownKeys = md.Unused

	return &raw, nil
}

func exactName(key, field string) bool {
	return key == field
}

// expandShorthand rewrites `name = "1.2.3"` to `name = { version = "1.2.3" }`
// so both spellings decode into the same RawDependency.
func expandShorthand(from, to reflect.Type, data any) (any, error) {
	if to != rawDependencyType || from.Kind() != reflect.String {
		return data, nil
	}
	return map[string]any{"version": data}, nil
}

// checkRequired enforces the fields the schema does not mark optional.
func checkRequired(doc map[string]any) error {
	pkg, ok := doc["package"].(map[string]any)
	if !ok {
		return errors.New("missing table [package]")
	}
	if err := requireKeys(pkg, "package", "name", "version"); err != nil {
		return err
	}
	if repo, ok := pkg["repository"].(map[string]any); ok {
		if err := requireKeys(repo, "package.repository", "type", "url"); err != nil {
			return err
		}
	}

	features, ok := doc["features"].(map[string]any)
	if !ok {
		return nil
	}
	for _, name := range slices.Sorted(maps.Keys(features)) {
		table, ok := features[name].(map[string]any)
		if !ok {
			return fmt.Errorf("features.%s must be a table", name)
		}
		if err := requireKeys(table, "features."+name, "dependencies", "files"); err != nil {
			return err
		}
	}
	return nil
}

func requireKeys(table map[string]any, where string, keys ...string) error {
	for _, key := range keys {
		if _, ok := table[key]; !ok {
			return fmt.Errorf("missing field '%s' in [%s]", key, where)
		}
	}
	return nil
}
