// Package structured reads configuration files of any supported format into
// Go values. The format is chosen by file extension.
package structured

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ikejs/ike/internal/fspath"
	"github.com/ikejs/ike/internal/sandbox"
)

// Format identifies a structured text format.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrNotFound is returned when the file does not exist, so callers can offer
// to create a default one.
var ErrNotFound = errors.New("file not found")

// DecodeError reports a file that exists but could not be decoded.
type DecodeError struct {
	Path   string
	Format Format
	Msg    string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("decoding %s: %s", e.Path, e.Msg)
	}
	return fmt.Sprintf("decoding %s as %s: %s", e.Path, e.Format, e.Msg)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
}

// Read decodes the file at path into a T using a default accessor.
func Read[T any](path string) (T, error) {
	return ReadWith[T](sandbox.New(), path)
}

// ReadWith decodes the file at path into a T, reading through acc.
func ReadWith[T any](acc *sandbox.Accessor, path string) (T, error) {
	var out T

	format, err := FormatOf(path)
	if err != nil {
		return out, &DecodeError{Path: path, Msg: err.Error(), Err: err}
	}

	data, err := acc.ReadFile(path)
	if err != nil {
		if errors.Is(err, fspath.ErrNotFound) {
			return out, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return out, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := Decode(format, data, &out); err != nil {
		return out, &DecodeError{Path: path, Format: format, Msg: err.Error(), Err: err}
	}
	return out, nil
}

// Decode unmarshals UTF-8 text in the given format into v.
func Decode(format Format, data []byte, v any) error {
	if !utf8.Valid(data) {
		return errors.New("content is not valid UTF-8")
	}

	switch format {
	case FormatTOML:
		return toml.Unmarshal(data, v)
	case FormatYAML:
		return yaml.Unmarshal(data, v)
	case FormatJSON:
		return json.Unmarshal(data, v)
	}
	return fmt.Errorf("unsupported format %q", format)
}
