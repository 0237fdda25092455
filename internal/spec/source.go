package spec

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source supplies binding specs.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]BindingSpec, error)
}

// Document is the layout of a binding spec file.
type Document struct {
	Bindings []BindingSpec `yaml:"bindings"`
}

// StaticSource serves a fixed list of specs.
type StaticSource []BindingSpec

// Name implements Source.
func (StaticSource) Name() string { return "static" }

// Load implements Source.
func (s StaticSource) Load(context.Context) ([]BindingSpec, error) {
	out := make([]BindingSpec, len(s))
	copy(out, s)
	return out, nil
}

// YAMLSource parses specs from YAML bytes.
type YAMLSource struct {
	name string
	data []byte
}

// NewYAMLSource creates a source over data. name identifies it in errors.
func NewYAMLSource(name string, data []byte) *YAMLSource {
	return &YAMLSource{name: name, data: data}
}

// Name implements Source.
func (s *YAMLSource) Name() string { return s.name }

// Load implements Source.
func (s *YAMLSource) Load(context.Context) ([]BindingSpec, error) {
	return parse(s.name, s.data)
}

// FileSource reads specs from a YAML file on every Load.
type FileSource struct {
	Path string
}

// NewFileSource creates a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name implements Source.
func (s *FileSource) Name() string { return s.Path }

// Load implements Source.
func (s *FileSource) Load(ctx context.Context) ([]BindingSpec, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read binding spec file: %w", err)
	}
	return parse(s.Path, data)
}

func parse(name string, data []byte) ([]BindingSpec, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return doc.Bindings, nil
}
