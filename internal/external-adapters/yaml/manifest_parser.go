// Package yaml provides YAML-based manifest parsing and repository implementations.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ochairo/xrelease/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// yamlManifest represents the raw YAML structure
type yamlManifest struct {
	Name       string      `yaml:"name"`
	Source     string      `yaml:"source"`
	Docs       []string    `yaml:"docs"`
	RequireEnv []string    `yaml:"require_env"`
	Build      yamlBuild   `yaml:"build"`
	Targets    yamlTargets `yaml:"targets"`
}

type yamlBuild struct {
	Command        string            `yaml:"command"`
	Env            map[string]string `yaml:"env"`
	TimeoutMinutes int               `yaml:"timeout_minutes"`
}

// yamlTargets keeps document order, which is the build order.
// Accepted forms:
//
//	targets:
//	  linux: [386, amd64]
//	  darwin: [amd64]
//
//	targets: [linux/386, linux/amd64, darwin/amd64]
type yamlTargets []entities.Target

// UnmarshalYAML decodes either the mapping or the list form
func (t *yamlTargets) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			osNode, archNode := node.Content[i], node.Content[i+1]

			var arches []string
			if archNode.Kind == yaml.ScalarNode {
				arches = []string{archNode.Value}
			} else if err := archNode.Decode(&arches); err != nil {
				return fmt.Errorf("line %d: architectures for %s must be a list: %w", archNode.Line, osNode.Value, err)
			}

			for _, arch := range arches {
				*t = append(*t, entities.Target{OS: osNode.Value, Arch: arch})
			}
		}
		return nil

	case yaml.SequenceNode:
		var items []string
		if err := node.Decode(&items); err != nil {
			return fmt.Errorf("line %d: targets must be os/arch strings: %w", node.Line, err)
		}
		for _, item := range items {
			osName, arch, ok := strings.Cut(item, "/")
			if !ok {
				return fmt.Errorf("line %d: target %q must have the form os/arch", node.Line, item)
			}
			*t = append(*t, entities.Target{OS: osName, Arch: arch})
		}
		return nil

	default:
		return fmt.Errorf("line %d: targets must be a mapping or a list", node.Line)
	}
}

// ManifestParser parses YAML release manifests
type ManifestParser struct{}

// NewManifestParser creates a new YAML parser
func NewManifestParser() *ManifestParser {
	return &ManifestParser{}
}

// ParseFile parses a YAML manifest file into a Manifest entity
func (p *ManifestParser) ParseFile(filePath string) (*entities.Manifest, error) {
	//nolint:gosec // G304: filePath is the manifest path given on the command line
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return p.Parse(data)
}

// Parse parses YAML bytes into a Manifest entity.
// Defaults are not applied here; unknown keys are rejected.
func (p *ManifestParser) Parse(data []byte) (*entities.Manifest, error) {
	var ym yamlManifest

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ym); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &entities.Manifest{
		Name:       ym.Name,
		Source:     ym.Source,
		Docs:       ym.Docs,
		RequireEnv: ym.RequireEnv,
		Build:      convertBuild(ym.Build),
		Targets:    []entities.Target(ym.Targets),
	}, nil
}

func convertBuild(yb yamlBuild) entities.BuildConfig {
	env := make(map[string]string, len(yb.Env))
	for k, v := range yb.Env {
		env[k] = v
	}

	return entities.BuildConfig{
		Command:        yb.Command,
		Env:            env,
		TimeoutMinutes: yb.TimeoutMinutes,
	}
}
