package entities

import (
	"fmt"
	"strings"
)

// Default manifest values
const (
	DefaultBuildCommand = "go build"
	DefaultDocFile      = "README.rst"
	DefaultRequiredEnv  = "GOPATH"
)

// Manifest describes what gets released: one program and its target matrix
type Manifest struct {
	Name       string
	Source     string
	Docs       []string
	RequireEnv []string
	Build      BuildConfig
	Targets    []Target
}

// BuildConfig describes how the compiler is invoked
type BuildConfig struct {
	Command        string            // e.g., "go build"
	Env            map[string]string // Extra environment for the compiler child process
	TimeoutMinutes int               // 0 means no timeout
}

// DefaultManifest returns the manifest used when no release file exists
func DefaultManifest(name string) *Manifest {
	m := &Manifest{Name: name}
	m.ApplyDefaults()
	return m
}

// ApplyDefaults fills in every field left empty
func (m *Manifest) ApplyDefaults() {
	if m.Source == "" && m.Name != "" {
		m.Source = m.Name + ".go"
	}
	if m.Docs == nil {
		m.Docs = []string{DefaultDocFile}
	}
	if m.RequireEnv == nil {
		m.RequireEnv = []string{DefaultRequiredEnv}
	}
	if strings.TrimSpace(m.Build.Command) == "" {
		m.Build.Command = DefaultBuildCommand
	}
	if len(m.Targets) == 0 {
		m.Targets = append([]Target(nil), DefaultTargets...)
	}
}

// Validate checks the manifest is usable for a release run
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("manifest must have a name")
	}
	if strings.ContainsAny(m.Name, `/\`) {
		return fmt.Errorf("manifest name %q must not contain path separators", m.Name)
	}
	if m.Source == "" {
		return fmt.Errorf("manifest must have a source")
	}
	if len(m.Targets) == 0 {
		return fmt.Errorf("manifest must define at least one target")
	}
	if m.Build.TimeoutMinutes < 0 {
		return fmt.Errorf("build timeout must not be negative")
	}

	seen := make(map[Target]bool, len(m.Targets))
	for _, t := range m.Targets {
		if t.OS == "" || t.Arch == "" {
			return fmt.Errorf("target %q is missing an operating system or architecture", t.String())
		}
		if seen[t] {
			return fmt.Errorf("duplicate target %s", t)
		}
		seen[t] = true
	}

	return nil
}

// StageNames returns the staging directory name of every target, in table order
func (m *Manifest) StageNames() []string {
	names := make([]string, len(m.Targets))
	for i, t := range m.Targets {
		names[i] = t.StageName(m.Name)
	}
	return names
}
