// Package entities defines core domain models and data structures.
package entities

import "fmt"

// Target is one (operating system, architecture) pair a binary is compiled for
type Target struct {
	OS   string
	Arch string
}

// String renders the target the way the Go toolchain names it (os/arch)
func (t Target) String() string {
	return t.OS + "/" + t.Arch
}

// StageName returns the staging directory name: <tool>-<os>-<arch>
func (t Target) StageName(tool string) string {
	return fmt.Sprintf("%s-%s-%s", tool, t.OS, t.Arch)
}

// ArchiveName returns the release archive name: <tool>-<os>-<arch>-<version>.tar.gz
func (t Target) ArchiveName(tool, version string) string {
	return fmt.Sprintf("%s-%s.tar.gz", t.StageName(tool), version)
}

// BinaryName returns the file name the compiler produces for this target
func (t Target) BinaryName(tool string) string {
	if t.OS == "windows" {
		return tool + ".exe"
	}
	return tool
}

// Env returns the per-invocation environment that selects this target
func (t Target) Env() map[string]string {
	return map[string]string{
		"GOOS":   t.OS,
		"GOARCH": t.Arch,
	}
}

// DefaultTargets is the release matrix used when no manifest defines one.
// Order matters: targets are built in this order.
var DefaultTargets = []Target{
	{OS: "linux", Arch: "386"},
	{OS: "linux", Arch: "amd64"},
	{OS: "linux", Arch: "arm"},
	{OS: "darwin", Arch: "amd64"},
	{OS: "darwin", Arch: "386"},
}
