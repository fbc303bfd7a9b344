package entities

// Artifact represents a produced release archive
type Artifact struct {
	Name     string
	Version  string
	Target   Target
	Path     string
	Checksum string // Path of the .sha256 sidecar, empty when not generated
}
