package entities

import "time"

// TargetStatus is the outcome of one target in a release run
type TargetStatus string

// Target outcomes
const (
	StatusSuccess TargetStatus = "success"
	StatusError   TargetStatus = "error"
	StatusTimeout TargetStatus = "timeout"
	StatusSkipped TargetStatus = "skipped"
	// StatusCancelled marks a target that was interrupted while building
	StatusCancelled TargetStatus = "cancelled"
)

// TargetResult represents the outcome of a single target
type TargetResult struct {
	Target          Target        `json:"-"`
	Platform        string        `json:"platform"`
	Status          TargetStatus  `json:"status"`
	Message         string        `json:"message,omitempty"`
	Archive         string        `json:"archive,omitempty"`
	Checksum        string        `json:"checksum,omitempty"`
	CompileDuration time.Duration `json:"-"`
	TotalDuration   time.Duration `json:"-"`
	DurationSeconds float64       `json:"duration_seconds"`
}

// ReleaseReport represents the output of a release run
type ReleaseReport struct {
	Name            string         `json:"name"`
	Version         string         `json:"version"`
	TotalTargets    int            `json:"total_targets"`
	Succeeded       int            `json:"succeeded"`
	Failed          int            `json:"failed"`
	Skipped         int            `json:"skipped"`
	Cancelled       int            `json:"cancelled"`
	Results         []TargetResult `json:"results"`
	DurationSeconds float64        `json:"duration_seconds"`
}

// Record stores a result and updates the counters
func (r *ReleaseReport) Record(result TargetResult) {
	result.Platform = result.Target.String()
	result.DurationSeconds = result.TotalDuration.Seconds()

	switch result.Status {
	case StatusSuccess:
		r.Succeeded++
	case StatusError, StatusTimeout:
		r.Failed++
	case StatusSkipped:
		r.Skipped++
	case StatusCancelled:
		r.Cancelled++
	}
	r.Results = append(r.Results, result)
}

// Artifacts returns the archives of all successful targets, in result order
func (r *ReleaseReport) Artifacts() []Artifact {
	artifacts := make([]Artifact, 0, r.Succeeded)
	for _, res := range r.Results {
		if res.Status != StatusSuccess {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:     r.Name,
			Version:  r.Version,
			Target:   res.Target,
			Path:     res.Archive,
			Checksum: res.Checksum,
		})
	}
	return artifacts
}
