package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ochairo/xrelease/internal/domain/entities"
)

// ReleaseStatus represents the completeness of a release on disk
type ReleaseStatus string

// Release validation statuses
const (
	StatusReady               ReleaseStatus = "ready"
	StatusNoArtifacts         ReleaseStatus = "no_artifacts"
	StatusMissingTargets      ReleaseStatus = "missing_targets"
	StatusUnexpectedTargets   ReleaseStatus = "unexpected_targets"
	StatusLeftoverStagingDirs ReleaseStatus = "leftover_staging"
)

// ReleaseValidation contains the validation result for a release directory
type ReleaseValidation struct {
	Status          ReleaseStatus
	Expected        []entities.Target
	Available       []entities.Target
	Missing         []entities.Target
	Unexpected      []string
	LeftoverStaging []string
	ExpectedCount   int
	AvailableCount  int
}

// IsReady returns true if every expected archive exists and nothing else does
func (rv *ReleaseValidation) IsReady() bool {
	return rv.Status == StatusReady
}

// ErrorMessage returns a human-readable error message if not ready
func (rv *ReleaseValidation) ErrorMessage() string {
	switch rv.Status {
	case StatusReady:
		return ""
	case StatusNoArtifacts:
		return fmt.Sprintf("No archives found (expected: %d targets)", rv.ExpectedCount)
	case StatusMissingTargets:
		msg := fmt.Sprintf("Target count mismatch (expected: %d, have: %d)", rv.ExpectedCount, rv.AvailableCount)
		msg += fmt.Sprintf("\n   Missing: %s", targetsToString(rv.Missing))
		if len(rv.Unexpected) > 0 {
			msg += fmt.Sprintf("\n   Unexpected: %s", strings.Join(rv.Unexpected, ", "))
		}
		return msg
	case StatusUnexpectedTargets:
		return fmt.Sprintf("Unexpected archives found: %s", strings.Join(rv.Unexpected, ", "))
	case StatusLeftoverStagingDirs:
		return fmt.Sprintf("Staging directories left behind: %s", strings.Join(rv.LeftoverStaging, ", "))
	default:
		return "Unknown status"
	}
}

// ReleaseService checks a release directory against the manifest
type ReleaseService struct{}

// NewReleaseService creates a new release service
func NewReleaseService() *ReleaseService {
	return &ReleaseService{}
}

// ValidateRelease compares the archives found for version against the
// manifest's target table. Archive paths that do not follow
// <name>-<os>-<arch>-<version>.tar.gz are ignored.
func (s *ReleaseService) ValidateRelease(manifest *entities.Manifest, version string, archivePaths, stagingDirs []string) *ReleaseValidation {
	validation := &ReleaseValidation{
		Expected:        manifest.Targets,
		ExpectedCount:   len(manifest.Targets),
		LeftoverStaging: stagingDirs,
	}

	expectedByArchive := make(map[string]entities.Target, len(manifest.Targets))
	for _, target := range manifest.Targets {
		expectedByArchive[target.ArchiveName(manifest.Name, version)] = target
	}

	found := make(map[string]bool)
	for _, path := range archivePaths {
		basename := filepath.Base(path)
		if !s.isArchiveOf(manifest.Name, version, basename) {
			continue
		}

		if target, ok := expectedByArchive[basename]; ok {
			if !found[basename] {
				validation.Available = append(validation.Available, target)
			}
			found[basename] = true
			continue
		}
		validation.Unexpected = append(validation.Unexpected, basename)
	}
	validation.AvailableCount = len(validation.Available)

	for _, target := range manifest.Targets {
		if !found[target.ArchiveName(manifest.Name, version)] {
			validation.Missing = append(validation.Missing, target)
		}
	}

	switch {
	case validation.AvailableCount == 0 && len(validation.Unexpected) == 0:
		validation.Status = StatusNoArtifacts
	case len(validation.Missing) > 0:
		validation.Status = StatusMissingTargets
	case len(validation.Unexpected) > 0:
		validation.Status = StatusUnexpectedTargets
	case len(validation.LeftoverStaging) > 0:
		validation.Status = StatusLeftoverStagingDirs
	default:
		validation.Status = StatusReady
	}

	return validation
}

// CheckArchiveLayout checks the entry names of target's archive: everything
// sits under <tool>-<os>-<arch>/, next to the binary and every doc file.
func (s *ReleaseService) CheckArchiveLayout(manifest *entities.Manifest, target entities.Target, entries []string) error {
	root := target.StageName(manifest.Name) + "/"

	present := make(map[string]bool, len(entries))
	var stray []string
	for _, entry := range entries {
		present[entry] = true
		if !strings.HasPrefix(entry, root) {
			stray = append(stray, entry)
		}
	}

	want := []string{root + target.BinaryName(manifest.Name)}
	for _, doc := range manifest.Docs {
		want = append(want, root+filepath.Base(doc))
	}

	var missing []string
	for _, name := range want {
		if !present[name] {
			missing = append(missing, name)
		}
	}

	switch {
	case len(missing) > 0:
		return eris.Wrapf(entities.ErrPackage, "%s: missing %s", target, strings.Join(missing, ", "))
	case len(stray) > 0:
		return eris.Wrapf(entities.ErrPackage, "%s: entries outside %s: %s", target, root, strings.Join(stray, ", "))
	}
	return nil
}

// isArchiveOf reports whether basename looks like <name>-*-<version>.tar.gz
func (s *ReleaseService) isArchiveOf(name, version, basename string) bool {
	suffix := fmt.Sprintf("-%s.tar.gz", version)
	return strings.HasPrefix(basename, name+"-") && strings.HasSuffix(basename, suffix) &&
		len(basename) > len(name)+1+len(suffix)
}

func targetsToString(targets []entities.Target) string {
	strs := make([]string, len(targets))
	for i, t := range targets {
		strs[i] = t.String()
	}
	return strings.Join(strs, ", ")
}
