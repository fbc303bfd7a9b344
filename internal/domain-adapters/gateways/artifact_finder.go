package gateways

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
)

// ArtifactFinder locates release archives in an output directory
type ArtifactFinder struct{}

// NewArtifactFinder creates a new artifact finder
func NewArtifactFinder() *ArtifactFinder {
	return &ArtifactFinder{}
}

// FindArchives returns the archives of name at version, sorted by path.
// Matches <name>-*-<version>.tar.gz by plain string comparison, so the
// version may contain glob metacharacters.
func (f *ArtifactFinder) FindArchives(outputDir, name, version string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Errorf("output directory does not exist: %s", outputDir)
		}
		return nil, eris.Wrapf(err, "failed to read %s", outputDir)
	}

	prefix := name + "-"
	suffix := "-" + version + ".tar.gz"

	var archives []string
	for _, entry := range entries {
		base := entry.Name()
		if !entry.Type().IsRegular() || len(base) <= len(prefix)+len(suffix) {
			continue
		}
		if strings.HasPrefix(base, prefix) && strings.HasSuffix(base, suffix) {
			archives = append(archives, filepath.Join(outputDir, base))
		}
	}

	sort.Strings(archives)
	return archives, nil
}

// FindStaging returns the staging directories among stageNames that still
// exist under outputDir, in the order given
func (f *ArtifactFinder) FindStaging(outputDir string, stageNames []string) ([]string, error) {
	var dirs []string
	for _, stageName := range stageNames {
		dir := filepath.Join(outputDir, stageName)
		info, err := os.Stat(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, eris.Wrapf(err, "failed to stat %s", dir)
		}
		if info.IsDir() {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}
