package gateways

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/ochairo/xrelease/internal/domain/entities"
)

// Stager manages staging directories under the output directory
type Stager struct{}

// NewStager creates a new stager
func NewStager() *Stager {
	return &Stager{}
}

// Create makes the staging directory. Parents are created as needed but
// the leaf must not exist yet: a leftover staging directory from an
// earlier run is an error.
func (s *Stager) Create(dir string) error {
	if err := os.MkdirAll(filepath.Dir(dir), 0750); err != nil {
		return eris.Wrapf(entities.ErrStage, "cannot create %s: %v", filepath.Dir(dir), err)
	}
	if err := os.Mkdir(dir, 0750); err != nil {
		if os.IsExist(err) {
			return eris.Wrapf(entities.ErrStage, "staging directory %s already exists", dir)
		}
		return eris.Wrapf(entities.ErrStage, "cannot create %s: %v", dir, err)
	}
	return nil
}

// Scratch creates a private temporary directory for compiler output
func (s *Stager) Scratch(pattern string) (string, error) {
	dir, err := os.MkdirTemp("", pattern)
	if err != nil {
		return "", eris.Wrap(err, "failed to create scratch directory")
	}
	return dir, nil
}

// Move moves src into dstDir, keeping its base name and mode.
// Falls back to copy and remove when rename fails (e.g. across devices).
func (s *Stager) Move(src, dstDir string) (string, error) {
	dst := filepath.Join(dstDir, filepath.Base(src))
	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}

	if _, err := s.Copy(src, dstDir); err != nil {
		return "", err
	}
	if err := os.Remove(src); err != nil {
		return "", eris.Wrapf(entities.ErrStage, "cannot remove %s after copy: %v", src, err)
	}
	return dst, nil
}

// Copy copies the file src into dstDir, keeping its base name and mode
func (s *Stager) Copy(src, dstDir string) (string, error) {
	dst := filepath.Join(dstDir, filepath.Base(src))

	//nolint:gosec // G304: src is a build output or a documentation file from the manifest
	in, err := os.Open(src)
	if err != nil {
		return "", eris.Wrapf(entities.ErrStage, "cannot open %s: %v", src, err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", eris.Wrapf(entities.ErrStage, "cannot stat %s: %v", src, err)
	}
	if info.IsDir() {
		return "", eris.Wrapf(entities.ErrStage, "%s is a directory", src)
	}

	//nolint:gosec // G304: dst is inside the staging directory
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return "", eris.Wrapf(entities.ErrStage, "cannot create %s: %v", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		//nolint:errcheck // Already returning the copy error
		out.Close()
		return "", eris.Wrapf(entities.ErrStage, "cannot copy %s: %v", src, err)
	}
	if err := out.Close(); err != nil {
		return "", eris.Wrapf(entities.ErrStage, "cannot write %s: %v", dst, err)
	}

	return dst, nil
}

// Remove deletes dir recursively
func (s *Stager) Remove(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return eris.Wrapf(entities.ErrStage, "cannot remove %s: %v", dir, err)
	}
	return nil
}
