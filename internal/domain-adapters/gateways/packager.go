package gateways

import (
	"archive/tar"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/rotisserie/eris"

	"github.com/ochairo/xrelease/internal/domain/entities"
)

// Packager packs staging directories into gzip-compressed tar archives
type Packager struct{}

// NewPackager creates a new packager
func NewPackager() *Packager {
	return &Packager{}
}

// Pack archives stageDir into archivePath. Entries are rooted at the
// staging directory's base name, so extracting the archive recreates
// <tool>-<os>-<arch>/ with the binary and docs inside.
// The archive is written to a temporary file first and renamed into
// place; a failed pack never leaves a truncated archive behind.
func (p *Packager) Pack(ctx context.Context, stageDir, archivePath string) error {
	info, err := os.Stat(stageDir)
	if err != nil {
		return eris.Wrapf(entities.ErrPackage, "staging directory %s: %v", stageDir, err)
	}
	if !info.IsDir() {
		return eris.Wrapf(entities.ErrPackage, "staging path %s is not a directory", stageDir)
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0750); err != nil {
		return eris.Wrapf(err, "failed to create output directory for %s", archivePath)
	}

	tmpPath := archivePath + ".tmp"
	if err := p.createTarball(ctx, stageDir, tmpPath); err != nil {
		//nolint:errcheck // Best effort cleanup of the partial archive
		os.Remove(tmpPath)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return eris.Wrapf(ctxErr, "packing %s", archivePath)
		}
		return eris.Wrapf(entities.ErrPackage, "%s: %v", archivePath, err)
	}

	if err := os.Rename(tmpPath, archivePath); err != nil {
		//nolint:errcheck // Best effort cleanup of the partial archive
		os.Remove(tmpPath)
		return eris.Wrapf(err, "failed to move archive into place: %s", archivePath)
	}

	return nil
}

// createTarball writes the tar.gz stream for stageDir into tarballPath
func (p *Packager) createTarball(ctx context.Context, stageDir, tarballPath string) (err error) {
	//nolint:gosec // G304: tarballPath is constructed from the output directory
	file, err := os.Create(tarballPath)
	if err != nil {
		return eris.Wrap(err, "failed to create tarball file")
	}

	gzipWriter := gzip.NewWriter(file)
	tarWriter := tar.NewWriter(gzipWriter)

	// Close in order; the first close error wins
	defer func() {
		for _, closer := range []io.Closer{tarWriter, gzipWriter, file} {
			if cerr := closer.Close(); cerr != nil && err == nil {
				err = eris.Wrap(cerr, "failed to finalize tarball")
			}
		}
	}()

	root := filepath.Dir(stageDir)

	return filepath.Walk(stageDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		var linkTarget string
		if info.Mode()&os.ModeSymlink != 0 {
			var linkErr error
			linkTarget, linkErr = os.Readlink(path)
			if linkErr != nil {
				return eris.Wrapf(linkErr, "failed to read symlink %s", path)
			}
		}

		header, err := tar.FileInfoHeader(info, linkTarget)
		if err != nil {
			return eris.Wrapf(err, "failed to create tar header for %s", path)
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return eris.Wrapf(err, "failed to get relative path for %s", path)
		}
		header.Name = filepath.ToSlash(relPath)
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tarWriter.WriteHeader(header); err != nil {
			return eris.Wrapf(err, "failed to write tar header for %s", path)
		}

		if !info.Mode().IsRegular() {
			return nil
		}

		return copyInto(tarWriter, path)
	})
}

func copyInto(w io.Writer, path string) error {
	//nolint:gosec // G304: path comes from walking the staging directory
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "failed to open %s", path)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return eris.Wrapf(err, "failed to write %s to tar", path)
	}
	return nil
}

// ListArchive returns the entry names of a tar.gz archive, in archive order
func (p *Packager) ListArchive(archivePath string) ([]string, error) {
	//nolint:gosec // G304: archivePath is user-provided for inspection
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open archive %s", archivePath)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read gzip stream of %s", archivePath)
	}
	//nolint:errcheck // Defer close on read-only stream
	defer gz.Close()

	var names []string
	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "failed to read tar entry in %s", archivePath)
		}
		names = append(names, header.Name)
	}

	return names, nil
}
