package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ochairo/xrelease/internal/domain/entities"
)

// SidecarExt is appended to an archive path to name its checksum file
const SidecarExt = ".sha256"

// Hasher computes and verifies SHA256 sums of files
type Hasher interface {
	CalculateChecksum(filePath string) (string, error)
	VerifyChecksum(ctx context.Context, filePath, expectedSum string) error
}

// ChecksumService writes and checks sha256sum-style sidecar files
type ChecksumService struct {
	hasher Hasher
}

// NewChecksumService creates a new checksum service
func NewChecksumService(hasher Hasher) *ChecksumService {
	return &ChecksumService{hasher: hasher}
}

// GenerateSHA256 writes <filePath>.sha256 and returns its path.
// The content is "<hex>  <basename>\n", the format sha256sum -c expects.
func (s *ChecksumService) GenerateSHA256(filePath string) (string, error) {
	hash, err := s.hasher.CalculateChecksum(filePath)
	if err != nil {
		return "", err
	}

	checksumPath := filePath + SidecarExt
	content := fmt.Sprintf("%s  %s\n", hash, filepath.Base(filePath))

	if err := os.WriteFile(checksumPath, []byte(content), 0600); err != nil {
		return "", eris.Wrapf(err, "failed to write %s", checksumPath)
	}

	return checksumPath, nil
}

// HasSidecar reports whether filePath has a checksum file next to it
func (s *ChecksumService) HasSidecar(filePath string) bool {
	_, err := os.Stat(filePath + SidecarExt)
	return err == nil
}

// VerifySHA256 checks filePath against its sidecar
func (s *ChecksumService) VerifySHA256(ctx context.Context, filePath string) error {
	expected, err := s.ReadSidecar(filePath)
	if err != nil {
		return err
	}
	return s.hasher.VerifyChecksum(ctx, filePath, expected)
}

// ReadSidecar returns the expected sum recorded for filePath
func (s *ChecksumService) ReadSidecar(filePath string) (string, error) {
	checksumPath := filePath + SidecarExt

	//nolint:gosec // G304: sidecar path derives from the archive path
	data, err := os.ReadFile(checksumPath)
	if err != nil {
		return "", eris.Wrapf(err, "failed to read %s", checksumPath)
	}

	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		return "", eris.Wrapf(entities.ErrChecksum, "malformed checksum file %s", checksumPath)
	}

	name := strings.TrimPrefix(fields[1], "*")
	if name != filepath.Base(filePath) {
		return "", eris.Wrapf(entities.ErrChecksum, "%s lists %s, not %s", checksumPath, name, filepath.Base(filePath))
	}

	return fields[0], nil
}
