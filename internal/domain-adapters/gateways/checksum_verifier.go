package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/ochairo/xrelease/internal/domain/entities"
)

// ChecksumVerifier hashes and verifies release archives
type ChecksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
func NewChecksumVerifier() *ChecksumVerifier {
	return &ChecksumVerifier{}
}

// VerifyChecksum verifies a file's SHA256 checksum. The expected
// hex digest is compared case-insensitively.
func (v *ChecksumVerifier) VerifyChecksum(ctx context.Context, filePath, expectedSum string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	actualSum, err := v.CalculateChecksum(filePath)
	if err != nil {
		return err
	}

	if !strings.EqualFold(actualSum, strings.TrimSpace(expectedSum)) {
		return eris.Wrapf(entities.ErrChecksum, "%s: expected %s, got %s", filePath, expectedSum, actualSum)
	}

	return nil
}

// CalculateChecksum calculates the SHA256 checksum of a file
func (v *ChecksumVerifier) CalculateChecksum(filePath string) (string, error) {
	//nolint:gosec // G304: File path is an archive produced by the release or given on the command line
	f, err := os.Open(filePath)
	if err != nil {
		return "", eris.Wrapf(err, "failed to open %s", filePath)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", eris.Wrapf(err, "failed to hash %s", filePath)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
