// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/xrelease/internal/domain/entities"
)

// ManifestRepository defines the interface for loading release manifests
type ManifestRepository interface {
	// GetManifest loads the manifest, falling back to defaults when none exists
	GetManifest(ctx context.Context) (*entities.Manifest, error)
}
