package yaml

import (
	"context"
	"fmt"
	"os"

	"github.com/ochairo/xrelease/internal/domain/entities"
)

// ManifestRepository implements repositories.ManifestRepository using a YAML file
type ManifestRepository struct {
	path        string
	defaultName string
	parser      *ManifestParser
}

// NewManifestRepository creates a new YAML-based manifest repository.
// defaultName is used when the file is missing or does not set a name.
func NewManifestRepository(path, defaultName string) *ManifestRepository {
	return &ManifestRepository{
		path:        path,
		defaultName: defaultName,
		parser:      NewManifestParser(),
	}
}

// GetManifest loads the manifest file, or the built-in defaults when it does not exist
func (r *ManifestRepository) GetManifest(_ context.Context) (*entities.Manifest, error) {
	var m *entities.Manifest

	if _, err := os.Stat(r.path); os.IsNotExist(err) {
		m = entities.DefaultManifest(r.defaultName)
	} else {
		m, err = r.parser.ParseFile(r.path)
		if err != nil {
			return nil, err
		}
		if m.Name == "" {
			m.Name = r.defaultName
		}
		m.ApplyDefaults()
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", r.path, err)
	}

	return m, nil
}
