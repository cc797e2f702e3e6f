package yaml

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/entities"
	"github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces/repositories"
)

//go:embed distributions/*.yml
var embeddedDistributions embed.FS

var _ repositories.DistributionRepository = (*DistributionRepository)(nil)

// ErrDistributionNotFound is returned when no recipe exists for a name
var ErrDistributionNotFound = errors.New("distribution not found")

// DistributionRepository implements repositories.DistributionRepository over a filesystem of YAML recipes
type DistributionRepository struct {
	fsys   fs.FS
	parser *DistributionParser
}

// NewDistributionRepository creates a repository reading <name>.yml files from the root of fsys
func NewDistributionRepository(fsys fs.FS) *DistributionRepository {
	return &DistributionRepository{
		fsys:   fsys,
		parser: NewDistributionParser(),
	}
}

// NewEmbeddedDistributionRepository creates a repository over the recipes compiled into the binary
func NewEmbeddedDistributionRepository() *DistributionRepository {
	sub, err := fs.Sub(embeddedDistributions, "distributions")
	if err != nil {
		// distributions/ is part of the embed pattern
		panic(err)
	}
	return NewDistributionRepository(sub)
}

// GetDistribution retrieves a distribution by name
func (r *DistributionRepository) GetDistribution(_ context.Context, name string) (*entities.Distribution, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: %q", ErrDistributionNotFound, name)
	}

	data, err := fs.ReadFile(r.fsys, name+".yml")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDistributionNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read distribution %s: %w", name, err)
	}

	dist, err := r.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse distribution %s: %w", name, err)
	}
	return dist, nil
}

// ListDistributions returns the names of all known distributions, sorted
func (r *DistributionRepository) ListDistributions(_ context.Context) ([]string, error) {
	entries, err := fs.ReadDir(r.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read distributions directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		// Skip non-YAML files
		if entry.IsDir() || path.Ext(entry.Name()) != ".yml" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".yml"))
	}
	sort.Strings(names)

	return names, nil
}
