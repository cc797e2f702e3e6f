// Package repositories defines interfaces for data access layers.
package repositories

import (
	"context"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/entities"
)

// DistributionRepository defines the interface for accessing distribution descriptions
type DistributionRepository interface {
	// GetDistribution retrieves a distribution by name
	GetDistribution(ctx context.Context, name string) (*entities.Distribution, error)

	// ListDistributions returns the names of all known distributions
	ListDistributions(ctx context.Context) ([]string, error)
}
