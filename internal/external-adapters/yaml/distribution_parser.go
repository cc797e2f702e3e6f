// Package yaml provides YAML-based distribution parsing and repository implementations.
package yaml

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDistribution is returned for recipes missing required fields
var ErrInvalidDistribution = errors.New("invalid distribution")

// yamlDistribution represents the raw YAML structure
type yamlDistribution struct {
	Name               string                        `yaml:"name"`
	BaseURL            string                        `yaml:"base_url"`
	ArtifactName       string                        `yaml:"artifact_name"`
	ExtractedDirPrefix string                        `yaml:"extracted_dir_prefix"`
	ArchiveExtension   string                        `yaml:"archive_extension"`
	Platforms          map[string]yamlPlatformConfig `yaml:"platforms"`
	Signature          yamlSignature                 `yaml:"signature"`
}

type yamlPlatformConfig struct {
	RuntimeSuffix string `yaml:"runtime_suffix"`
	InstallPath   string `yaml:"install_path"`
}

type yamlSignature struct {
	Extension       string   `yaml:"extension"`
	KeyFingerprints []string `yaml:"key_fingerprints"`
}

// DistributionParser parses YAML distribution recipes
type DistributionParser struct{}

// NewDistributionParser creates a new YAML parser
func NewDistributionParser() *DistributionParser {
	return &DistributionParser{}
}

// Parse parses YAML bytes into a Distribution entity
func (p *DistributionParser) Parse(data []byte) (*entities.Distribution, error) {
	var raw yamlDistribution
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	switch {
	case raw.Name == "":
		return nil, fmt.Errorf("%w: missing name", ErrInvalidDistribution)
	case raw.BaseURL == "":
		return nil, fmt.Errorf("%w: %s: missing base_url", ErrInvalidDistribution, raw.Name)
	case raw.ExtractedDirPrefix == "":
		return nil, fmt.Errorf("%w: %s: missing extracted_dir_prefix", ErrInvalidDistribution, raw.Name)
	case len(raw.Platforms) == 0:
		return nil, fmt.Errorf("%w: %s: no platforms", ErrInvalidDistribution, raw.Name)
	}

	dist := &entities.Distribution{
		Name:               raw.Name,
		BaseURL:            strings.TrimSuffix(raw.BaseURL, "/"),
		ArtifactName:       raw.ArtifactName,
		ExtractedDirPrefix: raw.ExtractedDirPrefix,
		ArchiveExtension:   raw.ArchiveExtension,
		RuntimeSuffixes:    make(map[entities.Platform]string, len(raw.Platforms)),
		InstallPaths:       make(map[entities.Platform]string, len(raw.Platforms)),
		Signature: entities.DistributionSignature{
			Extension:       raw.Signature.Extension,
			KeyFingerprints: raw.Signature.KeyFingerprints,
		},
	}
	if dist.ArtifactName == "" {
		dist.ArtifactName = dist.Name
	}
	if dist.ArchiveExtension == "" {
		dist.ArchiveExtension = ".zip"
	}

	for name, cfg := range raw.Platforms {
		platform, err := entities.ParsePlatform(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDistribution, raw.Name, err)
		}
		if cfg.InstallPath == "" {
			return nil, fmt.Errorf("%w: %s: platform %s has no install_path", ErrInvalidDistribution, raw.Name, name)
		}
		dist.RuntimeSuffixes[platform] = cfg.RuntimeSuffix
		dist.InstallPaths[platform] = cfg.InstallPath
	}

	return dist, nil
}
