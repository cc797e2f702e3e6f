// Package services implements domain logic that performs no I/O.
package services

import (
	"fmt"
	"path"
	"strings"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/entities"
)

// Fixed coordinates of the Sonar Scanner CLI distribution
const (
	DistributionName       = "sonar-scanner-cli"
	DistributionBaseURL    = "https://binaries.sonarsource.com/Distribution/sonar-scanner-cli"
	ArchiveExtension       = ".zip"
	ExtractedDirPrefix     = "sonar-scanner"
	SignatureExtension     = ".asc"
	SonarSourceFingerprint = "679F1EE92B19609DE816FDE81DB198F93525EC1A"

	LinuxInstallPath   = "/opt/sonar-scanner"
	MacOSInstallPath   = "/Users/runner/sonar-scanner"
	WindowsInstallPath = `C:\sonar-scanner`
)

// SonarScannerDistribution returns the built-in distribution description
func SonarScannerDistribution() *entities.Distribution {
	return &entities.Distribution{
		Name:               DistributionName,
		BaseURL:            DistributionBaseURL,
		ArtifactName:       DistributionName,
		ExtractedDirPrefix: ExtractedDirPrefix,
		ArchiveExtension:   ArchiveExtension,
		RuntimeSuffixes: map[entities.Platform]string{
			entities.PlatformLinux:   "-linux",
			entities.PlatformMacOS:   "-macosx",
			entities.PlatformWindows: "-windows",
		},
		InstallPaths: map[entities.Platform]string{
			entities.PlatformLinux:   LinuxInstallPath,
			entities.PlatformMacOS:   MacOSInstallPath,
			entities.PlatformWindows: WindowsInstallPath,
		},
		Signature: entities.DistributionSignature{
			Extension:       SignatureExtension,
			KeyFingerprints: []string{SonarSourceFingerprint},
		},
	}
}

// Locator translates an install request and a platform into download and install coordinates.
// It performs no I/O; every method returns the same result for the same inputs.
type Locator struct {
	dist *entities.Distribution
}

// NewLocator creates a locator for the given distribution
func NewLocator(dist *entities.Distribution) *Locator {
	return &Locator{dist: dist}
}

// NewDefaultLocator creates a locator for the built-in Sonar Scanner distribution
func NewDefaultLocator() *Locator {
	return NewLocator(SonarScannerDistribution())
}

// Distribution returns the distribution the locator resolves against
func (l *Locator) Distribution() *entities.Distribution {
	return l.dist
}

// Suffix returns the runtime variant suffix, empty unless the runtime bundle is requested
func (l *Locator) Suffix(req entities.InstallRequest, platform entities.Platform) (string, error) {
	if !req.IncludeRuntime {
		return "", nil
	}
	suffix, ok := l.dist.RuntimeSuffixes[platform]
	if !ok || !platform.Valid() {
		return "", fmt.Errorf("%w: no runtime bundle for %v", entities.ErrUnsupportedPlatform, platform)
	}
	return suffix, nil
}

// VersionWithSuffix returns the version string as it appears in archive and directory names
func (l *Locator) VersionWithSuffix(req entities.InstallRequest, platform entities.Platform) (string, error) {
	suffix, err := l.Suffix(req, platform)
	if err != nil {
		return "", err
	}
	return req.Version + suffix, nil
}

// DownloadURL returns {base}/{artifact}-{version}{suffix}{ext}
func (l *Locator) DownloadURL(req entities.InstallRequest, platform entities.Platform) (string, error) {
	version, err := l.VersionWithSuffix(req, platform)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(l.dist.BaseURL, "/")
	return fmt.Sprintf("%s/%s-%s%s", base, l.dist.ArtifactName, version, l.dist.ArchiveExtension), nil
}

// SignatureURL returns the URL of the detached signature published next to the archive
func (l *Locator) SignatureURL(req entities.InstallRequest, platform entities.Platform) (string, error) {
	url, err := l.DownloadURL(req, platform)
	if err != nil {
		return "", err
	}
	return url + l.dist.Signature.Extension, nil
}

// InstallDirectory returns the fixed install location for the platform
func (l *Locator) InstallDirectory(platform entities.Platform) (string, error) {
	dir, ok := l.dist.InstallPaths[platform]
	if !ok || !platform.Valid() {
		return "", fmt.Errorf("%w: no install directory for %v", entities.ErrUnsupportedPlatform, platform)
	}
	return dir, nil
}

// Resolve computes every coordinate needed to install req on platform
func (l *Locator) Resolve(req entities.InstallRequest, platform entities.Platform) (*entities.DownloadTarget, error) {
	version, err := l.VersionWithSuffix(req, platform)
	if err != nil {
		return nil, err
	}
	url, err := l.DownloadURL(req, platform)
	if err != nil {
		return nil, err
	}
	installDir, err := l.InstallDirectory(platform)
	if err != nil {
		return nil, err
	}

	return &entities.DownloadTarget{
		URL:                      url,
		FinalInstallPath:         installDir,
		ExtractionParentDir:      parentDir(platform, installDir),
		ExpectedExtractedDirName: l.dist.ExtractedDirPrefix + "-" + version,
		Platform:                 platform,
	}, nil
}

// parentDir applies the target platform's path rules, not the host's
func parentDir(platform entities.Platform, dir string) string {
	if platform != entities.PlatformWindows {
		return path.Dir(dir)
	}

	dir = strings.TrimSuffix(dir, `\`)
	idx := strings.LastIndex(dir, `\`)
	if idx < 0 {
		return dir
	}
	parent := dir[:idx]
	if strings.HasSuffix(parent, ":") {
		parent += `\`
	}
	return parent
}
