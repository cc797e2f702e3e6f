// Package orchestrators coordinates complex workflows across multiple domain services.
package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/entities"
	"github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces"
	"github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces/gateways"
)

// ErrUnexpectedExtension is returned when the resolved URL does not point at the expected archive type
var ErrUnexpectedExtension = errors.New("unexpected archive extension")

// Resolver computes install coordinates; implemented by services.Locator
type Resolver interface {
	Resolve(req entities.InstallRequest, platform entities.Platform) (*entities.DownloadTarget, error)
}

// InstallOrchestrator runs the download, verify, extract and place sequence.
// Steps run strictly in order and the first failure ends the run.
type InstallOrchestrator struct {
	resolver         Resolver
	downloader       gateways.Downloader
	extractor        gateways.Extractor
	mover            gateways.Mover
	runner           gateways.CommandRunner
	verifier         *VerificationOrchestrator
	archiveExtension string
	logger           interfaces.Logger
}

// InstallOrchestratorConfig holds optional collaborators and settings
type InstallOrchestratorConfig struct {
	ArchiveExtension string
	Verifier         *VerificationOrchestrator
	Logger           interfaces.Logger
}

// NewInstallOrchestrator creates a new install orchestrator
func NewInstallOrchestrator(
	resolver Resolver,
	downloader gateways.Downloader,
	extractor gateways.Extractor,
	mover gateways.Mover,
	runner gateways.CommandRunner,
	config InstallOrchestratorConfig,
) *InstallOrchestrator {
	ext := config.ArchiveExtension
	if ext == "" {
		ext = ".zip"
	}
	logger := config.Logger
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &InstallOrchestrator{
		resolver:         resolver,
		downloader:       downloader,
		extractor:        extractor,
		mover:            mover,
		runner:           runner,
		verifier:         config.Verifier,
		archiveExtension: ext,
		logger:           logger,
	}
}

// InstallResult contains the result of an install operation
type InstallResult struct {
	Request         entities.InstallRequest
	Platform        entities.Platform
	Target          *entities.DownloadTarget
	Artifact        *entities.Artifact
	Verification    *VerificationResult
	FetchDuration   time.Duration
	InstallDuration time.Duration
	TotalDuration   time.Duration
	Success         bool
	Error           error
}

// Install resolves, downloads and installs the requested version on platform
func (o *InstallOrchestrator) Install(ctx context.Context, req entities.InstallRequest, platform entities.Platform) (*InstallResult, error) {
	startTime := time.Now()
	result := &InstallResult{Request: req, Platform: platform}

	fail := func(err error) (*InstallResult, error) {
		result.Error = err
		result.TotalDuration = time.Since(startTime)
		return result, err
	}

	// Step 1: Resolve download and install coordinates
	target, err := o.resolver.Resolve(req, platform)
	if err != nil {
		return fail(fmt.Errorf("failed to resolve install target: %w", err))
	}
	result.Target = target
	o.logger.Info("resolved install target",
		interfaces.F("url", target.URL),
		interfaces.F("path", target.FinalInstallPath),
		interfaces.F("platform", platform.String()))

	// Step 2: Fetch archive
	fetchStart := time.Now()
	archivePath, err := o.downloader.Download(ctx, target.URL)
	if err != nil {
		return fail(fmt.Errorf("failed to download %s: %w", target.URL, err))
	}
	result.FetchDuration = time.Since(fetchStart)
	result.Artifact = &entities.Artifact{
		Name:     target.ExpectedExtractedDirName,
		Version:  req.Version,
		Platform: platform,
		Path:     archivePath,
		URL:      target.URL,
		Type:     "archive",
	}

	// Step 3: Guard against a resolver producing a non-zip URL
	if !strings.HasSuffix(target.URL, o.archiveExtension) {
		return fail(fmt.Errorf("%w: expected %s, got %s", ErrUnexpectedExtension, o.archiveExtension, target.URL))
	}

	// Step 4: Verify archive (optional)
	if o.verifier != nil && o.verifier.Enabled() {
		verification, err := o.verifier.Verify(ctx, req, platform, archivePath)
		result.Verification = verification
		if err != nil {
			return fail(err)
		}
	}

	// Step 5: Extract and place
	installStart := time.Now()
	switch platform {
	case entities.PlatformLinux:
		err = o.installPrivileged(ctx, target, archivePath)
	case entities.PlatformMacOS, entities.PlatformWindows:
		err = o.installUnprivileged(ctx, target, archivePath)
	default:
		err = fmt.Errorf("%w: %v", entities.ErrUnsupportedPlatform, platform)
	}
	if err != nil {
		return fail(err)
	}
	result.InstallDuration = time.Since(installStart)

	result.Success = true
	result.TotalDuration = time.Since(startTime)
	o.logger.Info("installed sonar-scanner",
		interfaces.F("version", req.Version),
		interfaces.F("path", target.FinalInstallPath),
		interfaces.F("duration", result.TotalDuration.String()))

	return result, nil
}

// installPrivileged replaces whatever owns the install path, so every step runs elevated
func (o *InstallOrchestrator) installPrivileged(ctx context.Context, target *entities.DownloadTarget, archivePath string) error {
	steps := []gateways.Command{
		{
			Name:        "rm",
			Args:        []string{"-rf", target.FinalInstallPath},
			Privileged:  true,
			Description: "remove previous installation",
		},
		{
			Name:        "unzip",
			Args:        []string{"-o", "-q", archivePath, "-d", target.ExtractionParentDir},
			Privileged:  true,
			Description: "extract archive",
		},
		{
			Name:        "mv",
			Args:        []string{target.ExtractedPath(), target.FinalInstallPath},
			Privileged:  true,
			Description: "move into place",
		},
	}

	for _, step := range steps {
		if _, err := o.runner.Run(ctx, step); err != nil {
			return fmt.Errorf("failed to %s: %w", step.Description, err)
		}
	}
	return nil
}

func (o *InstallOrchestrator) installUnprivileged(ctx context.Context, target *entities.DownloadTarget, archivePath string) error {
	if _, err := o.extractor.ExtractZip(ctx, archivePath, target.ExtractionParentDir); err != nil {
		return fmt.Errorf("failed to extract archive: %w", err)
	}
	o.logger.Debug("extracted archive", interfaces.F("path", target.ExtractedPath()))

	if err := o.mover.Move(ctx, target.ExtractedPath(), target.FinalInstallPath); err != nil {
		return fmt.Errorf("failed to move into place: %w", err)
	}
	return nil
}

// GetInstallSummary returns a human-readable summary of the install
func (r *InstallResult) GetInstallSummary() string {
	if !r.Success {
		return fmt.Sprintf("Install failed: %v", r.Error)
	}

	summary := fmt.Sprintf(`Install successful!
Version: %s
Platform: %s
Path: %s
Download: %v
Install: %v
Total: %v`,
		r.Request.Version,
		r.Platform,
		r.Target.FinalInstallPath,
		r.FetchDuration,
		r.InstallDuration,
		r.TotalDuration,
	)

	if r.Verification != nil {
		summary += "\n\n" + r.Verification.Summary()
	}

	return summary
}
