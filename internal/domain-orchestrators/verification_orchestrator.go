package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/entities"
	"github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces"
	"github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces/gateways"
)

// ErrVerificationFailed wraps every checksum or signature failure
var ErrVerificationFailed = errors.New("archive verification failed")

// SignatureLocator computes the detached signature URL for a request
type SignatureLocator interface {
	SignatureURL(req entities.InstallRequest, platform entities.Platform) (string, error)
}

// VerificationConfig selects which checks run
type VerificationConfig struct {
	ExpectedSHA256  string
	VerifySignature bool
	KeyFingerprints []string
	Logger          interfaces.Logger
}

// VerificationOrchestrator checks a downloaded archive before anything is installed
type VerificationOrchestrator struct {
	checksum  gateways.ChecksumVerifier
	signature gateways.SignatureVerifier
	locator   SignatureLocator
	config    VerificationConfig
	logger    interfaces.Logger
}

// NewVerificationOrchestrator creates a new verification orchestrator
func NewVerificationOrchestrator(
	checksum gateways.ChecksumVerifier,
	signature gateways.SignatureVerifier,
	locator SignatureLocator,
	config VerificationConfig,
) *VerificationOrchestrator {
	logger := config.Logger
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &VerificationOrchestrator{
		checksum:  checksum,
		signature: signature,
		locator:   locator,
		config:    config,
		logger:    logger,
	}
}

// VerificationResult records which checks passed
type VerificationResult struct {
	ChecksumVerified  bool
	SignatureVerified bool
	SignatureURL      string
}

// Enabled reports whether any check is configured
func (o *VerificationOrchestrator) Enabled() bool {
	return strings.TrimSpace(o.config.ExpectedSHA256) != "" || o.config.VerifySignature
}

// Verify runs the configured checks against archivePath
func (o *VerificationOrchestrator) Verify(
	ctx context.Context,
	req entities.InstallRequest,
	platform entities.Platform,
	archivePath string,
) (*VerificationResult, error) {
	result := &VerificationResult{}

	// Step 1: Checksum
	if strings.TrimSpace(o.config.ExpectedSHA256) != "" {
		if err := o.checksum.VerifyChecksum(ctx, archivePath, o.config.ExpectedSHA256); err != nil {
			return result, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
		}
		result.ChecksumVerified = true
		o.logger.Info("checksum verified")
	}

	// Step 2: Detached signature
	if o.config.VerifySignature {
		sigURL, err := o.locator.SignatureURL(req, platform)
		if err != nil {
			return result, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
		}
		result.SignatureURL = sigURL

		if err := o.signature.ImportGPGKeys(ctx, o.config.KeyFingerprints); err != nil {
			return result, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
		}
		if err := o.signature.VerifyGPGSignature(ctx, archivePath, sigURL); err != nil {
			return result, fmt.Errorf("%w: %w", ErrVerificationFailed, err)
		}
		result.SignatureVerified = true
		o.logger.Info("signature verified", interfaces.F("signature", sigURL))
	}

	return result, nil
}

// Summary generates a human-readable verification summary
func (r *VerificationResult) Summary() string {
	checks := make([]string, 0, 2)
	if r.ChecksumVerified {
		checks = append(checks, "sha256")
	}
	if r.SignatureVerified {
		checks = append(checks, "gpg signature")
	}
	if len(checks) == 0 {
		return "Verification: none"
	}
	return "Verification: PASSED (" + strings.Join(checks, ", ") + ")"
}
