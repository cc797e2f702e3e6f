package gateways

import (
	"context"
	"fmt"
	"os"

	"github.com/ochairo/setup-sonar-scanner/internal/external-adapters/gpg"
)

// GPGVerifier wraps the external GPG adapter to implement the domain gateway interface
type GPGVerifier struct {
	verifier *gpg.Verifier
}

// NewGPGVerifier creates a new GPG verifier gateway
func NewGPGVerifier(opts ...gpg.Option) *GPGVerifier {
	return &GPGVerifier{
		verifier: gpg.NewVerifier(opts...),
	}
}

// ImportGPGKeys imports GPG keys from keyservers by fingerprint
func (g *GPGVerifier) ImportGPGKeys(ctx context.Context, keyIDs []string) error {
	if err := g.verifier.ImportKeys(ctx, keyIDs); err != nil {
		return fmt.Errorf("failed to import GPG keys: %w", err)
	}
	return nil
}

// ImportGPGKeyFromFile imports a GPG key from a local file
func (g *GPGVerifier) ImportGPGKeyFromFile(keyPath string) error {
	if err := g.verifier.ImportKeyFromFile(keyPath); err != nil {
		return fmt.Errorf("failed to import GPG key from file: %w", err)
	}
	return nil
}

// VerifyGPGSignature verifies a detached GPG signature downloaded from a URL
func (g *GPGVerifier) VerifyGPGSignature(ctx context.Context, filePath, sigURL string) error {
	if err := g.verifier.VerifySignature(ctx, filePath, sigURL); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}

// VerifyGPGSignatureFile verifies a detached GPG signature stored next to the file
func (g *GPGVerifier) VerifyGPGSignatureFile(filePath, sigPath string) error {
	//nolint:gosec // G304: sigPath is user-provided for verification
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return fmt.Errorf("failed to read signature: %w", err)
	}

	//nolint:gosec // G304: filePath is user-provided for verification
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close() //nolint:errcheck // Defer close

	if err := g.verifier.VerifyDetached(f, sig); err != nil {
		return fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return nil
}

// GetKeyringSize returns the number of keys loaded
func (g *GPGVerifier) GetKeyringSize() int {
	return g.verifier.GetKeyringSize()
}
