package gateways

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrChecksumMismatch is returned when an archive digest differs from the expected value
var ErrChecksumMismatch = errors.New("checksum mismatch")

// ChecksumVerifier verifies SHA-256 digests of downloaded archives
type ChecksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
func NewChecksumVerifier() *ChecksumVerifier {
	return &ChecksumVerifier{}
}

// VerifyChecksum compares the file's SHA-256 against expectedSum.
// expectedSum may carry a "sha256:" prefix or be a "<digest>  <file>" line as written by sha256sum.
func (v *ChecksumVerifier) VerifyChecksum(ctx context.Context, filePath, expectedSum string) error {
	expected, err := normalizeChecksum(expectedSum)
	if err != nil {
		return err
	}

	actual, err := v.CalculateChecksum(ctx, filePath)
	if err != nil {
		return err
	}

	if actual != expected {
		return fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, expected, actual)
	}
	return nil
}

// CalculateChecksum calculates the hex SHA-256 of a file
func (v *ChecksumVerifier) CalculateChecksum(ctx context.Context, filePath string) (string, error) {
	//nolint:gosec // G304: File path is the downloaded archive
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, &ctxReader{ctx: ctx, r: f}); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func normalizeChecksum(sum string) (string, error) {
	fields := strings.Fields(sum)
	if len(fields) == 0 {
		return "", errors.New("expected checksum is empty")
	}

	digest := strings.ToLower(strings.TrimPrefix(fields[0], "sha256:"))
	if len(digest) != sha256.Size*2 {
		return "", fmt.Errorf("invalid SHA-256 checksum %q", fields[0])
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", fmt.Errorf("invalid SHA-256 checksum %q: %w", fields[0], err)
	}
	return digest, nil
}

// ctxReader stops a long read once the context is cancelled
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
