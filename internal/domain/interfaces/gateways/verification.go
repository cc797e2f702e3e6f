package gateways

import "context"

// ChecksumVerifier compares a file digest against an expected value
type ChecksumVerifier interface {
	VerifyChecksum(ctx context.Context, filePath, expectedSum string) error
}

// SignatureVerifier checks detached OpenPGP signatures
type SignatureVerifier interface {
	ImportGPGKeys(ctx context.Context, keyIDs []string) error
	VerifyGPGSignature(ctx context.Context, filePath, sigURL string) error
}
