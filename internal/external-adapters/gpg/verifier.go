// Package gpg provides GPG signature verification capabilities.
package gpg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// DefaultKeyservers are queried in order when importing keys by fingerprint
var DefaultKeyservers = []string{
	"https://keys.openpgp.org",
	"https://keyserver.ubuntu.com",
}

const (
	maxKeyResponseSize = 1 << 20
	maxSignatureSize   = 10 * 1024
	armoredSigHeader   = "-----BEGIN PGP SIGNATURE"
)

// ErrNoKeys is returned when verification is attempted with an empty keyring
var ErrNoKeys = errors.New("no GPG keys imported")

// Verifier checks detached OpenPGP signatures using ProtonMail's go-crypto.
// This is in external-adapters to isolate the external dependency.
type Verifier struct {
	keyring    openpgp.EntityList
	keyservers []string
	httpClient *http.Client
}

// Option configures a Verifier
type Option func(*Verifier)

// WithKeyservers overrides the keyservers used by ImportKeys
func WithKeyservers(servers ...string) Option {
	return func(v *Verifier) { v.keyservers = servers }
}

// WithHTTPClient overrides the HTTP client used for keys and signatures
func WithHTTPClient(client *http.Client) Option {
	return func(v *Verifier) { v.httpClient = client }
}

// NewVerifier creates a new GPG verifier
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{
		keyring:    make(openpgp.EntityList, 0),
		keyservers: DefaultKeyservers,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ImportKeys fetches each fingerprint from the first keyserver that serves a matching key.
// Keys whose fingerprint does not match the request are discarded.
func (v *Verifier) ImportKeys(ctx context.Context, fingerprints []string) error {
	if len(fingerprints) == 0 {
		return errors.New("no key fingerprints provided")
	}

	for _, fpr := range fingerprints {
		fpr = strings.ToUpper(strings.TrimSpace(fpr))
		if fpr == "" {
			continue
		}
		if v.hasKey(fpr) {
			continue
		}

		var lastErr error
		imported := false
		for _, server := range v.keyservers {
			entities, err := v.fetchKey(ctx, server, fpr)
			if err != nil {
				lastErr = err
				continue
			}

			matching := matchFingerprint(entities, fpr)
			if len(matching) == 0 {
				lastErr = fmt.Errorf("keyserver %s returned no key matching %s", server, fpr)
				continue
			}

			v.keyring = append(v.keyring, matching...)
			imported = true
			break
		}

		if !imported {
			return fmt.Errorf("failed to import key %s from all keyservers: %w", fpr, lastErr)
		}
	}

	return nil
}

func (v *Verifier) fetchKey(ctx context.Context, server, fpr string) (openpgp.EntityList, error) {
	server = strings.TrimSuffix(server, "/")
	endpoints := []string{
		fmt.Sprintf("%s/vks/v1/by-fingerprint/%s", server, fpr),
		fmt.Sprintf("%s/pks/lookup?op=get&options=mr&search=0x%s", server, url.QueryEscape(fpr)),
	}

	var lastErr error
	for _, endpoint := range endpoints {
		body, err := v.get(ctx, endpoint, maxKeyResponseSize)
		if err != nil {
			lastErr = err
			continue
		}

		entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(body))
		if err != nil {
			lastErr = fmt.Errorf("failed to parse key from %s: %w", endpoint, err)
			continue
		}
		return entities, nil
	}
	return nil, lastErr
}

// ImportKeyRing reads an armored or binary keyring
func (v *Verifier) ImportKeyRing(r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, maxKeyResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read key: %w", err)
	}

	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to read key: %w", err)
		}
	}

	if len(entities) == 0 {
		return errors.New("no keys found")
	}

	v.keyring = append(v.keyring, entities...)
	return nil
}

// ImportKeyFromFile imports a GPG key from a file
func (v *Verifier) ImportKeyFromFile(keyPath string) error {
	//nolint:gosec // G304: keyPath is user-provided for GPG key import
	f, err := os.Open(keyPath)
	if err != nil {
		return fmt.Errorf("failed to open key file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	return v.ImportKeyRing(f)
}

// VerifySignature downloads the detached signature at sigURL and checks filePath against it
func (v *Verifier) VerifySignature(ctx context.Context, filePath, sigURL string) error {
	if len(v.keyring) == 0 {
		return ErrNoKeys
	}

	sig, err := v.get(ctx, sigURL, maxSignatureSize)
	if err != nil {
		return fmt.Errorf("failed to download signature: %w", err)
	}

	//nolint:gosec // G304: filePath is the downloaded archive
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	return v.VerifyDetached(f, sig)
}

// VerifyDetached checks signed against an armored or binary detached signature
func (v *Verifier) VerifyDetached(signed io.Reader, sig []byte) error {
	if len(v.keyring) == 0 {
		return ErrNoKeys
	}
	if len(sig) < 10 {
		return errors.New("signature too small to be a valid GPG signature")
	}

	var err error
	if bytes.HasPrefix(bytes.TrimSpace(sig), []byte(armoredSigHeader)) {
		_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, signed, bytes.NewReader(sig), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(v.keyring, signed, bytes.NewReader(sig), nil)
	}
	if err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}

// GetKeyringSize returns the number of keys in the keyring
func (v *Verifier) GetKeyringSize() int {
	return len(v.keyring)
}

func (v *Verifier) hasKey(fpr string) bool {
	return len(matchFingerprint(v.keyring, fpr)) > 0
}

func (v *Verifier) get(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // Defer close
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", rawURL, resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// matchFingerprint keeps entities whose full fingerprint or 16-char key ID equals fpr
func matchFingerprint(entities openpgp.EntityList, fpr string) openpgp.EntityList {
	var out openpgp.EntityList
	for _, entity := range entities {
		if entity.PrimaryKey == nil {
			continue
		}
		full := fmt.Sprintf("%X", entity.PrimaryKey.Fingerprint)
		if full == fpr || (len(full) >= 16 && full[len(full)-16:] == fpr) {
			out = append(out, entity)
		}
	}
	return out
}
