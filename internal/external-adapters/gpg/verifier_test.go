package gpg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/ProtonMail/go-crypto/openpgp/armor"
	"github.com/ProtonMail/go-crypto/openpgp/packet"
)

// newTestEntity generates a throwaway signing key
func newTestEntity(t *testing.T) *openpgp.Entity {
	t.Helper()
	entity, err := openpgp.NewEntity("Test Signer", "", "signer@example.com", &packet.Config{
		Algorithm: packet.PubKeyAlgoEdDSA,
	})
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return entity
}

func armoredPublicKey(t *testing.T, entity *openpgp.Entity) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := armor.Encode(&buf, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor.Encode: %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close armor writer: %v", err)
	}
	return buf.Bytes()
}

func armoredSignature(t *testing.T, entity *openpgp.Entity, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&buf, entity, bytes.NewReader(data), nil); err != nil {
		t.Fatalf("ArmoredDetachSign: %v", err)
	}
	return buf.Bytes()
}

func fingerprint(entity *openpgp.Entity) string {
	return fmt.Sprintf("%X", entity.PrimaryKey.Fingerprint)
}

// keyserver serves key at the VKS endpoint and sig at /sig
func keyserver(t *testing.T, fpr string, key, sig []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/vks/v1/by-fingerprint/" + fpr:
			_, _ = w.Write(key)
		case "/sig":
			_, _ = w.Write(sig)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifier_ImportKeysAndVerify(t *testing.T) {
	entity := newTestEntity(t)
	data := []byte("sonar-scanner archive contents")
	fpr := fingerprint(entity)

	srv := keyserver(t, fpr, armoredPublicKey(t, entity), armoredSignature(t, entity, data))

	v := NewVerifier(WithKeyservers(srv.URL), WithHTTPClient(srv.Client()))
	if err := v.ImportKeys(context.Background(), []string{fpr}); err != nil {
		t.Fatalf("ImportKeys() error = %v", err)
	}
	if v.GetKeyringSize() != 1 {
		t.Fatalf("GetKeyringSize() = %d, want 1", v.GetKeyringSize())
	}

	// Importing the same fingerprint again is a no-op
	if err := v.ImportKeys(context.Background(), []string{strings.ToLower(fpr)}); err != nil {
		t.Fatalf("second ImportKeys() error = %v", err)
	}
	if v.GetKeyringSize() != 1 {
		t.Errorf("GetKeyringSize() after re-import = %d, want 1", v.GetKeyringSize())
	}

	file := filepath.Join(t.TempDir(), "archive.zip")
	if err := os.WriteFile(file, data, 0600); err != nil {
		t.Fatal(err)
	}

	if err := v.VerifySignature(context.Background(), file, srv.URL+"/sig"); err != nil {
		t.Errorf("VerifySignature() error = %v", err)
	}
}

func TestVerifier_VerifySignature_TamperedFile(t *testing.T) {
	entity := newTestEntity(t)
	fpr := fingerprint(entity)
	srv := keyserver(t, fpr, armoredPublicKey(t, entity), armoredSignature(t, entity, []byte("original")))

	v := NewVerifier(WithKeyservers(srv.URL), WithHTTPClient(srv.Client()))
	if err := v.ImportKeys(context.Background(), []string{fpr}); err != nil {
		t.Fatalf("ImportKeys() error = %v", err)
	}

	file := filepath.Join(t.TempDir(), "archive.zip")
	if err := os.WriteFile(file, []byte("tampered"), 0600); err != nil {
		t.Fatal(err)
	}

	err := v.VerifySignature(context.Background(), file, srv.URL+"/sig")
	if err == nil || !strings.Contains(err.Error(), "signature verification failed") {
		t.Errorf("VerifySignature() error = %v, want verification failure", err)
	}
}

func TestVerifier_ImportKeys_FingerprintMismatch(t *testing.T) {
	served := newTestEntity(t)
	requested := "0123456789ABCDEF0123456789ABCDEF01234567"

	srv := keyserver(t, requested, armoredPublicKey(t, served), nil)

	v := NewVerifier(WithKeyservers(srv.URL), WithHTTPClient(srv.Client()))
	err := v.ImportKeys(context.Background(), []string{requested})
	if err == nil {
		t.Fatal("ImportKeys() should reject a key with a different fingerprint")
	}
	if v.GetKeyringSize() != 0 {
		t.Errorf("GetKeyringSize() = %d, want 0", v.GetKeyringSize())
	}
}

func TestVerifier_ImportKeys_NoFingerprints(t *testing.T) {
	v := NewVerifier()
	if err := v.ImportKeys(context.Background(), nil); err == nil {
		t.Error("ImportKeys(nil) should fail")
	}
}

func TestVerifier_VerifySignature_EmptyKeyring(t *testing.T) {
	v := NewVerifier()
	err := v.VerifySignature(context.Background(), "/nonexistent", "http://127.0.0.1/sig")
	if !errors.Is(err, ErrNoKeys) {
		t.Errorf("VerifySignature() error = %v, want ErrNoKeys", err)
	}
}

func TestVerifier_ImportKeyFromFile(t *testing.T) {
	entity := newTestEntity(t)
	keyPath := filepath.Join(t.TempDir(), "key.asc")
	if err := os.WriteFile(keyPath, armoredPublicKey(t, entity), 0600); err != nil {
		t.Fatal(err)
	}

	v := NewVerifier()
	if err := v.ImportKeyFromFile(keyPath); err != nil {
		t.Fatalf("ImportKeyFromFile() error = %v", err)
	}

	data := []byte("payload")
	if err := v.VerifyDetached(bytes.NewReader(data), armoredSignature(t, entity, data)); err != nil {
		t.Errorf("VerifyDetached() error = %v", err)
	}
}

func TestVerifier_ImportKeyFromFile_NonexistentFile(t *testing.T) {
	v := NewVerifier()

	err := v.ImportKeyFromFile("/nonexistent/key.asc")
	if err == nil || !strings.Contains(err.Error(), "failed to open key file") {
		t.Errorf("expected 'failed to open key file' error, got: %v", err)
	}
}

func TestVerifier_ImportKeyRing_Garbage(t *testing.T) {
	v := NewVerifier()
	err := v.ImportKeyRing(strings.NewReader("not a key"))
	if err == nil || !strings.Contains(err.Error(), "failed to read key") {
		t.Errorf("expected 'failed to read key' error, got: %v", err)
	}
}
