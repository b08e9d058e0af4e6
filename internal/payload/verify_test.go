package payload

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ProtonMail/go-crypto/openpgp"       //nolint:staticcheck // Using ProtonMail's maintained fork
	"github.com/ProtonMail/go-crypto/openpgp/armor" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// writeSigningFixture creates a throwaway key, an armored public keyring and
// an armored detached signature over content.
func writeSigningFixture(t *testing.T, dir string, content []byte) (keyringPath, sigPath string) {
	t.Helper()

	entity, err := openpgp.NewEntity("libinstall test", "", "test@example.com", nil)
	if err != nil {
		t.Fatalf("create entity: %v", err)
	}

	var pub bytes.Buffer
	w, err := armor.Encode(&pub, openpgp.PublicKeyType, nil)
	if err != nil {
		t.Fatalf("armor encode: %v", err)
	}
	if err := entity.Serialize(w); err != nil {
		t.Fatalf("serialize key: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close armor: %v", err)
	}

	var sig bytes.Buffer
	if err := openpgp.ArmoredDetachSign(&sig, entity, bytes.NewReader(content), nil); err != nil {
		t.Fatalf("sign: %v", err)
	}

	keyringPath = filepath.Join(dir, "helper.asc")
	sigPath = filepath.Join(dir, "helper.sig")
	if err := os.WriteFile(keyringPath, pub.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sigPath, sig.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
	return keyringPath, sigPath
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func TestVerifier_SHA256(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("helper binary")
	binaryPath := filepath.Join(tmpDir, "hookinstall")
	if err := os.WriteFile(binaryPath, content, 0755); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		checksum string
		want     VerificationMethod
		wantErr  bool
	}{
		{name: "match", checksum: sha256Hex(content), want: VerificationSHA256},
		{name: "match_uppercase", checksum: " " + upper(sha256Hex(content)) + "\n", want: VerificationSHA256},
		{name: "mismatch", checksum: sha256Hex([]byte("other")), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(tt.checksum, "")
			got, err := v.Verify(binaryPath, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrVerification) || !errors.Is(err, ErrIO) {
					t.Errorf("Verify() error = %v, want ErrVerification", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Verify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifier_GPG(t *testing.T) {
	tmpDir := t.TempDir()
	content := []byte("signed helper binary")
	binaryPath := filepath.Join(tmpDir, "hookinstall")
	if err := os.WriteFile(binaryPath, content, 0755); err != nil {
		t.Fatal(err)
	}
	keyringPath, sigPath := writeSigningFixture(t, tmpDir, content)

	t.Run("valid_signature", func(t *testing.T) {
		v := NewVerifier("", keyringPath)
		if !v.RequiresSignature() {
			t.Fatal("RequiresSignature() = false")
		}
		got, err := v.Verify(binaryPath, sigPath)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if got != VerificationGPG {
			t.Errorf("Verify() = %v, want GPG", got)
		}
	})

	t.Run("signature_and_checksum", func(t *testing.T) {
		v := NewVerifier(sha256Hex(content), keyringPath)
		got, err := v.Verify(binaryPath, sigPath)
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if got != VerificationGPG {
			t.Errorf("Verify() = %v, want GPG", got)
		}
	})

	t.Run("tampered_binary", func(t *testing.T) {
		tampered := filepath.Join(tmpDir, "tampered")
		if err := os.WriteFile(tampered, []byte("evil"), 0755); err != nil {
			t.Fatal(err)
		}
		_, err := NewVerifier("", keyringPath).Verify(tampered, sigPath)
		if !errors.Is(err, ErrVerification) {
			t.Fatalf("Verify() error = %v, want ErrVerification", err)
		}
	})

	t.Run("missing_signature", func(t *testing.T) {
		_, err := NewVerifier("", keyringPath).Verify(binaryPath, "")
		if !errors.Is(err, ErrVerification) {
			t.Fatalf("Verify() error = %v, want ErrVerification", err)
		}
	})
}

func TestVerifier_Disabled(t *testing.T) {
	v := NewVerifier("", "")
	if v.Enabled() {
		t.Fatal("Enabled() = true for empty verifier")
	}
	got, err := v.Verify("/nonexistent", "")
	if err != nil || got != VerificationNone {
		t.Errorf("Verify() = %v, %v; want None, nil", got, err)
	}
}

func TestVerificationMethod_String(t *testing.T) {
	tests := map[VerificationMethod]string{
		VerificationNone:       "None",
		VerificationGPG:        "GPG",
		VerificationSHA256:     "SHA256",
		VerificationMethod(42): "Unknown",
	}
	for m, want := range tests {
		if got := m.String(); got != want {
			t.Errorf("%d.String() = %s, want %s", m, got, want)
		}
	}
}

func upper(s string) string {
	return string(bytes.ToUpper([]byte(s)))
}
