package payload

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ProtonMail/go-crypto/openpgp" //nolint:staticcheck // Using ProtonMail's maintained fork
)

// SignatureSuffix is appended to the helper entry name to find its detached
// signature inside the archive.
const SignatureSuffix = ".sig"

// Verifier checks a staged helper before it is first executed. A pinned
// checksum, a keyring, both, or neither may be configured.
type Verifier struct {
	checksum    string
	keyringPath string
}

// NewVerifier creates a verifier. Empty arguments disable the corresponding
// check.
func NewVerifier(checksum, keyringPath string) *Verifier {
	return &Verifier{
		checksum:    strings.TrimSpace(checksum),
		keyringPath: keyringPath,
	}
}

// RequiresSignature reports whether Verify needs a detached signature.
func (v *Verifier) RequiresSignature() bool {
	return v.keyringPath != ""
}

// Enabled reports whether any check is configured.
func (v *Verifier) Enabled() bool {
	return v.checksum != "" || v.keyringPath != ""
}

// Verify runs the configured checks against binaryPath. The signature check
// runs first when a keyring is configured. It returns the strongest method
// that succeeded.
func (v *Verifier) Verify(binaryPath, signaturePath string) (VerificationMethod, error) {
	method := VerificationNone

	if v.keyringPath != "" {
		if signaturePath == "" {
			return VerificationNone, fmt.Errorf("%w: signature required but not available", ErrVerification)
		}
		if err := v.verifyGPG(binaryPath, signaturePath); err != nil {
			return VerificationNone, fmt.Errorf("%w: %w", ErrVerification, err)
		}
		method = VerificationGPG
	}

	if v.checksum != "" {
		if err := v.verifySHA256(binaryPath); err != nil {
			return VerificationNone, fmt.Errorf("%w: %w", ErrVerification, err)
		}
		if method == VerificationNone {
			method = VerificationSHA256
		}
	}

	return method, nil
}

func (v *Verifier) verifyGPG(binaryPath, signaturePath string) error {
	keyring, err := loadKeyring(v.keyringPath)
	if err != nil {
		return err
	}

	binaryFile, err := os.Open(binaryPath)
	if err != nil {
		return fmt.Errorf("open binary: %w", err)
	}
	defer binaryFile.Close()

	sigFile, err := os.Open(signaturePath)
	if err != nil {
		return fmt.Errorf("open signature: %w", err)
	}
	defer sigFile.Close()

	// Armored first, then binary.
	_, err = openpgp.CheckArmoredDetachedSignature(keyring, binaryFile, sigFile, nil)
	if err != nil {
		if _, seekErr := binaryFile.Seek(0, io.SeekStart); seekErr != nil {
			return fmt.Errorf("rewind binary: %w", seekErr)
		}
		if _, seekErr := sigFile.Seek(0, io.SeekStart); seekErr != nil {
			return fmt.Errorf("rewind signature: %w", seekErr)
		}
		_, err = openpgp.CheckDetachedSignature(keyring, binaryFile, sigFile, nil)
	}
	if err != nil {
		return fmt.Errorf("verify signature: %w", err)
	}

	return nil
}

func (v *Verifier) verifySHA256(binaryPath string) error {
	actual, err := calculateSHA256(binaryPath)
	if err != nil {
		return fmt.Errorf("calculate checksum: %w", err)
	}

	if !strings.EqualFold(actual, v.checksum) {
		return fmt.Errorf("checksum mismatch:\nactual:   %s\nexpected: %s", actual, v.checksum)
	}
	return nil
}

func loadKeyring(path string) (openpgp.EntityList, error) {
	keyringFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	defer keyringFile.Close()

	keyring, err := openpgp.ReadArmoredKeyRing(keyringFile)
	if err != nil {
		if _, seekErr := keyringFile.Seek(0, io.SeekStart); seekErr != nil {
			return nil, fmt.Errorf("rewind keyring: %w", seekErr)
		}
		keyring, err = openpgp.ReadKeyRing(keyringFile)
		if err != nil {
			return nil, fmt.Errorf("read keyring: %w", err)
		}
	}

	if len(keyring) == 0 {
		return nil, fmt.Errorf("keyring is empty")
	}

	return keyring, nil
}

func calculateSHA256(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
