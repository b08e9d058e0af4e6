package payload

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
)

var (
	// ErrIO is the root of every staging failure.
	ErrIO = errors.New("i/o failure")

	ErrCreateDir      = fmt.Errorf("%w: create directory", ErrIO)
	ErrEntryNotFound  = fmt.Errorf("%w: archive entry not found", ErrIO)
	ErrCopy           = fmt.Errorf("%w: copy payload", ErrIO)
	ErrSetExecutable  = fmt.Errorf("%w: set executable", ErrIO)
	ErrVerification   = fmt.Errorf("%w: helper verification failed", ErrIO)
	errInvalidArchive = fmt.Errorf("%w: open archive", ErrIO)
)

// Staged records where a payload was staged for each architecture. Path64 is
// empty when the device has no 64-bit support.
type Staged struct {
	Name   string
	Path32 string
	Path64 string
}

// Layout computes staging paths under a cache directory.
type Layout struct {
	CacheDir string
}

// Library returns <cache>/<segment>/<name>.
func (l Layout) Library(segment, name string) string {
	return filepath.Join(l.CacheDir, segment, name)
}

// File returns <cache>/<name>.
func (l Layout) File(name string) string {
	return filepath.Join(l.CacheDir, filepath.FromSlash(name))
}

// Helper returns <cache>/<helperName>.
func (l Layout) Helper(helperName string) string {
	return filepath.Join(l.CacheDir, helperName)
}

// LibraryEntry returns the archive entry holding a library for one ABI.
// Archive entries always use forward slashes.
func LibraryEntry(segment, name string) string {
	return path.Join("lib", segment, name)
}

// HelperEntry returns the archive entry of the helper built for an ABI.
func HelperEntry(runningABI, helperName string) string {
	return path.Join("assets", runningABI, helperName)
}

// AssetEntry returns the archive entry of a plain asset file.
func AssetEntry(name string) string {
	return path.Join("assets", name)
}

// VerificationMethod indicates how the staged helper was verified.
type VerificationMethod int

const (
	// VerificationNone means no verification was configured.
	VerificationNone VerificationMethod = iota
	// VerificationGPG means an OpenPGP detached signature was checked.
	VerificationGPG
	// VerificationSHA256 means a pinned SHA256 checksum was compared.
	VerificationSHA256
)

// String returns the string representation of the verification method.
func (v VerificationMethod) String() string {
	switch v {
	case VerificationGPG:
		return "GPG"
	case VerificationSHA256:
		return "SHA256"
	case VerificationNone:
		return "None"
	default:
		return "Unknown"
	}
}
