package payload

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/abi"
)

const xzSuffix = ".xz"

// Extractor copies payloads out of a package archive into the staging
// layout.
type Extractor struct {
	layout Layout
}

// NewExtractor creates an extractor that stages into layout.
func NewExtractor(layout Layout) *Extractor {
	return &Extractor{layout: layout}
}

// Layout returns the staging layout the extractor writes to.
func (e *Extractor) Layout() Layout {
	return e.layout
}

// Extract copies a single archive entry byte-for-byte to destPath,
// replacing any existing file. The parent directory of destPath is created
// when it does not exist yet.
func (e *Extractor) Extract(archivePath, entryName, destPath string) error {
	if err := ensureParentDir(destPath); err != nil {
		return err
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w %s: %w", errInvalidArchive, archivePath, err)
	}
	defer zr.Close()

	file, compressed := findEntry(&zr.Reader, entryName)
	if file == nil {
		return fmt.Errorf("%w: %s in %s", ErrEntryNotFound, entryName, archivePath)
	}

	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("%w: open entry %s: %w", ErrCopy, entryName, err)
	}
	defer rc.Close()

	var src io.Reader = rc
	if compressed {
		xr, err := xz.NewReader(rc)
		if err != nil {
			return fmt.Errorf("%w: read xz stream %s: %w", ErrCopy, file.Name, err)
		}
		src = xr
	}

	outFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("%w: create file %s: %w", ErrCopy, destPath, err)
	}

	if _, err := io.Copy(outFile, src); err != nil {
		outFile.Close()
		return fmt.Errorf("%w: write file %s: %w", ErrCopy, destPath, err)
	}

	if err := outFile.Close(); err != nil {
		return fmt.Errorf("%w: close file %s: %w", ErrCopy, destPath, err)
	}

	return nil
}

// ExtractForBothArchitectures stages lib/<path32>/<name> and, when the
// device supports 64-bit code, lib/<path64>/<name>. Either failure aborts
// the whole operation.
func (e *Extractor) ExtractForBothArchitectures(archivePath, name string, profile abi.Profile) (Staged, error) {
	staged := Staged{
		Name:   name,
		Path32: e.layout.Library(profile.Path32, name),
	}

	if err := e.Extract(archivePath, LibraryEntry(profile.Path32, name), staged.Path32); err != nil {
		return Staged{}, fmt.Errorf("stage %s (%s): %w", name, profile.Path32, err)
	}

	if profile.Supports64Bit {
		staged.Path64 = e.layout.Library(profile.Path64, name)
		if err := e.Extract(archivePath, LibraryEntry(profile.Path64, name), staged.Path64); err != nil {
			return Staged{}, fmt.Errorf("stage %s (%s): %w", name, profile.Path64, err)
		}
	}

	return staged, nil
}

// ExtractAsset stages assets/<name> as <cache>/<name>.
func (e *Extractor) ExtractAsset(archivePath, name string) (string, error) {
	dest := e.layout.File(name)
	if err := e.Extract(archivePath, AssetEntry(name), dest); err != nil {
		return "", fmt.Errorf("stage asset %s: %w", name, err)
	}
	return dest, nil
}

// ExtractHelper stages the helper built for the running ABI and marks it
// executable. It returns the staged helper path.
func (e *Extractor) ExtractHelper(archivePath string, profile abi.Profile, helperName string) (string, error) {
	dest := e.layout.Helper(helperName)
	if err := e.Extract(archivePath, HelperEntry(profile.RunningABI, helperName), dest); err != nil {
		return "", fmt.Errorf("stage helper: %w", err)
	}

	if err := SetExecutable(dest); err != nil {
		return "", err
	}

	return dest, nil
}

// SetExecutable sets rwxr-xr-x on path.
func SetExecutable(path string) error {
	if err := os.Chmod(path, 0755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSetExecutable, path, err)
	}
	return nil
}

// ensureParentDir creates the parent of path unless it already exists.
func ensureParentDir(path string) error {
	parent := filepath.Dir(path)

	info, err := os.Stat(parent)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", ErrCreateDir, parent)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("%w: %s: %w", ErrCreateDir, parent, err)
	}

	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCreateDir, parent, err)
	}
	return nil
}

// findEntry looks up name, falling back to its xz-compressed variant.
func findEntry(r *zip.Reader, name string) (*zip.File, bool) {
	var compressed *zip.File
	for _, f := range r.File {
		switch f.Name {
		case name:
			return f, false
		case name + xzSuffix:
			compressed = f
		}
	}
	if compressed != nil {
		return compressed, true
	}
	return nil, false
}
