package command

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/abi"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/config"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/payload"
)

var (
	// ErrInvalidName is returned for payload or file names that are empty,
	// absolute, or escape their root.
	ErrInvalidName = fmt.Errorf("%w: invalid name", config.ErrConfiguration)

	// ErrNoPaths is returned when a copy or remove would name no files.
	ErrNoPaths = fmt.Errorf("%w: no files given", config.ErrConfiguration)
)

// Builder turns a configuration snapshot and an ABI profile into helper
// commands.
type Builder struct {
	cfg     config.Config
	profile abi.Profile
	layout  payload.Layout
}

// NewBuilder creates a builder staging under cfg.CacheDir.
func NewBuilder(cfg config.Config, profile abi.Profile) *Builder {
	return &Builder{
		cfg:     cfg,
		profile: profile,
		layout:  payload.Layout{CacheDir: cfg.CacheDir},
	}
}

// HelperPath returns the staged helper executable path.
func (b *Builder) HelperPath() string {
	return b.layout.Helper(b.cfg.HelperName)
}

// LibraryDirs returns the destination library directories, 32-bit first.
func (b *Builder) LibraryDirs() []string {
	segs := b.profile.Segments()
	dirs := make([]string, len(segs))
	for i, seg := range segs {
		dirs[i] = filepath.Join(b.cfg.ConfigPath, seg)
	}
	return dirs
}

// CopyLibrary builds the command installing a staged library for every
// supported architecture.
func (b *Builder) CopyLibrary(name string) (Command, error) {
	if err := b.cfg.RequireConfigPath(); err != nil {
		return Command{}, err
	}
	if err := validateLibraryName(name); err != nil {
		return Command{}, err
	}

	args := b.copyHeader(TypeLib, b.cfg.LibLabel)
	for _, seg := range b.profile.Segments() {
		args = append(args,
			filepath.Join(b.cfg.ConfigPath, seg),
			b.layout.Library(seg, name),
		)
	}

	return Command{kind: KindCopyLibrary, args: args}, nil
}

// CopyFiles builds the command installing staged plain files. Each name is
// relative to both the staging directory and the destination root.
func (b *Builder) CopyFiles(names ...string) (Command, error) {
	if err := b.cfg.RequireConfigPath(); err != nil {
		return Command{}, err
	}
	if len(names) == 0 {
		return Command{}, ErrNoPaths
	}

	args := b.copyHeader(TypeFile, b.cfg.FileLabel)
	for _, name := range names {
		rel, err := cleanRelative(name)
		if err != nil {
			return Command{}, err
		}
		args = append(args,
			filepath.Dir(filepath.Join(b.cfg.ConfigPath, rel)),
			b.layout.File(rel),
		)
	}

	return Command{kind: KindCopyFiles, args: args}, nil
}

// RemoveLibrary builds the command removing the library directories.
func (b *Builder) RemoveLibrary() (Command, error) {
	if err := b.cfg.RequireConfigPath(); err != nil {
		return Command{}, err
	}

	args := []string{b.HelperPath(), OpRemove}
	args = append(args, b.LibraryDirs()...)
	return Command{kind: KindRemovePaths, args: args}, nil
}

// RemoveFiles builds the command removing installed plain files.
func (b *Builder) RemoveFiles(names ...string) (Command, error) {
	if err := b.cfg.RequireConfigPath(); err != nil {
		return Command{}, err
	}
	if len(names) == 0 {
		return Command{}, ErrNoPaths
	}

	args := []string{b.HelperPath(), OpRemove}
	for _, name := range names {
		rel, err := cleanRelative(name)
		if err != nil {
			return Command{}, err
		}
		args = append(args, filepath.Join(b.cfg.ConfigPath, rel))
	}

	return Command{kind: KindRemovePaths, args: args}, nil
}

func (b *Builder) copyHeader(fileType, label string) []string {
	return []string{
		b.HelperPath(),
		OpCopy,
		strconv.Itoa(b.cfg.OwnerUID),
		strconv.Itoa(b.cfg.OwnerGID),
		fileType,
		label,
		b.cfg.ConfigPath,
	}
}

// validateLibraryName accepts plain file names only; libraries always live
// directly inside their ABI directory.
func validateLibraryName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: library %q", ErrInvalidName, name)
	}
	return nil
}

// cleanRelative returns name cleaned, rejecting absolute paths and paths
// leaving their root.
func cleanRelative(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: file %q", ErrInvalidName, name)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: file %q", ErrInvalidName, name)
	}
	return clean, nil
}
