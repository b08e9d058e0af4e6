package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrConfiguration is the root of every configuration failure.
	ErrConfiguration = errors.New("configuration error")

	// ErrConfigPathNotSet is returned when an operation needs the
	// destination root and none was configured.
	ErrConfigPathNotSet = fmt.Errorf("%w: installation path not set", ErrConfiguration)
)

// Config is an immutable snapshot of the installation settings.
type Config struct {
	// ConfigPath is the destination root payloads are installed under.
	ConfigPath string `json:"config_path" yaml:"config_path"`

	// CacheDir is the writable staging directory.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`

	// OwnerUID and OwnerGID are applied to every installed file.
	OwnerUID int `json:"owner_uid" yaml:"owner_uid"`
	OwnerGID int `json:"owner_gid" yaml:"owner_gid"`

	// LibLabel and FileLabel are the security labels for libraries and
	// plain files.
	LibLabel  string `json:"lib_label" yaml:"lib_label"`
	FileLabel string `json:"file_label" yaml:"file_label"`

	// HelperName is the file name of the privileged helper.
	HelperName string `json:"helper_name" yaml:"helper_name"`

	// HelperSHA256 pins the staged helper's checksum (optional).
	HelperSHA256 string `json:"helper_sha256,omitempty" yaml:"helper_sha256,omitempty"`

	// HelperKeyring is an OpenPGP keyring used to check the helper's
	// detached signature (optional).
	HelperKeyring string `json:"helper_keyring,omitempty" yaml:"helper_keyring,omitempty"`

	// Elevated runs the helper with root privilege.
	Elevated bool `json:"elevated" yaml:"elevated"`

	// Escalation is the argv prefix used for elevated execution.
	Escalation []string `json:"escalation" yaml:"escalation"`

	// Timeout bounds a single helper invocation. Zero means no bound.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Default returns the default configuration: files owned by the current
// process, the standard system labels, the default helper name and a cache
// directory under the user cache directory.
func Default() Config {
	return Config{
		CacheDir:   defaultCacheDir(),
		OwnerUID:   os.Getuid(),
		OwnerGID:   os.Getgid(),
		LibLabel:   DefaultLibLabel,
		FileLabel:  DefaultFileLabel,
		HelperName: DefaultHelperName,
		Escalation: append([]string(nil), DefaultEscalation...),
		Timeout:    DefaultTimeout,
	}
}

func defaultCacheDir() string {
	if dir := os.Getenv("LIBINSTALL_CACHE_DIR"); dir != "" {
		return dir
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "libinstall")
	}
	return filepath.Join(os.TempDir(), "libinstall")
}

// RequireConfigPath returns ErrConfigPathNotSet when ConfigPath is empty.
func (c Config) RequireConfigPath() error {
	if strings.TrimSpace(c.ConfigPath) == "" {
		return ErrConfigPathNotSet
	}
	return nil
}

// EscalationArgs returns a copy of the escalation prefix.
func (c Config) EscalationArgs() []string {
	return append([]string(nil), c.Escalation...)
}

// ValidationError describes an invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrConfiguration.
func (e *ValidationError) Unwrap() error {
	return ErrConfiguration
}

// Validate checks field values. An empty ConfigPath is not an error here;
// operations report it when they need it.
func (c Config) Validate() error {
	if c.OwnerUID < 0 {
		return &ValidationError{Field: "owner.uid", Message: "must not be negative"}
	}
	if c.OwnerGID < 0 {
		return &ValidationError{Field: "owner.gid", Message: "must not be negative"}
	}

	if c.HelperName == "" {
		return &ValidationError{Field: "helper.name", Message: "cannot be empty"}
	}
	if len(c.HelperName) > MaxHelperLength {
		return &ValidationError{Field: "helper.name", Message: fmt.Sprintf("longer than %d characters", MaxHelperLength)}
	}
	if strings.ContainsAny(c.HelperName, `/\`) || c.HelperName == "." || c.HelperName == ".." {
		return &ValidationError{Field: "helper.name", Message: "must be a plain file name"}
	}

	for field, label := range map[string]string{"labels.lib": c.LibLabel, "labels.file": c.FileLabel} {
		if label == "" {
			return &ValidationError{Field: field, Message: "cannot be empty"}
		}
		if len(label) > MaxLabelLength {
			return &ValidationError{Field: field, Message: fmt.Sprintf("longer than %d characters", MaxLabelLength)}
		}
		if strings.ContainsAny(label, " \t\r\n\x00") {
			return &ValidationError{Field: field, Message: "must not contain whitespace"}
		}
	}

	if c.ConfigPath != "" && !filepath.IsAbs(c.ConfigPath) {
		return &ValidationError{Field: "config_path", Message: "must be an absolute path"}
	}
	if c.CacheDir == "" {
		return &ValidationError{Field: "cache_dir", Message: "cannot be empty"}
	}

	if c.Elevated && len(c.Escalation) == 0 {
		return &ValidationError{Field: "escalation", Message: "required when elevated"}
	}
	if c.Timeout < 0 {
		return &ValidationError{Field: "timeout", Message: "must not be negative"}
	}

	return nil
}

// Builder accumulates settings and yields immutable Config snapshots.
// Setters never fail; see Config.Validate.
type Builder struct {
	cfg Config
}

// NewBuilder starts from Default.
func NewBuilder() *Builder {
	return &Builder{cfg: Default()}
}

// From starts a builder from an existing snapshot.
func From(c Config) *Builder {
	c.Escalation = c.EscalationArgs()
	return &Builder{cfg: c}
}

// ConfigPath sets the destination root.
func (b *Builder) ConfigPath(path string) *Builder {
	b.cfg.ConfigPath = path
	return b
}

// CacheDir sets the staging directory.
func (b *Builder) CacheDir(dir string) *Builder {
	b.cfg.CacheDir = dir
	return b
}

// Owner sets the uid and gid of installed files.
func (b *Builder) Owner(uid, gid int) *Builder {
	b.cfg.OwnerUID, b.cfg.OwnerGID = uid, gid
	return b
}

// Labels sets the security labels for libraries and plain files.
func (b *Builder) Labels(lib, file string) *Builder {
	b.cfg.LibLabel, b.cfg.FileLabel = lib, file
	return b
}

// HelperName overrides the helper executable name.
func (b *Builder) HelperName(name string) *Builder {
	b.cfg.HelperName = name
	return b
}

// HelperChecksum pins the helper's SHA256.
func (b *Builder) HelperChecksum(sha256 string) *Builder {
	b.cfg.HelperSHA256 = sha256
	return b
}

// HelperKeyring sets the keyring used to check the helper's signature.
func (b *Builder) HelperKeyring(path string) *Builder {
	b.cfg.HelperKeyring = path
	return b
}

// Elevated selects root execution of the helper.
func (b *Builder) Elevated(elevated bool) *Builder {
	b.cfg.Elevated = elevated
	return b
}

// Escalation sets the argv prefix for elevated execution.
func (b *Builder) Escalation(argv ...string) *Builder {
	b.cfg.Escalation = append([]string(nil), argv...)
	return b
}

// Timeout bounds each helper invocation.
func (b *Builder) Timeout(d time.Duration) *Builder {
	b.cfg.Timeout = d
	return b
}

// Build returns a snapshot. Later setter calls do not affect it.
func (b *Builder) Build() Config {
	c := b.cfg
	c.Escalation = b.cfg.EscalationArgs()
	return c
}
