// Package installer deploys native payloads from a package archive into
// protected locations through a privileged helper, and removes them again.
//
// Each operation stages what it needs into the cache directory, builds one
// helper command and runs it through an executor. Operations are
// synchronous and return exactly one terminal outcome; see errors.go for
// the error kinds. Presence queries only read the filesystem and never
// fail.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/abi"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/command"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/config"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/executor"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/journal"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/payload"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/state"
)

// Installer performs install and uninstall operations for one archive,
// configuration snapshot and device profile.
type Installer struct {
	cfg       config.Config
	archive   string
	profile   abi.Profile
	exec      executor.Executor
	extractor *payload.Extractor
	verifier  *payload.Verifier
	builder   *command.Builder
	query     state.Query
	logger    config.Logger
	journal   bool

	mu     sync.Mutex
	helper string // staged helper path, empty until first extraction
}

// Option configures an Installer.
type Option func(*Installer)

// WithExecutor replaces the process executor.
func WithExecutor(e executor.Executor) Option {
	return func(i *Installer) {
		if e != nil {
			i.exec = e
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger config.Logger) Option {
	return func(i *Installer) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithJournal enables or disables the operation journal and its lock.
// It is enabled by default.
func WithJournal(enabled bool) Option {
	return func(i *Installer) {
		i.journal = enabled
	}
}

// New creates an Installer reading payloads from archive. Configuration
// problems are reported by the first operation, not here.
func New(cfg config.Config, archive string, profile abi.Profile, opts ...Option) *Installer {
	i := &Installer{
		cfg:       cfg,
		archive:   archive,
		profile:   profile,
		extractor: payload.NewExtractor(payload.Layout{CacheDir: cfg.CacheDir}),
		verifier:  payload.NewVerifier(cfg.HelperSHA256, cfg.HelperKeyring),
		builder:   command.NewBuilder(cfg, profile),
		query:     state.New(cfg.ConfigPath, profile),
		logger:    config.NopLogger(),
		journal:   true,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.exec == nil {
		i.exec = executor.FromConfig(cfg, i.logger)
	}
	return i
}

// Config returns the configuration snapshot.
func (i *Installer) Config() config.Config {
	return i.cfg
}

// Profile returns the ABI facts the installer targets.
func (i *Installer) Profile() abi.Profile {
	return i.profile
}

// InstallLibrary stages lib/<abi>/<name> for every supported architecture
// and copies it into <configPath>/<abi>/<name>.
func (i *Installer) InstallLibrary(ctx context.Context, name string) error {
	return i.installLibrary(ctx, journal.OpInstallLibrary, name, name)
}

// InstallLinkerLibrary installs the linker module built for an SDK level,
// lib<module>-<sdk>.so.
func (i *Installer) InstallLinkerLibrary(ctx context.Context, module string, sdk int) error {
	return i.installLibrary(ctx, journal.OpInstallLinker, abi.LinkerModuleName(module, sdk), module, strconv.Itoa(sdk))
}

func (i *Installer) installLibrary(ctx context.Context, op journal.Operation, name string, args ...string) error {
	return i.perform(ctx, op, args, func() (command.Command, error) {
		cmd, err := i.builder.CopyLibrary(name)
		if err != nil {
			return command.Command{}, err
		}
		staged, err := i.extractor.ExtractForBothArchitectures(i.archive, name, i.profile)
		if err != nil {
			return command.Command{}, err
		}
		i.logger.Debug("staged library", "name", name, "path32", staged.Path32, "path64", staged.Path64)
		return cmd, nil
	})
}

// InstallFiles stages assets/<name> for each name and copies them into
// <configPath>/<name>.
func (i *Installer) InstallFiles(ctx context.Context, names ...string) error {
	return i.perform(ctx, journal.OpInstallFiles, names, func() (command.Command, error) {
		cmd, err := i.builder.CopyFiles(names...)
		if err != nil {
			return command.Command{}, err
		}
		for _, name := range names {
			staged, err := i.extractor.ExtractAsset(i.archive, name)
			if err != nil {
				return command.Command{}, err
			}
			i.logger.Debug("staged file", "name", name, "path", staged)
		}
		return cmd, nil
	})
}

// UninstallLibrary removes the installed library directories.
func (i *Installer) UninstallLibrary(ctx context.Context) error {
	return i.perform(ctx, journal.OpUninstallLibrary, nil, i.builder.RemoveLibrary)
}

// UninstallFiles removes installed plain files. An empty list does nothing
// beyond checking the configuration.
func (i *Installer) UninstallFiles(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return i.checkConfig()
	}
	return i.perform(ctx, journal.OpUninstallFiles, names, func() (command.Command, error) {
		return i.builder.RemoveFiles(names...)
	})
}

// IsLibraryInstalled reports whether the library is present for every
// supported architecture.
func (i *Installer) IsLibraryInstalled(name string) bool {
	return i.query.IsLibraryInstalled(name)
}

// IsLinkerLibraryInstalled reports whether the linker module for sdk is
// installed.
func (i *Installer) IsLinkerLibraryInstalled(module string, sdk int) bool {
	return i.query.IsLibraryInstalled(abi.LinkerModuleName(module, sdk))
}

// IsFileInstalled reports whether a plain file is present.
func (i *Installer) IsFileInstalled(name string) bool {
	return i.query.IsFileInstalled(name)
}

// AreFilesInstalled reports whether every plain file is present.
func (i *Installer) AreFilesInstalled(names ...string) bool {
	return i.query.AreFilesInstalled(names...)
}

func (i *Installer) checkConfig() error {
	if err := i.cfg.RequireConfigPath(); err != nil {
		return err
	}
	return i.cfg.Validate()
}

// perform runs the shared operation sequence: configuration check,
// escalation probe, lock, helper staging, payload staging and command
// execution. stage builds the command and stages any payloads.
func (i *Installer) perform(ctx context.Context, op journal.Operation, args []string, stage func() (command.Command, error)) (err error) {
	if err := i.checkConfig(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return contextError(err)
	}

	if i.cfg.Elevated && !i.exec.CanEscalate(ctx) {
		i.logger.Error("elevated privilege unavailable", "operation", op)
		return ErrPrivilegeUnavailable
	}

	if i.journal {
		lock, lerr := journal.AcquireLock(ctx, i.cfg.CacheDir)
		if lerr != nil {
			i.logger.Error("failed to acquire lock", "error", lerr)
			return lockError(lerr)
		}
		defer lock.Release()

		record := journal.New(op, args...)
		defer func() {
			record.Finish(err)
			if jerr := journal.Append(i.cfg.CacheDir, record); jerr != nil {
				i.logger.Warn("failed to write journal", "error", jerr)
			}
		}()
	}

	if _, err := i.ensureHelper(); err != nil {
		i.logger.Error("failed to stage helper", "error", err)
		return err
	}

	cmd, err := stage()
	if err != nil {
		i.logger.Error("failed to prepare command", "operation", op, "error", err)
		return err
	}

	i.logger.Debug("running helper", "operation", op, "command", cmd.String(), "elevated", i.cfg.Elevated)
	res := i.exec.Run(ctx, cmd.Args(), i.cfg.Elevated)

	switch res.Status {
	case executor.StatusSuccess:
		i.logger.Info("operation completed", "operation", op)
		return nil
	case executor.StatusUnavailable:
		i.logger.Error("elevated privilege unavailable", "operation", op)
		return ErrPrivilegeUnavailable
	default:
		execErr := newExecutionError(res.Output)
		i.logger.Error("helper failed", "operation", op, "detail", execErr.Detail)
		return execErr
	}
}

// ensureHelper stages and verifies the helper once. It is staged again if
// the staged copy has disappeared.
func (i *Installer) ensureHelper() (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.helper != "" {
		if _, err := os.Stat(i.helper); err == nil {
			return i.helper, nil
		}
		i.helper = ""
	}

	path, err := i.extractor.ExtractHelper(i.archive, i.profile, i.cfg.HelperName)
	if err != nil {
		return "", err
	}

	if i.verifier.Enabled() {
		if err := i.verifyHelper(path); err != nil {
			os.Remove(path)
			return "", err
		}
	}

	i.helper = path
	return path, nil
}

func (i *Installer) verifyHelper(path string) error {
	var sigPath string
	if i.verifier.RequiresSignature() {
		sigPath = path + payload.SignatureSuffix
		entry := payload.HelperEntry(i.profile.RunningABI, i.cfg.HelperName) + payload.SignatureSuffix
		if err := i.extractor.Extract(i.archive, entry, sigPath); err != nil {
			if errors.Is(err, payload.ErrEntryNotFound) {
				return fmt.Errorf("%w: signature %s not in archive", payload.ErrVerification, entry)
			}
			return err
		}
		defer os.Remove(sigPath)
	}

	method, err := i.verifier.Verify(path, sigPath)
	if err != nil {
		return err
	}
	i.logger.Info("helper verified", "method", method.String())
	return nil
}
