package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/abi"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/config"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/installer"
)

// Environment variables read for flag defaults.
const (
	EnvConfig   = "LIBINSTALL_CONFIG"
	EnvArchive  = "LIBINSTALL_ARCHIVE"
	EnvLogLevel = "LIBINSTALL_LOG_LEVEL"
)

// Detector modes.
const (
	detectAuto     = "auto"
	detectProperty = "property"
	detectHost     = "host"
)

// options holds the global flag values.
type options struct {
	configFile string
	archive    string
	configPath string
	cacheDir   string
	elevated   bool
	noElevate  bool
	timeout    time.Duration
	detector   string
	output     string
	logLevel   string
	logFile    string
}

var (
	opts     options
	logger   config.Logger = config.NopLogger()
	closeLog               = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "libinstall",
	Short: "Install native libraries into protected locations",
	Long: `libinstall stages architecture-specific libraries and files from a package
archive and deploys them through the hookinstall helper, optionally with
elevated privilege.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, closer, err := newLogger(opts.logLevel, opts.logFile)
		if err != nil {
			return err
		}
		logger, closeLog = l, closer
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", envOr(EnvConfig, defaultConfigFile()), "Lua configuration file")
	flags.StringVarP(&opts.archive, "archive", "a", os.Getenv(EnvArchive), "package archive holding the payloads")
	flags.StringVar(&opts.configPath, "config-path", "", "installation root (overrides the config file)")
	flags.StringVar(&opts.cacheDir, "cache-dir", "", "staging directory (overrides the config file)")
	flags.BoolVar(&opts.elevated, "elevated", false, "run the helper with elevated privilege")
	flags.BoolVar(&opts.noElevate, "no-elevate", false, "run the helper without elevated privilege")
	flags.DurationVar(&opts.timeout, "timeout", 0, "helper timeout (overrides the config file)")
	flags.StringVar(&opts.detector, "detector", detectAuto, "ABI detection: auto, property or host")
	flags.StringVarP(&opts.output, "output", "o", "text", "output format: text, json or yaml")
	flags.StringVar(&opts.logLevel, "log-level", envOr(EnvLogLevel, "warn"), "log level")
	flags.StringVar(&opts.logFile, "log-file", "", "write logs to a rotating file instead of stderr")
	rootCmd.MarkFlagsMutuallyExclusive("elevated", "no-elevate")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "libinstall", "libinstall.lua")
}

// detector returns the ABI detector selected by mode.
func detector(mode string) (abi.Detector, error) {
	switch mode {
	case detectProperty:
		return abi.NewPropertyDetector(), nil
	case detectHost:
		return abi.NewHostDetector(), nil
	case detectAuto, "":
		return fallbackDetector{primary: abi.NewPropertyDetector(), fallback: abi.NewHostDetector()}, nil
	default:
		return nil, fmt.Errorf("unknown detector %q", mode)
	}
}

// fallbackDetector uses the Android property reader and falls back to the
// host kernel architecture off-device.
type fallbackDetector struct {
	primary  abi.Detector
	fallback abi.Detector
}

func (d fallbackDetector) Detect(ctx context.Context) (abi.Profile, error) {
	p, err := d.primary.Detect(ctx)
	if err == nil {
		return p, nil
	}
	logger.Debug("property detection failed, using host", "error", err)
	return d.fallback.Detect(ctx)
}

// loadSettings detects the device profile and builds the configuration from
// defaults, the Lua file and flag overrides, in that order.
func loadSettings(ctx context.Context, o options) (config.Config, abi.Profile, error) {
	det, err := detector(o.detector)
	if err != nil {
		return config.Config{}, abi.Profile{}, err
	}
	profile, err := det.Detect(ctx)
	if err != nil {
		return config.Config{}, abi.Profile{}, fmt.Errorf("detect abi: %w", err)
	}

	cfg := config.Default()
	if o.configFile != "" {
		parsed, err := config.NewParser(det).ParseFile(ctx, o.configFile, cfg)
		switch {
		case err == nil:
			cfg = parsed
			logger.Debug("loaded config", "path", o.configFile)
		case errors.Is(err, os.ErrNotExist):
			logger.Debug("no config file", "path", o.configFile)
		default:
			return config.Config{}, abi.Profile{}, err
		}
	}

	b := config.From(cfg)
	if o.configPath != "" {
		b.ConfigPath(o.configPath)
	}
	if o.cacheDir != "" {
		b.CacheDir(o.cacheDir)
	}
	if o.elevated {
		b.Elevated(true)
	}
	if o.noElevate {
		b.Elevated(false)
	}
	if o.timeout > 0 {
		b.Timeout(o.timeout)
	}

	return b.Build(), profile, nil
}

// newInstaller loads settings and creates an Installer for the archive flag.
func newInstaller(ctx context.Context) (*installer.Installer, error) {
	cfg, profile, err := loadSettings(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.archive == "" {
		return nil, fmt.Errorf("%w: no package archive given (use --archive or %s)", config.ErrConfiguration, EnvArchive)
	}
	return installer.New(cfg, opts.archive, profile, installer.WithLogger(logger)), nil
}
