package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/abi"
	"github.com/ZebulonRouseFrantzich/libinstall/internal/state"
)

var (
	statusLibs  []string
	statusFiles []string
)

// statusReport is what `libinstall status` prints.
type statusReport struct {
	ConfigPath string          `json:"config_path" yaml:"config_path"`
	ABI        abiReport       `json:"abi" yaml:"abi"`
	Libraries  map[string]bool `json:"libraries,omitempty" yaml:"libraries,omitempty"`
	Files      map[string]bool `json:"files,omitempty" yaml:"files,omitempty"`
	Installed  bool            `json:"installed" yaml:"installed"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether libraries and files are installed",
	Long: `status checks the installation root directly; it never runs the helper
and needs no privilege. A library counts as installed only when it is present
for every supported architecture.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, profile, err := loadSettings(cmd.Context(), opts)
		if err != nil {
			return err
		}
		report := buildStatus(state.New(cfg.ConfigPath, profile), statusLibs, statusFiles)
		return render(cmd.OutOrStdout(), opts.output, report, report.writeText)
	},
}

func init() {
	statusCmd.Flags().StringSliceVar(&statusLibs, "lib", nil, "library name to check (repeatable)")
	statusCmd.Flags().StringSliceVar(&statusFiles, "file", nil, "file name to check (repeatable)")
	rootCmd.AddCommand(statusCmd)
}

func buildStatus(q state.Query, libs, files []string) statusReport {
	report := statusReport{
		ConfigPath: q.ConfigPath,
		ABI:        newABIReport(q.Profile),
		Installed:  true,
	}
	if len(libs) > 0 {
		report.Libraries = make(map[string]bool, len(libs))
		for _, name := range libs {
			ok := q.IsLibraryInstalled(name)
			report.Libraries[name] = ok
			report.Installed = report.Installed && ok
		}
	}
	if len(files) > 0 {
		report.Files = make(map[string]bool, len(files))
		for _, name := range files {
			report.Files[name] = q.IsFileInstalled(name)
		}
		report.Installed = report.Installed && q.AreFilesInstalled(files...)
	}
	if q.ConfigPath == "" {
		report.Installed = false
	}
	return report
}

func (r statusReport) writeText(w io.Writer) error {
	path := r.ConfigPath
	if path == "" {
		path = "(not set)"
	}
	fmt.Fprintf(w, "Installation root: %s\n", path)
	fmt.Fprintf(w, "ABI: %s (%s)\n", r.ABI.RunningABI, joinSegments(r.ABI))

	for _, section := range []struct {
		title string
		items map[string]bool
	}{{"Libraries", r.Libraries}, {"Files", r.Files}} {
		if len(section.items) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s:\n", section.title)
		names := make([]string, 0, len(section.items))
		for name := range section.items {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			mark := "✗"
			if section.items[name] {
				mark = "✓"
			}
			fmt.Fprintf(w, "  %s %s\n", mark, name)
		}
	}

	_, err := fmt.Fprintf(w, "Installed: %s\n", yesNo(r.Installed))
	return err
}

func newABIReport(p abi.Profile) abiReport {
	r := abiReport{
		RunningABI:    p.RunningABI,
		IsX86:         p.IsX86,
		Supports64Bit: p.Supports64Bit,
		Path32:        p.Path32,
	}
	if p.Supports64Bit {
		r.Path64 = p.Path64
	}
	return r
}

func joinSegments(r abiReport) string {
	if r.Path64 == "" {
		return r.Path32
	}
	return r.Path32 + ", " + r.Path64
}
