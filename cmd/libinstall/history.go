package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ZebulonRouseFrantzich/libinstall/internal/journal"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent install and uninstall operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadSettings(cmd.Context(), opts)
		if err != nil {
			return err
		}
		records, err := journal.Load(cfg.CacheDir)
		if err != nil {
			return err
		}
		if historyLimit > 0 && len(records) > historyLimit {
			records = records[len(records)-historyLimit:]
		}
		if records == nil {
			records = []journal.Record{}
		}
		return render(cmd.OutOrStdout(), opts.output, records, func(w io.Writer) error {
			return writeHistory(w, records)
		})
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "show at most this many records (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func writeHistory(w io.Writer, records []journal.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No operations recorded.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tOPERATION\tARGS\tSTATE\tERROR")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.Local().Format("2006-01-02 15:04:05"),
			r.Operation,
			strings.Join(r.Args, " "),
			r.State,
			firstLine(r.LastError),
		)
	}
	return tw.Flush()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
