package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yairfalse/corestab/internal/output"
	"github.com/yairfalse/corestab/pkg/persistence/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show per-core totals collected by previous scans",
	Long: `History reads the SQLite database written by "corestab scan --history-db"
and prints how many faults each core has accumulated, including boots that
have since rotated out of the journal.`,

	Example: `  corestab history --history-db /var/lib/corestab/history.db`,

	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.HistoryDB == "" {
			return errors.New("no history database configured; pass --history-db or set history_db")
		}

		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		store, err := history.Open(cfg.HistoryDB, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		counts, err := store.CountByCore(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(counts) == 0 {
			fmt.Fprintf(out, "%s no faults recorded\n", output.Colors.Success(output.Icons.Success))
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SOCKET\tCORE\tEVENTS\tBOOTS")
		for _, c := range counts {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", c.Socket, c.Core, c.Events, c.Boots)
		}
		return tw.Flush()
	},
}
