package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/yairfalse/corestab/pkg/journald"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var bootsCmd = &cobra.Command{
	Use:   "boots",
	Short: "List the boots recorded in the journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, err := newLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		defer logger.Sync()

		reader := journald.NewReader(&journald.ReaderConfig{Command: cfg.Journalctl}, newRunner(), logger)
		boots, err := reader.ListBoots(cmd.Context())
		if err != nil {
			if len(boots) == 0 {
				return err
			}
			logger.Warn("Boot list incomplete", zap.Error(err))
		}

		out := cmd.OutOrStdout()
		if cmd.Flags().Changed("format") {
			return writeBoots(out, boots, cfg.Format)
		}

		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "IDX\tBOOT ID\tFIRST ENTRY\tLAST ENTRY")
		for _, b := range boots {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.Index, b.ID, b.FirstEntry, b.LastEntry)
		}
		return tw.Flush()
	},
}

func writeBoots(w io.Writer, boots []journald.Boot, format string) error {
	if boots == nil {
		boots = []journald.Boot{}
	}
	if format == "yaml" {
		return yaml.NewEncoder(w).Encode(boots)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(boots)
}
