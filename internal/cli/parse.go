package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/yairfalse/corestab/internal/output"
	"github.com/yairfalse/corestab/pkg/stability"
)

var (
	parseBoot   int
	parseOutput string
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Extract core-attributed faults from exported kernel log text",
	Long: `Parse reads kernel log lines in journalctl's short format from a file or
stdin and writes the matching records. Useful for logs copied off another
machine or saved before the journal rotated them away.`,

	Example: `  journalctl --dmesg -b -1 | corestab parse --boot -1
  corestab parse --boot -3 saved-dmesg.txt -o faults.json`,

	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()
			in = f
		}

		records, err := parseStream(in, parseBoot)
		if err != nil {
			return err
		}

		if parseOutput == "-" {
			return output.WriteRecords(cmd.OutOrStdout(), records, cfg.Format)
		}
		return output.WriteFile(parseOutput, records, cfg.Format)
	},
}

func init() {
	parseCmd.Flags().IntVarP(&parseBoot, "boot", "b", 0, "boot offset to record for every line")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "-", "output file")
}

// parseStream parses every line of r as kernel log text of one boot
func parseStream(r io.Reader, boot int) ([]stability.Record, error) {
	records := []stability.Record{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if record, ok := stability.ParseLine(scanner.Text(), boot); ok {
			records = append(records, record)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read kernel log: %w", err)
	}

	return records, nil
}
