package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yairfalse/corestab/internal/output"
	"github.com/yairfalse/corestab/pkg/config"
	"github.com/yairfalse/corestab/pkg/journald"
	"github.com/yairfalse/corestab/pkg/metrics"
	"github.com/yairfalse/corestab/pkg/persistence/history"
	"github.com/yairfalse/corestab/pkg/stability"
	"go.uber.org/zap"
)

var scanQuiet bool

// newRunner builds the command runner used by scan and boots
var newRunner = func() journald.Runner { return journald.ExecRunner{} }

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the kernel log of every boot for core-attributed faults",
	Long: `Scan reads "journalctl --dmesg" for each boot listed by "journalctl --list-boots",
keeps the lines the kernel tagged with "(core N, socket M)" and writes them as a
JSON array (default dmesg_logs.json).`,

	Example: `  # Scan every boot into dmesg_logs.json
  corestab scan

  # Only the last five boots, printed to stdout
  corestab scan --max-boots 5 -o -

  # Specific boots, compressed output, node_exporter textfile
  corestab scan --boots 0,-1,-7 -o faults.json.zst --metrics-file /var/lib/node_exporter/corestab.prom`,

	Args: cobra.NoArgs,
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

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary := cmd.ErrOrStderr()
		if scanQuiet {
			summary = io.Discard
		}

		_, err = runScan(ctx, cfg, newRunner(), logger, summary)
		return err
	},
}

func init() {
	defaults := config.DefaultConfig()

	scanCmd.Flags().StringP("output", "o", defaults.Output, `output file ("-" for stdout, ".zst" suffix compresses; dmesg_logs.yaml with --format yaml)`)
	scanCmd.Flags().Int("max-boots", defaults.MaxBoots, "scan only the N most recent boots (-1 for all)")
	scanCmd.Flags().String("boots", defaults.Boots, `boots to scan: "all" or a list like 0,-1,-3`)
	scanCmd.Flags().String("since", "", "passed to journalctl --since")
	scanCmd.Flags().String("until", "", "passed to journalctl --until")
	scanCmd.Flags().String("metrics-file", "", "write per-core counts in Prometheus text format")
	scanCmd.Flags().BoolVarP(&scanQuiet, "quiet", "q", false, "do not print the per-core summary")

	viper.BindPFlag("output", scanCmd.Flags().Lookup("output"))
	viper.BindPFlag("max_boots", scanCmd.Flags().Lookup("max-boots"))
	viper.BindPFlag("boots", scanCmd.Flags().Lookup("boots"))
	viper.BindPFlag("since", scanCmd.Flags().Lookup("since"))
	viper.BindPFlag("until", scanCmd.Flags().Lookup("until"))
	viper.BindPFlag("metrics_file", scanCmd.Flags().Lookup("metrics-file"))
}

// runScan performs a scan and writes every configured sink
func runScan(ctx context.Context, cfg *config.Config, runner journald.Runner, logger *zap.Logger, summary io.Writer) (*stability.Report, error) {
	include, err := cfg.BootIndexes()
	if err != nil {
		return nil, err
	}

	reader := journald.NewReader(&journald.ReaderConfig{
		Command: cfg.Journalctl,
		Since:   cfg.Since,
		Until:   cfg.Until,
	}, runner, logger)

	if !reader.IsAvailable(ctx) {
		return nil, config.NewDependencyError("scan", []string{cfg.Journalctl},
			"corestab reads the systemd journal; install systemd or pass --journalctl")
	}

	scanner := stability.NewScanner(reader, stability.ScanOptions{
		Boots:    include,
		MaxBoots: cfg.MaxBoots,
	}, logger)

	report, err := scanner.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	if err := output.WriteFile(cfg.Output, report.Records, cfg.Format); err != nil {
		return nil, err
	}
	logger.Info("Wrote records",
		zap.String("scan_id", report.ScanID),
		zap.String("path", cfg.Output),
		zap.Int("records", len(report.Records)))

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile, report); err != nil {
			return nil, err
		}
	}

	if cfg.HistoryDB != "" {
		store, err := history.Open(cfg.HistoryDB, logger)
		if err != nil {
			return nil, err
		}
		defer store.Close()

		if _, err := store.Save(ctx, report); err != nil {
			return nil, err
		}
	}

	output.PrintSummary(summary, report)

	return report, nil
}
