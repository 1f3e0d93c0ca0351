package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yairfalse/corestab/pkg/config"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "corestab",
	Short: "Find CPU cores the kernel blames for crashes",
	Long: `corestab scans the kernel log of every boot recorded by the systemd journal
and collects faults the kernel attributes to a specific core, e.g.

  foo[1234]: segfault at 0 ... likely on CPU 15 (core 15, socket 0)

A core that keeps showing up across boots is a sign of an unstable
per-core undervolt (curve optimizer) or overclock setting.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := config.DefaultConfig()

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.corestab.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.PersistentFlags().String("journalctl", defaults.Journalctl, "journalctl command")
	rootCmd.PersistentFlags().String("format", defaults.Format, "record format (json, yaml)")
	rootCmd.PersistentFlags().String("history-db", "", "SQLite database collecting records across scans")
	rootCmd.PersistentFlags().String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")

	// Bind flags to viper
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("journalctl", rootCmd.PersistentFlags().Lookup("journalctl"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("history_db", rootCmd.PersistentFlags().Lookup("history-db"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Add subcommands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(bootsCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".corestab")
	}

	viper.SetEnvPrefix("CORESTAB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.ApplyDefaults()
	if viper.GetBool("verbose") {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger. Logs go to stderr so records can be
// written to stdout.
func newLogger(level string) (*zap.Logger, error) {
	logConfig := zap.NewProductionConfig()
	if level == "debug" {
		logConfig = zap.NewDevelopmentConfig()
	}

	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logConfig.Level = lvl
	logConfig.OutputPaths = []string{"stderr"}
	logConfig.ErrorOutputPaths = []string{"stderr"}

	return logConfig.Build()
}
