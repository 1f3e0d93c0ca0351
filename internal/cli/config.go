package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/yairfalse/corestab/internal/output"
	"github.com/yairfalse/corestab/pkg/config"
	"gopkg.in/yaml.v3"
)

var configAsJSON bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect corestab configuration",
	Long: `Configuration sources (in priority order):
  1. Command line flags
  2. Environment variables (CORESTAB_*)
  3. Configuration file ($HOME/.corestab.yaml or ./.corestab.yaml)
  4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "# from %s\n", used)
		}

		if configAsJSON {
			data, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal configuration: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to marshal configuration: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg *config.Config
			err error
		)
		if len(args) == 1 {
			cfg, err = config.LoadConfig(args[0])
			if err == nil {
				err = cfg.Validate()
			}
		} else {
			_, err = loadConfig()
		}

		out := cmd.OutOrStdout()
		if err == nil {
			fmt.Fprintf(out, "%s configuration is valid\n", output.Colors.Success(output.Icons.Success))
			return nil
		}

		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			printValidationErrors(out, verrs)
		}
		return err
	},
}

func printValidationErrors(w io.Writer, verrs config.ValidationErrors) {
	for _, e := range verrs.Errors {
		fmt.Fprintf(w, "%s %s: %s\n", output.Colors.Error(output.Icons.Error), e.Field, e.Message)
		if e.FixCommand != "" {
			fmt.Fprintf(w, "   try: %s\n", e.FixCommand)
		}
	}

	if suggestions := verrs.GetFixSuggestions(); len(suggestions) > 0 {
		fmt.Fprintf(w, "\n%s Suggestions:\n", output.Colors.Info(output.Icons.Info))
		for _, s := range suggestions {
			fmt.Fprintf(w, "   %s\n", s)
		}
	}
}

func init() {
	configShowCmd.Flags().BoolVar(&configAsJSON, "json", false, "print as JSON instead of YAML")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}
