// Package cli provides the command-line interface for ruledesc.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cvickery/rule-descriptions/internal/cli/commands"
	"github.com/cvickery/rule-descriptions/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ruledesc",
		Short: "ruledesc - Transfer-rule description generator",
		Long: `ruledesc generates one-line descriptions of CUNY transfer rules.

It caches the current course catalog, resolves each rule's source and
destination course references against it, and writes the generated
descriptions back to the rule_descriptions table of the selected schema.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			ctx := context.WithValue(cmd.Context(), commands.ConfigKey{}, cfg)
			ctx = context.WithValue(ctx, commands.LoggerKey{}, logger)
			cmd.SetContext(ctx)

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./ruledesc.yaml)")
	rootCmd.PersistentFlags().StringP("schema", "s", "", "Schema holding the transfer rules (public or an archive schema)")
	rootCmd.PersistentFlags().String("db-host", "", "PostgreSQL host")
	rootCmd.PersistentFlags().Int("db-port", 0, "PostgreSQL port")
	rootCmd.PersistentFlags().String("db-name", "", "Curriculum database name")
	rootCmd.PersistentFlags().String("db-user", "", "PostgreSQL user")
	rootCmd.PersistentFlags().String("db-sslmode", "", "PostgreSQL sslmode")
	rootCmd.PersistentFlags().String("state", "", "Path to the run-history database")
	rootCmd.PersistentFlags().String("anomaly-dir", "", "Directory for per-run anomaly logs")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	// Subcommands
	rootCmd.AddCommand(commands.NewDescribeCommand())
	rootCmd.AddCommand(commands.NewRequirementsCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
