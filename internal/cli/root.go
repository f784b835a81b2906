// Package cli provides the command-line interface for facilitydir.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/leapstack-labs/facilitydir/internal/cli/commands"
	"github.com/leapstack-labs/facilitydir/internal/config"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "facilitydir",
		Short: "facilitydir - searchable facility directory",
		Long: `facilitydir keeps a directory of facilities, their addresses, locations and
amenities in an embedded SQLite database seeded from a dataset file.

Search it from the command line, browse it interactively, or serve it over HTTP.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			res, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			cfg := res.Config

			logger, err := config.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			if res.FileUsed != "" {
				logger.Debug("using config file", "path", res.FileUsed)
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set version template
	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./"+config.ConfigFileName+")")
	rootCmd.PersistentFlags().String("database", "", "Path to the SQLite database")
	rootCmd.PersistentFlags().String("dataset", "", "Seed dataset file (.json, .yaml, .yml)")
	rootCmd.PersistentFlags().Int("page-size", 0, "Rows per page")
	rootCmd.PersistentFlags().Duration("debounce", 0, "Search debounce delay")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text|json|auto)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (table|json|csv|md)")

	// Register completion for enumerated flags
	completions := map[string][]string{
		"output":     config.OutputFormats,
		"log-level":  config.LogLevels,
		"log-format": config.LogFormats,
	}
	for name, values := range completions {
		_ = rootCmd.RegisterFlagCompletionFunc(name, func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
			return values, cobra.ShellCompDirectiveNoFileComp
		})
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit))
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewListCommand())
	rootCmd.AddCommand(commands.NewShowCommand())
	rootCmd.AddCommand(commands.NewAmenitiesCommand())
	rootCmd.AddCommand(commands.NewStatsCommand())
	rootCmd.AddCommand(commands.NewBrowseCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for facilitydir.

To load completions:

Bash:
  $ source <(facilitydir completion bash)

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ facilitydir completion zsh > "${fpath[1]}/_facilitydir"

Fish:
  $ facilitydir completion fish | source

PowerShell:
  PS> facilitydir completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
