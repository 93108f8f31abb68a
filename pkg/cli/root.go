// Package cli implements the streampro-lake command-line interface.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"streampro-lake/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// rootOptions holds values of the persistent flags shared by every job
// command.
type rootOptions struct {
	env           string
	ingestionDate string
	sourceS3      string
	targetS3      string
	debug         bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "lake",
		Short:         "StreamPro data lake ETL",
		Long:          "Runs the landing→raw and raw→trusted stages of the StreamPro data lake.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.env, "env", "dev", "Environment config to load (config/<env>.env)")
	rootCmd.PersistentFlags().StringVar(&opts.ingestionDate, "ingestion-date", "", "Ingestion date to process (YYYY-MM-DD, default today)")
	rootCmd.PersistentFlags().StringVar(&opts.sourceS3, "source-s3", "", "Override the source area prefix")
	rootCmd.PersistentFlags().StringVar(&opts.targetS3, "target-s3", "", "Override the target area prefix")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newToRawCmd(opts))
	rootCmd.AddCommand(newToTrustedCmd(opts))
	rootCmd.AddCommand(newPipelineCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "lake version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}

// loadRuntime resolves configuration and logging for a job command. Flag
// values win over config-file and environment values.
func loadRuntime(opts *rootOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.env)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if opts.ingestionDate != "" {
		cfg.IngestionDate = opts.ingestionDate
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	level := cfg.SlogLevel()
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}
