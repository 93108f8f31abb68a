package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"streampro-lake/internal/config"
	"streampro-lake/internal/domain"
	"streampro-lake/internal/etl"
	"streampro-lake/internal/query"
	"streampro-lake/internal/storage"
)

func newToRawCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "to-raw",
		Short: "Copy landing files into the raw layer",
		Long:  "Copies dated landing files into the raw layer under an ingestion_date partition.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(opts)
			if err != nil {
				return err
			}
			if opts.sourceS3 != "" {
				cfg.LandingPrefix = opts.sourceS3
			}
			if opts.targetS3 != "" {
				cfg.RawPrefix = opts.targetS3
			}

			gw, err := storage.NewGateway(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("connect storage: %w", err)
			}
			defer gw.Close()

			result := etl.Run(cmd.Context(), etl.NewLandingToRaw(gw, cfg, logger), logger)
			logJobResult(logger, result)
			if !result.IsSuccess() {
				return fmt.Errorf("job %s failed: %s", result.JobID, result.Error)
			}
			return nil
		},
	}
}

func newToTrustedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "to-trusted",
		Short: "Convert raw files into trusted parquet tables",
		Long:  "Reads raw CSV/JSONL files, writes snappy parquet to the trusted layer, and registers views.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(opts)
			if err != nil {
				return err
			}
			if opts.sourceS3 != "" {
				cfg.RawPrefix = opts.sourceS3
			}
			if opts.targetS3 != "" {
				cfg.TrustedPrefix = opts.targetS3
			}

			gw, err := storage.NewGateway(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("connect storage: %w", err)
			}
			defer gw.Close()
			engine := query.NewEngine(gw.DB())

			result := etl.Run(cmd.Context(), etl.NewRawToTrusted(gw, engine, cfg, logger), logger)
			logJobResult(logger, result)
			if !result.IsSuccess() {
				return fmt.Errorf("job %s failed: %s", result.JobID, result.Error)
			}
			return nil
		},
	}
}

func newPipelineCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline",
		Short: "Run the full landing→raw→trusted pipeline",
		Long:  "Runs the landing→raw stage followed by raw→trusted, stopping if the first stage fails.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadRuntime(opts)
			if err != nil {
				return err
			}

			gw, err := storage.NewGateway(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("connect storage: %w", err)
			}
			defer gw.Close()
			engine := query.NewEngine(gw.DB())

			results, ok := buildPipeline(gw, engine, cfg, logger).Run(cmd.Context())
			for _, result := range results {
				logJobResult(logger, result)
			}
			if !ok {
				last := results[len(results)-1]
				return fmt.Errorf("pipeline aborted at job %s: %s", last.JobID, last.Error)
			}
			return nil
		},
	}
}

// buildPipeline wires both stages against shared gateways.
func buildPipeline(gw *storage.Gateway, engine *query.Engine, cfg *config.Config, logger *slog.Logger) *etl.Pipeline {
	toRaw := etl.NewLandingToRaw(gw, cfg, logger)
	toTrusted := etl.NewRawToTrusted(gw, engine, cfg, logger)

	return etl.NewPipeline(logger).
		Add(toRaw.ID(), func(ctx context.Context) domain.JobResult {
			return etl.Run(ctx, toRaw, logger)
		}).
		Add(toTrusted.ID(), func(ctx context.Context) domain.JobResult {
			return etl.Run(ctx, toTrusted, logger)
		})
}

// logJobResult emits one structured summary line per finished job.
func logJobResult(logger *slog.Logger, result domain.JobResult) {
	attrs := []any{
		"job_id", result.JobID,
		"run_id", result.RunID,
		"status", string(result.Status),
		"duration_s", result.DurationSeconds,
		"rows_processed", result.Metadata[domain.MetaRowsProcessed],
	}
	if result.IsSuccess() {
		logger.Info(result.Message, attrs...)
		return
	}
	attrs = append(attrs, "error", result.Error)
	logger.Error("job failed", attrs...)
}
