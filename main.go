package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"basic-cleaning/config"
	"basic-cleaning/services"
	"basic-cleaning/storage"
	"basic-cleaning/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var p services.Params

	cmd := &cobra.Command{
		Use:           "basic_cleaning",
		Short:         "Basic data cleaning for the NYC Airbnb dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), config.Load(), p)
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.InputArtifact, "input_artifact", "", "Input artifact to read, e.g. 'sample.csv:latest'")
	f.StringVar(&p.OutputArtifact, "output_artifact", "", "Name for the cleaned dataset artifact to create, e.g. 'clean_sample.csv'")
	f.StringVar(&p.OutputType, "output_type", "", "Artifact type to assign, e.g. 'clean_data'")
	f.StringVar(&p.OutputDescription, "output_description", "", "Short description of the cleaned dataset contents")
	f.Float64Var(&p.MinPrice, "min_price", 0, "Minimum allowed price; rows below this are dropped")
	f.Float64Var(&p.MaxPrice, "max_price", 0, "Maximum allowed price; rows above this are dropped")
	f.BoolVar(&p.GeoFilter, "geo_filter", false, "Also drop rows outside the NYC longitude/latitude box")
	for _, name := range []string{
		"input_artifact", "output_artifact", "output_type", "output_description", "min_price", "max_price",
	} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func run(ctx context.Context, cfg *config.Config, p services.Params) error {
	logger := utils.NewLoggerWithLevel(cfg.LogLevel)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Basic cleaning starting ===")
	logger.Info("Config — backend: %s | input: %s | bounds: [%g, %g] | geo filter: %t",
		cfg.ArtifactBackend, p.InputArtifact, p.MinPrice, p.MaxPrice, p.GeoFilter)

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open artifact store: %v", err)
		return err
	}
	defer store.Close()

	metrics := utils.NewRunMetrics()
	job := services.NewBasicCleaning(store, logger, cfg.OutputPath()).WithMetrics(metrics)

	report, err := job.Run(ctx, p)
	if err != nil {
		logger.Error("Basic cleaning failed: %v", err)
		return err
	}

	if cfg.PushgatewayURL != "" {
		pushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := metrics.Push(pushCtx, cfg.PushgatewayURL, services.JobType, report.RunID); err != nil {
			logger.Warn("Metrics push failed: %v", err)
		}
	}

	job.Insights().Print(os.Stdout, report)
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (storage.ArtifactStore, error) {
	switch cfg.ArtifactBackend {
	case config.BackendFilesystem:
		return storage.NewFilesystemStore(cfg.ArtifactRoot)
	case config.BackendPostgres:
		connCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.PostgresTimeout)*time.Second)
		defer cancel()
		return storage.NewPostgresStore(connCtx, cfg.DSN(), cfg.ArtifactCacheDir)
	default:
		return nil, fmt.Errorf("unknown ARTIFACT_BACKEND %q", cfg.ArtifactBackend)
	}
}
