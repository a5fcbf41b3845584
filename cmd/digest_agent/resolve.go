package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jonathan/story-digest/internal/assets"
	"github.com/jonathan/story-digest/internal/observability"
	"github.com/jonathan/story-digest/internal/pipeline"
	"github.com/jonathan/story-digest/internal/schemas"
	"github.com/jonathan/story-digest/internal/types"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve references into story records",
	Long:  "Reads a JSON array of references, resolves each into a story record using the asset cache, and writes the records as a JSON array.",
	RunE:  runResolve,
}

var (
	resolveInput       string
	resolveOutput      string
	resolveWorkers     int
	resolveMetricsFile string
)

func init() {
	resolveCmd.Flags().StringVarP(&resolveInput, "in", "i", "", "Path to references JSON file (required)")
	resolveCmd.Flags().StringVarP(&resolveOutput, "out", "o", "", "Path to output stories JSON file (required)")
	resolveCmd.Flags().IntVarP(&resolveWorkers, "workers", "w", 0, "Concurrent resolutions (overrides config)")
	resolveCmd.Flags().StringVar(&resolveMetricsFile, "metrics-file", "", "Write Prometheus metrics to this textfile after the run")

	if err := resolveCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}
	if err := resolveCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if resolveWorkers > 0 {
		cfg.Workers = resolveWorkers
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	refs, err := readReferences(resolveInput)
	if err != nil {
		return err
	}
	items, err := pipeline.Items(refs)
	if err != nil {
		return fmt.Errorf("references file %s is invalid: %w", resolveInput, err)
	}

	runID := uuid.New()
	logger := observability.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel).
		With().
		Str("run_id", runID.String()).
		Logger()
	metrics := observability.NewMetrics()

	env, cleanup := buildEnv(cfg, metrics, logger)
	defer cleanup()

	printer := observability.NewPrinter(cmd.OutOrStdout())
	runner := &pipeline.Runner{
		Dispatcher: pipeline.DefaultDispatcher(),
		Env:        env,
		Workers:    cfg.Workers,
		OnProgress: func(e pipeline.ProgressEvent) {
			logger.Info().
				Str("index", e.Index.String()).
				Str("handler", e.Handler).
				Msgf("resolved %d/%d", e.Position+1, e.Total)
		},
	}

	logger.Info().Int("references", len(refs)).Int("workers", cfg.Workers).Str("asset_dir", cfg.AssetDir).Msg("resolving batch")
	stories := runner.Run(cmd.Context(), items)

	if err := writeStories(resolveOutput, stories); err != nil {
		return err
	}

	if verbose {
		for i, story := range stories {
			printer.PrintStory(items[i].Index, &story)
		}
		printer.PrintBatchSummary(stories, cfg.SentinelImage)
	}

	if resolveMetricsFile != "" {
		if err := metrics.WriteTextfile(resolveMetricsFile); err != nil {
			logger.Warn().Err(err).Str("path", resolveMetricsFile).Msg("failed to write metrics textfile")
		}
	}

	logger.Info().Str("out", resolveOutput).Int("stories", len(stories)).Msg("batch written")
	return nil
}

// readReferences loads and schema-checks the reference input file.
func readReferences(path string) ([]types.Reference, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read references file: %w", err)
	}
	if err := schemas.ValidateReferences(data); err != nil {
		return nil, fmt.Errorf("references file %s is invalid: %w", path, err)
	}

	var refs []types.Reference
	if err := json.Unmarshal(data, &refs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal references JSON: %w", err)
	}
	return refs, nil
}

// writeStories writes the records with the same encoding as structured cache assets.
func writeStories(path string, stories []types.StoryRecord) error {
	data, err := assets.MarshalStructured(stories)
	if err != nil {
		return fmt.Errorf("failed to marshal stories JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
