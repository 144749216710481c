package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"basic-cleaning/models"
	"basic-cleaning/storage"
	"basic-cleaning/utils"
)

// JobType tags every run record produced by this step.
const JobType = "basic_cleaning"

// finishTimeout bounds the final run update, which must still go out after
// the run context was cancelled.
const finishTimeout = 10 * time.Second

// Params are the command line arguments of one cleaning run.
type Params struct {
	InputArtifact     string
	OutputArtifact    string
	OutputType        string
	OutputDescription string
	MinPrice          float64
	MaxPrice          float64
	GeoFilter         bool
}

// Validate checks required fields. min > max is allowed and simply yields an
// empty output.
func (p Params) Validate() error {
	var errs []error
	required := []struct{ name, value string }{
		{"input_artifact", p.InputArtifact},
		{"output_artifact", p.OutputArtifact},
		{"output_type", p.OutputType},
		{"output_description", p.OutputDescription},
	}
	for _, f := range required {
		if f.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", f.name))
		}
	}
	if !isFinite(p.MinPrice) {
		errs = append(errs, fmt.Errorf("min_price must be finite, got %v", p.MinPrice))
	}
	if !isFinite(p.MaxPrice) {
		errs = append(errs, fmt.Errorf("max_price must be finite, got %v", p.MaxPrice))
	}
	return errors.Join(errs...)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (p Params) config() map[string]any {
	return map[string]any{
		"input_artifact":     p.InputArtifact,
		"output_artifact":    p.OutputArtifact,
		"output_type":        p.OutputType,
		"output_description": p.OutputDescription,
		"min_price":          p.MinPrice,
		"max_price":          p.MaxPrice,
		"geo_filter":         p.GeoFilter,
	}
}

// BasicCleaning downloads the input artifact, cleans it and logs the result
// as a new artifact.
type BasicCleaning struct {
	store      storage.ArtifactStore
	logger     *utils.Logger
	insights   *InsightService
	metrics    *utils.RunMetrics
	outputPath string
}

// NewBasicCleaning wires the runner; outputPath is where the cleaned CSV is
// written before upload.
func NewBasicCleaning(store storage.ArtifactStore, logger *utils.Logger, outputPath string) *BasicCleaning {
	return &BasicCleaning{
		store:      store,
		logger:     logger,
		insights:   NewInsightService(logger),
		outputPath: outputPath,
	}
}

// WithMetrics makes Run record its counters on m.
func (b *BasicCleaning) WithMetrics(m *utils.RunMetrics) *BasicCleaning {
	b.metrics = m
	return b
}

// Run executes the step once. Any failure aborts the run, marks it failed
// and is returned as is.
func (b *BasicCleaning) Run(ctx context.Context, p Params) (*models.CleaningReport, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("basic_cleaning: invalid parameters: %w", err)
	}

	run := &models.Run{
		ID:        uuid.NewString(),
		JobType:   JobType,
		Config:    p.config(),
		Status:    models.RunRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := b.store.StartRun(ctx, run); err != nil {
		return nil, fmt.Errorf("basic_cleaning: start run: %w", err)
	}
	b.logger.Info("[basic_cleaning] Run %s started", run.ID)

	report, runErr := b.execute(ctx, run, p)

	finished := time.Now().UTC()
	run.FinishedAt = &finished
	run.Status = models.RunFinished
	if runErr != nil {
		run.Status = models.RunFailed
		run.Error = runErr.Error()
	}

	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()
	if err := b.store.FinishRun(finishCtx, run); err != nil {
		if runErr != nil {
			return nil, errors.Join(runErr, fmt.Errorf("basic_cleaning: finish run: %w", err))
		}
		return nil, fmt.Errorf("basic_cleaning: finish run: %w", err)
	}
	if runErr != nil {
		return nil, runErr
	}

	if b.metrics != nil {
		b.metrics.MarkSuccess(run.StartedAt)
	}
	b.logger.Info("[basic_cleaning] Run %s finished — %s", run.ID, report.Output.Ref())
	return report, nil
}

func (b *BasicCleaning) execute(ctx context.Context, run *models.Run, p Params) (*models.CleaningReport, error) {
	b.logger.Info("[basic_cleaning] Downloading artifact %s", p.InputArtifact)
	inputPath, err := b.store.UseArtifact(ctx, run, p.InputArtifact)
	if err != nil {
		return nil, fmt.Errorf("basic_cleaning: use artifact: %w", err)
	}

	ds, err := storage.ReadDataset(inputPath)
	if err != nil {
		return nil, fmt.Errorf("basic_cleaning: %w", err)
	}

	cleaner := NewCleaner(b.logger)
	if p.GeoFilter {
		cleaner.WithGeoFilter(NYCBounds)
	}
	cleaned, report, err := cleaner.CleanWithReport(ds, models.Bounds{Min: p.MinPrice, Max: p.MaxPrice})
	if err != nil {
		return nil, fmt.Errorf("basic_cleaning: %w", err)
	}
	report.RunID = run.ID
	b.insights.Generate(cleaned, report)
	b.record(report)

	b.logger.Info("[basic_cleaning] Saving cleaned dataset to %s", b.outputPath)
	if err := storage.WriteDataset(b.outputPath, cleaned); err != nil {
		return nil, fmt.Errorf("basic_cleaning: %w", err)
	}

	logged, err := b.store.LogArtifact(ctx, run, &models.Artifact{
		Name:        p.OutputArtifact,
		Type:        p.OutputType,
		Description: p.OutputDescription,
		File:        b.outputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("basic_cleaning: log artifact: %w", err)
	}
	b.logger.Info("[basic_cleaning] Logged artifact %s (%d bytes)", logged.Ref(), logged.Size)

	report.Output = logged
	return report, nil
}

func (b *BasicCleaning) record(r *models.CleaningReport) {
	if b.metrics == nil {
		return
	}
	b.metrics.RowsIn.Set(float64(r.RowsIn))
	b.metrics.RowsOut.Set(float64(r.RowsOut))
	b.metrics.RowsDropped.WithLabelValues("missing_price").Set(float64(r.DroppedMissing))
	b.metrics.RowsDropped.WithLabelValues("out_of_bounds").Set(float64(r.DroppedOutOfBounds))
	b.metrics.RowsDropped.WithLabelValues("geo").Set(float64(r.DroppedGeo))
	b.metrics.InvalidDate.Set(float64(r.InvalidLastReview))
}

// Insights exposes the report printer used by the CLI.
func (b *BasicCleaning) Insights() *InsightService {
	return b.insights
}
