package sinks

import (
	"context"
	"fmt"

	"github.com/nerrad567/wardrive-core/internal/catalog"
	"github.com/nerrad567/wardrive-core/internal/infrastructure/logging"
	"github.com/nerrad567/wardrive-core/internal/survey"
)

// CatalogSink persists runs and merges their networks.
type CatalogSink struct {
	repo   catalog.Repository
	logger *logging.Logger
}

var _ survey.Sink = (*CatalogSink)(nil)

// NewCatalogSink creates a sink writing to repo.
func NewCatalogSink(repo catalog.Repository, logger *logging.Logger) *CatalogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &CatalogSink{repo: repo, logger: logger}
}

// Name implements survey.Sink.
func (s *CatalogSink) Name() string { return "catalog" }

// Handle records the run. Successful runs also fold their records into the
// networks table.
func (s *CatalogSink) Handle(ctx context.Context, res *survey.Result) error {
	if err := s.repo.RecordRun(ctx, RunFromResult(res)); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	if !res.Succeeded() {
		return nil
	}

	merged, err := s.repo.UpsertNetworks(ctx, res.RunID, res.FinishedAt, Observations(res.Records))
	if err != nil {
		return fmt.Errorf("merging networks: %w", err)
	}
	s.logger.Debug("networks merged", "run_id", res.RunID, "networks", merged)
	return nil
}

// RunFromResult maps a conversion result onto a catalog run.
func RunFromResult(res *survey.Result) *catalog.Run {
	return &catalog.Run{
		ID:         res.RunID,
		Source:     res.Source,
		Output:     res.Output,
		Format:     string(res.Format),
		Status:     res.Status,
		Records:    len(res.Records),
		Attempted:  res.Stats.Attempted,
		Failed:     res.Stats.Failed,
		Error:      res.Error,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}
}

// Observations converts records to catalog observations. Records without a
// BSSID are kept here and skipped by the repository.
func Observations(records []survey.Record) []catalog.Observation {
	obs := make([]catalog.Observation, 0, len(records))
	for _, r := range records {
		obs = append(obs, catalog.Observation{
			BSSID:      r.BSSID,
			SSID:       r.SSID,
			Encryption: r.Encryption,
			Channel:    r.Channel,
			Type:       r.Type,
			Signal:     parseInt(r.Signal),
			Latitude:   parseFloat(r.Latitude),
			Longitude:  parseFloat(r.Longitude),
			Altitude:   parseFloat(r.Altitude),
		})
	}
	return obs
}
