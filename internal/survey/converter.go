package survey

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/wardrive-core/internal/infrastructure/logging"
)

// Options configures a Converter.
type Options struct {
	// SampleSize is the detection sample length. Zero means DefaultSampleSize.
	SampleSize int

	// Table controls output tables. Its Logger defaults to the converter's.
	Table TableOptions

	// Sinks receive every conversion attempt.
	Sinks []Sink
}

// Converter runs detect, extract, normalize and write for single files and
// folders. It keeps no per-call state, so one Converter may serve
// concurrent callers.
type Converter struct {
	detector *Detector
	registry *Registry
	table    TableOptions
	sinks    []Sink
	logger   *logging.Logger
	now      func() time.Time
}

// NewConverter creates a Converter. A nil registry means DefaultRegistry.
func NewConverter(registry *Registry, logger *logging.Logger, opts Options) *Converter {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if logger == nil {
		logger = logging.Default()
	}
	table := opts.Table
	if table.Logger == nil {
		table.Logger = logger
	}
	return &Converter{
		detector: NewDetector(opts.SampleSize, logger),
		registry: registry,
		table:    table,
		sinks:    opts.Sinks,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Registry returns the extractor registry in use.
func (c *Converter) Registry() *Registry {
	return c.registry
}

// Convert detects, extracts and normalizes one file without writing it.
//
// The returned Result is never nil. On error it describes the failed
// attempt: ErrFileNotFound for a missing input, ErrNoRecords when nothing
// could be extracted.
func (c *Converter) Convert(ctx context.Context, path string) (*Result, error) {
	return c.ConvertAs(ctx, path, path)
}

// ConvertAs is Convert for a staged copy of a file: path is read, source is
// what the Result and every sink report. Used for uploads, whose temp path
// is gone once the request ends.
func (c *Converter) ConvertAs(ctx context.Context, path, source string) (*Result, error) {
	res, err := c.convert(ctx, path, source)
	c.publish(ctx, res)
	return res, err
}

// ConvertFile converts one file and writes the table to out. An empty out
// means DefaultOutputPath(in).
func (c *Converter) ConvertFile(ctx context.Context, in, out string) (*Result, error) {
	if out == "" {
		out = DefaultOutputPath(in)
	}

	res, err := c.convert(ctx, in, in)
	if err == nil {
		res.Output = out
		if werr := WriteFile(out, res.Records, c.table); werr != nil {
			c.logger.Error("writing output failed", "run_id", res.RunID, "output", out, "error", werr)
			err = c.fail(res, werr)
		}
	}

	c.publish(ctx, res)
	return res, err
}

// WriteRecords writes records as a table using the converter's table options.
func (c *Converter) WriteRecords(w io.Writer, records []Record) error {
	return WriteTable(w, records, c.table)
}

// DefaultOutputPath swaps the input extension for .csv. A .csv input gets a
// "_converted" suffix so it is never overwritten.
func DefaultOutputPath(in string) string {
	base := strings.TrimSuffix(in, filepath.Ext(in))
	if strings.EqualFold(filepath.Ext(in), ".csv") {
		return base + "_converted.csv"
	}
	return base + ".csv"
}

func (c *Converter) convert(ctx context.Context, path, source string) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		Source:    source,
		Format:    FormatUnknown,
		StartedAt: c.now(),
	}

	if err := ctx.Err(); err != nil {
		return res, c.fail(res, err)
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return res, c.fail(res, fmt.Errorf("%w: %s", ErrFileNotFound, path))
	}

	log := c.logger.With("run_id", res.RunID, "file", path)
	log.Info("converting file", "size_mb", fmt.Sprintf("%.2f", float64(info.Size())/bytesPerMB))

	res.Format = c.detector.DetectFile(path)
	log.Info("format detected", "format", res.Format)

	extractor, dedicated := c.registry.Resolve(res.Format)
	if !dedicated {
		log.Warn("no dedicated extractor, using generic text parser", "format", res.Format)
		res.warn(WarnFormatFallback, fmt.Sprintf("format %s parsed with the generic text heuristic", res.Format))
	}

	ext := c.extract(log, res, extractor, path)

	res.Stats = ext.stats()
	if res.Stats.Failed > 0 {
		res.warn(WarnUnitsSkipped, fmt.Sprintf("%d of %d units yielded no record", res.Stats.Failed, res.Stats.Attempted))
	}
	log.Info("records extracted", "units", res.Stats.Attempted, "records", res.Stats.Succeeded)

	if len(ext.Records) == 0 {
		return res, c.fail(res, fmt.Errorf("%w: %s", ErrNoRecords, path))
	}

	res.Records = NormalizeAll(ext.Records)
	res.Status = StatusSucceeded
	res.FinishedAt = c.now()
	return res, nil
}

// extract runs the extractor and turns any failure into a warning and an
// empty extraction.
func (c *Converter) extract(log *logging.Logger, res *Result, extractor Extractor, path string) *Extraction {
	if extractor == nil {
		res.warn(WarnExtractFailed, fmt.Sprintf("no extractor for format %s", res.Format))
		return &Extraction{}
	}

	ext, err := extractor.Extract(path)
	if err != nil {
		log.Warn("extraction failed", "format", res.Format, "error", err)
		res.warn(WarnExtractFailed, err.Error())
		return &Extraction{}
	}
	if ext == nil {
		return &Extraction{}
	}
	return ext
}

func (c *Converter) fail(res *Result, err error) error {
	res.Status = StatusFailed
	res.Error = err.Error()
	res.FinishedAt = c.now()
	return err
}

// publish hands the result to every sink. Sink failures are logged and
// recorded as warnings; they never fail the conversion.
func (c *Converter) publish(ctx context.Context, res *Result) {
	for _, s := range c.sinks {
		if err := s.Handle(ctx, res); err != nil {
			c.logger.Warn("sink failed", "sink", s.Name(), "run_id", res.RunID, "error", err)
			res.warn(WarnSinkFailed, fmt.Sprintf("%s: %v", s.Name(), err))
		}
	}
}
