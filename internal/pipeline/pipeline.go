package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/fire-extent-etl/internal/domain"
	"github.com/couchcryptid/fire-extent-etl/internal/observability"
	"github.com/couchcryptid/storm-data-shared/retry"
	"golang.org/x/sync/errgroup"
)

// BatchExtractor reads up to batchSize occurrences from the source. It
// returns io.EOF once the source is exhausted.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.Occurrence, error)
}

// Transformer resolves one occurrence into a fire record. ok is false when
// the occurrence has no fire signature; that is not an error.
type Transformer interface {
	Transform(ctx context.Context, occ domain.Occurrence) (rec domain.FireRecord, ok bool, err error)
}

// BatchLoader writes multiple fire records to a destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.FireRecord) error
}

// Sink is a named destination. The name labels the records_written metric.
type Sink struct {
	Name   string
	Loader BatchLoader
}

// Options tunes a Pipeline.
type Options struct {
	BatchSize int
	Workers   int

	// MaxLoadAttempts bounds retries of a failing sink per batch. Default 5.
	MaxLoadAttempts int
	// InitialBackoff is the first retry delay, doubled per attempt up to
	// MaxBackoff. Defaults 200ms and 5s.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 50
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.MaxLoadAttempts <= 0 {
		o.MaxLoadAttempts = 5
	}
	if o.InitialBackoff <= 0 {
		o.InitialBackoff = 200 * time.Millisecond
	}
	if o.MaxBackoff <= 0 {
		o.MaxBackoff = 5 * time.Second
	}
	return o
}

// Stats counts what a run has done so far.
type Stats struct {
	Read     int64
	Resolved int64
	NoFire   int64
	Failed   int64
}

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	sinks       []Sink
	logger      *slog.Logger
	metrics     *observability.Metrics
	opts        Options
	ready       atomic.Bool

	read, resolved, noFire, failed atomic.Int64
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, sinks []Sink, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		sinks:       sinks,
		logger:      logger,
		metrics:     metrics,
		opts:        opts.withDefaults(),
	}
}

// CheckReadiness returns nil once the pipeline has loaded at least one batch,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded any records yet")
	}
	return nil
}

// Stats returns a snapshot of the run counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Read:     p.read.Load(),
		Resolved: p.resolved.Load(),
		NoFire:   p.noFire.Load(),
		Failed:   p.failed.Load(),
	}
}

// Run executes the batch loop until the source is exhausted or the context
// is cancelled; both return nil. A read failure, or a sink that keeps
// failing past MaxLoadAttempts, is returned as an error.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.opts.BatchSize, "workers", p.opts.Workers, "sinks", len(p.sinks))
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		done, err := p.processBatch(ctx)
		if err != nil {
			return err
		}
		if done {
			s := p.Stats()
			p.logger.Info("pipeline finished",
				"read", s.Read,
				"resolved", s.Resolved,
				"no_fire", s.NoFire,
				"failed", s.Failed,
			)
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. done is true when the
// pipeline should stop without error.
func (p *Pipeline) processBatch(ctx context.Context) (done bool, err error) {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.opts.BatchSize)
	switch {
	case errors.Is(err, io.EOF):
		return true, nil
	case ctx.Err() != nil:
		return true, nil
	case err != nil:
		return false, fmt.Errorf("extract batch: %w", err)
	case len(batch) == 0:
		return false, nil
	}

	p.read.Add(int64(len(batch)))
	p.metrics.OccurrencesRead.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	records := p.transformAll(ctx, batch)
	if ctx.Err() != nil {
		return true, nil
	}
	if len(records) == 0 {
		return false, nil
	}

	for _, s := range p.sinks {
		if err := p.loadWithRetry(ctx, s, records); err != nil {
			if ctx.Err() != nil {
				return true, nil
			}
			return false, err
		}
	}

	p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	return false, nil
}

// transformAll resolves the batch on up to Workers goroutines and returns
// the resolved records in input order.
func (p *Pipeline) transformAll(ctx context.Context, batch []domain.Occurrence) []domain.FireRecord {
	type result struct {
		rec domain.FireRecord
		ok  bool
	}
	results := make([]result, len(batch))

	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for i := range batch {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			occ := batch[i]
			rec, ok, err := p.transformer.Transform(ctx, occ)
			if err != nil {
				p.logger.Warn("transform failed, skipping occurrence",
					"error", err,
					"line", occ.Line,
					"lat", occ.Lat,
					"lng", occ.Lng,
					"report_date", occ.ReportDate.String(),
				)
				p.metrics.TransformErrors.Inc()
				p.failed.Add(1)
				return nil
			}
			if !ok {
				p.logger.Debug("no fire found", "line", occ.Line, "report_date", occ.ReportDate.String())
				p.metrics.NoFire.Inc()
				p.noFire.Add(1)
				return nil
			}
			p.metrics.FiresResolved.Inc()
			p.metrics.ExtentDays.Observe(float64(rec.StartDate.DaysUntil(rec.EndDate)))
			p.resolved.Add(1)
			results[i] = result{rec: rec, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	records := make([]domain.FireRecord, 0, len(batch))
	for _, r := range results {
		if r.ok {
			records = append(records, r.rec)
		}
	}
	return records
}

// loadWithRetry writes records to one sink, backing off exponentially
// between failed attempts.
func (p *Pipeline) loadWithRetry(ctx context.Context, s Sink, records []domain.FireRecord) error {
	backoff := p.opts.InitialBackoff
	var err error
	for attempt := 1; attempt <= p.opts.MaxLoadAttempts; attempt++ {
		if err = s.Loader.LoadBatch(ctx, records); err == nil {
			p.metrics.RecordsWritten.WithLabelValues(s.Name).Add(float64(len(records)))
			return nil
		}
		p.logger.Error("load batch failed",
			"sink", s.Name,
			"error", err,
			"attempt", attempt,
			"batch_size", len(records),
		)
		if attempt == p.opts.MaxLoadAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, p.opts.MaxBackoff)
	}
	return fmt.Errorf("load %s sink: %w", s.Name, err)
}
