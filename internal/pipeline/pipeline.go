package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/synop-etl/internal/domain"
	"github.com/couchcryptid/synop-etl/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BulletinSource retrieves the raw bulletin for a time window.
type BulletinSource interface {
	FetchBulletin(ctx context.Context, w domain.Window) (domain.Bulletin, error)
}

// Transformer decodes a bulletin into station records. Decoding never fails
// as a whole; per-station problems are reported in the stats.
type Transformer interface {
	Transform(ctx context.Context, b domain.Bulletin) domain.DecodedBulletin
}

// RecordLoader writes the records of a decoded bulletin to the destination.
type RecordLoader interface {
	LoadBatch(ctx context.Context, b domain.DecodedBulletin) error
}

// Pipeline orchestrates the fetch-decode-load loop over synoptic windows.
type Pipeline struct {
	source       BulletinSource
	transformer  Transformer
	loader       RecordLoader
	logger       *slog.Logger
	metrics      *observability.Metrics
	pollInterval time.Duration

	ready  atomic.Bool
	latest atomic.Pointer[domain.DecodedBulletin]

	// Only touched by the Run goroutine.
	window    domain.Window
	published map[string]struct{}
}

// New creates a Pipeline with the given stages and observability.
func New(s BulletinSource, t Transformer, l RecordLoader, logger *slog.Logger, metrics *observability.Metrics, pollInterval time.Duration) *Pipeline {
	return &Pipeline{
		source:       s,
		transformer:  t,
		loader:       l,
		logger:       logger,
		metrics:      metrics,
		pollInterval: pollInterval,
	}
}

// CheckReadiness returns nil once a bulletin has been loaded, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not loaded a bulletin yet")
	}
	return nil
}

// Snapshot returns the most recently loaded bulletin, if any.
func (p *Pipeline) Snapshot() (domain.DecodedBulletin, bool) {
	b := p.latest.Load()
	if b == nil {
		return domain.DecodedBulletin{}, false
	}
	return *b, true
}

// Run polls the latest synoptic window until the context is cancelled.
// The open window is fetched again every poll interval; stations that were
// not in an earlier fetch of the same window are published as they appear.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "poll_interval", p.pollInterval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		w := domain.CurrentWindow()
		if !w.Equal(p.window) {
			p.window = w
			p.published = make(map[string]struct{})
		}

		if !p.processWindow(ctx, w, &backoff) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// processWindow runs one fetch-decode-load cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processWindow(ctx context.Context, w domain.Window, backoff *time.Duration) bool {
	start := time.Now()

	bulletin, err := p.source.FetchBulletin(ctx, w)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.metrics.FetchErrors.Inc()
		p.logger.Error("fetch bulletin failed", "window", w.String(), "error", err)
		return p.backoffOrStop(ctx, backoff)
	}
	p.metrics.BulletinsFetched.Inc()

	decoded := p.transformer.Transform(ctx, bulletin)
	p.metrics.RecordsDecoded.Add(float64(len(decoded.Records)))
	p.metrics.RecordsPerBulletin.Observe(float64(len(decoded.Records)))
	p.metrics.StationsDropped.Add(float64(len(decoded.Stats.Dropped)))
	p.metrics.UnparsedGroups.Add(float64(decoded.Stats.UnparsedGroups))
	*backoff = initialBackoff

	// The source publishes a window gradually; an empty export is polled again.
	if len(decoded.Records) == 0 {
		p.logger.Info("bulletin has no station records yet", "window", w.String())
		return retry.SleepWithContext(ctx, p.pollInterval)
	}

	batch := decoded
	batch.Records = p.unpublished(decoded.Records)
	if len(batch.Records) > 0 {
		if err := p.loader.LoadBatch(ctx, batch); err != nil {
			if ctx.Err() != nil {
				return false
			}
			p.metrics.LoadErrors.Inc()
			p.logger.Error("load batch failed", "error", err, "window", w.String(), "batch_size", len(batch.Records))
			return p.backoffOrStop(ctx, backoff)
		}
		for _, r := range batch.Records {
			p.published[r.StationID] = struct{}{}
		}
		p.metrics.RecordsProduced.Add(float64(len(batch.Records)))
		p.logger.Info("bulletin loaded",
			"window", w.String(),
			"new_records", len(batch.Records),
			"records", len(decoded.Records),
			"dropped", len(decoded.Stats.Dropped),
		)
	}
	p.metrics.CycleDuration.Observe(time.Since(start).Seconds())

	p.latest.Store(&decoded)
	p.ready.Store(true)
	return retry.SleepWithContext(ctx, p.pollInterval)
}

// unpublished returns the records whose station has not been sent for the current window.
func (p *Pipeline) unpublished(records []domain.ObservationRecord) []domain.ObservationRecord {
	var out []domain.ObservationRecord
	for _, r := range records {
		if _, ok := p.published[r.StationID]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// backoffOrStop sleeps with the current backoff and advances it.
// Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !retry.SleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = retry.NextBackoff(*backoff, maxBackoff)
	return true
}
