package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/notam-briefing-service/internal/domain"
	"github.com/couchcryptid/notam-briefing-service/internal/observability"
)

// BatchExtractor reads up to batchSize briefing requests from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer converts a briefing request into a serialized briefing.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error)
}

// BatchLoader writes multiple briefings to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.OutputEvent) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Pipeline answers briefing requests from the source topic. A request's
// offset is committed only once its briefing is written or the request is
// rejected as invalid; NOTAM source and summarizer outages stall the batch
// instead of dropping it.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// Ready reports whether a batch of briefings has been written.
func (p *Pipeline) Ready() bool {
	return p.ready.Load()
}

// Run answers briefing requests until ctx is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	b := newBackoff()
	for ctx.Err() == nil {
		err := p.runBatch(ctx, b)
		if err == nil || ctx.Err() != nil {
			continue
		}
		p.logger.Error("extract batch failed", "error", err, "retry_in", b.delay)
		b.wait(ctx)
	}
	p.logger.Info("pipeline stopping", "reason", ctx.Err())
	return nil
}

// runBatch answers one batch. Briefing and load failures are retried in place
// because the reader has already moved past the batch; the returned error is
// an extract failure or the end of ctx, with nothing committed.
func (p *Pipeline) runBatch(ctx context.Context, b *backoff) error {
	start := time.Now()

	batch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("extract batch: %w", err)
	}
	if len(batch) == 0 {
		return nil
	}
	b.reset()
	p.metrics.MessagesConsumed.Add(float64(len(batch)))
	p.metrics.BatchSize.Observe(float64(len(batch)))

	briefings, err := p.briefAll(ctx, batch, b)
	if err != nil {
		return err
	}

	if len(briefings) > 0 {
		if !p.load(ctx, briefings, b) {
			return ctx.Err()
		}
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}

	// Rejected requests are committed with the rest of the batch, after the
	// briefings ahead of them are written.
	for _, raw := range batch {
		p.commitOffset(ctx, raw)
	}
	return nil
}

// briefAll briefs the batch in order, leaving out rejected requests. It fails
// only when ctx ends.
func (p *Pipeline) briefAll(ctx context.Context, batch []domain.RawEvent, b *backoff) ([]domain.OutputEvent, error) {
	briefings := make([]domain.OutputEvent, 0, len(batch))
	for _, raw := range batch {
		out, err := p.brief(ctx, raw, b)
		switch {
		case err == nil:
			briefings = append(briefings, out)
		case domain.IsValidation(err):
			p.metrics.RequestsRejected.Inc()
			p.logger.Warn("rejecting invalid briefing request",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
		default:
			return nil, err
		}
	}
	return briefings, nil
}

// brief transforms raw, retrying source and summarizer failures until the
// request yields a briefing, is rejected as invalid, or ctx ends.
func (p *Pipeline) brief(ctx context.Context, raw domain.RawEvent, b *backoff) (domain.OutputEvent, error) {
	for {
		out, err := p.transformer.Transform(ctx, raw)
		if err == nil {
			b.reset()
			return out, nil
		}
		if domain.IsValidation(err) {
			return domain.OutputEvent{}, err
		}
		if ctx.Err() != nil {
			return domain.OutputEvent{}, ctx.Err()
		}

		p.metrics.BriefingRetries.Inc()
		p.logger.Warn("briefing failed, retrying",
			"error", err,
			"partition", raw.Partition,
			"offset", raw.Offset,
			"retry_in", b.delay,
		)
		if !b.wait(ctx) {
			return domain.OutputEvent{}, ctx.Err()
		}
	}
}

// load writes briefings, retrying until the sink accepts them. It returns
// false when ctx ends first.
func (p *Pipeline) load(ctx context.Context, briefings []domain.OutputEvent, b *backoff) bool {
	for {
		err := p.loader.LoadBatch(ctx, briefings)
		if err == nil {
			p.metrics.MessagesProduced.Add(float64(len(briefings)))
			return true
		}
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("load batch failed, retrying", "error", err, "batch_size", len(briefings), "retry_in", b.delay)
		if !b.wait(ctx) {
			return false
		}
	}
}

func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// backoff is the exponential delay between retries, 200ms doubling to 5s.
type backoff struct {
	delay time.Duration
}

func newBackoff() *backoff {
	return &backoff{delay: initialBackoff}
}

// wait sleeps for the current delay and doubles it. It returns false if ctx
// ends first.
func (b *backoff) wait(ctx context.Context) bool {
	if !retry.SleepWithContext(ctx, b.delay) {
		return false
	}
	b.delay = retry.NextBackoff(b.delay, maxBackoff)
	return true
}

func (b *backoff) reset() {
	b.delay = initialBackoff
}
