// Package worker drives the ingest pipeline from the apply stream.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/movementpass/public-api/internal/domain"
	"github.com/movementpass/public-api/internal/ingest"
	"github.com/movementpass/public-api/internal/observability"
)

// Reducer turns raw records into canonical passes.
type Reducer interface {
	Reduce(ctx context.Context, records []ingest.RawRecord) ([]domain.Pass, error)
}

// Loader persists a reduced batch.
type Loader interface {
	Load(ctx context.Context, passes []domain.Pass) error
}

// Deduper skips records whose passes were already loaded.
type Deduper interface {
	FilterNew(ctx context.Context, records []ingest.RawRecord) ([]ingest.RawRecord, error)
	MarkLoaded(ctx context.Context, records []ingest.RawRecord) error
}

// BatchOptions bounds a batch by size and by the time since its first record.
type BatchOptions struct {
	Size   int
	Window time.Duration
}

// BatchConsumer reads the apply stream in batches and loads them. Offsets
// are committed only after a batch is stored, so any failure leaves the
// batch to be redelivered.
type BatchConsumer struct {
	reader  MessageReader
	reducer Reducer
	loader  Loader
	dedupe  Deduper
	opts    BatchOptions
	logger  *zap.Logger
	metrics *observability.Metrics
}

// NewBatchConsumer wires the consumer. dedupe and metrics may be nil.
func NewBatchConsumer(reader MessageReader, reducer Reducer, loader Loader, dedupe Deduper, opts BatchOptions, logger *zap.Logger, metrics *observability.Metrics) *BatchConsumer {
	if opts.Size <= 0 {
		opts.Size = 1000
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchConsumer{
		reader:  reader,
		reducer: reducer,
		loader:  loader,
		dedupe:  dedupe,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Run processes batches until ctx is cancelled or a batch fails. It returns
// nil on cancellation.
func (c *BatchConsumer) Run(ctx context.Context) error {
	for {
		msgs, err := c.collect(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if len(msgs) == 0 {
			continue
		}
		if err := c.process(ctx, msgs); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// collect blocks for the first message, then keeps fetching until the batch
// is full or the window since the first message has passed.
func (c *BatchConsumer) collect(ctx context.Context) ([]kafka.Message, error) {
	first, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch message: %w", err)
	}
	msgs := []kafka.Message{first}

	windowCtx, cancel := context.WithTimeout(ctx, c.opts.Window)
	defer cancel()
	for len(msgs) < c.opts.Size {
		msg, err := c.reader.FetchMessage(windowCtx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				break
			}
			return nil, fmt.Errorf("fetch message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (c *BatchConsumer) process(ctx context.Context, msgs []kafka.Message) error {
	start := time.Now()
	records := make([]ingest.RawRecord, 0, len(msgs))
	for _, m := range msgs {
		records = append(records, toRawRecord(m))
	}
	c.metrics.RecordIngested("received", len(records))

	fresh := records
	if c.dedupe != nil {
		var err error
		if fresh, err = c.dedupe.FilterNew(ctx, records); err != nil {
			return c.fail(start, err)
		}
		c.metrics.RecordIngested("duplicate", len(records)-len(fresh))
	}

	passes, err := c.reducer.Reduce(ctx, fresh)
	if err != nil {
		return c.fail(start, fmt.Errorf("reduce batch at %s: %w", records[0].Key, err))
	}
	if err := c.loader.Load(ctx, passes); err != nil {
		return c.fail(start, err)
	}
	c.metrics.RecordIngested("loaded", len(passes))

	if c.dedupe != nil {
		if err := c.dedupe.MarkLoaded(ctx, fresh); err != nil {
			c.logger.Warn("marking loaded records failed", zap.Error(err))
		}
	}
	if err := c.reader.CommitMessages(ctx, msgs...); err != nil {
		return c.fail(start, fmt.Errorf("commit offsets: %w", err))
	}

	c.metrics.RecordBatch("ok", time.Since(start))
	c.logger.Info("batch loaded",
		zap.Int("received", len(records)),
		zap.Int("fresh", len(fresh)),
		zap.Int("loaded", len(passes)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (c *BatchConsumer) fail(start time.Time, err error) error {
	c.metrics.RecordBatch("failed", time.Since(start))
	c.logger.Error("batch failed", zap.Error(err))
	return err
}

func toRawRecord(m kafka.Message) ingest.RawRecord {
	return ingest.RawRecord{
		Key:  fmt.Sprintf("%s/%d/%d", m.Topic, m.Partition, m.Offset),
		Data: m.Value,
	}
}
