// Package publish grants public-read access to every object of a listing,
// one object at a time.
package publish

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/yourorg/s3-publish/internal/logging"
	znmetrics "github.com/yourorg/s3-publish/internal/metrics"
	"github.com/yourorg/s3-publish/internal/progress"
	"github.com/yourorg/s3-publish/internal/storage"
	"github.com/yourorg/s3-publish/internal/types"
)

// DefaultDelay is the fixed pause between two ACL updates.
const DefaultDelay = 100 * time.Millisecond

// Config tunes a Publisher.
type Config struct {
	// Delay separates consecutive ACL updates. Zero disables pacing.
	Delay time.Duration
	// Sink receives one event per object; nil means progress.Discard.
	Sink progress.Sink
}

// Publisher applies public-read to a work batch sequentially.
type Publisher struct {
	acl   storage.ACLSetter
	log   *zap.Logger
	delay time.Duration
	sink  progress.Sink
	sleep func(ctx context.Context, d time.Duration) error
}

// New returns a Publisher writing ACLs through acl.
func New(acl storage.ACLSetter, log *zap.Logger, cfg Config) *Publisher {
	sink := cfg.Sink
	if sink == nil {
		sink = progress.Discard{}
	}
	return &Publisher{acl: acl, log: logging.OrNop(log), delay: cfg.Delay, sink: sink, sleep: sleepCtx}
}

// Partition drops directory markers, keeping listing order.
func Partition(objects []types.ObjectRecord) (batch []types.ObjectRecord, markers int) {
	batch = make([]types.ObjectRecord, 0, len(objects))
	for _, o := range objects {
		if o.IsDirMarker() {
			markers++
			continue
		}
		batch = append(batch, o)
	}
	return batch, markers
}

// Publish makes every non-marker object public. Failures are counted and
// logged, never retried nor returned. When ctx is cancelled the loop
// stops early and the partial tally is returned.
func (p *Publisher) Publish(ctx context.Context, bucket string, objects []types.ObjectRecord, dryRun bool) types.RunResult {
	batch, markers := Partition(objects)
	if markers > 0 {
		znmetrics.MarkersSkipped.Add(float64(markers))
		p.log.Info("skipping directory markers", zap.Int("markers", markers))
	}
	if len(batch) == 0 {
		p.log.Warn("no actual files found (only directory markers)")
		return types.RunResult{}
	}
	p.log.Info("processing files", zap.Int("files", len(batch)))

	res := types.RunResult{Total: len(batch)}
	if dryRun {
		// Listed before the sink starts, while the logger is at its normal level.
		p.log.Info("DRY RUN MODE - no changes will be made; files that would be made public:")
		for _, o := range batch {
			p.log.Info("  - "+o.Key, zap.String("size", humanize.Bytes(uint64(o.Size))))
		}
	}

	p.sink.Start(len(batch))
	defer p.sink.Stop()

	if dryRun {
		for _, o := range batch {
			if ctx.Err() != nil {
				break
			}
			p.sink.Update(o.Key, true)
		}
		return res
	}

	for i, o := range batch {
		if i > 0 && p.delay > 0 {
			if err := p.sleep(ctx, p.delay); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}
		p.log.Info("processing", zap.Int("n", i+1), zap.Int("of", len(batch)), zap.String("key", o.Key))

		err := p.acl.SetPublicRead(ctx, bucket, o.Key)
		ok := err == nil
		if ok {
			res.Success++
			p.log.Info("made public", zap.String("key", o.Key))
		} else {
			res.Failed++
			p.log.Error("failed to make object public", zap.String("key", o.Key), zap.Bool("clientError", storage.IsClientError(err)), zap.Error(err))
		}
		znmetrics.RecordACL(ok)
		p.sink.Update(o.Key, ok)
	}
	return res
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
