package publish

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourorg/s3-publish/internal/enumerate"
	"github.com/yourorg/s3-publish/internal/logging"
	"github.com/yourorg/s3-publish/internal/types"
)

// Request describes one make-public run.
type Request struct {
	Bucket    string
	Prefix    string
	Recursive bool
	DryRun    bool
}

// Manager ties enumeration to publishing.
type Manager struct {
	enum *enumerate.Enumerator
	pub  *Publisher
	log  *zap.Logger
}

// NewManager wires an enumerator and a publisher together.
func NewManager(enum *enumerate.Enumerator, pub *Publisher, log *zap.Logger) *Manager {
	return &Manager{enum: enum, pub: pub, log: logging.OrNop(log)}
}

// MakePublic lists req.Prefix and publishes what it finds. A failed or empty
// listing triggers a whole-bucket diagnostic and yields an empty result. The
// second return value is the published work batch, in order.
func (m *Manager) MakePublic(ctx context.Context, req Request) (types.RunResult, []types.ObjectRecord) {
	m.log.Info("searching for objects", zap.String("bucket", req.Bucket), zap.String("prefix", req.Prefix), zap.Bool("recursive", req.Recursive))

	listing, err := m.enum.Enumerate(ctx, enumerate.Query{Bucket: req.Bucket, Prefix: req.Prefix, Recursive: req.Recursive})
	if err != nil {
		m.log.Error("failed to list objects", zap.String("bucket", req.Bucket), zap.Error(err))
		listing = enumerate.Listing{}
	}
	if len(listing.Objects) == 0 {
		if ctx.Err() != nil {
			return types.RunResult{}, nil
		}
		m.log.Warn("no objects found with prefix", zap.String("prefix", req.Prefix), zap.String("bucket", req.Bucket))
		m.log.Info("attempting to list all objects in bucket to help debug...")
		d, err := m.enum.Diagnose(ctx, req.Bucket)
		if err != nil {
			m.log.Error("diagnostic listing failed", zap.Error(err))
			return types.RunResult{}, nil
		}
		d.Report(m.log)
		return types.RunResult{}, nil
	}

	m.log.Info("found objects to process", zap.Int("objects", len(listing.Objects)))
	batch, _ := Partition(listing.Objects)
	return m.pub.Publish(ctx, req.Bucket, listing.Objects, req.DryRun), batch
}
