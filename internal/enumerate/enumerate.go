// Package enumerate turns a paginated bucket listing into a fully
// materialized, ordered list of objects.
package enumerate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/yourorg/s3-publish/internal/logging"
	znmetrics "github.com/yourorg/s3-publish/internal/metrics"
	"github.com/yourorg/s3-publish/internal/storage"
	"github.com/yourorg/s3-publish/internal/types"
)

// Delimiter groups keys into "directories" for non-recursive listings.
const Delimiter = "/"

const (
	diagnosticSample      = 20
	diagnosticPrefixes    = 10
	diagnosticSuggestions = 5
	debugSample           = 5
)

// Query selects what to enumerate.
type Query struct {
	Bucket    string
	Prefix    string
	Recursive bool
}

// Listing is the result of Enumerate.
type Listing struct {
	Objects []types.ObjectRecord
	// CommonPrefixes are the sub-"directories" skipped by a non-recursive listing.
	CommonPrefixes []string
	Pages          int
}

// Diagnosis summarizes a bucket for an operator whose prefix matched nothing.
type Diagnosis struct {
	TotalObjects int
	SampleKeys   []string
	Prefixes     []string
	Suggestions  []string
}

// Enumerator walks listings page by page.
type Enumerator struct {
	lister storage.Lister
	log    *zap.Logger
}

// New returns an Enumerator reading from l.
func New(l storage.Lister, log *zap.Logger) *Enumerator {
	return &Enumerator{lister: l, log: logging.OrNop(log)}
}

// Enumerate follows continuation tokens until the listing is exhausted and
// returns every object in listing order.
func (e *Enumerator) Enumerate(ctx context.Context, q Query) (Listing, error) {
	in := types.ListPageInput{Bucket: q.Bucket, Prefix: q.Prefix}
	if !q.Recursive {
		in.Delimiter = Delimiter
	}
	e.log.Debug("listing objects", zap.String("bucket", q.Bucket), zap.String("prefix", q.Prefix), zap.Bool("recursive", q.Recursive))

	var out Listing
	seen := map[string]struct{}{}
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		page, err := e.lister.ListPage(ctx, in)
		if err != nil {
			return out, err
		}
		out.Pages++
		znmetrics.ListPages.Inc()
		znmetrics.ObjectsListed.Add(float64(len(page.Objects)))
		e.log.Debug("listing page", zap.Int("page", out.Pages), zap.Int("objects", len(page.Objects)), zap.Int("prefixes", len(page.CommonPrefixes)))

		out.Objects = append(out.Objects, page.Objects...)
		if !q.Recursive {
			for _, p := range page.CommonPrefixes {
				e.log.Debug("subdirectory", zap.String("prefix", p))
			}
			out.CommonPrefixes = append(out.CommonPrefixes, page.CommonPrefixes...)
		}

		if page.NextToken == "" {
			break
		}
		if _, dup := seen[page.NextToken]; dup {
			return out, fmt.Errorf("enumerate %s: continuation token %q repeated", q.Bucket, page.NextToken)
		}
		seen[page.NextToken] = struct{}{}
		in.ContinuationToken = page.NextToken
	}

	e.log.Info("total objects found", zap.Int("objects", len(out.Objects)), zap.Int("pages", out.Pages))
	for i, o := range out.Objects {
		if i == debugSample {
			e.log.Debug("more objects not shown", zap.Int("remaining", len(out.Objects)-debugSample))
			break
		}
		e.log.Debug("sample object", zap.Int("n", i+1), zap.String("key", o.Key), zap.Int64("size", o.Size))
	}
	return out, nil
}

// Diagnose lists the entire bucket and derives the directory prefixes an
// operator most likely meant.
func (e *Enumerator) Diagnose(ctx context.Context, bucket string) (Diagnosis, error) {
	all, err := e.Enumerate(ctx, Query{Bucket: bucket, Recursive: true})
	if err != nil {
		return Diagnosis{}, err
	}
	d := Diagnosis{TotalObjects: len(all.Objects)}

	sample := all.Objects
	if len(sample) > diagnosticSample {
		sample = sample[:diagnosticSample]
	}
	unique := map[string]struct{}{}
	for _, o := range sample {
		d.SampleKeys = append(d.SampleKeys, o.Key)
		if i := strings.LastIndexByte(o.Key, '/'); i >= 0 {
			unique[o.Key[:i+1]] = struct{}{}
		}
	}
	for p := range unique {
		d.Prefixes = append(d.Prefixes, p)
	}
	sort.Strings(d.Prefixes)
	if len(d.Prefixes) > diagnosticPrefixes {
		d.Prefixes = d.Prefixes[:diagnosticPrefixes]
	}
	d.Suggestions = d.Prefixes
	if len(d.Suggestions) > diagnosticSuggestions {
		d.Suggestions = d.Suggestions[:diagnosticSuggestions]
	}
	return d, nil
}

// Report logs d the way an operator reads it.
func (d Diagnosis) Report(log *zap.Logger) {
	log = logging.OrNop(log)
	if d.TotalObjects == 0 {
		log.Warn("no objects found in the entire bucket")
		return
	}
	log.Info("objects in bucket, sample paths follow", zap.Int("total", d.TotalObjects))
	for _, k := range d.SampleKeys {
		log.Info("  - " + k)
	}
	if len(d.Prefixes) == 0 {
		return
	}
	log.Info("detected directory structures")
	for _, p := range d.Prefixes {
		log.Info("  - " + p)
	}
	log.Info("try using one of these prefixes", zap.Strings("prefixes", d.Suggestions))
}
