package storage

import (
	"context"

	"github.com/yourorg/s3-publish/internal/types"
)

// Lister returns one page of a bucket listing per call.
type Lister interface {
	ListPage(ctx context.Context, in types.ListPageInput) (types.Page, error)
}

// ACLSetter grants anonymous read access to a single object.
type ACLSetter interface {
	SetPublicRead(ctx context.Context, bucket, key string) error
}

// ObjectStore defines the storage operations the publisher needs.
type ObjectStore interface {
	Lister
	ACLSetter
	// ListBuckets returns the names of all buckets visible to the credentials.
	ListBuckets(ctx context.Context) ([]string, error)
}
