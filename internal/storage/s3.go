package storage

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/yourorg/s3-publish/internal/services"
	"github.com/yourorg/s3-publish/internal/types"
)

// s3API is the subset of the s3 client we use; allows test fakes.
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObjectAcl(ctx context.Context, params *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

var _ s3API = (*s3.Client)(nil)

// newS3Client constructs the s3 client; overridden in tests.
var newS3Client = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
	return s3.NewFromConfig(cfg, optFns...)
}

// SessionConfig is the connection material for NewSession.
type SessionConfig struct {
	Service     string
	Region      string
	AccessKey   string
	SecretKey   string
	EndpointURL string // overrides the service profile endpoint
}

// Session is a connected, immutable handle on one S3-compatible service.
type Session struct {
	service  string
	region   string
	endpoint string
	client   s3API
}

var _ ObjectStore = (*Session)(nil)

// NewSession builds the client for the configured service.
// Env support: AWS_S3_FORCE_PATH_STYLE.
func NewSession(ctx context.Context, sc SessionConfig) (*Session, error) {
	if sc.Region == "" {
		return nil, errors.New("storage: region is required")
	}
	if sc.AccessKey == "" || sc.SecretKey == "" {
		return nil, errors.New("storage: access key and secret key are required")
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(sc.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(sc.AccessKey, sc.SecretKey, "")),
	)
	if err != nil {
		return nil, newError("session", "", "", err)
	}
	endpoint := services.ResolveEndpoint(sc.Service, sc.Region, sc.EndpointURL)
	profile, _ := services.Lookup(sc.Service)
	pathStyle := profile.PathStyle || strings.EqualFold(os.Getenv("AWS_S3_FORCE_PATH_STYLE"), "true")

	client := newS3Client(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		if pathStyle {
			o.UsePathStyle = true
		}
	})
	return &Session{service: sc.Service, region: sc.Region, endpoint: endpoint, client: client}, nil
}

// ListPage fetches one ListObjectsV2 page.
func (s *Session) ListPage(ctx context.Context, in types.ListPageInput) (types.Page, error) {
	params := &s3.ListObjectsV2Input{Bucket: aws.String(in.Bucket)}
	if in.Prefix != "" {
		params.Prefix = aws.String(in.Prefix)
	}
	if in.ContinuationToken != "" {
		params.ContinuationToken = aws.String(in.ContinuationToken)
	}
	if in.Delimiter != "" {
		params.Delimiter = aws.String(in.Delimiter)
	}
	out, err := s.client.ListObjectsV2(ctx, params)
	if err != nil {
		return types.Page{}, newError("list", in.Bucket, "", err)
	}

	page := types.Page{Objects: make([]types.ObjectRecord, 0, len(out.Contents))}
	for _, o := range out.Contents {
		page.Objects = append(page.Objects, types.ObjectRecord{
			Key:          aws.ToString(o.Key),
			Size:         aws.ToInt64(o.Size),
			LastModified: aws.ToTime(o.LastModified),
		})
	}
	for _, cp := range out.CommonPrefixes {
		page.CommonPrefixes = append(page.CommonPrefixes, aws.ToString(cp.Prefix))
	}
	if aws.ToBool(out.IsTruncated) {
		page.NextToken = aws.ToString(out.NextContinuationToken)
	}
	return page, nil
}

// SetPublicRead applies the public-read canned ACL to bucket/key.
func (s *Session) SetPublicRead(ctx context.Context, bucket, key string) error {
	_, err := s.client.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		ACL:    s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return newError("acl", bucket, key, err)
	}
	return nil
}

// ListBuckets returns the names of every bucket the credentials can see.
func (s *Session) ListBuckets(ctx context.Context) ([]string, error) {
	out, err := s.client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, newError("buckets", "", "", err)
	}
	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		names = append(names, aws.ToString(b.Name))
	}
	return names, nil
}
