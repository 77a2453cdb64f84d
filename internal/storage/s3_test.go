package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/s3-publish/internal/types"
)

type fakeS3 struct {
	listFn    func(*s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error)
	aclFn     func(*s3.PutObjectAclInput) (*s3.PutObjectAclOutput, error)
	bucketsFn func() (*s3.ListBucketsOutput, error)
	lastList  *s3.ListObjectsV2Input
	lastACL   *s3.PutObjectAclInput
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.lastList = in
	if f.listFn != nil {
		return f.listFn(in)
	}
	return &s3.ListObjectsV2Output{}, nil
}

func (f *fakeS3) PutObjectAcl(_ context.Context, in *s3.PutObjectAclInput, _ ...func(*s3.Options)) (*s3.PutObjectAclOutput, error) {
	f.lastACL = in
	if f.aclFn != nil {
		return f.aclFn(in)
	}
	return &s3.PutObjectAclOutput{}, nil
}

func (f *fakeS3) ListBuckets(_ context.Context, _ *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	if f.bucketsFn != nil {
		return f.bucketsFn()
	}
	return &s3.ListBucketsOutput{}, nil
}

func withFakeS3(t *testing.T, f *fakeS3) *s3.Options {
	t.Helper()
	applied := &s3.Options{}
	old := newS3Client
	newS3Client = func(_ aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(applied)
		}
		return f
	}
	t.Cleanup(func() { newS3Client = old })
	return applied
}

func newTestSession(t *testing.T, f *fakeS3, sc SessionConfig) (*Session, *s3.Options) {
	t.Helper()
	opts := withFakeS3(t, f)
	s, err := NewSession(context.Background(), sc)
	require.NoError(t, err)
	return s, opts
}

func TestNewSessionEndpoint(t *testing.T) {
	s, opts := newTestSession(t, &fakeS3{}, SessionConfig{Service: "digitalocean", Region: "fra1", AccessKey: "k", SecretKey: "s"})
	assert.Equal(t, "https://fra1.digitaloceanspaces.com", aws.ToString(opts.BaseEndpoint))
	assert.False(t, opts.UsePathStyle)
	assert.Equal(t, "https://fra1.digitaloceanspaces.com", s.endpoint)
	assert.Equal(t, "digitalocean", s.service)
	assert.Equal(t, "fra1", s.region)
}

func TestNewSessionMinIOPathStyle(t *testing.T) {
	_, opts := newTestSession(t, &fakeS3{}, SessionConfig{Service: "minio", Region: "us-east-1", AccessKey: "k", SecretKey: "s", EndpointURL: "http://127.0.0.1:9000"})
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}

func TestNewSessionAWSDefaultEndpoint(t *testing.T) {
	t.Setenv("AWS_S3_FORCE_PATH_STYLE", "TRUE")
	_, opts := newTestSession(t, &fakeS3{}, SessionConfig{Service: "aws", Region: "us-east-1", AccessKey: "k", SecretKey: "s"})
	assert.Nil(t, opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewSessionRequiresCredentials(t *testing.T) {
	withFakeS3(t, &fakeS3{})
	_, err := NewSession(context.Background(), SessionConfig{Service: "aws", Region: "us-east-1"})
	assert.Error(t, err)
	_, err = NewSession(context.Background(), SessionConfig{Service: "aws", AccessKey: "k", SecretKey: "s"})
	assert.Error(t, err)
}

func TestListPage(t *testing.T) {
	mod := time.Date(2025, 7, 13, 10, 0, 0, 0, time.UTC)
	f := &fakeS3{listFn: func(in *s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		return &s3.ListObjectsV2Output{
			Contents: []s3types.Object{
				{Key: aws.String("a/x"), Size: aws.Int64(12), LastModified: aws.Time(mod)},
				{Key: aws.String("a/")},
			},
			CommonPrefixes:        []s3types.CommonPrefix{{Prefix: aws.String("a/b/")}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("tok-2"),
		}, nil
	}}
	s, _ := newTestSession(t, f, SessionConfig{Service: "aws", Region: "us-east-1", AccessKey: "k", SecretKey: "s"})

	page, err := s.ListPage(context.Background(), types.ListPageInput{Bucket: "b", Prefix: "a/", ContinuationToken: "tok-1", Delimiter: "/"})
	require.NoError(t, err)
	assert.Equal(t, "b", aws.ToString(f.lastList.Bucket))
	assert.Equal(t, "a/", aws.ToString(f.lastList.Prefix))
	assert.Equal(t, "tok-1", aws.ToString(f.lastList.ContinuationToken))
	assert.Equal(t, "/", aws.ToString(f.lastList.Delimiter))

	require.Len(t, page.Objects, 2)
	assert.Equal(t, types.ObjectRecord{Key: "a/x", Size: 12, LastModified: mod}, page.Objects[0])
	assert.True(t, page.Objects[1].IsDirMarker())
	assert.Equal(t, []string{"a/b/"}, page.CommonPrefixes)
	assert.Equal(t, "tok-2", page.NextToken)
}

func TestListPageRecursiveOmitsDelimiter(t *testing.T) {
	f := &fakeS3{listFn: func(*s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		// a stale token on the last page must not continue the listing
		return &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false), NextContinuationToken: aws.String("stale")}, nil
	}}
	s, _ := newTestSession(t, f, SessionConfig{Service: "aws", Region: "us-east-1", AccessKey: "k", SecretKey: "s"})

	page, err := s.ListPage(context.Background(), types.ListPageInput{Bucket: "b"})
	require.NoError(t, err)
	assert.Nil(t, f.lastList.Delimiter)
	assert.Nil(t, f.lastList.Prefix)
	assert.Nil(t, f.lastList.ContinuationToken)
	assert.Empty(t, page.NextToken)
}

func TestListPageError(t *testing.T) {
	f := &fakeS3{listFn: func(*s3.ListObjectsV2Input) (*s3.ListObjectsV2Output, error) {
		return nil, &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"}
	}}
	s, _ := newTestSession(t, f, SessionConfig{Service: "aws", Region: "us-east-1", AccessKey: "k", SecretKey: "s"})

	_, err := s.ListPage(context.Background(), types.ListPageInput{Bucket: "missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSuchBucket))
	assert.True(t, IsClientError(err))
	assert.Contains(t, err.Error(), "storage.list bucket missing")
}

func TestSetPublicRead(t *testing.T) {
	f := &fakeS3{}
	s, _ := newTestSession(t, f, SessionConfig{Service: "aws", Region: "us-east-1", AccessKey: "k", SecretKey: "s"})

	require.NoError(t, s.SetPublicRead(context.Background(), "b", "img/cat.png"))
	assert.Equal(t, "b", aws.ToString(f.lastACL.Bucket))
	assert.Equal(t, "img/cat.png", aws.ToString(f.lastACL.Key))
	assert.Equal(t, s3types.ObjectCannedACLPublicRead, f.lastACL.ACL)
}

func TestSetPublicReadErrors(t *testing.T) {
	f := &fakeS3{aclFn: func(*s3.PutObjectAclInput) (*s3.PutObjectAclOutput, error) {
		return nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}
	}}
	s, _ := newTestSession(t, f, SessionConfig{Service: "aws", Region: "us-east-1", AccessKey: "k", SecretKey: "s"})

	err := s.SetPublicRead(context.Background(), "b", "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.NotErrorIs(t, err, ErrNoSuchKey)

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "acl", se.Op)
	assert.Equal(t, "AccessDenied", se.Code)
	assert.Equal(t, "storage.acl b/k: api error AccessDenied: Access Denied", err.Error())

	f.aclFn = func(*s3.PutObjectAclInput) (*s3.PutObjectAclOutput, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	err = s.SetPublicRead(context.Background(), "b", "k")
	require.Error(t, err)
	assert.False(t, IsClientError(err))
}

func TestListBuckets(t *testing.T) {
	f := &fakeS3{bucketsFn: func() (*s3.ListBucketsOutput, error) {
		return &s3.ListBucketsOutput{Buckets: []s3types.Bucket{{Name: aws.String("one")}, {Name: aws.String("two")}}}, nil
	}}
	s, _ := newTestSession(t, f, SessionConfig{Service: "aws", Region: "us-east-1", AccessKey: "k", SecretKey: "s"})

	names, err := s.ListBuckets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, names)
}
