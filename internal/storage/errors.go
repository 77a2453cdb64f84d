package storage

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

var (
	// ErrAccessDenied indicates the credentials may not perform the operation.
	ErrAccessDenied = errors.New("storage: access denied")
	// ErrNoSuchBucket indicates the bucket does not exist.
	ErrNoSuchBucket = errors.New("storage: no such bucket")
	// ErrNoSuchKey indicates the object does not exist.
	ErrNoSuchKey = errors.New("storage: no such key")
)

// Error is returned by every Session operation. Code carries the service
// error code when the store answered with an error response.
type Error struct {
	Op     string
	Bucket string
	Key    string
	Code   string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("storage.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	case e.Bucket != "":
		return fmt.Sprintf("storage.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	default:
		return fmt.Sprintf("storage.%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is maps well-known service error codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrAccessDenied:
		return e.Code == "AccessDenied" || e.Code == "Forbidden"
	case ErrNoSuchBucket:
		return e.Code == "NoSuchBucket"
	case ErrNoSuchKey:
		return e.Code == "NoSuchKey" || e.Code == "NotFound"
	}
	return false
}

func newError(op, bucket, key string, err error) *Error {
	e := &Error{Op: op, Bucket: bucket, Key: key, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		e.Code = apiErr.ErrorCode()
	}
	return e
}

// IsClientError reports whether err is an error response from the store
// itself, as opposed to a transport or configuration failure.
func IsClientError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code != ""
}
