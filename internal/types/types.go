package types

import "time"

// ObjectRecord is one listed object as returned by the store.
type ObjectRecord struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// IsDirMarker reports whether the record is a zero-byte "folder" placeholder.
func (o ObjectRecord) IsDirMarker() bool {
	return len(o.Key) > 0 && o.Key[len(o.Key)-1] == '/'
}

// ListPageInput selects a single page of a bucket listing.
type ListPageInput struct {
	Bucket            string
	Prefix            string
	ContinuationToken string // empty for the first page
	Delimiter         string // "/" groups deeper keys into CommonPrefixes; empty lists recursively
}

// Page is one page of a listing.
type Page struct {
	Objects        []ObjectRecord
	CommonPrefixes []string
	NextToken      string // empty when this was the last page
}

// RunResult tallies a publish pass.
type RunResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}
