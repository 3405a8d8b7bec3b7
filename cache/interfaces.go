// Package cache provides a disk-backed store for HTTP responses. It plugs
// into httpcache so conditional GETs against the activity history can be
// answered from disk between runs.
package cache

import (
	"time"

	"github.com/gregjones/httpcache"
)

// Entry represents a cached response with metadata
type Entry struct {
	Key       string    `json:"key"`
	FetchedAt time.Time `json:"fetched_at"`
	Body      []byte    `json:"body"` // serialized http.Response as written by httpcache
}

// Store is an httpcache.Cache that can also report entry metadata
type Store interface {
	httpcache.Cache
	// Entry returns the raw entry for a key, including expired ones
	Entry(key string) (*Entry, bool)
}

var _ Store = (*FileCache)(nil)
