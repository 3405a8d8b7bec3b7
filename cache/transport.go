package cache

import (
	"net/http"

	"github.com/gregjones/httpcache"
)

// NewTransport wraps base with an httpcache transport backed by store.
// Responses served from disk carry the X-From-Cache header.
func NewTransport(store httpcache.Cache, base http.RoundTripper) *httpcache.Transport {
	t := httpcache.NewTransport(store)
	t.Transport = base
	t.MarkCachedResponses = true
	return t
}

// FromCache reports whether resp was served by the cache
func FromCache(resp *http.Response) bool {
	return resp.Header.Get(httpcache.XFromCache) == "1"
}
