package client

import (
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gregjones/httpcache"
	"github.com/gregjones/httpcache/diskcache"
	"github.com/rs/zerolog/log"
)

// NewCachingTransport wraps base with HTTP caching. Stored responses are
// kept for stale-if-error and revalidation; a successful write to an item or
// collection drops the cached copies of both.
func NewCachingTransport(cacheDir string, base http.RoundTripper) http.RoundTripper {
	var cache httpcache.Cache
	if cacheDir == "" {
		cache = httpcache.NewMemoryCache()
	} else {
		cache = diskcache.New(cacheDir)
	}

	transport := httpcache.NewTransport(cache)
	transport.Transport = base

	return &invalidatingTransport{cache: cache, next: transport}
}

// invalidatingTransport evicts cached reads made stale by a write.
type invalidatingTransport struct {
	cache httpcache.Cache
	next  http.RoundTripper
}

func (t *invalidatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if req.Method != http.MethodGet && req.Method != http.MethodHead && resp.StatusCode < 400 {
		for _, key := range staleKeys(req.URL) {
			t.cache.Delete(key)
		}
		log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("evicted cached reads")
	}

	return resp, nil
}

// staleKeys returns the GET cache keys a write to u invalidates: u itself and
// its parent collection, both without query.
func staleKeys(u *url.URL) []string {
	item := *u
	item.RawQuery = ""
	item.Fragment = ""

	keys := []string{item.String()}

	trimmed := strings.TrimSuffix(item.Path, "/")
	if parent := path.Dir(trimmed); parent != "/" && parent != "." {
		collection := item
		collection.Path = parent + "/"
		keys = append(keys, collection.String())
	}

	return keys
}
