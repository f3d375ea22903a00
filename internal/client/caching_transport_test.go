package client

import (
	"context"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaleKeys(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected []string
	}{
		{name: "item", url: "http://h/api/grados/2/", expected: []string{"http://h/api/grados/2/", "http://h/api/grados/"}},
		{name: "collection", url: "http://h/api/grados/?institucion=1", expected: []string{"http://h/api/grados/", "http://h/api/"}},
		{name: "root", url: "http://h/api/", expected: []string{"http://h/api/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, staleKeys(u))
		})
	}
}

func TestCachingTransport_WriteEvictsCollection(t *testing.T) {
	var gets atomic.Int32
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "max-age=60")
		if r.Method == http.MethodGet {
			gets.Add(1)
			_, _ = w.Write([]byte(`{"count":1}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	var out map[string]any
	require.NoError(t, api.Do(context.Background(), Request{Method: http.MethodGet, Path: "grados"}, &out))
	require.NoError(t, api.Do(context.Background(), Request{Method: http.MethodGet, Path: "grados"}, &out))
	assert.Equal(t, int32(1), gets.Load(), "second read is served from cache")

	require.NoError(t, api.Do(context.Background(), Request{Method: http.MethodDelete, Path: "grados/2"}, nil))

	require.NoError(t, api.Do(context.Background(), Request{Method: http.MethodGet, Path: "grados"}, &out))
	assert.Equal(t, int32(2), gets.Load())
}

func TestCachingTransport_NoCacheRequestAlwaysReachesBackend(t *testing.T) {
	var gets atomic.Int32
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		gets.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "max-age=60")
		_, _ = w.Write([]byte(`{"count":1}`))
	})

	header := http.Header{"Cache-Control": []string{"no-cache"}}
	var out map[string]any
	for range 3 {
		require.NoError(t, api.Do(context.Background(), Request{Method: http.MethodGet, Path: "grados", Header: header}, &out))
	}
	assert.Equal(t, int32(3), gets.Load())
}
