package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{name: "loopback browser", remoteAddr: "127.0.0.1:50000", expected: "127.0.0.1"},
		{name: "ipv6 loopback", remoteAddr: "[::1]:50000", expected: "::1"},
		{name: "no port", remoteAddr: "127.0.0.1", expected: "127.0.0.1"},
		{name: "proxied", remoteAddr: "10.0.0.2:443", headers: map[string]string{"X-Forwarded-For": "203.0.113.1 , 10.0.0.2"}, expected: "203.0.113.1"},
		{name: "real ip", remoteAddr: "10.0.0.2:443", headers: map[string]string{"X-Real-IP": "198.51.100.7"}, expected: "198.51.100.7"},
		{
			name:       "forwarded wins over real ip",
			remoteAddr: "10.0.0.2:443",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.1", "X-Real-IP": "198.51.100.7"},
			expected:   "203.0.113.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/login", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			require.Equal(t, tt.expected, clientIP(r))
		})
	}
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	previous := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = previous })

	return &buf
}

func TestRequestLogger(t *testing.T) {
	buf := captureLog(t)

	handler := RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	}))

	r := httptest.NewRequest(http.MethodPost, "/app/materias", nil)
	r.RemoteAddr = "127.0.0.1:50000"
	handler.ServeHTTP(httptest.NewRecorder(), r)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "POST", entry["method"])
	require.Equal(t, "/app/materias", entry["path"])
	require.Equal(t, float64(http.StatusFound), entry["status"])
	require.Equal(t, "127.0.0.1", entry["client_ip"])
}

func TestRequestLogger_defaultStatus(t *testing.T) {
	buf := captureLog(t)

	handler := RequestLogger()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/login", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, float64(http.StatusOK), entry["status"])
}
