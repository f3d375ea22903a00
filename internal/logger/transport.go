package logger

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RequestIDHeader carries the correlation id of an outbound API call.
const RequestIDHeader = "X-Request-ID"

// Transport logs every outbound request and tags it with a request id.
type Transport struct {
	base http.RoundTripper
}

var _ http.RoundTripper = (*Transport)(nil)

// NewTransport wraps base, http.DefaultTransport when nil.
func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	id := req.Header.Get(RequestIDHeader)
	if id == "" {
		rid, err := uuid.NewV7()
		if err != nil {
			return nil, err
		}
		id = rid.String()

		// RoundTrippers must not modify the caller's request
		req = req.Clone(req.Context())
		req.Header.Set(RequestIDHeader, id)
	}

	started := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		log.Debug().
			Err(err).
			Str("request_id", id).
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Dur("duration", time.Since(started)).
			Msg("api request failed")
		return nil, err
	}

	log.Debug().
		Str("request_id", id).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Msg("api request")

	return resp, nil
}
