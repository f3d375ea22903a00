package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/internal/logger"
	"github.com/wolfeidau/escuela/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
)

const (
	tracerName = "github.com/wolfeidau/escuela/internal/client"

	// maxErrorBody bounds how much of an error response is kept for messages.
	maxErrorBody = 64 * 1024
)

// Config holds common client configuration
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheDir string
	Debug    bool
}

// DefaultConfig returns a default client configuration
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8000/api",
		Timeout: 30 * time.Second,
	}
}

// NewHTTPClient creates the unauthenticated HTTP client shared by every API
// call: request logging, then response caching, bounded by the timeout.
func NewHTTPClient(config Config) *http.Client {
	transport := NewCachingTransport(config.CacheDir, logger.NewTransport(http.DefaultTransport))

	return &http.Client{
		Transport: transport,
		Timeout:   config.Timeout,
	}
}

// WithTokenSource returns a copy of hc that sends a bearer token from ts on
// every request.
func WithTokenSource(hc *http.Client, ts oauth2.TokenSource) *http.Client {
	base := hc.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &http.Client{
		Transport: &oauth2.Transport{Source: ts, Base: base},
		Timeout:   hc.Timeout,
	}
}

// Request describes a single JSON API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// Header is merged into the outgoing request.
	Header http.Header

	// Fallback is the error message used when the backend gives none.
	Fallback string

	// MessageKeys are the error body fields consulted, in order, for a
	// human readable message. Defaults to detail, error.
	MessageKeys []string
}

// API performs JSON requests against the school REST API.
type API struct {
	baseURL *url.URL
	http    *http.Client
}

// NewAPI creates an API rooted at baseURL.
func NewAPI(baseURL string, hc *http.Client) (*API, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}

	return &API{baseURL: u, http: hc}, nil
}

// WithHTTPClient returns an API sharing the base URL but using hc.
func (a *API) WithHTTPClient(hc *http.Client) *API {
	return &API{baseURL: a.baseURL, http: hc}
}

// WithTokenSource returns an API that authenticates every call with a
// bearer token from ts.
func (a *API) WithTokenSource(ts oauth2.TokenSource) *API {
	return a.WithHTTPClient(WithTokenSource(a.http, ts))
}

// BaseURL returns the API root.
func (a *API) BaseURL() string {
	return a.baseURL.String()
}

// URL resolves path against the base URL. Paths always end with a slash,
// the backend routes collections and items that way.
func (a *API) URL(path string, query url.Values) string {
	u := a.baseURL.JoinPath(strings.Trim(path, "/"))
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Do sends req and decodes a 2xx JSON response into out (which may be nil).
// Any failure is returned as an *APIError.
func (a *API) Do(ctx context.Context, req Request, out any) error {
	started := time.Now()
	status := 0

	ctx, span := otel.Tracer(tracerName).Start(ctx, req.Method+" "+req.Path, trace.WithSpanKind(trace.SpanKindClient))

	var err error
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		span.End()

		m := telemetry.GetMetrics()
		attrs := metric.WithAttributes(
			attribute.String("method", req.Method),
			attribute.Int("status", status),
		)
		m.APIRequestsTotal.Add(ctx, 1, attrs)
		m.APIRequestDuration.Record(ctx, float64(time.Since(started).Milliseconds()), attrs)
	}()

	err = a.do(ctx, req, out, &status)
	return err
}

func (a *API) do(ctx context.Context, req Request, out any, status *int) error {
	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return &APIError{Message: req.fallback(), Err: fmt.Errorf("failed to marshal request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, a.URL(req.Path, req.Query), body)
	if err != nil {
		return &APIError{Message: req.fallback(), Err: err}
	}
	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(httpReq)
	if err != nil {
		log.Debug().Err(err).Str("method", req.Method).Str("path", req.Path).Msg("request failed")
		return &APIError{Message: req.fallback(), Err: err}
	}
	defer resp.Body.Close()

	*status = resp.StatusCode

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(resp.StatusCode, data, req.messageKeys(), req.fallback())
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return &APIError{StatusCode: resp.StatusCode, Message: req.fallback(), Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	// reach EOF so the caching transport stores the body
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func (r Request) fallback() string {
	if r.Fallback != "" {
		return r.Fallback
	}
	return DefaultErrorMessage
}

func (r Request) messageKeys() []string {
	if len(r.MessageKeys) > 0 {
		return r.MessageKeys
	}
	return []string{"detail", "error"}
}
