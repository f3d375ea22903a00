package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestAPI(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api, err := NewAPI(srv.URL+"/api", NewHTTPClient(DefaultConfig()))
	require.NoError(t, err)
	return api
}

func TestNewAPI_RejectsBadURL(t *testing.T) {
	_, err := NewAPI("ftp://example.com", nil)
	require.Error(t, err)

	_, err = NewAPI("://nope", nil)
	require.Error(t, err)
}

func TestAPI_URL(t *testing.T) {
	api, err := NewAPI("http://localhost:8000/api", nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/materias/", api.URL("materias", nil))
	assert.Equal(t, "http://localhost:8000/api/materias/3/", api.URL("/materias/3/", nil))
	assert.Equal(t, "http://localhost:8000/api/auth/login/", api.URL("auth/login", nil))
	assert.Equal(t, "http://localhost:8000/api/grados/?institucion=2", api.URL("grados", url.Values{"institucion": {"2"}}))
}

func TestAPI_Do_Success(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/grados/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":5,"nombre":"Primero"}`))
	})

	var out map[string]any
	err := api.Do(context.Background(), Request{Method: http.MethodPost, Path: "grados", Body: map[string]any{"nombre": "Primero"}}, &out)
	require.NoError(t, err)
	assert.Equal(t, "Primero", out["nombre"])
}

func TestAPI_Do_NoContent(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	var out map[string]any
	require.NoError(t, api.Do(context.Background(), Request{Method: http.MethodDelete, Path: "grados/1"}, &out))
	assert.Nil(t, out)
}

func TestAPI_Do_ErrorMessages(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		keys     []string
		expected string
	}{
		{name: "detail string", status: 401, body: `{"detail":"bad credentials"}`, expected: "bad credentials"},
		{name: "error string", status: 400, body: `{"error":"Username y password son requeridos"}`, expected: "Username y password son requeridos"},
		{name: "detail wins over error", status: 400, body: `{"error":"b","detail":"a"}`, expected: "a"},
		{name: "detail object", status: 400, body: `{"detail":{"nombre":["requerido"],"institucion":["invalido","otro"]}}`, expected: "institucion: invalido, otro\nnombre: requerido"},
		{name: "custom keys", status: 400, body: `{"username":["ya existe"]}`, keys: []string{"error", "username"}, expected: "ya existe"},
		{name: "no message", status: 500, body: `<html>oops</html>`, expected: "fallback"},
		{name: "empty object", status: 404, body: `{}`, expected: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := api.Do(context.Background(), Request{Method: http.MethodGet, Path: "x", Fallback: "fallback", MessageKeys: tt.keys}, nil)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.expected, apiErr.Error())
		})
	}
}

func TestAPI_Do_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	api, err := NewAPI(srv.URL, NewHTTPClient(DefaultConfig()))
	require.NoError(t, err)

	err = api.Do(context.Background(), Request{Method: http.MethodGet, Path: "x"}, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, DefaultErrorMessage, apiErr.Error())
	assert.NotNil(t, errors.Unwrap(apiErr))
}

func TestWithTokenSource(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	hc := WithTokenSource(NewHTTPClient(DefaultConfig()), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok1", TokenType: "Bearer"}))
	api, err := NewAPI(srv.URL, hc)
	require.NoError(t, err)

	require.NoError(t, api.Do(context.Background(), Request{Method: http.MethodGet, Path: "x"}, nil))
	assert.Equal(t, "Bearer tok1", got)
}

func TestAPIError_Unauthorized(t *testing.T) {
	assert.True(t, (&APIError{StatusCode: 401}).Unauthorized())
	assert.True(t, (&APIError{StatusCode: 403}).Unauthorized())
	assert.False(t, (&APIError{StatusCode: 500}).Unauthorized())
}
