// Package apitest provides an in-memory school API for tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// User is an account the backend accepts.
type User struct {
	ID       int64
	Username string
	Password string
	Email    string
	Role     string
}

// Call is a recorded request.
type Call struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	Body          map[string]any
}

// Backend mimics the login, me and collection endpoints of the REST API.
// Collections are keyed by name, eg "materias".
type Backend struct {
	*httptest.Server

	mu          sync.Mutex
	users       map[string]User
	collections map[string]map[int64]map[string]any
	nextID      int64
	calls       []Call
	tokens      map[string]User
}

// New starts a backend serving under /api and registers Close as cleanup.
func New(t testing.TB, users ...User) *Backend {
	t.Helper()

	b := &Backend{
		users:       make(map[string]User),
		collections: make(map[string]map[int64]map[string]any),
		tokens:      make(map[string]User),
		nextID:      100,
	}
	for _, u := range users {
		b.users[u.Username] = u
	}

	b.Server = httptest.NewServer(http.HandlerFunc(b.serve))
	t.Cleanup(b.Close)

	return b
}

// APIURL is the base URL clients should use.
func (b *Backend) APIURL() string {
	return b.URL + "/api"
}

// Seed inserts a record into a collection and returns its id.
func (b *Backend) Seed(collection string, record map[string]any) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.insert(collection, record)
}

// Records returns the records of a collection ordered by id.
func (b *Backend) Records(collection string) []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.list(collection)
}

// Calls returns every request received so far.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// CallsTo returns the requests whose path starts with prefix.
func (b *Backend) CallsTo(prefix string) []Call {
	var out []Call
	for _, c := range b.Calls() {
		if strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (b *Backend) serve(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if r.Body != nil && r.ContentLength != 0 {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.calls = append(b.calls, Call{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
		Body:          body,
	})

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api"), "/")

	switch {
	case path == "auth/login" && r.Method == http.MethodPost:
		b.login(w, body)
	case path == "auth/register" && r.Method == http.MethodPost:
		b.register(w, body)
	case path == "auth/me" && r.Method == http.MethodGet:
		user, ok := b.authenticated(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Las credenciales de autenticación no se proveyeron."})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": user.ID, "username": user.Username, "email": user.Email})
	default:
		if _, ok := b.authenticated(r); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Las credenciales de autenticación no se proveyeron."})
			return
		}
		b.collection(w, r, path, body)
	}
}

func (b *Backend) login(w http.ResponseWriter, body map[string]any) {
	username, _ := body["username"].(string)
	password, _ := body["password"].(string)

	user, ok := b.users[username]
	if !ok || user.Password != password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Credenciales inválidas"})
		return
	}

	token := "token-" + username + "-" + strconv.Itoa(len(b.tokens)+1)
	b.tokens[token] = user

	writeJSON(w, http.StatusOK, map[string]any{
		"token":   token,
		"refresh": "refresh-" + username,
		"user": map[string]any{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
			"rol":      user.Role,
		},
	})
}

func (b *Backend) register(w http.ResponseWriter, body map[string]any) {
	username, _ := body["username"].(string)
	if _, exists := b.users[username]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]any{"username": []string{"Ya existe un usuario con este nombre."}})
		return
	}

	b.nextID++
	password, _ := body["password"].(string)
	email, _ := body["email"].(string)
	b.users[username] = User{ID: b.nextID, Username: username, Password: password, Email: email, Role: "Usuario"}

	writeJSON(w, http.StatusCreated, map[string]any{"message": "Usuario creado exitosamente", "user_id": b.nextID})
}

func (b *Backend) authenticated(r *http.Request) (User, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return User{}, false
	}
	user, ok := b.tokens[token]
	return user, ok
}

func (b *Backend) collection(w http.ResponseWriter, r *http.Request, path string, body map[string]any) {
	name, rest, _ := strings.Cut(path, "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			results := b.list(name)
			writeJSON(w, http.StatusOK, map[string]any{"count": len(results), "next": nil, "previous": nil, "results": results})
		case http.MethodPost:
			id := b.insert(name, body)
			writeJSON(w, http.StatusCreated, b.collections[name][id])
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "No encontrado."})
		return
	}

	record, ok := b.collections[name][id]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"detail": "No encontrado."})
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, record)
	case http.MethodDelete:
		delete(b.collections[name], id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (b *Backend) insert(name string, record map[string]any) int64 {
	if b.collections[name] == nil {
		b.collections[name] = make(map[int64]map[string]any)
	}

	b.nextID++
	stored := map[string]any{"id": b.nextID}
	for k, v := range record {
		stored[k] = v
	}
	b.collections[name][b.nextID] = stored

	return b.nextID
}

func (b *Backend) list(name string) []map[string]any {
	ids := make([]int64, 0, len(b.collections[name]))
	for id := range b.collections[name] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.collections[name][id])
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
