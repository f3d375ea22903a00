// Package console serves the screens as server-rendered HTML for a single
// local operator.
package console

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"filippo.io/csrf"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/internal/app"
	"github.com/wolfeidau/escuela/internal/auth"
	httpmiddleware "github.com/wolfeidau/escuela/internal/http"
	"github.com/wolfeidau/escuela/internal/login"
	"github.com/wolfeidau/escuela/internal/models"
	"github.com/wolfeidau/escuela/internal/resource"
	"github.com/wolfeidau/escuela/internal/screen"
)

//go:embed views/*.html
var views embed.FS

var loginNotices = map[string]string{
	auth.DenyUnauthenticated.String(): "Debe iniciar sesión para continuar",
	auth.DenyForbidden.String():       "No tiene permiso para acceder a esa sección",
	"expired":                         "Su sesión ha expirado, inicie sesión nuevamente",
}

// Console is the web front end over an App.
type Console struct {
	app     *app.App
	flash   *screen.Recorder
	cookies *login.Cookies
	pages   map[string]*template.Template
}

// New creates a console. flash must be the notifier the app's screens
// report to.
func New(a *app.App, flash *screen.Recorder, cookies *login.Cookies) (*Console, error) {
	c := &Console{app: a, flash: flash, cookies: cookies, pages: make(map[string]*template.Template)}

	for _, page := range []string{"login", "dashboard", "screen", "confirm"} {
		tmpl, err := template.ParseFS(views, "views/layout.html", "views/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s view: %w", page, err)
		}
		c.pages[page] = tmpl
	}

	return c, nil
}

// page is the data every view renders with.
type page struct {
	Session *models.Session
	Menu    []auth.Route
	Flash   []screen.Message

	// login
	Error    string
	Username string

	// dashboard
	Dashboard screen.Dashboard

	// screen and confirm
	Route     auth.Route
	Table     *screen.Table
	Fields    []screen.Field
	CanCreate bool
	CanDelete bool
	ID        int64
	Prompt    string
}

// Handler returns the console with CSRF protection, compression and
// request logging applied.
func (c *Console) Handler() http.Handler {
	mux := http.NewServeMux()

	operator := c.cookies.RequireOperator(auth.LoginPath, c.currentUsername)

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, auth.LoginPath, http.StatusFound)
	})
	mux.HandleFunc("GET "+auth.LoginPath, c.loginForm)
	mux.HandleFunc("POST "+auth.LoginPath, c.loginSubmit)
	mux.HandleFunc("POST /logout", c.logout)

	mux.Handle("GET /app/", operator(auth.RequireSession(c.app.Guard)(http.HandlerFunc(c.show))))

	for _, s := range c.app.Screens {
		path := s.Route().Path
		guard := func(h http.HandlerFunc) http.Handler {
			return operator(auth.RequireRoute(c.app.Guard, path)(h))
		}

		mux.Handle("POST "+path+"/create", guard(c.create(s)))
		mux.Handle("GET "+path+"/{id}/delete", guard(c.confirmDelete(s)))
		mux.Handle("POST "+path+"/{id}/delete", guard(c.remove(s)))
	}

	// anything else goes back to the login page
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, auth.LoginPath, http.StatusFound)
	})

	protection := csrf.New()

	var handler http.Handler = mux
	handler = protection.Handler(handler)
	handler = gzhttp.GzipHandler(handler)
	handler = httpmiddleware.RequestLogger()(handler)

	return handler
}

func (c *Console) currentUsername() string {
	if s := c.app.State.Current(); s != nil {
		return s.Username
	}
	return ""
}

func (c *Console) loginForm(w http.ResponseWriter, r *http.Request) {
	c.render(w, r, http.StatusOK, "login", &page{Error: loginNotices[r.URL.Query().Get("error_code")]})
}

func (c *Console) loginSubmit(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	if username == "" || password == "" {
		c.render(w, r, http.StatusBadRequest, "login", &page{Error: "Por favor complete los campos requeridos", Username: username})
		return
	}

	sess, err := c.app.Gateway.Login(r.Context(), username, password)
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, auth.ErrStaleLogin) {
			status = http.StatusConflict
		}
		c.render(w, r, status, "login", &page{Error: err.Error(), Username: username})
		return
	}

	if err := c.cookies.Issue(w, sess.Username); err != nil {
		log.Error().Err(err).Msg("failed to issue operator cookie")
		http.Error(w, "Error interno", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, auth.DashboardPath, http.StatusFound)
}

func (c *Console) logout(w http.ResponseWriter, r *http.Request) {
	c.app.Gateway.Logout()
	c.cookies.Clear(w)
	http.Redirect(w, r, auth.LoginPath, http.StatusFound)
}

// show renders the dashboard or the screen the guard admitted.
func (c *Console) show(w http.ResponseWriter, r *http.Request) {
	path := auth.Canonical(r.URL.Path)
	sess := auth.SessionFromContext(r.Context())

	if path == auth.DashboardPath {
		c.render(w, r, http.StatusOK, "dashboard", &page{Dashboard: screen.BuildDashboard(sess)})
		return
	}

	s, ok := screen.Find(c.app.Screens, path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data := &page{
		Route:     s.Route(),
		Fields:    s.Fields(),
		CanCreate: s.Can(auth.ActionCreate),
		CanDelete: s.Can(auth.ActionDelete),
	}

	filters := make(map[string]string)
	for key := range r.URL.Query() {
		filters[key] = r.URL.Query().Get(key)
	}

	// a failed load is already in the flash messages
	table, err := s.Table(r.Context(), filters)
	if err == nil {
		data.Table = table
	}

	c.render(w, r, http.StatusOK, "screen", data)
}

func (c *Console) create(s screen.Screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Formulario inválido", http.StatusBadRequest)
			return
		}

		fields := resource.Fields{}
		for _, f := range s.Fields() {
			if value := r.PostForm.Get(f.Name); value != "" {
				fields[f.Name] = value
			}
		}

		// outcome is reported through the flash messages
		_, _ = s.Submit(r.Context(), fields)

		http.Redirect(w, r, s.Route().Path, http.StatusSeeOther)
	}
}

func (c *Console) confirmDelete(s screen.Screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			http.NotFound(w, r)
			return
		}

		// declining sends nothing, it only captures the prompt
		var prompt string
		if _, err := s.Remove(r.Context(), id, func(p string) bool {
			prompt = p
			return false
		}); err != nil {
			http.Redirect(w, r, s.Route().Path, http.StatusSeeOther)
			return
		}

		c.render(w, r, http.StatusOK, "confirm", &page{Route: s.Route(), ID: id, Prompt: prompt})
	}
}

func (c *Console) remove(s screen.Screen) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			http.NotFound(w, r)
			return
		}

		confirmed := r.FormValue("confirm") == "si"
		_, _ = s.Remove(r.Context(), id, func(string) bool { return confirmed })

		http.Redirect(w, r, s.Route().Path, http.StatusSeeOther)
	}
}

func (c *Console) render(w http.ResponseWriter, r *http.Request, status int, name string, data *page) {
	data.Session = auth.SessionFromContext(r.Context())
	data.Menu = auth.Menu(data.Session)
	data.Flash = c.flash.Drain()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	if err := c.pages[name].ExecuteTemplate(w, "layout", data); err != nil {
		log.Error().Err(err).Str("view", name).Msg("failed to render view")
	}
}
