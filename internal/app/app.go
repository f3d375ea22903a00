// Package app builds the object graph shared by the command line client and
// the web console: one storage, one session state, one gateway.
package app

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/escuela/internal/auth"
	"github.com/wolfeidau/escuela/internal/client"
	"github.com/wolfeidau/escuela/internal/config"
	"github.com/wolfeidau/escuela/internal/screen"
	"github.com/wolfeidau/escuela/internal/session"
	"github.com/wolfeidau/escuela/internal/store"
	"github.com/wolfeidau/escuela/internal/store/memory"
)

// App holds the wired components. Build it once per process.
type App struct {
	Config   *config.Config
	Storage  store.Storage
	Sessions *store.SessionStore
	State    *session.State

	// API is unauthenticated, Authed sends the current session token.
	API    *client.API
	Authed *client.API

	Gateway  *auth.Gateway
	Guard    *auth.Guard
	Screens  []screen.Screen
	Notifier screen.Notifier
}

type options struct {
	httpClient *http.Client
	storage    store.Storage
	notifier   screen.Notifier
	debug      bool
}

// Option customises New.
type Option func(*options)

// WithHTTPClient replaces the default caching client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// WithStorage replaces the storage selected by the config.
func WithStorage(s store.Storage) Option {
	return func(o *options) { o.storage = s }
}

// WithNotifier sets where screen outcomes are reported. Defaults to the log.
func WithNotifier(n screen.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// WithDebug enables debug client settings.
func WithDebug(debug bool) Option {
	return func(o *options) { o.debug = debug }
}

// New wires every component from cfg. The session state is restored from
// storage before anything else reads it.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := &options{notifier: screen.LogNotifier{}}
	for _, opt := range opts {
		opt(o)
	}

	storage := o.storage
	if storage == nil {
		var err error
		storage, err = OpenStorage(cfg)
		if err != nil {
			return nil, err
		}
	}

	hc := o.httpClient
	if hc == nil {
		hc = client.NewHTTPClient(cfg.Client(o.debug))
	}

	api, err := client.NewAPI(cfg.APIURL, hc)
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}

	sessions := store.NewSessionStore(storage)
	state := session.New(sessions)
	authed := api.WithTokenSource(session.NewTokenSource(state))

	return &App{
		Config:   cfg,
		Storage:  storage,
		Sessions: sessions,
		State:    state,
		API:      api,
		Authed:   authed,
		Gateway:  auth.NewGateway(api, sessions, state),
		Guard:    auth.NewGuard(state),
		Screens:  screen.NewScreens(authed, state, o.notifier),
		Notifier: o.notifier,
	}, nil
}

// OpenStorage returns the durable medium named by cfg.Storage. A file
// storage that cannot be created falls back to Unavailable, the client
// still works for the lifetime of the process.
func OpenStorage(cfg *config.Config) (store.Storage, error) {
	switch cfg.Storage {
	case config.StorageFile:
		fs, err := store.NewFileStorage(cfg.StorageDir)
		if err != nil {
			log.Warn().Err(err).Msg("file storage unavailable, session will not persist")
			return store.Unavailable{}, nil
		}
		return fs, nil
	case config.StorageMemory:
		return memory.NewStorage(), nil
	case config.StorageNone:
		return store.Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
	}
}
