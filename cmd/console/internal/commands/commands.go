package commands

import (
	"net/http"
	"time"

	"github.com/wolfeidau/escuela/internal/config"
)

type Globals struct {
	Debug   bool
	Version string
	Config  config.Flags
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
