package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/alexraskin/hovergallery/internal/assets"
	"github.com/alexraskin/hovergallery/internal/database"
	"github.com/alexraskin/hovergallery/internal/gallery"
	"github.com/alexraskin/hovergallery/internal/render"
)

type ExecuteTemplateFunc func(wr io.Writer, name string, data any) error

type Server struct {
	version    string
	port       string
	server     *http.Server
	static     http.FileSystem
	tmplFunc   ExecuteTemplateFunc
	sessions   map[string]time.Time
	sessionsMu sync.RWMutex
	store      database.Store
	gallery    *gallery.Service
	picker     assets.Picker
	renderOpts render.Options
	rateLimit  int
}

type Option func(*Server)

// WithPicker enables image uploads from the admin editor.
func WithPicker(p assets.Picker) Option {
	return func(s *Server) { s.picker = p }
}

func WithRateLimit(perMinute int) Option {
	return func(s *Server) {
		if perMinute > 0 {
			s.rateLimit = perMinute
		}
	}
}

func WithRenderOptions(opts render.Options) Option {
	return func(s *Server) { s.renderOpts = opts }
}

func NewServer(version string, port string, static http.FileSystem, tmplFunc ExecuteTemplateFunc, store database.Store, svc *gallery.Service, opts ...Option) *Server {

	s := &Server{
		version:    version,
		port:       port,
		static:     static,
		tmplFunc:   tmplFunc,
		sessions:   make(map[string]time.Time),
		sessionsMu: sync.RWMutex{},
		store:      store,
		gallery:    svc,
		renderOpts: render.DefaultOptions,
		rateLimit:  500,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = &http.Server{
		Addr:              ":" + port,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) Start() {
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func (s *Server) Close() {
	if err := s.server.Close(); err != nil {
		panic(err)
	}
}

func FormatBuildVersion(version string) string {
	return fmt.Sprintf("Go Version: %s\nVersion: %s\nOS/Arch: %s/%s", runtime.Version(), version, runtime.GOOS, runtime.GOARCH)
}
