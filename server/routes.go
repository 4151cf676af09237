package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-http-utils/etag"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(httprate.LimitByIP(s.rateLimit, time.Minute))
	r.Use(middleware.Heartbeat("/health"))
	r.Use(s.cacheControl)

	r.Mount("/static", http.FileServer(s.static))

	r.Handle("/robots.txt", s.serveFile("static/robots.txt"))

	r.Group(func(r chi.Router) {
		r.Use(withETag)
		r.Get("/", s.HandleIndex)
		r.Get("/embed", s.HandleEmbed)
		r.Get("/api/gallery", s.HandleGetGallery)
	})

	r.Get("/admin/login", s.HandleLoginPage)
	r.Post("/admin/login", s.HandleLogin)
	r.Get("/admin/logout", s.HandleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.RequireAuth)
		r.Get("/admin", s.HandleAdmin)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.RequireAdmin)
		r.Post("/admin", s.HandleSaveGallery)
		r.Post("/admin/password", s.HandleUpdatePassword)
		r.Post("/admin/assets", s.HandleUploadAsset)
		r.Put("/api/admin/gallery", s.HandlePutGallery)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusMovedPermanently)
	})

	return r
}

// withETag answers conditional GETs on the public pages with 304 when the
// rendered gallery has not changed.
func withETag(next http.Handler) http.Handler {
	return etag.Handler(next, false)
}
