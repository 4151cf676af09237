package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/alexraskin/hovergallery/internal/assets"
	"github.com/alexraskin/hovergallery/internal/database"
	"github.com/alexraskin/hovergallery/internal/gallery"
	"github.com/alexraskin/hovergallery/internal/models"
	"github.com/alexraskin/hovergallery/internal/render"
)

const (
	maxFormBytes   = 1 << 20
	maxUploadBytes = 10 << 20
)

func (s *Server) renderError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmplFunc(w, "error.html", nil); err != nil {
		slog.Error("Failed to render error template", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) HandleIndex(w http.ResponseWriter, r *http.Request) {
	g, err := s.gallery.Gallery(r.Context())
	if err != nil {
		slog.Error("Failed to load gallery", "error", err)
		s.renderError(w, http.StatusInternalServerError)
		return
	}

	markup, err := render.RenderWith(g.Items, g.FontSettings, render.ModePublic, s.renderOpts)
	if err != nil {
		slog.Error("Failed to render gallery", "error", err)
		s.renderError(w, http.StatusInternalServerError)
		return
	}

	data := models.IndexPageData{
		Gallery: markup,
		Version: s.version,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmplFunc(w, "index.html", data); err != nil {
		slog.Error("Failed to render index template", "error", err)
	}
}

// HandleEmbed returns the bare gallery fragment for embedding in another
// page. mode=editor yields an empty body.
func (s *Server) HandleEmbed(w http.ResponseWriter, r *http.Request) {
	mode := render.ParseMode(r.URL.Query().Get("mode"))

	g, err := s.gallery.Gallery(r.Context())
	if err != nil {
		slog.Error("Failed to load gallery", "error", err)
		http.Error(w, "Failed to load gallery", http.StatusInternalServerError)
		return
	}

	markup, err := render.RenderWith(g.Items, g.FontSettings, mode, s.renderOpts)
	if err != nil {
		slog.Error("Failed to render gallery", "error", err, "mode", mode.String())
		http.Error(w, "Failed to render gallery", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, string(markup))
}

func (s *Server) HandleGetGallery(w http.ResponseWriter, r *http.Request) {
	g, err := s.gallery.Gallery(r.Context())
	if err != nil {
		slog.Error("Failed to load gallery", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to load gallery")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	token := s.getSessionFromRequest(r)
	if s.validateSession(token) {
		http.Redirect(w, r, "/admin", http.StatusSeeOther)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmplFunc(w, "login.html", nil); err != nil {
		slog.Error("Failed to render login template", "error", err)
	}
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	password := r.FormValue("password")

	valid, err := database.VerifyPassword(r.Context(), s.store, password)
	if err != nil {
		slog.Error("Failed to verify password", "error", err)
		s.renderError(w, http.StatusInternalServerError)
		return
	}

	if !valid {
		slog.Warn("Failed admin login", "remote_addr", r.RemoteAddr)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := s.tmplFunc(w, "login.html", map[string]string{"Error": "Invalid password"}); err != nil {
			slog.Error("Failed to render login template", "error", err)
		}
		return
	}

	token := s.createSession()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(sessionTTL.Seconds()),
		SameSite: http.SameSiteStrictMode,
	})

	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

func (s *Server) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token := s.getSessionFromRequest(r)
	s.deleteSession(token)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	message := r.URL.Query().Get("message")
	errorMsg := r.URL.Query().Get("error")

	g, err := s.gallery.Gallery(r.Context())
	if err != nil {
		slog.Error("Failed to load gallery", "error", err)
		s.renderError(w, http.StatusInternalServerError)
		return
	}

	data := models.AdminPageData{
		Items:         g.Items,
		FontSettings:  g.FontSettings,
		UploadEnabled: s.picker != nil,
		Message:       message,
		Error:         errorMsg,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmplFunc(w, "admin.html", data); err != nil {
		slog.Error("Failed to render admin template", "error", err)
	}
}

// HandleSaveGallery is the admin form post: the full row set in visual
// order plus both font settings, saved as one total replace.
func (s *Server) HandleSaveGallery(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/x-www-form-urlencoded" {
		http.Error(w, "Unsupported form encoding", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err != nil {
		slog.Warn("Failed to read gallery form", "error", err)
		http.Redirect(w, r, "/admin?error=Submission+too+large", http.StatusSeeOther)
		return
	}

	sub, err := gallery.ParseForm(string(body))
	if err != nil {
		slog.Warn("Failed to parse gallery form", "error", err)
		http.Redirect(w, r, "/admin?error=Invalid+submission", http.StatusSeeOther)
		return
	}

	if _, err := s.gallery.Replace(r.Context(), sub.Items, sub.Fonts); err != nil {
		slog.Error("Failed to save gallery", "error", err)
		http.Redirect(w, r, "/admin?error=Failed+to+save", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/admin?message=Menu+items+saved", http.StatusSeeOther)
}

// HandlePutGallery is the JSON form of HandleSaveGallery. A non-list
// "items" value clears the gallery.
func (s *Server) HandlePutGallery(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes)).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	g, err := s.gallery.Replace(r.Context(), body["items"], body["font_settings"])
	if err != nil {
		slog.Error("Failed to save gallery", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to save gallery")
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	newPassword := r.FormValue("new_password")

	if len(newPassword) < 6 {
		http.Redirect(w, r, "/admin?error=Password+must+be+at+least+6+characters", http.StatusSeeOther)
		return
	}

	if err := database.SetPassword(r.Context(), s.store, newPassword); err != nil {
		slog.Error("Failed to update password", "error", err)
		http.Redirect(w, r, "/admin?error=Failed+to+save", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/admin?message=Password+updated", http.StatusSeeOther)
}

// HandleUploadAsset backs the editor's Upload button.
func (s *Server) HandleUploadAsset(w http.ResponseWriter, r *http.Request) {
	if s.picker == nil {
		writeJSONError(w, http.StatusNotImplemented, assets.ErrNotConfigured.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer func() { _ = file.Close() }()

	url, err := s.picker.Upload(r.Context(), header.Filename, file)
	if err != nil {
		if errors.Is(err, assets.ErrUnsupportedType) {
			writeJSONError(w, http.StatusUnsupportedMediaType, "only PNG, JPEG, GIF and WebP images are accepted")
			return
		}
		slog.Error("Failed to upload asset", "error", err, "filename", header.Filename)
		writeJSONError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	slog.Info("Uploaded asset", "url", url)
	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (s *Server) serveFile(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := s.static.Open(path)
		if err != nil {
			http.Error(w, "File not found", http.StatusNotFound)
			return
		}
		defer func() { _ = file.Close() }()
		_, _ = io.Copy(w, file)
	}
}

func (s *Server) cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/static/") {
			w.Header().Set("Cache-Control", "public, max-age=86400")
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		next.ServeHTTP(w, r)
	})
}
