// Package render turns gallery entries into the public hover-gallery
// markup. It does no I/O; the server and the embed endpoint call it with
// whatever the list store returned.
package render

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"html/template"
	"strconv"

	"github.com/alexraskin/hovergallery/internal/gallery"
	"github.com/alexraskin/hovergallery/internal/models"
)

// Mode says where the markup is going. ModeEditor renders nothing so the
// admin editor never shows a second live gallery.
type Mode int

const (
	ModePublic Mode = iota
	ModeEditor
)

func ParseMode(s string) Mode {
	if s == "editor" {
		return ModeEditor
	}
	return ModePublic
}

func (m Mode) String() string {
	if m == ModeEditor {
		return "editor"
	}
	return "public"
}

// Options are handed to the cursor-follow script through data attributes.
type Options struct {
	FollowDuration float64
	FollowEase     string
}

var DefaultOptions = Options{FollowDuration: 0.4, FollowEase: "power3"}

//go:embed gallery.html
var galleryTemplate string

var tmpl = template.Must(template.New("gallery.html").Parse(galleryTemplate))

type entryView struct {
	Image template.URL
	Title string
	Link  template.URL
}

type galleryView struct {
	ID        string
	Entries   []entryView
	FontSize  template.CSS
	TextColor template.CSS
	Duration  string
	Ease      string
}

// Render returns the gallery markup with DefaultOptions.
func Render(entries []models.MenuEntry, settings models.FontSettings, mode Mode) (template.HTML, error) {
	return RenderWith(entries, settings, mode, DefaultOptions)
}

// RenderWith returns the gallery markup. URLs are passed through the same
// sanitizer the list store uses and anchors are omitted for empty links;
// text is escaped for its HTML context by html/template.
func RenderWith(entries []models.MenuEntry, settings models.FontSettings, mode Mode, opts Options) (template.HTML, error) {
	if mode == ModeEditor {
		return "", nil
	}

	// the resolved values match a closed grammar, so they are safe as CSS
	fonts := gallery.ResolveFontSettings(settings)
	view := galleryView{
		ID:        scopeID(entries, fonts),
		Entries:   make([]entryView, 0, len(entries)),
		FontSize:  template.CSS(fonts.FontSize),
		TextColor: template.CSS(fonts.TextColor),
		Duration:  strconv.FormatFloat(opts.FollowDuration, 'f', -1, 64),
		Ease:      opts.FollowEase,
	}
	for _, e := range entries {
		view.Entries = append(view.Entries, entryView{
			Image: template.URL(gallery.SanitizeURL(e.Image)),
			Title: e.Title,
			Link:  template.URL(gallery.SanitizeURL(e.Link)),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render gallery: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// scopeID derives a stable id for the style rule from the rendered content.
func scopeID(entries []models.MenuEntry, fonts models.FontSettings) string {
	h := fnv.New64a()
	for _, e := range entries {
		fmt.Fprintf(h, "%s\x00%s\x00%s\x00", e.Image, e.Title, e.Link)
	}
	fmt.Fprintf(h, "%s\x00%s", fonts.FontSize, fonts.TextColor)
	return "g" + hex.EncodeToString(h.Sum(nil))
}
