package models

import "html/template"

// MenuEntry is one gallery row. Position in the slice is the display order.
type MenuEntry struct {
	Image string `json:"image" yaml:"image"`
	Title string `json:"title" yaml:"title"`
	Link  string `json:"link" yaml:"link"`
}

type FontSettings struct {
	FontSize  string `json:"font_size" yaml:"font_size"`
	TextColor string `json:"text_color" yaml:"text_color"`
}

// Gallery is the full persisted state, as exchanged by the JSON API and
// the export/import commands.
type Gallery struct {
	Items        []MenuEntry  `json:"items" yaml:"items"`
	FontSettings FontSettings `json:"font_settings" yaml:"font_settings"`
}

type AdminPageData struct {
	Items         []MenuEntry
	FontSettings  FontSettings
	UploadEnabled bool
	Message       string
	Error         string
}

type IndexPageData struct {
	Gallery template.HTML
	Version string
}
