// Package gallery is the list store: it owns the ordered menu entries and
// the font settings, validates submissions, and persists them as whole
// records in a database.Store. Every save is a total replace and the last
// writer wins.
package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alexraskin/hovergallery/internal/cache"
	"github.com/alexraskin/hovergallery/internal/database"
	"github.com/alexraskin/hovergallery/internal/models"
)

const (
	MenuItemsKey    = "gallery_menu_items"
	FontSettingsKey = "gallery_font_settings"
)

type Service struct {
	store database.Store
	cache *cache.Cache
}

func NewService(store database.Store, c *cache.Cache) *Service {
	if c == nil {
		c = cache.NewCache(0)
	}
	return &Service{store: store, cache: c}
}

// Load returns the persisted entries in display order. Absent or malformed
// data is an empty list; only a store failure is an error.
func (s *Service) Load(ctx context.Context) ([]models.MenuEntry, error) {
	if items, ok := s.cache.GetItems(); ok {
		return items, nil
	}
	gen := s.cache.ItemsGeneration()

	items := []models.MenuEntry{}
	data, err := s.store.Get(ctx, MenuItemsKey)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load menu items: %w", err)
	default:
		var stored []models.MenuEntry
		if err := json.Unmarshal(data, &stored); err != nil {
			slog.Warn("Ignoring malformed menu items", "error", err)
		} else if stored != nil {
			items = stored
		}
	}

	s.cache.SetItemsIfCurrent(gen, items)
	return items, nil
}

// LoadFontSettings returns the persisted settings with every field
// resolved to a valid value.
func (s *Service) LoadFontSettings(ctx context.Context) (models.FontSettings, error) {
	if f, ok := s.cache.GetFontSettings(); ok {
		return *f, nil
	}
	gen := s.cache.FontSettingsGeneration()

	var stored models.FontSettings
	data, err := s.store.Get(ctx, FontSettingsKey)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return models.FontSettings{}, fmt.Errorf("failed to load font settings: %w", err)
	default:
		if err := json.Unmarshal(data, &stored); err != nil {
			slog.Warn("Ignoring malformed font settings", "error", err)
			stored = models.FontSettings{}
		}
	}

	f := ResolveFontSettings(stored)
	s.cache.SetFontSettingsIfCurrent(gen, f)
	return f, nil
}

// Gallery loads both records.
func (s *Service) Gallery(ctx context.Context) (models.Gallery, error) {
	items, err := s.Load(ctx)
	if err != nil {
		return models.Gallery{}, err
	}
	fonts, err := s.LoadFontSettings(ctx)
	if err != nil {
		return models.Gallery{}, err
	}
	return models.Gallery{Items: items, FontSettings: fonts}, nil
}

// SaveMenuItems sanitizes raw and replaces the stored list with it.
// Input that is not a list persists an empty list.
func (s *Service) SaveMenuItems(ctx context.Context, raw any) ([]models.MenuEntry, error) {
	items := SanitizeMenuItems(raw)
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode menu items: %w", err)
	}

	if err := s.store.Set(ctx, MenuItemsKey, data); err != nil {
		return nil, fmt.Errorf("failed to save menu items: %w", err)
	}
	s.cache.InvalidateItems()
	return items, nil
}

// SaveFontSettings validates each field of raw independently and replaces
// the stored settings.
func (s *Service) SaveFontSettings(ctx context.Context, raw any) (models.FontSettings, error) {
	f := SanitizeFontSettings(raw)
	data, err := json.Marshal(f)
	if err != nil {
		return models.FontSettings{}, fmt.Errorf("failed to encode font settings: %w", err)
	}

	if err := s.store.Set(ctx, FontSettingsKey, data); err != nil {
		return models.FontSettings{}, fmt.Errorf("failed to save font settings: %w", err)
	}
	s.cache.InvalidateFontSettings()
	return f, nil
}

// Replace saves entries and settings in a single store transaction, the
// way one admin form post does.
func (s *Service) Replace(ctx context.Context, rawItems, rawFonts any) (models.Gallery, error) {
	g := models.Gallery{
		Items:        SanitizeMenuItems(rawItems),
		FontSettings: SanitizeFontSettings(rawFonts),
	}

	itemsData, err := json.Marshal(g.Items)
	if err != nil {
		return models.Gallery{}, fmt.Errorf("failed to encode menu items: %w", err)
	}
	fontsData, err := json.Marshal(g.FontSettings)
	if err != nil {
		return models.Gallery{}, fmt.Errorf("failed to encode font settings: %w", err)
	}

	if err := s.store.SetMany(ctx, map[string][]byte{
		MenuItemsKey:    itemsData,
		FontSettingsKey: fontsData,
	}); err != nil {
		return models.Gallery{}, fmt.Errorf("failed to save gallery: %w", err)
	}
	s.cache.InvalidateItems()
	s.cache.InvalidateFontSettings()

	slog.Info("Gallery replaced", slog.Int("items", len(g.Items)))
	return g, nil
}
